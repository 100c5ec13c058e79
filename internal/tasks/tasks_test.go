package tasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"sync"
	"testing"

	"github.com/desertthunder/reelx/internal/metrics"
	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/services"
	"github.com/desertthunder/reelx/internal/shared"
	tu "github.com/desertthunder/reelx/internal/testing"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newLoader(t *testing.T, server *tu.CatalogServer) *PageLoader {
	t.Helper()

	svc, err := services.NewTMDBService(context.Background(), services.TMDBOpts{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		HTTPClient: server.Client(),
	})
	if err != nil {
		t.Fatalf("failed to create TMDB service: %v", err)
	}
	return NewPageLoader(svc, nil)
}

// mockService records the paths it is asked for and fails the ones in errs.
type mockService struct {
	mu    sync.Mutex
	paths []string
	errs  map[string]error
}

func (m *mockService) Name() string { return "mock" }

func (m *mockService) Results(ctx context.Context, path string) ([]models.Movie, error) {
	m.mu.Lock()
	m.paths = append(m.paths, path)
	err := m.errs[path]
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return []models.Movie{{ID: len(path), Title: path}}, nil
}

func TestPageLoader(t *testing.T) {
	ctx := context.Background()

	t.Run("Maps each category to its field", func(t *testing.T) {
		server := tu.NewCatalogServer(t)
		loader := newLoader(t, server)

		page, err := loader.Load(ctx, nil)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		for _, c := range models.Categories {
			got := *page.Field(c.Key)
			want := tu.CategoryMovies(c.Key)
			if !reflect.DeepEqual(got, want) {
				t.Errorf("%s: got %+v, want %+v", c.Key, got, want)
			}
			if server.Hits(c.Key) != 1 {
				t.Errorf("%s requested %d times, want 1", c.Key, server.Hits(c.Key))
			}
		}
	})

	t.Run("Preserves response order", func(t *testing.T) {
		server := tu.NewCatalogServer(t)
		server.Respond(models.ComedyMovies, `{"results":[{"id":3,"title":"C"},{"id":1,"title":"A"},{"id":2,"title":"B"}]}`)
		loader := newLoader(t, server)

		page, err := loader.Load(ctx, nil)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		var ids []int
		for _, m := range page.ComedyMovies {
			ids = append(ids, m.ID)
		}
		if !reflect.DeepEqual(ids, []int{3, 1, 2}) {
			t.Errorf("expected response order [3 1 2], got %v", ids)
		}
	})

	t.Run("Issues all requests concurrently", func(t *testing.T) {
		server := tu.NewCatalogServer(t)
		server.WaitForConcurrent(len(models.Categories))
		loader := newLoader(t, server)

		if _, err := loader.Load(ctx, nil); err != nil {
			t.Fatalf("Load() should succeed when all eight requests overlap: %v", err)
		}
	})

	t.Run("Requests carry credentials and language", func(t *testing.T) {
		server := tu.NewCatalogServer(t)
		server.APIKey = "test-key"
		loader := newLoader(t, server)

		if _, err := loader.Load(ctx, nil); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		for _, q := range server.Queries() {
			if q.Get("api_key") != "test-key" || q.Get("language") != "en-US" {
				t.Errorf("unexpected query %v", q)
			}
		}
	})

	for _, c := range models.Categories {
		t.Run(fmt.Sprintf("Fails when %s fails", c.Key), func(t *testing.T) {
			server := tu.NewCatalogServer(t)
			server.Fail(c.Key, http.StatusInternalServerError)
			loader := newLoader(t, server)

			page, err := loader.Load(ctx, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if page != nil {
				t.Errorf("expected no page, got %+v", page)
			}
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})
	}

	t.Run("Missing results field fails the page", func(t *testing.T) {
		server := tu.NewCatalogServer(t)
		server.Respond(models.TrendingNow, `{"page":1}`)
		loader := newLoader(t, server)

		page, err := loader.Load(ctx, nil)
		if !errors.Is(err, shared.ErrMalformedResponse) || page != nil {
			t.Fatalf("expected malformed response and no page, got %v, %v", page, err)
		}
	})

	t.Run("Error names the failing category", func(t *testing.T) {
		svc := &mockService{errs: map[string]error{"/movie/top_rated": errors.New("boom")}}
		loader := NewPageLoader(svc, nil)

		_, err := loader.Load(ctx, nil)
		if err == nil || err.Error() != "top_rated: boom" {
			t.Fatalf("expected 'top_rated: boom', got %v", err)
		}
	})

	t.Run("Requests every category path once", func(t *testing.T) {
		svc := &mockService{}
		loader := NewPageLoader(svc, nil)

		if _, err := loader.Load(ctx, nil); err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		seen := map[string]int{}
		for _, p := range svc.paths {
			seen[p]++
		}
		for _, c := range models.Categories {
			if seen[c.Path] != 1 {
				t.Errorf("%s requested %d times", c.Path, seen[c.Path])
			}
		}
	})

	t.Run("Records metrics", func(t *testing.T) {
		m := metrics.New(nil)
		loader := NewPageLoader(&mockService{}, nil).WithMetrics(m)

		if _, err := loader.Load(ctx, nil); err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		failing := NewPageLoader(&mockService{errs: map[string]error{"/movie/top_rated": errors.New("boom")}}, nil).WithMetrics(m)
		if _, err := failing.Load(ctx, nil); err == nil {
			t.Fatal("expected error")
		}

		if got := testutil.ToFloat64(m.PageLoads.WithLabelValues("ok")); got != 1 {
			t.Errorf("ok page loads = %v, want 1", got)
		}
		if got := testutil.ToFloat64(m.PageLoads.WithLabelValues("error")); got != 1 {
			t.Errorf("failed page loads = %v, want 1", got)
		}
		// eight categories succeeded at least once, top_rated also failed once
		if got := testutil.CollectAndCount(m.CategoryLatency); got != len(models.Categories)+1 {
			t.Errorf("category series = %d, want %d", got, len(models.Categories)+1)
		}
	})

	t.Run("Cancelled context", func(t *testing.T) {
		server := tu.NewCatalogServer(t)
		loader := newLoader(t, server)

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		if page, err := loader.Load(cctx, nil); err == nil || page != nil {
			t.Fatalf("expected error and no page, got %v, %v", page, err)
		}
	})

	t.Run("Without service", func(t *testing.T) {
		if _, err := NewPageLoader(nil, nil).Load(ctx, nil); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Fatalf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("Progress", func(t *testing.T) {
		server := tu.NewCatalogServer(t)
		loader := newLoader(t, server)

		progress := make(chan ProgressUpdate, 16)
		page, err := loader.Load(ctx, progress)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		close(progress)

		var fetched []ProgressUpdate
		var assembled *ProgressUpdate
		for u := range progress {
			switch u.Phase {
			case FetchCategory:
				fetched = append(fetched, u)
			case AssemblePage:
				assembled = &u
			}
		}

		if len(fetched) != len(models.Categories) {
			t.Errorf("expected %d category updates, got %d", len(models.Categories), len(fetched))
		}
		steps := map[int]bool{}
		for _, u := range fetched {
			steps[u.Step] = true
			if u.Total != len(models.Categories) {
				t.Errorf("update %q has total %d", u.Message, u.Total)
			}
		}
		for i := 1; i <= len(models.Categories); i++ {
			if !steps[i] {
				t.Errorf("missing step %d", i)
			}
		}
		if assembled == nil || assembled.Data != page {
			t.Error("expected a final update carrying the page")
		}
	})

	t.Run("Progress never blocks", func(t *testing.T) {
		server := tu.NewCatalogServer(t)
		loader := newLoader(t, server)

		progress := make(chan ProgressUpdate)
		if _, err := loader.Load(ctx, progress); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
	})
}

func TestPhaseString(t *testing.T) {
	tc := map[Phase]string{
		FetchCategory:  "fetch_category",
		AssemblePage:   "assemble_page",
		ExportCategory: "export_category",
		WriteManifest:  "write_manifest",
		Phase(99):      "",
	}
	for p, want := range tc {
		if got := p.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", p, got, want)
		}
	}
}
