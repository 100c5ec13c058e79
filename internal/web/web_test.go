package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/reelx/internal/identity"
	"github.com/desertthunder/reelx/internal/metrics"
	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/services"
	"github.com/desertthunder/reelx/internal/session"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/desertthunder/reelx/internal/tasks"
	tu "github.com/desertthunder/reelx/internal/testing"
)

type harness struct {
	app      *App
	handler  http.Handler
	provider *tu.FakeProvider
	manager  *session.Manager
	catalog  *tu.CatalogServer
	history  *History
	metrics  *metrics.Metrics
	logs     *bytes.Buffer
}

func newHarness(t *testing.T, user *models.Identity) *harness {
	t.Helper()

	var logs bytes.Buffer
	logger := shared.NewLogger(&logs)

	catalog := tu.NewCatalogServer(t)
	svc, err := services.NewTMDBService(context.Background(), services.TMDBOpts{BaseURL: catalog.URL, APIKey: "k"})
	if err != nil {
		t.Fatalf("failed to create TMDB service: %v", err)
	}

	provider := tu.NewFakeProvider(&models.Identity{ID: "u1", Email: "user@example.com"})
	history := NewHistory()
	flash := NewFlash()
	manager := session.NewManager(provider, session.ManagerOpts{Navigator: history, Alerter: flash, Logger: logger})
	manager.Start()
	t.Cleanup(manager.Close)

	m := metrics.New(nil)
	app, err := New(Opts{
		Session:     manager,
		Loader:      tasks.NewPageLoader(svc, logger).WithMetrics(m),
		History:     history,
		Flash:       flash,
		Logger:      logger,
		Metrics:     m,
		RowSize:     2,
		Pick:        func(n int) int { return n - 1 },
		ReadyWindow: 50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	h := &harness{app: app, handler: app.Handler(), provider: provider, manager: manager, catalog: catalog, history: history, metrics: m, logs: &logs}
	provider.Emit(user)
	return h
}

func (h *harness) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != want {
		t.Errorf("expected redirect to %q, got %q", want, got)
	}
}

func credentials(email, password string) url.Values {
	return url.Values{"email": {email}, "password": {password}}
}

func TestReadyGate(t *testing.T) {
	provider := tu.NewFakeProvider(nil)
	manager := session.NewManager(provider, session.ManagerOpts{})
	manager.Start()
	defer manager.Close()

	app, err := New(Opts{Session: manager, Loader: tasks.NewPageLoader(nil, nil), ReadyWindow: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	handler := app.Handler()

	t.Run("Waits for the first notification", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503 before ready, got %d", rec.Code)
		}
	})

	t.Run("Health is not gated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		var body map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if body["status"] != "ok" || body["ready"] != false {
			t.Errorf("unexpected health %v", body)
		}
	})

	t.Run("Opens once notified", func(t *testing.T) {
		provider.Emit(nil)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200 after ready, got %d", rec.Code)
		}
	})
}

func TestAnonymous(t *testing.T) {
	h := newHarness(t, nil)

	if routes := h.history.Routes(); len(routes) != 1 || routes[0] != session.LoginRoute {
		t.Errorf("anonymous notification should push the login route, got %v", routes)
	}

	for _, path := range []string{"/", "/api/catalog"} {
		t.Run(path, func(t *testing.T) {
			assertRedirect(t, h.do(http.MethodGet, path, nil), session.LoginRoute)
		})
	}

	t.Run("Login page", func(t *testing.T) {
		rec := h.do(http.MethodGet, "/login?email=a%40b.c", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := rec.Body.String()
		for _, want := range []string{`action="/login"`, `formaction="/signup"`, `value="a@b.c"`} {
			if !strings.Contains(body, want) {
				t.Errorf("login page missing %q", want)
			}
		}
	})

	t.Run("Unknown path", func(t *testing.T) {
		if rec := h.do(http.MethodGet, "/nope", nil); rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}

func TestAuthForms(t *testing.T) {
	t.Run("Sign in success", func(t *testing.T) {
		h := newHarness(t, nil)

		assertRedirect(t, h.do(http.MethodPost, "/login", credentials("user@example.com", "secret1")), session.LandingRoute)
		if h.manager.CurrentUser() == nil {
			t.Fatal("expected a signed-in user")
		}
		if h.provider.CallCount("VerifyCredentials") != 1 {
			t.Error("expected one VerifyCredentials call")
		}

		rec := h.do(http.MethodGet, "/login", nil)
		assertRedirect(t, rec, session.LandingRoute)
	})

	t.Run("Sign up success", func(t *testing.T) {
		h := newHarness(t, nil)

		assertRedirect(t, h.do(http.MethodPost, "/signup", credentials("new@example.com", "secret1")), session.LandingRoute)
		if h.provider.CallCount("CreateAccount") != 1 {
			t.Error("expected one CreateAccount call")
		}
	})

	t.Run("Sign up failure shows the alert once", func(t *testing.T) {
		h := newHarness(t, nil)
		h.provider.CreateErr = identity.NewError(identity.CodeEmailExists)

		rec := h.do(http.MethodPost, "/signup", credentials("taken@example.com", "secret1"))
		assertRedirect(t, rec, "/login?email=taken%40example.com")

		msg := "The email address is already in use by another account."
		if h.manager.AuthError() != msg {
			t.Errorf("AuthError() = %q", h.manager.AuthError())
		}

		body := h.do(http.MethodGet, "/login", nil).Body.String()
		if strings.Count(body, msg) != 1 {
			t.Errorf("expected the message exactly once, got:\n%s", body)
		}

		body = h.do(http.MethodGet, "/login", nil).Body.String()
		if !strings.Contains(body, `class="error"`) || strings.Contains(body, `role="alert"`) {
			t.Errorf("after the flash is shown only the recorded error should remain, got:\n%s", body)
		}
	})

	t.Run("Bad form", func(t *testing.T) {
		h := newHarness(t, nil)

		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("%zz"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		h.handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("Log out", func(t *testing.T) {
		h := newHarness(t, &models.Identity{ID: "u1", Email: "user@example.com"})

		assertRedirect(t, h.do(http.MethodPost, "/logout", nil), session.LoginRoute)
		if h.manager.CurrentUser() != nil {
			t.Error("expected anonymous session after logout")
		}
	})

	t.Run("Log out failure", func(t *testing.T) {
		h := newHarness(t, &models.Identity{ID: "u1", Email: "user@example.com"})
		h.provider.EndErr = identity.NewError(identity.CodeInternal)

		assertRedirect(t, h.do(http.MethodPost, "/logout", nil), session.LandingRoute)
		if h.manager.CurrentUser() == nil {
			t.Error("failed logout should keep the user")
		}
	})
}

func TestHome(t *testing.T) {
	user := &models.Identity{ID: "u1", Email: "user@example.com"}

	t.Run("Renders banner and rows", func(t *testing.T) {
		h := newHarness(t, user)

		rec := h.do(http.MethodGet, "/", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		body := rec.Body.String()

		banner := tu.CategoryMovies(models.NetflixOriginals)[2]
		if !strings.Contains(body, banner.DisplayTitle()) {
			t.Errorf("expected banner %q", banner.DisplayTitle())
		}
		if !strings.Contains(body, "user@example.com") {
			t.Error("expected header with the signed-in email")
		}

		last := -1
		for _, row := range (&models.CatalogPage{}).Rows() {
			i := strings.Index(body, "<h3>"+row.Title+"</h3>")
			if i < 0 {
				t.Errorf("missing row %s", row.Title)
				continue
			}
			if i < last {
				t.Errorf("row %s is out of order", row.Title)
			}
			last = i
		}
		if strings.Contains(body, "<h3>Netflix Originals</h3>") {
			t.Error("originals should feed the banner, not a row")
		}
	})

	t.Run("Paginates rows", func(t *testing.T) {
		h := newHarness(t, user)
		movies := tu.CategoryMovies(models.TopRated)

		first := h.do(http.MethodGet, "/", nil).Body.String()
		second := h.do(http.MethodGet, "/?top_rated=2", nil).Body.String()

		thumb := func(m models.Movie) string { return m.ThumbnailURL(DefaultImageBase) }
		if !strings.Contains(first, thumb(movies[0])) || strings.Contains(first, thumb(movies[2])) {
			t.Error("first page should show the first two titles")
		}
		if !strings.Contains(second, thumb(movies[2])) || strings.Contains(second, thumb(movies[0])) {
			t.Error("second page should show the third title")
		}
		if !strings.Contains(first, "/?top_rated=2#top_rated") {
			t.Error("expected a next link for top_rated")
		}
	})

	t.Run("Catalog failure", func(t *testing.T) {
		h := newHarness(t, user)
		h.catalog.Fail(models.Documentaries, http.StatusInternalServerError)

		rec := h.do(http.MethodGet, "/", nil)
		if rec.Code != http.StatusBadGateway {
			t.Errorf("expected 502, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "could not be loaded") {
			t.Error("expected the generic error page")
		}
	})
}

func TestCatalogJSON(t *testing.T) {
	h := newHarness(t, &models.Identity{ID: "u1"})

	rec := h.do(http.MethodGet, "/api/catalog", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var page models.CatalogPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(page.HorrorMovies) != 3 || page.HorrorMovies[0].ID != tu.CategoryMovies(models.HorrorMovies)[0].ID {
		t.Errorf("unexpected horror row %+v", page.HorrorMovies)
	}

	h.catalog.Fail(models.TopRated, http.StatusUnauthorized)
	rec = h.do(http.MethodGet, "/api/catalog", nil)
	if rec.Code != http.StatusBadGateway || !strings.Contains(rec.Body.String(), "top_rated") {
		t.Errorf("expected 502 naming the category, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestShell(t *testing.T) {
	t.Run("History", func(t *testing.T) {
		h := NewHistory()
		if got := h.Take("/fallback"); got != "/fallback" {
			t.Errorf("Take() on empty history = %q", got)
		}
		h.Navigate("/login")
		h.Navigate("/")
		if got := h.Take("/fallback"); got != "/" {
			t.Errorf("Take() = %q, want /", got)
		}
		if got := h.Take("/fallback"); got != "/fallback" {
			t.Errorf("Take() should clear the pending route, got %q", got)
		}
		if len(h.Routes()) != 2 {
			t.Errorf("Routes() = %v", h.Routes())
		}
	})

	t.Run("Flash", func(t *testing.T) {
		f := NewFlash()
		f.Alert("one")
		f.Alert("two")
		if got := f.Drain(); len(got) != 2 || got[0] != "one" {
			t.Errorf("Drain() = %v", got)
		}
		if got := f.Drain(); len(got) != 0 {
			t.Errorf("second Drain() = %v", got)
		}
	})

	t.Run("truncate", func(t *testing.T) {
		if got := truncate("short", 10); got != "short" {
			t.Errorf("truncate() = %q", got)
		}
		if got := truncate("a longer overview", 5); got != "a lo…" {
			t.Errorf("truncate() = %q", got)
		}
	})

	t.Run("New requires collaborators", func(t *testing.T) {
		if _, err := New(Opts{}); err == nil {
			t.Error("expected error without session and loader")
		}
	})
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t, &models.Identity{ID: "u1", Email: "user@example.com"})

	if rec := h.do(http.MethodGet, "/", nil); rec.Code != http.StatusOK {
		t.Fatalf("home status = %d", rec.Code)
	}
	h.do(http.MethodGet, "/missing", nil)

	rec := h.do(http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{
		`reelx_http_requests_total{method="GET",route="GET /{$}",status="200"} 1`,
		`reelx_catalog_page_loads_total{outcome="ok"} 1`,
		`reelx_catalog_category_duration_seconds_count{category="top_rated",outcome="ok"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s in metrics output", want)
		}
	}
	if strings.Contains(body, "/missing") {
		t.Error("unmatched paths should not be recorded by route")
	}
}
