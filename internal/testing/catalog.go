package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/reelx/internal/models"
)

// CatalogServer is a fake TMDB v3 API that serves the eight catalog categories.
//
// Every category answers with its own deterministic result set, see [CategoryMovies].
type CatalogServer struct {
	*httptest.Server

	APIKey    string // required as api_key when set
	ReadToken string // accepted as a bearer token when set

	mu       sync.Mutex
	failures map[models.CategoryKey]int
	raw      map[models.CategoryKey]string
	hits     map[models.CategoryKey]int
	queries  []url.Values
	barrier  int
	arrived  int
	released chan struct{}
}

// NewCatalogServer starts a [CatalogServer] that is closed when t ends.
func NewCatalogServer(t *testing.T) *CatalogServer {
	t.Helper()

	s := &CatalogServer{
		failures: make(map[models.CategoryKey]int),
		raw:      make(map[models.CategoryKey]string),
		hits:     make(map[models.CategoryKey]int),
		released: make(chan struct{}),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Fail makes the category answer with status.
func (s *CatalogServer) Fail(key models.CategoryKey, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[key] = status
}

// Respond makes the category answer with body verbatim.
func (s *CatalogServer) Respond(key models.CategoryKey, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw[key] = body
}

// WaitForConcurrent holds every response until n requests are in flight at once.
// Requests still waiting after a few seconds get a 504.
func (s *CatalogServer) WaitForConcurrent(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.barrier = n
}

// Hits reports how many requests reached the category.
func (s *CatalogServer) Hits(key models.CategoryKey) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[key]
}

// Queries returns the query strings of all requests received.
func (s *CatalogServer) Queries() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]url.Values(nil), s.queries...)
}

func (s *CatalogServer) handle(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeStatus(w, http.StatusUnauthorized, "Invalid API key: You must be granted a valid key.")
		return
	}

	category, ok := matchCategory(r.URL)
	if !ok {
		writeStatus(w, http.StatusNotFound, "The resource you requested could not be found.")
		return
	}

	s.mu.Lock()
	s.hits[category.Key]++
	s.queries = append(s.queries, r.URL.Query())
	status := s.failures[category.Key]
	raw, hasRaw := s.raw[category.Key]
	wait := s.barrier > 0
	if wait {
		s.arrived++
		if s.arrived == s.barrier {
			close(s.released)
		}
	}
	s.mu.Unlock()

	if wait {
		select {
		case <-s.released:
		case <-time.After(5 * time.Second):
			writeStatus(w, http.StatusGatewayTimeout, "requests were not concurrent")
			return
		}
	}

	if status != 0 {
		writeStatus(w, status, "category failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if hasRaw {
		fmt.Fprint(w, raw)
		return
	}
	json.NewEncoder(w).Encode(map[string]any{
		"page":          1,
		"results":       CategoryMovies(category.Key),
		"total_pages":   1,
		"total_results": len(CategoryMovies(category.Key)),
	})
}

func (s *CatalogServer) authorized(r *http.Request) bool {
	if s.APIKey == "" && s.ReadToken == "" {
		return true
	}
	if s.APIKey != "" && r.URL.Query().Get("api_key") == s.APIKey {
		return true
	}
	return s.ReadToken != "" && r.Header.Get("Authorization") == "Bearer "+s.ReadToken
}

// matchCategory finds the category whose path and filter params appear in u.
func matchCategory(u *url.URL) (models.Category, bool) {
	for _, c := range models.Categories {
		p, rawQuery, _ := strings.Cut(c.Path, "?")
		if u.Path != p && !strings.HasSuffix(u.Path, p) {
			continue
		}
		want, _ := url.ParseQuery(rawQuery)
		got := u.Query()
		match := true
		for k := range want {
			if got.Get(k) != want.Get(k) {
				match = false
				break
			}
		}
		// /discover/movie is shared by the genre rows, so the filter must be exact.
		if match && len(want) == 0 && got.Get("with_genres") != "" {
			match = false
		}
		if match {
			return c, true
		}
	}
	return models.Category{}, false
}

// CategoryMovies returns the three movies the fake serves for key.
//
// IDs are (category index + 1) * 100 + position so rows can be told apart.
func CategoryMovies(key models.CategoryKey) []models.Movie {
	for i, c := range models.Categories {
		if c.Key != key {
			continue
		}
		movies := make([]models.Movie, 3)
		for j := range movies {
			m := models.Movie{
				ID:           (i+1)*100 + j,
				Overview:     fmt.Sprintf("Overview of %s #%d", c.Title, j+1),
				BackdropPath: fmt.Sprintf("/%s-%d-backdrop.jpg", c.Key, j),
				PosterPath:   fmt.Sprintf("/%s-%d-poster.jpg", c.Key, j),
				VoteAverage:  float64(j) + 6.5,
			}
			if c.Key == models.NetflixOriginals {
				m.Name = fmt.Sprintf("%s #%d", c.Title, j+1)
				m.FirstAirDate = "2020-01-01"
			} else {
				m.Title = fmt.Sprintf("%s #%d", c.Title, j+1)
				m.ReleaseDate = "2021-06-01"
			}
			movies[j] = m
		}
		return movies
	}
	return nil
}

func writeStatus(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success":        false,
		"status_message": message,
	})
}
