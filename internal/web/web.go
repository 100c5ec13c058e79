// Package web serves the browser front end: the login page, the catalog home page and a JSON view of the catalog.
//
// # Shell
//
// The [App] is the web rendition of the application shell. It owns no session state of its own; it reads the
// [session.Manager] on every request and plays the manager's collaborators:
//
//   - [History] is the manager's navigator. Routes pushed during a form post become the redirect target.
//   - [Flash] is the manager's alerter. Alerts are shown once, on the next rendered page.
//
// # Routes
//
//	GET  /             → catalog home page (requires a signed-in user)
//	GET  /login        → sign in / sign up form
//	POST /login        → sign in
//	POST /signup       → sign up
//	POST /logout       → sign out
//	GET  /api/catalog  → catalog page as JSON (requires a signed-in user)
//	GET  /healthz      → liveness and session readiness
//	GET  /metrics      → Prometheus metrics, when [Opts.Metrics] is set
//
// Every route except /healthz and /metrics waits for the session to become ready before it renders.
//
// # Rows
//
// Home page rows are paginated server-side. The page of each row is read from a query parameter named after the
// row key, e.g. /?top_rated=2.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/reelx/internal/metrics"
	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/server"
	"github.com/desertthunder/reelx/internal/session"
	"github.com/desertthunder/reelx/internal/tasks"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	DefaultImageBase   = "https://image.tmdb.org/t/p"
	DefaultRowSize     = 6
	defaultReadyWindow = 10 * time.Second
)

// Opts configures an [App].
type Opts struct {
	Session   *session.Manager
	Loader    tasks.Loader
	History   *History
	Flash     *Flash
	Logger    *log.Logger
	Metrics   *metrics.Metrics
	ImageBase string          // TMDB image CDN base
	RowSize   int             // titles per row page
	Pick      func(n int) int // banner choice, defaults to rand.IntN

	// ReadyWindow bounds how long a request waits for the session to become ready.
	ReadyWindow time.Duration
}

// App renders the web front end. Create it with [New].
type App struct {
	sessions    *session.Manager
	loader      tasks.Loader
	history     *History
	flash       *Flash
	logger      *log.Logger
	metrics     *metrics.Metrics
	imageBase   string
	rowSize     int
	pick        func(n int) int
	readyWindow time.Duration
	pages       map[string]*template.Template
}

// New parses the embedded templates and returns an [App].
func New(opts Opts) (*App, error) {
	if opts.Session == nil || opts.Loader == nil {
		return nil, fmt.Errorf("web: session manager and loader are required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	app := &App{
		sessions:    opts.Session,
		loader:      opts.Loader,
		history:     opts.History,
		flash:       opts.Flash,
		logger:      logger.WithPrefix("web"),
		metrics:     opts.Metrics,
		imageBase:   opts.ImageBase,
		rowSize:     opts.RowSize,
		pick:        opts.Pick,
		readyWindow: opts.ReadyWindow,
	}
	if app.history == nil {
		app.history = NewHistory()
	}
	if app.flash == nil {
		app.flash = NewFlash()
	}
	if app.imageBase == "" {
		app.imageBase = DefaultImageBase
	}
	if app.rowSize <= 0 {
		app.rowSize = DefaultRowSize
	}
	if app.pick == nil {
		app.pick = rand.IntN
	}
	if app.readyWindow <= 0 {
		app.readyWindow = defaultReadyWindow
	}

	pages, err := parsePages(app.funcs())
	if err != nil {
		return nil, err
	}
	app.pages = pages
	return app, nil
}

// Handler returns the router serving every route of the app.
func (a *App) Handler() http.Handler {
	r := server.NewBasicRouter()
	r.Use(server.Defaults(a.logger)...)
	r.Use(a.metrics.Middleware)
	r.HandleFunc(http.MethodGet, "/healthz", a.health)
	if a.metrics != nil {
		r.Handle(http.MethodGet, "/metrics", a.metrics.Handler())
	}

	r.Use(a.requireReady)
	r.HandleFunc(http.MethodGet, "/login", a.loginPage)
	r.HandleFunc(http.MethodPost, "/login", a.signIn)
	r.HandleFunc(http.MethodPost, "/signup", a.signUp)
	r.HandleFunc(http.MethodPost, "/logout", a.logOut)

	r.Use(a.requireUser)
	r.HandleFunc(http.MethodGet, "/{$}", a.home)
	r.HandleFunc(http.MethodGet, "/api/catalog", a.catalogJSON)
	return r
}

func (a *App) funcs() template.FuncMap {
	return template.FuncMap{
		"backdrop":  func(m *models.Movie) string { return m.BackdropURL(a.imageBase) },
		"thumbnail": func(m models.Movie) string { return m.ThumbnailURL(a.imageBase) },
		"truncate":  truncate,
	}
}

func parsePages(funcs template.FuncMap) (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{"home", "login", "error"} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// requireReady holds requests until the first identity notification has arrived.
func (a *App) requireReady(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), a.readyWindow)
		defer cancel()

		if err := a.sessions.WaitReady(ctx); err != nil {
			a.logger.Warn("session not ready", "path", r.URL.Path, "error", err)
			w.Header().Set("Retry-After", "1")
			http.Error(w, "session is starting", http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireUser sends anonymous visitors to the login page.
func (a *App) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.sessions.CurrentUser() == nil {
			http.Redirect(w, r, session.LoginRoute, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
