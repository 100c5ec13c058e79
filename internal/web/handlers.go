package web

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/session"
	"github.com/desertthunder/reelx/internal/shared"
)

// view is the data every template receives.
type view struct {
	Title string
	User  *models.Identity
	Flash []string

	// home
	Banner *models.Movie
	Rows   []rowView

	// login
	Email     string
	AuthError string
	Busy      bool

	// error
	Message string
}

type rowView struct {
	Key     models.CategoryKey
	Title   string
	Movies  []models.Movie
	Number  int
	Pages   int
	PrevURL string
	NextURL string
}

func (a *App) home(w http.ResponseWriter, r *http.Request) {
	page, err := a.loader.Load(r.Context(), nil)
	if err != nil {
		a.logger.Error("failed to load catalog", "error", err)
		a.render(w, http.StatusBadGateway, "error", view{
			Title:   "Error",
			Message: "The catalog could not be loaded. Please try again later.",
		})
		return
	}

	a.render(w, http.StatusOK, "home", view{
		Title:  "Home",
		Banner: page.Banner(a.pick),
		Rows:   a.paginate(page.Rows(), r.URL.Query()),
	})
}

// paginate cuts each row to the page selected by its query parameter.
func (a *App) paginate(rows []models.Row, q url.Values) []rowView {
	views := make([]rowView, 0, len(rows))
	for _, row := range rows {
		pages := max(1, (len(row.Movies)+a.rowSize-1)/a.rowSize)
		n, err := strconv.Atoi(q.Get(string(row.Key)))
		if err != nil || n < 1 {
			n = 1
		}
		n = min(n, pages)

		start := (n - 1) * a.rowSize
		end := min(start+a.rowSize, len(row.Movies))

		v := rowView{Key: row.Key, Title: row.Title, Movies: row.Movies[start:end], Number: n, Pages: pages}
		if n > 1 {
			v.PrevURL = pageURL(q, row.Key, n-1)
		}
		if n < pages {
			v.NextURL = pageURL(q, row.Key, n+1)
		}
		views = append(views, v)
	}
	return views
}

func pageURL(q url.Values, key models.CategoryKey, n int) string {
	next := url.Values{}
	for k, v := range q {
		next[k] = v
	}
	next.Set(string(key), strconv.Itoa(n))
	return "/?" + next.Encode() + "#" + string(key)
}

func (a *App) loginPage(w http.ResponseWriter, r *http.Request) {
	snap := a.sessions.Snapshot()
	if snap.User != nil {
		http.Redirect(w, r, session.LandingRoute, http.StatusSeeOther)
		return
	}

	a.render(w, http.StatusOK, "login", view{
		Title:     "Sign In",
		Email:     r.URL.Query().Get("email"),
		AuthError: snap.AuthError,
		Busy:      snap.State == models.Pending,
	})
}

func (a *App) signIn(w http.ResponseWriter, r *http.Request) {
	a.credentials(w, r, a.sessions.SignIn)
}

func (a *App) signUp(w http.ResponseWriter, r *http.Request) {
	a.credentials(w, r, a.sessions.SignUp)
}

type credentialFunc func(ctx context.Context, email, password string) error

// credentials runs a sign in or sign up form post and redirects to the route the session pushed.
// Failures go back to the login form, which shows the alert.
func (a *App) credentials(w http.ResponseWriter, r *http.Request, call credentialFunc) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	email := r.PostFormValue("email")

	a.history.Take("")
	if err := call(r.Context(), email, r.PostFormValue("password")); err != nil {
		http.Redirect(w, r, session.LoginRoute+"?"+url.Values{"email": {email}}.Encode(), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, a.history.Take(session.LandingRoute), http.StatusSeeOther)
}

func (a *App) logOut(w http.ResponseWriter, r *http.Request) {
	a.history.Take("")
	if err := a.sessions.LogOut(r.Context()); err != nil {
		http.Redirect(w, r, session.LandingRoute, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, a.history.Take(session.LoginRoute), http.StatusSeeOther)
}

func (a *App) catalogJSON(w http.ResponseWriter, r *http.Request) {
	page, err := a.loader.Load(r.Context(), nil)
	if err != nil {
		a.logger.Error("failed to load catalog", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	snap := a.sessions.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"ready":         snap.Ready,
		"authenticated": snap.User != nil,
	})
}

// render executes the page into a buffer first so template errors become a 500.
func (a *App) render(w http.ResponseWriter, status int, name string, v view) {
	v.User = a.sessions.CurrentUser()
	v.Flash = a.flash.Drain()

	var buf bytes.Buffer
	if err := a.pages[name].ExecuteTemplate(&buf, "layout", v); err != nil {
		a.logger.Error("failed to render template", "template", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := shared.MarshalJSON(v, false)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}
