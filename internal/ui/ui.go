package ui

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/session"
	"github.com/desertthunder/reelx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	StartingView ViewState = iota
	AuthView
	LoadingView
	BrowseView
	ErrorView
)

const defaultImageBase = "https://image.tmdb.org/t/p"

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	sessions  *session.Manager
	loader    tasks.Loader
	imageBase string
	pick      func(n int) int
	width     int
	height    int

	email    textinput.Model
	password textinput.Model
	authBusy bool

	page    *models.CatalogPage
	banner  *models.Movie
	rows    []models.Row
	row     int
	cursor  []int
	rowList list.Model

	progressChan <-chan tasks.ProgressUpdate
	doneChan     <-chan Msg
	progress     tasks.ProgressUpdate

	alert string
	err   error
	help  help.Model
	keys  keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
//
// Route changes reach the model through a [Bridge] attached to the program that runs it.
func NewModel(ctx context.Context, sessions *session.Manager, loader tasks.Loader) *Model {
	email := textinput.New()
	email.Placeholder = "Email"
	email.Prompt = "  "
	email.Focus()

	password := textinput.New()
	password.Placeholder = "Password"
	password.Prompt = "  "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	rowList := list.New(nil, list.NewDefaultDelegate(), 80, 20)
	rowList.SetShowHelp(false)
	rowList.SetFilteringEnabled(false)
	rowList.SetShowStatusBar(false)

	return &Model{
		ctx:       ctx,
		view:      StartingView,
		sessions:  sessions,
		loader:    loader,
		imageBase: defaultImageBase,
		pick:      rand.IntN,
		email:     email,
		password:  password,
		rowList:   rowList,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// SetImageBase sets the TMDB image CDN base used for artwork links.
func (m *Model) SetImageBase(base string) {
	if base != "" {
		m.imageBase = base
	}
}

// Init waits for the session to become ready.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitReady(), textinput.Blink)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.rowList.SetSize(msg.Width-4, max(msg.Height-16, 4))
		return m, nil

	case tea.KeyMsg:
		m.alert = ""
		switch m.view {
		case StartingView, LoadingView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case AuthView:
			return m.handleAuthKeys(msg)
		case BrowseView:
			return m.handleBrowseKeys(msg)
		case ErrorView:
			return m.handleErrorKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateInputs(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgReady:
		if m.view != StartingView {
			return m, nil
		}
		if m.sessions.CurrentUser() == nil {
			return m, m.showAuth()
		}
		return m, m.loadCatalog()

	case MsgRoute:
		route, _ := msg.data.(string)
		var cmd tea.Cmd
		switch route {
		case session.LoginRoute:
			cmd = m.showAuth()
		case session.LandingRoute:
			cmd = m.loadCatalog()
		}
		return m, cmd

	case MsgAlert:
		m.alert, _ = msg.data.(string)
		return m, nil

	case MsgAuthDone:
		m.authBusy = false
		if err, _ := msg.data.(error); err != nil {
			m.password.SetValue("")
		}
		return m, nil

	case MsgProgressUpdate:
		m.progress, _ = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgCatalogLoaded:
		res, _ := msg.data.(catalogResult)
		m.progressChan, m.doneChan = nil, nil
		if m.view != LoadingView {
			return m, nil
		}
		if res.err != nil {
			m.err = res.err
			m.view = ErrorView
			return m, nil
		}
		m.showCatalog(res.page)
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case StartingView:
		body = styles.help.Render("Starting…")
	case AuthView:
		body = m.renderAuth()
	case LoadingView:
		body = m.renderLoading()
	case BrowseView:
		body = m.renderBrowse()
	case ErrorView:
		body = m.renderError()
	}

	if m.alert != "" {
		body = styles.warn.Render(m.alert) + "\n\n" + body
	}
	return body
}

func (m *Model) showAuth() tea.Cmd {
	m.view = AuthView
	m.page, m.banner, m.rows = nil, nil, nil
	m.password.SetValue("")
	m.password.Blur()
	return m.email.Focus()
}

func (m *Model) showCatalog(page *models.CatalogPage) {
	m.page = page
	m.banner = page.Banner(m.pick)
	m.rows = page.Rows()
	m.cursor = make([]int, len(m.rows))
	m.row = 0
	m.view = BrowseView
	m.selectRow(0)
}

// selectRow swaps the list to row i, restoring the title last selected in it.
func (m *Model) selectRow(i int) {
	if len(m.rows) == 0 {
		return
	}
	m.row = i
	m.rowList.SetItems(movieItems(m.rows[i].Movies))
	m.rowList.Title = fmt.Sprintf("%s (%d/%d)", m.rows[i].Title, i+1, len(m.rows))
	m.rowList.Select(m.cursor[i])
}

func (m *Model) handleAuthKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.abort):
		return m, tea.Quit
	case key.Matches(msg, m.keys.next):
		if m.email.Focused() {
			m.email.Blur()
			return m, m.password.Focus()
		}
		m.password.Blur()
		return m, m.email.Focus()
	case key.Matches(msg, m.keys.signIn):
		return m, m.authenticate(m.sessions.SignIn)
	case key.Matches(msg, m.keys.signUp):
		return m, m.authenticate(m.sessions.SignUp)
	}
	return m.updateInputs(msg)
}

func (m *Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.left):
		if m.row > 0 {
			m.cursor[m.row] = m.rowList.Index()
			m.selectRow(m.row - 1)
		}
		return m, nil
	case key.Matches(msg, m.keys.right):
		if m.row < len(m.rows)-1 {
			m.cursor[m.row] = m.rowList.Index()
			m.selectRow(m.row + 1)
		}
		return m, nil
	case key.Matches(msg, m.keys.reload):
		return m, m.loadCatalog()
	case key.Matches(msg, m.keys.signOut):
		return m, m.logOut()
	}

	var cmd tea.Cmd
	m.rowList, cmd = m.rowList.Update(msg)
	return m, cmd
}

func (m *Model) handleErrorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.reload):
		m.err = nil
		return m, m.loadCatalog()
	case key.Matches(msg, m.keys.signOut):
		return m, m.logOut()
	}
	return m, nil
}

func (m *Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view != AuthView {
		return m, nil
	}
	var emailCmd, passwordCmd tea.Cmd
	m.email, emailCmd = m.email.Update(msg)
	m.password, passwordCmd = m.password.Update(msg)
	return m, tea.Batch(emailCmd, passwordCmd)
}

// authenticate runs a sign in or sign up call off the update loop.
// Success is observed through the landing route the manager pushes.
func (m *Model) authenticate(call func(ctx context.Context, email, password string) error) tea.Cmd {
	if m.authBusy || m.sessions.IsBusy() {
		return nil
	}
	m.authBusy = true
	email, password := m.email.Value(), m.password.Value()
	return func() tea.Msg {
		return authDoneMsg(call(m.ctx, email, password))
	}
}

func (m *Model) logOut() tea.Cmd {
	return func() tea.Msg {
		return authDoneMsg(m.sessions.LogOut(m.ctx))
	}
}

func (m *Model) waitReady() tea.Cmd {
	return func() tea.Msg {
		if err := m.sessions.WaitReady(m.ctx); err != nil {
			return nil
		}
		return readyMsg()
	}
}

func (m *Model) loadCatalog() tea.Cmd {
	if m.doneChan != nil {
		m.view = LoadingView
		return nil
	}

	progress := make(chan tasks.ProgressUpdate, len(models.Categories)+1)
	done := make(chan Msg, 1)
	m.progressChan, m.doneChan = progress, done
	m.progress = tasks.ProgressUpdate{}
	m.view = LoadingView

	go func() {
		page, err := m.loader.Load(m.ctx, progress)
		done <- catalogLoadedMsg(page, err)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.doneChan
	if done == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case update := <-progress:
			return progressUpdateMsg(update)
		case msg := <-done:
			return msg
		}
	}
}

func (m *Model) renderAuth() string {
	title := styles.title.Render("REELX · Sign In")

	var status string
	if m.authBusy {
		status = styles.help.Render("Working…")
	} else if msg := m.sessions.AuthError(); msg != "" && m.alert == "" {
		status = styles.err.Render(msg)
	}

	helpKeys := []key.Binding{m.keys.next, m.keys.signIn, m.keys.signUp, m.keys.abort}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s\n\n%s\n\n%s", title, m.email.View(), m.password.View(), status, helpView)
}

func (m *Model) renderLoading() string {
	title := styles.title.Render("Loading catalog")
	line := "Requesting categories…"
	if m.progress.Total > 0 {
		line = styles.ok.Render(m.progress.Message)
	}
	return fmt.Sprintf("%s\n\n%s", title, line)
}

func (m *Model) renderBrowse() string {
	var b strings.Builder

	header := styles.title.Render("REELX")
	if user := m.sessions.CurrentUser(); user != nil {
		header = fmt.Sprintf("%s  %s", header, styles.help.Render(user.Email))
	}
	b.WriteString(header + "\n")

	if m.banner != nil {
		banner := fmt.Sprintf("%s\n%s\n%s",
			styles.row.Render(m.banner.DisplayTitle()),
			styles.overview.Render(truncate(m.banner.Overview, 150)),
			styles.help.Render(m.banner.BackdropURL(m.imageBase)),
		)
		b.WriteString(styles.banner.Render(banner) + "\n\n")
	}

	b.WriteString(m.rowList.View() + "\n")

	if item, ok := m.rowList.SelectedItem().(movieItem); ok {
		b.WriteString("\n" + styles.overview.Render(truncate(item.movie.Overview, 240)) + "\n")
	}

	helpKeys := []key.Binding{m.keys.left, m.keys.right, m.keys.up, m.keys.down, m.keys.reload, m.keys.signOut, m.keys.quit}
	b.WriteString("\n" + m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderError() string {
	msg := styles.err.Render(fmt.Sprintf("The catalog could not be loaded: %v", m.err))
	helpKeys := []key.Binding{m.keys.reload, m.keys.signOut, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", msg, m.help.ShortHelpView(helpKeys))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
