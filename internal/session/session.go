package session

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/reelx/internal/identity"
	"github.com/desertthunder/reelx/internal/models"
)

const (
	LandingRoute = "/"
	LoginRoute   = "/login"
)

// Navigator pushes a route in whatever front end owns the manager.
type Navigator interface {
	Navigate(route string)
}

// Alerter shows a message to the user and returns once it has been shown.
type Alerter interface {
	Alert(message string)
}

// NavigatorFunc adapts a func to [Navigator].
type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) { f(route) }

// AlerterFunc adapts a func to [Alerter].
type AlerterFunc func(message string)

func (f AlerterFunc) Alert(message string) { f(message) }

// ManagerOpts holds the collaborators of a [Manager]. Nil fields get no-op defaults.
type ManagerOpts struct {
	Navigator Navigator
	Alerter   Alerter
	Logger    *log.Logger
}

// Snapshot is a consistent read of the manager state.
type Snapshot struct {
	User      *models.Identity
	AuthError string
	State     models.AuthRequestState
	Ready     bool
}

// Manager holds the session of the process. Create it with [NewManager].
type Manager struct {
	provider  identity.Provider
	navigator Navigator
	alerter   Alerter
	logger    *log.Logger

	mu       sync.RWMutex
	current  *models.Identity
	authErr  string
	inFlight int

	ready     chan struct{}
	readyOnce sync.Once

	subMu       sync.Mutex
	unsubscribe func()
}

// NewManager creates a manager for provider. Call [Manager.Start] to begin listening.
func NewManager(provider identity.Provider, opts ManagerOpts) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithPrefix("session")

	navigator := opts.Navigator
	if navigator == nil {
		navigator = NavigatorFunc(func(string) {})
	}
	alerter := opts.Alerter
	if alerter == nil {
		alerter = AlerterFunc(func(msg string) { logger.Warn(msg) })
	}

	return &Manager{
		provider:  provider,
		navigator: navigator,
		alerter:   alerter,
		logger:    logger,
		ready:     make(chan struct{}),
	}
}

// Start registers the manager's listener with the provider.
// It is a no-op while a subscription is active.
func (m *Manager) Start() {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	if m.unsubscribe != nil {
		return
	}
	m.logger.Debug("subscribing", "provider", m.provider.Name())
	m.unsubscribe = m.provider.Subscribe(m.onIdentity)
}

// Close releases the provider subscription. It is safe to call more than once.
func (m *Manager) Close() {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	if m.unsubscribe == nil {
		return
	}
	m.unsubscribe()
	m.unsubscribe = nil
}

func (m *Manager) onIdentity(id *models.Identity) {
	m.mu.Lock()
	m.current = id
	m.mu.Unlock()

	m.readyOnce.Do(func() {
		m.logger.Debug("ready")
		close(m.ready)
	})

	if id == nil {
		m.logger.Debug("anonymous")
		m.navigator.Navigate(LoginRoute)
		return
	}
	m.logger.Debug("authenticated", "id", id.ID)
}

// SignUp creates an account and, on success, adopts its identity and navigates to [LandingRoute].
//
// On failure the provider message is alerted and recorded in [Manager.AuthError]; the session is left unchanged.
func (m *Manager) SignUp(ctx context.Context, email, password string) error {
	return m.authenticate(ctx, "sign up", m.provider.CreateAccount, email, password)
}

// SignIn has the same contract as [Manager.SignUp] for an existing account.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	return m.authenticate(ctx, "sign in", m.provider.VerifyCredentials, email, password)
}

// LogOut ends the session. Success makes the session anonymous, failure is alerted.
func (m *Manager) LogOut(ctx context.Context) error {
	m.begin()
	defer m.settle()

	if err := m.provider.EndSession(ctx); err != nil {
		m.fail("log out", err)
		return err
	}

	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
	return nil
}

type credentialCall func(ctx context.Context, email, password string) (*models.Identity, error)

func (m *Manager) authenticate(ctx context.Context, op string, call credentialCall, email, password string) error {
	m.begin()
	defer m.settle()

	id, err := call(ctx, email, password)
	if err != nil {
		m.fail(op, err)
		return err
	}

	m.mu.Lock()
	m.current = id
	m.mu.Unlock()

	m.logger.Debug(op+" succeeded", "id", id.ID)
	m.navigator.Navigate(LandingRoute)
	return nil
}

func (m *Manager) begin() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authErr = ""
	m.inFlight++
}

func (m *Manager) settle() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight--
}

func (m *Manager) fail(op string, err error) {
	msg := identity.Message(err)

	m.mu.Lock()
	m.authErr = msg
	m.mu.Unlock()

	m.logger.Debug(op+" failed", "error", err)
	m.alerter.Alert(msg)
}

// CurrentUser returns the signed-in identity, or nil when anonymous.
func (m *Manager) CurrentUser() *models.Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// AuthError returns the message of the last failed call. It is cleared when the next call starts.
func (m *Manager) AuthError() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authErr
}

func (m *Manager) IsBusy() bool { return m.State() == models.Pending }

func (m *Manager) State() models.AuthRequestState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.inFlight > 0 {
		return models.Pending
	}
	return models.Idle
}

// Ready is closed once the first provider notification has arrived.
func (m *Manager) Ready() <-chan struct{} { return m.ready }

func (m *Manager) IsReady() bool {
	select {
	case <-m.ready:
		return true
	default:
		return false
	}
}

// WaitReady blocks until the manager is ready or ctx is done.
func (m *Manager) WaitReady(ctx context.Context) error {
	select {
	case <-m.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the current state in one read.
func (m *Manager) Snapshot() Snapshot {
	ready := m.IsReady()
	m.mu.RLock()
	defer m.mu.RUnlock()
	state := models.Idle
	if m.inFlight > 0 {
		state = models.Pending
	}
	return Snapshot{User: m.current, AuthError: m.authErr, State: state, Ready: ready}
}
