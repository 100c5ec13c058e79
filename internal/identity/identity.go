package identity

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
)

// Listener receives the new identity after every change, or nil once the session is anonymous.
type Listener = func(*models.Identity)

// Provider is an email/password identity backend.
type Provider interface {
	// CreateAccount registers a new account and signs it in.
	CreateAccount(ctx context.Context, email, password string) (*models.Identity, error)

	// VerifyCredentials signs an existing account in.
	VerifyCredentials(ctx context.Context, email, password string) (*models.Identity, error)

	// EndSession signs the current account out.
	EndSession(ctx context.Context) error

	// Subscribe registers fn for identity notifications.
	// The current identity is delivered right away, then every change.
	// The returned func removes the registration and is safe to call more than once.
	Subscribe(fn Listener) (unsubscribe func())

	// Name returns the provider name (e.g., "local", "firebase")
	Name() string
}

// Error codes shared by both providers. The values follow the Identity Toolkit wire codes.
const (
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeInvalidEmail       = "INVALID_EMAIL"
	CodeWeakPassword       = "WEAK_PASSWORD"
	CodeMissingPassword    = "MISSING_PASSWORD"
	CodeInvalidCredentials = "INVALID_LOGIN_CREDENTIALS"
	CodeEmailNotFound      = "EMAIL_NOT_FOUND"
	CodeInvalidPassword    = "INVALID_PASSWORD"
	CodeUserDisabled       = "USER_DISABLED"
	CodeTooManyAttempts    = "TOO_MANY_ATTEMPTS_TRY_LATER"
	CodeInternal           = "INTERNAL_ERROR"
)

// MinPasswordLength is the shortest password either provider accepts.
const MinPasswordLength = 6

var messages = map[string]string{
	CodeEmailExists:        "The email address is already in use by another account.",
	CodeInvalidEmail:       "The email address is badly formatted.",
	CodeWeakPassword:       "Password should be at least 6 characters.",
	CodeMissingPassword:    "A password is required.",
	CodeInvalidCredentials: "The email or password is incorrect.",
	CodeEmailNotFound:      "There is no account with this email address.",
	CodeInvalidPassword:    "The password is invalid.",
	CodeUserDisabled:       "The account has been disabled.",
	CodeTooManyAttempts:    "Access has been temporarily disabled due to many failed attempts. Try again later.",
}

var sentinels = map[string]error{
	CodeEmailExists:        shared.ErrEmailExists,
	CodeInvalidEmail:       shared.ErrInvalidInput,
	CodeWeakPassword:       shared.ErrInvalidInput,
	CodeMissingPassword:    shared.ErrInvalidInput,
	CodeInvalidCredentials: shared.ErrInvalidCredentials,
	CodeEmailNotFound:      shared.ErrInvalidCredentials,
	CodeInvalidPassword:    shared.ErrInvalidCredentials,
	CodeUserDisabled:       shared.ErrAuthFailed,
	CodeTooManyAttempts:    shared.ErrServiceUnavailable,
}

// Error is a provider failure. Message is meant for the user.
type Error struct {
	Code    string
	Message string
	Err     error
}

// NewError builds an [*Error] for a known code.
// Unknown codes keep the code itself as the message.
func NewError(code string) *Error {
	msg, ok := messages[code]
	if !ok {
		msg = code
	}
	err, ok := sentinels[code]
	if !ok {
		err = shared.ErrAuthFailed
	}
	return &Error{Code: code, Message: msg, Err: err}
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Err }

// Message returns the text to show the user for err.
func Message(err error) string {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// notifier is the listener registry embedded by providers.
//
// Deliveries run one at a time in emission order under emitMu.
// Listeners may unsubscribe from inside a callback but must not publish.
type notifier struct {
	emitMu    sync.Mutex
	mu        sync.Mutex
	current   *models.Identity
	nextID    int
	listeners map[int]Listener
}

func (n *notifier) subscribe(fn Listener) func() {
	n.emitMu.Lock()
	defer n.emitMu.Unlock()

	n.mu.Lock()
	if n.listeners == nil {
		n.listeners = make(map[int]Listener)
	}
	id := n.nextID
	n.nextID++
	n.listeners[id] = fn
	current := n.current
	n.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.listeners, id)
			n.mu.Unlock()
		})
	}
}

func (n *notifier) publish(identity *models.Identity) {
	n.emitMu.Lock()
	defer n.emitMu.Unlock()

	n.mu.Lock()
	n.current = identity
	ids := make([]int, 0, len(n.listeners))
	for id := range n.listeners {
		ids = append(ids, id)
	}
	n.mu.Unlock()

	slices.Sort(ids)
	for _, id := range ids {
		n.mu.Lock()
		fn, ok := n.listeners[id]
		n.mu.Unlock()
		if ok {
			fn(identity)
		}
	}
}

// Current returns the identity most recently published.
func (n *notifier) Current() *models.Identity {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// subscribers reports how many listeners are registered.
func (n *notifier) subscribers() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}
