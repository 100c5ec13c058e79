package testing

import (
	"context"
	"sync"

	"github.com/desertthunder/reelx/internal/models"
)

// FakeProvider is a scriptable identity provider.
//
// It never notifies on its own except after a successful call; use Emit to
// simulate provider-driven changes. When Gate is non-nil every call blocks
// until a value is received from it or ctx is done.
type FakeProvider struct {
	mu        sync.Mutex
	listeners map[int]func(*models.Identity)
	nextID    int

	Identity  *models.Identity // returned by CreateAccount and VerifyCredentials
	CreateErr error
	VerifyErr error
	EndErr    error
	Gate      chan struct{}

	Calls    []string
	Entered  chan string // receives the method name as each call starts, when non-nil
	NoNotify bool        // suppress notifications after successful calls
}

func NewFakeProvider(identity *models.Identity) *FakeProvider {
	return &FakeProvider{Identity: identity, listeners: make(map[int]func(*models.Identity))}
}

func (f *FakeProvider) Name() string { return "fake" }

func (f *FakeProvider) CreateAccount(ctx context.Context, email, password string) (*models.Identity, error) {
	if err := f.enter(ctx, "CreateAccount"); err != nil {
		return nil, err
	}
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	f.notify(f.Identity)
	return f.Identity, nil
}

func (f *FakeProvider) VerifyCredentials(ctx context.Context, email, password string) (*models.Identity, error) {
	if err := f.enter(ctx, "VerifyCredentials"); err != nil {
		return nil, err
	}
	if f.VerifyErr != nil {
		return nil, f.VerifyErr
	}
	f.notify(f.Identity)
	return f.Identity, nil
}

func (f *FakeProvider) EndSession(ctx context.Context) error {
	if err := f.enter(ctx, "EndSession"); err != nil {
		return err
	}
	if f.EndErr != nil {
		return f.EndErr
	}
	f.notify(nil)
	return nil
}

// Subscribe registers fn without an initial delivery.
func (f *FakeProvider) Subscribe(fn func(*models.Identity)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listeners == nil {
		f.listeners = make(map[int]func(*models.Identity))
	}
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.listeners, id)
	}
}

// Emit delivers identity to every subscriber.
func (f *FakeProvider) Emit(identity *models.Identity) {
	f.mu.Lock()
	fns := make([]func(*models.Identity), 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(identity)
	}
}

// Subscribers reports how many listeners are registered.
func (f *FakeProvider) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

// CallCount reports how many times method was called.
func (f *FakeProvider) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c == method {
			n++
		}
	}
	return n
}

func (f *FakeProvider) enter(ctx context.Context, method string) error {
	f.mu.Lock()
	f.Calls = append(f.Calls, method)
	f.mu.Unlock()

	if f.Entered != nil {
		f.Entered <- method
	}
	if f.Gate == nil {
		return nil
	}
	select {
	case <-f.Gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *FakeProvider) notify(identity *models.Identity) {
	if !f.NoNotify {
		f.Emit(identity)
	}
}

// Navigation records route pushes.
type Navigation struct {
	mu     sync.Mutex
	routes []string
}

func (n *Navigation) Navigate(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
}

func (n *Navigation) Routes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.routes...)
}

// Alerts records alert messages.
type Alerts struct {
	mu       sync.Mutex
	messages []string
}

func (a *Alerts) Alert(message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = append(a.messages, message)
}

func (a *Alerts) Messages() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.messages...)
}
