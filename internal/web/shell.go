package web

import (
	"slices"
	"sync"
)

// History records the routes the session manager navigates to.
//
// A form handler redirects to the route pushed while it ran, see [History.Take].
type History struct {
	mu      sync.Mutex
	routes  []string
	pending string
}

func NewHistory() *History { return &History{} }

// Navigate implements session.Navigator.
func (h *History) Navigate(route string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, route)
	h.pending = route
}

// Take returns the last pushed route and clears it, or fallback when nothing was pushed.
func (h *History) Take(fallback string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	route := h.pending
	h.pending = ""
	if route == "" {
		return fallback
	}
	return route
}

// Routes returns every route pushed so far.
func (h *History) Routes() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.routes)
}

// Flash queues alert messages until the next page render.
type Flash struct {
	mu       sync.Mutex
	messages []string
}

func NewFlash() *Flash { return &Flash{} }

// Alert implements session.Alerter.
func (f *Flash) Alert(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
}

// Drain returns the queued messages and empties the queue.
func (f *Flash) Drain() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.messages
	f.messages = nil
	return out
}
