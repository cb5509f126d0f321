package reminder

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Request describes one local notification to register.
type Request struct {
	ID     string
	TaskID string
	FireAt time.Time
	Title  string
	Body   string
}

// Notifier is the local notification service. The Scheduler is its only
// caller.
type Notifier interface {
	// RequestAuthorization asks the user for permission and returns the
	// decision.
	RequestAuthorization(ctx context.Context) (bool, error)
	// CheckAuthorization returns the current permission without prompting.
	CheckAuthorization(ctx context.Context) (bool, error)
	// Schedule registers req, replacing any registration with the same ID.
	Schedule(ctx context.Context, req Request) error
	// Cancel removes the registration with the given ID, pending or
	// delivered. Unknown IDs are not an error.
	Cancel(ctx context.Context, id string) error
}

// MemoryNotifier is an in-process Notifier. It keeps at most one
// registration per ID.
type MemoryNotifier struct {
	mu       sync.Mutex
	granted  bool
	pending  map[string]Request
	requests int
}

// NewMemoryNotifier creates a MemoryNotifier whose permission prompt will
// answer granted.
func NewMemoryNotifier(granted bool) *MemoryNotifier {
	return &MemoryNotifier{
		granted: granted,
		pending: make(map[string]Request),
	}
}

func (m *MemoryNotifier) RequestAuthorization(context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests++
	return m.granted, nil
}

func (m *MemoryNotifier) CheckAuthorization(context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.granted, nil
}

func (m *MemoryNotifier) Schedule(_ context.Context, req Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[req.ID] = req
	return nil
}

func (m *MemoryNotifier) Cancel(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, id)
	return nil
}

// SetGranted changes the permission the notifier reports.
func (m *MemoryNotifier) SetGranted(granted bool) {
	m.mu.Lock()
	m.granted = granted
	m.mu.Unlock()
}

// Pending returns the registered requests ordered by fire time.
func (m *MemoryNotifier) Pending() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Request, 0, len(m.pending))
	for _, r := range m.pending {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FireAt.Equal(out[j].FireAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].FireAt.Before(out[j].FireAt)
	})
	return out
}

// AuthorizationRequests reports how many times the user was prompted.
func (m *MemoryNotifier) AuthorizationRequests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests
}

// Get returns the registration with the given ID.
func (m *MemoryNotifier) Get(id string) (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.pending[id]
	return r, ok
}
