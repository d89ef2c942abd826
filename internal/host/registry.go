package host

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/adapty/internal/deck"
	"github.com/hpungsan/adapty/internal/errors"
	"github.com/hpungsan/adapty/internal/settings"
	"github.com/hpungsan/adapty/internal/study"
)

type entry struct {
	host     *Host
	lastUsed time.Time
}

// Registry holds the live hosts of front ends that serve many requests (web, MCP).
// Every call runs under one mutex, so a session sees one event at a time.
// Completed sessions are removed.
type Registry struct {
	mu    sync.Mutex
	hosts map[string]*entry
	log   *zap.Logger
	now   func() time.Time
}

// NewRegistry creates an empty Registry.
func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		hosts: make(map[string]*entry),
		log:   log,
		now:   time.Now,
	}
}

// Start creates a host for d and returns its session id with the first view.
func (r *Registry) Start(d deck.Deck, disp settings.Display, opts ...Option) (string, View) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := ulid.MustNew(ulid.Timestamp(r.now()), ulid.Monotonic(rand.Reader, 0)).String()
	opts = append([]Option{WithLogger(r.log.With(zap.String("session", id)))}, opts...)
	h := New(d, disp, opts...)
	r.hosts[id] = &entry{host: h, lastUsed: r.now()}
	return id, h.View()
}

// Do runs fn against the host with the given id while holding the registry lock.
func (r *Registry) Do(id string, fn func(*Host) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.hosts[id]
	if !ok {
		return errors.NewNotFound("session", id)
	}
	e.lastUsed = r.now()
	err := fn(e.host)
	if e.host.Completed() {
		delete(r.hosts, id)
	}
	return err
}

// Act dispatches one intent and returns the resulting view.
func (r *Registry) Act(id string, in Intent) (View, study.Transition, error) {
	var (
		v  View
		tr study.Transition
	)
	err := r.Do(id, func(h *Host) error {
		tr = h.Dispatch(in)
		v = h.View()
		return nil
	})
	return v, tr, err
}

// View returns the current view of a session.
func (r *Registry) View(id string) (View, error) {
	var v View
	err := r.Do(id, func(h *Host) error {
		v = h.View()
		return nil
	})
	return v, err
}

// SetDisplay applies new display settings to every live session.
func (r *Registry) SetDisplay(d settings.Display) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.hosts {
		e.host.SetDisplay(d)
	}
}

// End discards a session.
func (r *Registry) End(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.hosts[id]; !ok {
		return errors.NewNotFound("session", id)
	}
	delete(r.hosts, id)
	r.log.Debug("study session ended", zap.String("session", id))
	return nil
}

// Prune discards sessions idle for longer than maxIdle and returns how many were removed.
func (r *Registry) Prune(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxIdle)
	n := 0
	for id, e := range r.hosts {
		if e.lastUsed.Before(cutoff) {
			delete(r.hosts, id)
			n++
		}
	}
	if n > 0 {
		r.log.Info("pruned idle study sessions", zap.Int("count", n))
	}
	return n
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.hosts)
}
