package forms

import (
	"context"
	"sync"
	"time"

	"github.com/angelmondragon/content-console/internal/assets"
	"github.com/angelmondragon/content-console/pkg/enums"
	pkgerrors "github.com/angelmondragon/content-console/pkg/errors"
	"github.com/angelmondragon/content-console/pkg/logger"
)

// Session is the type-erased view of a Form used by the HTTP layer.
type Session interface {
	ID() string
	Resource() enums.Resource
	Snapshot() Snapshot
	SetFields(values map[string]string) error
	Stage(ctx context.Context, file assets.File) (assets.View, error)
	RemoveAsset(index int) error
	SetPairs(pairs []Pair) error
	SubmitRecord(ctx context.Context) (any, error)
	Submitting() bool
	LastActive() time.Time
	Close() error
}

var _ Session = (*Form[struct{}])(nil)

// Registry keeps open form sessions and expires idle ones.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
	logg     *logger.Logger
}

func NewRegistry(ttl time.Duration, logg *logger.Logger) *Registry {
	return &Registry{
		sessions: map[string]Session{},
		ttl:      ttl,
		now:      time.Now,
		logg:     logg,
	}
}

func (r *Registry) Add(s Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID()] = s
}

// Get returns the session if it exists and has not expired.
func (r *Registry) Get(id string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || r.expired(s) {
		if ok {
			delete(r.sessions, id)
			_ = s.Close()
		}
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "form session not found")
	}
	return s, nil
}

// Close ends a session and removes it. A submitting session stays open.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "form session not found")
	}
	if err := s.Close(); err != nil {
		return err
	}
	delete(r.sessions, id)
	return nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops idle sessions and returns how many were removed.
func (r *Registry) Sweep(ctx context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, s := range r.sessions {
		if !r.expired(s) {
			continue
		}
		if err := s.Close(); err != nil {
			continue
		}
		delete(r.sessions, id)
		removed++
	}
	if removed > 0 && r.logg != nil {
		r.logg.Info(r.logg.WithField(ctx, "expired_sessions", removed), "form sessions expired")
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// expired must be called with r.mu held.
func (r *Registry) expired(s Session) bool {
	if r.ttl <= 0 || s.Submitting() {
		return false
	}
	return r.now().Sub(s.LastActive()) > r.ttl
}
