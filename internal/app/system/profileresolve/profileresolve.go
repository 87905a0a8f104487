// internal/app/system/profileresolve/profileresolve.go
//
// Resolves a signed-in identity to its user document with a small,
// bounded retry. OAuth sign-ins create the user document lazily, so the
// first lookup right after the redirect can race the insert; retrying a
// couple of times with a short pause covers that window without hanging
// a request forever.
package profileresolve

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/langis/internal/domain/models"
)

// ErrUnresolved is returned once all attempts are exhausted. Callers
// should treat the identity as having no profile rather than retrying
// again themselves.
var ErrUnresolved = errors.New("profileresolve: profile not found after retries")

const (
	defaultAttempts = 3
	defaultPause    = time.Second
)

// LookupFunc fetches a user document by id. A (nil, nil) return means
// "not found yet" and triggers a retry.
type LookupFunc func(ctx context.Context, id primitive.ObjectID) (*models.User, error)

// Resolver retries a profile lookup a fixed number of times.
type Resolver struct {
	lookup   LookupFunc
	attempts int
	pause    time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
	log      *zap.Logger
}

func New(lookup LookupFunc, log *zap.Logger) *Resolver {
	return &Resolver{
		lookup:   lookup,
		attempts: defaultAttempts,
		pause:    defaultPause,
		sleep:    sleepCtx,
		log:      log,
	}
}

// SetSleep replaces the inter-attempt pause, used by tests to avoid
// real delays.
func (r *Resolver) SetSleep(fn func(ctx context.Context, d time.Duration) error) {
	r.sleep = fn
}

// Resolve tries the lookup up to the attempt limit. Lookup errors other
// than "not found" abort immediately; exhausting the attempts returns
// ErrUnresolved.
func (r *Resolver) Resolve(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	for attempt := 1; attempt <= r.attempts; attempt++ {
		u, err := r.lookup(ctx, id)
		if err != nil {
			return nil, err
		}
		if u != nil {
			return u, nil
		}
		if attempt == r.attempts {
			break
		}
		r.log.Debug("profile not found yet, retrying",
			zap.String("user_id", id.Hex()),
			zap.Int("attempt", attempt))
		if err := r.sleep(ctx, r.pause); err != nil {
			return nil, err
		}
	}
	return nil, ErrUnresolved
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Tracker caches the resolved profile for the current identity and
// exposes whether resolution ended in a terminal failure. SignOut
// clears everything synchronously so a stale profile can never outlive
// the session that produced it.
type Tracker struct {
	mu       sync.Mutex
	resolver *Resolver

	identity primitive.ObjectID
	profile  *models.User
	failed   bool
}

func NewTracker(resolver *Resolver) *Tracker {
	return &Tracker{resolver: resolver}
}

// OnIdentity resolves the profile for a newly signed-in identity. A
// repeat call with the same identity returns the cached result without
// another lookup round.
func (t *Tracker) OnIdentity(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	t.mu.Lock()
	if t.identity == id {
		if t.failed {
			t.mu.Unlock()
			return nil, ErrUnresolved
		}
		if t.profile != nil {
			p := t.profile
			t.mu.Unlock()
			return p, nil
		}
	}
	t.identity = id
	t.profile = nil
	t.failed = false
	t.mu.Unlock()

	u, err := t.resolver.Resolve(ctx, id)

	t.mu.Lock()
	defer t.mu.Unlock()
	// A sign-out (or a different sign-in) happened while we were
	// resolving; drop the result on the floor.
	if t.identity != id {
		if err != nil {
			return nil, err
		}
		return u, nil
	}
	if errors.Is(err, ErrUnresolved) {
		t.failed = true
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	t.profile = u
	return u, nil
}

// SignOut clears the cached identity and profile.
func (t *Tracker) SignOut() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.identity = primitive.NilObjectID
	t.profile = nil
	t.failed = false
}

// Profile returns the cached profile for the current identity, if any.
func (t *Tracker) Profile() (*models.User, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.profile == nil {
		return nil, false
	}
	return t.profile, true
}

// Failed reports whether resolution for the current identity ended in
// a terminal failure.
func (t *Tracker) Failed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failed
}

// Registry hands out one Tracker per identity so resolution results,
// including a terminal failure, hold across requests until the user
// signs out.
type Registry struct {
	mu       sync.Mutex
	resolver *Resolver
	trackers map[primitive.ObjectID]*Tracker
}

func NewRegistry(resolver *Resolver) *Registry {
	return &Registry{
		resolver: resolver,
		trackers: make(map[primitive.ObjectID]*Tracker),
	}
}

// Resolve returns the profile for an identity through its Tracker. A
// cached profile or terminal failure answers without another lookup
// round.
func (g *Registry) Resolve(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	g.mu.Lock()
	t, ok := g.trackers[id]
	if !ok {
		t = NewTracker(g.resolver)
		g.trackers[id] = t
	}
	g.mu.Unlock()
	return t.OnIdentity(ctx, id)
}

// Invalidate drops the identity's tracker so the next Resolve hits the
// store again. Profile mutations call this so a following page load
// never shows the pre-update document.
func (g *Registry) Invalidate(id primitive.ObjectID) {
	g.mu.Lock()
	if t, ok := g.trackers[id]; ok {
		t.SignOut()
		delete(g.trackers, id)
	}
	g.mu.Unlock()
}

// SignOut clears the identity's cached resolution state.
func (g *Registry) SignOut(id primitive.ObjectID) { g.Invalidate(id) }
