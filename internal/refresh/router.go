package refresh

import (
	"sync"
	"time"

	"github.com/sprava/spravaterm/internal/bus"
	"github.com/sprava/spravaterm/internal/transport"
	"go.uber.org/zap"
)

// InvalidateFunc performs the refresh side effect for one dirty scope.
// It must be idempotent; the router may call it for the same scope any
// number of times.
type InvalidateFunc func(scope string)

// Router turns the transport's event stream into cache invalidations and
// keeps the process-wide online set. The mapping itself lives in Scopes;
// the router only wires it to the injected invalidator, so the table stays
// testable without a network or a cache.
type Router struct {
	invalidate InvalidateFunc
	bus        *bus.Bus
	logger     *zap.Logger

	mu     sync.RWMutex
	online map[int64]struct{}

	unsubscribe func()
}

// NewRouter creates a router that calls invalidate for every dirty scope.
func NewRouter(invalidate InvalidateFunc, b *bus.Bus, logger *zap.Logger) *Router {
	return &Router{
		invalidate: invalidate,
		bus:        b,
		logger:     logger,
		online:     make(map[int64]struct{}),
	}
}

// Start subscribes the router to the transport's event stream.
func (r *Router) Start(t *transport.Transport) {
	r.unsubscribe = t.Subscribe(r.Handle)
}

// Stop detaches the router from the transport.
func (r *Router) Stop() {
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
}

// Handle processes one push event: presence events mutate the online set,
// typing is republished for the views, everything else becomes scope
// invalidations.
func (r *Router) Handle(evt transport.Event) {
	switch e := evt.(type) {
	case transport.PresenceSnapshot:
		r.mu.Lock()
		r.online = make(map[int64]struct{}, len(e.Friends))
		for _, id := range e.Friends {
			r.online[id] = struct{}{}
		}
		r.mu.Unlock()
		r.publish(bus.KindPresenceChanged, bus.PresenceChanged{})
		return

	case transport.PresenceChange:
		r.mu.Lock()
		if e.Online {
			r.online[e.UserID] = struct{}{}
		} else {
			delete(r.online, e.UserID)
		}
		r.mu.Unlock()
		r.publish(bus.KindPresenceChanged, bus.PresenceChanged{UserID: e.UserID, Online: e.Online})
		return

	case transport.Typing:
		r.publish(bus.KindTypingChanged, bus.TypingChanged{UserID: e.UserID, IsTyping: e.IsTyping})
		return
	}

	for _, scope := range Scopes(evt) {
		r.logger.Debug("scope invalidated", zap.String("scope", scope))
		if r.invalidate != nil {
			r.invalidate(scope)
		}
		r.publish(bus.KindScopeInvalidated, bus.ScopeInvalidated{Scope: scope})
	}
}

// IsOnline reports whether the user is in the current online set.
func (r *Router) IsOnline(userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.online[userID]
	return ok
}

// OnlineIDs returns a copy of the current online set.
func (r *Router) OnlineIDs() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int64, 0, len(r.online))
	for id := range r.online {
		ids = append(ids, id)
	}
	return ids
}

// Reset clears the online set, used when the session ends.
func (r *Router) Reset() {
	r.mu.Lock()
	r.online = make(map[int64]struct{})
	r.mu.Unlock()
}

func (r *Router) publish(kind string, payload any) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(bus.Event{Kind: kind, Timestamp: time.Now(), Payload: payload})
}
