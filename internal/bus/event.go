package bus

import "time"

// Event kinds published in-process. Namespaces group related kinds so a
// subscriber can ask for a whole family with a prefix ("scope.", "presence.").
const (
	KindScopeInvalidated  = "scope.invalidated"
	KindPresenceChanged   = "presence.changed"
	KindTypingChanged     = "typing.changed"
	KindTransportState    = "transport.state_changed"
	KindTransportRejected = "transport.credential_rejected"
	KindSessionLoggedIn   = "session.logged_in"
	KindSessionLoggedOut  = "session.logged_out"
)

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// ScopeInvalidated is the payload for scope.invalidated events.
type ScopeInvalidated struct {
	Scope string
}

// PresenceChanged is the payload for presence.changed events. UserID is zero
// when a full snapshot replaced the online set.
type PresenceChanged struct {
	UserID int64
	Online bool
}

// TypingChanged is the payload for typing.changed events.
type TypingChanged struct {
	UserID   int64
	IsTyping bool
}
