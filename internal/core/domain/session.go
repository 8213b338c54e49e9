package domain

// Session is the locally persisted credential pair: the opaque bearer token
// and the last user snapshot the server returned for it. The snapshot backs
// the synchronous role predicates between /auth/me refreshes.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

// Authenticated reports whether a token is present.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// SessionStore is the persistence contract for the session. Implementations
// live in internal/core/session. The store is injected into services and
// the guard rather than accessed as ambient global state, so tests can
// swap in an in-memory fake.
type SessionStore interface {
	// Get returns the current session. A store with nothing persisted
	// returns an empty session, never an error for mere absence.
	Get() (*Session, error)

	// SetAuth persists token and user together, overwriting unconditionally.
	SetAuth(token string, user *User) error

	// SetUser replaces only the cached user snapshot, preserving the token.
	SetUser(user *User) error

	// Clear removes both token and user. Clearing an empty store is a no-op.
	Clear() error
}
