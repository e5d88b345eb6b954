// Package session owns the client-side authentication state: the current
// session record, its durable persistence, and the observable flags that
// drive protected views.
//
// The Store is the single source of truth for "is the user logged in".
// Network code never mutates session state directly; it is handed
// callbacks at wiring time instead.
package session

// RoleAdmin is the only role allowed to hold a dashboard session.
const RoleAdmin = "admin"

// Identity describes the authenticated user as returned by the backend.
type Identity struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Session is the authenticated-user record: identity plus the current
// access token. A session never carries a token without an identity.
type Session struct {
	Identity    Identity `json:"identity"`
	AccessToken string   `json:"accessToken"`
}

// IsZero reports whether the identity carries no data.
func (i Identity) IsZero() bool {
	return i == Identity{}
}

// AuthState is the observable authentication view consumed by the
// route guard and the command layer.
type AuthState struct {
	// Session is the current session, or nil when anonymous.
	Session *Session

	// Ready becomes true exactly once, after bootstrap completes
	// (success or failure), and never reverts.
	Ready bool

	// Authenticated is true only while a session is held.
	Authenticated bool

	// LoggedOut marks an explicit logout. It distinguishes "was never
	// logged in" from "was just evicted"; protected views use it to
	// redirect immediately.
	LoggedOut bool

	// LastError holds the most recent user-visible auth failure.
	LastError string
}

// clone returns a deep copy safe to hand to subscribers.
func (s AuthState) clone() AuthState {
	out := s
	if s.Session != nil {
		copied := *s.Session
		out.Session = &copied
	}
	return out
}
