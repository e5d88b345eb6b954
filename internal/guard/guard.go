// Package guard gates protected views on the session store's
// readiness and authentication flags. It is deliberately free of any
// rendering concern: the TUI layer subscribes to decisions and draws
// the waiting/redirecting states itself.
package guard

import (
	"sync"

	"github.com/maisondecor/maison/internal/session"
)

// Decision is the guard's verdict for a protected view.
type Decision int

const (
	// DecisionWait means bootstrap has not finished; show a waiting
	// state and perform no navigation yet.
	DecisionWait Decision = iota
	// DecisionRedirect means the visitor is not (or no longer)
	// authenticated; send them to the login entry point.
	DecisionRedirect
	// DecisionAllow means the protected content may render.
	DecisionAllow
)

// String returns the decision name for logs and tests.
func (d Decision) String() string {
	switch d {
	case DecisionWait:
		return "wait"
	case DecisionRedirect:
		return "redirect"
	case DecisionAllow:
		return "allow"
	default:
		return "unknown"
	}
}

// Evaluate maps an auth state onto a decision. Readiness dominates:
// until the store is ready nothing navigates, so a slow silent refresh
// at startup cannot bounce a returning admin through the login screen.
func Evaluate(st session.AuthState) Decision {
	if !st.Ready {
		return DecisionWait
	}
	if !st.Authenticated || st.LoggedOut {
		return DecisionRedirect
	}
	return DecisionAllow
}

// Guard evaluates a store's current state and republishes decisions on
// every state transition.
type Guard struct {
	store *session.Store
}

// New creates a Guard over the given store.
func New(store *session.Store) *Guard {
	return &Guard{store: store}
}

// Decision evaluates the store's current snapshot.
func (g *Guard) Decision() Decision {
	return Evaluate(g.store.Snapshot())
}

// Watch subscribes fn to decision changes. fn runs once immediately
// with the current decision, then again after every store transition
// that changes the verdict — a background refresh failure flips an
// on-screen DecisionAllow to DecisionRedirect through this path. The
// returned cancel func stops the subscription.
func (g *Guard) Watch(fn func(Decision)) (cancel func()) {
	var mu sync.Mutex
	last := g.Decision()
	fn(last)

	return g.store.Subscribe(func(st session.AuthState) {
		next := Evaluate(st)
		mu.Lock()
		changed := next != last
		last = next
		mu.Unlock()
		if changed {
			fn(next)
		}
	})
}
