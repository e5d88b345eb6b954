package session

import (
	"context"
	"sync"
	"time"

	"github.com/maisondecor/maison/internal/errors"
	"github.com/maisondecor/maison/internal/log"
)

// AuthAPI is the remote authentication surface the store drives. It is
// implemented over the public (non-refreshing) API client; using the
// privileged gateway here would recurse into the refresh coordinator.
type AuthAPI interface {
	// Login exchanges credentials for an identity and access token.
	Login(ctx context.Context, email, password string) (Identity, string, error)

	// RefreshToken obtains a new access token using the out-of-band
	// cookie credential. The returned identity may be zero when the
	// backend omits the user from the refresh response.
	RefreshToken(ctx context.Context) (Identity, string, error)

	// Logout notifies the backend. Best-effort only.
	Logout(ctx context.Context) error
}

// Persister is the durable storage behind the store.
type Persister interface {
	Load() (*Session, error)
	Save(*Session) error
	Clear() error
}

// Store holds the authenticated-user record and the observable auth
// flags. It is an explicitly constructed container: callers receive a
// *Store from New and pass it down, there is no package-level state.
type Store struct {
	mu      sync.Mutex
	state   AuthState
	api     AuthAPI
	persist Persister
	logger  *log.Logger

	subs    map[int]func(AuthState)
	nextSub int

	// logoutTimeout bounds the best-effort remote logout call.
	logoutTimeout time.Duration
}

// NewStore creates a Store in the UNINITIALIZED state (not ready, not
// authenticated).
func NewStore(api AuthAPI, persist Persister, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Store{
		api:           api,
		persist:       persist,
		logger:        logger.With("component", "session"),
		subs:          make(map[int]func(AuthState)),
		logoutTimeout: 5 * time.Second,
	}
}

// Snapshot returns a copy of the current auth state.
func (s *Store) Snapshot() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// AccessToken returns the current access token, or "" when anonymous.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Session == nil {
		return ""
	}
	return s.state.Session.AccessToken
}

// Subscribe registers fn to be called with a state copy after every
// transition. The returned cancel func removes the subscription.
func (s *Store) Subscribe(fn func(AuthState)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// mutate applies fn under the lock, then notifies subscribers with a
// copy of the resulting state. Subscribers run outside the lock so a
// callback may call back into the store.
func (s *Store) mutate(fn func(*AuthState)) {
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.state.clone()
	subs := make([]func(AuthState), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(snapshot)
	}
}

// Restore loads any persisted session into memory. No network call is
// made and Ready is left untouched; corrupt persisted data is removed
// silently.
func (s *Store) Restore() {
	loaded, err := s.persist.Load()
	if err != nil {
		s.logger.WithError(err).Warn("discarding unreadable persisted session")
		if clearErr := s.persist.Clear(); clearErr != nil {
			s.logger.WithError(clearErr).Warn("failed to remove corrupt session file")
		}
		return
	}
	if loaded == nil {
		return
	}

	s.mutate(func(st *AuthState) {
		st.Session = loaded
	})
	s.logger.Debug("session restored", "user", loaded.Identity.Email)
}

// Login authenticates against the backend. The returned identity must
// carry the administrative role; any other role is rejected locally
// with an access-denied error even though the HTTP call succeeded.
// On failure the prior session is left untouched.
func (s *Store) Login(ctx context.Context, email, password string) error {
	identity, token, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.mutate(func(st *AuthState) {
			st.LastError = userMessage(err, "Login failed")
		})
		return err
	}

	if identity.Role != RoleAdmin {
		denied := errors.NewAccessDeniedError(identity.Role)
		s.mutate(func(st *AuthState) {
			st.LastError = denied.Message
		})
		return denied
	}

	merged := &Session{Identity: identity, AccessToken: token}
	if err := s.persist.Save(merged); err != nil {
		s.logger.WithError(err).Warn("failed to persist session")
	}

	s.mutate(func(st *AuthState) {
		st.Session = merged
		st.Authenticated = true
		st.LoggedOut = false
		st.LastError = ""
	})
	s.logger.Info("logged in", "user", identity.Email)
	return nil
}

// Refresh obtains a new access token via the cookie credential. On
// success the in-memory session's token (and identity, when returned)
// is replaced and re-persisted. On failure the session is cleared;
// callers on the terminal path follow up with Logout.
func (s *Store) Refresh(ctx context.Context) error {
	identity, token, err := s.api.RefreshToken(ctx)
	if err != nil {
		s.mutate(func(st *AuthState) {
			st.Session = nil
			st.Authenticated = false
		})
		if clearErr := s.persist.Clear(); clearErr != nil {
			s.logger.WithError(clearErr).Warn("failed to clear persisted session")
		}
		return errors.Wrap(errors.ErrCodeAuthRefreshFailed, "token refresh rejected", err)
	}

	var merged *Session
	s.mu.Lock()
	prior := s.state.Session
	switch {
	case !identity.IsZero():
		merged = &Session{Identity: identity, AccessToken: token}
	case prior != nil:
		merged = &Session{Identity: prior.Identity, AccessToken: token}
	default:
		// Refresh succeeded but we hold no identity to attach the
		// token to; treat as anonymous rather than store an orphan.
		merged = nil
	}
	s.mu.Unlock()

	if merged == nil {
		return errors.New(errors.ErrCodeAuthRefreshFailed, "refresh returned a token without an identity")
	}

	if err := s.persist.Save(merged); err != nil {
		s.logger.WithError(err).Warn("failed to persist refreshed session")
	}

	s.mutate(func(st *AuthState) {
		st.Session = merged
		st.Authenticated = true
	})
	s.logger.Debug("access token refreshed", "user", merged.Identity.Email)
	return nil
}

// Logout is local-first: the session is cleared and the flags flipped
// synchronously, before the remote notification is even issued, so the
// route guard observes the logged-out state immediately. The remote
// call is best-effort; its failure is logged and never reverses the
// local logout.
func (s *Store) Logout(ctx context.Context) {
	s.mutate(func(st *AuthState) {
		st.Session = nil
		st.Authenticated = false
		st.LoggedOut = true
		st.LastError = ""
	})
	if err := s.persist.Clear(); err != nil {
		s.logger.WithError(err).Warn("failed to clear persisted session")
	}
	s.logger.Info("logged out")

	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.logoutTimeout)
	defer cancel()
	if err := s.api.Logout(notifyCtx); err != nil {
		s.logger.WithError(err).Warn("backend logout notification failed")
	}
}

// SetReady marks the store ready. Idempotent; Ready never reverts.
func (s *Store) SetReady() {
	s.mu.Lock()
	already := s.state.Ready
	s.mu.Unlock()
	if already {
		return
	}
	s.mutate(func(st *AuthState) {
		st.Ready = true
	})
}

// userMessage extracts a human-readable message from err, preferring
// MaisonError messages over raw error chains.
func userMessage(err error, fallback string) string {
	if merr, ok := err.(*errors.MaisonError); ok {
		return merr.Message
	}
	if err != nil {
		return fallback + ": " + err.Error()
	}
	return fallback
}
