package guard

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maisondecor/maison/internal/log"
	"github.com/maisondecor/maison/internal/session"
)

// scriptedAuthAPI lets each test choose the remote outcomes.
type scriptedAuthAPI struct {
	identity   session.Identity
	token      string
	refreshErr error
}

func (s *scriptedAuthAPI) Login(ctx context.Context, email, password string) (session.Identity, string, error) {
	return s.identity, s.token, nil
}

func (s *scriptedAuthAPI) RefreshToken(ctx context.Context) (session.Identity, string, error) {
	if s.refreshErr != nil {
		return session.Identity{}, "", s.refreshErr
	}
	return session.Identity{}, s.token, nil
}

func (s *scriptedAuthAPI) Logout(ctx context.Context) error { return nil }

func newStore(t *testing.T, api *scriptedAuthAPI) *session.Store {
	t.Helper()
	logger := log.New(log.Config{Level: log.LevelError, Format: log.FormatText, Output: os.Stderr})
	return session.NewStore(api, session.NewFileStore(t.TempDir()), logger)
}

func adminAPI() *scriptedAuthAPI {
	return &scriptedAuthAPI{
		identity: session.Identity{ID: "u-1", UserName: "Lena", Email: "lena@maison.test", Role: session.RoleAdmin},
		token:    "tok-1",
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		st   session.AuthState
		want Decision
	}{
		{"not ready", session.AuthState{}, DecisionWait},
		{"not ready but authenticated", session.AuthState{Authenticated: true}, DecisionWait},
		{"ready anonymous", session.AuthState{Ready: true}, DecisionRedirect},
		{"ready logged out", session.AuthState{Ready: true, LoggedOut: true}, DecisionRedirect},
		{"ready authenticated", session.AuthState{Ready: true, Authenticated: true}, DecisionAllow},
		{"ready authenticated but logged out flag", session.AuthState{Ready: true, Authenticated: true, LoggedOut: true}, DecisionRedirect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.st))
		})
	}
}

func TestGuardWaitsUntilReady(t *testing.T) {
	store := newStore(t, adminAPI())
	g := New(store)

	assert.Equal(t, DecisionWait, g.Decision())

	store.SetReady()
	assert.Equal(t, DecisionRedirect, g.Decision())
}

func TestGuardAllowsAfterLogin(t *testing.T) {
	store := newStore(t, adminAPI())
	store.SetReady()
	g := New(store)

	require.NoError(t, store.Login(context.Background(), "lena@maison.test", "hunter2"))
	assert.Equal(t, DecisionAllow, g.Decision())
}

func TestWatchPublishesTransitions(t *testing.T) {
	store := newStore(t, adminAPI())
	g := New(store)

	var seen []Decision
	cancel := g.Watch(func(d Decision) { seen = append(seen, d) })
	defer cancel()

	store.SetReady()
	require.NoError(t, store.Login(context.Background(), "lena@maison.test", "hunter2"))
	store.Logout(context.Background())

	assert.Equal(t, []Decision{DecisionWait, DecisionRedirect, DecisionAllow, DecisionRedirect}, seen)
}

func TestWatchSkipsNonTransitions(t *testing.T) {
	store := newStore(t, adminAPI())
	store.SetReady()
	g := New(store)

	var seen []Decision
	cancel := g.Watch(func(d Decision) { seen = append(seen, d) })
	defer cancel()

	// Logging out while already anonymous keeps the verdict at
	// redirect; the watcher must not republish.
	store.Logout(context.Background())
	store.Logout(context.Background())

	assert.Equal(t, []Decision{DecisionRedirect}, seen)
}

func TestBackgroundRefreshFailureEvictsProtectedView(t *testing.T) {
	api := adminAPI()
	store := newStore(t, api)
	store.SetReady()
	g := New(store)

	require.NoError(t, store.Login(context.Background(), "lena@maison.test", "hunter2"))

	var current Decision
	cancel := g.Watch(func(d Decision) { current = d })
	defer cancel()
	require.Equal(t, DecisionAllow, current)

	// A background refresh fails; the gateway's logout callback fires.
	api.refreshErr = fmt.Errorf("invalid refresh token")
	_ = store.Refresh(context.Background())
	store.Logout(context.Background())

	assert.Equal(t, DecisionRedirect, current, "the on-screen protected view must be evicted")
}

func TestWatchCancelStopsUpdates(t *testing.T) {
	store := newStore(t, adminAPI())
	g := New(store)

	var calls int
	cancel := g.Watch(func(Decision) { calls++ })
	require.Equal(t, 1, calls)

	cancel()
	store.SetReady()
	assert.Equal(t, 1, calls)
}
