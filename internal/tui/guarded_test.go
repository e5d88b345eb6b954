package tui

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/maisondecor/maison/internal/guard"
	"github.com/maisondecor/maison/internal/log"
	"github.com/maisondecor/maison/internal/session"
)

// staticAuthAPI always succeeds with an admin identity.
type staticAuthAPI struct{}

func (staticAuthAPI) Login(ctx context.Context, email, password string) (session.Identity, string, error) {
	return session.Identity{ID: "u-1", UserName: "Lena", Email: email, Role: session.RoleAdmin}, "tok-1", nil
}

func (staticAuthAPI) RefreshToken(ctx context.Context) (session.Identity, string, error) {
	return session.Identity{}, "tok-1", nil
}

func (staticAuthAPI) Logout(ctx context.Context) error { return nil }

// innerStub is the protected view used by the tests.
type innerStub struct{}

func (innerStub) Init() tea.Cmd                       { return nil }
func (innerStub) Update(tea.Msg) (tea.Model, tea.Cmd) { return innerStub{}, nil }
func (innerStub) View() string                        { return "PROTECTED CONTENT" }

func testStore(t *testing.T) *session.Store {
	t.Helper()
	logger := log.New(log.Config{Level: log.LevelError, Format: log.FormatText, Output: io.Discard})
	return session.NewStore(staticAuthAPI{}, session.NewFileStore(t.TempDir()), logger)
}

func guardedOver(store *session.Store) *GuardedModel {
	return NewGuarded(guard.New(store), innerStub{})
}

// drain consumes one buffered verdict and applies it.
func drain(t *testing.T, m *GuardedModel) {
	t.Helper()
	msg := m.nextDecision()()
	if _, ok := msg.(decisionMsg); !ok {
		t.Fatalf("Expected decisionMsg, got %T", msg)
	}
	m.Update(msg)
}

// TestGuardedWaitsBeforeReady tests the waiting state
func TestGuardedWaitsBeforeReady(t *testing.T) {
	m := guardedOver(testStore(t))
	drain(t, m)

	if !strings.Contains(m.View(), "Checking your session") {
		t.Errorf("Expected waiting view, got %q", m.View())
	}
	if m.Redirected() {
		t.Error("Expected no redirect while waiting")
	}
}

// TestGuardedRedirectsAnonymousVisitor tests the redirect path
func TestGuardedRedirectsAnonymousVisitor(t *testing.T) {
	store := testStore(t)
	m := guardedOver(store)
	drain(t, m) // initial wait verdict

	store.SetReady()
	drain(t, m)

	if !m.Redirected() {
		t.Error("Expected an anonymous visitor to be redirected")
	}
	if !m.quitting {
		t.Error("Expected the program to quit on redirect")
	}
}

// TestGuardedShowsContentWhenAuthenticated tests the allow path
func TestGuardedShowsContentWhenAuthenticated(t *testing.T) {
	store := testStore(t)
	store.SetReady()
	if err := store.Login(context.Background(), "lena@maison.test", "hunter2"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	m := guardedOver(store)
	drain(t, m)

	if m.decision != guard.DecisionAllow {
		t.Fatalf("Expected allow, got %v", m.decision)
	}
	if m.View() != "PROTECTED CONTENT" {
		t.Errorf("Expected the protected view, got %q", m.View())
	}
}

// TestGuardedEvictsOnLogout tests eviction of an on-screen view
func TestGuardedEvictsOnLogout(t *testing.T) {
	store := testStore(t)
	store.SetReady()
	if err := store.Login(context.Background(), "lena@maison.test", "hunter2"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	m := guardedOver(store)
	drain(t, m)
	if m.decision != guard.DecisionAllow {
		t.Fatalf("Expected allow, got %v", m.decision)
	}

	// A background refresh failure ends in Logout; the guard flips and
	// the on-screen view must leave.
	store.Logout(context.Background())
	drain(t, m)

	if !m.Redirected() {
		t.Error("Expected the protected view to be evicted")
	}
}

// TestGuardedCtrlCQuitsWithoutRedirect tests manual interruption
func TestGuardedCtrlCQuitsWithoutRedirect(t *testing.T) {
	m := guardedOver(testStore(t))
	drain(t, m)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Error("Expected a quit command")
	}
	if m.Redirected() {
		t.Error("Ctrl+C is not a redirect")
	}
}
