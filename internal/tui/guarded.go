package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/maisondecor/maison/internal/guard"
)

// decisionMsg carries a route-guard verdict into the model.
type decisionMsg struct {
	decision guard.Decision
}

// GuardedModel wraps a protected view behind the route guard. Until
// the session store is ready it shows a waiting state, an anonymous
// visitor sees a redirect notice instead of the content, and a guard
// transition while the view is on screen evicts it, e.g. when a
// background refresh fails.
type GuardedModel struct {
	guard *guard.Guard
	inner tea.Model

	decision  guard.Decision
	decisions chan guard.Decision
	unwatch   func()

	innerStarted bool
	quitting     bool
	redirected   bool

	spinner spinner.Model
	styles  Styles
}

// NewGuarded wraps inner behind g. The subscription starts here so no
// transition between construction and the first Update is lost.
func NewGuarded(g *guard.Guard, inner tea.Model) *GuardedModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &GuardedModel{
		guard:     g,
		inner:     inner,
		decisions: make(chan guard.Decision, 32),
		spinner:   sp,
		styles:    DefaultStyles(),
	}
	m.unwatch = g.Watch(func(d guard.Decision) {
		select {
		case m.decisions <- d:
		default:
			// Verdict changes are rare; a full buffer means the program
			// stopped draining and is about to exit anyway.
		}
	})
	return m
}

// Redirected reports whether the view was closed because the visitor
// must log in. The command layer prints the login hint after the
// program exits.
func (m *GuardedModel) Redirected() bool {
	return m.redirected
}

// Inner returns the wrapped view in its final state, for reading out
// results after the program exits.
func (m *GuardedModel) Inner() tea.Model {
	return m.inner
}

func (m *GuardedModel) nextDecision() tea.Cmd {
	ch := m.decisions
	return func() tea.Msg {
		return decisionMsg{decision: <-ch}
	}
}

// Init consumes the initial verdict the subscription already
// delivered.
func (m *GuardedModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.nextDecision())
}

// Update handles guard verdicts and forwards everything else to the
// protected view once it is allowed to render.
func (m *GuardedModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case decisionMsg:
		return m.applyDecision(msg.decision)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.stop()
			m.quitting = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		if m.decision == guard.DecisionWait {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	if m.decision != guard.DecisionAllow || !m.innerStarted {
		return m, nil
	}
	var cmd tea.Cmd
	m.inner, cmd = m.inner.Update(msg)
	return m, cmd
}

func (m *GuardedModel) applyDecision(d guard.Decision) (tea.Model, tea.Cmd) {
	m.decision = d
	switch d {
	case guard.DecisionRedirect:
		m.stop()
		m.redirected = true
		m.quitting = true
		return m, tea.Quit

	case guard.DecisionAllow:
		if !m.innerStarted {
			m.innerStarted = true
			return m, tea.Batch(m.inner.Init(), m.nextDecision())
		}
		return m, m.nextDecision()

	default:
		return m, m.nextDecision()
	}
}

func (m *GuardedModel) stop() {
	if m.unwatch != nil {
		m.unwatch()
		m.unwatch = nil
	}
}

// View renders the waiting state, the redirect notice, or the
// protected view.
func (m *GuardedModel) View() string {
	if m.quitting {
		return ""
	}
	switch m.decision {
	case guard.DecisionAllow:
		return m.inner.View()
	case guard.DecisionRedirect:
		return m.styles.Muted.Render("Redirecting to login...") + "\n"
	default:
		return "\n " + m.spinner.View() + " Checking your session...\n"
	}
}
