package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/maisondecor/maison/internal/api"
)

// Action is what the admin chose to do next. Add and edit need full
// forms, which run outside the Bubble Tea program; the dashboard quits
// and reports the choice.
type Action int

const (
	// ActionNone means the dashboard was closed without a follow-up.
	ActionNone Action = iota
	// ActionAdd means a new listing should be created.
	ActionAdd
	// ActionEdit means the selected listing should be edited.
	ActionEdit
)

// ProductDeleter removes a listing by ID.
type ProductDeleter func(ctx context.Context, id string) error

// deleteDoneMsg reports the outcome of a delete.
type deleteDoneMsg struct {
	err error
}

// DashboardModel is the admin product manager: the catalog as a table
// with add, edit, and delete.
type DashboardModel struct {
	lister  ProductLister
	deleter ProductDeleter

	products []api.Product
	loading  bool
	lastErr  string
	quitting bool

	// confirm holds the listing pending delete confirmation.
	confirm *api.Product

	action   Action
	actionID string

	table   table.Model
	spinner spinner.Model
	styles  Styles
}

// NewDashboard creates the admin dashboard.
func NewDashboard(lister ProductLister, deleter ProductDeleter) DashboardModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	columns := []table.Column{
		{Title: "Title", Width: 32},
		{Title: "Category", Width: 14},
		{Title: "Price", Width: 10},
		{Title: "", Width: 2},
	}
	tbl := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	return DashboardModel{
		lister:  lister,
		deleter: deleter,
		loading: true,
		table:   tbl,
		spinner: sp,
		styles:  DefaultStyles(),
	}
}

// Result returns what the admin chose to do and, for edits, which
// listing it concerns.
func (m DashboardModel) Result() (Action, string) {
	return m.action, m.actionID
}

// Init starts the spinner and the initial fetch.
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch())
}

func (m DashboardModel) fetch() tea.Cmd {
	lister := m.lister
	return func() tea.Msg {
		products, err := lister(context.Background())
		if err != nil {
			return productsErrMsg{err: err}
		}
		return productsLoadedMsg{products: products}
	}
}

func (m DashboardModel) deleteCmd(id string) tea.Cmd {
	deleter := m.deleter
	return func() tea.Msg {
		return deleteDoneMsg{err: deleter(context.Background(), id)}
	}
}

// Update handles messages.
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case productsLoadedMsg:
		m.loading = false
		m.lastErr = ""
		m.products = msg.products
		m.refreshRows()
		return m, nil

	case productsErrMsg:
		m.loading = false
		m.lastErr = msg.err.Error()
		return m, nil

	case deleteDoneMsg:
		if msg.err != nil {
			m.loading = false
			m.lastErr = msg.err.Error()
			return m, nil
		}
		// Reload so the table reflects the backend.
		return m, m.fetch()

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m DashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.confirm != nil {
		switch msg.String() {
		case "y", "enter":
			id := m.confirm.ID
			m.confirm = nil
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.deleteCmd(id))
		case "n", "esc":
			m.confirm = nil
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit

	case "a":
		m.action = ActionAdd
		m.quitting = true
		return m, tea.Quit

	case "e", "enter":
		if p := m.cursorProduct(); p != nil {
			m.action = ActionEdit
			m.actionID = p.ID
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case "d":
		m.confirm = m.cursorProduct()
		return m, nil

	case "r":
		if !m.loading {
			m.loading = true
			m.lastErr = ""
			return m, tea.Batch(m.spinner.Tick, m.fetch())
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *DashboardModel) refreshRows() {
	rows := make([]table.Row, 0, len(m.products))
	for _, p := range m.products {
		mark := ""
		if p.IsFeatured {
			mark = "★"
		}
		rows = append(rows, table.Row{p.Title, p.Category, api.FormatPrice(p.Price), mark})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(0)
	}
}

func (m DashboardModel) cursorProduct() *api.Product {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.products) {
		return nil
	}
	p := m.products[idx]
	return &p
}

// View renders the dashboard.
func (m DashboardModel) View() string {
	if m.quitting {
		return ""
	}
	if m.loading {
		return fmt.Sprintf("\n %s Loading listings...\n", m.spinner.View())
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Maison Décor — Dashboard") + "\n")
	stats := fmt.Sprintf("%d listings · %d featured", len(m.products), len(api.FeaturedProducts(m.products)))
	b.WriteString(m.styles.Muted.Render(stats) + "\n")

	if m.lastErr != "" {
		b.WriteString(m.styles.Error.Render(m.lastErr) + "\n")
	}
	b.WriteString(m.table.View() + "\n")

	if m.confirm != nil {
		prompt := fmt.Sprintf("Delete %q? (y/n)", m.confirm.Title)
		b.WriteString(m.styles.Error.Render(prompt) + "\n")
	} else {
		b.WriteString(m.styles.Help.Render("a add · e edit · d delete · r reload · q quit"))
	}
	return b.String()
}
