package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/maisondecor/maison/internal/api"
)

// ProductLister fetches the catalog. Both API clients satisfy it.
type ProductLister func(ctx context.Context) ([]api.Product, error)

// productsLoadedMsg carries a fetched catalog into the model.
type productsLoadedMsg struct {
	products []api.Product
}

// productsErrMsg carries a fetch failure into the model.
type productsErrMsg struct {
	err error
}

// CatalogModel is the storefront catalog browser: a product table with
// a detail view, a featured-only filter, and reload.
type CatalogModel struct {
	lister ProductLister

	products []api.Product
	visible  []api.Product
	selected *api.Product

	featuredOnly bool
	category     string
	categories   []string
	loading      bool
	lastError    string
	quitting     bool

	table   table.Model
	spinner spinner.Model
	styles  Styles
	width   int
}

// NewCatalog creates the catalog browser. Nothing is fetched until the
// program starts.
func NewCatalog(lister ProductLister) CatalogModel {
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

	return CatalogModel{
		lister:  lister,
		loading: true,
		table:   tbl,
		spinner: sp,
		styles:  DefaultStyles(),
	}
}

// Init starts the spinner and the initial fetch.
func (m CatalogModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch())
}

func (m CatalogModel) fetch() tea.Cmd {
	lister := m.lister
	return func() tea.Msg {
		products, err := lister(context.Background())
		if err != nil {
			return productsErrMsg{err: err}
		}
		return productsLoadedMsg{products: products}
	}
}

// Update handles messages.
func (m CatalogModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case productsLoadedMsg:
		m.loading = false
		m.lastError = ""
		m.products = msg.products
		m.categories = categoriesOf(msg.products)
		m.applyFilter()
		return m, nil

	case productsErrMsg:
		m.loading = false
		m.lastError = msg.err.Error()
		return m, nil

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

func (m CatalogModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		if m.selected != nil {
			m.selected = nil
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case "enter":
		if m.selected == nil {
			if p := m.cursorProduct(); p != nil {
				m.selected = p
			}
		}
		return m, nil

	case "f":
		m.featuredOnly = !m.featuredOnly
		m.applyFilter()
		return m, nil

	case "c":
		m.category = nextCategory(m.categories, m.category)
		m.applyFilter()
		return m, nil

	case "r":
		if !m.loading {
			m.loading = true
			m.lastError = ""
			return m, tea.Batch(m.spinner.Tick, m.fetch())
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// categoriesOf returns the distinct categories in catalog order.
func categoriesOf(products []api.Product) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}

// nextCategory cycles all → first category → ... → last → all.
func nextCategory(categories []string, current string) string {
	if current == "" {
		if len(categories) == 0 {
			return ""
		}
		return categories[0]
	}
	for i, c := range categories {
		if c == current {
			if i+1 < len(categories) {
				return categories[i+1]
			}
			return ""
		}
	}
	return ""
}

func (m *CatalogModel) applyFilter() {
	source := m.products
	if m.featuredOnly {
		source = api.FeaturedProducts(source)
	}
	if m.category == "" {
		m.visible = source
	} else {
		m.visible = nil
		for _, p := range source {
			if p.Category == m.category {
				m.visible = append(m.visible, p)
			}
		}
	}

	rows := make([]table.Row, 0, len(m.visible))
	for _, p := range m.visible {
		mark := ""
		if p.IsFeatured {
			mark = "★"
		}
		rows = append(rows, table.Row{p.Title, p.Category, api.FormatPrice(p.Price), mark})
	}
	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

func (m CatalogModel) cursorProduct() *api.Product {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.visible) {
		return nil
	}
	p := m.visible[idx]
	return &p
}

// View renders the catalog.
func (m CatalogModel) View() string {
	if m.quitting {
		return ""
	}
	if m.loading {
		return fmt.Sprintf("\n %s Loading the collection...\n", m.spinner.View())
	}
	if m.lastError != "" {
		return m.styles.Error.Render("Could not load the catalog: "+m.lastError) +
			m.styles.Help.Render("\nr reload · q quit") + "\n"
	}
	if m.selected != nil {
		return m.renderDetail(*m.selected)
	}
	return m.renderList()
}

func (m CatalogModel) renderList() string {
	var b strings.Builder
	title := "Maison Décor — Collection"
	if m.featuredOnly {
		title += " (featured)"
	}
	if m.category != "" {
		title += " · " + m.category
	}
	b.WriteString(m.styles.Title.Render(title) + "\n")
	b.WriteString(m.table.View() + "\n")
	b.WriteString(m.styles.Help.Render("enter details · f featured · c category · r reload · q quit"))
	return b.String()
}

func (m CatalogModel) renderDetail(p api.Product) string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(p.Title) + "\n")
	if p.IsFeatured {
		b.WriteString(m.styles.Featured.Render("★ Featured piece") + "\n")
	}
	b.WriteString(m.styles.Price.Render(api.FormatPrice(p.Price)) + "  ")
	b.WriteString(m.styles.Muted.Render(p.Category) + "\n\n")
	if p.Description != "" {
		b.WriteString(p.Description + "\n\n")
	}
	if len(p.ImagesURL) > 0 {
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("%d gallery images", len(p.ImagesURL))) + "\n")
	}
	b.WriteString(m.styles.Help.Render("esc back · q quit"))
	return b.String()
}
