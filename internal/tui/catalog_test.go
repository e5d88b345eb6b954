package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/maisondecor/maison/internal/api"
)

func sampleProducts() []api.Product {
	return []api.Product{
		{ID: "p-1", Title: "Oak Table", Category: "tables", Price: 799},
		{ID: "p-2", Title: "Linen Sofa", Category: "sofas", Price: 1899, IsFeatured: true, Description: "Three-seater in washed linen."},
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// TestNewCatalogStartsLoading tests the initial state
func TestNewCatalogStartsLoading(t *testing.T) {
	model := NewCatalog(func(context.Context) ([]api.Product, error) { return nil, nil })

	if !model.loading {
		t.Error("Expected a fresh catalog to be loading")
	}
	if !strings.Contains(model.View(), "Loading") {
		t.Errorf("Expected loading view, got %q", model.View())
	}
}

// TestCatalogFetch tests the fetch command
func TestCatalogFetch(t *testing.T) {
	model := NewCatalog(func(context.Context) ([]api.Product, error) { return sampleProducts(), nil })

	msg := model.fetch()()
	loaded, ok := msg.(productsLoadedMsg)
	if !ok {
		t.Fatalf("Expected productsLoadedMsg, got %T", msg)
	}
	if len(loaded.products) != 2 {
		t.Errorf("Expected 2 products, got %d", len(loaded.products))
	}
}

// TestCatalogFetchError tests fetch failure handling
func TestCatalogFetchError(t *testing.T) {
	model := NewCatalog(func(context.Context) ([]api.Product, error) { return nil, errors.New("backend down") })

	msg := model.fetch()()
	if _, ok := msg.(productsErrMsg); !ok {
		t.Fatalf("Expected productsErrMsg, got %T", msg)
	}

	updated, _ := model.Update(msg)
	m := updated.(CatalogModel)
	if !strings.Contains(m.View(), "backend down") {
		t.Errorf("Expected error in view, got %q", m.View())
	}
}

// TestCatalogShowsProducts tests the list view
func TestCatalogShowsProducts(t *testing.T) {
	model := NewCatalog(nil)

	updated, _ := model.Update(productsLoadedMsg{products: sampleProducts()})
	m := updated.(CatalogModel)

	view := m.View()
	if !strings.Contains(view, "Oak Table") || !strings.Contains(view, "Linen Sofa") {
		t.Errorf("Expected both products in view, got %q", view)
	}
}

// TestCatalogFeaturedFilter tests the featured-only toggle
func TestCatalogFeaturedFilter(t *testing.T) {
	model := NewCatalog(nil)
	updated, _ := model.Update(productsLoadedMsg{products: sampleProducts()})

	updated, _ = updated.(CatalogModel).Update(keyMsg("f"))
	m := updated.(CatalogModel)
	if len(m.visible) != 1 || m.visible[0].ID != "p-2" {
		t.Errorf("Expected only the featured product, got %v", m.visible)
	}

	updated, _ = m.Update(keyMsg("f"))
	m = updated.(CatalogModel)
	if len(m.visible) != 2 {
		t.Errorf("Expected the full catalog back, got %d products", len(m.visible))
	}
}

// TestCatalogCategoryFilter tests cycling through categories
func TestCatalogCategoryFilter(t *testing.T) {
	model := NewCatalog(nil)
	updated, _ := model.Update(productsLoadedMsg{products: sampleProducts()})

	updated, _ = updated.(CatalogModel).Update(keyMsg("c"))
	m := updated.(CatalogModel)
	if m.category != "sofas" {
		t.Fatalf("Expected the first category alphabetically, got %q", m.category)
	}
	if len(m.visible) != 1 || m.visible[0].ID != "p-2" {
		t.Errorf("Expected only sofas, got %v", m.visible)
	}

	updated, _ = m.Update(keyMsg("c"))
	m = updated.(CatalogModel)
	if m.category != "tables" || len(m.visible) != 1 || m.visible[0].ID != "p-1" {
		t.Errorf("Expected only tables, got category %q with %v", m.category, m.visible)
	}

	updated, _ = m.Update(keyMsg("c"))
	m = updated.(CatalogModel)
	if m.category != "" || len(m.visible) != 2 {
		t.Errorf("Expected the cycle to return to the full catalog, got category %q with %d products", m.category, len(m.visible))
	}
}

// TestCatalogDetailView tests enter/esc navigation
func TestCatalogDetailView(t *testing.T) {
	model := NewCatalog(nil)
	updated, _ := model.Update(productsLoadedMsg{products: sampleProducts()})

	updated, _ = updated.(CatalogModel).Update(keyMsg("enter"))
	m := updated.(CatalogModel)
	if m.selected == nil {
		t.Fatal("Expected a selected product after enter")
	}
	if !strings.Contains(m.View(), m.selected.Title) {
		t.Errorf("Expected detail view for %q, got %q", m.selected.Title, m.View())
	}

	updated, _ = m.Update(keyMsg("esc"))
	m = updated.(CatalogModel)
	if m.selected != nil {
		t.Error("Expected esc to return to the list")
	}
}

// TestCatalogQuit tests that q quits
func TestCatalogQuit(t *testing.T) {
	model := NewCatalog(nil)
	updated, cmd := model.Update(keyMsg("q"))
	m := updated.(CatalogModel)

	if !m.quitting {
		t.Error("Expected quitting after q")
	}
	if cmd == nil {
		t.Error("Expected a quit command")
	}
}
