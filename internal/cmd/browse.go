package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/maisondecor/maison/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the furniture collection",
	Long: `Browse the furniture collection in an interactive view.

The catalog is public; no login is needed. Use the arrow keys to move,
enter to open a listing, and f to show featured pieces only.

Examples:
  maison browse`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		model := tui.NewCatalog(app.Public.ListProducts)
		if _, err := tea.NewProgram(model).Run(); err != nil {
			return fmt.Errorf("catalog view failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
