package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/maisondecor/maison/internal/content"
)

var faqCmd = &cobra.Command{
	Use:   "faq",
	Short: "Frequently asked questions",
	Long: `Show answers to common questions about warranty, delivery,
materials, and payment.

Examples:
  maison faq`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(content.Render(content.FAQ(), pageWidth()))
		return nil
	},
}

var aboutCmd = &cobra.Command{
	Use:   "about",
	Short: "About Maison Décor",
	Long: `Show the story of the store and what it stands for.

Examples:
  maison about`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(content.Render(content.About(), pageWidth()))
		return nil
	},
}

// pageWidth returns the rendering width for static pages, capped so
// long lines stay readable on wide terminals.
func pageWidth() int {
	width, _, err := term.GetSize(0)
	if err != nil || width <= 0 || width > 80 {
		return 80
	}
	return width
}

func init() {
	rootCmd.AddCommand(faqCmd)
	rootCmd.AddCommand(aboutCmd)
}
