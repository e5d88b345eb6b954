package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maisondecor/maison/internal/api"
	"github.com/maisondecor/maison/internal/tui"
)

var productCmd = &cobra.Command{
	Use:   "product <id>",
	Short: "Show one listing",
	Long: `Show the details of a single listing.

Examples:
  maison product 66b2f0c8e4a1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		product, err := app.Public.GetProduct(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		printProduct(*product)
		return nil
	},
}

func printProduct(p api.Product) {
	styles := tui.DefaultStyles()

	fmt.Println(styles.Title.Render(p.Title))
	if p.IsFeatured {
		fmt.Println(styles.Featured.Render("★ Featured piece"))
	}
	fmt.Printf("%s  %s\n", styles.Price.Render(api.FormatPrice(p.Price)), styles.Muted.Render(p.Category))
	if p.Description != "" {
		fmt.Println()
		fmt.Println(p.Description)
	}
	if p.ThumbnailURL != "" {
		fmt.Println()
		fmt.Println(styles.Muted.Render("Thumbnail: " + p.ThumbnailURL))
	}
	for _, img := range p.ImagesURL {
		fmt.Println(styles.Muted.Render("Image:     " + img))
	}
}

func init() {
	rootCmd.AddCommand(productCmd)
}
