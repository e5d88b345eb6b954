package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/maisondecor/maison/internal/api"
	"github.com/maisondecor/maison/internal/bootstrap"
	"github.com/maisondecor/maison/internal/errors"
	"github.com/maisondecor/maison/internal/guard"
	"github.com/maisondecor/maison/internal/tui"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Manage the catalog (admin)",
	Long: `Open the admin dashboard to manage listings.

The dashboard is protected: the stored session is restored and
refreshed first, and anonymous visitors are sent to login instead.
Inside the dashboard, a adds a listing, e edits the selected one, and
d deletes it after confirmation.

Subcommands:
  add     Create a listing without opening the dashboard
  edit    Edit a listing without opening the dashboard
  delete  Delete a listing without opening the dashboard

Examples:
  maison dashboard
  maison dashboard add --title "Walnut Sideboard" --category storage --price 1249.50 --thumbnail ./sideboard.jpg
  maison dashboard delete 66b2f0c8e4a1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		app.Run(cmd.Context())

		inner := tui.NewDashboard(app.Gateway.ListProducts, app.Gateway.DeleteProduct)
		guarded := tui.NewGuarded(guard.New(app.Store), inner)

		if _, err := tea.NewProgram(guarded).Run(); err != nil {
			return fmt.Errorf("dashboard failed: %w", err)
		}
		if guarded.Redirected() {
			fmt.Println("Please log in first: maison auth login")
			return nil
		}

		dash, ok := guarded.Inner().(tui.DashboardModel)
		if !ok {
			return nil
		}
		switch action, id := dash.Result(); action {
		case tui.ActionAdd:
			return runProductForm(cmd.Context(), app, "")
		case tui.ActionEdit:
			return runProductForm(cmd.Context(), app, id)
		}
		return nil
	},
}

var dashboardAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a listing",
	Long: `Create a listing.

Fields not passed as flags are collected interactively. A thumbnail
image is required; up to four gallery images may be attached.

Examples:
  maison dashboard add --title "Walnut Sideboard" --category storage --price 1249.50 --thumbnail ./sideboard.jpg --image ./front.jpg --image ./detail.jpg`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireAdmin(cmd.Context())
		if err != nil {
			return err
		}
		form, err := formFromFlags(cmd)
		if err != nil {
			return err
		}
		return submitProductForm(cmd.Context(), app, "", form)
	},
}

var dashboardEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a listing",
	Long: `Edit a listing.

Current values prefill the form. Thumbnail and gallery images are only
replaced when new files are attached.

Examples:
  maison dashboard edit 66b2f0c8e4a1 --price 1099`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireAdmin(cmd.Context())
		if err != nil {
			return err
		}
		form, err := formFromFlags(cmd)
		if err != nil {
			return err
		}
		return submitProductForm(cmd.Context(), app, args[0], form)
	},
}

var dashboardDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a listing",
	Long: `Delete a listing.

Asks for confirmation unless --yes is passed.

Examples:
  maison dashboard delete 66b2f0c8e4a1 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireAdmin(cmd.Context())
		if err != nil {
			return err
		}

		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			confirmed := false
			if err := huh.NewForm(huh.NewGroup(
				huh.NewConfirm().Title("Delete listing " + args[0] + "?").Value(&confirmed),
			)).Run(); err != nil {
				return fmt.Errorf("prompt failed: %w", err)
			}
			if !confirmed {
				fmt.Println("Nothing deleted.")
				return nil
			}
		}

		if err := app.Gateway.DeleteProduct(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Listing deleted.")
		return nil
	},
}

// requireAdmin bootstraps the app and insists on an authenticated
// session before a headless dashboard operation runs.
func requireAdmin(ctx context.Context) (*bootstrap.App, error) {
	app, err := newApp()
	if err != nil {
		return nil, err
	}
	app.Run(ctx)
	if !app.Store.Snapshot().Authenticated {
		return nil, errors.NewNotLoggedInError()
	}
	return app, nil
}

// formFromFlags reads the product fields shared by add and edit.
func formFromFlags(cmd *cobra.Command) (api.ProductForm, error) {
	var form api.ProductForm
	form.Title, _ = cmd.Flags().GetString("title")
	form.Category, _ = cmd.Flags().GetString("category")
	form.Description, _ = cmd.Flags().GetString("description")
	form.Price, _ = cmd.Flags().GetFloat64("price")
	form.IsFeatured, _ = cmd.Flags().GetBool("featured")

	if path, _ := cmd.Flags().GetString("thumbnail"); path != "" {
		upload, err := readUpload(path)
		if err != nil {
			return api.ProductForm{}, err
		}
		form.Thumbnail = upload
	}
	images, _ := cmd.Flags().GetStringArray("image")
	for _, path := range images {
		upload, err := readUpload(path)
		if err != nil {
			return api.ProductForm{}, err
		}
		form.Images = append(form.Images, *upload)
	}
	return form, nil
}

// runProductForm drives the interactive add/edit flow picked on the
// dashboard. For edits the current listing prefills the form.
func runProductForm(ctx context.Context, app *bootstrap.App, id string) error {
	var form api.ProductForm
	if id != "" {
		current, err := app.Gateway.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		form = api.ProductForm{
			Title:       current.Title,
			Category:    current.Category,
			Description: current.Description,
			Price:       current.Price,
			IsFeatured:  current.IsFeatured,
		}
	}
	return submitProductForm(ctx, app, id, form)
}

// submitProductForm completes any missing fields interactively, then
// creates or updates the listing.
func submitProductForm(ctx context.Context, app *bootstrap.App, id string, form api.ProductForm) error {
	price := ""
	if form.Price > 0 {
		price = strconv.FormatFloat(form.Price, 'f', -1, 64)
	}
	thumbnail := ""
	var imagePaths string

	needFiles := id == "" && form.Thumbnail == nil
	if form.Title == "" || form.Category == "" || price == "" || needFiles {
		fields := []huh.Field{
			huh.NewInput().Title("Title").Value(&form.Title),
			huh.NewInput().Title("Category").Value(&form.Category),
			huh.NewText().Title("Description").Value(&form.Description),
			huh.NewInput().Title("Price").Value(&price).Validate(validatePrice),
			huh.NewConfirm().Title("Feature this piece on the home page?").Value(&form.IsFeatured),
		}
		if form.Thumbnail == nil {
			fields = append(fields, huh.NewInput().Title("Thumbnail image path").Value(&thumbnail))
		}
		if len(form.Images) == 0 {
			fields = append(fields, huh.NewInput().
				Title(fmt.Sprintf("Gallery image paths (space-separated, up to %d)", api.MaxGalleryImages)).
				Value(&imagePaths))
		}
		if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
			return fmt.Errorf("prompt failed: %w", err)
		}
	}

	if form.Title == "" || form.Category == "" || price == "" {
		return fmt.Errorf("title, category, and price are required")
	}
	parsed, err := strconv.ParseFloat(price, 64)
	if err != nil {
		return fmt.Errorf("invalid price %q", price)
	}
	form.Price = parsed

	if thumbnail != "" {
		upload, err := readUpload(thumbnail)
		if err != nil {
			return err
		}
		form.Thumbnail = upload
	}
	for _, path := range splitPaths(imagePaths) {
		upload, err := readUpload(path)
		if err != nil {
			return err
		}
		form.Images = append(form.Images, *upload)
	}

	if id == "" {
		created, err := app.Gateway.AddProduct(ctx, form)
		if err != nil {
			return err
		}
		fmt.Printf("Listing created: %s (%s)\n", created.Title, created.ID)
		return nil
	}

	updated, err := app.Gateway.UpdateProduct(ctx, id, form)
	if err != nil {
		return err
	}
	fmt.Printf("Listing updated: %s\n", updated.Title)
	return nil
}

func validatePrice(s string) error {
	if s == "" {
		return fmt.Errorf("a price is required")
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return fmt.Errorf("not a number")
	}
	return nil
}

// readUpload loads an image file for a multipart form.
func readUpload(path string) (*api.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, "failed to read image "+path, err)
	}
	return &api.Upload{Name: filepath.Base(path), Data: data}, nil
}

func splitPaths(s string) []string {
	return strings.Fields(s)
}

func init() {
	dashboardCmd.AddCommand(dashboardAddCmd)
	dashboardCmd.AddCommand(dashboardEditCmd)
	dashboardCmd.AddCommand(dashboardDeleteCmd)

	for _, c := range []*cobra.Command{dashboardAddCmd, dashboardEditCmd} {
		c.Flags().String("title", "", "Listing title")
		c.Flags().String("category", "", "Category (stored lowercased)")
		c.Flags().String("description", "", "Description")
		c.Flags().Float64("price", 0, "Price")
		c.Flags().Bool("featured", false, "Feature on the home page")
		c.Flags().String("thumbnail", "", "Path to the thumbnail image")
		c.Flags().StringArray("image", nil, "Path to a gallery image (repeatable, up to 4)")
	}
	dashboardDeleteCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")

	rootCmd.AddCommand(dashboardCmd)
}
