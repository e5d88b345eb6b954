package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/maisondecor/maison/internal/api"
)

var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Send a message to the store",
	Long: `Send a message to the Maison Décor team.

All fields can be passed as flags; missing fields are collected
interactively.

Examples:
  maison contact
  maison contact --name "Sam" --email sam@example.com --subject "Delivery" --message "When does the oak table ship?"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := api.ContactRequest{}
		req.Name, _ = cmd.Flags().GetString("name")
		req.Email, _ = cmd.Flags().GetString("email")
		req.Subject, _ = cmd.Flags().GetString("subject")
		req.Message, _ = cmd.Flags().GetString("message")

		if err := fillContactForm(&req); err != nil {
			return err
		}

		app, err := newApp()
		if err != nil {
			return err
		}
		if err := app.Public.Contact(cmd.Context(), req); err != nil {
			return fmt.Errorf("failed to send your message: %w", err)
		}

		fmt.Println("Thank you! We will get back to you within one business day.")
		return nil
	},
}

// fillContactForm prompts for the fields not supplied as flags.
func fillContactForm(req *api.ContactRequest) error {
	var fields []huh.Field
	if req.Name == "" {
		fields = append(fields, huh.NewInput().Title("Your name").Value(&req.Name))
	}
	if req.Email == "" {
		fields = append(fields, huh.NewInput().Title("Email address").Value(&req.Email))
	}
	if req.Subject == "" {
		fields = append(fields, huh.NewInput().Title("Subject").Value(&req.Subject))
	}
	if req.Message == "" {
		fields = append(fields, huh.NewText().Title("Message").Value(&req.Message))
	}
	if len(fields) == 0 {
		return nil
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}

	if req.Name == "" || req.Email == "" || req.Message == "" {
		return fmt.Errorf("name, email, and message are required")
	}
	return nil
}

func init() {
	contactCmd.Flags().String("name", "", "Your name")
	contactCmd.Flags().String("email", "", "Your email address")
	contactCmd.Flags().String("subject", "", "Message subject")
	contactCmd.Flags().String("message", "", "Message body")

	rootCmd.AddCommand(contactCmd)
}
