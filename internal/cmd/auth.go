package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/maisondecor/maison/internal/errors"
	"github.com/maisondecor/maison/internal/session"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage your account and session",
	Long: `Manage your Maison Décor account and session.

The dashboard is restricted to store administrators; login succeeds
only for accounts with the admin role. The session is persisted under
the maison storage directory and silently refreshed on later runs.

Subcommands:
  login            Log in with email and password
  logout           Log out and clear the stored session
  status           Show the current session
  register         Create a customer account
  forgot-password  Request a password reset email
  reset-password   Complete a password reset
  change-password  Change the password of the logged-in account

Examples:
  maison auth login --email lena@example.com
  maison auth status
  maison auth logout`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the store",
	Long: `Log in with your email and password.

Only administrator accounts are accepted; a valid customer login is
rejected with an access-denied message. The password is prompted for
when not passed as a flag.

Examples:
  maison auth login --email lena@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if err := promptCredentials(&email, &password); err != nil {
			return err
		}

		app, err := newApp()
		if err != nil {
			return err
		}
		app.Run(cmd.Context())

		if err := app.Store.Login(cmd.Context(), email, password); err != nil {
			return err
		}

		st := app.Store.Snapshot()
		fmt.Printf("Welcome back, %s.\n", st.Session.Identity.UserName)
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear the stored session",
	Long: `Log out of the store.

The local session is cleared immediately; the backend is notified on a
best-effort basis, so logout succeeds even when the store is offline.

Examples:
  maison auth logout`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		app.Store.Restore()

		if app.Store.AccessToken() == "" {
			fmt.Println("Not logged in.")
			return nil
		}

		app.Store.Logout(cmd.Context())
		fmt.Println("Logged out.")
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	Long: `Show who is logged in and when the stored access token expires.

This command is offline: it inspects the persisted session without
contacting the backend.

Examples:
  maison auth status`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		app.Store.Restore()

		st := app.Store.Snapshot()
		if st.Session == nil {
			fmt.Println("Not logged in.")
			fmt.Println()
			fmt.Println("Use 'maison auth login' to log in.")
			return nil
		}

		identity := st.Session.Identity
		fmt.Printf("Logged in as: %s <%s>\n", identity.UserName, identity.Email)
		fmt.Printf("Role:         %s\n", identity.Role)

		expiry, err := session.PeekExpiry(st.Session.AccessToken)
		switch {
		case err != nil:
			fmt.Println("Access token: unreadable; it will be refreshed on next use")
		case expiry.Before(time.Now()):
			fmt.Printf("Access token: expired %s ago; it will be refreshed on next use\n", time.Since(expiry).Round(time.Second))
		default:
			fmt.Printf("Access token: valid for %s\n", time.Until(expiry).Round(time.Second))
		}
		return nil
	},
}

var authRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a customer account",
	Long: `Create a customer account.

Customer accounts can order in the showroom and track deliveries; the
terminal dashboard itself stays admin-only.

Examples:
  maison auth register --email sam@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		var fields []huh.Field
		if name == "" {
			fields = append(fields, huh.NewInput().Title("Name").Value(&name))
		}
		if email == "" {
			fields = append(fields, huh.NewInput().Title("Email address").Value(&email))
		}
		if password == "" {
			fields = append(fields, huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password))
		}
		if len(fields) > 0 {
			if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
				return fmt.Errorf("prompt failed: %w", err)
			}
		}
		if name == "" || email == "" || password == "" {
			return fmt.Errorf("name, email, and password are required")
		}

		app, err := newApp()
		if err != nil {
			return err
		}
		if err := app.Public.Register(cmd.Context(), name, email, password); err != nil {
			return err
		}

		fmt.Println("Account created. You can now log in.")
		return nil
	},
}

var authForgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password",
	Short: "Request a password reset email",
	Long: `Request a password reset email.

The reset email contains a token for 'maison auth reset-password'.

Examples:
  maison auth forgot-password --email lena@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		if email == "" {
			if err := huh.NewForm(huh.NewGroup(
				huh.NewInput().Title("Email address").Value(&email),
			)).Run(); err != nil {
				return fmt.Errorf("prompt failed: %w", err)
			}
		}
		if email == "" {
			return fmt.Errorf("an email address is required")
		}

		app, err := newApp()
		if err != nil {
			return err
		}
		if err := app.Public.ForgotPassword(cmd.Context(), email); err != nil {
			return err
		}

		fmt.Println("If that address has an account, a reset email is on its way.")
		return nil
	},
}

var authResetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Complete a password reset",
	Long: `Complete a password reset with the token from the reset email.

Examples:
  maison auth reset-password --token 3f9a...`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, _ := cmd.Flags().GetString("token")
		password, _ := cmd.Flags().GetString("password")

		var fields []huh.Field
		if token == "" {
			fields = append(fields, huh.NewInput().Title("Reset token").Value(&token))
		}
		if password == "" {
			fields = append(fields, huh.NewInput().Title("New password").EchoMode(huh.EchoModePassword).Value(&password))
		}
		if len(fields) > 0 {
			if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
				return fmt.Errorf("prompt failed: %w", err)
			}
		}
		if token == "" || password == "" {
			return fmt.Errorf("token and new password are required")
		}

		app, err := newApp()
		if err != nil {
			return err
		}
		if err := app.Public.ResetPassword(cmd.Context(), token, password); err != nil {
			return err
		}

		fmt.Println("Password updated. You can now log in.")
		return nil
	},
}

var authChangePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Change the password of the logged-in account",
	Long: `Change the password of the logged-in account.

Requires a login; the request goes through the authenticated gateway,
so an expired access token is refreshed transparently.

Examples:
  maison auth change-password`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		app.Run(cmd.Context())

		if !app.Store.Snapshot().Authenticated {
			return errors.NewNotLoggedInError()
		}

		current, _ := cmd.Flags().GetString("current")
		updated, _ := cmd.Flags().GetString("new")

		var fields []huh.Field
		if current == "" {
			fields = append(fields, huh.NewInput().Title("Current password").EchoMode(huh.EchoModePassword).Value(&current))
		}
		if updated == "" {
			fields = append(fields, huh.NewInput().Title("New password").EchoMode(huh.EchoModePassword).Value(&updated))
		}
		if len(fields) > 0 {
			if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
				return fmt.Errorf("prompt failed: %w", err)
			}
		}
		if current == "" || updated == "" {
			return fmt.Errorf("both passwords are required")
		}

		if err := app.Gateway.ChangePassword(cmd.Context(), current, updated); err != nil {
			return err
		}

		fmt.Println("Password changed.")
		return nil
	},
}

// promptCredentials fills in whichever of email and password were not
// passed as flags.
func promptCredentials(email, password *string) error {
	var fields []huh.Field
	if *email == "" {
		fields = append(fields, huh.NewInput().Title("Email address").Value(email))
	}
	if *password == "" {
		fields = append(fields, huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(password))
	}
	if len(fields) == 0 {
		return nil
	}
	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	if *email == "" || *password == "" {
		return fmt.Errorf("email and password are required")
	}
	return nil
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authRegisterCmd)
	authCmd.AddCommand(authForgotPasswordCmd)
	authCmd.AddCommand(authResetPasswordCmd)
	authCmd.AddCommand(authChangePasswordCmd)

	authLoginCmd.Flags().String("email", "", "Email address")
	authLoginCmd.Flags().String("password", "", "Password (prompted when omitted)")

	authRegisterCmd.Flags().String("name", "", "Name")
	authRegisterCmd.Flags().String("email", "", "Email address")
	authRegisterCmd.Flags().String("password", "", "Password (prompted when omitted)")

	authForgotPasswordCmd.Flags().String("email", "", "Email address")

	authResetPasswordCmd.Flags().String("token", "", "Reset token from the email")
	authResetPasswordCmd.Flags().String("password", "", "New password (prompted when omitted)")

	authChangePasswordCmd.Flags().String("current", "", "Current password (prompted when omitted)")
	authChangePasswordCmd.Flags().String("new", "", "New password (prompted when omitted)")

	rootCmd.AddCommand(authCmd)
}
