package main

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"kidsync/internal/credentials"
)

// newLoginCmd creates the login command
func newLoginCmd() *cobra.Command {
	var tokenFlag string

	loginCmd := &cobra.Command{
		Use:   "login <owner-id>",
		Short: "Sign in a parent account on this device",
		Long: `Sign in a parent account. The API token is stored in the system
keyring. Signing in a different owner than the one currently bound to
this device wipes all local sync state first; owner datasets are never
merged.

Examples:
  # Interactive token prompt (recommended)
  kidsync login parent-123

  # Non-interactive (token visible in shell history)
  kidsync login parent-123 --token tok_abc`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID := args[0]

			token := tokenFlag
			if token == "" {
				fmt.Printf("Enter API token for %s: ", ownerID)
				tokenBytes, err := term.ReadPassword(int(syscall.Stdin))
				fmt.Println() // New line after token input
				if err != nil {
					return fmt.Errorf("failed to read token: %w", err)
				}
				token = string(tokenBytes)
			}
			if token == "" {
				return fmt.Errorf("token cannot be empty")
			}

			app, err := NewApp()
			if err != nil {
				return err
			}
			defer app.Close()

			previous, changed := app.session.Switch(ownerID, token)
			if changed {
				// A new owner on this device: local state from the old
				// owner must not leak into the new session.
				fmt.Printf("Owner changed from %s to %s, wiping local state...\n", previous, ownerID)
				if err := app.store.WipeOwner(previous); err != nil {
					return fmt.Errorf("failed to wipe previous owner's state: %w", err)
				}
				_ = credentials.DeleteToken(previous)
			}

			if err := credentials.SetToken(ownerID, token); err != nil {
				return err
			}
			if err := credentials.SetOwner(ownerID); err != nil {
				return err
			}

			fmt.Printf("Logged in as %s.\n", ownerID)
			return nil
		},
	}

	loginCmd.Flags().StringVar(&tokenFlag, "token", "", "API token (omit for interactive prompt)")

	return loginCmd
}

// newLogoutCmd creates the logout command
func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out the current owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID := credentials.GetOwner()
			if ownerID == "" {
				fmt.Println("Not logged in.")
				return nil
			}

			_ = credentials.DeleteToken(ownerID)
			if err := credentials.ClearOwner(); err != nil {
				return err
			}

			fmt.Printf("Logged out %s. Local data is kept for the next sign-in.\n", ownerID)
			return nil
		},
	}
}
