package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"kidsync/internal/utils"
	"kidsync/store"
)

// newChildCmd creates the child command with its subcommands
func newChildCmd() *cobra.Command {
	childCmd := &cobra.Command{
		Use:   "child",
		Short: "Manage local child profiles",
	}

	childCmd.AddCommand(newChildAddCmd(), newChildListCmd(), newChildRemoveCmd())
	return childCmd
}

func newChildAddCmd() *cobra.Command {
	var avatar string

	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a new local child profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := utils.ValidateChildName(name); err != nil {
				return err
			}

			app, err := NewApp()
			if err != nil {
				return err
			}
			defer app.Close()

			ownerID, err := app.requireOwner()
			if err != nil {
				return err
			}

			child := store.Child{
				LocalID: uuid.NewString(),
				OwnerID: ownerID,
				Name:    name,
				Avatar:  avatar,
			}
			if err := app.store.AddChild(child); err != nil {
				return err
			}

			fmt.Printf("Created child %q (%s). It will be provisioned remotely on the next sync.\n", name, child.LocalID)
			return nil
		},
	}

	addCmd.Flags().StringVar(&avatar, "avatar", "", "avatar identifier")
	return addCmd
}

func newChildListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List local child profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp()
			if err != nil {
				return err
			}
			defer app.Close()

			ownerID, err := app.requireOwner()
			if err != nil {
				return err
			}

			children, err := app.store.GetChildren(ownerID)
			if err != nil {
				return err
			}

			bindings, err := app.store.IdentityMap().Bindings(ownerID)
			if err != nil {
				return err
			}

			printChildren(children, bindings)
			return nil
		},
	}
}

func newChildRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <local-child-id>",
		Short: "Delete a local child profile",
		Long: `Delete a child profile from this device. The deletion is recorded as a
tombstone before anything else happens, so even if the app stops right
after, a later pull can never bring the child back. The remote
soft-delete is pushed on the next sync.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			localChildID := args[0]

			app, err := NewApp()
			if err != nil {
				return err
			}
			defer app.Close()

			ownerID, err := app.requireOwner()
			if err != nil {
				return err
			}

			_, exists, err := app.store.GetChild(ownerID, localChildID)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("no child with id %s", localChildID)
			}

			// Ordering is the safety property: tombstone first, then the
			// profile goes away. The identity map entry stays until the
			// remote soft-delete is confirmed by a sync.
			if err := app.store.Tombstones().MarkDeleted(ownerID, localChildID); err != nil {
				return err
			}
			if err := app.store.RemoveChild(ownerID, localChildID); err != nil {
				return err
			}

			fmt.Printf("Deleted child %s. The remote copy will be soft-deleted on the next sync.\n", localChildID)
			return nil
		},
	}
}
