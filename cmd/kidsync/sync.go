package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"kidsync/sync"
)

// newSyncCmd creates the sync command
func newSyncCmd() *cobra.Command {
	var pushOnly bool

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize local state with the remote backend",
		Long: `Run a full sync cycle against the remote backend, in order:

1. Provision: create remote entities for new local children
2. Deletions: push tombstoned deletions as remote soft-deletes
3. Push: drain unsynced progress and event rows
4. Pull: merge the owner's remote children into local storage

Deletions are always pushed before the pull, so a pull can never
resurrect a child whose deletion is still in flight.

Examples:
  kidsync sync              # Full cycle
  kidsync sync --push-only  # Drain outboxes without provisioning or pulling`,
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

			var result *sync.SyncResult
			if pushOnly {
				result, err = app.manager.SyncAll(ownerID)
			} else {
				result, err = app.manager.SyncCycle(ownerID)
			}
			if err != nil {
				if errors.Is(err, sync.ErrNoInternet) {
					fmt.Println("Offline: changes are saved locally and will sync when online.")
					return nil
				}
				return fmt.Errorf("sync failed: %w", err)
			}

			printSyncResult(result)
			return nil
		},
	}

	syncCmd.Flags().BoolVar(&pushOnly, "push-only", false, "Drain outboxes only, skip provisioning and pull")

	return syncCmd
}

// newPullCmd creates the pull command
func newPullCmd() *cobra.Command {
	var force bool

	pullCmd := &cobra.Command{
		Use:   "pull",
		Short: "Pull the owner's children from the remote backend",
		Long: `Fetch the owner's non-deleted remote children and merge new ones into
local storage. Tombstoned children are never re-created, and children
that already exist locally keep their local profile untouched.`,
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

			opts := sync.PullOptions{
				RequirePushSuccess: app.config.Sync.RequirePushSuccess && !force,
			}

			result, err := app.manager.PullChildren(ownerID, opts)
			if err != nil {
				switch {
				case errors.Is(err, sync.ErrNoInternet):
					fmt.Println("Offline: pull skipped.")
					return nil
				case errors.Is(err, sync.ErrPushNotConfirmed):
					return fmt.Errorf("pull declined: push local changes first (kidsync sync), or use --force")
				default:
					return fmt.Errorf("pull failed: %w", err)
				}
			}

			fmt.Printf("Pulled %d new child(ren).\n", result.Count)
			return nil
		},
	}

	pullCmd.Flags().BoolVar(&force, "force", false, "Pull even if the last push did not complete cleanly")

	return pullCmd
}

// printSyncResult displays the outcome of a sync pass
func printSyncResult(result *sync.SyncResult) {
	fmt.Printf("Sync completed in %s\n", result.Duration.Round(time.Millisecond))
	fmt.Printf("  Provisioned children: %d\n", result.Provisioned)
	fmt.Printf("  Deletions pushed:     %d\n", result.DeletionsPushed)
	fmt.Printf("  Progress synced:      %d\n", result.SyncedProgress)
	fmt.Printf("  Events synced:        %d\n", result.SyncedEvents)
	fmt.Printf("  Pulled children:      %d\n", result.Pulled)
	if result.Skipped > 0 {
		fmt.Printf("  Skipped rows:         %d (will retry next cycle)\n", result.Skipped)
	}
}
