package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"kidsync/internal/utils"
	"kidsync/store"
)

// newProgressCmd creates the progress command
func newProgressCmd() *cobra.Command {
	var (
		packID      string
		trackID     string
		lessonID    string
		status      string
		score       int
		attempts    int
		durationSec int
		rowID       string
	)

	progressCmd := &cobra.Command{
		Use:   "progress <local-child-id>",
		Short: "Record a learning-progress update in the outbox",
		Long: `Record a progress update for a child. The row is stored durably in the
local outbox and upserted to the remote backend on the next sync.
Passing --id of an existing row updates it in place (last write wins).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := utils.ValidateProgressStatus(status); err != nil {
				return err
			}
			if err := utils.ValidateScore(score); err != nil {
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

			if rowID == "" {
				rowID = uuid.NewString()
			}

			row := store.ProgressRow{
				ID:           rowID,
				OwnerID:      ownerID,
				LocalChildID: args[0],
				PackID:       packID,
				TrackID:      trackID,
				LessonID:     lessonID,
				Status:       status,
				Score:        score,
				Attempts:     attempts,
				DurationSec:  durationSec,
			}
			if err := app.store.UpsertProgress(row); err != nil {
				return err
			}

			fmt.Printf("Recorded progress row %s. It will sync on the next cycle.\n", rowID)
			return nil
		},
	}

	progressCmd.Flags().StringVar(&packID, "pack", "", "vocabulary pack id")
	progressCmd.Flags().StringVar(&trackID, "track", "", "track id")
	progressCmd.Flags().StringVar(&lessonID, "lesson", "", "lesson id")
	progressCmd.Flags().StringVar(&status, "status", "in_progress", "progress status")
	progressCmd.Flags().IntVar(&score, "score", 0, "lesson score (0-100)")
	progressCmd.Flags().IntVar(&attempts, "attempts", 1, "attempt count")
	progressCmd.Flags().IntVar(&durationSec, "duration", 0, "time spent in seconds")
	progressCmd.Flags().StringVar(&rowID, "id", "", "row id (defaults to a new id)")

	_ = progressCmd.MarkFlagRequired("pack")
	_ = progressCmd.MarkFlagRequired("track")
	_ = progressCmd.MarkFlagRequired("lesson")

	return progressCmd
}

// newEventCmd creates the event command
func newEventCmd() *cobra.Command {
	var payload string

	eventCmd := &cobra.Command{
		Use:   "event <local-child-id> <event-type>",
		Short: "Record a telemetry event in the outbox",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventType := args[1]
			if err := utils.ValidateEventType(eventType); err != nil {
				return err
			}
			if payload != "" && !json.Valid([]byte(payload)) {
				return fmt.Errorf("payload must be valid JSON")
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

			row := store.EventRow{
				ID:           uuid.NewString(),
				OwnerID:      ownerID,
				LocalChildID: args[0],
				EventType:    eventType,
				Payload:      payload,
			}
			if err := app.store.AppendEvent(row); err != nil {
				return err
			}

			fmt.Printf("Recorded event %s. It will sync on the next cycle.\n", row.ID)
			return nil
		},
	}

	eventCmd.Flags().StringVar(&payload, "payload", "", "JSON event payload")

	return eventCmd
}
