package store

import (
	"database/sql"
	"time"
)

// ProgressRow is a learning-progress record waiting in the outbox.
// Rows are upserted remotely keyed by ID (last write wins).
type ProgressRow struct {
	ID           string
	OwnerID      string
	LocalChildID string
	PackID       string
	TrackID      string
	LessonID     string
	Status       string
	Score        int
	Attempts     int
	DurationSec  int
	Updated      time.Time
	Synced       bool
}

// EventRow is a telemetry event waiting in the outbox. Events are
// append-only and inserted remotely exactly once.
type EventRow struct {
	ID           string
	OwnerID      string
	LocalChildID string
	EventType    string
	Payload      string
	Created      time.Time
	Synced       bool
}

// UpsertProgress records a progress update in the outbox. Re-recording
// an existing row id overwrites the row data and resets synced to 0 so
// the latest state is pushed again.
func (s *Store) UpsertProgress(row ProgressRow) error {
	if row.Updated.IsZero() {
		row.Updated = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO progress_outbox (id, owner_id, local_child_id, pack_id, track_id, lesson_id, status, score, attempts, duration_sec, updated_at, synced)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			score = excluded.score,
			attempts = excluded.attempts,
			duration_sec = excluded.duration_sec,
			updated_at = excluded.updated_at,
			synced = 0
	`,
		row.ID,
		row.OwnerID,
		row.LocalChildID,
		row.PackID,
		row.TrackID,
		row.LessonID,
		row.Status,
		row.Score,
		row.Attempts,
		row.DurationSec,
		row.Updated.Unix(),
	)
	if err != nil {
		return &StoreError{Op: "UpsertProgress", OwnerID: row.OwnerID, ChildID: row.LocalChildID, Err: err}
	}
	return nil
}

// AppendEvent records a telemetry event in the outbox
func (s *Store) AppendEvent(row EventRow) error {
	if row.Created.IsZero() {
		row.Created = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO event_outbox (id, owner_id, local_child_id, event_type, payload, created_at, synced)
		VALUES (?, ?, ?, ?, ?, ?, 0)
	`,
		row.ID,
		row.OwnerID,
		row.LocalChildID,
		row.EventType,
		nullString(row.Payload),
		row.Created.Unix(),
	)
	if err != nil {
		return &StoreError{Op: "AppendEvent", OwnerID: row.OwnerID, ChildID: row.LocalChildID, Err: err}
	}
	return nil
}

// UnsyncedProgress returns all progress rows not yet confirmed remote,
// oldest first.
func (s *Store) UnsyncedProgress(ownerID string) ([]ProgressRow, error) {
	rows, err := s.db.Query(`
		SELECT id, owner_id, local_child_id, pack_id, track_id, lesson_id, status, score, attempts, duration_sec, updated_at, synced
		FROM progress_outbox
		WHERE owner_id = ? AND synced = 0
		ORDER BY updated_at ASC
	`, ownerID)
	if err != nil {
		return nil, &StoreError{Op: "UnsyncedProgress", OwnerID: ownerID, Err: err}
	}
	defer rows.Close()

	var result []ProgressRow
	for rows.Next() {
		var row ProgressRow
		var updatedAt int64
		var synced int
		err := rows.Scan(
			&row.ID,
			&row.OwnerID,
			&row.LocalChildID,
			&row.PackID,
			&row.TrackID,
			&row.LessonID,
			&row.Status,
			&row.Score,
			&row.Attempts,
			&row.DurationSec,
			&updatedAt,
			&synced,
		)
		if err != nil {
			return nil, &StoreError{Op: "UnsyncedProgress", OwnerID: ownerID, Err: err}
		}
		row.Updated = time.Unix(updatedAt, 0)
		row.Synced = synced == 1
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "UnsyncedProgress", OwnerID: ownerID, Err: err}
	}

	return result, nil
}

// UnsyncedEvents returns all event rows not yet confirmed remote,
// oldest first.
func (s *Store) UnsyncedEvents(ownerID string) ([]EventRow, error) {
	rows, err := s.db.Query(`
		SELECT id, owner_id, local_child_id, event_type, payload, created_at, synced
		FROM event_outbox
		WHERE owner_id = ? AND synced = 0
		ORDER BY created_at ASC
	`, ownerID)
	if err != nil {
		return nil, &StoreError{Op: "UnsyncedEvents", OwnerID: ownerID, Err: err}
	}
	defer rows.Close()

	var result []EventRow
	for rows.Next() {
		var row EventRow
		var payload sql.NullString
		var createdAt int64
		var synced int
		err := rows.Scan(
			&row.ID,
			&row.OwnerID,
			&row.LocalChildID,
			&row.EventType,
			&payload,
			&createdAt,
			&synced,
		)
		if err != nil {
			return nil, &StoreError{Op: "UnsyncedEvents", OwnerID: ownerID, Err: err}
		}
		row.Payload = payload.String
		row.Created = time.Unix(createdAt, 0)
		row.Synced = synced == 1
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "UnsyncedEvents", OwnerID: ownerID, Err: err}
	}

	return result, nil
}

// MarkProgressSynced flips the synced flag for a single progress row.
// The flag only ever moves from 0 to 1 here; nothing flips it back
// except a newer local write through UpsertProgress.
func (s *Store) MarkProgressSynced(id string) error {
	_, err := s.db.Exec("UPDATE progress_outbox SET synced = 1 WHERE id = ?", id)
	if err != nil {
		return &StoreError{Op: "MarkProgressSynced", Err: err}
	}
	return nil
}

// MarkEventSynced flips the synced flag for a single event row
func (s *Store) MarkEventSynced(id string) error {
	_, err := s.db.Exec("UPDATE event_outbox SET synced = 1 WHERE id = ?", id)
	if err != nil {
		return &StoreError{Op: "MarkEventSynced", Err: err}
	}
	return nil
}

// IsProgressSynced reports the synced flag of a progress row
func (s *Store) IsProgressSynced(id string) (bool, error) {
	var synced int
	err := s.db.QueryRow("SELECT synced FROM progress_outbox WHERE id = ?", id).Scan(&synced)
	if err != nil {
		return false, &StoreError{Op: "IsProgressSynced", Err: err}
	}
	return synced == 1, nil
}

// IsEventSynced reports the synced flag of an event row
func (s *Store) IsEventSynced(id string) (bool, error) {
	var synced int
	err := s.db.QueryRow("SELECT synced FROM event_outbox WHERE id = ?", id).Scan(&synced)
	if err != nil {
		return false, &StoreError{Op: "IsEventSynced", Err: err}
	}
	return synced == 1, nil
}

// DropChildRows removes all outbox rows for a child. Used when a
// deletion retires a child that was never provisioned remotely, so its
// rows have nowhere to go.
func (s *Store) DropChildRows(ownerID, localChildID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return &StoreError{Op: "DropChildRows", OwnerID: ownerID, ChildID: localChildID, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM progress_outbox WHERE owner_id = ? AND local_child_id = ?", ownerID, localChildID); err != nil {
		return &StoreError{Op: "DropChildRows", OwnerID: ownerID, ChildID: localChildID, Err: err}
	}
	if _, err := tx.Exec("DELETE FROM event_outbox WHERE owner_id = ? AND local_child_id = ?", ownerID, localChildID); err != nil {
		return &StoreError{Op: "DropChildRows", OwnerID: ownerID, ChildID: localChildID, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &StoreError{Op: "DropChildRows", OwnerID: ownerID, ChildID: localChildID, Err: err}
	}
	return nil
}
