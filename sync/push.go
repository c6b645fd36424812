package sync

import (
	"encoding/json"

	"kidsync/internal/utils"
	"kidsync/remote"
	"kidsync/store"
)

// PushResult contains statistics from an outbox drain pass
type PushResult struct {
	SyncedCount int
	Skipped     int
}

// PushProgress drains unsynced progress rows: resolve the child through
// ensure (provisioning on demand), upsert remotely with the remote
// child id substituted, and flip the row's synced flag only after the
// remote call confirms. One bad row never blocks the rest of the batch.
func (m *Manager) PushProgress(ownerID string) (*PushResult, error) {
	rows, err := m.store.UnsyncedProgress(ownerID)
	if err != nil {
		return nil, err
	}

	result := &PushResult{}
	for _, row := range rows {
		remoteID, err := m.resolver.Ensure(ownerID, row.LocalChildID)
		if err != nil {
			utils.Debugf("skipping progress row %s: %v", row.ID, err)
			result.Skipped++
			continue
		}

		rec := progressRecord(row, remoteID)
		if err := m.remote.UpsertProgress(ownerID, rec); err != nil {
			utils.Warnf("progress upsert failed for row %s: %v", row.ID, err)
			result.Skipped++
			continue
		}

		if err := m.store.MarkProgressSynced(row.ID); err != nil {
			return result, err
		}
		result.SyncedCount++
	}

	return result, nil
}

// PushEvents drains unsynced telemetry events the same way progress
// rows are drained, except events are insert-only on the remote side.
func (m *Manager) PushEvents(ownerID string) (*PushResult, error) {
	rows, err := m.store.UnsyncedEvents(ownerID)
	if err != nil {
		return nil, err
	}

	result := &PushResult{}
	for _, row := range rows {
		remoteID, err := m.resolver.Ensure(ownerID, row.LocalChildID)
		if err != nil {
			utils.Debugf("skipping event row %s: %v", row.ID, err)
			result.Skipped++
			continue
		}

		rec := eventRecord(row, remoteID)
		if err := m.remote.InsertEvent(ownerID, rec); err != nil {
			utils.Warnf("event insert failed for row %s: %v", row.ID, err)
			result.Skipped++
			continue
		}

		if err := m.store.MarkEventSynced(row.ID); err != nil {
			return result, err
		}
		result.SyncedCount++
	}

	return result, nil
}

func progressRecord(row store.ProgressRow, remoteChildID string) remote.ProgressRecord {
	return remote.ProgressRecord{
		ID:          row.ID,
		OwnerID:     row.OwnerID,
		ChildID:     remoteChildID,
		PackID:      row.PackID,
		TrackID:     row.TrackID,
		LessonID:    row.LessonID,
		Status:      row.Status,
		Score:       row.Score,
		Attempts:    row.Attempts,
		DurationSec: row.DurationSec,
		UpdatedAt:   row.Updated,
	}
}

func eventRecord(row store.EventRow, remoteChildID string) remote.EventRecord {
	var payload json.RawMessage
	if row.Payload != "" {
		payload = json.RawMessage(row.Payload)
	}
	return remote.EventRecord{
		ID:        row.ID,
		OwnerID:   row.OwnerID,
		ChildID:   remoteChildID,
		EventType: row.EventType,
		Payload:   payload,
		CreatedAt: row.Created,
	}
}
