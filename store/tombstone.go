package store

import (
	"time"
)

// TombstoneStore records local deletion intents. A tombstone is written
// synchronously at the moment of local deletion, before any network
// call, and cleared only after the remote soft-delete is confirmed.
// While it exists, no pull may re-materialize the child.
type TombstoneStore struct {
	db *Database
}

// MarkDeleted writes a tombstone for a child. Writing an existing
// tombstone again is a no-op (the original deletion time is kept).
func (t *TombstoneStore) MarkDeleted(ownerID, localChildID string) error {
	_, err := t.db.Exec(`
		INSERT INTO tombstones (owner_id, local_child_id, deleted_at)
		VALUES (?, ?, ?)
		ON CONFLICT(owner_id, local_child_id) DO NOTHING
	`, ownerID, localChildID, time.Now().Unix())
	if err != nil {
		return &StoreError{Op: "MarkDeleted", OwnerID: ownerID, ChildID: localChildID, Err: err}
	}
	return nil
}

// IsDeleted reports whether a tombstone exists for the child
func (t *TombstoneStore) IsDeleted(ownerID, localChildID string) (bool, error) {
	var count int
	err := t.db.QueryRow(
		"SELECT COUNT(*) FROM tombstones WHERE owner_id = ? AND local_child_id = ?",
		ownerID, localChildID,
	).Scan(&count)
	if err != nil {
		return false, &StoreError{Op: "IsDeleted", OwnerID: ownerID, ChildID: localChildID, Err: err}
	}
	return count > 0, nil
}

// AllDeleted returns the local child ids tombstoned for an owner,
// oldest deletion first.
func (t *TombstoneStore) AllDeleted(ownerID string) ([]string, error) {
	rows, err := t.db.Query(
		"SELECT local_child_id FROM tombstones WHERE owner_id = ? ORDER BY deleted_at ASC",
		ownerID,
	)
	if err != nil {
		return nil, &StoreError{Op: "AllDeleted", OwnerID: ownerID, Err: err}
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, &StoreError{Op: "AllDeleted", OwnerID: ownerID, Err: err}
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "AllDeleted", OwnerID: ownerID, Err: err}
	}

	return ids, nil
}

// Clear removes the tombstone for a single child. Only call after the
// remote soft-delete has been confirmed.
func (t *TombstoneStore) Clear(ownerID, localChildID string) error {
	_, err := t.db.Exec(
		"DELETE FROM tombstones WHERE owner_id = ? AND local_child_id = ?",
		ownerID, localChildID,
	)
	if err != nil {
		return &StoreError{Op: "Clear", OwnerID: ownerID, ChildID: localChildID, Err: err}
	}
	return nil
}

// ClearAll removes every tombstone for an owner
func (t *TombstoneStore) ClearAll(ownerID string) error {
	_, err := t.db.Exec("DELETE FROM tombstones WHERE owner_id = ?", ownerID)
	if err != nil {
		return &StoreError{Op: "ClearAll", OwnerID: ownerID, Err: err}
	}
	return nil
}
