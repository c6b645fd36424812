package store

import (
	"database/sql"
	"time"
)

// IdentityMap is the persisted mapping from local child ids to remote
// child ids. It is the only source of truth for "does this local child
// already exist remotely". At most one remote id per local id.
type IdentityMap struct {
	db *Database
}

// Resolve returns the remote child id bound to a local child id, with
// found=false when no binding exists.
func (m *IdentityMap) Resolve(localChildID string) (string, bool, error) {
	var remoteID string
	err := m.db.QueryRow(
		"SELECT remote_child_id FROM child_id_map WHERE local_child_id = ?",
		localChildID,
	).Scan(&remoteID)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, &StoreError{Op: "Resolve", ChildID: localChildID, Err: err}
	}
	return remoteID, true, nil
}

// Bind records (or refreshes) the remote id for a local child id.
// Rebinding the same local id replaces the previous entry, preserving
// the one-remote-id-per-local-id invariant.
func (m *IdentityMap) Bind(ownerID, localChildID, remoteChildID string) error {
	_, err := m.db.Exec(`
		INSERT INTO child_id_map (local_child_id, owner_id, remote_child_id, bound_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(local_child_id) DO UPDATE SET
			owner_id = excluded.owner_id,
			remote_child_id = excluded.remote_child_id,
			bound_at = excluded.bound_at
	`, localChildID, ownerID, remoteChildID, time.Now().Unix())
	if err != nil {
		return &StoreError{Op: "Bind", OwnerID: ownerID, ChildID: localChildID, Err: err}
	}
	return nil
}

// Unbind removes the binding for a local child id. Removing a
// nonexistent binding is not an error.
func (m *IdentityMap) Unbind(localChildID string) error {
	_, err := m.db.Exec("DELETE FROM child_id_map WHERE local_child_id = ?", localChildID)
	if err != nil {
		return &StoreError{Op: "Unbind", ChildID: localChildID, Err: err}
	}
	return nil
}

// Bindings returns all local-to-remote bindings for an owner
func (m *IdentityMap) Bindings(ownerID string) (map[string]string, error) {
	rows, err := m.db.Query(
		"SELECT local_child_id, remote_child_id FROM child_id_map WHERE owner_id = ?",
		ownerID,
	)
	if err != nil {
		return nil, &StoreError{Op: "Bindings", OwnerID: ownerID, Err: err}
	}
	defer rows.Close()

	bindings := make(map[string]string)
	for rows.Next() {
		var localID, remoteID string
		if err := rows.Scan(&localID, &remoteID); err != nil {
			return nil, &StoreError{Op: "Bindings", OwnerID: ownerID, Err: err}
		}
		bindings[localID] = remoteID
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "Bindings", OwnerID: ownerID, Err: err}
	}

	return bindings, nil
}
