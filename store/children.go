package store

import (
	"database/sql"
	"time"
)

// Child is a locally-owned child profile. The local id is
// device-generated and stable; the remote identity lives in the
// identity map, never on the profile itself.
type Child struct {
	LocalID        string
	OwnerID        string
	Name           string
	Avatar         string
	Coins          int
	SelectedPackID string
	Created        time.Time
	Modified       time.Time
}

// AddChild inserts a new local child profile
func (s *Store) AddChild(child Child) error {
	now := time.Now()
	if child.Created.IsZero() {
		child.Created = now
	}
	if child.Modified.IsZero() {
		child.Modified = now
	}

	_, err := s.db.Exec(`
		INSERT INTO children (local_child_id, owner_id, name, avatar, coins, selected_pack_id, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		child.LocalID,
		child.OwnerID,
		child.Name,
		nullString(child.Avatar),
		child.Coins,
		nullString(child.SelectedPackID),
		child.Created.Unix(),
		child.Modified.Unix(),
	)
	if err != nil {
		return &StoreError{Op: "AddChild", OwnerID: child.OwnerID, ChildID: child.LocalID, Err: err}
	}
	return nil
}

// SeedChild creates a minimal local profile for a child discovered on
// the remote during a pull. Only the name is taken from the remote row;
// everything else starts at defaults.
func (s *Store) SeedChild(ownerID, localChildID, name string) error {
	return s.AddChild(Child{
		LocalID: localChildID,
		OwnerID: ownerID,
		Name:    name,
	})
}

// GetChild returns a single child profile, with found=false when the
// child does not exist locally.
func (s *Store) GetChild(ownerID, localChildID string) (Child, bool, error) {
	row := s.db.QueryRow(`
		SELECT local_child_id, owner_id, name, avatar, coins, selected_pack_id, created_at, modified_at
		FROM children
		WHERE owner_id = ? AND local_child_id = ?
	`, ownerID, localChildID)

	child, err := scanChild(row)
	if err == sql.ErrNoRows {
		return Child{}, false, nil
	}
	if err != nil {
		return Child{}, false, &StoreError{Op: "GetChild", OwnerID: ownerID, ChildID: localChildID, Err: err}
	}
	return child, true, nil
}

// GetChildren returns all local children for an owner, oldest first
func (s *Store) GetChildren(ownerID string) ([]Child, error) {
	rows, err := s.db.Query(`
		SELECT local_child_id, owner_id, name, avatar, coins, selected_pack_id, created_at, modified_at
		FROM children
		WHERE owner_id = ?
		ORDER BY created_at ASC
	`, ownerID)
	if err != nil {
		return nil, &StoreError{Op: "GetChildren", OwnerID: ownerID, Err: err}
	}
	defer rows.Close()

	var children []Child
	for rows.Next() {
		child, err := scanChild(rows)
		if err != nil {
			return nil, &StoreError{Op: "GetChildren", OwnerID: ownerID, Err: err}
		}
		children = append(children, child)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "GetChildren", OwnerID: ownerID, Err: err}
	}

	return children, nil
}

// UpdateChild updates the mutable profile fields of a local child
func (s *Store) UpdateChild(child Child) error {
	_, err := s.db.Exec(`
		UPDATE children
		SET name = ?, avatar = ?, coins = ?, selected_pack_id = ?, modified_at = ?
		WHERE owner_id = ? AND local_child_id = ?
	`,
		child.Name,
		nullString(child.Avatar),
		child.Coins,
		nullString(child.SelectedPackID),
		time.Now().Unix(),
		child.OwnerID,
		child.LocalID,
	)
	if err != nil {
		return &StoreError{Op: "UpdateChild", OwnerID: child.OwnerID, ChildID: child.LocalID, Err: err}
	}
	return nil
}

// RemoveChild deletes the local profile row. Callers must have written
// the tombstone first; this is enforced by the deletion flow, not here.
func (s *Store) RemoveChild(ownerID, localChildID string) error {
	_, err := s.db.Exec("DELETE FROM children WHERE owner_id = ? AND local_child_id = ?", ownerID, localChildID)
	if err != nil {
		return &StoreError{Op: "RemoveChild", OwnerID: ownerID, ChildID: localChildID, Err: err}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChild(row rowScanner) (Child, error) {
	var child Child
	var avatar, selectedPack sql.NullString
	var createdAt, modifiedAt sql.NullInt64

	err := row.Scan(
		&child.LocalID,
		&child.OwnerID,
		&child.Name,
		&avatar,
		&child.Coins,
		&selectedPack,
		&createdAt,
		&modifiedAt,
	)
	if err != nil {
		return Child{}, err
	}

	child.Avatar = avatar.String
	child.SelectedPackID = selectedPack.String
	if createdAt.Valid {
		child.Created = time.Unix(createdAt.Int64, 0)
	}
	if modifiedAt.Valid {
		child.Modified = time.Unix(modifiedAt.Int64, 0)
	}
	return child, nil
}

// nullString converts an empty string to a SQL NULL
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
