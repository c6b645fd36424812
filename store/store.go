package store

import (
	"fmt"
)

// Store is the local durable store for child profiles, outbox rows,
// the identity map, and tombstones. All data is scoped by owner id.
type Store struct {
	db *Database
}

// Open opens (and initializes if needed) the local store at the given
// path. An empty path resolves to the XDG data directory.
func Open(path string) (*Store, error) {
	db, err := InitDatabase(path)
	if err != nil {
		return nil, &StoreError{Op: "open", Err: err}
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB returns the underlying database wrapper
func (s *Store) DB() *Database {
	return s.db
}

// IdentityMap returns the identity map repository backed by this store
func (s *Store) IdentityMap() *IdentityMap {
	return &IdentityMap{db: s.db}
}

// Tombstones returns the tombstone repository backed by this store
func (s *Store) Tombstones() *TombstoneStore {
	return &TombstoneStore{db: s.db}
}

// WipeOwner removes all local state for an owner in one transaction:
// children, identity map entries, tombstones, and outbox rows. Called
// when the authenticated owner changes; owner datasets are never merged.
func (s *Store) WipeOwner(ownerID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return &StoreError{Op: "WipeOwner", OwnerID: ownerID, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"children", "child_id_map", "tombstones", "progress_outbox", "event_outbox"} {
		if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE owner_id = ?", table), ownerID); err != nil {
			return &StoreError{Op: "WipeOwner", OwnerID: ownerID, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &StoreError{Op: "WipeOwner", OwnerID: ownerID, Err: err}
	}
	return nil
}

// Stats holds per-owner counts for the status display
type Stats struct {
	Children          int
	MappedChildren    int
	PendingTombstones int
	UnsyncedProgress  int
	UnsyncedEvents    int
}

// OwnerStats returns counts of local state for an owner
func (s *Store) OwnerStats(ownerID string) (Stats, error) {
	stats := Stats{}

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM children WHERE owner_id = ?", &stats.Children},
		{"SELECT COUNT(*) FROM child_id_map WHERE owner_id = ?", &stats.MappedChildren},
		{"SELECT COUNT(*) FROM tombstones WHERE owner_id = ?", &stats.PendingTombstones},
		{"SELECT COUNT(*) FROM progress_outbox WHERE owner_id = ? AND synced = 0", &stats.UnsyncedProgress},
		{"SELECT COUNT(*) FROM event_outbox WHERE owner_id = ? AND synced = 0", &stats.UnsyncedEvents},
	}

	for _, c := range counts {
		if err := s.db.QueryRow(c.query, ownerID).Scan(c.dest); err != nil {
			return stats, &StoreError{Op: "OwnerStats", OwnerID: ownerID, Err: err}
		}
	}

	return stats, nil
}
