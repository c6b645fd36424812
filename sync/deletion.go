package sync

import (
	"kidsync/internal/utils"
)

// PushDeletions propagates tombstoned deletions to the remote store as
// soft-deletes. For each tombstoned child with a known remote mapping
// the order is fixed: remote soft-delete, then unbind the identity map,
// then clear the tombstone. On any failure both the mapping and the
// tombstone stay intact so the next cycle retries; a tombstone is never
// cleared before the remote confirms. Returns the number of deletions
// confirmed remote this pass.
func (m *Manager) PushDeletions(ownerID string) (int, error) {
	tombstones := m.store.Tombstones()
	ids := m.store.IdentityMap()

	deleted, err := tombstones.AllDeleted(ownerID)
	if err != nil {
		return 0, err
	}

	confirmed := 0
	for _, localChildID := range deleted {
		remoteID, bound, err := ids.Resolve(localChildID)
		if err != nil {
			return confirmed, err
		}

		if !bound {
			// Never provisioned: there is nothing remote to delete.
			// Drop any leftover outbox rows and retire the tombstone.
			if err := m.store.DropChildRows(ownerID, localChildID); err != nil {
				return confirmed, err
			}
			if err := tombstones.Clear(ownerID, localChildID); err != nil {
				return confirmed, err
			}
			continue
		}

		if err := m.remote.SoftDeleteChild(ownerID, remoteID); err != nil {
			remoteErr, ok := err.(interface{ IsNotFound() bool })
			if !ok || !remoteErr.IsNotFound() {
				utils.Warnf("soft-delete failed for child %s: %v", localChildID, err)
				continue
			}
			// Already gone remotely counts as confirmed.
		}

		if err := ids.Unbind(localChildID); err != nil {
			return confirmed, err
		}
		if err := m.store.DropChildRows(ownerID, localChildID); err != nil {
			return confirmed, err
		}
		if err := tombstones.Clear(ownerID, localChildID); err != nil {
			return confirmed, err
		}
		confirmed++
	}

	return confirmed, nil
}
