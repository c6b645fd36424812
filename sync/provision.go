package sync

import (
	"kidsync/internal/utils"
)

// ProvisionChildren ensures every local child has a remote counterpart,
// creating one where absent. Tombstoned children are never provisioned.
// Per-child failures are logged and skipped; a single child's failure
// does not abort the pass. Returns the number of newly provisioned
// children.
func (m *Manager) ProvisionChildren(ownerID string) (int, error) {
	children, err := m.store.GetChildren(ownerID)
	if err != nil {
		return 0, err
	}

	bindings, err := m.store.IdentityMap().Bindings(ownerID)
	if err != nil {
		return 0, err
	}

	tombstones := m.store.Tombstones()

	provisioned := 0
	for _, child := range children {
		if _, bound := bindings[child.LocalID]; bound {
			continue
		}

		deleted, err := tombstones.IsDeleted(ownerID, child.LocalID)
		if err != nil {
			return provisioned, err
		}
		if deleted {
			continue
		}

		if _, err := m.resolver.Ensure(ownerID, child.LocalID); err != nil {
			utils.Warnf("provisioning child %s failed: %v", child.LocalID, err)
			continue
		}
		provisioned++
	}

	return provisioned, nil
}
