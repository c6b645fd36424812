package sync

import (
	"fmt"

	"kidsync/internal/utils"
)

// PullOptions controls pull preconditions
type PullOptions struct {
	// RequirePushSuccess declines the pull unless the last outbox drain
	// completed without skips, reducing races against half-pushed state.
	RequirePushSuccess bool
}

// PullResult contains statistics from a pull pass
type PullResult struct {
	Count int
}

// PullChildren fetches the owner's live remote children and merges new
// ones into local storage. The merge is one-way: local wins on
// conflict, remote wins on absence. Tombstoned children are never
// re-materialized, and children that already exist locally only get
// their identity binding refreshed; their profile fields are left
// untouched.
func (m *Manager) PullChildren(ownerID string, opts PullOptions) (*PullResult, error) {
	if err := m.authorize(ownerID); err != nil {
		return nil, err
	}

	if err := m.remote.Ping(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoInternet, err)
	}

	if opts.RequirePushSuccess && !m.lastPushConfirmed() {
		return nil, ErrPushNotConfirmed
	}

	remoteChildren, err := m.remote.ListChildren(ownerID)
	if err != nil {
		if remoteErr, ok := err.(interface{ IsUnauthorized() bool }); ok && remoteErr.IsUnauthorized() {
			return nil, fmt.Errorf("%w: %v", ErrNotAuthorized, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrNoInternet, err)
	}

	tombstones := m.store.Tombstones()
	ids := m.store.IdentityMap()

	locals, err := m.store.GetChildren(ownerID)
	if err != nil {
		return nil, err
	}
	localSet := make(map[string]bool, len(locals))
	for _, child := range locals {
		localSet[child.LocalID] = true
	}

	result := &PullResult{}
	for _, rc := range remoteChildren {
		deleted, err := tombstones.IsDeleted(ownerID, rc.LocalChildID)
		if err != nil {
			return result, err
		}
		if deleted {
			// Deletion intent outlives whatever the remote still holds
			utils.Debugf("pull skipping tombstoned child %s", rc.LocalChildID)
			continue
		}

		if localSet[rc.LocalChildID] {
			if err := ids.Bind(ownerID, rc.LocalChildID, rc.ID); err != nil {
				return result, err
			}
			continue
		}

		if err := m.store.SeedChild(ownerID, rc.LocalChildID, rc.Name); err != nil {
			return result, err
		}
		if err := ids.Bind(ownerID, rc.LocalChildID, rc.ID); err != nil {
			return result, err
		}
		result.Count++
	}

	return result, nil
}
