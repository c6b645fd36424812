package sync

import (
	"fmt"

	"kidsync/remote"
	"kidsync/store"
)

// Resolver implements identity "ensure": resolve the remote id for a
// local child, provisioning a remote counterpart when none is bound.
// It is the only path through which synchronizers other than the
// deletion pass mutate the identity map.
type Resolver struct {
	store  *store.Store
	ids    *store.IdentityMap
	remote remote.API
}

// NewResolver creates a resolver over the given store and remote
func NewResolver(st *store.Store, api remote.API) *Resolver {
	return &Resolver{
		store:  st,
		ids:    st.IdentityMap(),
		remote: api,
	}
}

// Ensure returns the remote child id for a local child, creating the
// remote entity and binding it if absent. Once a binding is persisted,
// repeated calls return the same remote id without touching the
// network. A failed create returns ErrIdentityUnresolved; the caller
// skips dependent work for this child this cycle.
func (r *Resolver) Ensure(ownerID, localChildID string) (string, error) {
	remoteID, found, err := r.ids.Resolve(localChildID)
	if err != nil {
		return "", err
	}
	if found {
		return remoteID, nil
	}

	// The local profile supplies the display name for the remote row.
	// A missing profile means the child is gone locally (deleted before
	// ever being provisioned); nothing to create.
	child, exists, err := r.store.GetChild(ownerID, localChildID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("%w: no local profile for child %s", ErrIdentityUnresolved, localChildID)
	}

	remoteID, err = r.remote.CreateChild(ownerID, localChildID, child.Name)
	if err != nil {
		return "", fmt.Errorf("%w: create child %s: %v", ErrIdentityUnresolved, localChildID, err)
	}

	if err := r.ids.Bind(ownerID, localChildID, remoteID); err != nil {
		return "", err
	}

	return remoteID, nil
}
