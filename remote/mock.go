package remote

// This file contains the in-memory mock remote used across sync tests.
// It lives in the non-test tree so other packages' tests can import it.

import (
	"fmt"
	"sync"
	"time"
)

// mockChild is a stored child row including its soft-delete marker
type mockChild struct {
	RemoteChild
	DeletedAt *time.Time
}

// Mock implements API in memory for testing. It enforces per-owner
// local_child_id uniqueness on create, mirroring the unique index the
// real backend keeps on (parent_id, local_child_id).
type Mock struct {
	mu sync.Mutex

	children map[string]*mockChild     // remote id -> child
	progress map[string]ProgressRecord // row id -> record
	events   []EventRecord

	nextID int

	// Failure injection: a positive count fails that many calls before
	// succeeding; -1 fails forever.
	FailCreates  int
	FailDeletes  int
	FailUpserts  int
	FailInserts  int
	FailLists    int
	Offline      bool
	Unauthorized bool

	// Call counters
	CreateCalls int
	DeleteCalls int
	UpsertCalls int
	InsertCalls int
	ListCalls   int
}

// NewMock creates an empty mock remote
func NewMock() *Mock {
	return &Mock{
		children: make(map[string]*mockChild),
		progress: make(map[string]ProgressRecord),
	}
}

func (m *Mock) consumeFailure(counter *int, op string, status int) error {
	if *counter == 0 {
		return nil
	}
	if *counter > 0 {
		*counter--
	}
	return NewRemoteError(op, status, "injected failure")
}

func (m *Mock) checkAuth(op string) error {
	if m.Offline {
		return NewRemoteError(op, 0, "connection refused")
	}
	if m.Unauthorized {
		return NewRemoteError(op, 401, "invalid token")
	}
	return nil
}

func (m *Mock) CreateChild(ownerID, localChildID, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls++
	if err := m.checkAuth("CreateChild"); err != nil {
		return "", err
	}
	if err := m.consumeFailure(&m.FailCreates, "CreateChild", 500); err != nil {
		return "", err
	}

	// Unique index on (parent_id, local_child_id): a repeated create
	// returns the existing live row's id instead of duplicating.
	for _, child := range m.children {
		if child.OwnerID == ownerID && child.LocalChildID == localChildID && child.DeletedAt == nil {
			return child.ID, nil
		}
	}

	m.nextID++
	id := fmt.Sprintf("srv-%d", m.nextID)
	m.children[id] = &mockChild{
		RemoteChild: RemoteChild{
			ID:           id,
			OwnerID:      ownerID,
			LocalChildID: localChildID,
			Name:         name,
			CreatedAt:    time.Now(),
		},
	}
	return id, nil
}

func (m *Mock) ListChildren(ownerID string) ([]RemoteChild, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ListCalls++
	if err := m.checkAuth("ListChildren"); err != nil {
		return nil, err
	}
	if err := m.consumeFailure(&m.FailLists, "ListChildren", 500); err != nil {
		return nil, err
	}

	var result []RemoteChild
	for _, child := range m.children {
		if child.OwnerID == ownerID && child.DeletedAt == nil {
			result = append(result, child.RemoteChild)
		}
	}
	return result, nil
}

func (m *Mock) SoftDeleteChild(ownerID, remoteChildID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls++
	if err := m.checkAuth("SoftDeleteChild"); err != nil {
		return err
	}
	if err := m.consumeFailure(&m.FailDeletes, "SoftDeleteChild", 500); err != nil {
		return err
	}

	child, ok := m.children[remoteChildID]
	if !ok || child.OwnerID != ownerID {
		return NewRemoteError("SoftDeleteChild", 404, "child not found").WithChildID(remoteChildID)
	}

	now := time.Now()
	child.DeletedAt = &now
	return nil
}

func (m *Mock) UpsertProgress(ownerID string, rec ProgressRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpsertCalls++
	if err := m.checkAuth("UpsertProgress"); err != nil {
		return err
	}
	if err := m.consumeFailure(&m.FailUpserts, "UpsertProgress", 500); err != nil {
		return err
	}

	rec.OwnerID = ownerID
	m.progress[rec.ID] = rec
	return nil
}

func (m *Mock) InsertEvent(ownerID string, rec EventRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InsertCalls++
	if err := m.checkAuth("InsertEvent"); err != nil {
		return err
	}
	if err := m.consumeFailure(&m.FailInserts, "InsertEvent", 500); err != nil {
		return err
	}

	rec.OwnerID = ownerID
	m.events = append(m.events, rec)
	return nil
}

func (m *Mock) Ping() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Offline {
		return NewRemoteError("Ping", 0, "connection refused")
	}
	return nil
}

// Children returns all stored children including soft-deleted ones
func (m *Mock) Children() []RemoteChild {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []RemoteChild
	for _, child := range m.children {
		result = append(result, child.RemoteChild)
	}
	return result
}

// Child looks up a stored child by remote id; deleted reports whether
// it has been soft-deleted.
func (m *Mock) Child(remoteChildID string) (child RemoteChild, deleted bool, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, found := m.children[remoteChildID]
	if !found {
		return RemoteChild{}, false, false
	}
	return stored.RemoteChild, stored.DeletedAt != nil, true
}

// ReviveChild clears the soft-delete marker, simulating a backend whose
// deletion did not land. Used by resurrection tests.
func (m *Mock) ReviveChild(remoteChildID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if child, ok := m.children[remoteChildID]; ok {
		child.DeletedAt = nil
	}
}

// Progress returns the stored progress record for a row id
func (m *Mock) Progress(id string) (ProgressRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.progress[id]
	return rec, ok
}

// Events returns all stored events
func (m *Mock) Events() []EventRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]EventRecord(nil), m.events...)
}
