package sync

import (
	"errors"
	"path/filepath"
	"testing"

	"kidsync/remote"
	"kidsync/store"
)

const testOwner = "parent-1"

// staticSession implements Session for tests
type staticSession struct {
	owner string
}

func (s *staticSession) CurrentOwnerID() (string, bool) {
	return s.owner, s.owner != ""
}

// createTestManager creates a manager over a temp store and mock remote
func createTestManager(t *testing.T) (*Manager, *store.Store, *remote.Mock) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	mock := remote.NewMock()
	m := NewManager(st, mock, &staticSession{owner: testOwner})
	return m, st, mock
}

func addLocalChild(t *testing.T, st *store.Store, localID, name string) {
	t.Helper()
	if err := st.AddChild(store.Child{LocalID: localID, OwnerID: testOwner, Name: name}); err != nil {
		t.Fatalf("AddChild failed: %v", err)
	}
}

// Scenario: a freshly created local child gets exactly one remote
// counterpart and one identity binding after provisioning.
func TestProvisionCreatesRemoteChildAndBinding(t *testing.T) {
	m, st, mock := createTestManager(t)
	addLocalChild(t, st, "c1", "Mia")

	provisioned, err := m.ProvisionChildren(testOwner)
	if err != nil {
		t.Fatalf("ProvisionChildren failed: %v", err)
	}
	if provisioned != 1 {
		t.Errorf("Expected 1 provisioned child, got %d", provisioned)
	}

	children := mock.Children()
	if len(children) != 1 {
		t.Fatalf("Expected 1 remote child, got %d", len(children))
	}
	if children[0].LocalChildID != "c1" || children[0].Name != "Mia" {
		t.Errorf("Unexpected remote child: %+v", children[0])
	}

	remoteID, found, err := st.IdentityMap().Resolve("c1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !found {
		t.Fatal("Expected identity binding after provisioning")
	}
	if remoteID != children[0].ID {
		t.Errorf("Binding %s does not match remote id %s", remoteID, children[0].ID)
	}
}

// Calling ensure again once a binding is persisted must not create a
// second remote child; it returns the same remote id.
func TestEnsureIdempotentUnderRetry(t *testing.T) {
	m, st, mock := createTestManager(t)
	addLocalChild(t, st, "c1", "Mia")

	first, err := m.Resolver().Ensure(testOwner, "c1")
	if err != nil {
		t.Fatalf("First Ensure failed: %v", err)
	}

	second, err := m.Resolver().Ensure(testOwner, "c1")
	if err != nil {
		t.Fatalf("Second Ensure failed: %v", err)
	}

	if first != second {
		t.Errorf("Expected same remote id, got %s and %s", first, second)
	}
	if mock.CreateCalls != 1 {
		t.Errorf("Expected exactly 1 create call, got %d", mock.CreateCalls)
	}
	if len(mock.Children()) != 1 {
		t.Errorf("Expected exactly 1 remote child, got %d", len(mock.Children()))
	}
}

func TestEnsureFailureDoesNotBind(t *testing.T) {
	m, st, mock := createTestManager(t)
	addLocalChild(t, st, "c1", "Mia")
	mock.FailCreates = 1

	_, err := m.Resolver().Ensure(testOwner, "c1")
	if !errors.Is(err, ErrIdentityUnresolved) {
		t.Fatalf("Expected ErrIdentityUnresolved, got %v", err)
	}

	_, found, _ := st.IdentityMap().Resolve("c1")
	if found {
		t.Error("A failed create must not leave a binding")
	}

	// Retry succeeds and binds
	remoteID, err := m.Resolver().Ensure(testOwner, "c1")
	if err != nil {
		t.Fatalf("Retry Ensure failed: %v", err)
	}
	if remoteID == "" {
		t.Error("Expected a remote id on retry")
	}
}

func TestProvisionSkipsFailingChild(t *testing.T) {
	m, st, mock := createTestManager(t)
	addLocalChild(t, st, "c1", "Mia")
	addLocalChild(t, st, "c2", "Leo")
	mock.FailCreates = 1

	provisioned, err := m.ProvisionChildren(testOwner)
	if err != nil {
		t.Fatalf("ProvisionChildren failed: %v", err)
	}

	// One create fails, the other child still goes through
	if provisioned != 1 {
		t.Errorf("Expected 1 provisioned child despite failure, got %d", provisioned)
	}
}

func TestProvisionSkipsTombstonedChildren(t *testing.T) {
	m, st, mock := createTestManager(t)
	addLocalChild(t, st, "c1", "Mia")
	if err := st.Tombstones().MarkDeleted(testOwner, "c1"); err != nil {
		t.Fatalf("MarkDeleted failed: %v", err)
	}

	provisioned, err := m.ProvisionChildren(testOwner)
	if err != nil {
		t.Fatalf("ProvisionChildren failed: %v", err)
	}
	if provisioned != 0 {
		t.Errorf("Expected no provisioning for tombstoned child, got %d", provisioned)
	}
	if mock.CreateCalls != 0 {
		t.Errorf("Expected no create calls, got %d", mock.CreateCalls)
	}
}

func TestProvisionAlreadyBoundIsNoop(t *testing.T) {
	m, st, mock := createTestManager(t)
	addLocalChild(t, st, "c1", "Mia")
	if err := st.IdentityMap().Bind(testOwner, "c1", "srv-existing"); err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	provisioned, err := m.ProvisionChildren(testOwner)
	if err != nil {
		t.Fatalf("ProvisionChildren failed: %v", err)
	}
	if provisioned != 0 {
		t.Errorf("Expected no provisioning for bound child, got %d", provisioned)
	}
	if mock.CreateCalls != 0 {
		t.Errorf("Expected no create calls, got %d", mock.CreateCalls)
	}
}

func TestSyncAllNotAuthorized(t *testing.T) {
	m, _, _ := createTestManager(t)

	_, err := m.SyncAll("someone-else")
	if !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("Expected ErrNotAuthorized for mismatched owner, got %v", err)
	}
}

func TestSyncAllNoSession(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	m := NewManager(st, remote.NewMock(), &staticSession{})

	_, err = m.SyncAll(testOwner)
	if !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("Expected ErrNotAuthorized without a session, got %v", err)
	}
}

func TestSyncCycleFullSequence(t *testing.T) {
	m, st, mock := createTestManager(t)

	// A new child with pending progress, a tombstoned child with a
	// remote counterpart, and a child that only exists remotely.
	addLocalChild(t, st, "c1", "Mia")
	if err := st.UpsertProgress(store.ProgressRow{ID: "p1", OwnerID: testOwner, LocalChildID: "c1", PackID: "animals", TrackID: "t1", LessonID: "l1", Status: "completed", Score: 90}); err != nil {
		t.Fatalf("UpsertProgress failed: %v", err)
	}

	deletedID, _ := mock.CreateChild(testOwner, "c2", "Leo")
	if err := st.IdentityMap().Bind(testOwner, "c2", deletedID); err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	if err := st.Tombstones().MarkDeleted(testOwner, "c2"); err != nil {
		t.Fatalf("MarkDeleted failed: %v", err)
	}

	if _, err := mock.CreateChild(testOwner, "c3", "Zoe"); err != nil {
		t.Fatalf("CreateChild failed: %v", err)
	}

	result, err := m.SyncCycle(testOwner)
	if err != nil {
		t.Fatalf("SyncCycle failed: %v", err)
	}

	if result.Provisioned != 1 {
		t.Errorf("Expected 1 provisioned, got %d", result.Provisioned)
	}
	if result.DeletionsPushed != 1 {
		t.Errorf("Expected 1 deletion pushed, got %d", result.DeletionsPushed)
	}
	if result.SyncedProgress != 1 {
		t.Errorf("Expected 1 progress row synced, got %d", result.SyncedProgress)
	}
	if result.Pulled != 1 {
		t.Errorf("Expected 1 pulled child, got %d", result.Pulled)
	}

	// c2 must be soft-deleted remotely and fully retired locally
	_, deleted, ok := mock.Child(deletedID)
	if !ok || !deleted {
		t.Error("Expected c2 to be soft-deleted remotely")
	}
	if tombstoned, _ := st.Tombstones().IsDeleted(testOwner, "c2"); tombstoned {
		t.Error("Expected c2's tombstone to be cleared")
	}

	// c3 must now exist locally with a binding
	_, found, _ := st.GetChild(testOwner, "c3")
	if !found {
		t.Error("Expected c3 to be seeded locally by the pull")
	}
}
