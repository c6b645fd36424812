package sync

import (
	"testing"

	"kidsync/store"
)

// provisionChild creates a local child, pushes it remote and returns
// the remote id.
func provisionChild(t *testing.T, m *Manager, st *store.Store, localID, name string) string {
	t.Helper()
	addLocalChild(t, st, localID, name)
	remoteID, err := m.Resolver().Ensure(testOwner, localID)
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	return remoteID
}

// tombstoneChild mimics the local delete flow: tombstone first, then
// remove the profile row.
func tombstoneChild(t *testing.T, st *store.Store, localID string) {
	t.Helper()
	if err := st.Tombstones().MarkDeleted(testOwner, localID); err != nil {
		t.Fatalf("MarkDeleted failed: %v", err)
	}
	if err := st.RemoveChild(testOwner, localID); err != nil {
		t.Fatalf("RemoveChild failed: %v", err)
	}
}

func TestPushDeletionsSoftDeletesAndRetires(t *testing.T) {
	m, st, mock := createTestManager(t)
	remoteID := provisionChild(t, m, st, "c1", "Mia")
	addProgress(t, st, "p1", "c1")
	tombstoneChild(t, st, "c1")

	confirmed, err := m.PushDeletions(testOwner)
	if err != nil {
		t.Fatalf("PushDeletions failed: %v", err)
	}
	if confirmed != 1 {
		t.Errorf("Expected 1 confirmed deletion, got %d", confirmed)
	}

	_, deleted, ok := mock.Child(remoteID)
	if !ok || !deleted {
		t.Error("Expected the remote child soft-deleted")
	}

	if _, bound, _ := st.IdentityMap().Resolve("c1"); bound {
		t.Error("Expected the identity binding removed")
	}
	if tombstoned, _ := st.Tombstones().IsDeleted(testOwner, "c1"); tombstoned {
		t.Error("Expected the tombstone cleared after remote confirmation")
	}
	if pending, _ := st.UnsyncedProgress(testOwner); len(pending) != 0 {
		t.Errorf("Expected the child's outbox rows dropped, got %d", len(pending))
	}
}

// Scenario: the soft-delete fails once. The tombstone and the binding
// must survive untouched so the next pass can retry, and the retry
// must converge.
func TestPushDeletionsFailureKeepsTombstone(t *testing.T) {
	m, st, mock := createTestManager(t)
	remoteID := provisionChild(t, m, st, "c1", "Mia")
	tombstoneChild(t, st, "c1")
	mock.FailDeletes = 1

	confirmed, err := m.PushDeletions(testOwner)
	if err != nil {
		t.Fatalf("PushDeletions failed: %v", err)
	}
	if confirmed != 0 {
		t.Errorf("Expected 0 confirmed after a failed soft-delete, got %d", confirmed)
	}

	if tombstoned, _ := st.Tombstones().IsDeleted(testOwner, "c1"); !tombstoned {
		t.Fatal("A tombstone must never be cleared before the remote confirms")
	}
	if _, bound, _ := st.IdentityMap().Resolve("c1"); !bound {
		t.Fatal("The binding must survive a failed soft-delete")
	}

	// Next pass retries and converges
	confirmed, err = m.PushDeletions(testOwner)
	if err != nil {
		t.Fatalf("Retry PushDeletions failed: %v", err)
	}
	if confirmed != 1 {
		t.Errorf("Expected the retry to confirm the deletion, got %d", confirmed)
	}
	if _, deleted, _ := mock.Child(remoteID); !deleted {
		t.Error("Expected the remote child soft-deleted on retry")
	}
	if tombstoned, _ := st.Tombstones().IsDeleted(testOwner, "c1"); tombstoned {
		t.Error("Expected the tombstone cleared after the retry")
	}
}

// A crash between the remote soft-delete landing and the tombstone
// being cleared leaves the tombstone behind. Re-running the pass must
// converge: the remote 404s (already deleted), which counts as
// confirmation.
func TestPushDeletionsCrashResumeConverges(t *testing.T) {
	m, st, mock := createTestManager(t)
	remoteID := provisionChild(t, m, st, "c1", "Mia")
	tombstoneChild(t, st, "c1")

	// Simulate the partial pass: the soft-delete landed remotely but the
	// local cleanup never ran.
	if err := mock.SoftDeleteChild(testOwner, remoteID); err != nil {
		t.Fatalf("SoftDeleteChild failed: %v", err)
	}

	confirmed, err := m.PushDeletions(testOwner)
	if err != nil {
		t.Fatalf("PushDeletions failed: %v", err)
	}
	if confirmed != 1 {
		t.Errorf("Expected an already-deleted child to count as confirmed, got %d", confirmed)
	}
	if tombstoned, _ := st.Tombstones().IsDeleted(testOwner, "c1"); tombstoned {
		t.Error("Expected the tombstone cleared on resume")
	}
}

func TestPushDeletionsNeverProvisioned(t *testing.T) {
	m, st, mock := createTestManager(t)
	addLocalChild(t, st, "c1", "Mia")
	addProgress(t, st, "p1", "c1")
	addEvent(t, st, "e1", "c1")
	tombstoneChild(t, st, "c1")

	confirmed, err := m.PushDeletions(testOwner)
	if err != nil {
		t.Fatalf("PushDeletions failed: %v", err)
	}

	// Nothing remote to delete, so nothing is confirmed remotely, but
	// the tombstone retires and the orphaned outbox rows are dropped.
	if confirmed != 0 {
		t.Errorf("Expected 0 remote confirmations, got %d", confirmed)
	}
	if mock.DeleteCalls != 0 {
		t.Errorf("Expected no remote calls, got %d", mock.DeleteCalls)
	}
	if tombstoned, _ := st.Tombstones().IsDeleted(testOwner, "c1"); tombstoned {
		t.Error("Expected the tombstone retired locally")
	}
	if pending, _ := st.UnsyncedProgress(testOwner); len(pending) != 0 {
		t.Errorf("Expected progress rows dropped, got %d", len(pending))
	}
	if pending, _ := st.UnsyncedEvents(testOwner); len(pending) != 0 {
		t.Errorf("Expected event rows dropped, got %d", len(pending))
	}
}

func TestPushDeletionsOneFailureDoesNotBlockOthers(t *testing.T) {
	m, st, mock := createTestManager(t)
	provisionChild(t, m, st, "c1", "Mia")
	provisionChild(t, m, st, "c2", "Leo")
	tombstoneChild(t, st, "c1")
	tombstoneChild(t, st, "c2")
	mock.FailDeletes = 1

	confirmed, err := m.PushDeletions(testOwner)
	if err != nil {
		t.Fatalf("PushDeletions failed: %v", err)
	}
	if confirmed != 1 {
		t.Errorf("Expected 1 confirmed despite one failure, got %d", confirmed)
	}

	remaining, err := st.Tombstones().AllDeleted(testOwner)
	if err != nil {
		t.Fatalf("AllDeleted failed: %v", err)
	}
	if len(remaining) != 1 {
		t.Errorf("Expected 1 tombstone remaining, got %d", len(remaining))
	}
}
