package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kidsync/remote"
)

const (
	testToken = "secret-token"
	testOwner = "parent-1"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, NewClient(server.URL, testToken)
}

func requireAuth(t *testing.T, r *http.Request) {
	t.Helper()
	if got := r.Header.Get("Authorization"); got != "Bearer "+testToken {
		t.Errorf("Expected bearer auth header, got %q", got)
	}
}

func TestCreateChild(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		requireAuth(t, r)
		if r.Method != "POST" || r.URL.Path != "/children" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var req createChildRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req.OwnerID != testOwner || req.LocalChildID != "c1" || req.Name != "Mia" {
			t.Errorf("Unexpected request body: %+v", req)
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(remote.RemoteChild{
			ID:           "srv-1",
			OwnerID:      req.OwnerID,
			LocalChildID: req.LocalChildID,
			Name:         req.Name,
			CreatedAt:    time.Now(),
		})
	})

	id, err := client.CreateChild(testOwner, "c1", "Mia")
	if err != nil {
		t.Fatalf("CreateChild failed: %v", err)
	}
	if id != "srv-1" {
		t.Errorf("Expected id srv-1, got %s", id)
	}
}

// A backend that dedupes a retried create answers 200 with the
// existing row instead of 201.
func TestCreateChildDeduped(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(remote.RemoteChild{ID: "srv-existing"})
	})

	id, err := client.CreateChild(testOwner, "c1", "Mia")
	if err != nil {
		t.Fatalf("CreateChild failed: %v", err)
	}
	if id != "srv-existing" {
		t.Errorf("Expected the existing id, got %s", id)
	}
}

func TestCreateChildServerError(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.CreateChild(testOwner, "c1", "Mia")
	if err == nil {
		t.Fatal("Expected an error")
	}
	remoteErr, ok := err.(*remote.RemoteError)
	if !ok {
		t.Fatalf("Expected *remote.RemoteError, got %T", err)
	}
	if !remoteErr.IsServerError() {
		t.Errorf("Expected a server error, got status %d", remoteErr.StatusCode)
	}
}

func TestListChildren(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		requireAuth(t, r)
		if r.URL.Path != "/children" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("parent_id"); got != testOwner {
			t.Errorf("Expected parent_id query %s, got %s", testOwner, got)
		}

		json.NewEncoder(w).Encode([]remote.RemoteChild{
			{ID: "srv-1", OwnerID: testOwner, LocalChildID: "c1", Name: "Mia"},
			{ID: "srv-2", OwnerID: testOwner, LocalChildID: "c2", Name: "Leo"},
		})
	})

	children, err := client.ListChildren(testOwner)
	if err != nil {
		t.Fatalf("ListChildren failed: %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("Expected 2 children, got %d", len(children))
	}
	if children[0].LocalChildID != "c1" || children[1].Name != "Leo" {
		t.Errorf("Unexpected children: %+v", children)
	}
}

func TestListChildrenUnauthorized(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	})

	_, err := client.ListChildren(testOwner)
	remoteErr, ok := err.(*remote.RemoteError)
	if !ok {
		t.Fatalf("Expected *remote.RemoteError, got %T", err)
	}
	if !remoteErr.IsUnauthorized() {
		t.Errorf("Expected an unauthorized error, got status %d", remoteErr.StatusCode)
	}
}

func TestSoftDeleteChild(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		requireAuth(t, r)
		if r.Method != "PATCH" || r.URL.Path != "/children/srv-1" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var req softDeleteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req.OwnerID != testOwner {
			t.Errorf("Expected owner %s, got %s", testOwner, req.OwnerID)
		}
		if req.DeletedAt.IsZero() {
			t.Error("Expected a deleted_at marker")
		}

		w.WriteHeader(http.StatusNoContent)
	})

	if err := client.SoftDeleteChild(testOwner, "srv-1"); err != nil {
		t.Fatalf("SoftDeleteChild failed: %v", err)
	}
}

func TestSoftDeleteChildNotFound(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such child", http.StatusNotFound)
	})

	err := client.SoftDeleteChild(testOwner, "srv-gone")
	remoteErr, ok := err.(*remote.RemoteError)
	if !ok {
		t.Fatalf("Expected *remote.RemoteError, got %T", err)
	}
	if !remoteErr.IsNotFound() {
		t.Errorf("Expected a not-found error, got status %d", remoteErr.StatusCode)
	}
}

func TestUpsertProgress(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		requireAuth(t, r)
		if r.Method != "PUT" || r.URL.Path != "/progress/p1" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var rec remote.ProgressRecord
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if rec.OwnerID != testOwner || rec.ChildID != "srv-1" || rec.Score != 90 {
			t.Errorf("Unexpected record: %+v", rec)
		}

		w.WriteHeader(http.StatusOK)
	})

	rec := remote.ProgressRecord{ID: "p1", ChildID: "srv-1", PackID: "animals", Status: "completed", Score: 90}
	if err := client.UpsertProgress(testOwner, rec); err != nil {
		t.Fatalf("UpsertProgress failed: %v", err)
	}
}

func TestInsertEvent(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		requireAuth(t, r)
		if r.Method != "POST" || r.URL.Path != "/events" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var rec remote.EventRecord
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if rec.OwnerID != testOwner || rec.EventType != "lesson_completed" {
			t.Errorf("Unexpected record: %+v", rec)
		}
		if string(rec.Payload) != `{"stars":3}` {
			t.Errorf("Unexpected payload: %s", rec.Payload)
		}

		w.WriteHeader(http.StatusCreated)
	})

	rec := remote.EventRecord{
		ID:        "e1",
		ChildID:   "srv-1",
		EventType: "lesson_completed",
		Payload:   json.RawMessage(`{"stars":3}`),
	}
	if err := client.InsertEvent(testOwner, rec); err != nil {
		t.Fatalf("InsertEvent failed: %v", err)
	}
}

func TestPing(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := client.Ping(); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
}

func TestPingUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	client := NewClient(server.URL, testToken)
	server.Close()

	err := client.Ping()
	if err == nil {
		t.Fatal("Expected an error when the backend is unreachable")
	}
	remoteErr, ok := err.(*remote.RemoteError)
	if !ok {
		t.Fatalf("Expected *remote.RemoteError, got %T", err)
	}
	if remoteErr.StatusCode != 0 {
		t.Errorf("Expected no status code for a transport error, got %d", remoteErr.StatusCode)
	}
}
