package remote

import (
	"encoding/json"
	"time"
)

// RemoteChild is the backend's representation of a child profile. The
// backend generates ID; LocalChildID carries the device-generated id
// and is the join key for reconciliation.
type RemoteChild struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"parent_id"`
	LocalChildID string    `json:"local_child_id"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// ProgressRecord is a learning-progress row as the backend stores it.
// ChildID is the remote child id, already resolved through the
// identity map.
type ProgressRecord struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"parent_id"`
	ChildID     string    `json:"child_id"`
	PackID      string    `json:"pack_id"`
	TrackID     string    `json:"track_id"`
	LessonID    string    `json:"lesson_id"`
	Status      string    `json:"status"`
	Score       int       `json:"score"`
	Attempts    int       `json:"attempts"`
	DurationSec int       `json:"duration_sec"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EventRecord is a telemetry event as the backend stores it
type EventRecord struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"parent_id"`
	ChildID   string          `json:"child_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// API is the authenticated remote backend, table-oriented. Children are
// soft-deleted (deleted_at timestamp), never removed; ListChildren only
// returns live rows.
type API interface {
	// CreateChild inserts a child row and returns the server-generated id.
	// The backend may enforce (parent_id, local_child_id) uniqueness and
	// return the existing id for a repeated create.
	CreateChild(ownerID, localChildID, name string) (string, error)

	// ListChildren returns the owner's children where deleted_at is null
	ListChildren(ownerID string) ([]RemoteChild, error)

	// SoftDeleteChild sets deleted_at on a child, scoped to the owner
	SoftDeleteChild(ownerID, remoteChildID string) error

	// UpsertProgress writes a progress row keyed by its id, last write wins
	UpsertProgress(ownerID string, rec ProgressRecord) error

	// InsertEvent appends a telemetry event
	InsertEvent(ownerID string, rec EventRecord) error

	// Ping checks reachability with a lightweight request
	Ping() error
}
