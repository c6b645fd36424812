package store

import "fmt"

// StoreError represents errors from local store operations
type StoreError struct {
	Op      string // Operation that failed
	Err     error  // Underlying error
	OwnerID string // Optional: owner id if relevant
	ChildID string // Optional: local child id if relevant
}

func (e *StoreError) Error() string {
	if e.OwnerID != "" && e.ChildID != "" {
		return fmt.Sprintf("store %s failed for child %s of owner %s: %v", e.Op, e.ChildID, e.OwnerID, e.Err)
	} else if e.OwnerID != "" {
		return fmt.Sprintf("store %s failed for owner %s: %v", e.Op, e.OwnerID, e.Err)
	} else if e.ChildID != "" {
		return fmt.Sprintf("store %s failed for child %s: %v", e.Op, e.ChildID, e.Err)
	}
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
