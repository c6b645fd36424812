package utils

import (
	"fmt"
	"strings"
)

// Progress statuses accepted by the outbox
var progressStatuses = []string{"not_started", "in_progress", "completed"}

// ValidateChildName checks that a child display name is usable
func ValidateChildName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("child name cannot be empty")
	}
	if len(trimmed) > 64 {
		return fmt.Errorf("child name too long (max 64 characters)")
	}
	return nil
}

// ValidateScore checks that a lesson score is within 0-100
func ValidateScore(score int) error {
	if score < 0 || score > 100 {
		return fmt.Errorf("score must be between 0-100, got %d", score)
	}
	return nil
}

// ValidateProgressStatus checks the status against the known set
func ValidateProgressStatus(status string) error {
	for _, s := range progressStatuses {
		if s == status {
			return nil
		}
	}
	return fmt.Errorf("invalid status %q: expected one of %s", status, strings.Join(progressStatuses, ", "))
}

// ValidateEventType checks that an event type is usable
func ValidateEventType(eventType string) error {
	if strings.TrimSpace(eventType) == "" {
		return fmt.Errorf("event type cannot be empty")
	}
	return nil
}
