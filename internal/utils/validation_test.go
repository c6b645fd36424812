package utils

import (
	"strings"
	"testing"
)

func TestValidateChildName(t *testing.T) {
	valid := []string{"Mia", "Leo B", strings.Repeat("a", 64)}
	for _, name := range valid {
		if err := ValidateChildName(name); err != nil {
			t.Errorf("Expected %q valid, got %v", name, err)
		}
	}

	invalid := []string{"", "   ", strings.Repeat("a", 65)}
	for _, name := range invalid {
		if err := ValidateChildName(name); err == nil {
			t.Errorf("Expected %q invalid", name)
		}
	}
}

func TestValidateScore(t *testing.T) {
	for _, score := range []int{0, 50, 100} {
		if err := ValidateScore(score); err != nil {
			t.Errorf("Expected score %d valid, got %v", score, err)
		}
	}
	for _, score := range []int{-1, 101} {
		if err := ValidateScore(score); err == nil {
			t.Errorf("Expected score %d invalid", score)
		}
	}
}

func TestValidateProgressStatus(t *testing.T) {
	for _, status := range []string{"not_started", "in_progress", "completed"} {
		if err := ValidateProgressStatus(status); err != nil {
			t.Errorf("Expected status %q valid, got %v", status, err)
		}
	}
	for _, status := range []string{"", "done", "COMPLETED"} {
		if err := ValidateProgressStatus(status); err == nil {
			t.Errorf("Expected status %q invalid", status)
		}
	}
}

func TestValidateEventType(t *testing.T) {
	if err := ValidateEventType("lesson_completed"); err != nil {
		t.Errorf("Expected valid, got %v", err)
	}
	if err := ValidateEventType("  "); err == nil {
		t.Error("Expected blank event type invalid")
	}
}
