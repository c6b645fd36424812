package credentials

import (
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name for all kidsync keyring entries
	KeyringService = "kidsync"

	// ownerAccount is the keyring account that records the signed-in owner id
	ownerAccount = "owner"
)

// SetToken stores an owner's API token in the OS keyring
func SetToken(ownerID, token string) error {
	if ownerID == "" {
		return fmt.Errorf("owner id cannot be empty")
	}
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}

	if err := keyring.Set(KeyringService, ownerID, token); err != nil {
		return fmt.Errorf("failed to store token in keyring: %w", err)
	}
	return nil
}

// GetToken retrieves an owner's API token from the OS keyring
func GetToken(ownerID string) (string, error) {
	if ownerID == "" {
		return "", fmt.Errorf("owner id cannot be empty")
	}

	token, err := keyring.Get(KeyringService, ownerID)
	if err != nil {
		return "", fmt.Errorf("failed to read token from keyring: %w", err)
	}
	return token, nil
}

// DeleteToken removes an owner's API token from the OS keyring
func DeleteToken(ownerID string) error {
	if ownerID == "" {
		return fmt.Errorf("owner id cannot be empty")
	}

	if err := keyring.Delete(KeyringService, ownerID); err != nil {
		return fmt.Errorf("failed to delete token from keyring: %w", err)
	}
	return nil
}

// SetOwner records the signed-in owner id in the keyring
func SetOwner(ownerID string) error {
	if ownerID == "" {
		return fmt.Errorf("owner id cannot be empty")
	}
	if err := keyring.Set(KeyringService, ownerAccount, ownerID); err != nil {
		return fmt.Errorf("failed to store owner in keyring: %w", err)
	}
	return nil
}

// GetOwner returns the recorded signed-in owner id, empty when none
func GetOwner() string {
	ownerID, err := keyring.Get(KeyringService, ownerAccount)
	if err != nil {
		return ""
	}
	return ownerID
}

// ClearOwner removes the recorded owner id
func ClearOwner() error {
	if err := keyring.Delete(KeyringService, ownerAccount); err != nil {
		return fmt.Errorf("failed to clear owner from keyring: %w", err)
	}
	return nil
}

// IsKeyringAvailable checks whether the OS keyring is usable
func IsKeyringAvailable() bool {
	probe := "kidsync-keyring-probe"
	if err := keyring.Set(KeyringService, probe, "ok"); err != nil {
		return false
	}
	_ = keyring.Delete(KeyringService, probe)
	return true
}
