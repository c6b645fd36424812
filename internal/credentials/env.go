package credentials

import (
	"os"

	"github.com/joho/godotenv"
)

// Environment variable names for development setups
const (
	EnvOwnerID  = "KIDSYNC_OWNER_ID"
	EnvAPIToken = "KIDSYNC_API_TOKEN"
)

// LoadDotEnv loads a .env file from the working directory if present.
// Missing files are fine; real environments set variables directly.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// EnvOwner retrieves the owner id from the environment
func EnvOwner() string {
	return os.Getenv(EnvOwnerID)
}

// EnvToken retrieves the API token from the environment
func EnvToken() string {
	return os.Getenv(EnvAPIToken)
}

// HasEnvCredentials checks if both owner id and token are set in the environment
func HasEnvCredentials() bool {
	return EnvOwner() != "" && EnvToken() != ""
}
