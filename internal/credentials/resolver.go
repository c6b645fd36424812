package credentials

// Source indicates where credentials were found
type Source string

const (
	SourceKeyring Source = "keyring"
	SourceEnv     Source = "env"
	SourceNone    Source = "none"
)

// Credentials represents the resolved owner identity and API token
type Credentials struct {
	OwnerID string
	Token   string
	Source  Source
}

// Resolve finds the signed-in owner and token using the priority order
// keyring > environment. Source is SourceNone when nothing usable was
// found; callers treat that as "not authenticated".
func Resolve() *Credentials {
	LoadDotEnv()

	// Priority 1: keyring-recorded owner with a stored token
	if ownerID := GetOwner(); ownerID != "" {
		if token, err := GetToken(ownerID); err == nil && token != "" {
			return &Credentials{
				OwnerID: ownerID,
				Token:   token,
				Source:  SourceKeyring,
			}
		}
	}

	// Priority 2: environment variables (dev setups, CI)
	if HasEnvCredentials() {
		return &Credentials{
			OwnerID: EnvOwner(),
			Token:   EnvToken(),
			Source:  SourceEnv,
		}
	}

	return &Credentials{Source: SourceNone}
}
