package auth

import "time"

// CredentialStore persists the long-lived authorization credential and the
// cached access token between runs. Implementations do not need to be safe
// for concurrent use; TokenManager serializes all access.
type CredentialStore interface {
	// Credential returns the stored authorization credential, or "" when none
	// is configured.
	Credential() (string, error)

	// SetCredential replaces the stored authorization credential.
	SetCredential(cred string) error

	// AccessToken returns the cached access token and its absolute expiry.
	// ok is false when no token is cached.
	AccessToken() (token string, expiresAt time.Time, ok bool, err error)

	// SetAccessToken replaces the cached token and its expiry together.
	SetAccessToken(token string, expiresAt time.Time) error

	// ClearAccessToken drops the cached token so the next read refreshes.
	ClearAccessToken() error
}
