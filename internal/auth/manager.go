package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"PsyAssist/internal/gigachat"
)

const (
	// refreshBuffer is the safety margin before expiry at which a token is
	// treated as needing renewal.
	refreshBuffer = 5 * time.Minute

	// defaultTokenTTL is used when the token endpoint gives no expiry hint.
	defaultTokenTTL = 30 * time.Minute
)

// ErrMissingCredential means no authorization credential is configured.
var ErrMissingCredential = errors.New("authorization credential is not configured")

// TokenTransport performs the network exchange that turns an authorization
// credential into a fresh access token.
type TokenTransport interface {
	FetchToken(ctx context.Context, credential string) (gigachat.TokenResponse, error)
}

// TokenManager owns token validity decisions and serializes refreshes. Token
// state is the one resource shared across sessions, so every operation runs
// inside the manager's mutex: N concurrent ValidToken calls during a refresh
// window produce exactly one network call.
type TokenManager struct {
	store  CredentialStore
	oauth  TokenTransport
	logger *slog.Logger
	now    func() time.Time

	mu sync.Mutex
}

// NewTokenManager creates a TokenManager
func NewTokenManager(store CredentialStore, oauth TokenTransport, logger *slog.Logger) *TokenManager {
	return &TokenManager{
		store:  store,
		oauth:  oauth,
		logger: logger,
		now:    time.Now,
	}
}

// SetCredential replaces the authorization credential and invalidates any
// cached access token. No network call happens here.
func (m *TokenManager) SetCredential(cred string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.SetCredential(cred); err != nil {
		return err
	}
	return m.store.ClearAccessToken()
}

// ValidToken returns a token valid for at least the refresh buffer from now,
// refreshing first when necessary. The cached token is returned without any
// network call while it stays inside the buffer window.
func (m *TokenManager) ValidToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cred, err := m.store.Credential()
	if err != nil {
		return "", err
	}
	if cred == "" {
		return "", ErrMissingCredential
	}

	token, expiresAt, ok, err := m.store.AccessToken()
	if err != nil {
		return "", err
	}
	if ok && m.now().Before(expiresAt.Add(-refreshBuffer)) {
		return token, nil
	}

	if err := m.refreshLocked(ctx, cred); err != nil {
		return "", err
	}

	token, _, _, err = m.store.AccessToken()
	return token, err
}

// ForceRefresh unconditionally performs a refresh.
func (m *TokenManager) ForceRefresh(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cred, err := m.store.Credential()
	if err != nil {
		return err
	}
	if cred == "" {
		return ErrMissingCredential
	}
	return m.refreshLocked(ctx, cred)
}

// refreshLocked must be called with m.mu held. On failure any previously
// cached token is left untouched.
func (m *TokenManager) refreshLocked(ctx context.Context, cred string) error {
	resp, err := m.oauth.FetchToken(ctx, cred)
	if err != nil {
		m.logger.Error("failed to refresh access token", "error", err)
		return err
	}

	now := m.now()
	var expiresAt time.Time
	switch {
	case resp.ExpiresAt != nil:
		expiresAt = time.Unix(*resp.ExpiresAt, 0)
	case resp.ExpiresIn != nil:
		expiresAt = now.Add(time.Duration(*resp.ExpiresIn) * time.Second)
	default:
		expiresAt = now.Add(defaultTokenTTL)
	}

	if err := m.store.SetAccessToken(resp.AccessToken, expiresAt); err != nil {
		return err
	}

	m.logger.Info("access token refreshed", "expires_at", expiresAt.Format(time.RFC3339))
	return nil
}
