package gigachat_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"PsyAssist/internal/gigachat"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func newOAuthClient(url string) *gigachat.OAuthClient {
	return gigachat.NewOAuthClient(url, "GIGACHAT_API_PERS",
		gigachat.NewHTTPClient(5*time.Second, false),
		discardLogger(), otel.Tracer("test"))
}

func TestFetchTokenRequestShape(t *testing.T) {
	var gotAuth, gotRqUID, gotContentType, gotScope string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRqUID = r.Header.Get("RqUID")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseForm())
		gotScope = r.PostFormValue("scope")
		w.Write([]byte(`{"access_token": "fresh-token", "expires_in": 1800}`))
	}))
	defer server.Close()

	client := newOAuthClient(server.URL)

	resp, err := client.FetchToken(context.Background(), "base64-credential")

	require.NoError(t, err)
	assert.Equal(t, "fresh-token", resp.AccessToken)
	require.NotNil(t, resp.ExpiresIn)
	assert.Equal(t, int64(1800), *resp.ExpiresIn)
	assert.Nil(t, resp.ExpiresAt)

	assert.Equal(t, "Bearer base64-credential", gotAuth)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, "GIGACHAT_API_PERS", gotScope)

	_, err = uuid.Parse(gotRqUID)
	assert.NoError(t, err, "RqUID must be a valid UUID")
}

func TestFetchTokenFreshRqUIDPerCall(t *testing.T) {
	var rqUIDs []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rqUIDs = append(rqUIDs, r.Header.Get("RqUID"))
		w.Write([]byte(`{"access_token": "tok"}`))
	}))
	defer server.Close()

	client := newOAuthClient(server.URL)

	for i := 0; i < 2; i++ {
		_, err := client.FetchToken(context.Background(), "cred")
		require.NoError(t, err)
	}

	require.Len(t, rqUIDs, 2)
	assert.NotEqual(t, rqUIDs[0], rqUIDs[1])
}

func TestFetchTokenExpiresAt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token": "tok", "expires_at": 1750000000}`))
	}))
	defer server.Close()

	client := newOAuthClient(server.URL)

	resp, err := client.FetchToken(context.Background(), "cred")

	require.NoError(t, err)
	require.NotNil(t, resp.ExpiresAt)
	assert.Equal(t, int64(1750000000), *resp.ExpiresAt)
}

func TestFetchTokenHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid credential", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newOAuthClient(server.URL)

	_, err := client.FetchToken(context.Background(), "bad-cred")

	var refreshErr *gigachat.RefreshError
	require.ErrorAs(t, err, &refreshErr)
	assert.Equal(t, http.StatusUnauthorized, refreshErr.StatusCode)
	assert.Contains(t, refreshErr.Body, "invalid credential")
}

func TestFetchTokenMissingAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newOAuthClient(server.URL)

	_, err := client.FetchToken(context.Background(), "cred")

	var refreshErr *gigachat.RefreshError
	require.ErrorAs(t, err, &refreshErr)
}

func TestFetchTokenNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newOAuthClient(server.URL)

	_, err := client.FetchToken(context.Background(), "cred")

	var refreshErr *gigachat.RefreshError
	require.ErrorAs(t, err, &refreshErr)
	assert.Zero(t, refreshErr.StatusCode)
}
