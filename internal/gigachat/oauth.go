package gigachat

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// OAuthClient exchanges the long-lived authorization credential for a
// short-lived access token
type OAuthClient struct {
	url        string
	scope      string
	httpClient *http.Client
	logger     *slog.Logger
	tracer     trace.Tracer
}

// NewOAuthClient creates an OAuthClient
func NewOAuthClient(oauthURL, scope string, httpClient *http.Client, logger *slog.Logger, tracer trace.Tracer) *OAuthClient {
	return &OAuthClient{
		url:        oauthURL,
		scope:      scope,
		httpClient: httpClient,
		logger:     logger,
		tracer:     tracer,
	}
}

// FetchToken performs one OAuth exchange. Each call carries a fresh RqUID.
func (c *OAuthClient) FetchToken(ctx context.Context, credential string) (TokenResponse, error) {
	ctx, span := c.tracer.Start(ctx, "gigachat_oauth_call")
	defer span.End()

	form := url.Values{}
	form.Set("scope", c.scope)

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, strings.NewReader(form.Encode()))
	if err != nil {
		return TokenResponse{}, &RefreshError{Err: err}
	}

	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("RqUID", uuid.NewString())
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return TokenResponse{}, &RefreshError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return TokenResponse{}, &RefreshError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("token endpoint returned error", "status", resp.StatusCode, "body", string(body))
		return TokenResponse{}, &RefreshError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return TokenResponse{}, &RefreshError{Err: err}
	}

	if tokenResp.AccessToken == "" {
		return TokenResponse{}, &RefreshError{StatusCode: resp.StatusCode, Body: "missing access_token in response"}
	}

	return tokenResp, nil
}
