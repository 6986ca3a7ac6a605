package gigachat

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResponse means the server replied 2xx with an empty body.
	ErrEmptyResponse = errors.New("empty response from GigaChat")

	// ErrNoAssistantMessage means the response carried no choices to read
	// an assistant turn from.
	ErrNoAssistantMessage = errors.New("no assistant message in response choices")
)

// HTTPError is a non-2xx reply from the chat completions endpoint.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("API error: %d - %s", e.StatusCode, e.Body)
}

// RefreshError is a failed access-token refresh. StatusCode is zero when the
// request never reached the server.
type RefreshError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *RefreshError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token refresh failed: %v", e.Err)
	}
	return fmt.Sprintf("token refresh failed: %d - %s", e.StatusCode, e.Body)
}

func (e *RefreshError) Unwrap() error { return e.Err }
