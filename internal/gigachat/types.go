package gigachat

// Message roles used by the GigaChat completion API
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single turn in the conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest represents the request body for the chat completions endpoint
type CompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// Choice is a single completion candidate in the response
type Choice struct {
	Message      Message `json:"message"`
	Index        int     `json:"index"`
	FinishReason string  `json:"finish_reason,omitempty"`
}

// CompletionResponse represents the response from the chat completions endpoint
type CompletionResponse struct {
	Choices []Choice               `json:"choices"`
	Created int64                  `json:"created"`
	Model   string                 `json:"model"`
	Usage   map[string]interface{} `json:"usage,omitempty"`
}

// TokenResponse represents the response from the OAuth token endpoint.
// ExpiresAt and ExpiresIn are both optional; ExpiresAt wins when both are set.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   *int64 `json:"expires_at,omitempty"` // unix seconds
	ExpiresIn   *int64 `json:"expires_in,omitempty"` // seconds from now
}
