package chat

import (
	"context"
	"fmt"
	"log/slog"

	"PsyAssist/internal/gigachat"
)

// DefaultSystemPrompt is the persona used by the free-form chat mode when no
// test-specific prompt is supplied.
const DefaultSystemPrompt = "Ты психологический ассистент. Твоя задача - помогать пользователям с психологическими тестами, " +
	"определением типа личности, уровнем стресса, анализом отношений, эмоционального интеллекта и подбором профессии. " +
	"Будь дружелюбным, профессиональным и поддерживающим. Используй научный подход к психологии."

// TokenSource yields a valid access token before each upstream call
type TokenSource interface {
	ValidToken(ctx context.Context) (string, error)
}

// Completer turns an ordered conversation into the next assistant turn
type Completer interface {
	Complete(ctx context.Context, accessToken string, messages []gigachat.Message) (string, error)
}

// Session holds the append-only ordered turn history for one dialogue. The
// first turn is always exactly one system turn. A Session is not safe for
// concurrent use; callers serialize their Send calls.
type Session struct {
	tokens       TokenSource
	completer    Completer
	logger       *slog.Logger
	systemPrompt string
	history      []gigachat.Message
}

// NewSession creates a Session primed with a single system turn. An empty
// systemPrompt selects the default assistant persona.
func NewSession(tokens TokenSource, completer Completer, logger *slog.Logger, systemPrompt string) *Session {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &Session{
		tokens:       tokens,
		completer:    completer,
		logger:       logger,
		systemPrompt: systemPrompt,
		history: []gigachat.Message{
			{Role: gigachat.RoleSystem, Content: systemPrompt},
		},
	}
}

// Send appends a user turn, replays the full history upstream, and appends
// the assistant reply. On failure the user turn already appended is not
// rolled back: the session records the attempted question and the caller may
// retry with a new Send.
func (s *Session) Send(ctx context.Context, userText string) (string, error) {
	s.history = append(s.history, gigachat.Message{Role: gigachat.RoleUser, Content: userText})

	token, err := s.tokens.ValidToken(ctx)
	if err != nil {
		s.logger.Error("failed to obtain access token", "error", err)
		return "", fmt.Errorf("failed to get access token: %w", err)
	}

	reply, err := s.completer.Complete(ctx, token, s.History())
	if err != nil {
		s.logger.Error("completion call failed", "error", err, "history_len", len(s.history))
		return "", err
	}

	s.history = append(s.history, gigachat.Message{Role: gigachat.RoleAssistant, Content: reply})
	s.logger.Info("assistant turn received", "history_len", len(s.history), "reply_len", len(reply))
	return reply, nil
}

// Reset clears the history back to a single fresh system turn.
func (s *Session) Reset() {
	s.history = []gigachat.Message{
		{Role: gigachat.RoleSystem, Content: s.systemPrompt},
	}
}

// History returns a copy of the ordered turn history.
func (s *Session) History() []gigachat.Message {
	out := make([]gigachat.Message, len(s.history))
	copy(out, s.history)
	return out
}
