package assessment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"PsyAssist/internal/gigachat"
)

// maxQuestions is the hard cap on answered questions before a conclusion is
// forced regardless of the heuristic.
const maxQuestions = 7

// State is the orchestrator's position in the test dialogue
type State int

const (
	StatePriming State = iota
	StateQuestioning
	StateAwaitingConclusion
	StateConcluded
)

func (s State) String() string {
	switch s {
	case StatePriming:
		return "priming"
	case StateQuestioning:
		return "questioning"
	case StateAwaitingConclusion:
		return "awaiting_conclusion"
	case StateConcluded:
		return "concluded"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Dialogue is the conversation surface the orchestrator drives
type Dialogue interface {
	Send(ctx context.Context, userText string) (string, error)
	History() []gigachat.Message
}

// Orchestrator drives one bounded question/answer test dialogue, detects the
// model's conclusion, and finalizes a Result. Not safe for concurrent use.
type Orchestrator struct {
	testType TestType
	session  Dialogue
	sink     ResultSink
	logger   *slog.Logger
	now      func() time.Time

	state     State
	turnCount int
	lastReply string
	result    *Result
}

// New creates an Orchestrator in the priming state
func New(testType TestType, session Dialogue, sink ResultSink, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		testType: testType,
		session:  session,
		sink:     sink,
		logger:   logger,
		now:      time.Now,
		state:    StatePriming,
	}
}

// State returns the current dialogue state
func (o *Orchestrator) State() State { return o.state }

// TurnCount returns the number of answered questions so far. The priming
// exchange does not count.
func (o *Orchestrator) TurnCount() int { return o.turnCount }

// Result returns the finalized result, or nil before the dialogue concludes
func (o *Orchestrator) Result() *Result { return o.result }

// Begin sends the canned opener through the session and surfaces the model's
// greeting and first question. A failure leaves the orchestrator in priming
// so the caller can retry.
func (o *Orchestrator) Begin(ctx context.Context) (string, error) {
	if o.state != StatePriming {
		return "", fmt.Errorf("cannot begin in state %s", o.state)
	}

	reply, err := o.session.Send(ctx, openerPrompt)
	if err != nil {
		return "", err
	}

	o.state = StateQuestioning
	o.lastReply = reply
	o.logger.Info("test started", "test_type", o.testType)
	return reply, nil
}

// Answer records one user answer and returns the model's reply. done is true
// once the dialogue has concluded; the finalized result is then available via
// Result and has been handed to the sink. A transport failure leaves the
// state and turn count unchanged for manual retry.
func (o *Orchestrator) Answer(ctx context.Context, text string) (reply string, done bool, err error) {
	if o.state != StateQuestioning {
		return "", false, fmt.Errorf("cannot answer in state %s", o.state)
	}

	reply, err = o.session.Send(ctx, text)
	if err != nil {
		return "", false, err
	}

	o.turnCount++
	o.lastReply = reply

	concluded := IsConclusion(o.testType, reply)
	if !concluded && o.turnCount < maxQuestions {
		return reply, false, nil
	}

	o.state = StateAwaitingConclusion

	verdict := reply
	if !concluded {
		// question cap reached without a detected conclusion
		verdict = o.requestConclusion(ctx)
	}

	if err := o.finalize(ctx, verdict); err != nil {
		return reply, true, err
	}
	return verdict, true, nil
}

// requestConclusion asks the model for an explicit conclusion. If the request
// fails, the most recent assistant turn serves as the verdict: a session with
// at least one assistant turn never fails outright at this point.
func (o *Orchestrator) requestConclusion(ctx context.Context) string {
	reply, err := o.session.Send(ctx, ConclusionPrompt(o.testType))
	if err != nil {
		o.logger.Warn("conclusion request failed, using last assistant turn", "error", err)
		return o.lastAssistantTurn()
	}
	return reply
}

// lastAssistantTurn returns the content of the most recent assistant turn in
// the session history.
func (o *Orchestrator) lastAssistantTurn() string {
	history := o.session.History()
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == gigachat.RoleAssistant {
			return history[i].Content
		}
	}
	return "Тест завершен"
}

// finalize builds the Result and hands it to the sink
func (o *Orchestrator) finalize(ctx context.Context, verdict string) error {
	var details string
	if o.testType == Advice {
		details = fmt.Sprintf("Консультация проведена через ИИ-диалог. Количество вопросов: %d", o.turnCount)
	} else {
		details = fmt.Sprintf("Тест проведен через ИИ-диалог. Количество вопросов: %d", o.turnCount)
	}

	r := &Result{
		TestType:  o.testType,
		Verdict:   verdict,
		TurnCount: o.turnCount,
		Details:   details,
		CreatedAt: o.now(),
	}

	id, err := o.sink.SaveResult(ctx, r)
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	r.ID = id

	o.result = r
	o.state = StateConcluded
	o.logger.Info("test concluded", "test_type", o.testType, "turn_count", o.turnCount, "result_id", id)
	return nil
}
