package assessment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"PsyAssist/internal/gigachat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedDialogue struct {
	replies []string
	errs    []error
	sent    []string
	history []gigachat.Message
}

func (d *scriptedDialogue) Send(ctx context.Context, text string) (string, error) {
	d.sent = append(d.sent, text)
	d.history = append(d.history, gigachat.Message{Role: gigachat.RoleUser, Content: text})

	var err error
	if len(d.errs) > 0 {
		err = d.errs[0]
		d.errs = d.errs[1:]
	}
	if err != nil {
		return "", err
	}

	reply := d.replies[0]
	d.replies = d.replies[1:]
	d.history = append(d.history, gigachat.Message{Role: gigachat.RoleAssistant, Content: reply})
	return reply, nil
}

func (d *scriptedDialogue) History() []gigachat.Message {
	out := make([]gigachat.Message, len(d.history))
	copy(out, d.history)
	return out
}

type memorySink struct {
	saved []*Result
}

func (s *memorySink) SaveResult(ctx context.Context, r *Result) (int64, error) {
	s.saved = append(s.saved, r)
	return int64(len(s.saved)), nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(nopWriter{}, nil))
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

// longConclusion builds a reply the heuristic classifies as a conclusion.
func longConclusion(t *testing.T) string {
	t.Helper()
	return padToRunes(t, "Заключение: по результатам теста ваш тип личности - аналитик. Сильные стороны: ", 450)
}

func question(n int) string {
	return fmt.Sprintf("Вопрос %d: расскажите подробнее?", n)
}

func TestBeginDoesNotCountTurn(t *testing.T) {
	d := &scriptedDialogue{replies: []string{question(1)}}
	sink := &memorySink{}
	o := New(PersonalityType, d, sink, testLogger())

	reply, err := o.Begin(context.Background())

	require.NoError(t, err)
	assert.Equal(t, question(1), reply)
	assert.Equal(t, 0, o.TurnCount(), "priming exchange must not count")
	assert.Equal(t, StateQuestioning, o.State())
	require.Len(t, d.sent, 1)
	assert.Equal(t, openerPrompt, d.sent[0])
}

func TestBeginFailureStaysPriming(t *testing.T) {
	d := &scriptedDialogue{errs: []error{&gigachat.HTTPError{StatusCode: 503, Body: "busy"}}}
	o := New(PersonalityType, d, &memorySink{}, testLogger())

	_, err := o.Begin(context.Background())

	require.Error(t, err)
	assert.Equal(t, StatePriming, o.State(), "failed priming allows retry")

	// retry succeeds
	d.replies = []string{question(1)}
	_, err = o.Begin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateQuestioning, o.State())
}

func TestAnswerSurfacesNextQuestion(t *testing.T) {
	d := &scriptedDialogue{replies: []string{question(1), question(2)}}
	o := New(StressLevel, d, &memorySink{}, testLogger())

	_, err := o.Begin(context.Background())
	require.NoError(t, err)

	reply, done, err := o.Answer(context.Background(), "Нормально")

	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, question(2), reply)
	assert.Equal(t, 1, o.TurnCount())
	assert.Equal(t, StateQuestioning, o.State())
}

func TestDetectedConclusionEndsTest(t *testing.T) {
	conclusion := longConclusion(t)
	d := &scriptedDialogue{replies: []string{question(1), question(2), conclusion}}
	sink := &memorySink{}
	o := New(PersonalityType, d, sink, testLogger())

	_, err := o.Begin(context.Background())
	require.NoError(t, err)

	_, done, err := o.Answer(context.Background(), "ответ 1")
	require.NoError(t, err)
	require.False(t, done)

	verdict, done, err := o.Answer(context.Background(), "ответ 2")
	require.NoError(t, err)
	require.True(t, done)
	assert.Equal(t, conclusion, verdict)

	require.Len(t, sink.saved, 1)
	result := sink.saved[0]
	assert.Equal(t, PersonalityType, result.TestType)
	assert.Equal(t, conclusion, result.Verdict)
	assert.Equal(t, 2, result.TurnCount)
	assert.Equal(t, StateConcluded, o.State())
	assert.Equal(t, result, o.Result())

	// no explicit conclusion request was needed
	assert.Len(t, d.sent, 3)
}

func TestQuestionCapForcesConclusionRequest(t *testing.T) {
	replies := []string{question(0)} // priming reply
	for i := 1; i <= 7; i++ {
		replies = append(replies, question(i))
	}
	conclusion := longConclusion(t)
	replies = append(replies, conclusion)

	d := &scriptedDialogue{replies: replies}
	sink := &memorySink{}
	o := New(EmotionalIntelligence, d, sink, testLogger())

	_, err := o.Begin(context.Background())
	require.NoError(t, err)

	var done bool
	var verdict string
	for i := 1; i <= 7; i++ {
		verdict, done, err = o.Answer(context.Background(), fmt.Sprintf("ответ %d", i))
		require.NoError(t, err)
		if i < 7 {
			require.False(t, done, "turn %d must not conclude", i)
		}
	}

	require.True(t, done, "the seventh answer must conclude the test")
	assert.Equal(t, conclusion, verdict)

	// the last message sent was the explicit conclusion request
	last := d.sent[len(d.sent)-1]
	assert.Equal(t, ConclusionPrompt(EmotionalIntelligence), last)

	require.Len(t, sink.saved, 1)
	assert.Equal(t, 7, sink.saved[0].TurnCount)
}

func TestConclusionRequestFailureFallsBack(t *testing.T) {
	replies := []string{question(0)}
	for i := 1; i <= 7; i++ {
		replies = append(replies, question(i))
	}

	d := &scriptedDialogue{replies: replies}
	// fail only the conclusion request (call 9: opener + 7 answers precede it)
	d.errs = make([]error, 9)
	d.errs[8] = &gigachat.HTTPError{StatusCode: 500, Body: "internal"}

	sink := &memorySink{}
	o := New(StressLevel, d, sink, testLogger())

	_, err := o.Begin(context.Background())
	require.NoError(t, err)

	var done bool
	var verdict string
	for i := 1; i <= 7; i++ {
		verdict, done, err = o.Answer(context.Background(), fmt.Sprintf("ответ %d", i))
		require.NoError(t, err)
	}

	require.True(t, done)
	assert.Equal(t, question(7), verdict, "verdict falls back to the last assistant turn")
	require.Len(t, sink.saved, 1)
	assert.Equal(t, question(7), sink.saved[0].Verdict)
	assert.Equal(t, 7, sink.saved[0].TurnCount)
}

func TestAnswerFailureDoesNotAdvance(t *testing.T) {
	d := &scriptedDialogue{replies: []string{question(1)}}
	o := New(Profession, d, &memorySink{}, testLogger())

	_, err := o.Begin(context.Background())
	require.NoError(t, err)

	d.errs = []error{gigachat.ErrNoAssistantMessage}
	_, _, err = o.Answer(context.Background(), "ответ")

	require.ErrorIs(t, err, gigachat.ErrNoAssistantMessage)
	assert.Equal(t, 0, o.TurnCount(), "a failed answer must not advance the turn count")
	assert.Equal(t, StateQuestioning, o.State())

	// retry works
	d.replies = []string{question(2)}
	_, done, err := o.Answer(context.Background(), "ответ")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, 1, o.TurnCount())
}

func TestDetailsTemplate(t *testing.T) {
	tests := []struct {
		testType TestType
		want     string
	}{
		{Advice, "Консультация проведена через ИИ-диалог. Количество вопросов: 1"},
		{PersonalityType, "Тест проведен через ИИ-диалог. Количество вопросов: 1"},
	}

	for _, tt := range tests {
		t.Run(string(tt.testType), func(t *testing.T) {
			conclusion := longConclusion(t)
			if tt.testType == Advice {
				conclusion = padToRunes(t, "Рекомендую следующие практические шаги: ", 350)
			}
			d := &scriptedDialogue{replies: []string{question(0), conclusion}}
			sink := &memorySink{}
			o := New(tt.testType, d, sink, testLogger())

			_, err := o.Begin(context.Background())
			require.NoError(t, err)

			_, done, err := o.Answer(context.Background(), "ответ")
			require.NoError(t, err)
			require.True(t, done)

			require.Len(t, sink.saved, 1)
			assert.Equal(t, tt.want, sink.saved[0].Details)
		})
	}
}

func TestAnswerInWrongState(t *testing.T) {
	o := New(PersonalityType, &scriptedDialogue{}, &memorySink{}, testLogger())

	_, _, err := o.Answer(context.Background(), "ответ")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "priming"))
}
