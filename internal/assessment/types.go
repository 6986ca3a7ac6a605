package assessment

import (
	"context"
	"time"
)

// TestType identifies one of the guided self-assessment dialogues
type TestType string

const (
	PersonalityType       TestType = "personality_type"
	StressLevel           TestType = "stress_level"
	Relationships         TestType = "relationships"
	EmotionalIntelligence TestType = "emotional_intelligence"
	Profession            TestType = "profession"
	StressProgression     TestType = "stress_progression"
	Advice                TestType = "advice"
)

// AllTestTypes lists every supported test in menu order
var AllTestTypes = []TestType{
	PersonalityType,
	StressLevel,
	Relationships,
	EmotionalIntelligence,
	Profession,
	StressProgression,
	Advice,
}

// Valid reports whether t is a known test type
func (t TestType) Valid() bool {
	for _, known := range AllTestTypes {
		if t == known {
			return true
		}
	}
	return false
}

// DisplayName returns the user-facing title of the test
func (t TestType) DisplayName() string {
	switch t {
	case PersonalityType:
		return "Тест на тип личности"
	case StressLevel:
		return "Тест на уровень стресса"
	case Relationships:
		return "Анализ отношений"
	case EmotionalIntelligence:
		return "Эмоциональный интеллект"
	case Profession:
		return "Определение профессии"
	case StressProgression:
		return "Прогрессия стресса"
	case Advice:
		return "Попросить совета"
	default:
		return string(t)
	}
}

// Result is the finalized outcome of one completed test dialogue. Created
// exactly once per finished session and immutable thereafter.
type Result struct {
	ID        int64
	TestType  TestType
	Verdict   string
	TurnCount int
	Details   string
	CreatedAt time.Time
}

// ResultSink persists finalized results
type ResultSink interface {
	SaveResult(ctx context.Context, r *Result) (int64, error)
}
