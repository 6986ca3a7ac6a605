package assessment

import (
	"strings"
	"unicode/utf8"
)

// conclusionKeywords are the terms whose presence marks an assistant reply as
// a possible conclusion or recommendation.
var conclusionKeywords = []string{
	"заключение", "вывод", "рекомендации", "итог", "результат",
	"ваш тип", "ваш уровень", "подходящие профессии", "сильные стороны",
	"области для развития", "совет", "рекомендую", "следует", "стоит",
	"варианты решения", "практические шаги",
}

// conclusionLengthThreshold returns the minimum reply length (in characters)
// for the conclusion heuristic: 300 for the advice test, 400 for all others.
func conclusionLengthThreshold(t TestType) int {
	if t == Advice {
		return 300
	}
	return 400
}

// IsConclusion reports whether text looks like the final conclusion of a test
// dialogue: it must contain at least one conclusion keyword (case-folded) and
// exceed the per-type length threshold. This is a documented heuristic, not a
// guarantee: false negatives are resolved by the question cap, false positives
// are accepted as-is.
func IsConclusion(t TestType, text string) bool {
	lower := strings.ToLower(text)

	hasKeyword := false
	for _, kw := range conclusionKeywords {
		if strings.Contains(lower, kw) {
			hasKeyword = true
			break
		}
	}
	if !hasKeyword {
		return false
	}

	return utf8.RuneCountInString(text) > conclusionLengthThreshold(t)
}
