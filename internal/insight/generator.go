// Package insight produces the short narrative attached to a completed
// unit: an encouragement line, a one-line insight, a suggested next unit
// and a handful of theme keywords. Generation is one-shot per session;
// callers fall back to the rule-based generator when a model call fails.
package insight

import (
	"context"
	"regexp"
	"strings"

	"github.com/phrazzld/unit-api/internal/domain"
)

// Length caps on generated text, in runes. Model output past the cap is
// truncated, not rejected.
const (
	MaxEncouragementLen = 60
	MaxInsightLen       = 40
	MaxKeywords         = 5
)

// Insight is the generated narrative for one completed unit.
type Insight struct {
	Encouragement string          `json:"encouragement"`
	Insight       string          `json:"insight"`
	NextUnitHint  domain.UnitType `json:"next_unit_hint"`
	Keywords      []string        `json:"keywords"`
}

// Request carries everything a generator may use. Answers are the raw
// ephemeral texts; generators must not retain them past the call.
type Request struct {
	UnitType  domain.UnitType
	Category  string
	SubScores domain.SubScores
	Answers   []string
}

// Generator produces an insight for a completed unit.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Insight, error)
}

// consecutiveDigits matches two or more digits in a row, the shape of
// phone numbers, ages and other identifying numerics.
var consecutiveDigits = regexp.MustCompile(`\d{2,}`)

// FilterKeywords enforces the keyword contract on generator output:
// at most five entries, each at least two runes, nothing containing "@"
// or runs of digits. Order is preserved.
func FilterKeywords(keywords []string) []string {
	filtered := make([]string, 0, MaxKeywords)
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if len([]rune(kw)) < 2 {
			continue
		}
		if strings.Contains(kw, "@") || consecutiveDigits.MatchString(kw) {
			continue
		}
		filtered = append(filtered, kw)
		if len(filtered) == MaxKeywords {
			break
		}
	}
	return filtered
}

// Truncate cuts s to at most max runes.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
