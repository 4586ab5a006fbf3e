// Package safety screens free-text answers for risk before anything else
// touches them. Classification is a pure, synchronous function over data
// tables — it gates every answer's storage and persistence, so it never
// calls out to the network or the AI service.
package safety

import (
	"strings"

	"github.com/phrazzld/unit-api/internal/domain"
)

// Match records one matched YELLOW pattern.
type Match struct {
	Category string
	Term     string
}

// Classification is the outcome of screening one answer.
type Classification struct {
	Level domain.RiskLevel

	// Category is the matched risk category: the winning RED category, or
	// the first YELLOW category when Level is YELLOW. Empty for GREEN.
	Category string

	// MatchedTerm is the text fragment that triggered a RED match.
	// It stays in memory for the classification result only and must never
	// be written to the audit log.
	MatchedTerm string

	// Matches lists every YELLOW hit. RED short-circuits, so a RED
	// classification carries exactly the one winning match.
	Matches []Match
}

// Classify screens the text and returns its risk classification.
//
// Evaluation order is fixed: false-positive suppression first (negation,
// quotation and past-tense markers mean the text talks about risk without
// expressing it), then RED patterns with first-match short-circuit, then —
// only if no RED matched — all YELLOW patterns.
func Classify(text string) Classification {
	if strings.TrimSpace(text) == "" {
		return Classification{Level: domain.RiskGreen}
	}

	normalized := strings.ToLower(strings.TrimSpace(text))

	for _, fp := range falsePositivePatterns {
		if fp.MatchString(normalized) {
			return Classification{Level: domain.RiskGreen}
		}
	}

	for _, group := range redGroups {
		for _, pattern := range group.patterns {
			if term := pattern.FindString(normalized); term != "" {
				return Classification{
					Level:       domain.RiskRed,
					Category:    group.category,
					MatchedTerm: term,
					Matches:     []Match{{Category: group.category, Term: term}},
				}
			}
		}
	}

	var matches []Match
	for _, group := range yellowGroups {
		for _, pattern := range group.patterns {
			if term := pattern.FindString(normalized); term != "" {
				matches = append(matches, Match{Category: group.category, Term: term})
			}
		}
	}

	if len(matches) > 0 {
		return Classification{
			Level:    domain.RiskYellow,
			Category: matches[0].Category,
			Matches:  matches,
		}
	}

	return Classification{Level: domain.RiskGreen}
}
