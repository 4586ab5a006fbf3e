package insight

import (
	"context"
	"sort"
	"strings"

	"github.com/phrazzld/unit-api/internal/domain"
)

// encouragements are the canned lines used when no model is available.
var encouragements = map[domain.UnitType]string{
	domain.UnitRelationship: "Showing up for this says a lot about how much you care.",
	domain.UnitSelf:         "Taking time to look inward is real work. Well done.",
	domain.UnitCareer:       "Naming where you stand is the first move forward.",
	domain.UnitHealth:       "Small honest check-ins like this are how change starts.",
	domain.UnitMoney:        "Facing the numbers takes more courage than avoiding them.",
	domain.UnitGrowth:       "You kept going through every question. That counts.",
}

// insightLines pair the weakest area with a short observation.
var insightLines = map[string]string{
	"vitality":     "Your energy deserves more protection.",
	"relationship": "Connection seems to carry weight here.",
	"growth":       "There is room to stretch a little further.",
	"resolve":      "A smaller next step may unlock things.",
	"stability":    "Steadier ground would help everything else.",
}

// nextUnitByArea suggests a follow-up unit for the weakest sub-score.
var nextUnitByArea = map[string]domain.UnitType{
	"vitality":     domain.UnitHealth,
	"relationship": domain.UnitRelationship,
	"growth":       domain.UnitGrowth,
	"resolve":      domain.UnitCareer,
	"stability":    domain.UnitMoney,
}

// stopWords are excluded from keyword extraction.
var stopWords = map[string]bool{
	"the": true, "and": true, "but": true, "for": true, "with": true,
	"that": true, "this": true, "have": true, "has": true, "was": true,
	"are": true, "not": true, "you": true, "your": true, "from": true,
	"they": true, "them": true, "when": true, "what": true, "will": true,
	"would": true, "could": true, "should": true, "about": true,
	"been": true, "more": true, "some": true, "just": true, "like": true,
	"really": true, "very": true, "because": true, "then": true,
	"than": true, "there": true, "their": true, "want": true, "feel": true,
}

// FallbackGenerator derives the insight from the sub-scores and answer
// text alone, with no external calls. It never fails.
type FallbackGenerator struct{}

// NewFallbackGenerator creates the rule-based generator.
func NewFallbackGenerator() *FallbackGenerator {
	return &FallbackGenerator{}
}

// Ensure FallbackGenerator implements the Generator interface
var _ Generator = (*FallbackGenerator)(nil)

// Generate implements Generator.Generate.
func (g *FallbackGenerator) Generate(_ context.Context, req Request) (*Insight, error) {
	area := weakestArea(req.SubScores)

	encouragement, ok := encouragements[req.UnitType]
	if !ok {
		encouragement = "You finished the whole check-in. That matters."
	}

	return &Insight{
		Encouragement: Truncate(encouragement, MaxEncouragementLen),
		Insight:       Truncate(insightLines[area], MaxInsightLen),
		NextUnitHint:  nextUnitByArea[area],
		Keywords:      FilterKeywords(extractKeywords(req.Answers)),
	}, nil
}

// weakestArea returns the name of the lowest sub-score. Ties resolve in
// a fixed order so the output stays deterministic.
func weakestArea(scores domain.SubScores) string {
	areas := []struct {
		name  string
		value int
	}{
		{"vitality", scores.Vitality},
		{"relationship", scores.Relationship},
		{"growth", scores.Growth},
		{"resolve", scores.Resolve},
		{"stability", scores.Stability},
	}

	weakest := areas[0]
	for _, area := range areas[1:] {
		if area.value < weakest.value {
			weakest = area
		}
	}
	return weakest.name
}

// extractKeywords pulls the most frequent meaningful words from the
// answers, most frequent first, first occurrence breaking ties.
func extractKeywords(answers []string) []string {
	counts := make(map[string]int)
	var order []string

	for _, answer := range answers {
		for _, word := range strings.Fields(strings.ToLower(answer)) {
			word = strings.Trim(word, ".,!?;:\"'()")
			if len([]rune(word)) < 3 || stopWords[word] {
				continue
			}
			if counts[word] == 0 {
				order = append(order, word)
			}
			counts[word]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	return order
}
