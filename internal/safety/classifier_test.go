package safety

import (
	"testing"

	"github.com/phrazzld/unit-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyGreen(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty text", ""},
		{"whitespace only", "   "},
		{"ordinary answer", "I spent the weekend hiking and felt calm for the first time in months."},
		{"positive content", "I really want to grow and improve my relationship with my sister."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify(tt.text)
			assert.Equal(t, domain.RiskGreen, result.Level)
			assert.Empty(t, result.Category)
		})
	}
}

func TestClassifyRed(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		category string
	}{
		{"self harm direct", "some days I just want to die", CategorySelfHarm},
		{"self harm disappear", "I want to disappear and not come back", CategorySelfHarm},
		{"violence", "I am going to kill him if he does that again", CategoryViolence},
		{"illegal", "thinking about where to buy drugs tonight", CategoryIllegal},
		{"case insensitive", "I WANT TO DIE", CategorySelfHarm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify(tt.text)
			require.Equal(t, domain.RiskRed, result.Level)
			assert.Equal(t, tt.category, result.Category)
			assert.NotEmpty(t, result.MatchedTerm)
		})
	}
}

func TestClassifyYellow(t *testing.T) {
	result := Classify("can you diagnose me, I think something is wrong")
	require.Equal(t, domain.RiskYellow, result.Level)
	assert.Equal(t, CategoryMedical, result.Category)
}

func TestClassifyYellowRecordsAllMatches(t *testing.T) {
	// Multiple weak signals are all kept for the reviewer, not just the first.
	result := Classify("please diagnose me, and also I keep planning revenge on my coworker")
	require.Equal(t, domain.RiskYellow, result.Level)
	require.Len(t, result.Matches, 2)
	assert.Equal(t, CategoryMedical, result.Matches[0].Category)
	assert.Equal(t, CategoryManipulation, result.Matches[1].Category)
}

func TestRedTakesPrecedenceOverYellow(t *testing.T) {
	// Text matching both tiers must classify RED.
	result := Classify("I want to die and someone should prescribe me something")
	assert.Equal(t, domain.RiskRed, result.Level)
	assert.Equal(t, CategorySelfHarm, result.Category)
}

func TestFalsePositiveSuppression(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"negated self harm", "I don't want to disappear, I want to be seen"},
		{"do not variant", "I do not want to die, I want things to change"},
		{"quoted speech", `my friend texted "I want to disappear" and I did not know what to say`},
		{"past tense", "back then I used to think about suicide, that is behind me now"},
		{"reported speech", "she said that she wanted to end it all last year"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify(tt.text)
			assert.Equal(t, domain.RiskGreen, result.Level, "suppression must downgrade to GREEN")
		})
	}
}

func TestClassifyIsPure(t *testing.T) {
	text := "I am going to kill him"
	first := Classify(text)
	second := Classify(text)
	assert.Equal(t, first, second)
}
