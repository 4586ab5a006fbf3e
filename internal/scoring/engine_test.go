package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine := NewEngine(NewMemoryScoreCache(nil), NewMemoryQuotaCounter(), NewMemoryEnergyHistory(), nil)
	engine.now = func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	return engine
}

func TestScoreDeterministic(t *testing.T) {
	input := Input{
		Content:  "I want to grow and improve my relationship with my family",
		OwnerKey: "owner-a",
	}

	first, err := newTestEngine(t).Score(input)
	require.NoError(t, err)
	second, err := newTestEngine(t).Score(input)
	require.NoError(t, err)

	assert.Equal(t, first.BaseScore, second.BaseScore)
	assert.Equal(t, first.FinalScore, second.FinalScore)
	assert.Equal(t, first.EnergyType, second.EnergyType)
	assert.Equal(t, first.Confidence, second.Confidence)
}

func TestScoreBounds(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty-ish", "ok"},
		{"very negative", "everything is hard and difficult, I feel depressed and anxious and want to give up"},
		{"very positive", "I am grateful and full of hope, I love my family, I decided to make an effort and try, together with friends, starting now with a clear goal to pass the exam"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := newTestEngine(t).Score(Input{Content: tt.content, OwnerKey: "owner"})
			require.NoError(t, err)
			assert.GreaterOrEqual(t, result.BaseScore, 50)
			assert.LessOrEqual(t, result.BaseScore, 100)
			assert.GreaterOrEqual(t, result.FinalScore, 50)
			assert.LessOrEqual(t, result.FinalScore, 100)
		})
	}
}

func TestScoreCacheHit(t *testing.T) {
	engine := newTestEngine(t)
	input := Input{Content: "I want to improve things", OwnerKey: "owner-b"}

	first, err := engine.Score(input)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := engine.Score(input)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.FinalScore, second.FinalScore)
	assert.Equal(t, first.Factors, second.Factors)
}

func TestScoreCacheNormalizesContent(t *testing.T) {
	engine := newTestEngine(t)

	_, err := engine.Score(Input{Content: "I want to improve things", OwnerKey: "owner-c"})
	require.NoError(t, err)

	// Case and whitespace differences hit the same cache entry.
	result, err := engine.Score(Input{Content: "  I WANT   to improve\tthings ", OwnerKey: "owner-c"})
	require.NoError(t, err)
	assert.True(t, result.Cached)
}

func TestScoreDailyQuota(t *testing.T) {
	engine := newTestEngine(t)

	contents := []string{"first unique wish", "second unique wish", "third unique wish"}
	for _, content := range contents {
		_, err := engine.Score(Input{Content: content, OwnerKey: "owner-d"})
		require.NoError(t, err)
	}

	_, err := engine.Score(Input{Content: "fourth unique wish", OwnerKey: "owner-d"})
	require.ErrorIs(t, err, ErrDailyLimitExceeded)

	// Cached content still works past the quota.
	result, err := engine.Score(Input{Content: "first unique wish", OwnerKey: "owner-d"})
	require.NoError(t, err)
	assert.True(t, result.Cached)

	// Other owners are unaffected.
	_, err = engine.Score(Input{Content: "fourth unique wish", OwnerKey: "owner-e"})
	assert.NoError(t, err)
}

func TestScoreModeDetection(t *testing.T) {
	tests := []struct {
		name      string
		input     Input
		wantMode  Mode
		wantLevel ConfidenceLevel
	}{
		{
			name:      "short free text is a wish",
			input:     Input{Content: "a better week"},
			wantMode:  ModeWish,
			wantLevel: ConfidenceLow,
		},
		{
			name:      "long free text is a problem",
			input:     Input{Content: "I have been struggling to balance work and home and I want to find a sustainable routine"},
			wantMode:  ModeProblem,
			wantLevel: ConfidenceMedium,
		},
		{
			name: "structured responses are quick",
			input: Input{Content: "routine", Responses: map[string]string{
				"q1": "a", "q2": "b", "q3": "c", "q4": "d",
			}},
			wantMode:  ModeQuick,
			wantLevel: ConfidenceMedium,
		},
		{
			name: "full questionnaire is deep",
			input: Input{Content: "routine", Responses: map[string]string{
				"q1": "a", "q2": "b", "q3": "c", "q4": "d", "q5": "e",
				"q6": "f", "q7": "g", "q8": "h", "q9": "i", "q10": "j",
			}},
			wantMode:  ModeDeep,
			wantLevel: ConfidenceHigh,
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.input.OwnerKey = "mode-owner-" + string(rune('a'+i))
			result, err := newTestEngine(t).Score(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMode, result.Mode)
			assert.Equal(t, tt.wantLevel, result.Confidence)
		})
	}
}

func TestScoreDailyDelta(t *testing.T) {
	engine := newTestEngine(t)

	with, err := engine.Score(Input{Content: "unique text for delta", OwnerKey: "owner-f", IncludeDailyDelta: true})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, with.DailyDelta, -3)
	assert.LessOrEqual(t, with.DailyDelta, 3)
	assert.Equal(t, clamp(with.BaseScore+with.DailyDelta, 50, 100), with.FinalScore)

	without, err := engine.Score(Input{Content: "another unique text", OwnerKey: "owner-f"})
	require.NoError(t, err)
	assert.Zero(t, without.DailyDelta)
	assert.Equal(t, without.BaseScore, without.FinalScore)
}

func TestDailyDeltaStableWithinDay(t *testing.T) {
	day := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	later := time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, DailyDelta(day), DailyDelta(later))
}

func TestSignatureDiffersByOwner(t *testing.T) {
	assert.NotEqual(t,
		Signature("owner-a", "same content"),
		Signature("owner-b", "same content"))
}

func TestScoreFactorsPresent(t *testing.T) {
	result, err := newTestEngine(t).Score(Input{
		Content:  "I am hopeful and want to change, my family will help, the goal is a new job starting now",
		OwnerKey: "owner-g",
	})
	require.NoError(t, err)

	names := make([]string, 0, len(result.Factors))
	for _, f := range result.Factors {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "situation")
	assert.Contains(t, names, "will")
	assert.Contains(t, names, "support")
	assert.Contains(t, names, "actionability")
}

func TestScoreDeepResponsesBonus(t *testing.T) {
	responses := map[string]string{
		"q1": "a", "q2": "b", "q3": "c", "q4": "d", "q5": "e",
	}
	result, err := newTestEngine(t).Score(Input{
		Content:   "working toward balance",
		OwnerKey:  "owner-h",
		Responses: responses,
		Emotions:  []string{"hopeful"},
		Strengths: []string{"patience", "honesty"},
	})
	require.NoError(t, err)

	var deep *Factor
	for i := range result.Factors {
		if result.Factors[i].Name == "deep_analysis" {
			deep = &result.Factors[i]
		}
	}
	require.NotNil(t, deep)
	assert.Equal(t, 7, deep.Score)
}
