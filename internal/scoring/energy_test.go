package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyEnergy(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"no match falls back", "nothing relevant here", DefaultEnergy},
		{"ruby keywords", "I need courage to take bold action", "ruby"},
		{"sapphire keywords", "I want peace and a careful plan", "sapphire"},
		{"emerald keywords", "healing and growth in my relationship", "emerald"},
		{"diamond keywords", "a clear goal to achieve success", "diamond"},
		{"dominant wins", "peace and calm and trust, with one challenge", "sapphire"},
		{"tie keeps earlier declaration", "courage for this challenge, seeking wisdom and calm", "ruby"},
		{"case insensitive", "COURAGE and BOLD ACTION", "ruby"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyEnergy(tt.text))
		})
	}
}

func TestSmoothEnergyShortHistory(t *testing.T) {
	energy, changed, _ := smoothEnergy("ruby", []string{"ruby"})
	assert.Equal(t, "ruby", energy)
	assert.False(t, changed)
}

func TestSmoothEnergyMajorityOverrides(t *testing.T) {
	energy, changed, reason := smoothEnergy("ruby", []string{"sapphire", "sapphire", "ruby"})
	assert.Equal(t, "sapphire", energy)
	assert.True(t, changed)
	assert.Contains(t, reason, "Sapphire")
}

func TestSmoothEnergyKeepsRawOnAgreement(t *testing.T) {
	energy, changed, _ := smoothEnergy("ruby", []string{"ruby", "sapphire", "ruby"})
	assert.Equal(t, "ruby", energy)
	assert.False(t, changed)
}

func TestSmoothEnergyTieFavorsMostRecent(t *testing.T) {
	// One-one split in a two-entry history: the newest entry (the raw
	// classification) wins the tie.
	energy, changed, _ := smoothEnergy("diamond", []string{"emerald", "diamond"})
	assert.Equal(t, "diamond", energy)
	assert.False(t, changed)
}

func TestEnergyHistoryWindow(t *testing.T) {
	history := NewMemoryEnergyHistory()

	history.Record("owner", "ruby")
	history.Record("owner", "sapphire")
	history.Record("owner", "emerald")
	got := history.Record("owner", "diamond")

	assert.Equal(t, []string{"sapphire", "emerald", "diamond"}, got)

	// Owners do not share history.
	other := history.Record("other", "ruby")
	assert.Equal(t, []string{"ruby"}, other)
}

func TestEnergyByKeyUnknownFallsBack(t *testing.T) {
	assert.Equal(t, "Citrine", energyByKey("garnet").Name)
}
