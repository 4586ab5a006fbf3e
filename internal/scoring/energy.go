package scoring

import (
	"strings"
	"sync"
)

// EnergyType groups the keywords of one energy category.
type EnergyType struct {
	Key      string
	Name     string
	Meaning  string
	Keywords []string
}

// EnergyTypes is the ordered category table. Order matters: ties in
// keyword hits keep the earlier declaration, and DefaultEnergy applies
// when nothing matches.
var EnergyTypes = []EnergyType{
	{
		Key:      "ruby",
		Name:     "Ruby",
		Meaning:  "passion and courage",
		Keywords: []string{"passion", "courage", "challenge", "action", "bold", "start", "change"},
	},
	{
		Key:      "sapphire",
		Name:     "Sapphire",
		Meaning:  "stability and wisdom",
		Keywords: []string{"stability", "wisdom", "peace", "trust", "calm", "plan", "careful"},
	},
	{
		Key:      "emerald",
		Name:     "Emerald",
		Meaning:  "growth and healing",
		Keywords: []string{"growth", "healing", "recovery", "health", "relationship", "improve", "develop"},
	},
	{
		Key:      "diamond",
		Name:     "Diamond",
		Meaning:  "clear resolve",
		Keywords: []string{"resolve", "clarity", "goal", "success", "achieve", "promotion", "decision"},
	},
	{
		Key:      "citrine",
		Name:     "Citrine",
		Meaning:  "positivity and connection",
		Keywords: []string{"positive", "communication", "conversation", "understanding", "reconcile", "closeness", "connection"},
	},
}

// DefaultEnergy is returned when no category keyword matches.
const DefaultEnergy = "citrine"

// energyByKey resolves a category key to its table entry.
func energyByKey(key string) EnergyType {
	for _, et := range EnergyTypes {
		if et.Key == key {
			return et
		}
	}
	return energyByKey(DefaultEnergy)
}

// classifyEnergy picks the category with the most keyword hits in the
// text. Strictly more hits wins; ties keep the earlier declaration.
func classifyEnergy(text string) string {
	normalized := strings.ToLower(text)

	best := DefaultEnergy
	bestHits := 0
	for _, et := range EnergyTypes {
		hits := 0
		for _, kw := range et.Keywords {
			if strings.Contains(normalized, kw) {
				hits++
			}
		}
		if hits > bestHits {
			bestHits = hits
			best = et.Key
		}
	}
	return best
}

// EnergyHistory keeps the rolling raw classifications per owner used for
// majority-vote smoothing. Implementations must be safe for concurrent use.
type EnergyHistory interface {
	// Record appends the raw classification for the owner and returns the
	// retained history, oldest first, including the new value. At most the
	// last three classifications are kept.
	Record(ownerKey, energy string) []string
}

// historySize bounds the rolling window used for smoothing.
const historySize = 3

// MemoryEnergyHistory is the process-local EnergyHistory implementation.
// Like the score cache it is per-process; instances behind a load balancer
// smooth independently.
type MemoryEnergyHistory struct {
	mu      sync.Mutex
	entries map[string][]string
}

// NewMemoryEnergyHistory creates an empty history.
func NewMemoryEnergyHistory() *MemoryEnergyHistory {
	return &MemoryEnergyHistory{entries: make(map[string][]string)}
}

// Ensure MemoryEnergyHistory implements the EnergyHistory interface
var _ EnergyHistory = (*MemoryEnergyHistory)(nil)

// Record implements EnergyHistory.Record.
func (h *MemoryEnergyHistory) Record(ownerKey, energy string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	history := append(h.entries[ownerKey], energy)
	if len(history) > historySize {
		history = history[len(history)-historySize:]
	}
	h.entries[ownerKey] = history

	out := make([]string, len(history))
	copy(out, history)
	return out
}

// smoothEnergy applies the majority vote over the rolling history.
// Counting iterates newest to oldest with a strict comparison, so a tie
// favors the most recent classification.
func smoothEnergy(raw string, history []string) (energy string, changed bool, reason string) {
	if len(history) < 2 {
		return raw, false, "suggested energy (" + energyByKey(raw).Name + ")"
	}

	counts := make(map[string]int, len(history))
	majority := raw
	maxCount := 0
	for i := len(history) - 1; i >= 0; i-- {
		counts[history[i]]++
		if counts[history[i]] > maxCount {
			maxCount = counts[history[i]]
			majority = history[i]
		}
	}

	if majority != raw {
		return majority, true, "kept consistent with recent analyses (" + energyByKey(majority).Name + ")"
	}
	return raw, false, "current energy (" + energyByKey(raw).Name + ")"
}
