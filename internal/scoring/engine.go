// Package scoring computes the deterministic composite score for a unit's
// combined answer text. Identical input always produces an identical
// score: analyzers are pure lexicon lookups, caching is keyed by a
// content hash, and the optional daily delta derives from the date alone.
package scoring

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// ErrDailyLimitExceeded is returned when an owner has used all non-cached
// computations for the calendar day. Callers should suggest waiting or
// the more detailed path rather than retrying.
var ErrDailyLimitExceeded = errors.New("daily scoring limit exceeded")

// Mode describes how much structure the input carried.
type Mode string

// Scoring modes, detected from the input when not set explicitly.
const (
	ModeWish    Mode = "wish"    // one short free-text line
	ModeProblem Mode = "problem" // longer free text
	ModeQuick   Mode = "quick"   // a handful of structured responses
	ModeDeep    Mode = "deep"    // full structured questionnaire
)

// ConfidenceLevel grades how much input backed the score.
type ConfidenceLevel string

// Confidence tiers.
const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// Input is one scoring request.
type Input struct {
	// Content is the combined free text to score.
	Content string

	// OwnerKey partitions the cache, quota and energy history.
	OwnerKey string

	// Mode overrides detection when set.
	Mode Mode

	// Responses carries optional structured answers. Recognized keys:
	// "support" ("plenty"/"some") and "readiness" (0-100). All entries
	// count toward mode detection and confidence.
	Responses map[string]string

	// Emotions and Strengths are optional structured multi-answers used
	// by the deep-response analysis.
	Emotions  []string
	Strengths []string

	// IncludeDailyDelta adds the deterministic date-derived delta (±3).
	IncludeDailyDelta bool
}

// Factor records one analyzer's contribution to the base score.
type Factor struct {
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// Result is the scoring outcome.
type Result struct {
	BaseScore     int             `json:"base_score"`
	DailyDelta    int             `json:"daily_delta"`
	FinalScore    int             `json:"final_score"`
	Confidence    ConfidenceLevel `json:"confidence"`
	EnergyType    string          `json:"energy_type"`
	EnergyName    string          `json:"energy_name"`
	EnergyMeaning string          `json:"energy_meaning"`
	EnergyChanged bool            `json:"energy_changed"`
	EnergyReason  string          `json:"energy_reason"`
	Factors       []Factor        `json:"factors"`
	Mode          Mode            `json:"mode"`
	InputLength   int             `json:"input_length"`
	ResponseCount int             `json:"response_count"`
	Cached        bool            `json:"cached"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Engine computes scores against injected cache, quota and history
// stores, keeping the computation itself stateless and testable.
type Engine struct {
	cache   ScoreCache
	quota   QuotaCounter
	history EnergyHistory
	logger  *slog.Logger
	now     func() time.Time
}

// NewEngine creates a scoring engine. All stores are required; if logger
// is nil, the default logger is used.
func NewEngine(cache ScoreCache, quota QuotaCounter, history EnergyHistory, logger *slog.Logger) *Engine {
	if cache == nil || quota == nil || history == nil {
		panic("scoring engine stores cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cache:   cache,
		quota:   quota,
		history: history,
		logger:  logger.With("component", "scoring_engine"),
		now:     time.Now,
	}
}

// Score computes the deterministic result for the input.
//
// An identical (owner, content) pair within the 24-hour window returns
// the cached result verbatim with Cached set, without consuming quota.
// Past the per-day quota of non-cached computations it returns
// ErrDailyLimitExceeded instead of a score.
func (e *Engine) Score(input Input) (*Result, error) {
	now := e.now().UTC()
	content := strings.TrimSpace(input.Content)
	signature := Signature(input.OwnerKey, content)

	if cached, ok := e.cache.Get(signature, now); ok {
		e.logger.Debug("score cache hit", "signature", signature[:8])
		cached.Cached = true
		return cached, nil
	}

	day := now.Format("2006-01-02")
	if e.quota.Count(input.OwnerKey, day) >= DailyQuota {
		e.logger.Info("daily scoring limit reached", "day", day)
		return nil, ErrDailyLimitExceeded
	}

	mode := input.Mode
	if mode == "" {
		mode = detectMode(content, input.Responses)
	}

	var factors []Factor
	base := 50

	situation := analyzeSituation(content)
	base += situation.Score
	factors = append(factors, situation)

	will := analyzeWill(content)
	base += will.Score
	factors = append(factors, will)

	support := analyzeSupport(content, input.Responses)
	base += support.Score
	factors = append(factors, support)

	action := analyzeActionability(content, input.Responses)
	base += action.Score
	factors = append(factors, action)

	if bonus := min(5, len([]rune(content))/40); bonus > 0 {
		base += bonus
		factors = append(factors, Factor{
			Name:   "specificity",
			Score:  bonus,
			Reason: strconv.Itoa(len([]rune(content))) + " characters of input",
		})
	}

	if len(input.Responses) >= 5 {
		deep := analyzeDeepResponses(input.Responses, input.Emotions, input.Strengths)
		base += deep.Score
		factors = append(factors, deep)
	}

	base = clamp(base, 50, 100)

	delta := 0
	if input.IncludeDailyDelta {
		delta = DailyDelta(now)
	}

	raw := classifyEnergy(content + " " + flattenResponses(input))
	history := e.history.Record(input.OwnerKey, raw)
	energy, changed, reason := smoothEnergy(raw, history)
	energyInfo := energyByKey(energy)

	result := &Result{
		BaseScore:     base,
		DailyDelta:    delta,
		FinalScore:    clamp(base+delta, 50, 100),
		Confidence:    confidence(content, input.Responses, mode),
		EnergyType:    energy,
		EnergyName:    energyInfo.Name,
		EnergyMeaning: energyInfo.Meaning,
		EnergyChanged: changed,
		EnergyReason:  reason,
		Factors:       factors,
		Mode:          mode,
		InputLength:   len([]rune(content)),
		ResponseCount: len(input.Responses),
		CreatedAt:     now,
	}

	e.cache.Set(signature, result, now)
	e.quota.Increment(input.OwnerKey, day)

	e.logger.Debug("score computed",
		"base", result.BaseScore,
		"final", result.FinalScore,
		"confidence", result.Confidence,
		"energy", result.EnergyType,
		"mode", result.Mode)

	return result, nil
}

// Signature derives the cache key from the normalized owner and content:
// lowercased, whitespace collapsed, hashed.
func Signature(ownerKey, content string) string {
	normalized := strings.ToLower(ownerKey) + "_" +
		strings.Join(strings.Fields(strings.ToLower(content)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// DailyDelta derives the day's shared ±3 adjustment from a hash of the
// date. Every caller sees the same value on the same day; nothing random.
func DailyDelta(now time.Time) int {
	sum := sha256.Sum256([]byte(now.Format("2006-01-02")))
	seed := binary.BigEndian.Uint32(sum[:4])
	return int(seed%7) - 3
}

// detectMode infers the scoring mode from input shape.
func detectMode(content string, responses map[string]string) Mode {
	switch {
	case len(responses) >= 10:
		return ModeDeep
	case len(responses) >= 4:
		return ModeQuick
	case len([]rune(content)) >= 50:
		return ModeProblem
	default:
		return ModeWish
	}
}

// confidence grades the score by how much input backed it.
func confidence(content string, responses map[string]string, mode Mode) ConfidenceLevel {
	if mode == ModeDeep || len(responses) >= 10 {
		return ConfidenceHigh
	}
	if len(responses) >= 4 || len([]rune(content)) >= 50 {
		return ConfidenceMedium
	}
	return ConfidenceLow
}

// analyzeSituation scores the current situation, capped at 20.
// Severe negative terms cut deeper than clustered moderate negativity.
func analyzeSituation(content string) Factor {
	score := 10
	var reasons []string
	text := strings.ToLower(content)

	if match := firstMatch(text, positiveStrong); match != "" {
		score += 5
		reasons = append(reasons, "positive expression ("+match+")")
	}
	if firstMatch(text, positiveMedium) != "" {
		score += 3
	}

	switch {
	case firstMatch(text, negativeSevere) != "":
		score -= 8
		reasons = append(reasons, "severe difficulty")
	case countMatches(text, negativeHeavy) >= 2:
		score -= 4
		reasons = append(reasons, "difficult situation")
	case countMatches(text, negativeHeavy) == 1:
		score -= 2
	}

	return Factor{
		Name:   "situation",
		Score:  clamp(score, 0, 20),
		Reason: joinReasons(reasons, "neutral situation"),
	}
}

// analyzeWill scores improvement intent, capped at 20.
func analyzeWill(content string) Factor {
	score := 10
	var reasons []string
	text := strings.ToLower(content)

	if firstMatch(text, willKeywords) != "" {
		score += 5
		reasons = append(reasons, "will to improve")
	}
	if firstMatch(text, effortKeywords) != "" {
		score += 5
		reasons = append(reasons, "will to act")
	}

	return Factor{
		Name:   "will",
		Score:  clamp(score, 0, 20),
		Reason: joinReasons(reasons, "intent unclear"),
	}
}

// analyzeSupport scores the surrounding environment, capped at 15.
func analyzeSupport(content string, responses map[string]string) Factor {
	score := 8
	var reasons []string
	text := strings.ToLower(content)

	if firstMatch(text, supportKeywords) != "" {
		score += 4
		reasons = append(reasons, "supportive environment")
	}

	switch responses["support"] {
	case "plenty":
		score += 3
		reasons = append(reasons, "strong support")
	case "some":
		score++
	}

	return Factor{
		Name:   "support",
		Score:  clamp(score, 0, 15),
		Reason: joinReasons(reasons, "environment assessed"),
	}
}

// analyzeActionability scores how actionable the situation is, capped at 15.
func analyzeActionability(content string, responses map[string]string) Factor {
	score := 8
	var reasons []string
	text := strings.ToLower(content)

	if firstMatch(text, urgentKeywords) != "" {
		score += 3
		reasons = append(reasons, "timely moment")
	}
	if firstMatch(text, goalKeywords) != "" {
		score += 4
		reasons = append(reasons, "clear goal")
	}

	if raw, ok := responses["readiness"]; ok {
		readiness, err := strconv.Atoi(raw)
		if err != nil {
			readiness = 50
		}
		switch {
		case readiness >= 70:
			score += 3
			reasons = append(reasons, "high readiness")
		case readiness >= 50:
			score++
		}
	}

	return Factor{
		Name:   "actionability",
		Score:  clamp(score, 0, 15),
		Reason: joinReasons(reasons, "actionability assessed"),
	}
}

// analyzeDeepResponses scores the structured questionnaire, capped at 10.
func analyzeDeepResponses(responses map[string]string, emotions, strengths []string) Factor {
	score := 0
	var reasons []string

	switch {
	case len(responses) >= 10:
		score += 5
		reasons = append(reasons, "detailed responses")
	case len(responses) >= 5:
		score += 3
		reasons = append(reasons, "sufficient responses")
	}

	for _, emotion := range emotions {
		if firstMatch(emotion, positiveEmotions) != "" {
			score += 2
			break
		}
	}

	if len(strengths) >= 2 {
		score += 2
		reasons = append(reasons, "strengths recognized")
	}

	return Factor{
		Name:   "deep_analysis",
		Score:  min(10, score),
		Reason: joinReasons(reasons, "deep analysis complete"),
	}
}

// flattenResponses joins the structured input into one text blob for
// energy classification.
func flattenResponses(input Input) string {
	parts := make([]string, 0, len(input.Responses)+len(input.Emotions)+len(input.Strengths))
	for _, v := range input.Responses {
		parts = append(parts, v)
	}
	parts = append(parts, input.Emotions...)
	parts = append(parts, input.Strengths...)
	return strings.Join(parts, " ")
}

func firstMatch(text string, keywords []string) string {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return kw
		}
	}
	return ""
}

func countMatches(text string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			count++
		}
	}
	return count
}

func joinReasons(reasons []string, fallback string) string {
	if len(reasons) == 0 {
		return fallback
	}
	return strings.Join(reasons, ", ")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
