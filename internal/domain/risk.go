package domain

// RiskLevel is the safety classification attached to answer text and,
// cumulatively, to a session.
type RiskLevel string

// Risk levels in escalation order.
const (
	RiskGreen  RiskLevel = "GREEN"
	RiskYellow RiskLevel = "YELLOW"
	RiskRed    RiskLevel = "RED"
)

// riskRank orders levels for escalation comparisons.
var riskRank = map[RiskLevel]int{
	RiskGreen:  0,
	RiskYellow: 1,
	RiskRed:    2,
}

// IsValid reports whether the risk level is one of the defined values.
func (r RiskLevel) IsValid() bool {
	_, ok := riskRank[r]
	return ok
}

// Escalate returns the higher of the two levels. A session's risk level
// only ever rises within a session: YELLOW is sticky and never downgrades
// to GREEN, and RED overrides everything.
func (r RiskLevel) Escalate(other RiskLevel) RiskLevel {
	if riskRank[other] > riskRank[r] {
		return other
	}
	return r
}
