package gemini

// promptData is the payload for the insight prompt template.
type promptData struct {
	UnitType string
	Category string
	Areas    []promptArea
	Answers  []string
}

// promptArea is one sub-score rendered into the prompt.
type promptArea struct {
	Name  string
	Score int
}

// responseSchema is the JSON shape expected back from the model.
type responseSchema struct {
	Encouragement string   `json:"encouragement"`
	Insight       string   `json:"insight"`
	NextUnitHint  string   `json:"next_unit_hint"`
	Keywords      []string `json:"keywords"`
}
