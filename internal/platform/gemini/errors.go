package gemini

import "errors"

// ErrEmptyRequest indicates a Generate call with no answers to work from.
var ErrEmptyRequest = errors.New("insight request has no answers")
