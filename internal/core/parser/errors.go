package parser

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when the log holds no non-blank lines.
var ErrEmptyInput = errors.New("log is empty")

// MalformedLineWarning describes a line that was skipped. It is never fatal.
type MalformedLineWarning struct {
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

func (w MalformedLineWarning) Error() string {
	return fmt.Sprintf("line %d: %s: %q", w.Line, w.Reason, w.Text)
}
