package core

import (
	"errors"
	"fmt"
)

var (
	// ErrTotalParseFailure is returned when an email body contains no
	// usable header fields and no assignment lines.
	ErrTotalParseFailure = errors.New("no usable content in report")

	// ErrEmptyReport signals that a run parsed zero courses. Callers
	// must not overwrite a previously good snapshot with such a report.
	ErrEmptyReport = errors.New("zero courses parsed")
)

// HeaderMissingError reports a progress report missing a mandatory
// header field. It is fatal for that course's parse only.
type HeaderMissingError struct {
	Field string
}

func (e *HeaderMissingError) Error() string {
	return fmt.Sprintf("report header missing %q", e.Field)
}

// MalformedLineError reports a line that looks like an assignment row
// but cannot be decomposed into date, name, grade and score. The
// parser skips the line and continues.
type MalformedLineError struct {
	LineNum int
	Line    string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("malformed assignment line %d: %s", e.LineNum, e.Line)
}
