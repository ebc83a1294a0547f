package common

import "fmt"

// ParseError reports a date or amount token that could not be read from an
// otherwise recognised movement line.
type ParseError struct {
	Field string
	Token string
	Line  string
	Err   error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("cannot parse %s %q", e.Field, e.Token)
	if e.Line != "" {
		msg += fmt.Sprintf(" in line %q", e.Line)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
