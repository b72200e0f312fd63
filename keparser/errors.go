package keparser

import (
	"errors"
	"fmt"
)

// Sentinel conditions wrapped by ParseError, for errors.Is checks.
var (
	// ErrUnknownField is reported when a resolved field has no type in
	// the override table or the schema and Options.UnknownFields is
	// UnknownFieldError.
	ErrUnknownField = errors.New("field not found in schema")

	// ErrBadEncoding is reported when a line survives neither the
	// Latin-1 nor the UTF-8 interpretation.
	ErrBadEncoding = errors.New("undecodable line")

	// ErrInsertDate is reported when insert-date derivation is enabled
	// and a source field is missing or does not match its layout.
	ErrInsertDate = errors.New("cannot derive insert date")
)

// ParseError is the fatal error type surfaced by the parser. It carries
// the offending line number and, when one has been seen, the irn of the
// record under construction.
type ParseError struct {
	Line int64
	IRN  int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	s := fmt.Sprintf("line %d", e.Line)
	if e.IRN != 0 {
		s += fmt.Sprintf(" (irn %d)", e.IRN)
	}
	s += ": " + e.Msg
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *ParseError) Unwrap() error { return e.Err }

// fatal builds a ParseError at the parser's current position.
func (p *Parser) fatal(msg string, err error) *ParseError {
	return &ParseError{
		Line: p.lineCount.Load(),
		IRN:  p.item.IRN(),
		Msg:  msg,
		Err:  err,
	}
}
