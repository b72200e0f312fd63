package keparser

import (
	"fmt"
	"log/slog"

	"github.com/NaturalHistoryMuseum/KEParser/schema"
)

// UnknownFieldPolicy selects what happens when a resolved field has no
// type in the override table or the schema.
type UnknownFieldPolicy int

const (
	// UnknownFieldSkip drops the field with a diagnostic (default).
	UnknownFieldSkip UnknownFieldPolicy = iota

	// UnknownFieldError aborts the parse with ErrUnknownField. This is
	// the historical strict behaviour; useful when a schema drift must
	// not go unnoticed.
	UnknownFieldError
)

// String implements fmt.Stringer.
func (u UnknownFieldPolicy) String() string {
	switch u {
	case UnknownFieldSkip:
		return "skip"
	case UnknownFieldError:
		return "error"
	default:
		return fmt.Sprintf("UnknownFieldPolicy(%d)", int(u))
	}
}

// ParseUnknownFieldPolicy converts a config string to a policy.
func ParseUnknownFieldPolicy(s string) (UnknownFieldPolicy, error) {
	switch s {
	case "skip", "":
		return UnknownFieldSkip, nil
	case "error":
		return UnknownFieldError, nil
	default:
		return 0, fmt.Errorf("unknown field policy %q", s)
	}
}

// Default source fields and layouts for insert-date derivation.
const (
	DefaultInsertDateField = "AdmDateInserted"
	DefaultInsertTimeField = "AdmTimeInserted"
	DefaultDateLayout      = "2006-01-02"
	DefaultTimeLayout      = "15:04:05"

	// InsertDateKey is the derived field's name on the record.
	InsertDateKey = "ISODateInserted"
)

// Options configures a Parser. The zero value is ready to use: Single
// flatten mode, skip-on-unknown fields, the latin1-utf8 decoding
// strategy, the built-in type overrides and no derived insert date.
type Options struct {
	// Flatten is the policy applied to indexed fields at record
	// finalization.
	Flatten FlattenMode

	// Encoding is the line decoding strategy.
	Encoding Encoding

	// UnknownFields selects skip-with-diagnostic or hard error for
	// fields absent from both the override table and the schema.
	UnknownFields UnknownFieldPolicy

	// NoTypeOverrides disables the built-in type override table so the
	// schema's declared types apply everywhere.
	NoTypeOverrides bool

	// TypeOverrides replaces the built-in override table when non-nil.
	TypeOverrides map[string]schema.DataType

	// DeriveInsertDate synthesises ISODateInserted at record
	// finalization from the two source fields below. A missing or
	// unparsable source field is a fatal ParseError.
	DeriveInsertDate bool

	// InsertDateField and InsertTimeField name the source fields for
	// derivation; empty values use the Adm defaults.
	InsertDateField string
	InsertTimeField string

	// DateLayout and TimeLayout are the expected source text formats in
	// time.Parse reference notation; empty values use the defaults.
	DateLayout string
	TimeLayout string

	// EstimatedLines is the externally computed estimated total line
	// count, exposed back through the parser for progress reporting.
	// The parser itself does no I/O to obtain it.
	EstimatedLines int64

	// Logger receives non-fatal diagnostics. Defaults to slog.Default.
	Logger *slog.Logger
}

// withDefaults fills unset options.
func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.InsertDateField == "" {
		o.InsertDateField = DefaultInsertDateField
	}
	if o.InsertTimeField == "" {
		o.InsertTimeField = DefaultInsertTimeField
	}
	if o.DateLayout == "" {
		o.DateLayout = DefaultDateLayout
	}
	if o.TimeLayout == "" {
		o.TimeLayout = DefaultTimeLayout
	}
	return o
}

// validate rejects out-of-range enum values early, so a typo in config
// plumbing fails at construction instead of mid-parse.
func (o Options) validate() error {
	if o.Flatten < FlattenSingle || o.Flatten > FlattenAll {
		return fmt.Errorf("invalid flatten mode %d", int(o.Flatten))
	}
	if o.Encoding < EncodingLatin1UTF8 || o.Encoding > EncodingLatin1 {
		return fmt.Errorf("invalid encoding strategy %d", int(o.Encoding))
	}
	if o.UnknownFields < UnknownFieldSkip || o.UnknownFields > UnknownFieldError {
		return fmt.Errorf("invalid unknown-field policy %d", int(o.UnknownFields))
	}
	return nil
}
