package keparser

import (
	"strconv"
	"strings"

	"github.com/NaturalHistoryMuseum/KEParser/schema"
)

// DefaultTypeOverrides forces the effective type of fields whose schema
// declaration does not survive contact with legacy data. The admin
// date/time columns are declared as numeric in older dictionaries but
// contain plain date and time text, so they must coerce as text.
//
// Consulted before the schema's own declared type; replaceable via
// Options.TypeOverrides and disabled via Options.NoTypeOverrides.
var DefaultTypeOverrides = map[string]schema.DataType{
	"AdmDateInserted": schema.TypeText,
	"AdmDateModified": schema.TypeText,
	"AdmTimeInserted": schema.TypeText,
	"AdmTimeModified": schema.TypeText,
}

// fieldType resolves the effective data type for a canonical field:
// override table first, then the schema column mapping.
func (p *Parser) fieldType(name string) (schema.DataType, bool) {
	if t, ok := p.overrides[name]; ok {
		return t, true
	}
	f, ok := p.schema.Field(name)
	if !ok {
		return "", false
	}
	return f.DataType, true
}

// coerce turns a decoded raw value into the typed value stored on the
// record. It never fails: malformed numeric input degrades to nil with
// a diagnostic, because legacy export data is known to be inconsistent
// and one bad field must not abort the import.
func (p *Parser) coerce(name string, typ schema.DataType, value string) any {
	if value == "" {
		return nil
	}

	switch typ {
	case schema.TypeInteger, schema.TypeFloat:
		return p.coerceNumeric(name, typ, value)
	}

	// Yes/No become booleans so they can be stored as such downstream;
	// the match is exact, any other casing stays text.
	switch value {
	case "yes", "Yes":
		return true
	case "no", "No":
		return false
	case "0":
		// The dialect treats a bare zero on a non-numeric field as
		// "no value". Numeric fields never reach this rule.
		return nil
	}

	return value
}

func (p *Parser) coerceNumeric(name string, typ schema.DataType, value string) any {
	if v, ok := parseNumber(typ, value); ok {
		return v
	}

	// A lot of the legacy data is a range with both ends the same,
	// e.g. "1966 - 1966"; recover the repeated value. Anything else
	// becomes nil.
	if parts := strings.Split(value, "-"); len(parts) == 2 {
		lo, hi := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if lo == hi {
			return p.coerce(name, typ, lo)
		}
	}

	p.logger.Warn("unparsable numeric value, using null",
		"field", name,
		"value", value,
		"irn", p.item.IRN(),
		"line", p.lineCount.Load(),
	)
	return nil
}

// parseNumber attempts the native numeric parse for Integer and Float
// columns. Whitespace padding is tolerated.
func parseNumber(typ schema.DataType, s string) (any, bool) {
	s = strings.TrimSpace(s)
	if typ == schema.TypeInteger {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, false
		}
		return n, true
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	return f, true
}
