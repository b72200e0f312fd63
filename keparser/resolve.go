package keparser

import (
	"regexp"
	"strconv"
	"strings"
)

// FallbackSuffix marks a field that could not be matched against the
// schema even after stripping trailing digits. Such fields are accepted
// as unrecognised array-type columns rather than rejected, because EMu
// table columns conventionally carry the _tab suffix in the schema.
const FallbackSuffix = "_tab"

var trailingDigits = regexp.MustCompile(`[0-9]+$`)

// fieldKey is a resolved field token: the canonical schema name plus
// the zero-based slot for indexed fields (-1 for scalars).
type fieldKey struct {
	name  string
	index int
}

// resolveField maps a raw token such as "SecCanDisplay:1" to a
// canonical field key. ok is false when the token is unusable and the
// whole line must be skipped.
func (p *Parser) resolveField(token string) (key fieldKey, ok bool) {
	key = fieldKey{name: token, index: -1}

	if base, suffix, found := strings.Cut(token, ":"); found {
		n, err := strconv.Atoi(suffix)
		if err != nil || n < 1 {
			// Some exports carry indexed fields with a missing or
			// garbled index, e.g. eCat 5500584:
			//   SecCanDisplay:1=Group Default
			//   SecCanDisplay:=Group Botany - GenHerb
			//   SecCanDisplay:3=Group Botany - SysAdmin
			// Without the index there is no slot to store the value in,
			// so the line is dropped.
			p.logger.Warn("malformed indexed field, skipping line",
				"field", token,
				"irn", p.item.IRN(),
				"line", p.lineCount.Load(),
			)
			return fieldKey{}, false
		}
		key.name = base
		key.index = n - 1 // export indices are 1-based
	}

	if _, found := p.schema.Field(key.name); found {
		return key, true
	}

	// Unknown name: a trailing run of digits usually means a numbered
	// variant of a known column.
	if stripped := trailingDigits.ReplaceAllString(key.name, ""); stripped != key.name {
		if _, found := p.schema.Field(stripped); found {
			key.name = stripped
			return key, true
		}
	}

	key.name += FallbackSuffix
	return key, true
}
