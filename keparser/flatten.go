package keparser

import (
	"fmt"
	"strconv"
	"strings"
)

// FlattenMode controls what happens to indexed-field lists when a
// record is finalized.
type FlattenMode int

const (
	// FlattenSingle collapses lists of exactly one element to that
	// element; longer lists stay lists. This is the default.
	FlattenSingle FlattenMode = iota

	// FlattenNone leaves every indexed field as a list, even length 1.
	FlattenNone

	// FlattenAll collapses single-element lists like FlattenSingle and
	// joins longer lists into one text value with "; ".
	FlattenAll
)

// String implements fmt.Stringer.
func (m FlattenMode) String() string {
	switch m {
	case FlattenSingle:
		return "single"
	case FlattenNone:
		return "none"
	case FlattenAll:
		return "all"
	default:
		return fmt.Sprintf("FlattenMode(%d)", int(m))
	}
}

// ParseFlattenMode converts a config string to a FlattenMode.
func ParseFlattenMode(s string) (FlattenMode, error) {
	switch s {
	case "single", "":
		return FlattenSingle, nil
	case "none":
		return FlattenNone, nil
	case "all":
		return FlattenAll, nil
	default:
		return 0, fmt.Errorf("unknown flatten mode %q", s)
	}
}

// flattenRecord applies the flatten policy once, at record
// finalization. Non-list fields are untouched, so flattening a record
// with no list-valued fields is a no-op under every mode.
func flattenRecord(rec *Record, mode FlattenMode) {
	if mode == FlattenNone {
		return
	}

	for _, name := range rec.Fields() {
		v, _ := rec.Get(name)
		list, ok := v.(FieldList)
		if !ok {
			continue
		}

		switch {
		case len(list) == 1:
			rec.Set(name, list[0])
		case mode == FlattenAll:
			rec.Set(name, joinValues(list))
		}
	}
}

// joinValues renders a multi-value list as one "; "-separated string.
// Nil entries render empty; numbers use a locale-independent format.
func joinValues(list FieldList) string {
	parts := make([]string, len(list))
	for i, v := range list {
		parts[i] = scalarString(v)
	}
	return strings.Join(parts, "; ")
}

func scalarString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
