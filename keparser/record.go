package keparser

import (
	"bytes"
	"encoding/json"
	"iter"
)

// Record is one logical entity from an export, keyed by canonical field
// name in first-insertion order. Values are nil, bool, int, float64,
// string or a FieldList of those.
//
// A Record is mutated by the parser while its block is being consumed
// and becomes effectively immutable once emitted: the parser keeps no
// reference after handing it to the caller.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]any)}
}

// Set stores a value, keeping the field's original position when it is
// already present.
func (r *Record) Set(name string, v any) {
	if _, ok := r.values[name]; !ok {
		r.keys = append(r.keys, name)
	}
	r.values[name] = v
}

// Get returns the value for a field and whether the field is present.
func (r *Record) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Has reports whether the field is present.
func (r *Record) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Len returns the number of fields.
func (r *Record) Len() int { return len(r.keys) }

// IRN returns the record identifier, or 0 when irn has not been seen.
func (r *Record) IRN() int {
	n, _ := r.values["irn"].(int)
	return n
}

// Fields returns the field names in insertion order.
func (r *Record) Fields() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// All iterates fields and values in insertion order.
func (r *Record) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, k := range r.keys {
			if !yield(k, r.values[k]) {
				return
			}
		}
	}
}

// MarshalJSON encodes the record as a JSON object preserving field
// insertion order, which encoding/json's map encoding would not.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FieldList is the buffer behind an indexed field. Slots are addressed
// by the zero-based index derived from the raw key's 1-based suffix.
type FieldList []any

// SetIndex stores v at index, padding any unset lower slots with nil so
// that len(list) == index+1 at minimum. The (possibly reallocated) list
// is returned, like append.
func (l FieldList) SetIndex(index int, v any) FieldList {
	for len(l) <= index {
		l = append(l, nil)
	}
	l[index] = v
	return l
}
