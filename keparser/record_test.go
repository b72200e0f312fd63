package keparser

import (
	"encoding/json"
	"reflect"
	"testing"
)

// ----------------------------------------------------------------------------
// FieldList
// ----------------------------------------------------------------------------

func TestFieldList_SetIndex(t *testing.T) {
	tests := []struct {
		name    string
		initial FieldList
		index   int
		value   any
		want    FieldList
	}{
		{
			name:  "first slot on empty list",
			index: 0,
			value: "a",
			want:  FieldList{"a"},
		},
		{
			name:  "sparse set pads lower slots with nil",
			index: 3,
			value: "d",
			want:  FieldList{nil, nil, nil, "d"},
		},
		{
			name:    "filling a padded slot keeps existing values",
			initial: FieldList{"a", nil, "c"},
			index:   1,
			value:   "b",
			want:    FieldList{"a", "b", "c"},
		},
		{
			name:    "extending keeps existing values",
			initial: FieldList{"a"},
			index:   2,
			value:   "c",
			want:    FieldList{"a", nil, "c"},
		},
		{
			name:    "overwrite in place",
			initial: FieldList{"a", "b"},
			index:   0,
			value:   "z",
			want:    FieldList{"z", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.initial.SetIndex(tt.index, tt.value)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SetIndex(%d, %v) = %#v, want %#v", tt.index, tt.value, got, tt.want)
			}
			if len(got) < tt.index+1 {
				t.Errorf("len = %d, want at least %d", len(got), tt.index+1)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Record
// ----------------------------------------------------------------------------

func TestRecord_InsertionOrder(t *testing.T) {
	rec := NewRecord()
	rec.Set("c", 1)
	rec.Set("a", 2)
	rec.Set("b", 3)
	rec.Set("a", 4) // update keeps position

	want := []string{"c", "a", "b"}
	if got := rec.Fields(); !reflect.DeepEqual(got, want) {
		t.Errorf("Fields() = %v, want %v", got, want)
	}
	if v, _ := rec.Get("a"); v != 4 {
		t.Errorf("a = %v, want 4", v)
	}
	if rec.Len() != 3 {
		t.Errorf("Len() = %d, want 3", rec.Len())
	}
}

func TestRecord_All(t *testing.T) {
	rec := NewRecord()
	rec.Set("x", 1)
	rec.Set("y", 2)

	var keys []string
	for k, v := range rec.All() {
		keys = append(keys, k)
		if v == nil {
			t.Errorf("%s = nil", k)
		}
	}
	if want := []string{"x", "y"}; !reflect.DeepEqual(keys, want) {
		t.Errorf("keys = %v, want %v", keys, want)
	}
}

func TestRecord_MarshalJSONPreservesOrder(t *testing.T) {
	rec := NewRecord()
	rec.Set("irn", 100)
	rec.Set("CatDisplayName", "Rock")
	rec.Set("SecCanDisplay", FieldList{"Group A", nil})
	rec.Set("DarYearCollected", nil)

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `{"irn":100,"CatDisplayName":"Rock","SecCanDisplay":["Group A",null],"DarYearCollected":null}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}
