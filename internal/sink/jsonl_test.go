package sink

import (
	"context"
	"strings"
	"testing"

	"github.com/NaturalHistoryMuseum/KEParser/keparser"
)

func TestJSONL(t *testing.T) {
	var buf strings.Builder
	s := NewJSONL(&buf)

	rec1 := keparser.NewRecord()
	rec1.Set("irn", 100)
	rec1.Set("CatDisplayName", "Rock")
	rec1.Set("SecCanDisplay", keparser.FieldList{"Group A", "Group B"})

	rec2 := keparser.NewRecord()
	rec2.Set("irn", 101)
	rec2.Set("CatDisplayName", nil)

	ctx := context.Background()
	for _, rec := range []*keparser.Record{rec1, rec2} {
		if err := s.Write(ctx, rec); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	want := `{"irn":100,"CatDisplayName":"Rock","SecCanDisplay":["Group A","Group B"]}
{"irn":101,"CatDisplayName":null}
`
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}
