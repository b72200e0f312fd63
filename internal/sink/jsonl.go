package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/NaturalHistoryMuseum/KEParser/keparser"
)

// JSONL writes one JSON object per record, preserving field order via
// the record's own marshaller.
type JSONL struct {
	w *bufio.Writer
}

// NewJSONL returns a sink writing to w. The caller owns w's lifetime;
// Close flushes but does not close it.
func NewJSONL(w io.Writer) *JSONL {
	return &JSONL{w: bufio.NewWriter(w)}
}

// Write implements Sink.
func (s *JSONL) Write(_ context.Context, rec *keparser.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record irn %d: %w", rec.IRN(), err)
	}
	if _, err := s.w.Write(data); err != nil {
		return err
	}
	return s.w.WriteByte('\n')
}

// Close implements Sink.
func (s *JSONL) Close(context.Context) error {
	return s.w.Flush()
}
