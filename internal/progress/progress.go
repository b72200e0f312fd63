// Package progress renders import progress from the parser's running
// counters. The parser only exposes numbers; all formatting and rate
// limiting of progress output lives here.
package progress

import "fmt"

// Source is the counter surface exposed by a running parser.
type Source interface {
	LineCount() int64
	RecordCount() int64
	EstimatedLines() int64
}

// Snapshot is a point-in-time view of an import, safe to serialize.
type Snapshot struct {
	Lines          int64   `json:"lines"`
	Records        int64   `json:"records"`
	EstimatedLines int64   `json:"estimated_lines"`
	Percent        float64 `json:"percent"`
}

// Reporter samples a Source. It owns no goroutine; callers poll it from
// wherever progress is rendered (the import loop, the status endpoint).
type Reporter struct {
	source Source
}

// NewReporter returns a reporter over src.
func NewReporter(src Source) *Reporter {
	return &Reporter{source: src}
}

// Snapshot returns the current counters with a percentage estimate.
// Percent is 0 when the total line estimate is unknown.
func (r *Reporter) Snapshot() Snapshot {
	s := Snapshot{
		Lines:          r.source.LineCount(),
		Records:        r.source.RecordCount(),
		EstimatedLines: r.source.EstimatedLines(),
	}
	if s.EstimatedLines > 0 {
		s.Percent = float64(s.Lines) / float64(s.EstimatedLines) * 100
	}
	return s
}

// Status returns a one-line progress string every modulus records and
// "" otherwise, so the import loop can call it unconditionally.
func (r *Reporter) Status(modulus int) string {
	s := r.Snapshot()
	if modulus <= 0 || s.Records == 0 || s.Records%int64(modulus) != 0 {
		return ""
	}
	if s.EstimatedLines > 0 {
		return fmt.Sprintf("%d records\t%d/%d lines\test. %.1f%%",
			s.Records, s.Lines, s.EstimatedLines, s.Percent)
	}
	return fmt.Sprintf("%d records\t%d lines", s.Records, s.Lines)
}
