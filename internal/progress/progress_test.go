package progress

import (
	"strings"
	"testing"
)

type stubSource struct {
	lines, records, estimated int64
}

func (s *stubSource) LineCount() int64      { return s.lines }
func (s *stubSource) RecordCount() int64    { return s.records }
func (s *stubSource) EstimatedLines() int64 { return s.estimated }

func TestSnapshot(t *testing.T) {
	r := NewReporter(&stubSource{lines: 250, records: 10, estimated: 1000})

	snap := r.Snapshot()
	if snap.Lines != 250 || snap.Records != 10 || snap.EstimatedLines != 1000 {
		t.Errorf("Snapshot() = %+v, want counters 250/10/1000", snap)
	}
	if snap.Percent != 25 {
		t.Errorf("Percent = %v, want 25", snap.Percent)
	}
}

func TestSnapshot_NoEstimate(t *testing.T) {
	r := NewReporter(&stubSource{lines: 250, records: 10})

	if snap := r.Snapshot(); snap.Percent != 0 {
		t.Errorf("Percent = %v, want 0 when estimate is unknown", snap.Percent)
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name    string
		source  stubSource
		modulus int
		want    string // "" or a substring of the status line
	}{
		{
			name:    "on the modulus",
			source:  stubSource{lines: 500, records: 100, estimated: 1000},
			modulus: 100,
			want:    "100 records",
		},
		{
			name:    "off the modulus",
			source:  stubSource{lines: 500, records: 101, estimated: 1000},
			modulus: 100,
			want:    "",
		},
		{
			name:    "zero records stays quiet",
			source:  stubSource{lines: 5, estimated: 1000},
			modulus: 100,
			want:    "",
		},
		{
			name:    "no estimate still reports",
			source:  stubSource{lines: 500, records: 100},
			modulus: 100,
			want:    "100 records",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewReporter(&tt.source).Status(tt.modulus)
			if tt.want == "" {
				if got != "" {
					t.Errorf("Status() = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("Status() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}
