package keparser

import "testing"

func TestResolveField(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		wantName  string
		wantIndex int
		wantSkip  bool
	}{
		{
			name:      "scalar field",
			token:     "CatDisplayName",
			wantName:  "CatDisplayName",
			wantIndex: -1,
		},
		{
			name:      "indexed field converts to zero-based",
			token:     "SecCanDisplay:1",
			wantName:  "SecCanDisplay",
			wantIndex: 0,
		},
		{
			name:      "higher index",
			token:     "SecCanDisplay:3",
			wantName:  "SecCanDisplay",
			wantIndex: 2,
		},
		{
			name:     "empty index suffix is unusable",
			token:    "SecCanDisplay:",
			wantSkip: true,
		},
		{
			name:     "non-numeric index suffix is unusable",
			token:    "SecCanDisplay:x",
			wantSkip: true,
		},
		{
			name:     "zero index is unusable",
			token:    "SecCanDisplay:0",
			wantSkip: true,
		},
		{
			name:      "trailing digits stripped to known field",
			token:     "DarYearCollected1",
			wantName:  "DarYearCollected",
			wantIndex: -1,
		},
		{
			name:      "unknown field falls back to _tab suffix",
			token:     "CatKeywords",
			wantName:  "CatKeywords_tab",
			wantIndex: -1,
		},
		{
			name:      "unknown indexed field falls back to _tab suffix",
			token:     "CatKeywords:2",
			wantName:  "CatKeywords_tab",
			wantIndex: 1,
		},
		{
			name:      "unknown field with no match keeps fallback name",
			token:     "Mystery",
			wantName:  "Mystery_tab",
			wantIndex: -1,
		},
	}

	p := newTestParser(t, "", Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := p.resolveField(tt.token)
			if ok == tt.wantSkip {
				t.Fatalf("resolveField(%q) ok = %v, want %v", tt.token, ok, !tt.wantSkip)
			}
			if tt.wantSkip {
				return
			}
			if key.name != tt.wantName {
				t.Errorf("name = %q, want %q", key.name, tt.wantName)
			}
			if key.index != tt.wantIndex {
				t.Errorf("index = %d, want %d", key.index, tt.wantIndex)
			}
		})
	}
}
