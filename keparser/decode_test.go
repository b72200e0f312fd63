package keparser

import "testing"

func TestLineDecoder(t *testing.T) {
	tests := []struct {
		name string
		enc  Encoding
		raw  []byte
		want string
	}{
		{
			name: "ascii under latin1-utf8",
			enc:  EncodingLatin1UTF8,
			raw:  []byte("Group Default"),
			want: "Group Default",
		},
		{
			name: "ascii under latin1",
			enc:  EncodingLatin1,
			raw:  []byte("Group Default"),
			want: "Group Default",
		},
		{
			name: "latin byte reinterpreted",
			enc:  EncodingLatin1UTF8,
			raw:  []byte{'c', 'a', 'f', 0xE9}, // 0xE9 = e-acute in ISO-8859-2
			want: "café",
		},
		{
			name: "already-utf8 run preferred",
			enc:  EncodingLatin1UTF8,
			raw:  []byte("caf\xc3\xa9"), // UTF-8 e-acute
			want: "café",
		},
		{
			name: "latin1 strategy mojibakes utf8 runs",
			enc:  EncodingLatin1,
			raw:  []byte("caf\xc3\xa9"),
			// 0xC3 = A-breve, 0xA9 = S-caron in ISO-8859-2.
			want: "cafĂŠ",
		},
		{
			name: "empty line",
			enc:  EncodingLatin1UTF8,
			raw:  nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newLineDecoder(tt.enc)
			got, err := d.decode(tt.raw)
			if err != nil {
				t.Fatalf("decode() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("decode(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseEncoding(t *testing.T) {
	tests := []struct {
		in      string
		want    Encoding
		wantErr bool
	}{
		{in: "latin1", want: EncodingLatin1},
		{in: "latin1-utf8", want: EncodingLatin1UTF8},
		{in: "", want: EncodingLatin1UTF8},
		{in: "utf16", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseEncoding(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseEncoding(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseEncoding(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
