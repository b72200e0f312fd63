package keparser

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Encoding selects the strategy for turning raw line bytes into text.
//
// Export files are nominally Latin-1/ISO-8859-2 but contain rare runs
// that are already UTF-8 encoded, so there are two historical reading
// strategies.
type Encoding int

const (
	// EncodingLatin1UTF8 is the two-stage guess (default): bytes that
	// verify as UTF-8 are taken as UTF-8, everything else is
	// reinterpreted as Latin-1. Bytes that satisfy neither reading are
	// a fatal decoding failure.
	EncodingLatin1UTF8 Encoding = iota

	// EncodingLatin1 reads every byte as Latin-1/ISO-8859-2, matching
	// the oldest importer behaviour. UTF-8 runs come out mojibaked.
	EncodingLatin1
)

// String implements fmt.Stringer.
func (e Encoding) String() string {
	switch e {
	case EncodingLatin1:
		return "latin1"
	case EncodingLatin1UTF8:
		return "latin1-utf8"
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

// ParseEncoding converts a config string to an Encoding.
func ParseEncoding(s string) (Encoding, error) {
	switch s {
	case "latin1":
		return EncodingLatin1, nil
	case "latin1-utf8", "":
		return EncodingLatin1UTF8, nil
	default:
		return 0, fmt.Errorf("unknown encoding strategy %q", s)
	}
}

// lineDecoder normalises the raw bytes of one line into text, isolated
// so the coercion logic only ever sees clean strings.
//
// Not safe for concurrent use; each parser owns its own decoder.
type lineDecoder struct {
	enc    Encoding
	latin1 *encoding.Decoder
}

func newLineDecoder(enc Encoding) *lineDecoder {
	return &lineDecoder{
		enc: enc,
		// ISO-8859-2 rather than -1: the exports come from central
		// European installations and the two only differ above 0xA0.
		latin1: charmap.ISO8859_2.NewDecoder(),
	}
}

// decode returns the text of one raw line (terminator already removed).
func (d *lineDecoder) decode(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}

	// ASCII reads the same under every strategy.
	if isASCII(raw) {
		return string(raw), nil
	}

	if d.enc == EncodingLatin1UTF8 && utf8.Valid(raw) {
		// Already-UTF-8 run; a Latin-1 reinterpretation would mojibake it.
		return string(raw), nil
	}

	s, err := d.latin1.String(string(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadEncoding, err)
	}
	return s, nil
}

// isASCII reports whether every byte is < 0x80. Fast path: almost all
// export content is plain ASCII.
func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}
