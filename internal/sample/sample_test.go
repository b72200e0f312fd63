package sample

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEstimateLines_SmallFileExact(t *testing.T) {
	content := strings.Repeat("irn:1=1\n###\n", 10) // 20 lines
	path := writeFile(t, "export.txt", []byte(content))

	got, err := EstimateLines(path, DefaultLength)
	if err != nil {
		t.Fatalf("EstimateLines() error = %v", err)
	}
	if got != 20 {
		t.Errorf("EstimateLines() = %d, want 20 (exact for files under the sample size)", got)
	}
}

func TestEstimateLines_ScalesBySampleRatio(t *testing.T) {
	// 100 lines of 10 bytes; a 500-byte sample sees 50 of them, so the
	// estimate scales back to 100.
	line := "123456789\n"
	path := writeFile(t, "export.txt", []byte(strings.Repeat(line, 100)))

	got, err := EstimateLines(path, 500)
	if err != nil {
		t.Fatalf("EstimateLines() error = %v", err)
	}
	if got != 100 {
		t.Errorf("EstimateLines() = %d, want 100", got)
	}
}

func TestEstimateLines_GzipWholeFile(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(strings.Repeat("irn:1=1\n###\n", 10))); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	path := writeFile(t, "export.gz", buf.Bytes())

	got, err := EstimateLines(path, DefaultLength)
	if err != nil {
		t.Fatalf("EstimateLines() error = %v", err)
	}
	if got != 20 {
		t.Errorf("EstimateLines() = %d, want 20", got)
	}
}

func TestEstimateLines_GzipTruncatedSample(t *testing.T) {
	// A sample cut mid-stream must still produce an estimate instead of
	// failing on the missing checksum.
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(strings.Repeat("CatDisplayName=specimen record\n", 2000))); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	path := writeFile(t, "export.gz", buf.Bytes())

	got, err := EstimateLines(path, int64(buf.Len()/2))
	if err != nil {
		t.Fatalf("EstimateLines() error = %v", err)
	}
	if got <= 0 {
		t.Errorf("EstimateLines() = %d, want a positive estimate", got)
	}
}

func TestEstimateLines_MissingFile(t *testing.T) {
	if _, err := EstimateLines(filepath.Join(t.TempDir(), "absent"), 100); err == nil {
		t.Error("EstimateLines() with missing file must fail")
	}
}

func TestGunzipPartial_NotGzip(t *testing.T) {
	if _, err := gunzipPartial([]byte("plain text, not gzip")); err == nil {
		t.Error("gunzipPartial() on plain text must fail")
	}
}
