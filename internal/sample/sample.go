// Package sample estimates the total line count of an export file from
// a bounded leading sample, so progress can be reported without reading
// the whole file twice.
//
// For gzip-compressed exports the sample covers the first compressed
// bytes only, so decompression is explicitly best-effort: the stream is
// read as far as it goes and trailing integrity errors (truncated
// stream, missing checksum) are ignored.
package sample

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// DefaultLength is the sample size in bytes.
const DefaultLength = 1_000_000

// EstimateLines estimates the total line count of the file at path by
// counting lines in its first sampleLen bytes and scaling by file size.
// Files smaller than the sample are counted exactly.
//
// For .gz files the scaling ratio is against the compressed size, like
// the sample itself; the estimate is rough but serves progress display.
func EstimateLines(path string, sampleLen int64) (int64, error) {
	if sampleLen <= 0 {
		sampleLen = DefaultLength
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat input: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	buf := make([]byte, sampleLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return 0, fmt.Errorf("read sample: %w", err)
	}
	buf = buf[:n]

	if strings.Contains(path, ".gz") {
		buf, err = gunzipPartial(buf)
		if err != nil {
			return 0, err
		}
	}

	lines := int64(bytes.Count(buf, []byte("\n")))

	// Whole file fits in the sample; the count is exact.
	if int64(n) >= info.Size() {
		return lines, nil
	}

	return info.Size() * lines / sampleLen, nil
}

// gunzipPartial decompresses as much of a truncated gzip prefix as
// possible. Errors after the first decompressed byte are expected (the
// stream is cut mid-block and has no valid checksum) and discarded;
// an error before any output means the data is not gzip at all.
func gunzipPartial(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip sample: %w", err)
	}
	defer zr.Close()

	var out bytes.Buffer
	if _, err := io.Copy(&out, zr); err != nil && out.Len() == 0 {
		return nil, fmt.Errorf("gzip sample: %w", err)
	}
	return out.Bytes(), nil
}
