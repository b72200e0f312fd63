package keparser

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/NaturalHistoryMuseum/KEParser/schema"
)

// Terminator is the three-character record delimiter line.
const Terminator = "###"

// Scanner buffer sizes. Narrative and multimedia fields can run long,
// well past bufio's default 64KB token limit.
const (
	scanBufSize = 64 * 1024
	scanMaxSize = 4 * 1024 * 1024
)

// Parser consumes one export stream line by line and produces finalized
// records on demand. It is a forward-only, non-restartable, pull-based
// iterator: the caller drives progress via Next (or Records) and
// stopping early is always safe because partial records are never
// exposed.
type Parser struct {
	scanner   *bufio.Scanner
	schema    *schema.Module
	opts      Options
	logger    *slog.Logger
	decoder   *lineDecoder
	overrides map[string]schema.DataType

	// item is the record under construction; exactly one at a time.
	item *Record

	// Counters are atomics only so an external progress reporter may
	// read them while a parse runs; the parser itself is
	// single-threaded.
	lineCount atomic.Int64
	itemCount atomic.Int64

	err error // sticky: io.EOF or the fatal error that ended the parse
}

// New returns a parser over r for the given module schema. The schema
// is referenced, not copied, and must not be mutated while parsing.
func New(r io.Reader, mod *schema.Module, opts Options) (*Parser, error) {
	if mod == nil {
		return nil, errors.New("keparser: nil schema module")
	}
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("keparser: %w", err)
	}
	opts = opts.withDefaults()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, scanBufSize), scanMaxSize)

	p := &Parser{
		scanner: scanner,
		schema:  mod,
		opts:    opts,
		logger:  opts.Logger,
		decoder: newLineDecoder(opts.Encoding),
		item:    NewRecord(),
	}

	switch {
	case opts.TypeOverrides != nil:
		p.overrides = opts.TypeOverrides
	case !opts.NoTypeOverrides:
		p.overrides = DefaultTypeOverrides
	}

	return p, nil
}

// Next returns the next finalized record. It returns io.EOF when the
// stream is exhausted; a partial record dangling at end of input is
// discarded, not emitted. Any other error is fatal and sticky.
func (p *Parser) Next() (*Record, error) {
	if p.err != nil {
		return nil, p.err
	}

	for p.scanner.Scan() {
		p.lineCount.Add(1)

		line := bytes.TrimSuffix(p.scanner.Bytes(), []byte("\r"))
		if len(line) == 0 {
			continue
		}

		if string(line) == Terminator {
			rec := p.item
			p.item = NewRecord()
			if err := p.finalize(rec); err != nil {
				p.err = err
				return nil, err
			}
			p.itemCount.Add(1)
			return rec, nil
		}

		if err := p.consumeLine(line); err != nil {
			p.err = err
			return nil, err
		}
	}

	if err := p.scanner.Err(); err != nil {
		p.err = fmt.Errorf("keparser: read input: %w", err)
		return nil, p.err
	}

	if p.item.Len() > 0 {
		p.logger.Warn("discarding partial record at end of input",
			"irn", p.item.IRN(),
			"fields", p.item.Len(),
		)
	}
	p.err = io.EOF
	return nil, io.EOF
}

// Records returns a range-over-func view of the remaining records.
// Iteration stops at end of input or after yielding a fatal error.
func (p *Parser) Records() iter.Seq2[*Record, error] {
	return func(yield func(*Record, error) bool) {
		for {
			rec, err := p.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}
}

// consumeLine handles one non-blank, non-terminator line.
func (p *Parser) consumeLine(line []byte) error {
	eq := bytes.IndexByte(line, '=')
	if eq < 0 {
		// Exports contain stray noise: whitespace runs, lines with a
		// single letter. Tolerated with a diagnostic; only =-bearing
		// lines can be fatal.
		if len(bytes.TrimSpace(line)) == 0 {
			p.logger.Warn("empty line", "line", p.lineCount.Load())
		} else {
			p.logger.Warn("malformed key=value line, skipping",
				"content", string(line),
				"line", p.lineCount.Load(),
				"irn", p.item.IRN(),
			)
		}
		return nil
	}

	// Only the first = splits; further = characters belong to the value.
	token := string(line[:eq])
	rawValue := line[eq+1:]

	// rownum is texexport bookkeeping, not record data.
	if token == "rownum" {
		return nil
	}

	// irn anchors the record: parsed as an integer ahead of normal
	// typing so diagnostics for later fields can reference it.
	if token == "irn:1" {
		n, err := strconv.Atoi(strings.TrimSpace(string(rawValue)))
		if err != nil {
			return p.fatal("invalid irn", err)
		}
		p.item.Set("irn", n)
		return nil
	}

	value, err := p.decoder.decode(rawValue)
	if err != nil {
		return p.fatal("decode value of "+token, err)
	}

	key, usable := p.resolveField(token)
	if !usable {
		return nil
	}

	typ, known := p.fieldType(key.name)
	if !known {
		if p.opts.UnknownFields == UnknownFieldError {
			return p.fatal("field "+key.name, ErrUnknownField)
		}
		p.logger.Debug("unknown field, skipping",
			"field", key.name,
			"irn", p.item.IRN(),
			"line", p.lineCount.Load(),
		)
		return nil
	}

	v := p.coerce(key.name, typ, value)

	if key.index < 0 {
		p.item.Set(key.name, v)
		return nil
	}

	existing, present := p.item.Get(key.name)
	list, isList := existing.(FieldList)
	if present && !isList {
		// The field arrived as a scalar first; keep it as slot 0 of the
		// new list rather than dropping it.
		list = FieldList{existing}
	}
	p.item.Set(key.name, list.SetIndex(key.index, v))
	return nil
}

// finalize applies the flatten policy and optional derived fields to a
// completed record.
func (p *Parser) finalize(rec *Record) error {
	flattenRecord(rec, p.opts.Flatten)
	if p.opts.DeriveInsertDate {
		if err := p.deriveInsertDate(rec); err != nil {
			return err
		}
	}
	return nil
}

// deriveInsertDate synthesises ISODateInserted from the configured
// date and time source fields.
func (p *Parser) deriveInsertDate(rec *Record) error {
	date, ok := stringField(rec, p.opts.InsertDateField)
	if !ok {
		return p.fatalFor(rec, "missing field "+p.opts.InsertDateField, ErrInsertDate)
	}
	clock, ok := stringField(rec, p.opts.InsertTimeField)
	if !ok {
		return p.fatalFor(rec, "missing field "+p.opts.InsertTimeField, ErrInsertDate)
	}

	ts, err := time.Parse(p.opts.DateLayout+" "+p.opts.TimeLayout, date+" "+clock)
	if err != nil {
		return p.fatalFor(rec, "unparsable insert date", ErrInsertDate)
	}

	rec.Set(InsertDateKey, ts.Format(time.RFC3339))
	return nil
}

func stringField(rec *Record, name string) (string, bool) {
	v, ok := rec.Get(name)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// fatalFor is fatal with the finalized record's irn rather than the
// fresh in-progress one.
func (p *Parser) fatalFor(rec *Record, msg string, err error) *ParseError {
	return &ParseError{
		Line: p.lineCount.Load(),
		IRN:  rec.IRN(),
		Msg:  msg,
		Err:  err,
	}
}

// LineCount returns the number of input lines consumed so far.
func (p *Parser) LineCount() int64 { return p.lineCount.Load() }

// RecordCount returns the number of records produced so far.
func (p *Parser) RecordCount() int64 { return p.itemCount.Load() }

// EstimatedLines returns the externally supplied estimated total line
// count, 0 when unknown.
func (p *Parser) EstimatedLines() int64 { return p.opts.EstimatedLines }
