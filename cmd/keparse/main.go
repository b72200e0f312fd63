// Command keparse converts a KE EMu texexport dump into typed records.
//
// Usage:
//
//	keparse <export-file>
//
// The input may be plain text or gzip-compressed (.gz). All other
// settings come from the environment; see internal/config.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/klauspost/compress/gzip"

	"github.com/NaturalHistoryMuseum/KEParser/internal/config"
	"github.com/NaturalHistoryMuseum/KEParser/internal/logging"
	"github.com/NaturalHistoryMuseum/KEParser/internal/progress"
	"github.com/NaturalHistoryMuseum/KEParser/internal/sample"
	"github.com/NaturalHistoryMuseum/KEParser/internal/sink"
	"github.com/NaturalHistoryMuseum/KEParser/internal/web"
	"github.com/NaturalHistoryMuseum/KEParser/keparser"
	"github.com/NaturalHistoryMuseum/KEParser/schema"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: keparse <export-file>")
		os.Exit(2)
	}
	inputPath := os.Args[1]

	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	// Cancel the import on SIGINT/SIGTERM; stopping between records is
	// always safe.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, inputPath); err != nil {
		slog.Error("import failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, inputPath string) error {
	module := cfg.Schema.Module
	if module == "" {
		module = moduleName(inputPath)
	}

	slog.Info("starting import",
		"input", inputPath,
		"module", module,
		"sink", cfg.Sink.Type,
	)

	// Estimate total lines from a bounded sample before the real pass.
	estimated, err := sample.EstimateLines(inputPath, cfg.Parser.SampleLength)
	if err != nil {
		slog.Warn("line estimate unavailable", "error", err)
		estimated = 0
	}

	mod, err := resolveSchema(cfg, module)
	if err != nil {
		return err
	}

	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	var input io.Reader = f
	if strings.HasSuffix(inputPath, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("open gzip input: %w", err)
		}
		defer zr.Close()
		input = zr
	}

	parser, err := newParser(cfg, input, mod, estimated)
	if err != nil {
		return err
	}

	out, err := newSink(ctx, cfg, module)
	if err != nil {
		return err
	}

	reporter := progress.NewReporter(parser)
	stopStatus := startStatus(cfg, reporter)
	defer stopStatus()

	start := time.Now()
	if err := importRecords(ctx, cfg, parser, out, reporter); err != nil {
		// Closing still flushes what was parsed before the failure.
		out.Close(ctx)
		return err
	}

	if err := out.Close(ctx); err != nil {
		return fmt.Errorf("close sink: %w", err)
	}

	slog.Info("import finished",
		"records", parser.RecordCount(),
		"lines", parser.LineCount(),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// importRecords drives the parser to completion, one record at a time.
func importRecords(ctx context.Context, cfg *config.Config, parser *keparser.Parser, out sink.Sink, reporter *progress.Reporter) error {
	for rec, err := range parser.Records() {
		if err != nil {
			return fmt.Errorf("parse: %w", err)
		}
		if err := ctx.Err(); err != nil {
			slog.Warn("import cancelled", "records", parser.RecordCount())
			return err
		}
		if err := out.Write(ctx, rec); err != nil {
			return fmt.Errorf("write record irn %d: %w", rec.IRN(), err)
		}
		if line := reporter.Status(cfg.Parser.ProgressEvery); line != "" {
			slog.Info(line)
		}
	}
	return nil
}

// resolveSchema builds the schema provider chain and resolves module.
func resolveSchema(cfg *config.Config, module string) (*schema.Module, error) {
	var provider schema.Provider = schema.NewFileProvider(cfg.Schema.File)
	if cfg.Schema.CacheDir != "" {
		provider = schema.NewCachedProvider(cfg.Schema.CacheDir, provider)
	}

	mod, err := provider.Resolve(module)
	if err != nil {
		return nil, fmt.Errorf("resolve schema for %s: %w", module, err)
	}
	slog.Info("schema resolved", "module", module, "columns", len(mod.Columns))
	return mod, nil
}

func newParser(cfg *config.Config, input io.Reader, mod *schema.Module, estimated int64) (*keparser.Parser, error) {
	flatten, err := keparser.ParseFlattenMode(cfg.Parser.Flatten)
	if err != nil {
		return nil, err
	}
	encoding, err := keparser.ParseEncoding(cfg.Parser.Encoding)
	if err != nil {
		return nil, err
	}
	unknown, err := keparser.ParseUnknownFieldPolicy(cfg.Parser.UnknownFields)
	if err != nil {
		return nil, err
	}

	return keparser.New(input, mod, keparser.Options{
		Flatten:          flatten,
		Encoding:         encoding,
		UnknownFields:    unknown,
		NoTypeOverrides:  cfg.Parser.NoTypeOverrides,
		DeriveInsertDate: cfg.Parser.DeriveInsertDate,
		EstimatedLines:   estimated,
	})
}

func newSink(ctx context.Context, cfg *config.Config, module string) (sink.Sink, error) {
	switch cfg.Sink.Type {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Sink.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("ping database: %w", err)
		}
		return sink.NewPostgres(ctx, pool, module, sink.PostgresConfig{
			Table:     cfg.Sink.Table,
			BatchSize: cfg.Sink.BatchSize,
		})

	default: // jsonl
		if cfg.Sink.Output == "" {
			return sink.NewJSONL(os.Stdout), nil
		}
		f, err := os.Create(cfg.Sink.Output)
		if err != nil {
			return nil, fmt.Errorf("create output: %w", err)
		}
		return &fileJSONL{JSONL: sink.NewJSONL(f), f: f}, nil
	}
}

// fileJSONL closes the underlying file after flushing.
type fileJSONL struct {
	*sink.JSONL
	f *os.File
}

func (s *fileJSONL) Close(ctx context.Context) error {
	if err := s.JSONL.Close(ctx); err != nil {
		return err
	}
	return s.f.Close()
}

// startStatus starts the optional status endpoint; the returned stop
// function is a no-op when the endpoint is disabled.
func startStatus(cfg *config.Config, reporter *progress.Reporter) func() {
	if cfg.Status.Addr == "" {
		return func() {}
	}

	server := web.NewServer(reporter, cfg.Status.Addr)
	go func() {
		slog.Info("status endpoint listening", "addr", cfg.Status.Addr)
		if err := server.Start(); err != nil {
			slog.Error("status endpoint failed", "error", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}
}

// moduleName derives the EMu module from the input file name:
// "ecatalogue.export.gz" -> "ecatalogue".
func moduleName(path string) string {
	base := filepath.Base(path)
	if i := strings.Index(base, "."); i > 0 {
		return base[:i]
	}
	return base
}
