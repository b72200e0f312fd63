package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/NaturalHistoryMuseum/KEParser/internal/logging"
	"github.com/NaturalHistoryMuseum/KEParser/keparser"
)

// postgresColumns is the staging table column order used by COPY.
var postgresColumns = []string{"import_id", "module", "irn", "data"}

// PostgresConfig configures the Postgres sink.
type PostgresConfig struct {
	// Table is the destination table name.
	Table string

	// BatchSize is how many records are buffered per COPY batch.
	BatchSize int
}

// Postgres bulk-loads records into a JSONB staging table. Rows are
// buffered and flushed with the COPY protocol every BatchSize records;
// each run is stamped with a fresh import session UUID so a failed
// import can be deleted in one statement.
type Postgres struct {
	pool      *pgxpool.Pool
	table     string
	batchSize int

	importID uuid.UUID
	module   string

	rows     [][]any
	inserted int64
	log      *slog.Logger
}

// NewPostgres creates the staging table if needed and returns a sink
// loading records for the given module.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool, module string, cfg PostgresConfig) (*Postgres, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}

	table := pgx.Identifier{cfg.Table}.Sanitize()
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		import_id uuid NOT NULL,
		module    text NOT NULL,
		irn       integer,
		data      jsonb NOT NULL,
		loaded_at timestamptz NOT NULL DEFAULT now()
	)`, table)

	if _, err := pool.Exec(ctx, ddl); err != nil {
		return nil, fmt.Errorf("create staging table: %w", err)
	}

	s := &Postgres{
		pool:      pool,
		table:     cfg.Table,
		batchSize: cfg.BatchSize,
		importID:  uuid.New(),
		module:    module,
		rows:      make([][]any, 0, cfg.BatchSize),
	}
	s.log = logging.WithImport(s.importID.String(), module)
	return s, nil
}

// ImportID returns the session identifier stamped on every loaded row.
func (s *Postgres) ImportID() uuid.UUID { return s.importID }

// Write implements Sink.
func (s *Postgres) Write(ctx context.Context, rec *keparser.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record irn %d: %w", rec.IRN(), err)
	}

	irn := pgtype.Int4{}
	if rec.Has("irn") {
		irn = pgtype.Int4{Int32: int32(rec.IRN()), Valid: true}
	}

	s.rows = append(s.rows, []any{s.importID.String(), s.module, irn, string(data)})
	if len(s.rows) >= s.batchSize {
		return s.flush(ctx)
	}
	return nil
}

// Close implements Sink. It flushes the final batch and closes the
// connection pool, which the sink owns.
func (s *Postgres) Close(ctx context.Context) error {
	defer s.pool.Close()
	if err := s.flush(ctx); err != nil {
		return err
	}
	s.log.Info("import complete", "rows", s.inserted)
	return nil
}

func (s *Postgres) flush(ctx context.Context) error {
	if len(s.rows) == 0 {
		return nil
	}

	n, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{s.table},
		postgresColumns,
		pgx.CopyFromRows(s.rows),
	)
	if err != nil {
		return fmt.Errorf("copy batch into %s: %w", s.table, err)
	}

	s.inserted += n
	s.rows = s.rows[:0]
	s.log.Debug("flushed batch", "rows", n, "total", s.inserted)
	return nil
}
