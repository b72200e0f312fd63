// Package config provides centralized configuration management for the
// keparse tool. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast
// on misconfiguration.
package config

// Config holds all tool configuration.
// All settings can be configured via environment variables; the input
// file itself is the positional CLI argument.
type Config struct {
	Schema  SchemaConfig
	Parser  ParserConfig
	Sink    SinkConfig
	Status  StatusConfig
	Logging LoggingConfig
}

// SchemaConfig holds schema provider settings.
type SchemaConfig struct {
	// File is the path to the EMu schema.yaml (required).
	File string `env:"SCHEMA_FILE" required:"true"`

	// CacheDir is where resolved modules are memoised as JSON; empty
	// disables the cache and re-parses schema.yaml every run.
	CacheDir string `env:"SCHEMA_CACHE_DIR" default:"/tmp/keparser-schema"`

	// Module overrides the module name normally derived from the input
	// file name ("ecatalogue.export.gz" -> "ecatalogue").
	Module string `env:"SCHEMA_MODULE"`
}

// ParserConfig holds the behavioural switches of the record parser.
type ParserConfig struct {
	// Flatten is the indexed-field policy: "single", "none" or "all".
	Flatten string `env:"PARSER_FLATTEN" default:"single"`

	// Encoding is the line decoding strategy: "latin1-utf8" or "latin1".
	Encoding string `env:"PARSER_ENCODING" default:"latin1-utf8"`

	// UnknownFields is "skip" or "error".
	UnknownFields string `env:"PARSER_UNKNOWN_FIELDS" default:"skip"`

	// NoTypeOverrides applies the schema's declared types even to the
	// known-bad date/time columns.
	NoTypeOverrides bool `env:"PARSER_NO_TYPE_OVERRIDES" default:"false"`

	// DeriveInsertDate synthesises ISODateInserted on every record.
	DeriveInsertDate bool `env:"PARSER_DERIVE_INSERT_DATE" default:"false"`

	// SampleLength is how many leading bytes are read to estimate the
	// total line count for progress reporting.
	SampleLength int64 `env:"PARSER_SAMPLE_LENGTH" default:"1000000"`

	// ProgressEvery logs a progress line every N records.
	ProgressEvery int `env:"PARSER_PROGRESS_EVERY" default:"100"`
}

// SinkConfig holds output settings.
type SinkConfig struct {
	// Type is "jsonl" or "postgres".
	Type string `env:"SINK_TYPE" default:"jsonl"`

	// Output is the JSONL destination path; empty means stdout.
	Output string `env:"SINK_OUTPUT"`

	// DatabaseURL is the PostgreSQL connection string, required for the
	// postgres sink. Supports DATABASE_URL and DB_URL for compatibility.
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// Table is the destination table for the postgres sink.
	Table string `env:"SINK_TABLE" default:"emu_records"`

	// BatchSize is how many records are buffered per COPY batch.
	BatchSize int `env:"SINK_BATCH_SIZE" default:"500"`
}

// StatusConfig holds the optional HTTP status endpoint settings.
type StatusConfig struct {
	// Addr is the listen address, e.g. ":8080"; empty disables the
	// endpoint.
	Addr string `env:"STATUS_ADDR"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is "text" or "json" (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}
