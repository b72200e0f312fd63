package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")
		required := field.Tag.Get("required") == "true"

		if envName == "" {
			continue
		}

		// Try primary env var, then alternate
		value := os.Getenv(envName)
		if value == "" && envAlt != "" {
			value = os.Getenv(envAlt)
		}

		if value == "" {
			if required {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = defaultVal
		}

		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(i)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Schema validation
	if c.Schema.File == "" {
		errs = append(errs, "SCHEMA_FILE is required")
	}

	// Parser validation
	switch c.Parser.Flatten {
	case "single", "none", "all":
	default:
		errs = append(errs, fmt.Sprintf("PARSER_FLATTEN (%q) must be one of: single, none, all", c.Parser.Flatten))
	}
	switch c.Parser.Encoding {
	case "latin1-utf8", "latin1":
	default:
		errs = append(errs, fmt.Sprintf("PARSER_ENCODING (%q) must be one of: latin1-utf8, latin1", c.Parser.Encoding))
	}
	switch c.Parser.UnknownFields {
	case "skip", "error":
	default:
		errs = append(errs, fmt.Sprintf("PARSER_UNKNOWN_FIELDS (%q) must be one of: skip, error", c.Parser.UnknownFields))
	}
	if c.Parser.SampleLength <= 0 {
		errs = append(errs, "PARSER_SAMPLE_LENGTH must be positive")
	}
	if c.Parser.ProgressEvery <= 0 {
		errs = append(errs, "PARSER_PROGRESS_EVERY must be positive")
	}

	// Sink validation
	switch c.Sink.Type {
	case "jsonl":
	case "postgres":
		if c.Sink.DatabaseURL == "" {
			errs = append(errs, "DATABASE_URL is required when SINK_TYPE is postgres")
		}
		if c.Sink.Table == "" {
			errs = append(errs, "SINK_TABLE must not be empty")
		}
	default:
		errs = append(errs, fmt.Sprintf("SINK_TYPE (%q) must be one of: jsonl, postgres", c.Sink.Type))
	}
	if c.Sink.BatchSize <= 0 {
		errs = append(errs, "SINK_BATCH_SIZE must be positive")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// Sensitive values like database URLs are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Schema: {File: %q, CacheDir: %q}, ", c.Schema.File, c.Schema.CacheDir))
	b.WriteString(fmt.Sprintf("Parser: {Flatten: %q, Encoding: %q, UnknownFields: %q}, ",
		c.Parser.Flatten, c.Parser.Encoding, c.Parser.UnknownFields))
	b.WriteString(fmt.Sprintf("Sink: {Type: %q, Table: %q, DatabaseURL: [MASKED], BatchSize: %d}, ",
		c.Sink.Type, c.Sink.Table, c.Sink.BatchSize))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
