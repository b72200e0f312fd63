// Package schema resolves KE EMu module names to field-type mappings.
//
// EMu publishes its data dictionary as a multi-document schema.yaml
// (converted upstream from the texserver schema.pl). This package loads
// that file, normalises multi-value column entries to their item base
// name, and caches the per-module result on disk so repeated imports do
// not re-parse the full dictionary.
package schema

import (
	"errors"
	"fmt"
)

// DataType is the declared type of an EMu column.
//
// The export dialect only distinguishes a handful of types; anything
// this package does not recognise is passed through verbatim and treated
// as text by consumers.
type DataType string

const (
	TypeInteger DataType = "Integer"
	TypeFloat   DataType = "Float"
	TypeText    DataType = "Text"
	TypeDate    DataType = "Date"
	TypeTime    DataType = "Time"
	TypeLatLong DataType = "Latitude/Longitude"
)

// Field describes one column of an EMu module.
type Field struct {
	// DataKind is EMu's storage kind (dkAtom, dkTable, dkTuple, ...).
	DataKind string `json:"data_kind" yaml:"DataKind"`

	// DataType is the declared column type, e.g. "Integer" or "Text".
	DataType DataType `json:"data_type" yaml:"DataType"`

	// ColumnName is the underlying texserver column name.
	ColumnName string `json:"column_name" yaml:"ColumnName"`

	// ItemCount is set for multi-value columns keyed by their item base
	// name (AssRegistrationNumberRefLocal0, ...Local1 share one entry).
	ItemCount int `json:"item_count,omitempty" yaml:"ItemCount"`
}

// Module is the resolved schema for one EMu module (table).
//
// Columns is keyed by the name export files use: the ItemBase for
// multi-value columns, the ItemName when one is declared, otherwise the
// column name itself.
type Module struct {
	Name    string           `json:"name"`
	Columns map[string]Field `json:"columns"`
}

// Field looks up a column by its export-file name.
func (m *Module) Field(name string) (Field, bool) {
	f, ok := m.Columns[name]
	return f, ok
}

// ErrModuleNotFound is returned by providers when the requested module
// does not exist in the schema source.
var ErrModuleNotFound = errors.New("module not found in schema")

// Provider resolves a module name to its field-type mapping.
//
// A Module returned by Resolve is immutable and safe to share between
// parser instances running in parallel.
type Provider interface {
	Resolve(module string) (*Module, error)
}

// notFound wraps ErrModuleNotFound with the module name.
func notFound(module string) error {
	return fmt.Errorf("%w: %s", ErrModuleNotFound, module)
}
