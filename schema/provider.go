package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/text/encoding/charmap"
	"gopkg.in/yaml.v3"
)

// FileProvider loads modules from an EMu schema.yaml file.
//
// The file is a stream of alternating YAML documents: a bare string
// naming a module, then a mapping with that module's columns. It is
// written in the texserver's native ISO-8859-2 encoding, not UTF-8.
//
// The whole file is parsed once, on the first Resolve call; a
// FileProvider is safe for concurrent use after that.
type FileProvider struct {
	path string

	once    sync.Once
	loadErr error
	modules map[string]*Module
}

// NewFileProvider returns a provider reading from the given schema.yaml.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// Resolve implements Provider.
func (p *FileProvider) Resolve(module string) (*Module, error) {
	p.once.Do(p.load)
	if p.loadErr != nil {
		return nil, p.loadErr
	}

	m, ok := p.modules[module]
	if !ok {
		return nil, notFound(module)
	}
	return m, nil
}

func (p *FileProvider) load() {
	f, err := os.Open(p.path)
	if err != nil {
		p.loadErr = fmt.Errorf("open schema file: %w", err)
		return
	}
	defer f.Close()

	p.modules, p.loadErr = parseSchemaYAML(f)
	if p.loadErr != nil {
		p.loadErr = fmt.Errorf("parse %s: %w", p.path, p.loadErr)
	}
}

// rawColumn mirrors one column entry of schema.yaml. Only the fields the
// parser needs are kept; the rest of the dictionary is ignored.
type rawColumn struct {
	DataKind   string `yaml:"DataKind"`
	DataType   string `yaml:"DataType"`
	ColumnName string `yaml:"ColumnName"`

	// ItemBase marks a multi-value column; export files key the values
	// against it (with ItemCount slots) rather than against ColumnName.
	ItemBase  string `yaml:"ItemBase"`
	ItemName  string `yaml:"ItemName"`
	ItemCount int    `yaml:"ItemCount"`
}

type rawModule struct {
	Columns map[string]rawColumn `yaml:"columns"`
}

// parseSchemaYAML reads the alternating name/definition document stream.
func parseSchemaYAML(r io.Reader) (map[string]*Module, error) {
	// schema.yaml is ISO-8859-2; transcode before handing it to the
	// YAML decoder, which requires UTF-8.
	dec := yaml.NewDecoder(charmap.ISO8859_2.NewDecoder().Reader(r))

	modules := make(map[string]*Module)
	name := ""
	for {
		var node yaml.Node
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}

		switch node.Kind {
		case yaml.ScalarNode:
			// A bare string document names the module that the next
			// mapping document defines.
			if err := node.Decode(&name); err != nil {
				return nil, fmt.Errorf("module name document: %w", err)
			}

		case yaml.MappingNode:
			if name == "" {
				return nil, errors.New("module definition precedes module name")
			}
			var raw rawModule
			if err := node.Decode(&raw); err != nil {
				return nil, fmt.Errorf("module %s: %w", name, err)
			}
			modules[name] = buildModule(name, raw)
			name = ""

		default:
			return nil, fmt.Errorf("unexpected YAML document kind %d", node.Kind)
		}
	}

	return modules, nil
}

// buildModule converts raw column entries to the export-file keyed form.
func buildModule(name string, raw rawModule) *Module {
	m := &Module{
		Name:    name,
		Columns: make(map[string]Field, len(raw.Columns)),
	}

	for col, def := range raw.Columns {
		field := Field{
			DataKind:   def.DataKind,
			DataType:   DataType(def.DataType),
			ColumnName: def.ColumnName,
		}

		// Multi-value columns are exported against their item base name
		// (AssRegistrationNumberRefLocal0/1/... collapse to one entry).
		// Single-value columns with a declared ItemName are exported
		// against that instead of the column name.
		switch {
		case def.ItemBase != "":
			col = def.ItemBase
			field.ItemCount = def.ItemCount
		case def.ItemName != "":
			col = def.ItemName
		}

		m.Columns[col] = field
	}

	return m
}

// CachedProvider memoises Resolve results on disk, one JSON file per
// module. It stands in for re-parsing the full schema.yaml on every
// import run, which takes long enough to matter for large dictionaries.
type CachedProvider struct {
	dir  string
	next Provider
	log  *slog.Logger
}

// NewCachedProvider wraps next with a disk cache rooted at dir. The
// directory is created on first use.
func NewCachedProvider(dir string, next Provider) *CachedProvider {
	return &CachedProvider{dir: dir, next: next, log: slog.Default()}
}

// Resolve implements Provider. Cache corruption is treated as a miss:
// the entry is rebuilt from the underlying provider and rewritten.
func (p *CachedProvider) Resolve(module string) (*Module, error) {
	path := filepath.Join(p.dir, module+".json")

	data, err := os.ReadFile(path)
	if err == nil {
		var m Module
		if err := json.Unmarshal(data, &m); err == nil {
			return &m, nil
		}
		p.log.Warn("discarding corrupt schema cache entry", "path", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read schema cache: %w", err)
	}

	m, err := p.next.Resolve(module)
	if err != nil {
		return nil, err
	}

	if err := p.store(path, m); err != nil {
		// A failed cache write is not worth aborting the import for.
		p.log.Warn("schema cache write failed", "path", path, "error", err)
	}

	return m, nil
}

func (p *CachedProvider) store(path string, m *Module) error {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return err
	}

	data, err := json.Marshal(m)
	if err != nil {
		return err
	}

	// Write-then-rename so a crashed import never leaves a truncated
	// cache entry behind.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Invalidate removes the cached entry for one module, forcing the next
// Resolve to rebuild it from the schema file.
func (p *CachedProvider) Invalidate(module string) error {
	err := os.Remove(filepath.Join(p.dir, module+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
