// Package manifest handles lispbc.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/chazu/lispbc/value"
)

// FileName is the manifest file looked up in a project directory.
const FileName = "lispbc.toml"

// Manifest represents a lispbc.toml project configuration.
type Manifest struct {
	Project Project        `toml:"project"`
	Source  Source         `toml:"source"`
	VM      VMConfig       `toml:"vm"`
	Heap    HeapConfig     `toml:"heap"`
	Globals map[string]any `toml:"globals"`

	// Dir is the directory containing the lispbc.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Source configures source files and the sequence to run.
type Source struct {
	Files []string `toml:"files"`
	Entry string   `toml:"entry"`
}

// VMConfig configures compilation and execution.
type VMConfig struct {
	// MaxCallDepth is a pointer so that an absent key keeps the VM
	// default; 0 means unbounded.
	MaxCallDepth   *int `toml:"max-call-depth"`
	Trace          bool `toml:"trace"`
	StrictCallHead bool `toml:"strict-call-head"`
	// Prelude is a pointer so that an absent key keeps the default (true).
	Prelude *bool `toml:"prelude"`
}

// HeapConfig configures heap persistence.
type HeapConfig struct {
	Store string `toml:"store"`
}

// Load parses a lispbc.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if m.Source.Entry == "" {
		m.Source.Entry = "entry"
	}
	if m.VM.MaxCallDepth != nil && *m.VM.MaxCallDepth < 0 {
		return nil, fmt.Errorf("%s: max-call-depth must not be negative", path)
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a lispbc.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// SourcePaths returns absolute paths for the configured source files.
func (m *Manifest) SourcePaths() []string {
	var paths []string
	for _, f := range m.Source.Files {
		if filepath.IsAbs(f) {
			paths = append(paths, f)
		} else {
			paths = append(paths, filepath.Join(m.Dir, f))
		}
	}
	return paths
}

// StorePath returns the absolute heap store path, or "" if none is set.
func (m *Manifest) StorePath() string {
	if m.Heap.Store == "" || filepath.IsAbs(m.Heap.Store) {
		return m.Heap.Store
	}
	return filepath.Join(m.Dir, m.Heap.Store)
}

// PreludeEnabled reports whether operator bindings should be merged in.
func (m *Manifest) PreludeEnabled() bool {
	return m.VM.Prelude == nil || *m.VM.Prelude
}

// GlobalRecords converts the [globals] table to heap records.
//
// A plain TOML value becomes a record with no properties: integers and
// floats are numbers, strings are strings, booleans are the symbols true
// and false, arrays are lists. A table must hold a "value" key; its other
// keys become properties. A table may use "symbol" instead of "value" to
// bind a symbol.
func (m *Manifest) GlobalRecords() (map[string]value.Record, error) {
	out := make(map[string]value.Record, len(m.Globals))
	for _, name := range sortedKeys(m.Globals) {
		r, err := toRecord(m.Globals[name])
		if err != nil {
			return nil, fmt.Errorf("globals.%s: %w", name, err)
		}
		out[name] = r
	}
	return out, nil
}

func toRecord(x any) (value.Record, error) {
	table, ok := x.(map[string]any)
	if !ok {
		v, err := toValue(x)
		if err != nil {
			return value.Record{}, err
		}
		return value.RecordOf(v), nil
	}

	var r value.Record
	switch {
	case table["value"] != nil:
		v, err := toValue(table["value"])
		if err != nil {
			return value.Record{}, err
		}
		r = value.RecordOf(v)
	case table["symbol"] != nil:
		s, ok := table["symbol"].(string)
		if !ok {
			return value.Record{}, fmt.Errorf("symbol must be a string, got %T", table["symbol"])
		}
		r = value.RecordOf(value.Symbol(s))
	default:
		return value.Record{}, fmt.Errorf("table needs a value or symbol key")
	}

	for _, k := range sortedKeys(table) {
		if k == "value" || k == "symbol" {
			continue
		}
		v, err := toValue(table[k])
		if err != nil {
			return value.Record{}, fmt.Errorf("property %s: %w", k, err)
		}
		r = r.WithProperty(k, v)
	}
	return r, nil
}

func toValue(x any) (value.Value, error) {
	switch v := x.(type) {
	case int64:
		return value.Number(v), nil
	case float64:
		return value.Number(v), nil
	case string:
		return value.String(v), nil
	case bool:
		return value.Bools.Embed(v), nil
	case []any:
		list := make(value.List, 0, len(v))
		for i, item := range v {
			iv, err := toValue(item)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			list = append(list, iv)
		}
		return list, nil
	case []map[string]any:
		return nil, fmt.Errorf("arrays of tables are not supported")
	default:
		return nil, fmt.Errorf("unsupported TOML value of type %T", x)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
