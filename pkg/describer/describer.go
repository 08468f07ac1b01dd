// Package describer implements the record describer (spec.md §4.8,
// component C8): a declarative schema naming an index's ordered key and
// non-key columns, used by pkg/record to decode raw row bytes.
//
// Grounded on the teacher's server/innodb/basic/index.go and
// server/innodb/basic/row.go for the clustered/secondary and
// key/non-key column vocabulary, rewritten from an interface hung off
// live B+tree nodes into a plain, describer-only schema struct separate
// from any decoded data (spec.md §4.8 calls for schema-by-name,
// independent of any particular page or record).
package describer

import (
	"os"

	"github.com/pelletier/go-toml"

	"github.com/innodb-tools/ibdparser/internal/errs"
	"github.com/innodb-tools/ibdparser/pkg/ibdtype"
)

// Kind distinguishes a clustered (primary key) index from a secondary
// index.
type Kind int

const (
	Clustered Kind = iota
	Secondary
)

// Column is one column in a describer's key or non-key list.
type Column struct {
	Name string
	Spec ibdtype.Spec
}

// Describer is the schema for one index: its kind plus its ordered key
// and non-key columns. System columns (DB_TRX_ID, DB_ROLL_PTR) are
// implicit on clustered describers and are not listed explicitly.
type Describer struct {
	TableName string
	IndexName string
	IndexID   uint64
	Kind      Kind
	KeyCols   []Column
	RowCols   []Column // non-key columns; empty for secondary indexes
}

// Clustered reports whether d describes a primary-key index.
func (d Describer) Clustered() bool { return d.Kind == Clustered }

// New constructs a Describer, parsing each column's textual type spec.
// Returns an error of kind InvalidSpecification if any spec is malformed.
func New(table, index string, indexID uint64, kind Kind, keyCols, rowCols []NamedSpec) (Describer, error) {
	d := Describer{TableName: table, IndexName: index, IndexID: indexID, Kind: kind}
	var err error
	if d.KeyCols, err = resolve(keyCols); err != nil {
		return Describer{}, err
	}
	if d.RowCols, err = resolve(rowCols); err != nil {
		return Describer{}, err
	}
	return d, nil
}

// NamedSpec is a (name, textual type spec) pair used to build a
// Describer's column lists.
type NamedSpec struct {
	Name string
	Spec string
}

func resolve(specs []NamedSpec) ([]Column, error) {
	out := make([]Column, len(specs))
	for i, ns := range specs {
		spec, err := ibdtype.ParseSpec(ns.Spec)
		if err != nil {
			return nil, err
		}
		out[i] = Column{Name: ns.Name, Spec: spec}
	}
	return out, nil
}

// Registry resolves describers by index id or by (table, index) name —
// the lookup surface spec.md §4.8 and §4.10 require for the data
// dictionary and for CLI callers supplying an external describer module.
type Registry struct {
	byID   map[uint64]Describer
	byName map[string]Describer
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: map[uint64]Describer{}, byName: map[string]Describer{}}
}

// Add registers d under both its index id and its (table, index) name.
func (r *Registry) Add(d Describer) {
	r.byID[d.IndexID] = d
	r.byName[key(d.TableName, d.IndexName)] = d
}

// ByID resolves a describer by its numeric index id.
func (r *Registry) ByID(id uint64) (Describer, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// ByName resolves a describer by (table_name, index_name).
func (r *Registry) ByName(table, index string) (Describer, bool) {
	d, ok := r.byName[key(table, index)]
	return d, ok
}

func key(table, index string) string { return table + "." + index }

// fileSchema is the on-disk shape of an external describer file, the
// CLI's `--describer PATH` option (spec.md §6): a table/index name, a
// numeric index id, a clustered/secondary kind, and ordered key/row
// column lists.
type fileSchema struct {
	Table   string           `toml:"table"`
	Index   string           `toml:"index"`
	IndexID uint64           `toml:"index_id"`
	Kind    string           `toml:"kind"` // "clustered" or "secondary"
	Key     []fileColumn     `toml:"key"`
	Row     []fileColumn     `toml:"row"`
}

type fileColumn struct {
	Name string `toml:"name"`
	Spec string `toml:"spec"`
}

// LoadFile reads one external describer from a TOML file.
func LoadFile(path string) (Describer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Describer{}, errs.Annotatef(err, errs.InvalidBuffer, "reading describer file %s", path)
	}
	var fs fileSchema
	if err := toml.Unmarshal(data, &fs); err != nil {
		return Describer{}, errs.Annotatef(err, errs.InvalidSpecification, "parsing describer file %s", path)
	}
	kind := Clustered
	if fs.Kind == "secondary" {
		kind = Secondary
	}
	return New(fs.Table, fs.Index, fs.IndexID, kind, toNamedSpecs(fs.Key), toNamedSpecs(fs.Row))
}

func toNamedSpecs(cols []fileColumn) []NamedSpec {
	out := make([]NamedSpec, len(cols))
	for i, c := range cols {
		out[i] = NamedSpec{Name: c.Name, Spec: c.Spec}
	}
	return out
}
