// Package dictionary implements the multi-space data dictionary
// aggregator (spec.md §4.10, component C10): one system space (id 0)
// plus zero or more per-table spaces, with the four self-describing
// system tables (SYS_TABLES, SYS_COLUMNS, SYS_INDEXES, SYS_FIELDS)
// bootstrap-hardcoded so the dictionary can read its own clustered
// indexes before anything else is known.
//
// Grounded on the teacher's server/innodb/storage/wrapper/system
// package for the dictionary-page vocabulary (DictEntry's
// ID/Name/SpaceID/PageNo fields), rewritten from a mutable, lockable,
// directly-on-page dictionary editor into a read-only lookup layer
// sitting on top of pkg/record's B+tree search.
package dictionary

import (
	"path/filepath"
	"sync"

	"github.com/innodb-tools/ibdparser/internal/errs"
	"github.com/innodb-tools/ibdparser/pkg/describer"
	"github.com/innodb-tools/ibdparser/pkg/ibdtype"
	"github.com/innodb-tools/ibdparser/pkg/record"
	"github.com/innodb-tools/ibdparser/pkg/space"
)

// Table is one user table known to the dictionary: its dictionary
// identity, plus the tablespace file if it could be opened.
type Table struct {
	Name    string
	ID      uint64
	SpaceID uint32
	Space   *space.Space // nil if the .ibd file could not be opened (orphan)
	NCols   uint32
}

// System aggregates the system tablespace and the per-table spaces
// opened under it (spec.md §4.10).
type System struct {
	mu      sync.Mutex
	system  *space.Space
	dataDir string

	tables  map[string]*Table
	spaces  map[uint32]*space.Space
	orphans []string
}

// Open constructs a System over an already-opened system tablespace
// (space id 0). dataDir is where per-table .ibd files are looked up by
// AddTableByName; pass "" to disable auto-discovery and rely entirely
// on explicit AddSpace calls.
func Open(systemSpace *space.Space, dataDir string) *System {
	return &System{
		system:  systemSpace,
		dataDir: dataDir,
		tables:  map[string]*Table{},
		spaces:  map[uint32]*space.Space{systemSpace.SpaceID(): systemSpace},
	}
}

// AddSpace opens path and registers it by its discovered space id.
func (s *System) AddSpace(path string) (*space.Space, error) {
	sp, err := space.Open(path)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.spaces[sp.SpaceID()] = sp
	s.mu.Unlock()
	return sp, nil
}

// SpaceByID returns a previously-registered space, or nil if unknown.
func (s *System) SpaceByID(id uint32) *space.Space {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spaces[id]
}

func (s *System) header() (dictHeader, error) {
	p, err := s.system.Page(dictHeaderPageNo)
	if err != nil {
		return dictHeader{}, errs.Annotate(err, errs.DictionaryCorruption, "reading data dictionary header page")
	}
	if p == nil {
		return dictHeader{}, errs.New(errs.DictionaryCorruption, "system tablespace has no dictionary header page")
	}
	return readDictHeader(p)
}

// sysTablesIndex returns a record.Index over the live SYS_TABLES root.
func (s *System) sysTablesIndex() (*record.Index, error) {
	h, err := s.header()
	if err != nil {
		return nil, err
	}
	return record.Open(s.system, sysTablesDescriber, uint64(h.TablesRoot)), nil
}

func (s *System) sysIndexesIndex() (*record.Index, error) {
	h, err := s.header()
	if err != nil {
		return nil, err
	}
	return record.Open(s.system, sysIndexesDescriber, uint64(h.IndexesRoot)), nil
}

func fieldUint(fields []record.Field, name string) (uint64, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f.Value.Uint, true
		}
	}
	return 0, false
}

// AddTableByName resolves name via SYS_TABLES and, if dataDir was
// configured, opens "<dataDir>/<name>.ibd". A table whose file cannot
// be opened is still registered (with a nil Space) and recorded among
// Orphans() — spec.md §4.10 wants orphan enumeration, not a hard error.
func (s *System) AddTableByName(name string) (*Table, error) {
	ix, err := s.sysTablesIndex()
	if err != nil {
		return nil, err
	}
	rec, err := ix.LinearSearch([]ibdtype.Value{{Kind: ibdtype.KindString, Bytes: []byte(name)}}, nil)
	if err != nil {
		return nil, errs.Annotatef(err, errs.DictionaryCorruption, "searching SYS_TABLES for %q", name)
	}
	if rec == nil {
		return nil, errs.Errorf(errs.DictionaryCorruption, "table %q not found in SYS_TABLES", name)
	}
	id, _ := fieldUint(rec.Row, "ID")
	spaceID, _ := fieldUint(rec.Row, "SPACE")
	nCols, _ := fieldUint(rec.Row, "N_COLS")

	t := &Table{Name: name, ID: id, SpaceID: uint32(spaceID), NCols: uint32(nCols)}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sp, ok := s.spaces[t.SpaceID]; ok {
		t.Space = sp
	} else if s.dataDir != "" {
		path := filepath.Join(s.dataDir, name+".ibd")
		if sp, err := space.Open(path); err == nil {
			t.Space = sp
			s.spaces[t.SpaceID] = sp
		}
	}
	if t.Space == nil {
		s.orphans = append(s.orphans, name)
	}
	s.tables[name] = t
	return t, nil
}

// TableByName returns a previously-added table.
func (s *System) TableByName(name string) (*Table, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[name]
	return t, ok
}

// Orphans lists tables known to SYS_TABLES (added via AddTableByName)
// whose backing .ibd file could not be opened.
func (s *System) Orphans() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.orphans))
	copy(out, s.orphans)
	return out
}

// IndexByName resolves (table, index) to its root page via SYS_INDEXES
// and opens a record.Index over it using the caller-supplied describer
// (spec.md §4.10: the dictionary only describes itself; a real table's
// row format comes from an external describer module supplied by the
// caller, per spec.md §6's "--describer NAME" CLI option).
func (s *System) IndexByName(table, index string, d describer.Describer) (*record.Index, error) {
	t, ok := s.TableByName(table)
	if !ok {
		var err error
		if t, err = s.AddTableByName(table); err != nil {
			return nil, err
		}
	}
	if t.Space == nil {
		return nil, errs.Errorf(errs.DictionaryCorruption, "table %q has no open tablespace file", table)
	}

	ix, err := s.sysIndexesIndex()
	if err != nil {
		return nil, err
	}
	var root uint64
	found := false
	cur, err := ix.CursorAtMin(record.Forward, false)
	if err != nil {
		return nil, err
	}
	for {
		rec, err := cur.Record()
		if err != nil {
			return nil, err
		}
		if rec == nil {
			break
		}
		tid, _ := fieldUint(rec.Key, "TABLE_ID")
		if tid != t.ID {
			continue
		}
		name, _ := stringField(rec.Row, "NAME")
		if name != index {
			continue
		}
		pageNo, _ := fieldUint(rec.Row, "PAGE_NO")
		root = pageNo
		found = true
		break
	}
	if !found {
		return nil, errs.Errorf(errs.SchemaMissing, "index %q not found for table %q in SYS_INDEXES", index, table)
	}
	return record.Open(t.Space, d, root), nil
}

func stringField(fields []record.Field, name string) (string, bool) {
	for _, f := range fields {
		if f.Name == name {
			return string(f.Value.Bytes), true
		}
	}
	return "", false
}

// TableAndIndexNameByID resolves a numeric index id back to its
// (table_name, index_name) pair by scanning SYS_INDEXES then SYS_TABLES
// (spec.md §4.10's "table-and-index-name-by-id").
func (s *System) TableAndIndexNameByID(indexID uint64) (table, index string, err error) {
	ix, err := s.sysIndexesIndex()
	if err != nil {
		return "", "", err
	}
	cur, err := ix.CursorAtMin(record.Forward, false)
	if err != nil {
		return "", "", err
	}
	var tableID uint64
	var indexName string
	found := false
	for {
		rec, err := cur.Record()
		if err != nil {
			return "", "", err
		}
		if rec == nil {
			break
		}
		id, _ := fieldUint(rec.Key, "ID")
		if id != indexID {
			continue
		}
		tableID, _ = fieldUint(rec.Key, "TABLE_ID")
		indexName, _ = stringField(rec.Row, "NAME")
		found = true
		break
	}
	if !found {
		return "", "", errs.Errorf(errs.SchemaMissing, "index id %d not found in SYS_INDEXES", indexID)
	}

	tblIx, err := s.sysTablesIndex()
	if err != nil {
		return "", "", err
	}
	tblCur, err := tblIx.CursorAtMin(record.Forward, false)
	if err != nil {
		return "", "", err
	}
	for {
		rec, err := tblCur.Record()
		if err != nil {
			return "", "", err
		}
		if rec == nil {
			break
		}
		id, _ := fieldUint(rec.Row, "ID")
		if id != tableID {
			continue
		}
		name, _ := stringField(rec.Key, "NAME")
		return name, indexName, nil
	}
	return "", "", errs.Errorf(errs.SchemaMissing, "table id %d not found in SYS_TABLES", tableID)
}
