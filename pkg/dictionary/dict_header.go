package dictionary

import (
	"github.com/innodb-tools/ibdparser/internal/errs"
	"github.com/innodb-tools/ibdparser/pkg/page"
)

// dictHeader is the "data dictionary header" page (spec.md §4.10):
// counters plus the root page numbers of the four bootstrap tables.
// Offsets mirror InnoDB's dict0boot.h DICT_HDR_* layout, placed right
// after the FIL header the way every other system page in this tool
// does (spec.md never needs the dict header's own page-header fields,
// only these counters/roots).
const (
	dictRowIDOffset    = page.FilHeaderLen + 0
	dictTableIDOffset  = page.FilHeaderLen + 8
	dictIndexIDOffset  = page.FilHeaderLen + 16
	dictMixIDOffset    = page.FilHeaderLen + 24
	dictTablesOffset   = page.FilHeaderLen + 32
	dictTableIDsOffset = page.FilHeaderLen + 36
	dictColumnsOffset  = page.FilHeaderLen + 40
	dictIndexesOffset  = page.FilHeaderLen + 44
	dictFieldsOffset   = page.FilHeaderLen + 48
)

type dictHeader struct {
	RowID, TableID, IndexID, MixID uint64
	TablesRoot, TableIDsRoot       uint32
	ColumnsRoot, IndexesRoot       uint32
	FieldsRoot                     uint32
}

func readDictHeader(p page.Page) (dictHeader, error) {
	var h dictHeader
	u64 := func(off int) (uint64, error) {
		b, err := p.Cursor(0).ReadAt(off, 8)
		if err != nil {
			return 0, err
		}
		var v uint64
		for _, x := range b {
			v = v<<8 | uint64(x)
		}
		return v, nil
	}
	u32 := func(off int) (uint32, error) {
		b, err := p.Cursor(0).ReadAt(off, 4)
		if err != nil {
			return 0, err
		}
		var v uint32
		for _, x := range b {
			v = v<<8 | uint32(x)
		}
		return v, nil
	}

	var err error
	if h.RowID, err = u64(dictRowIDOffset); err != nil {
		return h, errs.Annotate(err, errs.DictionaryCorruption, "reading dict header row_id")
	}
	if h.TableID, err = u64(dictTableIDOffset); err != nil {
		return h, errs.Annotate(err, errs.DictionaryCorruption, "reading dict header table_id")
	}
	if h.IndexID, err = u64(dictIndexIDOffset); err != nil {
		return h, errs.Annotate(err, errs.DictionaryCorruption, "reading dict header index_id")
	}
	if h.MixID, err = u64(dictMixIDOffset); err != nil {
		return h, errs.Annotate(err, errs.DictionaryCorruption, "reading dict header mix_id")
	}
	if h.TablesRoot, err = u32(dictTablesOffset); err != nil {
		return h, errs.Annotate(err, errs.DictionaryCorruption, "reading SYS_TABLES root")
	}
	if h.TableIDsRoot, err = u32(dictTableIDsOffset); err != nil {
		return h, errs.Annotate(err, errs.DictionaryCorruption, "reading SYS_TABLE_IDS root")
	}
	if h.ColumnsRoot, err = u32(dictColumnsOffset); err != nil {
		return h, errs.Annotate(err, errs.DictionaryCorruption, "reading SYS_COLUMNS root")
	}
	if h.IndexesRoot, err = u32(dictIndexesOffset); err != nil {
		return h, errs.Annotate(err, errs.DictionaryCorruption, "reading SYS_INDEXES root")
	}
	if h.FieldsRoot, err = u32(dictFieldsOffset); err != nil {
		return h, errs.Annotate(err, errs.DictionaryCorruption, "reading SYS_FIELDS root")
	}
	return h, nil
}
