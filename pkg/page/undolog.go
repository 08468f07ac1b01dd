package page

import "github.com/innodb-tools/ibdparser/internal/errs"

// UNDO_LOG pages hold a page header plus a chain of undo records, each
// linked to the next by a byte offset within the page (spec.md §4.5).
//
// Grounded on the teacher's storage/wrapper/page/undo_log_page_wrapper.go
// for the header field set; per-record payload typing (insert/update/
// delete mark) is left to the caller since it depends on the record's
// own type byte, which this decoder surfaces but does not interpret
// further (spec.md's open question: emit partially-understood types with
// raw bytes rather than guessing).
const (
	undoPageHeaderOffset = FilHeaderLen
	undoPageType         = undoPageHeaderOffset      // 2 bytes: insert(1) or update(2)
	undoPageStart        = undoPageType + 2           // 2 bytes: first free byte after undo header
	undoPageFree         = undoPageStart + 2          // 2 bytes: first free byte in the page
	undoLastLogOffset    = undoPageFree + 2            // 2 bytes: offset of the last log header
)

func init() {
	register(TypeUndoLog, newUndoLogPage)
}

// UndoRecordHeader is what this decoder reads at the start of every undo
// record: a 1-byte type followed by a 2-byte next-record offset. No
// previous-record offset is read from the page; Prev is always zero.
type UndoRecordHeader struct {
	Offset int // this record's own byte offset within the page
	Prev   uint16
	Next   uint16
	Type   uint8
}

// UndoLogPage decodes the UNDO_LOG page header and walks its chain of
// undo record headers (the type-specific payload bytes are exposed via
// Raw()/Cursor() for callers to interpret).
type UndoLogPage struct {
	*Base
	UndoPageType uint16
	UndoStart    uint16
	UndoFree     uint16
	LastLogHdr   uint16
	Records      []UndoRecordHeader
}

func newUndoLogPage(raw []byte, base *Base) (Page, error) {
	p := &UndoLogPage{Base: base}
	c := base.Cursor(undoPageType)

	var err error
	if p.UndoPageType, err = c.U16(); err != nil {
		return nil, err
	}
	if p.UndoStart, err = c.U16(); err != nil {
		return nil, err
	}
	if p.UndoFree, err = c.U16(); err != nil {
		return nil, err
	}
	if p.LastLogHdr, err = c.U16(); err != nil {
		return nil, err
	}

	offset := int(p.UndoStart)
	seen := map[int]bool{}
	for offset != 0 && offset < len(raw)-FilTrailerLen {
		if seen[offset] {
			return nil, errs.Errorf(errs.InvalidBuffer, "undo log record chain at offset %d cycles back on itself", offset)
		}
		seen[offset] = true

		rc := base.Cursor(offset)
		typ, err := rc.U8()
		if err != nil {
			return nil, errs.Annotatef(err, errs.InvalidBuffer, "undo record type at offset %d", offset)
		}
		next, err := rc.U16()
		if err != nil {
			return nil, errs.Annotatef(err, errs.InvalidBuffer, "undo record next offset at %d", offset)
		}
		p.Records = append(p.Records, UndoRecordHeader{
			Offset: offset,
			Next:   next,
			Type:   typ,
		})
		if int(next) >= int(p.UndoFree) {
			break
		}
		offset = int(next)
	}
	return p, nil
}
