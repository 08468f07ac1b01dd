package redo

import (
	"github.com/innodb-tools/ibdparser/internal/errs"
)

// Record type codes this decoder's dispatch table recognizes
// (spec.md §4.12). Named after InnoDB's mlog0types.h constants; see
// the teacher's server/innodb/storage/store/logs/redo_log_type.go for
// the full historical MLOG_* list — only the subset spec.md names as a
// fixed dispatch table is reproduced here. Every other code (including
// real, well-known ones like MLOG_PAGE_CREATE or MLOG_FILE_CREATE) is
// deliberately treated as Unknown: spec.md §4.12 says unknown types
// abort the current record and resync at the next block, and without
// a structural decode for a type this parser cannot know its payload
// length, so guessing would corrupt every record after it.
const (
	codeIbufBitmapInit       = 27
	codeRecInsert            = 9
	codeCompRecInsert        = 38
	codeRecUpdateInPlace     = 13
	codeCompRecUpdateInPlace = 41
	codeRecDelete            = 14
	codeCompRecDelete        = 42
	codeUndoInsert           = 20
	codeInitFilePage         = 29

	singleRecordFlag = 0x80 // MLOG_SINGLE_REC_FLAG
)

// Kind identifies which payload shape a Record was decoded as.
type Kind int

const (
	KindUnknown Kind = iota
	KindInitFilePage
	KindIbufBitmapInit
	KindRecInsert
	KindRecUpdateInPlace
	KindRecDelete
	KindUndoInsert
)

func (k Kind) String() string {
	switch k {
	case KindInitFilePage:
		return "INIT_FILE_PAGE"
	case KindIbufBitmapInit:
		return "IBUF_BITMAP_INIT"
	case KindRecInsert:
		return "REC_INSERT"
	case KindRecUpdateInPlace:
		return "REC_UPDATE_IN_PLACE"
	case KindRecDelete:
		return "REC_DELETE"
	case KindUndoInsert:
		return "UNDO_INSERT"
	default:
		return "UNKNOWN"
	}
}

// RecInsert is the payload of a REC_INSERT/MLOG_COMP_REC_INSERT record
// (spec.md §4.12's worked example 5), modeled after InnoDB's
// page_cur_parse_insert_rec: a cursor offset, then a combined
// end-segment-length/has-extra-fields flag, then (if set) the info
// bits, origin offset and mismatch index, then the raw inserted bytes.
type RecInsert struct {
	PageOffset        uint32
	EndSegLen         uint32
	InfoAndStatusBits uint8
	OriginOffset      uint32
	MismatchIndex     uint32
	Data              []byte
}

// RecUpdateInPlace is the payload of a REC_UPDATE_IN_PLACE record: the
// cursor offset and info flags are decoded; the field-diff list is kept
// raw (spec.md §9's "partially understood types keep raw bytes").
type RecUpdateInPlace struct {
	PageOffset uint32
	InfoFlags  uint8
	Raw        []byte
}

// RecDelete is the payload of a REC_DELETE record: just the cursor
// offset of the record to delete (the page already holds its bytes).
type RecDelete struct {
	PageOffset uint32
}

// RecUndoInsert is the payload of an UNDO_INSERT record: a 2-byte
// length followed by that many bytes of undo log entry data.
type RecUndoInsert struct {
	Data []byte
}

// Record is one decoded redo log record (spec.md §4.12).
type Record struct {
	Kind         Kind
	TypeCode     uint8
	SingleRecord bool
	SpaceID      uint32
	PageNumber   uint32
	LSNStart     uint64
	LSNEnd       uint64

	Insert *RecInsert
	Update *RecUpdateInPlace
	Delete *RecDelete
	Undo   *RecUndoInsert
}

var errUnknownRecordType = errs.New(errs.UnknownType, "redo record type not in dispatch table")
