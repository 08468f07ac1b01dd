package page

// Type is the FIL_PAGE_TYPE tag stored in every page's FIL header,
// mapped from its numeric value to a symbol (spec.md §4.4).
type Type uint16

const (
	TypeAllocated     Type = 0
	TypeUnused        Type = 1
	TypeUndoLog       Type = 2
	TypeInode         Type = 3
	TypeIbufFreeList  Type = 4
	TypeIbufBitmap    Type = 5
	TypeSys           Type = 6
	TypeTrxSys        Type = 7
	TypeFspHdr        Type = 8
	TypeXdes          Type = 9
	TypeBlob          Type = 10
	TypeZblob         Type = 11
	TypeZblob2        Type = 12
	TypeUnknown       Type = 13
	TypeCompressed    Type = 14
	TypeEncrypted     Type = 15
	TypeSDI           Type = 17853
	TypeRTree         Type = 17854
	TypeIndex         Type = 17855
)

var typeNames = map[Type]string{
	TypeAllocated:    "FIL_PAGE_TYPE_ALLOCATED",
	TypeUnused:       "FIL_PAGE_TYPE_UNUSED",
	TypeUndoLog:      "FIL_PAGE_UNDO_LOG",
	TypeInode:        "FIL_PAGE_INODE",
	TypeIbufFreeList: "FIL_PAGE_IBUF_FREE_LIST",
	TypeIbufBitmap:   "FIL_PAGE_IBUF_BITMAP",
	TypeSys:          "FIL_PAGE_TYPE_SYS",
	TypeTrxSys:       "FIL_PAGE_TYPE_TRX_SYS",
	TypeFspHdr:       "FIL_PAGE_TYPE_FSP_HDR",
	TypeXdes:         "FIL_PAGE_TYPE_XDES",
	TypeBlob:         "FIL_PAGE_TYPE_BLOB",
	TypeZblob:        "FIL_PAGE_TYPE_ZBLOB",
	TypeZblob2:       "FIL_PAGE_TYPE_ZBLOB2",
	TypeUnknown:      "FIL_PAGE_TYPE_UNKNOWN",
	TypeCompressed:   "FIL_PAGE_COMPRESSED",
	TypeEncrypted:    "FIL_PAGE_ENCRYPTED",
	TypeSDI:          "FIL_PAGE_SDI",
	TypeRTree:        "FIL_PAGE_RTREE",
	TypeIndex:        "FIL_PAGE_INDEX",
}

// String renders the symbolic name of t, or a numeric fallback for
// anything not in the dispatch table (spec.md's UnknownType kind).
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "FIL_PAGE_TYPE_UNKNOWN(" + itoa(uint16(t)) + ")"
}

func itoa(v uint16) string {
	if v == 0 {
		return "0"
	}
	var buf [6]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// UndefinedPage is InnoDB's UINT32_MAX sentinel for "no such page"
// (spec.md §6).
const UndefinedPage uint32 = 0xFFFFFFFF

// OptionalPage maps the UINT32_MAX sentinel to "absent" (spec.md §4.4).
func OptionalPage(raw uint32) (pageNo uint32, ok bool) {
	if raw == UndefinedPage {
		return 0, false
	}
	return raw, true
}
