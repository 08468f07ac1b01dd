package page

import (
	"github.com/innodb-tools/ibdparser/internal/errs"
	"github.com/innodb-tools/ibdparser/pkg/cursor"
	"github.com/innodb-tools/ibdparser/pkg/flist"
)

// FSP_HDR and XDES pages share an identical layout (spec.md §4.5):
// FSP_HDR (always page 0) additionally carries the file-space header;
// both carry a 256-entry array of 40-byte extent descriptors.
//
// Grounded on the teacher's storage/wrapper/page/{fsp_page_wrapper.go,
// xdes_page_wrapper.go}, rewritten as a single decoder for both page
// types (the teacher has two near-duplicate wrapper files; spec.md
// explicitly calls the layout identical, so one decoder serves both,
// exposing FSPHeader only when Type()==TypeFspHdr).
const (
	fspHeaderOffset = FilHeaderLen // 38
	fspHeaderSize   = 108
	xdesArrayOffset = fspHeaderOffset + fspHeaderSize // 146
	xdesEntrySize   = 40
	xdesEntryCount  = 256

	// ExtentSize is the number of pages covered by one extent.
	ExtentSize = 64
)

func init() {
	register(TypeFspHdr, newFSPPage)
	register(TypeXdes, newFSPPage)
}

// ExtentState is an XDES entry's allocation state.
type ExtentState uint32

const (
	ExtentFree     ExtentState = 1
	ExtentFreeFrag ExtentState = 2
	ExtentFullFrag ExtentState = 3
	ExtentFSeg     ExtentState = 4
)

// XDESEntry is one 40-byte extent descriptor.
type XDESEntry struct {
	FsegID  uint64
	Links   flist.NodePtr
	State   ExtentState
	Bitmap  [16]byte // 2 bits/page: free?, clean?

	StartPage uint32 // derived: page_number_of_this_page + index*64
}

// FreePage reports whether page i (0..63) within the extent is marked
// free in the 2-bit-per-page bitmap.
func (e XDESEntry) FreePage(i int) bool { return e.bit(i, 0) }

// CleanPage reports the "clean" bit for page i within the extent.
func (e XDESEntry) CleanPage(i int) bool { return e.bit(i, 1) }

func (e XDESEntry) bit(page, which int) bool {
	bitIndex := page*2 + which
	byteIdx := bitIndex / 8
	bitInByte := bitIndex % 8
	return e.Bitmap[byteIdx]&(1<<uint(bitInByte)) != 0
}

// FSPHeader is the file-space header, meaningful only on the FSP_HDR
// page (page 0 of a space).
type FSPHeader struct {
	SpaceID         uint32
	SizePages       uint32
	FreeLimit       uint32
	Flags           uint32
	FragNUsed       uint32
	FreeList        flist.Base
	FreeFragList    flist.Base
	FullFragList    flist.Base
	NextUnusedSegID uint64
	FullInodesList  flist.Base
	FreeInodesList  flist.Base
}

// FSPPage decodes an FSP_HDR or XDES page.
type FSPPage struct {
	*Base
	Header    FSPHeader // zero value on plain XDES pages
	Entries   [xdesEntryCount]XDESEntry
}

func newFSPPage(raw []byte, base *Base) (Page, error) {
	p := &FSPPage{Base: base}
	c := base.Cursor(fspHeaderOffset)

	if base.Type() == TypeFspHdr {
		err := c.Name("fsp_header", func() error {
			h := &p.Header
			var e error
			if h.SpaceID, e = c.U32(); e != nil {
				return e
			}
			if h.SizePages, e = c.U32(); e != nil {
				return e
			}
			if h.FreeLimit, e = c.U32(); e != nil {
				return e
			}
			if h.Flags, e = c.U32(); e != nil {
				return e
			}
			if h.FragNUsed, e = c.U32(); e != nil {
				return e
			}
			if h.FreeList, e = flist.DecodeBase(c); e != nil {
				return e
			}
			if h.FreeFragList, e = flist.DecodeBase(c); e != nil {
				return e
			}
			if h.FullFragList, e = flist.DecodeBase(c); e != nil {
				return e
			}
			if h.NextUnusedSegID, e = c.U64(); e != nil {
				return e
			}
			if h.FullInodesList, e = flist.DecodeBase(c); e != nil {
				return e
			}
			if h.FreeInodesList, e = flist.DecodeBase(c); e != nil {
				return e
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if err := c.Seek(xdesArrayOffset); err != nil {
		return nil, err
	}
	for i := 0; i < xdesEntryCount; i++ {
		entry, err := decodeXDESEntry(c)
		if err != nil {
			return nil, errs.Annotatef(err, errs.InvalidBuffer, "xdes entry %d", i)
		}
		entry.StartPage = base.Offset() + uint32(i)*ExtentSize
		p.Entries[i] = entry
	}
	return p, nil
}

func decodeXDESEntry(c *cursor.Cursor) (XDESEntry, error) {
	var e XDESEntry
	fsegID, err := c.U64()
	if err != nil {
		return e, err
	}
	links, err := flist.DecodeNodePtr(c)
	if err != nil {
		return e, err
	}
	state, err := c.U32()
	if err != nil {
		return e, err
	}
	bitmap, err := c.Read(16)
	if err != nil {
		return e, err
	}
	e.FsegID = fsegID
	e.Links = links
	e.State = ExtentState(state)
	copy(e.Bitmap[:], bitmap)
	return e, nil
}
