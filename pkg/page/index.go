package page

import (
	"github.com/innodb-tools/ibdparser/internal/errs"
)

// INDEX pages hold a B+tree node's header, two (root-only) FSEG headers,
// the infimum/supremum pseudo-records, and a page directory of 2-byte
// slot offsets growing down from the page end (spec.md §4.5, §6).
//
// Grounded on the teacher's storage/wrapper/page/index_page_wrapper.go
// for field naming (PageHeader, DirSlots), rewritten to decode only the
// page-level structure here; per-record decoding (C7) lives in
// pkg/record, which uses this page's Cursor to walk the record chain.
const (
	indexHeaderOffset = FilHeaderLen // 38
	indexHeaderSize   = 36
	fsegHeaderSize    = 10
	leafFsegOffset    = indexHeaderOffset + indexHeaderSize
	topFsegOffset     = leafFsegOffset + fsegHeaderSize
	// InfimumOffset is fixed relative to the page start for every INDEX
	// page: FIL header + page header + two FSEG headers + the infimum's
	// 5-byte record header (a record's origin follows its header).
	InfimumOffset = topFsegOffset + fsegHeaderSize + 5
	// SupremumOffset follows "infimum\0" (8 bytes) and the supremum's own
	// 5-byte record header.
	SupremumOffset = InfimumOffset + 8 + 5

	compactFormatBit = 1 << 15
)

func init() {
	register(TypeIndex, newIndexPage)
	register(TypeRTree, newIndexPage)
}

// FsegHeader is the 10-byte file-segment pointer embedded twice in the
// root page of every index (leaf segment, then top/internal segment).
type FsegHeader struct {
	SpaceID uint32
	PageNo  uint32
	Offset  uint16
}

// IndexPageHeader is INDEX's fixed-offset page header.
type IndexPageHeader struct {
	NDirSlots        uint16
	HeapTop          uint16
	NHeap            uint16 // low 15 bits; bit 15 is the format flag
	GarbageOffset    uint16
	GarbageSize      uint16
	LastInsertOffset uint16
	Direction        uint16
	NDirection       uint16
	NRecs            uint16
	MaxTrxID         uint64
	Level            uint16
	IndexID          uint64
}

// Infimum returns the page's infimum pseudo-record bytes (ASCII
// "infimum\0").
func (p *IndexPage) Infimum() ([]byte, error) { return p.ReadAt(InfimumOffset, 8) }

// Supremum returns the page's supremum pseudo-record bytes (ASCII
// "supremum").
func (p *IndexPage) Supremum() ([]byte, error) { return p.ReadAt(SupremumOffset, 8) }

// ReadAt reads n raw bytes at an absolute page offset, for record
// decoding callers that need direct byte access (pkg/record).
func (p *IndexPage) ReadAt(offset, n int) ([]byte, error) {
	c := p.Cursor(0)
	return c.ReadAt(offset, n)
}

// Compact reports whether the page uses the compact record format (the
// top bit of n_heap).
func (h IndexPageHeader) Compact() bool { return h.NHeap&compactFormatBit != 0 }

// HeapCount is n_heap with the format bit masked off.
func (h IndexPageHeader) HeapCount() uint16 { return h.NHeap &^ compactFormatBit }

// IndexPage decodes an INDEX (or RTree, same layout) page.
type IndexPage struct {
	*Base
	PageHeader IndexPageHeader
	LeafSeg    FsegHeader // only meaningful on the B+tree root
	TopSeg     FsegHeader // only meaningful on the B+tree root
	DirSlots   []uint16   // page-directory offsets, in the order stored (supremum-side first)
}

func newIndexPage(raw []byte, base *Base) (Page, error) {
	p := &IndexPage{Base: base}
	c := base.Cursor(indexHeaderOffset)

	err := c.Name("index_page_header", func() error {
		h := &p.PageHeader
		var e error
		if h.NDirSlots, e = c.U16(); e != nil {
			return e
		}
		if h.HeapTop, e = c.U16(); e != nil {
			return e
		}
		if h.NHeap, e = c.U16(); e != nil {
			return e
		}
		if h.GarbageOffset, e = c.U16(); e != nil {
			return e
		}
		if h.GarbageSize, e = c.U16(); e != nil {
			return e
		}
		if h.LastInsertOffset, e = c.U16(); e != nil {
			return e
		}
		if h.Direction, e = c.U16(); e != nil {
			return e
		}
		if h.NDirection, e = c.U16(); e != nil {
			return e
		}
		if h.NRecs, e = c.U16(); e != nil {
			return e
		}
		if h.MaxTrxID, e = c.U64(); e != nil {
			return e
		}
		if h.Level, e = c.U16(); e != nil {
			return e
		}
		if h.IndexID, e = c.U64(); e != nil {
			return e
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if p.LeafSeg, err = decodeFsegHeader(c, leafFsegOffset); err != nil {
		return nil, err
	}
	if p.TopSeg, err = decodeFsegHeader(c, topFsegOffset); err != nil {
		return nil, err
	}

	n := len(raw)
	slotsStart := n - FilTrailerLen - 2*int(p.PageHeader.NDirSlots)
	p.DirSlots = make([]uint16, p.PageHeader.NDirSlots)
	for i := range p.DirSlots {
		b, err := c.ReadAt(slotsStart+2*i, 2)
		if err != nil {
			return nil, errs.Annotatef(err, errs.InvalidBuffer, "page directory slot %d", i)
		}
		p.DirSlots[i] = uint16(b[0])<<8 | uint16(b[1])
	}
	return p, nil
}

func decodeFsegHeader(c interface {
	Seek(int) error
	U32() (uint32, error)
	U16() (uint16, error)
}, offset int) (FsegHeader, error) {
	var h FsegHeader
	if err := c.Seek(offset); err != nil {
		return h, err
	}
	var err error
	if h.SpaceID, err = c.U32(); err != nil {
		return h, err
	}
	if h.PageNo, err = c.U32(); err != nil {
		return h, err
	}
	if h.Offset, err = c.U16(); err != nil {
		return h, err
	}
	return h, nil
}
