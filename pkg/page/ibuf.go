package page

import "github.com/innodb-tools/ibdparser/internal/errs"

// IBUF_BITMAP pages carry 4 bits of change-buffer metadata for each page
// of the tablespace region they describe (spec.md §4.5): 2 bits "free
// level", 1 bit "buffered", 1 bit "ibuf".
const ibufBitmapOffset = FilHeaderLen

func init() {
	register(TypeIbufBitmap, newIbufBitmapPage)
}

// IbufPageStatus is the decoded 4-bit status of one tablespace page.
type IbufPageStatus struct {
	FreeLevel uint8 // 0-3
	Buffered  bool
	Ibuf      bool
}

// IbufBitmapPage decodes an IBUF_BITMAP page into a per-page status
// stream, one entry per page the bitmap tracks (spec.md: "pages_per_
// bookkeeping_page" consecutive pages starting at the bitmap page).
type IbufBitmapPage struct {
	*Base
	Statuses []IbufPageStatus
}

func newIbufBitmapPage(raw []byte, base *Base) (Page, error) {
	p := &IbufBitmapPage{Base: base}
	// One entry per tracked page: pages_per_bookkeeping_page equals the
	// page size, and at 4 bits/page the entries fill half the body.
	count := len(raw)
	p.Statuses = make([]IbufPageStatus, count)

	c := base.Cursor(ibufBitmapOffset)
	for i := 0; i < count; i++ {
		nibbleBitOffset := ibufBitmapOffset*8 + i*4
		v, err := c.Bits(nibbleBitOffset, 4)
		if err != nil {
			return nil, errs.Annotatef(err, errs.InvalidBuffer, "ibuf bitmap entry %d", i)
		}
		p.Statuses[i] = IbufPageStatus{
			FreeLevel: uint8(v >> 2 & 0x03),
			Buffered:  v&0x02 != 0,
			Ibuf:      v&0x01 != 0,
		}
	}
	return p, nil
}
