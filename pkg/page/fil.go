package page

import (
	"github.com/innodb-tools/ibdparser/internal/errs"
	"github.com/innodb-tools/ibdparser/pkg/checksum"
	"github.com/innodb-tools/ibdparser/pkg/cursor"
)

// FIL header/trailer byte offsets (spec.md §3, §6): 38-byte header at
// the start of every page, 8-byte trailer at the end. Grounded on the
// field names of the teacher's storage/wrapper/page/file_header.go and
// base.go (FHeaderSpaceID, FHeaderPageNo, ...), corrected to InnoDB's
// actual big-endian on-disk layout — the teacher decodes with
// binary.LittleEndian, which does not match real ibdata1/ibd files.
const (
	FilChecksum  = 0
	FilPageNo    = 4
	FilPrev      = 8
	FilNext      = 12
	FilLSN       = 16
	FilType      = 24
	FilFlushLSN  = 26
	FilSpaceID   = 34
	FilHeaderLen = 38
	FilTrailerLen = 8
)

// Header is the decoded 38-byte FIL header common to every page.
type Header struct {
	Checksum  uint32
	PageNo    uint32
	Prev      uint32 // UndefinedPage if absent
	Next      uint32 // UndefinedPage if absent
	LSN       uint64
	Type      Type
	FlushLSN  uint64 // only meaningful on page 0
	SpaceID   uint32
}

// Trailer is the decoded 8-byte FIL trailer.
type Trailer struct {
	LowLSN       uint32
	OldChecksum  uint32
}

// decodeHeader parses the FIL header from the first 38 bytes of buf.
func decodeHeader(buf []byte) (Header, error) {
	if len(buf) < FilHeaderLen {
		return Header{}, errs.Errorf(errs.InvalidBuffer, "page too short for FIL header: %d bytes", len(buf))
	}
	c := cursor.New(buf)
	var h Header
	err := c.Name("fil_header", func() error {
		var e error
		if h.Checksum, e = c.U32(); e != nil {
			return e
		}
		if h.PageNo, e = c.U32(); e != nil {
			return e
		}
		if h.Prev, e = c.U32(); e != nil {
			return e
		}
		if h.Next, e = c.U32(); e != nil {
			return e
		}
		if h.LSN, e = c.U64(); e != nil {
			return e
		}
		typeVal, e := c.U16()
		if e != nil {
			return e
		}
		h.Type = Type(typeVal)
		if h.FlushLSN, e = c.U64(); e != nil {
			return e
		}
		if h.SpaceID, e = c.U32(); e != nil {
			return e
		}
		return nil
	})
	return h, err
}

// decodeTrailer parses the 8-byte FIL trailer from the end of buf.
func decodeTrailer(buf []byte) (Trailer, error) {
	n := len(buf)
	if n < FilTrailerLen {
		return Trailer{}, errs.Errorf(errs.InvalidBuffer, "page too short for FIL trailer: %d bytes", n)
	}
	c := cursor.New(buf[n-FilTrailerLen:])
	var t Trailer
	err := c.Name("fil_trailer", func() error {
		var e error
		if t.LowLSN, e = c.U32(); e != nil {
			return e
		}
		if t.OldChecksum, e = c.U32(); e != nil {
			return e
		}
		return nil
	})
	return t, err
}

// VerifyChecksum reports whether the page's stored checksum validates
// under either algorithm (spec.md §4.2's tie-break).
func VerifyChecksum(buf []byte, stored uint32) bool {
	return checksum.Verify(buf, stored)
}
