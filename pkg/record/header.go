// Package record implements the index/record decoder (spec.md §4.7,
// component C7): record header parsing, NULL bitmaps, variable-length
// arrays, key/system/non-key field extraction, B+tree navigation, and
// linear/binary search.
//
// Grounded on the teacher's server/innodb/basic/row.go vocabulary
// (n_owned, heap_no, next record offset) and storage/wrapper/index
// package's page-walking shape, rewritten from a mutable Row interface
// hung directly off a locked page wrapper into read-only decode
// functions operating over a pkg/page.IndexPage plus a caller-supplied
// pkg/describer.Describer.
package record

import (
	"github.com/innodb-tools/ibdparser/internal/errs"
)

// RecordType is the 3-bit record-type tag in the compact header.
type RecordType uint8

const (
	TypeConventional RecordType = 0
	TypeNodePointer  RecordType = 1
	TypeInfimum      RecordType = 2
	TypeSupremum     RecordType = 3
)

// headerSize is the 5-byte fixed record header preceding every record's
// origin (spec.md §4.7: info_bits(4)+n_owned(4), heap_number(13)+type(3),
// next_offset(16, signed)).
const headerSize = 5

// Header is the decoded fixed-size record header.
type Header struct {
	InfoBits   uint8
	NOwned     uint8
	HeapNumber uint16
	Type       RecordType
	NextOffset int16 // signed, relative to this record's origin
}

// Deleted reports whether the deleted-flag bit is set in InfoBits.
//
// InfoBits is already shifted down to its own nibble by decodeHeader, so
// the deleted and min-rec bits live at 0x02/0x01 here, not the pre-shift
// byte positions 0x20/0x10.
func (h Header) Deleted() bool { return h.InfoBits&0x02 != 0 }

// MinRecFlag reports whether this is the node pointer record owning the
// minimum key at a non-leaf level.
func (h Header) MinRecFlag() bool { return h.InfoBits&0x01 != 0 }

// decodeHeader reads the 5-byte header ending at origin (i.e. occupying
// bytes [origin-5, origin)), per InnoDB's "header grows backward from
// the record's addressable origin" convention.
func decodeHeader(raw []byte, origin int) (Header, error) {
	if origin < headerSize || origin > len(raw) {
		return Header{}, errs.Errorf(errs.InvalidBuffer, "record origin %d leaves no room for a header", origin)
	}
	b := raw[origin-headerSize : origin]

	infoBitsAndOwned := b[0]
	heapAndType := uint16(b[1])<<8 | uint16(b[2])
	next := int16(uint16(b[3])<<8 | uint16(b[4]))

	return Header{
		InfoBits:   infoBitsAndOwned >> 4,
		NOwned:     infoBitsAndOwned & 0x0F,
		HeapNumber: heapAndType >> 3,
		Type:       RecordType(heapAndType & 0x07),
		NextOffset: next,
	}, nil
}
