package page

import (
	"testing"

	"github.com/innodb-tools/ibdparser/pkg/checksum"
	"github.com/stretchr/testify/require"
)

const testPageSize = 16384

// buildPage constructs a syntactically valid page buffer of testPageSize
// bytes with the given type and page number, FIL header/trailer filled in
// and checksummed, body left zeroed for the caller to overwrite.
func buildPage(t *testing.T, typ Type, pageNo uint32) []byte {
	t.Helper()
	buf := make([]byte, testPageSize)
	put32 := func(off int, v uint32) {
		buf[off] = byte(v >> 24)
		buf[off+1] = byte(v >> 16)
		buf[off+2] = byte(v >> 8)
		buf[off+3] = byte(v)
	}
	put16 := func(off int, v uint16) {
		buf[off] = byte(v >> 8)
		buf[off+1] = byte(v)
	}
	put32(FilPageNo, pageNo)
	put32(FilPrev, UndefinedPage)
	put32(FilNext, UndefinedPage)
	put16(FilType, uint16(typ))
	put32(FilSpaceID, 0)

	n := testPageSize
	put32(n-8, 0)
	put32(n-4, 0)

	cksum := checksum.Fold(buf)
	put32(FilChecksum, cksum)
	put32(n-4, cksum)
	return buf
}

func TestFSPHdrPageDecodesHeaderAndEntries(t *testing.T) {
	buf := buildPage(t, TypeFspHdr, 0)

	off := fspHeaderOffset
	put32 := func(o int, v uint32) {
		buf[o] = byte(v >> 24)
		buf[o+1] = byte(v >> 16)
		buf[o+2] = byte(v >> 8)
		buf[o+3] = byte(v)
	}
	put32(off+0, 7)    // space id
	put32(off+4, 1024) // size
	put32(off+8, 64)   // free limit
	put32(off+12, 0)   // flags
	put32(off+16, 2)   // frag n used

	// rewrite checksum after header edits.
	cksum := checksum.Fold(buf)
	put32(FilChecksum, cksum)
	put32(len(buf)-4, cksum)

	p, err := Decode(buf)
	require.NoError(t, err)
	fsp, ok := p.(*FSPPage)
	require.True(t, ok)
	require.Equal(t, uint32(7), fsp.Header.SpaceID)
	require.Equal(t, uint32(1024), fsp.Header.SizePages)
	require.Equal(t, uint32(64), fsp.Header.FreeLimit)
	require.Equal(t, uint32(2), fsp.Header.FragNUsed)
	require.Len(t, fsp.Entries, xdesEntryCount)
	require.Equal(t, uint32(0), fsp.Entries[0].StartPage)
	require.Equal(t, uint32(64), fsp.Entries[1].StartPage)
}

func TestXdesPageHasNoHeaderButHasEntries(t *testing.T) {
	buf := buildPage(t, TypeXdes, 64)
	p, err := Decode(buf)
	require.NoError(t, err)
	fsp, ok := p.(*FSPPage)
	require.True(t, ok)
	require.Equal(t, uint32(0), fsp.Header.SpaceID)
	require.Equal(t, uint32(64), fsp.Entries[0].StartPage)
}

func TestXDESEntryBitmapBits(t *testing.T) {
	e := XDESEntry{}
	e.Bitmap[0] = 0x80 // bit 7 (MSB, bits numbered LSB-first) set -> page 3's "clean" bit (index 7 = page3*2+1)
	require.True(t, e.CleanPage(3))
	require.False(t, e.FreePage(3))
	require.False(t, e.FreePage(0))
}
