package page

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndexPageHeaderAndPseudoRecords(t *testing.T) {
	buf := buildPage(t, TypeIndex, 3)

	put16 := func(o int, v uint16) {
		buf[o] = byte(v >> 8)
		buf[o+1] = byte(v)
	}
	put64 := func(o int, v uint64) {
		for i := 0; i < 8; i++ {
			buf[o+i] = byte(v >> uint(56-8*i))
		}
	}

	put16(indexHeaderOffset+0, 2)                  // n_dir_slots
	put16(indexHeaderOffset+2, 200)                // heap_top
	put16(indexHeaderOffset+4, 5|compactFormatBit) // n_heap, compact
	put16(indexHeaderOffset+16, 7)                  // n_recs
	put64(indexHeaderOffset+18, 42)                 // max_trx_id
	put16(indexHeaderOffset+26, 0)                  // level
	put64(indexHeaderOffset+28, 99)                 // index_id

	copy(buf[InfimumOffset:], []byte("infimum\x00"))
	copy(buf[SupremumOffset:], []byte("supremum"))

	// two directory slots just before the trailer.
	n := len(buf)
	slotsStart := n - FilTrailerLen - 4
	put16(slotsStart, 99)
	put16(slotsStart+2, 150)

	finalizeChecksum(buf)

	p, err := Decode(buf)
	require.NoError(t, err)
	ip, ok := p.(*IndexPage)
	require.True(t, ok)
	require.Equal(t, uint16(2), ip.PageHeader.NDirSlots)
	require.True(t, ip.PageHeader.Compact())
	require.Equal(t, uint16(5), ip.PageHeader.HeapCount())
	require.Equal(t, uint64(42), ip.PageHeader.MaxTrxID)
	require.Equal(t, uint64(99), ip.PageHeader.IndexID)
	require.Equal(t, []uint16{99, 150}, ip.DirSlots)

	inf, err := ip.Infimum()
	require.NoError(t, err)
	require.Equal(t, "infimum\x00", string(inf))

	sup, err := ip.Supremum()
	require.NoError(t, err)
	require.Equal(t, "supremum", string(sup))
}
