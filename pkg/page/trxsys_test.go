package page

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrxSysPageDecodesRsegsAndStopsAtTerminator(t *testing.T) {
	buf := buildPage(t, TypeTrxSys, 5)

	put64 := func(o int, v uint64) {
		for i := 0; i < 8; i++ {
			buf[o+i] = byte(v >> uint(56-8*i))
		}
	}
	put32 := func(o int, v uint32) {
		buf[o] = byte(v >> 24)
		buf[o+1] = byte(v >> 16)
		buf[o+2] = byte(v >> 8)
		buf[o+3] = byte(v)
	}

	put64(trxSysTrxIDOffset, 12345)
	put32(trxSysRsegsOffset, 0)   // rseg 0: space 0
	put32(trxSysRsegsOffset+4, 6) // rseg 0: page 6
	put32(trxSysRsegsOffset+8, 0)
	put32(trxSysRsegsOffset+12, UndefinedPage) // terminator at slot 1

	finalizeChecksum(buf)

	p, err := Decode(buf)
	require.NoError(t, err)
	tp, ok := p.(*TrxSysPage)
	require.True(t, ok)
	require.Equal(t, uint64(12345), tp.TrxID)
	require.True(t, tp.Rsegs[0].Present())
	require.Equal(t, uint32(6), tp.Rsegs[0].PageNo)
	require.False(t, tp.Rsegs[1].Present())
}
