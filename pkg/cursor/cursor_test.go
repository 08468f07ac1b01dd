package cursor

import (
	"math"
	"testing"

	"github.com/innodb-tools/ibdparser/internal/errs"
	"github.com/stretchr/testify/require"
)

func TestBasicReads(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	c := New(buf)

	b, err := c.U8()
	require.NoError(t, err)
	require.Equal(t, uint8(0x01), b)

	u16, err := c.U16()
	require.NoError(t, err)
	require.Equal(t, uint16(0x0203), u16)

	u32, err := c.U32()
	require.NoError(t, err)
	require.Equal(t, uint32(0x04050607), u32)
}

func TestReadPastEndIsFatal(t *testing.T) {
	c := New([]byte{0x01})
	_, err := c.U32()
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.InvalidBuffer))
}

func TestSaveRestore(t *testing.T) {
	c := New([]byte{1, 2, 3, 4})
	c.Save()
	_, _ = c.U16()
	require.Equal(t, 2, c.Pos())
	c.Restore()
	require.Equal(t, 0, c.Pos())
}

func TestNameRegionReportsContext(t *testing.T) {
	c := New([]byte{1})
	err := c.Name("fil_header", func() error {
		_, e := c.U32()
		return e
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "fil_header")
}

func TestBitReads(t *testing.T) {
	// 0b1010_0000
	c := New([]byte{0xA0})
	bit0, err := c.Bit(0, 0)
	require.NoError(t, err)
	require.True(t, bit0)
	bit1, err := c.Bit(0, 1)
	require.NoError(t, err)
	require.False(t, bit1)
	bit2, err := c.Bit(0, 2)
	require.NoError(t, err)
	require.True(t, bit2)
}

func TestBitsField(t *testing.T) {
	// n_heap-style 16-bit field with top bit as a flag: 1000_0000_0000_0101
	c := New([]byte{0x80, 0x05})
	v, err := c.Bits(0, 16)
	require.NoError(t, err)
	require.Equal(t, uint32(0x8005), v)
}

func TestCompressedUint32RoundTrip(t *testing.T) {
	samples := []uint32{0, 1, 0x7F, 0x80, 0x3FFF, 0x4000, 0x1FFFFF, 0x200000,
		0xFFFFFFF, 0x10000000, 0xFFFFFFFF, math.MaxUint32 / 2}
	for _, v := range samples {
		enc := EncodeCompressedUint32(v)
		c := New(enc)
		got, err := c.CompressedUint32()
		require.NoError(t, err)
		require.Equal(t, v, got, "round trip for %d", v)
		require.Equal(t, len(enc), c.Pos())
	}
}

func TestCompressedUint32Lengths(t *testing.T) {
	require.Len(t, EncodeCompressedUint32(0), 1)
	require.Len(t, EncodeCompressedUint32(0x80), 2)
	require.Len(t, EncodeCompressedUint32(0x4000), 3)
	require.Len(t, EncodeCompressedUint32(0x200000), 4)
	require.Len(t, EncodeCompressedUint32(0x10000000), 5)
}
