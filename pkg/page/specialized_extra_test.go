package page

import (
	"bytes"
	"compress/flate"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlobPageDecodesPayload(t *testing.T) {
	buf := buildPage(t, TypeBlob, 20)
	put32 := func(o int, v uint32) {
		buf[o] = byte(v >> 24)
		buf[o+1] = byte(v >> 16)
		buf[o+2] = byte(v >> 8)
		buf[o+3] = byte(v)
	}
	put32(blobNextPageOffset, UndefinedPage)
	payload := []byte("hello blob continuation")
	put32(blobLengthOffset, uint32(len(payload)))
	copy(buf[blobDataOffset:], payload)
	finalizeChecksum(buf)

	p, err := Decode(buf)
	require.NoError(t, err)
	bp, ok := p.(*BlobPage)
	require.True(t, ok)
	_, hasNext := bp.HasNext()
	require.False(t, hasNext)
	require.Equal(t, payload, bp.Data)
}

func TestUndoLogPageWalksRecordChain(t *testing.T) {
	buf := buildPage(t, TypeUndoLog, 30)
	put16 := func(o int, v uint16) {
		buf[o] = byte(v >> 8)
		buf[o+1] = byte(v)
	}
	const first = 200
	const second = 210
	const free = 220
	put16(undoPageType, 1)
	put16(undoPageStart, first)
	put16(undoPageFree, free)
	put16(undoLastLogOffset, 0)

	buf[first] = 1 // insert type
	put16(first+1, second)
	buf[second] = 3 // delete mark type
	put16(second+1, free)

	finalizeChecksum(buf)

	p, err := Decode(buf)
	require.NoError(t, err)
	up, ok := p.(*UndoLogPage)
	require.True(t, ok)
	require.Len(t, up.Records, 2)
	require.Equal(t, uint8(1), up.Records[0].Type)
	require.Equal(t, uint8(3), up.Records[1].Type)
}

func TestSDIPageInflatesPayload(t *testing.T) {
	buf := buildPage(t, TypeSDI, 40)
	put32 := func(o int, v uint32) {
		buf[o] = byte(v >> 24)
		buf[o+1] = byte(v >> 16)
		buf[o+2] = byte(v >> 8)
		buf[o+3] = byte(v)
	}
	put64 := func(o int, v uint64) {
		for i := 0; i < 8; i++ {
			buf[o+i] = byte(v >> uint(56-8*i))
		}
	}

	var compressed bytes.Buffer
	w, err := flate.NewWriter(&compressed, flate.DefaultCompression)
	require.NoError(t, err)
	_, err = w.Write([]byte(`{"type":"table"}`))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	put32(sdiKeyTypeOffset, 1)
	put64(sdiKeyIDOffset, 55)
	put32(sdiUncompLenOffset, 17)
	put32(sdiCompLenOffset, uint32(compressed.Len()))
	copy(buf[sdiDataOffset:], compressed.Bytes())

	finalizeChecksum(buf)

	p, err := Decode(buf)
	require.NoError(t, err)
	sp, ok := p.(*SDIPage)
	require.True(t, ok)
	require.Equal(t, uint64(55), sp.Key.ID)
	require.Equal(t, `{"type":"table"}`, sp.Text)
}

func TestIbufBitmapDecodesStatuses(t *testing.T) {
	buf := buildPage(t, TypeIbufBitmap, 1)
	buf[ibufBitmapOffset] = 0xD0 // 1101 0000: first nibble 1101 -> free=3,buf=0,ibuf=1
	finalizeChecksum(buf)

	p, err := Decode(buf)
	require.NoError(t, err)
	ip, ok := p.(*IbufBitmapPage)
	require.True(t, ok)
	require.Equal(t, uint8(3), ip.Statuses[0].FreeLevel)
	require.False(t, ip.Statuses[0].Buffered)
	require.True(t, ip.Statuses[0].Ibuf)
}
