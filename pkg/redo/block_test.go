package redo

import (
	"testing"

	"github.com/innodb-tools/ibdparser/pkg/checksum"
	"github.com/stretchr/testify/require"
)

func buildBlock(t *testing.T, blockNumber uint32, flush bool, dataLength, firstRecGroup uint16, checkpointNo uint32, fill byte) []byte {
	t.Helper()
	buf := make([]byte, BlockSize)
	no := blockNumber
	if flush {
		no |= blockNumberFlushFlag
	}
	buf[0] = byte(no >> 24)
	buf[1] = byte(no >> 16)
	buf[2] = byte(no >> 8)
	buf[3] = byte(no)
	buf[4] = byte(dataLength >> 8)
	buf[5] = byte(dataLength)
	buf[6] = byte(firstRecGroup >> 8)
	buf[7] = byte(firstRecGroup)
	buf[8] = byte(checkpointNo >> 24)
	buf[9] = byte(checkpointNo >> 16)
	buf[10] = byte(checkpointNo >> 8)
	buf[11] = byte(checkpointNo)
	for i := BlockHeaderSize; i < BlockSize-BlockTrailerSize; i++ {
		buf[i] = fill
	}
	sum := checksum.RawFold(buf[:BlockSize-BlockTrailerSize])
	buf[BlockSize-4] = byte(sum >> 24)
	buf[BlockSize-3] = byte(sum >> 16)
	buf[BlockSize-2] = byte(sum >> 8)
	buf[BlockSize-1] = byte(sum)
	return buf
}

func TestDecodeBlockHeaderFields(t *testing.T) {
	buf := buildBlock(t, 42, true, 100, 12, 7, 0xAB)
	b, err := DecodeBlock(buf)
	require.NoError(t, err)
	require.Equal(t, uint32(42), b.Header.BlockNumber)
	require.True(t, b.Header.Flush)
	require.Equal(t, uint16(100), b.Header.DataLength)
	require.Equal(t, uint16(12), b.Header.FirstRecGroup)
	require.Equal(t, uint32(7), b.Header.CheckpointNo)
	require.Equal(t, 100, b.UsedLen)
	require.True(t, b.ChecksumValid)
	require.Len(t, b.Body, BlockDataSize)
}

func TestDecodeBlockZeroDataLengthMeansFullBlock(t *testing.T) {
	buf := buildBlock(t, 1, false, 0, 0, 0, 0x11)
	b, err := DecodeBlock(buf)
	require.NoError(t, err)
	require.Equal(t, BlockDataSize, b.UsedLen)
}

func TestDecodeBlockRejectsWrongSize(t *testing.T) {
	_, err := DecodeBlock(make([]byte, 100))
	require.Error(t, err)
}

func TestDecodeBlockDetectsChecksumMismatch(t *testing.T) {
	buf := buildBlock(t, 1, false, 50, 0, 0, 0x22)
	buf[BlockSize-1] ^= 0xFF
	b, err := DecodeBlock(buf)
	require.NoError(t, err)
	require.False(t, b.ChecksumValid)
}
