package page

import (
	"testing"

	"github.com/innodb-tools/ibdparser/pkg/checksum"
	"github.com/stretchr/testify/require"
)

func writeInodeEntry(buf []byte, off int, fsegID uint64, magic uint32) {
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
	put64(off, fsegID)
	// not_full_n_used
	put32(off+8, 0)
	// three 16-byte list bases left zero
	put32(off+8+4+48, magic)
	for i := 0; i < fragArraySlots; i++ {
		put32(off+8+4+48+4+i*4, UndefinedPage)
	}
}

func finalizeChecksum(buf []byte) {
	n := len(buf)
	cksum := checksum.Fold(buf)
	buf[FilChecksum] = byte(cksum >> 24)
	buf[FilChecksum+1] = byte(cksum >> 16)
	buf[FilChecksum+2] = byte(cksum >> 8)
	buf[FilChecksum+3] = byte(cksum)
	buf[n-4] = byte(cksum >> 24)
	buf[n-3] = byte(cksum >> 16)
	buf[n-2] = byte(cksum >> 8)
	buf[n-1] = byte(cksum)
}

func TestInodePageDecodesAllocatedEntry(t *testing.T) {
	buf := buildPage(t, TypeInode, 2)
	writeInodeEntry(buf, inodeEntriesOffset, 555, InodeMagicN)
	finalizeChecksum(buf)

	p, err := Decode(buf)
	require.NoError(t, err)
	ip, ok := p.(*InodePage)
	require.True(t, ok)
	require.True(t, ip.Entries[0].Allocated())
	require.True(t, ip.Entries[0].MagicValid())
	require.Equal(t, uint64(555), ip.Entries[0].FsegID)
	require.Len(t, ip.Entries[0].FragPages(), fragArraySlots)
	require.Equal(t, UndefinedPage, ip.Entries[0].FragPages()[0])
}

func TestInodePageRejectsBadMagic(t *testing.T) {
	buf := buildPage(t, TypeInode, 2)
	writeInodeEntry(buf, inodeEntriesOffset, 1, 0xdeadbeef)
	finalizeChecksum(buf)

	_, err := Decode(buf)
	require.Error(t, err)
}

func TestInodeUnallocatedEntryIgnoresMagic(t *testing.T) {
	buf := buildPage(t, TypeInode, 2)
	writeInodeEntry(buf, inodeEntriesOffset, 0, 0)
	finalizeChecksum(buf)

	p, err := Decode(buf)
	require.NoError(t, err)
	ip := p.(*InodePage)
	require.False(t, ip.Entries[0].Allocated())
	require.True(t, ip.Entries[0].MagicValid())
}
