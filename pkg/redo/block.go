// Package redo implements the redo log reader (spec.md §4.11/§4.12,
// components C11/C12): 512-byte log blocks, per-file headers and
// checkpoints, multi-file log groups, and the redo-record dispatch
// table.
//
// Grounded on the teacher's server/innodb/innodb_store/store/storebytes/logs
// package (RedoLogBlock/LogBlockHeader/LogBlockTrailer field layout,
// RedoLogBlockPreFour/CheckPoint1/CheckPoint2 for the per-file header
// area) and server/innodb/storage/store/logs/redo_log_type.go (the
// MLOG_* record type vocabulary), rewritten from raw `[]byte`-typed
// struct fields with no decode logic into typed values decoded through
// pkg/cursor, and read-only (the teacher's types exist to be
// constructed and written during recovery; this parser only reads).
package redo

import (
	"github.com/innodb-tools/ibdparser/internal/errs"
	"github.com/innodb-tools/ibdparser/pkg/checksum"
	"github.com/innodb-tools/ibdparser/pkg/cursor"
)

// Block layout constants (spec.md §4.11).
const (
	BlockSize       = 512
	BlockHeaderSize = 12
	BlockTrailerSize = 4
	BlockDataSize   = BlockSize - BlockHeaderSize - BlockTrailerSize // 496

	blockNumberFlushFlag = 1 << 31
	dataLengthMask       = 0x0FFF
)

// BlockHeader is the 12-byte header of one redo log block.
type BlockHeader struct {
	BlockNumber   uint32 // low 31 bits; see Flush for the top bit
	Flush         bool
	DataLength    uint16 // significant in the low 12 bits
	FirstRecGroup uint16 // byte offset of the first record starting in this block, 0 if none
	CheckpointNo  uint32
}

// Block is one decoded 512-byte redo log block. Body is always the
// full BlockDataSize-byte data area (addressing within a log group
// treats every block as a fixed-size slot, per spec.md §4.12's
// LSN→offset formula); UsedLen reports how much of it the block's own
// header claims is meaningful.
type Block struct {
	Header         BlockHeader
	Body           []byte
	UsedLen        int
	ChecksumStored uint32
	ChecksumValid  bool
}

// DecodeBlock parses a raw BlockSize-byte buffer.
func DecodeBlock(buf []byte) (*Block, error) {
	if len(buf) != BlockSize {
		return nil, errs.Errorf(errs.InvalidBuffer, "redo block must be %d bytes, got %d", BlockSize, len(buf))
	}
	c := cursor.New(buf)

	rawNo, err := c.U32()
	if err != nil {
		return nil, errs.Annotate(err, errs.InvalidBuffer, "reading block number")
	}
	rawLen, err := c.U16()
	if err != nil {
		return nil, errs.Annotate(err, errs.InvalidBuffer, "reading data length")
	}
	firstRecGroup, err := c.U16()
	if err != nil {
		return nil, errs.Annotate(err, errs.InvalidBuffer, "reading first_rec_group")
	}
	checkpointNo, err := c.U32()
	if err != nil {
		return nil, errs.Annotate(err, errs.InvalidBuffer, "reading checkpoint_no")
	}

	h := BlockHeader{
		BlockNumber:   rawNo &^ blockNumberFlushFlag,
		Flush:         rawNo&blockNumberFlushFlag != 0,
		DataLength:    rawLen & dataLengthMask,
		FirstRecGroup: firstRecGroup,
		CheckpointNo:  checkpointNo,
	}

	used := int(h.DataLength)
	if used == 0 {
		// spec.md §4.11: 0 means the block's whole data area is in use.
		used = BlockDataSize
	}
	if used > BlockDataSize {
		return nil, errs.Errorf(errs.InvalidBuffer, "block data_length %d exceeds capacity %d", used, BlockDataSize)
	}

	computed := checksum.RawFold(buf[:BlockSize-BlockTrailerSize])
	stored := beUint32(buf[BlockSize-BlockTrailerSize:])
	b := &Block{
		Header:         h,
		Body:           buf[BlockHeaderSize : BlockHeaderSize+BlockDataSize],
		UsedLen:        used,
		ChecksumStored: stored,
		ChecksumValid:  computed == stored,
	}
	return b, nil
}

func beUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
