package redo

import (
	"io"

	"github.com/innodb-tools/ibdparser/internal/errs"
	"github.com/innodb-tools/ibdparser/internal/xlog"
)

// Reader iterates redo records across a Group, reassembling payloads
// that cross block boundaries (spec.md §4.12).
type Reader struct {
	group *Group

	fileIdx  int
	blockIdx int
	block    *Block
	pos      int // byte offset within block.Body
	lsn      uint64
}

// NewReader positions a Reader at the start of the group (its StartLSN).
func NewReader(g *Group) (*Reader, error) {
	r := &Reader{group: g}
	if err := r.Seek(g.StartLSN); err != nil {
		return nil, err
	}
	return r, nil
}

// Seek repositions the reader at lsn.
func (r *Reader) Seek(lsn uint64) error {
	fi, bi, byteOff, err := r.group.locate(lsn)
	if err != nil {
		return err
	}
	if err := r.loadBlock(fi, bi); err != nil {
		return err
	}
	r.pos = byteOff
	r.lsn = lsn
	return nil
}

// LSN returns the reader's current position.
func (r *Reader) LSN() uint64 { return r.lsn }

func (r *Reader) loadBlock(fileIdx, blockIdx int) error {
	f := r.group.Files[fileIdx]
	b, err := f.Block(blockIdx)
	if err != nil {
		return err
	}
	r.fileIdx = fileIdx
	r.blockIdx = blockIdx
	r.block = b
	return nil
}

// advance moves to the next block, crossing a file boundary if needed.
// Returns io.EOF once the last file's last block has been consumed.
func (r *Reader) advance() error {
	nextBlock := r.blockIdx + 1
	nextFile := r.fileIdx
	if nextBlock >= r.group.Files[r.fileIdx].NumBlocks() {
		nextBlock = 0
		nextFile++
	}
	if nextFile >= len(r.group.Files) {
		return io.EOF
	}
	if err := r.loadBlock(nextFile, nextBlock); err != nil {
		return err
	}
	r.pos = 0
	return nil
}

func (r *Reader) readByte() (byte, error) {
	for r.pos >= r.block.UsedLen {
		// spec.md §4.11: a block whose data_length claims fewer than the
		// full 496 bytes is the last block holding real data — there is
		// nothing meaningful beyond it anywhere in the group.
		if r.block.UsedLen < BlockDataSize {
			return 0, io.EOF
		}
		if err := r.advance(); err != nil {
			return 0, err
		}
	}
	b := r.block.Body[r.pos]
	r.pos++
	r.lsn++
	return b, nil
}

func (r *Reader) readBytes(n int) ([]byte, error) {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		b, err := r.readByte()
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

// readCompressedUint32 mirrors cursor.Cursor.CompressedUint32's codec
// (spec.md §4.1/§9) but reads through readByte so it can span blocks.
func (r *Reader) readCompressedUint32() (uint32, error) {
	b0, err := r.readByte()
	if err != nil {
		return 0, err
	}
	switch {
	case b0&0x80 == 0:
		return uint32(b0), nil
	case b0&0xC0 == 0x80:
		b1, err := r.readByte()
		if err != nil {
			return 0, err
		}
		return uint32(b0&0x3F)<<8 | uint32(b1), nil
	case b0&0xE0 == 0xC0:
		rest, err := r.readBytes(2)
		if err != nil {
			return 0, err
		}
		return uint32(b0&0x1F)<<16 | uint32(rest[0])<<8 | uint32(rest[1]), nil
	case b0&0xF0 == 0xE0:
		rest, err := r.readBytes(3)
		if err != nil {
			return 0, err
		}
		return uint32(b0&0x0F)<<24 | uint32(rest[0])<<16 | uint32(rest[1])<<8 | uint32(rest[2]), nil
	case b0&0xF8 == 0xF0:
		rest, err := r.readBytes(4)
		if err != nil {
			return 0, err
		}
		hi := uint32(rest[0])<<24 | uint32(rest[1])<<16 | uint32(rest[2])<<8 | uint32(rest[3])
		return hi<<3 | uint32(b0&0x07), nil
	default:
		return 0, errs.Errorf(errs.InvalidBuffer, "impossible compressed-uint32 prefix 0x%02x", b0)
	}
}

// resync implements spec.md §4.12's recovery from an unknown record
// type: abandon the current block and reposition at the next block
// whose FirstRecGroup names a genuine resync point.
func (r *Reader) resync() error {
	for {
		if err := r.advance(); err != nil {
			return err
		}
		if r.block.Header.FirstRecGroup != 0 {
			r.pos = int(r.block.Header.FirstRecGroup) - BlockHeaderSize
			if r.pos < 0 || r.pos > BlockDataSize {
				continue
			}
			r.lsn = blockStartLSN(r.group, r.fileIdx, r.blockIdx) + uint64(r.pos)
			return nil
		}
	}
}

func blockStartLSN(g *Group, fileIdx, blockIdx int) uint64 {
	return g.StartLSN + uint64(fileIdx)*g.capacity + uint64(blockIdx)*BlockDataSize
}

// Next decodes and returns the next record, or (nil, nil) at the true
// end of the group's data.
func (r *Reader) Next() (*Record, error) {
	for {
		startLSN := r.lsn
		typeByte, err := r.readByte()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		single := typeByte&singleRecordFlag != 0
		typeCode := typeByte &^ singleRecordFlag

		spaceID, err := r.readCompressedUint32()
		if err != nil {
			return nil, err
		}
		pageNumber, err := r.readCompressedUint32()
		if err != nil {
			return nil, err
		}

		rec := &Record{
			TypeCode:     typeCode,
			SingleRecord: single,
			SpaceID:      spaceID,
			PageNumber:   pageNumber,
			LSNStart:     startLSN,
		}

		var decodeErr error
		switch typeCode {
		case codeInitFilePage:
			rec.Kind = KindInitFilePage
		case codeIbufBitmapInit:
			rec.Kind = KindIbufBitmapInit
		case codeRecInsert, codeCompRecInsert:
			rec.Insert, decodeErr = r.decodeRecInsert()
			rec.Kind = KindRecInsert
		case codeRecUpdateInPlace, codeCompRecUpdateInPlace:
			rec.Update, decodeErr = r.decodeRecUpdateInPlace()
			rec.Kind = KindRecUpdateInPlace
		case codeRecDelete, codeCompRecDelete:
			rec.Delete, decodeErr = r.decodeRecDelete()
			rec.Kind = KindRecDelete
		case codeUndoInsert:
			rec.Undo, decodeErr = r.decodeUndoInsert()
			rec.Kind = KindUndoInsert
		default:
			decodeErr = errUnknownRecordType
		}

		if decodeErr != nil {
			xlog.Warnf("redo: record type %d at lsn %d not decoded (%v), resyncing", typeCode, startLSN, decodeErr)
			if err := r.resync(); err != nil {
				if err == io.EOF {
					return nil, nil
				}
				return nil, err
			}
			continue
		}

		rec.LSNEnd = r.lsn
		return rec, nil
	}
}

func (r *Reader) decodeRecInsert() (*RecInsert, error) {
	ins := &RecInsert{}
	var err error
	if ins.PageOffset, err = r.readCompressedUint32(); err != nil {
		return nil, err
	}
	if ins.EndSegLen, err = r.readCompressedUint32(); err != nil {
		return nil, err
	}
	hasExtra := ins.EndSegLen&1 != 0
	ins.EndSegLen >>= 1
	if hasExtra {
		b, err := r.readByte()
		if err != nil {
			return nil, err
		}
		ins.InfoAndStatusBits = b
		if ins.OriginOffset, err = r.readCompressedUint32(); err != nil {
			return nil, err
		}
		if ins.MismatchIndex, err = r.readCompressedUint32(); err != nil {
			return nil, err
		}
	}
	n := int(ins.EndSegLen)
	if n < 0 || n > BlockDataSize {
		return nil, errs.Errorf(errs.InvalidBuffer, "rec_insert end_seg_len %d implausible", n)
	}
	if ins.Data, err = r.readBytes(n); err != nil {
		return nil, err
	}
	return ins, nil
}

func (r *Reader) decodeRecUpdateInPlace() (*RecUpdateInPlace, error) {
	up := &RecUpdateInPlace{}
	var err error
	if up.PageOffset, err = r.readCompressedUint32(); err != nil {
		return nil, err
	}
	if up.InfoFlags, err = r.readByte(); err != nil {
		return nil, err
	}
	// The update-field diff list's length is itself encoded within the
	// diffs (spec.md §9: partially understood, kept raw); read up to the
	// rest of the current block's remaining bytes as a best-effort
	// capture rather than a fully reconstructed field list.
	remaining := BlockDataSize - r.pos
	if remaining < 0 {
		remaining = 0
	}
	if up.Raw, err = r.readBytes(remaining); err != nil {
		return nil, err
	}
	return up, nil
}

func (r *Reader) decodeRecDelete() (*RecDelete, error) {
	del := &RecDelete{}
	var err error
	if del.PageOffset, err = r.readCompressedUint32(); err != nil {
		return nil, err
	}
	return del, nil
}

func (r *Reader) decodeUndoInsert() (*RecUndoInsert, error) {
	hi, err := r.readByte()
	if err != nil {
		return nil, err
	}
	lo, err := r.readByte()
	if err != nil {
		return nil, err
	}
	n := int(hi)<<8 | int(lo)
	if n < 0 || n > BlockDataSize {
		return nil, errs.Errorf(errs.InvalidBuffer, "undo_insert length %d implausible", n)
	}
	data, err := r.readBytes(n)
	if err != nil {
		return nil, err
	}
	return &RecUndoInsert{Data: data}, nil
}
