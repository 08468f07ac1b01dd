package redo

import (
	"os"

	"github.com/innodb-tools/ibdparser/internal/errs"
	"github.com/innodb-tools/ibdparser/pkg/checksum"
	"github.com/innodb-tools/ibdparser/pkg/cursor"
)

// Per-file header layout (spec.md §4.12): a 2-KiB header area (4
// BlockSize-sized slots) holding the file header in slot 0, a
// checkpoint struct in each of slots 1 and 2, and an unused slot 3,
// followed by the actual 512-byte redo blocks.
const (
	HeaderSize = 4 * BlockSize // 2048

	fileHdrGroupIDOff  = 0
	fileHdrPadOff      = 4
	fileHdrStartLSNOff = 8
	fileHdrFileNoOff   = 16
	fileHdrCreatorOff  = 20
	fileHdrCreatorLen  = 32
	fileHdrChecksumOff = BlockSize - BlockTrailerSize

	checkpoint1Offset = BlockSize
	checkpoint2Offset = 2 * BlockSize
)

// Checkpoint is one of a log file's two checkpoint structs (spec.md
// §4.12). Offsets mirror InnoDB's LOG_CHECKPOINT_* layout: number, lsn,
// offset and log buffer size up front, then the archived LSN, a
// reserved per-group archive array, two checksums, the free limit and
// the fsp magic number that confirms the struct parsed correctly.
type Checkpoint struct {
	Number      uint64
	LSN         uint64
	Offset      uint64
	LogBufSize  uint64
	ArchivedLSN uint64
	Checksum1   uint32
	Checksum2   uint32
	FreeLimit   uint32
	FSPMagic    uint32
	Valid       bool
}

// FSPMagicExpected is InnoDB's LOG_CHECKPOINT_FSP_MAGIC_N_VAL constant;
// a checkpoint whose FSPMagic differs from this parsed correctly but
// was never actually written by InnoDB (or is corrupt).
const FSPMagicExpected uint32 = 1_441_231_243

const (
	checkpointArrayEnd = 296 // LOG_CHECKPOINT_ARRAY_END
	checkpointFreeLimitOff = checkpointArrayEnd + 8
)

func decodeCheckpoint(buf []byte) (Checkpoint, error) {
	if len(buf) != BlockSize {
		return Checkpoint{}, errs.Errorf(errs.InvalidBuffer, "checkpoint struct must be %d bytes, got %d", BlockSize, len(buf))
	}
	c := cursor.New(buf)
	var cp Checkpoint
	var err error
	if cp.Number, err = c.U64(); err != nil {
		return cp, errs.Annotate(err, errs.InvalidBuffer, "reading checkpoint number")
	}
	if cp.LSN, err = c.U64(); err != nil {
		return cp, errs.Annotate(err, errs.InvalidBuffer, "reading checkpoint lsn")
	}
	if cp.Offset, err = c.U64(); err != nil {
		return cp, errs.Annotate(err, errs.InvalidBuffer, "reading checkpoint offset")
	}
	if cp.LogBufSize, err = c.U64(); err != nil {
		return cp, errs.Annotate(err, errs.InvalidBuffer, "reading checkpoint log buf size")
	}
	if cp.ArchivedLSN, err = c.U64(); err != nil {
		return cp, errs.Annotate(err, errs.InvalidBuffer, "reading checkpoint archived lsn")
	}

	cp.Checksum1 = beUint32(buf[checkpointArrayEnd:])
	cp.Checksum2 = beUint32(buf[checkpointArrayEnd+4:])
	cp.FreeLimit = beUint32(buf[checkpointFreeLimitOff:])
	cp.FSPMagic = beUint32(buf[checkpointFreeLimitOff+4:])

	// Two checksum regions, mirroring how pkg/checksum.Fold folds a page
	// as header/body slivers rather than one flat range: region 1 covers
	// the LSN-through-archive-array fields, region 2 the trailing
	// free-limit/magic fields through the end of the block. The
	// checkpoint number (bytes 0-7) lies in neither region, so a change
	// to it is not caught by either checksum.
	computed1 := checksum.RawFold(buf[8:checkpointArrayEnd])
	computed2 := checksum.RawFold(buf[checkpointFreeLimitOff:BlockSize])
	cp.Valid = computed1 == cp.Checksum1 && computed2 == cp.Checksum2
	return cp, nil
}

// LogFile is one file of a log group.
type LogFile struct {
	Path     string
	GroupID  uint32
	StartLSN uint64
	FileNo   uint32
	Creator  string

	Checkpoints     [2]Checkpoint
	ActiveCheckpoint *Checkpoint

	file   *os.File
	blocks int
}

// Open reads and parses a log file's header and checkpoints; redo
// blocks are read lazily via Block.
func Open(path string) (*LogFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Annotatef(err, errs.InvalidBuffer, "opening log file %s", path)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errs.Annotatef(err, errs.InvalidBuffer, "stat %s", path)
	}
	if info.Size() <= HeaderSize {
		f.Close()
		return nil, errs.Errorf(errs.InvalidBuffer, "log file %s is smaller than its header", path)
	}

	hdr := make([]byte, HeaderSize)
	if _, err := f.ReadAt(hdr, 0); err != nil {
		f.Close()
		return nil, errs.Annotatef(err, errs.InvalidBuffer, "reading header of %s", path)
	}

	lf := &LogFile{
		Path:    path,
		file:    f,
		blocks:  int(info.Size()-HeaderSize) / BlockSize,
		GroupID: beUint32(hdr[fileHdrGroupIDOff:]),
		FileNo:  beUint32(hdr[fileHdrFileNoOff:]),
		Creator: trimNUL(hdr[fileHdrCreatorOff : fileHdrCreatorOff+fileHdrCreatorLen]),
	}
	lf.StartLSN = beUint64(hdr[fileHdrStartLSNOff:])

	cp1, err := decodeCheckpoint(hdr[checkpoint1Offset : checkpoint1Offset+BlockSize])
	if err != nil {
		f.Close()
		return nil, errs.Annotatef(err, errs.InvalidBuffer, "decoding checkpoint 1 of %s", path)
	}
	cp2, err := decodeCheckpoint(hdr[checkpoint2Offset : checkpoint2Offset+BlockSize])
	if err != nil {
		f.Close()
		return nil, errs.Annotatef(err, errs.InvalidBuffer, "decoding checkpoint 2 of %s", path)
	}
	lf.Checkpoints = [2]Checkpoint{cp1, cp2}
	lf.ActiveCheckpoint = selectCheckpoint(&lf.Checkpoints[0], &lf.Checkpoints[1])

	return lf, nil
}

// selectCheckpoint implements spec.md §4.12's selection rule: the
// larger number among the slots whose checksums validate.
func selectCheckpoint(a, b *Checkpoint) *Checkpoint {
	switch {
	case a.Valid && b.Valid:
		if a.Number >= b.Number {
			return a
		}
		return b
	case a.Valid:
		return a
	case b.Valid:
		return b
	default:
		return nil
	}
}

// Close releases the underlying file handle.
func (f *LogFile) Close() error { return f.file.Close() }

// NumBlocks returns the number of 512-byte redo blocks following the
// file's 2-KiB header.
func (f *LogFile) NumBlocks() int { return f.blocks }

// Block decodes the i-th redo block (0-based, after the header area).
func (f *LogFile) Block(i int) (*Block, error) {
	if i < 0 || i >= f.blocks {
		return nil, errs.Errorf(errs.InvalidBuffer, "block index %d out of range [0,%d) for %s", i, f.blocks, f.Path)
	}
	buf := make([]byte, BlockSize)
	off := int64(HeaderSize + i*BlockSize)
	if _, err := f.file.ReadAt(buf, off); err != nil {
		return nil, errs.Annotatef(err, errs.InvalidBuffer, "reading block %d of %s", i, f.Path)
	}
	return DecodeBlock(buf)
}

func beUint64(b []byte) uint64 {
	var v uint64
	for _, x := range b[:8] {
		v = v<<8 | uint64(x)
	}
	return v
}

func trimNUL(b []byte) string {
	n := len(b)
	for n > 0 && b[n-1] == 0 {
		n--
	}
	return string(b[:n])
}
