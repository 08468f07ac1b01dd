package redo

import "github.com/innodb-tools/ibdparser/internal/errs"

// Group is an ordered list of equally-sized log files forming one
// contiguous LSN-addressed redo stream (spec.md §4.12).
type Group struct {
	Files    []*LogFile
	StartLSN uint64

	blocksPerFile int
	capacity      uint64 // data bytes per file = blocksPerFile * BlockDataSize
}

// OpenGroup opens every file in paths, in order, and validates they
// share a common start LSN and block count.
func OpenGroup(paths []string) (*Group, error) {
	if len(paths) == 0 {
		return nil, errs.New(errs.InvalidBuffer, "a log group needs at least one file")
	}
	g := &Group{}
	for _, p := range paths {
		f, err := Open(p)
		if err != nil {
			g.Close()
			return nil, err
		}
		if len(g.Files) == 0 {
			g.StartLSN = f.StartLSN
			g.blocksPerFile = f.NumBlocks()
		} else if f.NumBlocks() != g.blocksPerFile {
			g.Close()
			return nil, errs.Errorf(errs.InvalidBuffer, "log file %s has %d blocks, expected %d", p, f.NumBlocks(), g.blocksPerFile)
		}
		g.Files = append(g.Files, f)
	}
	g.capacity = uint64(g.blocksPerFile) * uint64(BlockDataSize)
	return g, nil
}

// Close releases every file's handle.
func (g *Group) Close() error {
	var firstErr error
	for _, f := range g.Files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// FileCapacity returns the usable (non-header, non-framing) data bytes
// per file — spec.md §4.12's file_capacity.
func (g *Group) FileCapacity() uint64 { return g.capacity }

// locate resolves an LSN to a (file index, block index, byte-in-block)
// triple within the group, per spec.md §4.12's LSN→offset formula
// (algebraically equivalent to it: blockIdx*BlockSize decomposes into
// blockIdx*BlockDataSize, the data already accounted for by
// byteInFileData, plus blockIdx*(BlockHeaderSize+BlockTrailerSize) of
// per-block framing overhead).
func (g *Group) locate(lsn uint64) (fileIdx, blockIdx, byteInBlock int, err error) {
	if lsn < g.StartLSN {
		return 0, 0, 0, errs.Errorf(errs.InvalidBuffer, "lsn %d precedes group start lsn %d", lsn, g.StartLSN)
	}
	rel := lsn - g.StartLSN
	fi := rel / g.capacity
	if fi >= uint64(len(g.Files)) {
		return 0, 0, 0, errs.Errorf(errs.InvalidBuffer, "lsn %d is beyond the last file in the group", lsn)
	}
	byteInFileData := rel % g.capacity
	return int(fi), int(byteInFileData / BlockDataSize), int(byteInFileData % BlockDataSize), nil
}
