package page

import (
	"github.com/innodb-tools/ibdparser/internal/errs"
	"github.com/innodb-tools/ibdparser/pkg/cursor"
	"github.com/innodb-tools/ibdparser/pkg/flist"
)

// INODE pages hold file-segment (FSEG) descriptors (spec.md §4.5, §6):
// a list-node header chaining INODE pages onto the FSP header's
// full_inodes/free_inodes lists, followed by 85 fixed-size entries.
//
// Grounded on the teacher's storage/wrapper/inode package for naming
// (InodeEntry, magic number check), rewritten as a read-only decode
// into a plain struct slice instead of the teacher's lockable wrapper.
const (
	inodeListNodeOffset = FilHeaderLen // 38, 12-byte NodePtr
	inodeEntriesOffset  = inodeListNodeOffset + 12
	InodeEntrySize      = 192
	InodeEntriesPerPage = 85

	// InodeMagicN is the fixed sentinel every allocated INODE entry must
	// carry (spec.md's invariant: fseg_id != 0 implies magic_n == this).
	InodeMagicN = 97937874

	fragArraySlots = 32
)

func init() {
	register(TypeInode, newInodePage)
}

// InodeEntry is one 192-byte file-segment descriptor.
type InodeEntry struct {
	FsegID        uint64
	NotFullNUsed  uint32
	FreeList      flist.Base
	NotFullList   flist.Base
	FullList      flist.Base
	MagicN        uint32
	FragArray     [fragArraySlots]uint32 // UndefinedPage => hole
}

// Allocated reports whether this entry describes a live segment.
func (e InodeEntry) Allocated() bool { return e.FsegID != 0 }

// MagicValid reports whether an allocated entry's magic number matches
// InodeMagicN (spec.md's corruption invariant).
func (e InodeEntry) MagicValid() bool {
	return !e.Allocated() || e.MagicN == InodeMagicN
}

// FragPages returns the entry's fragment page numbers with
// page.UndefinedPage holes preserved (spec.md's Open Question: raw order
// including holes, not compacted).
func (e InodeEntry) FragPages() []uint32 { return e.FragArray[:] }

// InodePage decodes an INODE page.
type InodePage struct {
	*Base
	Links   flist.NodePtr
	Entries [InodeEntriesPerPage]InodeEntry
}

func newInodePage(raw []byte, base *Base) (Page, error) {
	p := &InodePage{Base: base}
	c := base.Cursor(inodeListNodeOffset)

	err := c.Name("inode_list_node", func() error {
		var e error
		p.Links, e = flist.DecodeNodePtr(c)
		return e
	})
	if err != nil {
		return nil, err
	}

	if err := c.Seek(inodeEntriesOffset); err != nil {
		return nil, err
	}
	for i := 0; i < InodeEntriesPerPage; i++ {
		entry, err := decodeInodeEntry(c)
		if err != nil {
			return nil, errs.Annotatef(err, errs.InvalidBuffer, "inode entry %d", i)
		}
		if !entry.MagicValid() {
			return nil, errs.Errorf(errs.DictionaryCorruption,
				"inode entry %d: fseg_id %d has bad magic 0x%x", i, entry.FsegID, entry.MagicN)
		}
		p.Entries[i] = entry
	}
	return p, nil
}

func decodeInodeEntry(c *cursor.Cursor) (InodeEntry, error) {
	var e InodeEntry
	var err error
	if e.FsegID, err = c.U64(); err != nil {
		return e, err
	}
	if e.NotFullNUsed, err = c.U32(); err != nil {
		return e, err
	}
	if e.FreeList, err = flist.DecodeBase(c); err != nil {
		return e, err
	}
	if e.NotFullList, err = flist.DecodeBase(c); err != nil {
		return e, err
	}
	if e.FullList, err = flist.DecodeBase(c); err != nil {
		return e, err
	}
	if e.MagicN, err = c.U32(); err != nil {
		return e, err
	}
	for i := 0; i < fragArraySlots; i++ {
		v, err := c.U32()
		if err != nil {
			return e, err
		}
		e.FragArray[i] = v
	}
	return e, nil
}
