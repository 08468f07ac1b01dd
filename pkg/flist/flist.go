// Package flist implements the generic doubly-linked on-page list
// walker (spec.md §4.9, component C9) used for XDES free/full lists and
// INODE full/free chains.
//
// Grounded on the teacher's storage/wrapper/extent/list.go (an
// extent-specific free list), generalized into a type-agnostic walker
// over (page, offset) node addresses: the teacher hardcodes its list to
// extent entries, but spec.md §4.9 calls for one walker reused by both
// XDES and INODE lists, so the element-decode step is supplied by the
// caller as a callback instead of being special-cased per list kind.
package flist

import (
	"github.com/innodb-tools/ibdparser/internal/errs"
)

// Node addresses a list element: the page it lives on plus its byte
// offset within that page.
type Node struct {
	Page   uint32
	Offset uint16
}

// IsNil reports whether n is the "no such node" sentinel (page ==
// page.UndefinedPage).
func (n Node) IsNil() bool { return n.Page == 0xFFFFFFFF }

// NodePtr is the 12-byte prev/next pair embedded in each list element
// (flst_node_t): e.g. an XDES entry's or INODE entry's list linkage.
type NodePtr struct {
	Prev Node
	Next Node
}

// Base is a list's 16-byte root descriptor (flst_base_node_t): a
// length plus the addresses of the first and last elements.
type Base struct {
	Length uint32
	First  Node
	Last   Node
}

// Get is supplied by the caller to resolve a Node to a decoded element
// plus that element's own NodePtr (so the walker can continue).
type Get func(Node) (elem interface{}, links NodePtr, err error)

// Walk traverses base's list from First to Last (forward) or Last to
// First (backward), calling get at each node. It returns an error of
// kind ListLengthMismatch if the number of nodes visited does not equal
// base.Length (spec.md §4.9's invariant).
func Walk(base Base, forward bool, get Get) ([]interface{}, error) {
	var out []interface{}
	cur := base.First
	if !forward {
		cur = base.Last
	}
	for !cur.IsNil() {
		elem, links, err := get(cur)
		if err != nil {
			return nil, err
		}
		out = append(out, elem)
		if forward {
			cur = links.Next
		} else {
			cur = links.Prev
		}
	}
	if uint32(len(out)) != base.Length {
		return out, errs.Errorf(errs.ListLengthMismatch,
			"list walk visited %d nodes, base declares length %d", len(out), base.Length)
	}
	return out, nil
}

// WalkForward and WalkBackward are convenience wrappers over Walk.
func WalkForward(base Base, get Get) ([]interface{}, error)  { return Walk(base, true, get) }
func WalkBackward(base Base, get Get) ([]interface{}, error) { return Walk(base, false, get) }
