package record

import (
	"github.com/innodb-tools/ibdparser/internal/errs"
	"github.com/innodb-tools/ibdparser/pkg/page"
)

// Direction is a Cursor's direction of travel.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Cursor walks an Index's level-0 record chain, following sibling page
// pointers at page boundaries (spec.md §4.7). By default deleted
// records are skipped (spec.md §9's Open Question, resolved: skip unless
// CursorAtMin/CursorAtMax is called with includeDeleted true).
type Cursor struct {
	ix             *Index
	dir            Direction
	includeDeleted bool
	page           *page.IndexPage
	origin         int
	started        bool
	done           bool
}

// newCursor constructs a cursor over ix starting at the record whose
// origin is origin on page p, moving in dir. Use Index.CursorAtMin / CursorAtMax for the common
// boundary starts.
func (ix *Index) newCursor(p *page.IndexPage, origin int, dir Direction, includeDeleted bool) *Cursor {
	return &Cursor{ix: ix, dir: dir, includeDeleted: includeDeleted, page: p, origin: origin}
}

// CursorAtMin returns a cursor positioned just before the leftmost
// level-0 record, ready to step forward.
func (ix *Index) CursorAtMin(dir Direction, includeDeleted bool) (*Cursor, error) {
	pn, err := ix.MinPageAtLevel(0)
	if err != nil {
		return nil, err
	}
	ip, err := ix.page(pn)
	if err != nil {
		return nil, err
	}
	return ix.newCursor(ip, page.InfimumOffset, dir, includeDeleted), nil
}

// CursorAtMax returns a cursor positioned just after the rightmost
// level-0 record, ready to step backward.
func (ix *Index) CursorAtMax(dir Direction, includeDeleted bool) (*Cursor, error) {
	pn, err := ix.MaxPageAtLevel(0)
	if err != nil {
		return nil, err
	}
	ip, err := ix.page(pn)
	if err != nil {
		return nil, err
	}
	return ix.newCursor(ip, page.SupremumOffset, dir, includeDeleted), nil
}

// Record advances the cursor one step and returns the next qualifying
// record, or nil past the boundary (spec.md §4.7).
func (c *Cursor) Record() (*Record, error) {
	for {
		if c.done {
			return nil, nil
		}
		h, err := decodeHeader(c.page.Raw(), c.origin)
		if err != nil {
			return nil, err
		}

		var nextOrigin int
		if c.dir == Forward {
			nextOrigin = c.origin + int(h.NextOffset)
		} else {
			// Backward traversal needs the chain's predecessor, which
			// compact records don't store directly; resolve it by
			// walking forward from the page's infimum on every
			// backward step (nothing is cached between steps) —
			// acceptable since pages are small and decoded lazily per
			// spec.md §9.
			prev, err := c.predecessor(c.origin)
			if err != nil {
				return nil, err
			}
			nextOrigin = prev
		}

		atBoundary := false
		if c.dir == Forward {
			atBoundary = nextOrigin == page.SupremumOffset
		} else {
			atBoundary = nextOrigin == page.InfimumOffset
		}

		if atBoundary {
			sibling, ok := siblingPage(c.page, c.dir)
			if !ok {
				c.done = true
				return nil, nil
			}
			ip, err := c.ix.page(uint64(sibling))
			if err != nil {
				return nil, err
			}
			c.page = ip
			if c.dir == Forward {
				c.origin = page.InfimumOffset
			} else {
				c.origin = page.SupremumOffset
			}
		} else {
			c.origin = nextOrigin
		}

		h2, err := decodeHeader(c.page.Raw(), c.origin)
		if err != nil {
			return nil, err
		}
		if h2.Type == TypeInfimum || h2.Type == TypeSupremum {
			continue
		}
		rec, err := c.ix.decodeRecordAt(c.page, c.origin)
		if err != nil {
			return nil, err
		}
		if rec.Header.Deleted() && !c.includeDeleted {
			continue
		}
		return rec, nil
	}
}

// predecessor finds the record whose NextOffset lands on origin, by
// walking forward from the page's infimum (compact records have no
// reverse pointer).
func (c *Cursor) predecessor(origin int) (int, error) {
	cur := page.InfimumOffset
	for {
		h, err := decodeHeader(c.page.Raw(), cur)
		if err != nil {
			return 0, err
		}
		next := cur + int(h.NextOffset)
		if next == origin {
			return cur, nil
		}
		if h.Type == TypeSupremum {
			return -1, errs.New(errs.InvalidBuffer, "predecessor lookup fell off the end of the record chain")
		}
		cur = next
	}
}

func siblingPage(ip *page.IndexPage, dir Direction) (uint32, bool) {
	if dir == Forward {
		return ip.Next()
	}
	return ip.Prev()
}
