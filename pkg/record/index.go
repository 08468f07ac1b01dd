package record

import (
	"github.com/innodb-tools/ibdparser/internal/errs"
	"github.com/innodb-tools/ibdparser/pkg/describer"
	"github.com/innodb-tools/ibdparser/pkg/ibdtype"
	"github.com/innodb-tools/ibdparser/pkg/page"
	"github.com/innodb-tools/ibdparser/pkg/stats"
)

// PageSource is the minimal view of a tablespace an Index needs: fetch a
// page by number. pkg/space.Space satisfies this; kept as an interface
// here (rather than importing pkg/space directly) so pkg/record has no
// dependency on the file-backed container and the two packages don't
// form an import cycle around a hypothetical Space.Index method.
type PageSource interface {
	Page(n uint64) (page.Page, error)
}

// Index is a B+tree handle rooted at a specific page (spec.md §4.7).
type Index struct {
	Source    PageSource
	Describer describer.Describer
	Root      uint64
}

// Open constructs an Index handle over src rooted at root, describing
// records with d.
func Open(src PageSource, d describer.Describer, root uint64) *Index {
	return &Index{Source: src, Describer: d, Root: root}
}

func (ix *Index) page(n uint64) (*page.IndexPage, error) {
	p, err := ix.Source.Page(n)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errs.Errorf(errs.InvalidBuffer, "page %d does not exist", n)
	}
	ip, ok := p.(*page.IndexPage)
	if !ok {
		return nil, errs.Errorf(errs.UnknownType, "page %d is not an INDEX page", n)
	}
	return ip, nil
}

// decodeRecordAt decodes the record (leaf or non-leaf, per page level)
// whose origin is offset within ip's raw bytes.
func (ix *Index) decodeRecordAt(ip *page.IndexPage, offset int) (*Record, error) {
	if ip.PageHeader.Level == 0 {
		return DecodeCompactLeaf(ip.Raw(), offset, ix.Describer)
	}
	return DecodeNonLeaf(ip.Raw(), offset, ix.Describer)
}

// firstUserRecordOffset returns the origin of the record immediately
// following the infimum pseudo-record (infimum's own 5-byte header lives
// just before page.InfimumOffset).
func firstUserRecordOffset(ip *page.IndexPage) (int, error) {
	h, err := decodeHeader(ip.Raw(), page.InfimumOffset)
	if err != nil {
		return 0, err
	}
	next := page.InfimumOffset + int(h.NextOffset)
	return next, nil
}

// walkLevel walks every user record on ip in next-pointer order, calling
// visit with each record's origin; stops early if visit returns false.
func walkLevel(ip *page.IndexPage, visit func(origin int) bool) error {
	origin, err := firstUserRecordOffset(ip)
	if err != nil {
		return err
	}
	for {
		h, err := decodeHeader(ip.Raw(), origin)
		if err != nil {
			return err
		}
		if h.Type == TypeSupremum {
			return nil
		}
		if !visit(origin) {
			return nil
		}
		origin += int(h.NextOffset)
	}
}

// MinRecord returns the leftmost record at level 0.
func (ix *Index) MinRecord() (*Record, error) {
	pn, err := ix.MinPageAtLevel(0)
	if err != nil {
		return nil, err
	}
	ip, err := ix.page(pn)
	if err != nil {
		return nil, err
	}
	origin, err := firstUserRecordOffset(ip)
	if err != nil {
		return nil, err
	}
	return ix.decodeRecordAt(ip, origin)
}

// MaxRecord returns the rightmost record at level 0.
func (ix *Index) MaxRecord() (*Record, error) {
	pn, err := ix.MaxPageAtLevel(0)
	if err != nil {
		return nil, err
	}
	ip, err := ix.page(pn)
	if err != nil {
		return nil, err
	}
	var last int = -1
	err = walkLevel(ip, func(origin int) bool {
		last = origin
		return true
	})
	if err != nil {
		return nil, err
	}
	if last < 0 {
		return nil, errs.New(errs.InvalidBuffer, "level 0 page has no user records")
	}
	return ix.decodeRecordAt(ip, last)
}

// MinPageAtLevel descends via leftmost child pointers from the root to
// level l.
func (ix *Index) MinPageAtLevel(l uint16) (uint64, error) {
	pn := ix.Root
	for {
		ip, err := ix.page(pn)
		if err != nil {
			return 0, err
		}
		if ip.PageHeader.Level == l {
			return pn, nil
		}
		origin, err := firstUserRecordOffset(ip)
		if err != nil {
			return 0, err
		}
		rec, err := ix.decodeRecordAt(ip, origin)
		if err != nil {
			return 0, err
		}
		pn = uint64(rec.ChildPage)
	}
}

// MaxPageAtLevel descends via rightmost child pointers from the root to
// level l.
func (ix *Index) MaxPageAtLevel(l uint16) (uint64, error) {
	pn := ix.Root
	for {
		ip, err := ix.page(pn)
		if err != nil {
			return 0, err
		}
		if ip.PageHeader.Level == l {
			return pn, nil
		}
		var last *Record
		err = walkLevel(ip, func(origin int) bool {
			rec, err := ix.decodeRecordAt(ip, origin)
			if err == nil {
				last = rec
			}
			return true
		})
		if err != nil {
			return 0, err
		}
		if last == nil {
			return 0, errs.New(errs.InvalidBuffer, "non-leaf page has no records to descend through")
		}
		pn = uint64(last.ChildPage)
	}
}

// compareKey compares a record's key fields to target field-by-field,
// using each field's flipped-sign-bit-aware numeric/byte ordering
// (spec.md §9: the comparator must XOR the same sign bit the decoder
// does, or search disagrees on negative values — since Decode already
// applies the flip, comparing decoded int64/uint64/string values
// directly here is sign-flip-correct for free).
func compareKey(key []Field, target []ibdtype.Value) int {
	n := len(key)
	if len(target) < n {
		n = len(target)
	}
	for i := 0; i < n; i++ {
		c := compareValue(key[i].Value, target[i])
		if c != 0 {
			return c
		}
	}
	return 0
}

func compareValue(a, b ibdtype.Value) int {
	if a.Null && b.Null {
		return 0
	}
	if a.Null {
		return -1
	}
	if b.Null {
		return 1
	}
	switch a.Kind {
	case ibdtype.KindInt:
		if a.Uint != 0 || b.Uint != 0 {
			return cmpUint(a.Uint, b.Uint)
		}
		return cmpInt(a.Int, b.Int)
	case ibdtype.KindRollPointer, ibdtype.KindTransactionID:
		return cmpUint(a.Uint, b.Uint)
	case ibdtype.KindString:
		return cmpBytes(a.Bytes, b.Bytes)
	case ibdtype.KindDecimal:
		if a.Decimal < b.Decimal {
			return -1
		} else if a.Decimal > b.Decimal {
			return 1
		}
		return 0
	default:
		return cmpBytes(a.Bytes, b.Bytes)
	}
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// LinearSearch descends from the root, at each level scanning records in
// declaration order and picking the greatest entry <= key; at level 0 it
// requires equality (spec.md §4.7). collector may be nil.
func (ix *Index) LinearSearch(key []ibdtype.Value, collector *stats.Collector) (*Record, error) {
	pn := ix.Root
	for {
		ip, err := ix.page(pn)
		if err != nil {
			return nil, err
		}
		if ip.PageHeader.Level == 0 {
			var found *Record
			err := walkLevel(ip, func(origin int) bool {
				rec, err := ix.decodeRecordAt(ip, origin)
				if err != nil {
					return true
				}
				collector.Add(stats.KeyComparisons, 1)
				if compareKey(rec.Key, key) == 0 {
					found = rec
					return false
				}
				return true
			})
			if err != nil {
				return nil, err
			}
			return found, nil
		}

		var best *Record
		err = walkLevel(ip, func(origin int) bool {
			rec, err := ix.decodeRecordAt(ip, origin)
			if err != nil {
				return true
			}
			collector.Add(stats.KeyComparisons, 1)
			if compareKey(rec.Key, key) <= 0 {
				best = rec
				return true
			}
			return false
		})
		if err != nil {
			return nil, err
		}
		if best == nil {
			return nil, nil
		}
		pn = uint64(best.ChildPage)
	}
}

// BinarySearch is LinearSearch's order-of-magnitude-cheaper sibling: at
// each level it binary-searches the page directory slots (each slot
// "owns" a group of records) to localize, then linear-scans within the
// small group (spec.md §4.7). Must agree with LinearSearch on every key.
func (ix *Index) BinarySearch(key []ibdtype.Value, collector *stats.Collector) (*Record, error) {
	pn := ix.Root
	for {
		ip, err := ix.page(pn)
		if err != nil {
			return nil, err
		}

		groupStart, err := ix.localizeGroup(ip, key, collector)
		if err != nil {
			return nil, err
		}

		if ip.PageHeader.Level == 0 {
			var found *Record
			origin := groupStart
			for origin >= 0 {
				h, err := decodeHeader(ip.Raw(), origin)
				if err != nil {
					return nil, err
				}
				if h.Type == TypeSupremum {
					break
				}
				rec, err := ix.decodeRecordAt(ip, origin)
				if err != nil {
					return nil, err
				}
				collector.Add(stats.KeyComparisons, 1)
				c := compareKey(rec.Key, key)
				if c == 0 {
					found = rec
					break
				}
				if c > 0 {
					break
				}
				origin += int(h.NextOffset)
			}
			return found, nil
		}

		var best *Record
		origin := groupStart
		for origin >= 0 {
			h, err := decodeHeader(ip.Raw(), origin)
			if err != nil {
				return nil, err
			}
			if h.Type == TypeSupremum {
				break
			}
			rec, err := ix.decodeRecordAt(ip, origin)
			if err != nil {
				return nil, err
			}
			collector.Add(stats.KeyComparisons, 1)
			if compareKey(rec.Key, key) <= 0 {
				best = rec
				origin += int(h.NextOffset)
				continue
			}
			break
		}
		if best == nil {
			return nil, nil
		}
		pn = uint64(best.ChildPage)
	}
}

// localizeGroup binary-searches ip's directory slots (each slot points
// to the last record of an owned group) to find the group whose records
// could contain key, returning the origin of that group's first record.
func (ix *Index) localizeGroup(ip *page.IndexPage, key []ibdtype.Value, collector *stats.Collector) (int, error) {
	// ip.DirSlots is in on-page order, supremum's slot first; reverse it
	// so slots[0] is the infimum's slot and the last is the supremum's.
	slots := make([]uint16, len(ip.DirSlots))
	for i, s := range ip.DirSlots {
		slots[len(slots)-1-i] = s
	}
	// The infimum's and supremum's slots own no user key; search between.
	lo, hi := 1, len(slots)-2
	resultSlot := 0
	for lo <= hi {
		mid := (lo + hi) / 2
		origin := int(slots[mid])
		rec, err := ix.decodeRecordAt(ip, origin)
		if err != nil {
			return 0, err
		}
		collector.Add(stats.KeyComparisons, 1)
		if compareKey(rec.Key, key) <= 0 {
			resultSlot = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	// The group owned by slot resultSlot-1 (or infimum's slot 0 if none)
	// is where the scan should start: walk forward from the record right
	// after the previous slot's owned record.
	if resultSlot == 0 {
		origin, err := firstUserRecordOffset(ip)
		return origin, err
	}
	prevOrigin := int(slots[resultSlot-1])
	h, err := decodeHeader(ip.Raw(), prevOrigin)
	if err != nil {
		return 0, err
	}
	return prevOrigin + int(h.NextOffset), nil
}
