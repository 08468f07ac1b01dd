// Package space implements the file-backed, page-addressable tablespace
// container (spec.md §4.6, component C6): opens a file read-only,
// discovers page size from page 0, and exposes page/extent/segment/index
// iteration.
//
// Grounded on the teacher's storage/store/ibd/ibd_file.go for the
// read-only file-handle-plus-ReadAt idiom, rewritten from a
// read-write/locked file wrapper into a read-only, lock-free view (this
// parser never writes) with page-size auto-discovery and the iteration
// surface spec.md §4.6 names that the teacher's IBD_File lacks entirely.
package space

import (
	"os"
	"sync"

	"github.com/innodb-tools/ibdparser/internal/errs"
	"github.com/innodb-tools/ibdparser/internal/xlog"
	"github.com/innodb-tools/ibdparser/pkg/page"
)

// DefaultPageSize is used when page 0's flags do not name an explicit
// page size (spec.md §4.6).
const DefaultPageSize = 16384

// PagesPerBookkeepingPage is the stride between XDES-bearing pages at
// the default page size (spec.md §3, §4.6).
const PagesPerBookkeepingPage = 16384

// Space is a read-only, page-addressable view over one tablespace file
// (the system tablespace, or a single table's .ibd file).
type Space struct {
	mu       sync.Mutex
	file     *os.File
	path     string
	pageSize int
	pages    uint64
	spaceID  uint32
}

// Open opens path read-only and discovers its page size and page count.
func Open(path string) (*Space, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Annotatef(err, errs.InvalidBuffer, "opening tablespace file %s", path)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errs.Annotatef(err, errs.InvalidBuffer, "stat %s", path)
	}

	s := &Space{file: f, path: path, pageSize: DefaultPageSize}

	first := make([]byte, DefaultPageSize)
	if _, err := f.ReadAt(first, 0); err != nil {
		f.Close()
		return nil, errs.Annotatef(err, errs.InvalidBuffer, "reading page 0 of %s", path)
	}
	p, err := page.Decode(first)
	if err != nil {
		xlog.Warnf("space %s: page 0 failed to decode as a specialized page: %v", path, err)
	} else if fsp, ok := p.(*page.FSPPage); ok && fsp.Type() == page.TypeFspHdr {
		s.spaceID = fsp.Header.SpaceID
		// FSP flags bits 6-9 hold the page size shift; 0 means the default.
		if ssize := (fsp.Header.Flags >> 6) & 0x0F; ssize != 0 {
			s.pageSize = 512 << ssize
		}
	}

	s.pages = uint64(info.Size()) / uint64(s.pageSize)
	return s, nil
}

// Close releases the underlying file handle.
func (s *Space) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// PageSize returns the discovered page size in bytes.
func (s *Space) PageSize() int { return s.pageSize }

// Pages returns the number of pages in the file.
func (s *Space) Pages() uint64 { return s.pages }

// Size returns the file size in bytes.
func (s *Space) Size() uint64 { return s.pages * uint64(s.pageSize) }

// SpaceID returns the tablespace id read from the FSP header.
func (s *Space) SpaceID() uint32 { return s.spaceID }

// SystemSpace reports whether this is the system tablespace (space id 0).
func (s *Space) SystemSpace() bool { return s.spaceID == 0 }

// Page returns the materialized, specialized page at n, or nil if n is
// out of range (spec.md §4.6).
func (s *Space) Page(n uint64) (page.Page, error) {
	if n >= s.pages {
		return nil, nil
	}
	raw, err := s.readRaw(n)
	if err != nil {
		return nil, err
	}
	return page.DecodeSized(raw, s.pageSize)
}

func (s *Space) readRaw(n uint64) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, s.pageSize)
	offset := int64(n) * int64(s.pageSize)
	read, err := s.file.ReadAt(buf, offset)
	if err != nil {
		return nil, errs.Annotatef(err, errs.InvalidBuffer, "reading page %d of %s", n, s.path)
	}
	if read != s.pageSize {
		return nil, errs.Errorf(errs.InvalidBuffer, "short read for page %d of %s: got %d bytes", n, s.path, read)
	}
	return buf, nil
}

// PageIter is one element of an EachPage sequence.
type PageIter struct {
	N    uint64
	Page page.Page
	Err  error
}

// EachPage returns a finite, restartable sequence of every page in
// ascending order (spec.md §4.6). It stops iterating (channel close) once
// the buffer is exhausted; a per-page error is delivered inline and does
// not stop the sequence, matching spec.md §7's "page-level failures
// surface to the caller" — the caller chooses whether to abort.
func (s *Space) EachPage() <-chan PageIter {
	ch := make(chan PageIter)
	go func() {
		defer close(ch)
		for n := uint64(0); n < s.pages; n++ {
			p, err := s.Page(n)
			ch <- PageIter{N: n, Page: p, Err: err}
		}
	}()
	return ch
}

// EachXDESPage returns the page numbers that carry an XDES array:
// page 0, then every PagesPerBookkeepingPage thereafter (spec.md §4.6).
func (s *Space) EachXDESPage() []uint64 {
	var out []uint64
	for n := uint64(0); n < s.pages; n += PagesPerBookkeepingPage {
		out = append(out, n)
	}
	return out
}

// XDESForPage returns the XDES entry covering page n (spec.md §4.6): the
// bookkeeping page is the largest XDES page <= n, and the entry index
// within it is (n mod PagesPerBookkeepingPage) / ExtentSize.
func (s *Space) XDESForPage(n uint64) (page.XDESEntry, error) {
	bookkeepingPage := (n / PagesPerBookkeepingPage) * PagesPerBookkeepingPage
	p, err := s.Page(bookkeepingPage)
	if err != nil {
		return page.XDESEntry{}, err
	}
	fsp, ok := p.(*page.FSPPage)
	if !ok {
		return page.XDESEntry{}, errs.Errorf(errs.UnknownType, "page %d is not an FSP/XDES page", bookkeepingPage)
	}
	entryIndex := (n % PagesPerBookkeepingPage) / page.ExtentSize
	if entryIndex >= uint64(len(fsp.Entries)) {
		return page.XDESEntry{}, errs.Errorf(errs.InvalidBuffer, "xdes entry index %d out of range for page %d", entryIndex, n)
	}
	return fsp.Entries[entryIndex], nil
}

// PageTypeRegion is a run of consecutive pages sharing the same type
// (spec.md §4.6's each_page_type_region).
type PageTypeRegion struct {
	Start uint64
	End   uint64
	Type  page.Type
	Count uint64
}

// EachPageTypeRegion run-length encodes the page-type sequence across
// the whole space.
func (s *Space) EachPageTypeRegion() ([]PageTypeRegion, error) {
	var regions []PageTypeRegion
	var cur *PageTypeRegion
	for n := uint64(0); n < s.pages; n++ {
		p, err := s.Page(n)
		if err != nil {
			return nil, errs.Annotatef(err, errs.InvalidBuffer, "page %d", n)
		}
		t := p.Type()
		if cur != nil && cur.Type == t {
			cur.End = n
			cur.Count++
			continue
		}
		if cur != nil {
			regions = append(regions, *cur)
		}
		cur = &PageTypeRegion{Start: n, End: n, Type: t, Count: 1}
	}
	if cur != nil {
		regions = append(regions, *cur)
	}
	return regions, nil
}
