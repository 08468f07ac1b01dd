package page

import (
	"bytes"
	"compress/flate"
	"io"

	"github.com/innodb-tools/ibdparser/internal/errs"
)

// SDI (Serialized Dictionary Info) pages carry MySQL 8's self-describing
// dictionary metadata as deflate-compressed JSON text, keyed by (type,
// id) (spec.md §4.5). Grounded on the teacher's storage/wrapper/page
// package naming conventions; no pack library implements raw deflate
// decompression, so this uses the standard library's compress/flate
// (DESIGN.md records this as the one place stdlib stands in for an
// ecosystem codec).
const (
	sdiHeaderOffset   = FilHeaderLen
	sdiKeyTypeOffset  = sdiHeaderOffset
	sdiKeyIDOffset    = sdiKeyTypeOffset + 4
	sdiUncompLenOffset = sdiKeyIDOffset + 8
	sdiCompLenOffset  = sdiUncompLenOffset + 4
	sdiDataOffset     = sdiCompLenOffset + 4
)

func init() {
	register(TypeSDI, newSDIPage)
}

// SDIKey identifies one SDI object: a type tag plus an object id.
type SDIKey struct {
	Type uint32
	ID   uint64
}

// SDIPage decodes an SDI page's header and inflates its payload.
type SDIPage struct {
	*Base
	Key            SDIKey
	UncompressedLen uint32
	CompressedLen   uint32
	Text            string // inflated payload, empty if decompression failed
}

func newSDIPage(raw []byte, base *Base) (Page, error) {
	p := &SDIPage{Base: base}
	c := base.Cursor(sdiKeyTypeOffset)

	var err error
	if p.Key.Type, err = c.U32(); err != nil {
		return nil, err
	}
	if p.Key.ID, err = c.U64(); err != nil {
		return nil, err
	}
	if p.UncompressedLen, err = c.U32(); err != nil {
		return nil, err
	}
	if p.CompressedLen, err = c.U32(); err != nil {
		return nil, err
	}

	avail := len(raw) - sdiDataOffset - FilTrailerLen
	n := int(p.CompressedLen)
	if n > avail {
		n = avail
	}
	if n < 0 {
		n = 0
	}
	compressed, err := c.Read(n)
	if err != nil {
		return nil, err
	}

	text, err := inflate(compressed)
	if err != nil {
		return p, nil // spec.md §7: best-effort, page-level fields still valid
	}
	p.Text = text
	return p, nil
}

func inflate(compressed []byte) (string, error) {
	r := flate.NewReader(bytes.NewReader(compressed))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return "", errs.Annotate(err, errs.InvalidBuffer, "sdi deflate payload")
	}
	return string(out), nil
}
