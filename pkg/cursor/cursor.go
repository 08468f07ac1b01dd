// Package cursor implements a positioned view over an immutable byte
// buffer (spec.md §4.1, component C1): typed big-endian integer reads,
// bit reads, named regions for diagnostics, save/restore, and InnoDB's
// variable-length "compressed uint32" codec.
//
// Grounded on the position-tracking idiom of
// _examples/simeru-innodb-redolog-tool/internal/reader/binary_reader.go
// (a running offset plus typed Read* methods), generalized to operate
// over an in-memory page buffer instead of an io.Reader (InnoDB pages
// are always read whole, so there is no streaming reader underneath)
// and extended with the named-region/save-restore/bit/compressed-uint32
// operations spec.md requires that the teacher's binary reader lacks.
package cursor

import (
	"fmt"

	"github.com/innodb-tools/ibdparser/internal/errs"
)

// Cursor is a positioned, read-only view over buf. All multi-byte
// integer reads are big-endian, matching InnoDB's on-disk byte order.
type Cursor struct {
	buf    []byte
	pos    int
	saved  []int
	region []string
}

// New wraps buf in a Cursor positioned at offset 0.
func New(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Len returns the length of the underlying buffer.
func (c *Cursor) Len() int { return len(c.buf) }

// Pos returns the current byte offset.
func (c *Cursor) Pos() int { return c.pos }

// Bytes returns the underlying buffer (not a copy).
func (c *Cursor) Bytes() []byte { return c.buf }

func (c *Cursor) fail(n int) error {
	where := "cursor"
	if len(c.region) > 0 {
		where = c.region[len(c.region)-1]
	}
	return errs.Errorf(errs.InvalidBuffer,
		"%s: read of %d bytes at offset %d exceeds buffer length %d", where, n, c.pos, len(c.buf))
}

func (c *Cursor) need(n int) error {
	if c.pos < 0 || c.pos+n > len(c.buf) {
		return c.fail(n)
	}
	return nil
}

// Seek moves the cursor to an absolute byte offset.
func (c *Cursor) Seek(offset int) error {
	if offset < 0 || offset > len(c.buf) {
		return errs.Errorf(errs.InvalidBuffer, "seek to %d outside buffer of length %d", offset, len(c.buf))
	}
	c.pos = offset
	return nil
}

// Forward advances the cursor by n bytes.
func (c *Cursor) Forward(n int) error { return c.Seek(c.pos + n) }

// Backward moves the cursor back by n bytes.
func (c *Cursor) Backward(n int) error { return c.Seek(c.pos - n) }

// Save pushes the current offset onto a stack for later Restore.
func (c *Cursor) Save() { c.saved = append(c.saved, c.pos) }

// Restore pops the most recently Saved offset and seeks there. It is a
// no-op if nothing has been saved.
func (c *Cursor) Restore() {
	if len(c.saved) == 0 {
		return
	}
	n := len(c.saved) - 1
	c.pos = c.saved[n]
	c.saved = c.saved[:n]
}

// Name delimits a logical region for diagnostics: errors raised while fn
// runs are reported with name as context. Name does not save or restore
// the cursor position: reads made by fn stay consumed after it returns
// (callers that want to rewind use Save/Restore around the call).
func (c *Cursor) Name(name string, fn func() error) error {
	c.region = append(c.region, name)
	defer func() { c.region = c.region[:len(c.region)-1] }()
	return fn()
}

// Peek returns n bytes at the current position without advancing.
func (c *Cursor) Peek(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	return c.buf[c.pos : c.pos+n], nil
}

// Read returns n bytes and advances the cursor past them.
func (c *Cursor) Read(n int) ([]byte, error) {
	b, err := c.Peek(n)
	if err != nil {
		return nil, err
	}
	c.pos += n
	return b, nil
}

// ReadAt returns n bytes at an absolute offset without moving the
// cursor's own position.
func (c *Cursor) ReadAt(offset, n int) ([]byte, error) {
	if offset < 0 || offset+n > len(c.buf) {
		return nil, errs.Errorf(errs.InvalidBuffer, "read of %d bytes at offset %d exceeds buffer length %d", n, offset, len(c.buf))
	}
	return c.buf[offset : offset+n], nil
}

func beUint(b []byte) uint64 {
	var v uint64
	for _, x := range b {
		v = v<<8 | uint64(x)
	}
	return v
}

// U8/U16/U24/U32/U48/U64 read unsigned big-endian integers of the named
// byte width and advance the cursor.

func (c *Cursor) U8() (uint8, error) {
	b, err := c.Read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) U16() (uint16, error) {
	b, err := c.Read(2)
	if err != nil {
		return 0, err
	}
	return uint16(beUint(b)), nil
}

func (c *Cursor) U24() (uint32, error) {
	b, err := c.Read(3)
	if err != nil {
		return 0, err
	}
	return uint32(beUint(b)), nil
}

func (c *Cursor) U32() (uint32, error) {
	b, err := c.Read(4)
	if err != nil {
		return 0, err
	}
	return uint32(beUint(b)), nil
}

func (c *Cursor) U48() (uint64, error) {
	b, err := c.Read(6)
	if err != nil {
		return 0, err
	}
	return beUint(b), nil
}

func (c *Cursor) U56() (uint64, error) {
	b, err := c.Read(7)
	if err != nil {
		return 0, err
	}
	return beUint(b), nil
}

func (c *Cursor) U64() (uint64, error) {
	b, err := c.Read(8)
	if err != nil {
		return 0, err
	}
	return beUint(b), nil
}

// I8/I16/I32/I64 read two's-complement big-endian signed integers of the
// named width — these do NOT perform InnoDB's sign-bit flip; see
// pkg/ibdtype for that (it is a column-encoding convention, not a
// property of the cursor).

func (c *Cursor) I8() (int8, error) {
	v, err := c.U8()
	return int8(v), err
}

func (c *Cursor) I16() (int16, error) {
	v, err := c.U16()
	return int16(v), err
}

func (c *Cursor) I32() (int32, error) {
	v, err := c.U32()
	return int32(v), err
}

func (c *Cursor) I64() (int64, error) {
	v, err := c.U64()
	return int64(v), err
}

// Skip advances the cursor without returning anything.
func (c *Cursor) Skip(n int) error { return c.Forward(n) }

// Bit reads the single bit at an arbitrary (byteOffset, bitIndex)
// position, bitIndex 0 being the MSB of the byte, matching how InnoDB
// packs flag bits into header bytes MSB-first.
func (c *Cursor) Bit(byteOffset, bitIndex int) (bool, error) {
	if bitIndex < 0 || bitIndex > 7 {
		return false, errs.Errorf(errs.InvalidBuffer, "bit index %d out of range", bitIndex)
	}
	b, err := c.ReadAt(byteOffset, 1)
	if err != nil {
		return false, err
	}
	mask := byte(1) << uint(7-bitIndex)
	return b[0]&mask != 0, nil
}

// Bits reads an n-bit (n<=32) big-endian bitfield starting at an
// arbitrary bit offset from the start of the buffer (bitOffset = byte*8
// + bitInByte), MSB-first — used for packed header fields such as the
// INDEX page's n_heap/format-flag word or a redo block's flush-flagged
// block number.
func (c *Cursor) Bits(bitOffset, n int) (uint32, error) {
	if n < 0 || n > 32 {
		return 0, errs.Errorf(errs.InvalidBuffer, "bit width %d out of range", n)
	}
	var v uint32
	for i := 0; i < n; i++ {
		byteOff := (bitOffset + i) / 8
		bitIdx := (bitOffset + i) % 8
		bit, err := c.Bit(byteOff, bitIdx)
		if err != nil {
			return 0, err
		}
		v <<= 1
		if bit {
			v |= 1
		}
	}
	return v, nil
}

// CompressedUint32 decodes InnoDB's variable-length "compressed" uint32
// encoding (spec.md §4.1, §9): the number of leading 1-bits in the first
// byte selects a 1..5 byte encoding; those length-indicator bits are
// masked off the decoded value.
func (c *Cursor) CompressedUint32() (uint32, error) {
	first, err := c.Peek(1)
	if err != nil {
		return 0, err
	}
	b0 := first[0]
	switch {
	case b0&0x80 == 0: // 0xxxxxxx -> 1 byte
		c.pos++
		return uint32(b0), nil
	case b0&0xC0 == 0x80: // 10xxxxxx -> 2 bytes
		buf, err := c.Read(2)
		if err != nil {
			return 0, err
		}
		return uint32(buf[0]&0x3F)<<8 | uint32(buf[1]), nil
	case b0&0xE0 == 0xC0: // 110xxxxx -> 3 bytes
		buf, err := c.Read(3)
		if err != nil {
			return 0, err
		}
		return uint32(buf[0]&0x1F)<<16 | uint32(buf[1])<<8 | uint32(buf[2]), nil
	case b0&0xF0 == 0xE0: // 1110xxxx -> 4 bytes
		buf, err := c.Read(4)
		if err != nil {
			return 0, err
		}
		return uint32(buf[0]&0x0F)<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]), nil
	case b0&0xF8 == 0xF0: // 11110xxx -> 5 bytes: 3 low bits from b0 + 4 more bytes
		buf, err := c.Read(5)
		if err != nil {
			return 0, err
		}
		// spec.md §9: the trailing 3 bits of the prefix byte are the LOW
		// bits of the value; the following 4 bytes hold the remaining,
		// more-significant bits. Since the full value fits in 32 bits,
		// the 4-byte field is itself at most 29 significant bits, so
		// shifting it left by 3 to make room for the low 3 bits never
		// overflows uint32.
		hi := uint32(buf[1])<<24 | uint32(buf[2])<<16 | uint32(buf[3])<<8 | uint32(buf[4])
		return hi<<3 | uint32(buf[0]&0x07), nil
	default:
		return 0, errs.Errorf(errs.InvalidBuffer, "impossible compressed-uint32 prefix 0x%02x", b0)
	}
}

// EncodeCompressedUint32 produces the bytes spec.md's compressed-uint32
// codec would decode back to v. The core is read-only (spec.md §1 has
// no write path), but an encoder is needed to build synthetic test
// fixtures and to demonstrate the round-trip invariant of spec.md §8.
func EncodeCompressedUint32(v uint32) []byte {
	switch {
	case v < 0x80:
		return []byte{byte(v)}
	case v < 0x4000:
		return []byte{byte(v>>8) | 0x80, byte(v)}
	case v < 0x200000:
		return []byte{byte(v>>16) | 0xC0, byte(v >> 8), byte(v)}
	case v < 0x10000000:
		return []byte{byte(v>>24) | 0xE0, byte(v >> 16), byte(v >> 8), byte(v)}
	default:
		hi := v >> 3
		low3 := byte(v & 0x07)
		return []byte{0xF0 | low3, byte(hi >> 24), byte(hi >> 16), byte(hi >> 8), byte(hi)}
	}
}

// String renders the cursor's position for diagnostics.
func (c *Cursor) String() string {
	return fmt.Sprintf("cursor{pos=%d, len=%d}", c.pos, len(c.buf))
}
