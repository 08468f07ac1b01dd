package ibdtype

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/innodb-tools/ibdparser/internal/errs"
	"github.com/shopspring/decimal"
)

// Temporal is a struct-of-fields decode of a packed DATE/TIME/DATETIME/
// TIMESTAMP/YEAR value, following MySQL's packed formats (spec.md §4.3).
type Temporal struct {
	Year, Month, Day          int
	Hour, Minute, Second      int
	Microsecond               int
	Negative                  bool // TIME only
}

func (t Temporal) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d.%06d", t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second, t.Microsecond)
}

// Value is a decoded column value. Exactly one of the typed fields is
// meaningful, selected by Kind — mirroring the "language-neutral value"
// requirement of spec.md §4.3 without a SQL-expression-capable wrapper
// (the teacher's basic.Value has Add/Sub/Mul/... methods; this tool
// never computes, only decodes and displays).
type Value struct {
	Kind     Kind
	Int      int64
	Uint     uint64
	Decimal  string // digits with embedded sign + point
	Temporal Temporal
	Bytes    []byte
	Enum     string
	Null     bool
}

func (v Value) String() string {
	if v.Null {
		return "NULL"
	}
	switch v.Kind {
	case KindInt:
		if v.Uint != 0 || v.Int == 0 {
			return fmt.Sprintf("%d", v.Uint)
		}
		return fmt.Sprintf("%d", v.Int)
	case KindDecimal:
		return v.Decimal
	case KindTemporal:
		return v.Temporal.String()
	case KindString:
		return string(v.Bytes)
	case KindEnum:
		return v.Enum
	case KindRollPointer, KindTransactionID:
		return fmt.Sprintf("%d", v.Uint)
	default:
		return fmt.Sprintf("%v", v.Bytes)
	}
}

// ParseValue builds a Value from a plain-text representation, for
// callers supplying a search key from outside the tool (the inspector
// CLI's `index search <file> <root> <key...>` subcommand) rather than decoding one
// off a page.
func ParseValue(spec Spec, text string) (Value, error) {
	if text == "NULL" {
		return Value{Kind: spec.Kind, Null: true}, nil
	}
	switch spec.Kind {
	case KindInt:
		if spec.Unsigned() {
			u, err := strconv.ParseUint(text, 10, 64)
			if err != nil {
				return Value{}, errs.Annotatef(err, errs.InvalidSpecification, "parsing unsigned key %q", text)
			}
			return Value{Kind: KindInt, Uint: u}, nil
		}
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Value{}, errs.Annotatef(err, errs.InvalidSpecification, "parsing signed key %q", text)
		}
		return Value{Kind: KindInt, Int: n}, nil
	case KindDecimal:
		return Value{Kind: KindDecimal, Decimal: text}, nil
	case KindString:
		return Value{Kind: KindString, Bytes: []byte(text)}, nil
	case KindEnum:
		return Value{Kind: KindEnum, Enum: text}, nil
	case KindRollPointer, KindTransactionID:
		u, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return Value{}, errs.Annotatef(err, errs.InvalidSpecification, "parsing key %q", text)
		}
		return Value{Kind: spec.Kind, Uint: u}, nil
	default:
		return Value{}, errs.Errorf(errs.InvalidSpecification, "search keys of kind %v are not supported", spec.Kind)
	}
}

// signMask returns the mask of the most-significant bit across a
// width-byte big-endian integer.
func signMask(width int) uint64 {
	if width <= 0 || width > 8 {
		return 0
	}
	return uint64(1) << uint(width*8-1)
}

func widthMask(width int) uint64 {
	if width >= 8 {
		return ^uint64(0)
	}
	return uint64(1)<<uint(width*8) - 1
}

func beToUint(buf []byte) uint64 {
	var v uint64
	for _, b := range buf {
		v = v<<8 | uint64(b)
	}
	return v
}

func uintToBE(v uint64, width int) []byte {
	out := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}

// DecodeSignedFlipped decodes a big-endian integer of the given byte
// width that InnoDB stores with its sign bit flipped so unsigned
// lexicographic byte order matches numeric order (spec.md §4.3, §9).
func DecodeSignedFlipped(buf []byte) (int64, error) {
	width := len(buf)
	if width == 0 || width > 8 {
		return 0, errs.Errorf(errs.InvalidBuffer, "unsupported signed integer width %d", width)
	}
	stored := beToUint(buf)
	twos := stored ^ signMask(width)
	// sign-extend `twos` (width*8 bits) into an int64.
	if twos&signMask(width) != 0 {
		return int64(twos | ^widthMask(width)), nil
	}
	return int64(twos), nil
}

// EncodeSignedFlipped is the inverse of DecodeSignedFlipped, used by
// tests to build synthetic fixtures (spec.md §8's round-trip and
// boundary invariants: encode(0) has the MSB set, encode(MIN) is
// all-zero, encode(MAX) is all-ones).
func EncodeSignedFlipped(v int64, width int) []byte {
	twos := uint64(v) & widthMask(width)
	stored := twos ^ signMask(width)
	return uintToBE(stored, width)
}

// DecodeUnsigned decodes a plain big-endian unsigned integer (used for
// DB_TRX_ID, DB_ROLL_PTR, UNSIGNED columns, and page/extent counters).
func DecodeUnsigned(buf []byte) uint64 { return beToUint(buf) }

// Decode decodes buf according to spec, producing a language-neutral
// Value. buf must be exactly the column's stored length for fixed-width
// kinds; for KindString, buf is exactly the already-length-prefix-
// stripped character data.
func Decode(spec Spec, buf []byte) (Value, error) {
	switch spec.Kind {
	case KindInt:
		return decodeInt(spec, buf)
	case KindDecimal:
		return decodeDecimal(spec, buf)
	case KindTemporal:
		return decodeTemporal(spec, buf)
	case KindString:
		return Value{Kind: KindString, Bytes: append([]byte(nil), buf...)}, nil
	case KindRollPointer:
		return Value{Kind: KindRollPointer, Uint: DecodeUnsigned(buf)}, nil
	case KindTransactionID:
		return Value{Kind: KindTransactionID, Uint: DecodeUnsigned(buf)}, nil
	case KindEnum:
		idx := int(DecodeUnsigned(buf))
		name := ""
		if idx >= 1 && idx <= len(spec.Enum) {
			name = spec.Enum[idx-1]
		}
		return Value{Kind: KindEnum, Enum: name, Uint: uint64(idx)}, nil
	default:
		return Value{}, errs.Errorf(errs.UnknownType, "no decoder for type kind %v", spec.Kind)
	}
}

func decodeInt(spec Spec, buf []byte) (Value, error) {
	if len(buf) == 0 || len(buf) > 8 {
		return Value{}, errs.Errorf(errs.InvalidBuffer, "invalid integer width %d", len(buf))
	}
	if spec.Unsigned() {
		return Value{Kind: KindInt, Uint: DecodeUnsigned(buf)}, nil
	}
	iv, err := DecodeSignedFlipped(buf)
	if err != nil {
		return Value{}, err
	}
	return Value{Kind: KindInt, Int: iv}, nil
}

// decimalBytesForDigits mirrors MySQL's dig2bytes table: the number of
// bytes needed to store 0..9 leftover decimal digits within a group.
var decimalBytesForDigits = [10]int{0, 1, 1, 2, 2, 3, 3, 4, 4, 4}

const decimalDigitsPerGroup = 9

// decodeDecimal decodes MySQL's binary DECIMAL(precision,scale) format:
// digits are grouped in 9s, each full group packed into 4 bytes, with a
// partial leading/trailing group packed into however many bytes
// decimalBytesForDigits needs; the first byte of the whole buffer has
// its sign bit flipped (1 = non-negative) the same way signed integers
// do.
func decodeDecimal(spec Spec, buf []byte) (Value, error) {
	precision, scale := spec.Precision, spec.Scale
	if precision <= 0 {
		precision = 10
	}
	intDigits := precision - scale
	intGroups := intDigits / decimalDigitsPerGroup
	intLeftover := intDigits % decimalDigitsPerGroup
	fracGroups := scale / decimalDigitsPerGroup
	fracLeftover := scale % decimalDigitsPerGroup

	size := decimalBytesForDigits[intLeftover] + intGroups*4 +
		fracGroups*4 + decimalBytesForDigits[fracLeftover]
	if len(buf) < size {
		return Value{}, errs.Errorf(errs.InvalidBuffer, "decimal buffer too short: need %d, have %d", size, len(buf))
	}
	work := append([]byte(nil), buf[:size]...)

	negative := work[0]&0x80 == 0
	work[0] ^= 0x80
	if negative {
		for i := range work {
			work[i] = ^work[i]
		}
	}

	pos := 0
	var sb strings.Builder
	if negative {
		sb.WriteByte('-')
	}

	readGroup := func(nbytes, ndigits int) uint32 {
		var v uint32
		for i := 0; i < nbytes; i++ {
			v = v<<8 | uint32(work[pos+i])
		}
		pos += nbytes
		return v
	}

	first := true
	if intLeftover > 0 {
		nb := decimalBytesForDigits[intLeftover]
		v := readGroup(nb, intLeftover)
		sb.WriteString(fmt.Sprintf("%d", v))
		first = false
	}
	for i := 0; i < intGroups; i++ {
		v := readGroup(4, decimalDigitsPerGroup)
		if first {
			sb.WriteString(fmt.Sprintf("%d", v))
			first = false
		} else {
			fmt.Fprintf(&sb, "%09d", v)
		}
	}
	if first {
		sb.WriteByte('0')
	}
	if scale > 0 {
		sb.WriteByte('.')
		for i := 0; i < fracGroups; i++ {
			v := readGroup(4, decimalDigitsPerGroup)
			fmt.Fprintf(&sb, "%09d", v)
		}
		if fracLeftover > 0 {
			nb := decimalBytesForDigits[fracLeftover]
			v := readGroup(nb, fracLeftover)
			fmt.Fprintf(&sb, "%0*d", fracLeftover, v)
		}
	}

	digits := sb.String()
	// Validate through shopspring/decimal so malformed packed buffers
	// surface as a decode error rather than a silently wrong string.
	if _, err := decimal.NewFromString(digits); err != nil {
		return Value{}, errs.Annotatef(err, errs.InvalidBuffer, "decoded decimal %q is not well-formed", digits)
	}
	return Value{Kind: KindDecimal, Decimal: digits}, nil
}

// decodeTemporal decodes the packed DATE/TIME/DATETIME/TIMESTAMP/YEAR
// formats. DATE packs year*16*32 + month*32 + day into 3 bytes.
// DATETIME reads 8 bytes and uses their top 40 bits: (year*13 + month),
// then a 5-bit day, 5-bit hour, 6-bit minute and 6-bit second.
func decodeTemporal(spec Spec, buf []byte) (Value, error) {
	switch spec.Name {
	case "DATE":
		if len(buf) < 3 {
			return Value{}, errs.New(errs.InvalidBuffer, "DATE needs 3 bytes")
		}
		packed := uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2])
		day := int(packed & 0x1F)
		month := int((packed >> 5) & 0xF)
		year := int(packed >> 9)
		return Value{Kind: KindTemporal, Temporal: Temporal{Year: year, Month: month, Day: day}}, nil
	case "YEAR":
		if len(buf) < 1 {
			return Value{}, errs.New(errs.InvalidBuffer, "YEAR needs 1 byte")
		}
		return Value{Kind: KindTemporal, Temporal: Temporal{Year: 1900 + int(buf[0])}}, nil
	case "TIME":
		if len(buf) < 3 {
			return Value{}, errs.New(errs.InvalidBuffer, "TIME needs 3 bytes")
		}
		packed := int32(uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2]))
		neg := packed < 0
		if neg {
			packed = -packed
		}
		h := int((packed >> 12) & 0x3FF)
		m := int((packed >> 6) & 0x3F)
		s := int(packed & 0x3F)
		return Value{Kind: KindTemporal, Temporal: Temporal{Hour: h, Minute: m, Second: s, Negative: neg}}, nil
	case "TIMESTAMP":
		if len(buf) < 4 {
			return Value{}, errs.New(errs.InvalidBuffer, "TIMESTAMP needs 4 bytes")
		}
		epoch := int64(DecodeUnsigned(buf[:4]))
		// Forensic decode only: expose the raw epoch seconds via the
		// Second-since-epoch convention rather than converting time
		// zones, which InnoDB itself does not store on-disk.
		return Value{Kind: KindTemporal, Temporal: Temporal{Second: int(epoch)}}, nil
	case "DATETIME":
		if len(buf) < 8 {
			return Value{}, errs.New(errs.InvalidBuffer, "DATETIME needs 8 bytes")
		}
		raw := DecodeUnsigned(buf[:8])
		ymdhms := raw >> 24
		ymd := ymdhms >> 17
		ym := ymd >> 5
		day := int(ymd % 32)
		month := int(ym % 13)
		year := int(ym / 13)
		hms := ymdhms % (1 << 17)
		second := int(hms % 64)
		minute := int((hms >> 6) % 64)
		hour := int(hms >> 12)
		return Value{Kind: KindTemporal, Temporal: Temporal{
			Year: year, Month: month, Day: day, Hour: hour, Minute: minute, Second: second,
		}}, nil
	default:
		return Value{}, errs.Errorf(errs.UnknownType, "unsupported temporal type %q", spec.Name)
	}
}
