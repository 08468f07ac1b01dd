package record

import (
	"github.com/innodb-tools/ibdparser/internal/errs"
	"github.com/innodb-tools/ibdparser/pkg/describer"
	"github.com/innodb-tools/ibdparser/pkg/ibdtype"
)

// Field is one decoded column value alongside its provenance (spec.md
// §4.7 step 3).
type Field struct {
	Name             string
	Spec             ibdtype.Spec
	Value            ibdtype.Value
	Length           int
	ExternallyStored bool
}

// Extern is the fixed 20-byte off-page reference (spec.md §3):
// space_id(4), page_number(4), offset(4), length(8).
type Extern struct {
	SpaceID uint32
	Page    uint32
	Offset  uint32
	Length  uint64
}

// Record is one decoded user record (leaf or non-leaf).
type Record struct {
	Header       Header
	Origin       int // byte offset of the record's origin within the page
	Key          []Field
	TrxID        uint64 // clustered leaf only
	RollPointer  uint64 // clustered leaf only
	Row          []Field
	ChildPage    uint32 // non-leaf only
	Leaf         bool
	Corrupt      bool
	CorruptError error
}

// decodeVarArray reads the variable-length array: one entry per variable
// column in declaration order (only for columns that are not NULL),
// walking backward from its end position (just before the NULL bitmap).
// Returns each entry's on-page length and whether it signals an
// off-page ("extern") reference, plus the byte offset where the array
// starts (its lowest address; the NULL bitmap lies after it, at endOffset).
func decodeVarArray(raw []byte, endOffset int, cols []describer.Column, isNull func(i int) bool) ([]int, []bool, int, error) {
	lengths := make([]int, len(cols))
	externFlags := make([]bool, len(cols))
	pos := endOffset

	// Variable array entries are stored in the *same* declaration order
	// as the columns but the bytes themselves precede the record origin,
	// so we read back-to-front and assign from the last variable column
	// to the first.
	varIdx := []int{}
	for i, c := range cols {
		if c.Spec.Variable() && !isNull(i) {
			varIdx = append(varIdx, i)
		}
	}
	for j := len(varIdx) - 1; j >= 0; j-- {
		i := varIdx[j]
		if pos < 1 {
			return nil, nil, 0, errs.Errorf(errs.InvalidBuffer, "variable array underruns buffer at column %d", i)
		}
		pos--
		b0 := raw[pos]
		var length int
		extern := false
		if b0&0x80 != 0 {
			if pos < 1 {
				return nil, nil, 0, errs.Errorf(errs.InvalidBuffer, "variable array underruns buffer at column %d (2nd byte)", i)
			}
			pos--
			b1 := raw[pos]
			length = int(b0&0x3F)<<8 | int(b1)
			extern = b0&0x40 != 0
		} else {
			length = int(b0)
		}
		lengths[i] = length
		externFlags[i] = extern
	}
	return lengths, externFlags, pos, nil
}

// decodeNullBitmap reads ceil(nullableCount/8) bytes ending at endOffset
// (exclusive), LSB-first per byte in declaration order, and returns a
// predicate over nullable-column index plus the bitmap's start offset.
func decodeNullBitmap(raw []byte, endOffset, nullableCount int) (func(int) bool, int, error) {
	nbytes := (nullableCount + 7) / 8
	start := endOffset - nbytes
	if start < 0 {
		return nil, 0, errs.Errorf(errs.InvalidBuffer, "null bitmap underruns buffer")
	}
	bitmap := raw[start:endOffset]
	isNull := func(i int) bool {
		byteIdx := i / 8
		bitIdx := uint(i % 8)
		return bitmap[byteIdx]&(1<<bitIdx) != 0
	}
	return isNull, start, nil
}

// DecodeCompactLeaf decodes a compact-format leaf record at origin
// according to d (spec.md §4.7 steps 1-3). raw is the full page buffer.
func DecodeCompactLeaf(raw []byte, origin int, d describer.Describer) (*Record, error) {
	h, err := decodeHeader(raw, origin)
	if err != nil {
		return nil, err
	}
	rec := &Record{Header: h, Origin: origin, Leaf: true}

	allCols := append(append([]describer.Column{}, d.KeyCols...), d.RowCols...)
	nullable := 0
	for _, c := range allCols {
		if c.Spec.Nullable() {
			nullable++
		}
	}

	isNull, bitmapStart, err := decodeNullBitmap(raw, origin-headerSize, nullable)
	if err != nil {
		return nil, errs.Annotate(err, errs.InvalidBuffer, "decoding null bitmap")
	}
	nullableIdx := -1
	columnIsNull := func(colIdx int) bool {
		if !allCols[colIdx].Spec.Nullable() {
			return false
		}
		nullableIdx++
		return isNull(nullableIdx)
	}
	// columnIsNull must be evaluated in declaration order exactly once
	// per column; precompute so random access in decodeVarArray is safe.
	nullFlags := make([]bool, len(allCols))
	for i := range allCols {
		nullFlags[i] = columnIsNull(i)
	}

	lengths, externFlags, _, err := decodeVarArray(raw, bitmapStart, allCols, func(i int) bool { return nullFlags[i] })
	if err != nil {
		return nil, errs.Annotate(err, errs.InvalidBuffer, "decoding variable-length array")
	}

	pos := origin
	readField := func(col describer.Column, idx int) (Field, error) {
		if nullFlags[idx] {
			return Field{Name: col.Name, Spec: col.Spec, Value: ibdtype.Value{Null: true}}, nil
		}
		width, fixed := col.Spec.FixedWidth()
		if !fixed {
			width = lengths[idx]
		}
		if pos+width > len(raw) {
			return Field{}, errs.Errorf(errs.InvalidBuffer, "field %s overruns page buffer", col.Name)
		}
		fieldBuf := raw[pos : pos+width]
		pos += width

		extern := externFlags[idx]
		val, err := ibdtype.Decode(col.Spec, fieldBuf)
		if err != nil {
			return Field{}, err
		}
		return Field{Name: col.Name, Spec: col.Spec, Value: val, Length: width, ExternallyStored: extern}, nil
	}

	for i, c := range d.KeyCols {
		f, err := readField(c, i)
		if err != nil {
			rec.Corrupt, rec.CorruptError = true, err
			return rec, nil
		}
		rec.Key = append(rec.Key, f)
	}

	if d.Clustered() {
		if pos+6 > len(raw) {
			rec.Corrupt, rec.CorruptError = true, errs.New(errs.InvalidBuffer, "record truncated before DB_TRX_ID")
			return rec, nil
		}
		rec.TrxID = ibdtype.DecodeUnsigned(raw[pos : pos+6])
		pos += 6
		if pos+7 > len(raw) {
			rec.Corrupt, rec.CorruptError = true, errs.New(errs.InvalidBuffer, "record truncated before DB_ROLL_PTR")
			return rec, nil
		}
		rec.RollPointer = ibdtype.DecodeUnsigned(raw[pos : pos+7])
		pos += 7

		for i, c := range d.RowCols {
			f, err := readField(c, len(d.KeyCols)+i)
			if err != nil {
				rec.Corrupt, rec.CorruptError = true, err
				return rec, nil
			}
			rec.Row = append(rec.Row, f)
		}
	}
	return rec, nil
}

// DecodeNonLeaf decodes a non-leaf (node pointer) record: key fields
// followed by a 4-byte child page number, no system columns (spec.md
// §4.7's "non-leaf records carry only the key fields").
func DecodeNonLeaf(raw []byte, origin int, d describer.Describer) (*Record, error) {
	h, err := decodeHeader(raw, origin)
	if err != nil {
		return nil, err
	}
	rec := &Record{Header: h, Origin: origin, Leaf: false}

	nullable := 0
	for _, c := range d.KeyCols {
		if c.Spec.Nullable() {
			nullable++
		}
	}
	isNull, bitmapStart, err := decodeNullBitmap(raw, origin-headerSize, nullable)
	if err != nil {
		return nil, errs.Annotate(err, errs.InvalidBuffer, "decoding null bitmap")
	}
	nullFlags := make([]bool, len(d.KeyCols))
	idx := -1
	for i, c := range d.KeyCols {
		if c.Spec.Nullable() {
			idx++
			nullFlags[i] = isNull(idx)
		}
	}
	lengths, _, _, err := decodeVarArray(raw, bitmapStart, d.KeyCols, func(i int) bool { return nullFlags[i] })
	if err != nil {
		return nil, errs.Annotate(err, errs.InvalidBuffer, "decoding variable-length array")
	}

	pos := origin
	for i, c := range d.KeyCols {
		if nullFlags[i] {
			rec.Key = append(rec.Key, Field{Name: c.Name, Spec: c.Spec, Value: ibdtype.Value{Null: true}})
			continue
		}
		width, fixed := c.Spec.FixedWidth()
		if !fixed {
			width = lengths[i]
		}
		if pos+width > len(raw) {
			rec.Corrupt, rec.CorruptError = true, errs.Errorf(errs.InvalidBuffer, "key field %s overruns page buffer", c.Name)
			return rec, nil
		}
		val, err := ibdtype.Decode(c.Spec, raw[pos:pos+width])
		if err != nil {
			rec.Corrupt, rec.CorruptError = true, err
			return rec, nil
		}
		rec.Key = append(rec.Key, Field{Name: c.Name, Spec: c.Spec, Value: val, Length: width})
		pos += width
	}

	if pos+4 > len(raw) {
		rec.Corrupt, rec.CorruptError = true, errs.New(errs.InvalidBuffer, "node pointer record truncated before child page number")
		return rec, nil
	}
	rec.ChildPage = uint32(ibdtype.DecodeUnsigned(raw[pos : pos+4]))
	return rec, nil
}
