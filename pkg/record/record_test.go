package record

import (
	"testing"

	"github.com/innodb-tools/ibdparser/pkg/describer"
	"github.com/stretchr/testify/require"
)

func TestDecodeCompactLeafFixedWidthClustered(t *testing.T) {
	d, err := describer.New("t", "PRIMARY", 1, describer.Clustered,
		[]describer.NamedSpec{{Name: "id", Spec: "INT UNSIGNED NOT NULL"}},
		[]describer.NamedSpec{{Name: "val", Spec: "INT UNSIGNED NOT NULL"}},
	)
	require.NoError(t, err)

	raw := make([]byte, 64)
	origin := 20
	putRecordHeader(raw, origin, TypeConventional, 2, 0)
	pos := origin
	put32(raw, pos, 42) // id
	pos += 4
	pos += 6 // DB_TRX_ID
	pos += 7 // DB_ROLL_PTR
	put32(raw, pos, 7) // val

	rec, err := DecodeCompactLeaf(raw, origin, d)
	require.NoError(t, err)
	require.False(t, rec.Corrupt)
	require.Equal(t, uint64(42), rec.Key[0].Value.Uint)
	require.Equal(t, uint64(7), rec.Row[0].Value.Uint)
}

func TestDecodeCompactLeafWithNullableColumn(t *testing.T) {
	d, err := describer.New("t", "PRIMARY", 1, describer.Clustered,
		[]describer.NamedSpec{{Name: "id", Spec: "INT UNSIGNED NOT NULL"}},
		[]describer.NamedSpec{{Name: "val", Spec: "INT UNSIGNED"}}, // nullable
	)
	require.NoError(t, err)

	raw := make([]byte, 64)
	origin := 20
	// 1 nullable column -> 1-byte bitmap, bit 0 set (val is NULL).
	raw[origin-5-1] = 0x01
	putRecordHeader(raw, origin, TypeConventional, 2, 0)
	pos := origin
	put32(raw, pos, 9) // id
	pos += 4
	pos += 6
	pos += 7
	// no bytes stored for the NULL val column.

	rec, err := DecodeCompactLeaf(raw, origin, d)
	require.NoError(t, err)
	require.False(t, rec.Corrupt)
	require.Equal(t, uint64(9), rec.Key[0].Value.Uint)
	require.True(t, rec.Row[0].Value.Null)
}

func TestDecodeCompactLeafDetectsTruncation(t *testing.T) {
	d, err := describer.New("t", "PRIMARY", 1, describer.Clustered,
		[]describer.NamedSpec{{Name: "id", Spec: "BIGINT UNSIGNED NOT NULL"}},
		nil,
	)
	require.NoError(t, err)

	raw := make([]byte, 16)
	origin := 10
	putRecordHeader(raw, origin, TypeConventional, 2, 0)
	// BIGINT is 8 bytes but only 6 remain in the buffer from origin.

	rec, err := DecodeCompactLeaf(raw, origin, d)
	require.NoError(t, err)
	require.True(t, rec.Corrupt)
	require.Error(t, rec.CorruptError)
}

func TestDecodeCompactLeafVariableLengthInHighByteRange(t *testing.T) {
	d, err := describer.New("t", "PRIMARY", 1, describer.Clustered,
		[]describer.NamedSpec{{Name: "id", Spec: "INT UNSIGNED NOT NULL"}},
		[]describer.NamedSpec{{Name: "val", Spec: "VARCHAR(255) NOT NULL"}},
	)
	require.NoError(t, err)

	raw := make([]byte, 200)
	origin := 50
	// On-page length 100 (0x64) fits the one-byte var-array form
	// (0-127); the high bit (0x80) must stay clear.
	raw[origin-headerSize-1] = 100
	putRecordHeader(raw, origin, TypeConventional, 2, 0)
	pos := origin
	put32(raw, pos, 7) // id
	pos += 4
	pos += 6 // DB_TRX_ID
	pos += 7 // DB_ROLL_PTR
	for i := 0; i < 100; i++ {
		raw[pos+i] = byte('a' + i%26)
	}

	rec, err := DecodeCompactLeaf(raw, origin, d)
	require.NoError(t, err)
	require.False(t, rec.Corrupt)
	require.Equal(t, 100, rec.Row[0].Length)
	require.Equal(t, []byte("abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuv"), rec.Row[0].Value.Bytes)
}

func TestDecodeNonLeafReadsChildPage(t *testing.T) {
	d, err := describer.New("t", "PRIMARY", 1, describer.Clustered,
		[]describer.NamedSpec{{Name: "id", Spec: "INT UNSIGNED NOT NULL"}},
		nil,
	)
	require.NoError(t, err)

	raw := make([]byte, 32)
	origin := 10
	putRecordHeader(raw, origin, TypeNodePointer, 2, 0)
	pos := origin
	put32(raw, pos, 15) // key
	pos += 4
	put32(raw, pos, 99) // child page

	rec, err := DecodeNonLeaf(raw, origin, d)
	require.NoError(t, err)
	require.False(t, rec.Corrupt)
	require.Equal(t, uint64(15), rec.Key[0].Value.Uint)
	require.Equal(t, uint32(99), rec.ChildPage)
}
