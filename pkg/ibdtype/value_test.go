package ibdtype

import (
	"math"
	"testing"

	"github.com/innodb-tools/ibdparser/internal/errs"
	"github.com/stretchr/testify/require"
)

func TestParseSpecBasics(t *testing.T) {
	s, err := ParseSpec("VARCHAR(64) UNSIGNED NOT NULL")
	require.NoError(t, err)
	require.Equal(t, "VARCHAR", s.Name)
	require.Equal(t, 64, s.Length)
	require.True(t, s.Unsigned())
	require.True(t, s.NotNull())

	_, err = ParseSpec("NOT_A_TYPE")
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.InvalidSpecification))
}

func TestParseSpecDecimal(t *testing.T) {
	s, err := ParseSpec("DECIMAL(10,2)")
	require.NoError(t, err)
	require.Equal(t, 10, s.Precision)
	require.Equal(t, 2, s.Scale)
}

func TestSignedIntRoundTrip(t *testing.T) {
	for _, width := range []int{1, 2, 3, 4, 6, 8} {
		min := -(int64(1) << uint(width*8-1))
		max := (int64(1) << uint(width*8-1)) - 1
		for _, v := range []int64{min, 0, max, min / 2, max / 2} {
			enc := EncodeSignedFlipped(v, width)
			got, err := DecodeSignedFlipped(enc)
			require.NoError(t, err)
			require.Equal(t, v, got, "width=%d v=%d", width, v)
		}
	}
}

func TestSignedIntBoundaryBitPatterns(t *testing.T) {
	width := 4
	zero := EncodeSignedFlipped(0, width)
	require.True(t, zero[0]&0x80 != 0, "encode(0) must have MSB set")

	min := -(int64(1) << uint(width*8-1))
	minEnc := EncodeSignedFlipped(min, width)
	for _, b := range minEnc {
		require.Equal(t, byte(0), b, "encode(MIN) must be all-zero")
	}

	max := (int64(1) << uint(width*8-1)) - 1
	maxEnc := EncodeSignedFlipped(max, width)
	for _, b := range maxEnc {
		require.Equal(t, byte(0xFF), b, "encode(MAX) must be all-ones")
	}
}

func TestSignedIntOrderingMatchesNumericOrder(t *testing.T) {
	vals := []int64{math.MinInt32, -100, -1, 0, 1, 100, math.MaxInt32}
	var prevEnc []byte
	for i, v := range vals {
		enc := EncodeSignedFlipped(v, 4)
		if i > 0 {
			require.True(t, bytesLess(prevEnc, enc), "encoding must preserve order for %d < %d", vals[i-1], v)
		}
		prevEnc = enc
	}
}

func bytesLess(a, b []byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func TestDecodeUnsignedInt(t *testing.T) {
	spec, err := ParseSpec("INT UNSIGNED")
	require.NoError(t, err)
	v, err := Decode(spec, []byte{0, 0, 0, 42})
	require.NoError(t, err)
	require.EqualValues(t, 42, v.Uint)
}

func TestDecodeDecimalSimple(t *testing.T) {
	spec, err := ParseSpec("DECIMAL(9,2)")
	require.NoError(t, err)
	// 9 total digits, 2 fractional -> 7 integer digits (1 leftover group
	// of 7 digits -> 4 bytes) + 1 leftover group of 2 fractional digits
	// -> 1 byte. Encode 12345.67 by hand, sign bit flipped.
	intPart := uint32(12345)
	fracPart := uint32(67)
	buf := []byte{
		byte(intPart >> 24), byte(intPart >> 16), byte(intPart >> 8), byte(intPart),
		byte(fracPart),
	}
	buf[0] ^= 0x80 // positive
	v, err := Decode(spec, buf)
	require.NoError(t, err)
	require.Equal(t, "12345.67", v.Decimal)
}

func TestSpecFixedWidthAndVariable(t *testing.T) {
	intSpec, err := ParseSpec("INT")
	require.NoError(t, err)
	w, fixed := intSpec.FixedWidth()
	require.True(t, fixed)
	require.Equal(t, 4, w)
	require.False(t, intSpec.Variable())

	varcharSpec, err := ParseSpec("VARCHAR(64)")
	require.NoError(t, err)
	require.True(t, varcharSpec.Variable())
	_, fixed = varcharSpec.FixedWidth()
	require.False(t, fixed)

	charSpec, err := ParseSpec("CHAR(10)")
	require.NoError(t, err)
	require.False(t, charSpec.Variable())
	w, fixed = charSpec.FixedWidth()
	require.True(t, fixed)
	require.Equal(t, 10, w)

	decSpec, err := ParseSpec("DECIMAL(9,2)")
	require.NoError(t, err)
	w, fixed = decSpec.FixedWidth()
	require.True(t, fixed)
	require.Equal(t, 5, w)
}

func TestDecodeDate(t *testing.T) {
	spec, err := ParseSpec("DATE")
	require.NoError(t, err)
	// 2024-03-15 packed as year<<9 | month<<5 | day
	packed := uint32(2024)<<9 | uint32(3)<<5 | uint32(15)
	buf := []byte{byte(packed >> 16), byte(packed >> 8), byte(packed)}
	v, err := Decode(spec, buf)
	require.NoError(t, err)
	require.Equal(t, 2024, v.Temporal.Year)
	require.Equal(t, 3, v.Temporal.Month)
	require.Equal(t, 15, v.Temporal.Day)
}

func TestParseValueIntAndString(t *testing.T) {
	intSpec, err := ParseSpec("BIGINT UNSIGNED")
	require.NoError(t, err)
	v, err := ParseValue(intSpec, "42")
	require.NoError(t, err)
	require.Equal(t, uint64(42), v.Uint)

	strSpec, err := ParseSpec("VARCHAR(16)")
	require.NoError(t, err)
	v, err = ParseValue(strSpec, "hello")
	require.NoError(t, err)
	require.Equal(t, "hello", v.String())
}

func TestParseValueNull(t *testing.T) {
	spec, err := ParseSpec("INT")
	require.NoError(t, err)
	v, err := ParseValue(spec, "NULL")
	require.NoError(t, err)
	require.True(t, v.Null)
}

func TestParseValueRejectsBadInt(t *testing.T) {
	spec, err := ParseSpec("INT")
	require.NoError(t, err)
	_, err = ParseValue(spec, "not-a-number")
	require.Error(t, err)
}
