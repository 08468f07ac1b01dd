package checksum

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFoldIsDeterministic(t *testing.T) {
	page := make([]byte, 16384)
	for i := range page {
		page[i] = byte(i)
	}
	require.Equal(t, Fold(page), Fold(page))
}

func TestFoldChangesWithContent(t *testing.T) {
	a := make([]byte, 16384)
	b := make([]byte, 16384)
	copy(b, a)
	b[100] = 0xFF
	require.NotEqual(t, Fold(a), Fold(b))
}

func TestCRC32CKnownVector(t *testing.T) {
	// "123456789" is the standard CRC32C test vector.
	require.Equal(t, uint32(0xE3069283), CRC32C([]byte("123456789")))
}

func TestVerifyAcceptsEitherAlgorithm(t *testing.T) {
	page := make([]byte, 16384)
	for i := range page {
		page[i] = byte(i * 7)
	}
	require.True(t, Verify(page, Fold(page)))
	require.True(t, Verify(page, CRC32C(page)))
	require.False(t, Verify(page, Fold(page)+1))
}
