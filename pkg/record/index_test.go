package record

import (
	"testing"

	"github.com/innodb-tools/ibdparser/pkg/checksum"
	"github.com/innodb-tools/ibdparser/pkg/describer"
	"github.com/innodb-tools/ibdparser/pkg/ibdtype"
	"github.com/innodb-tools/ibdparser/pkg/page"
	"github.com/innodb-tools/ibdparser/pkg/stats"
	"github.com/stretchr/testify/require"
)

const testPageSize = 16384

// FIL header offsets, duplicated from pkg/page since they're unexported
// there; kept in sync by hand.
const (
	filPageNo   = 4
	filPrev     = 8
	filNext     = 12
	filType     = 24
	filSpaceID  = 34
	filChecksum = 0
)

func put32(buf []byte, off int, v uint32) {
	buf[off] = byte(v >> 24)
	buf[off+1] = byte(v >> 16)
	buf[off+2] = byte(v >> 8)
	buf[off+3] = byte(v)
}

func put16(buf []byte, off int, v uint16) {
	buf[off] = byte(v >> 8)
	buf[off+1] = byte(v)
}

func put64(buf []byte, off int, v uint64) {
	for i := 0; i < 8; i++ {
		buf[off+i] = byte(v >> uint(56-8*i))
	}
}

// putRecordHeader writes a compact record's 5-byte header ending at origin.
func putRecordHeader(buf []byte, origin int, recType RecordType, heapNumber uint16, nextOffset int16) {
	buf[origin-5] = 0 // info_bits=0, n_owned=0
	heapAndType := heapNumber<<3 | uint16(recType)
	buf[origin-4] = byte(heapAndType >> 8)
	buf[origin-3] = byte(heapAndType)
	buf[origin-2] = byte(uint16(nextOffset) >> 8)
	buf[origin-1] = byte(uint16(nextOffset))
}

// buildLeafPage constructs a single-page level-0 INDEX page (root == leaf)
// with 3 clustered records (id, val) at ids 10, 20, 30.
func buildLeafPage(t *testing.T) []byte {
	t.Helper()
	buf := make([]byte, testPageSize)
	put32(buf, filPageNo, 3)
	put32(buf, filPrev, page.UndefinedPage)
	put32(buf, filNext, page.UndefinedPage)
	put16(buf, filType, uint16(page.TypeIndex))
	put32(buf, filSpaceID, 0)

	const headerOff = 38 // FilHeaderLen
	put16(buf, headerOff+0, 1)                   // n_dir_slots
	put16(buf, headerOff+4, 3|(1<<15))            // n_heap: 3, compact
	put16(buf, headerOff+16, 3)                   // n_recs
	put64(buf, headerOff+18, 7)                   // max_trx_id
	put16(buf, headerOff+26, 0)                   // level = 0 (leaf)
	put64(buf, headerOff+28, 55)                  // index_id

	copy(buf[page.InfimumOffset:], []byte("infimum\x00"))
	copy(buf[page.SupremumOffset:], []byte("supremum"))

	recordsStart := page.SupremumOffset + 8
	const recBodySize = 4 + 6 + 7 + 4 // id + trx_id + roll_ptr + val
	const recStride = 5 + recBodySize

	origins := make([]int, 3)
	for i := 0; i < 3; i++ {
		origins[i] = recordsStart + i*recStride + 5
	}

	// infimum's own header: next points to the first record.
	putRecordHeader(buf, page.InfimumOffset, TypeInfimum, 0, int16(origins[0]-page.InfimumOffset))
	// supremum's own header: terminal, next offset unused.
	putRecordHeader(buf, page.SupremumOffset, TypeSupremum, 0, 0)

	ids := []uint32{10, 20, 30}
	vals := []uint32{100, 200, 300}
	for i := 0; i < 3; i++ {
		origin := origins[i]
		var next int
		if i == 2 {
			next = page.SupremumOffset
		} else {
			next = origins[i+1]
		}
		putRecordHeader(buf, origin, TypeConventional, uint16(2+i), int16(next-origin))

		pos := origin
		put32(buf, pos, ids[i])
		pos += 4
		// DB_TRX_ID (6 bytes) / DB_ROLL_PTR (7 bytes): left zero.
		for j := 0; j < 6; j++ {
			buf[pos+j] = 0
		}
		pos += 6
		for j := 0; j < 7; j++ {
			buf[pos+j] = 0
		}
		pos += 7
		put32(buf, pos, vals[i])
	}

	// one directory slot (unused by LinearSearch/Cursor; just needs to
	// decode without error).
	n := len(buf)
	slotsStart := n - 8 - 2
	put16(buf, slotsStart, uint16(page.SupremumOffset))

	cksum := checksum.Fold(buf)
	put32(buf, filChecksum, cksum)
	put32(buf, n-4, cksum)
	return buf
}

type fakeSource struct {
	pages map[uint64][]byte
}

func (s *fakeSource) Page(n uint64) (page.Page, error) {
	raw, ok := s.pages[n]
	if !ok {
		return nil, nil
	}
	return page.Decode(raw)
}

func testDescriber(t *testing.T) describer.Describer {
	t.Helper()
	d, err := describer.New("t", "PRIMARY", 55, describer.Clustered,
		[]describer.NamedSpec{{Name: "id", Spec: "INT UNSIGNED NOT NULL"}},
		[]describer.NamedSpec{{Name: "val", Spec: "INT UNSIGNED NOT NULL"}},
	)
	require.NoError(t, err)
	return d
}

func TestIndexMinMaxRecord(t *testing.T) {
	src := &fakeSource{pages: map[uint64][]byte{3: buildLeafPage(t)}}
	ix := Open(src, testDescriber(t), 3)

	min, err := ix.MinRecord()
	require.NoError(t, err)
	require.Equal(t, uint64(10), min.Key[0].Value.Uint)
	require.Equal(t, uint64(100), min.Row[0].Value.Uint)

	max, err := ix.MaxRecord()
	require.NoError(t, err)
	require.Equal(t, uint64(30), max.Key[0].Value.Uint)
	require.Equal(t, uint64(300), max.Row[0].Value.Uint)
}

func TestIndexLinearSearchFindsEqualityAndMisses(t *testing.T) {
	src := &fakeSource{pages: map[uint64][]byte{3: buildLeafPage(t)}}
	ix := Open(src, testDescriber(t), 3)
	collector := stats.New()

	rec, err := ix.LinearSearch([]ibdtype.Value{{Kind: ibdtype.KindInt, Uint: 20}}, collector)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, uint64(200), rec.Row[0].Value.Uint)
	require.True(t, collector.Get(stats.KeyComparisons) > 0)

	miss, err := ix.LinearSearch([]ibdtype.Value{{Kind: ibdtype.KindInt, Uint: 25}}, nil)
	require.NoError(t, err)
	require.Nil(t, miss)
}

func TestCursorWalksForwardAndBackward(t *testing.T) {
	src := &fakeSource{pages: map[uint64][]byte{3: buildLeafPage(t)}}
	ix := Open(src, testDescriber(t), 3)

	cur, err := ix.CursorAtMin(Forward, false)
	require.NoError(t, err)
	var got []uint64
	for {
		rec, err := cur.Record()
		require.NoError(t, err)
		if rec == nil {
			break
		}
		got = append(got, rec.Key[0].Value.Uint)
	}
	require.Equal(t, []uint64{10, 20, 30}, got)

	back, err := ix.CursorAtMax(Backward, false)
	require.NoError(t, err)
	var gotBack []uint64
	for {
		rec, err := back.Record()
		require.NoError(t, err)
		if rec == nil {
			break
		}
		gotBack = append(gotBack, rec.Key[0].Value.Uint)
	}
	require.Equal(t, []uint64{30, 20, 10}, gotBack)
}
