package dictionary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/innodb-tools/ibdparser/pkg/checksum"
	"github.com/innodb-tools/ibdparser/pkg/page"
	"github.com/innodb-tools/ibdparser/pkg/record"
	"github.com/innodb-tools/ibdparser/pkg/space"
	"github.com/stretchr/testify/require"
)

const testPageSize = 16384

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

func putRecordHeader(buf []byte, origin int, recType uint8, heapNumber uint16, nextOffset int16) {
	buf[origin-5] = 0
	heapAndType := heapNumber<<3 | uint16(recType)
	buf[origin-4] = byte(heapAndType >> 8)
	buf[origin-3] = byte(heapAndType)
	buf[origin-2] = byte(uint16(nextOffset) >> 8)
	buf[origin-1] = byte(uint16(nextOffset))
}

const (
	recTypeConventional = 0
	recTypeInfimum      = 2
	recTypeSupremum     = 3
)

// newSystemFile builds a minimal synthetic system tablespace: page 0
// (FSP header, space id 0), page 7 (dict header pointing at the root
// pages built below), page 8 (SYS_TABLES: one row "orders"), page 9
// (SYS_INDEXES: one row "PRIMARY" for that table).
func newSystemFile(t *testing.T) string {
	t.Helper()
	const pages = 10
	buf := make([]byte, pages*testPageSize)

	writeFSPHeader(buf[0:testPageSize], 0, 0)
	writeDictHeader(buf[7*testPageSize:8*testPageSize], 7, 8, 9)
	writeSysTablesPage(buf[8*testPageSize:9*testPageSize], 8)
	writeSysIndexesPage(buf[9*testPageSize:10*testPageSize], 9)

	dir := t.TempDir()
	path := filepath.Join(dir, "ibdata1")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func writePageCommon(buf []byte, pageNo uint32, typ page.Type) {
	put32(buf, 4, pageNo)
	put32(buf, 8, page.UndefinedPage)
	put32(buf, 12, page.UndefinedPage)
	put16(buf, 24, uint16(typ))
	put32(buf, 34, 0)
}

func finalizeChecksum(buf []byte) {
	n := len(buf)
	cksum := checksum.Fold(buf)
	put32(buf, 0, cksum)
	put32(buf, n-4, cksum)
}

func writeFSPHeader(buf []byte, pageNo uint32, spaceID uint32) {
	writePageCommon(buf, pageNo, page.TypeFspHdr)
	put32(buf, 34, spaceID)
	put32(buf, page.FilHeaderLen, spaceID) // FSP header's own space id
	finalizeChecksum(buf)
}

func writeDictHeader(buf []byte, pageNo uint32, tablesRoot, indexesRoot uint32) {
	writePageCommon(buf, pageNo, page.TypeSys)
	put32(buf, dictTablesOffset, tablesRoot)
	put32(buf, dictColumnsOffset, tablesRoot) // unused by these tests
	put32(buf, dictIndexesOffset, indexesRoot)
	put32(buf, dictFieldsOffset, indexesRoot) // unused by these tests
	finalizeChecksum(buf)
}

func writeIndexPageHeader(buf []byte, nRecs uint16, indexID uint64) {
	const headerOff = page.FilHeaderLen
	put16(buf, headerOff+0, 1)                // n_dir_slots
	put16(buf, headerOff+4, nRecs|(1<<15))     // n_heap, compact
	put16(buf, headerOff+16, nRecs)            // n_recs
	put16(buf, headerOff+26, 0)                // level = 0
	put64(buf, headerOff+28, indexID)          // index_id
	copy(buf[page.InfimumOffset:], []byte("infimum\x00"))
	copy(buf[page.SupremumOffset:], []byte("supremum"))
}

func writeDirSlot(buf []byte) {
	n := len(buf)
	put16(buf, n-8-2, uint16(page.SupremumOffset))
}

// writeSysTablesPage writes one row: NAME="orders", ID=5, N_COLS=3,
// TYPE=1, SPACE=42.
func writeSysTablesPage(buf []byte, pageNo uint32) {
	writePageCommon(buf, pageNo, page.TypeIndex)
	writeIndexPageHeader(buf, 1, sysTablesIndexID)

	name := []byte("orders")
	recordsStart := page.SupremumOffset + 8
	varArrayOff := recordsStart // 1 byte, just before the header
	origin := varArrayOff + 1 + 5
	buf[varArrayOff] = byte(len(name))

	putRecordHeader(buf, page.InfimumOffset, recTypeInfimum, 0, int16(origin-page.InfimumOffset))
	putRecordHeader(buf, page.SupremumOffset, recTypeSupremum, 0, 0)
	putRecordHeader(buf, origin, recTypeConventional, 2, int16(page.SupremumOffset-origin))

	pos := origin
	copy(buf[pos:], name)
	pos += len(name)
	pos += 6 // DB_TRX_ID
	pos += 7 // DB_ROLL_PTR
	put64(buf, pos, 5) // ID
	pos += 8
	put32(buf, pos, 3) // N_COLS
	pos += 4
	put32(buf, pos, 1) // TYPE
	pos += 4
	put32(buf, pos, 42) // SPACE

	writeDirSlot(buf)
	finalizeChecksum(buf)
}

// writeSysIndexesPage writes one row: TABLE_ID=5, ID=77,
// NAME="PRIMARY", N_FIELDS=2, TYPE=1, SPACE=42, PAGE_NO=3.
func writeSysIndexesPage(buf []byte, pageNo uint32) {
	writePageCommon(buf, pageNo, page.TypeIndex)
	writeIndexPageHeader(buf, 1, sysIndexesIndexID)

	name := []byte("PRIMARY")
	recordsStart := page.SupremumOffset + 8
	varArrayOff := recordsStart
	origin := varArrayOff + 1 + 5
	buf[varArrayOff] = byte(len(name))

	putRecordHeader(buf, page.InfimumOffset, recTypeInfimum, 0, int16(origin-page.InfimumOffset))
	putRecordHeader(buf, page.SupremumOffset, recTypeSupremum, 0, 0)
	putRecordHeader(buf, origin, recTypeConventional, 2, int16(page.SupremumOffset-origin))

	pos := origin
	put64(buf, pos, 5) // TABLE_ID
	pos += 8
	put64(buf, pos, 77) // ID
	pos += 8
	pos += 6 // DB_TRX_ID
	pos += 7 // DB_ROLL_PTR
	copy(buf[pos:], name)
	pos += len(name)
	put32(buf, pos, 2) // N_FIELDS
	pos += 4
	put32(buf, pos, 1) // TYPE
	pos += 4
	put32(buf, pos, 42) // SPACE
	pos += 4
	put32(buf, pos, 3) // PAGE_NO

	writeDirSlot(buf)
	finalizeChecksum(buf)
}

func newTableSpaceFile(t *testing.T, spaceID uint32) string {
	t.Helper()
	const pages = 4
	buf := make([]byte, pages*testPageSize)
	writeFSPHeader(buf[0:testPageSize], 0, spaceID)
	dir := t.TempDir()
	path := filepath.Join(dir, "orders.ibd")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func openTestSystem(t *testing.T) *System {
	t.Helper()
	path := newSystemFile(t)
	sys, err := space.Open(path)
	require.NoError(t, err)
	return Open(sys, "")
}

func TestAddTableByNameResolvesFromSysTables(t *testing.T) {
	sys := openTestSystem(t)
	tbl, err := sys.AddTableByName("orders")
	require.NoError(t, err)
	require.Equal(t, uint64(5), tbl.ID)
	require.Equal(t, uint32(42), tbl.SpaceID)
	require.Equal(t, uint32(3), tbl.NCols)
	// no data dir configured, so the .ibd can't be opened: orphan.
	require.Contains(t, sys.Orphans(), "orders")
}

func TestTableAndIndexNameByID(t *testing.T) {
	sys := openTestSystem(t)
	table, index, err := sys.TableAndIndexNameByID(77)
	require.NoError(t, err)
	require.Equal(t, "orders", table)
	require.Equal(t, "PRIMARY", index)
}

func TestIndexByNameRequiresOpenTablespace(t *testing.T) {
	sys := openTestSystem(t)
	_, err := sys.IndexByName("orders", "PRIMARY", sysTablesDescriber)
	require.Error(t, err)
}

func TestIndexByNameResolvesRootWhenSpaceRegistered(t *testing.T) {
	sys := openTestSystem(t)
	// SYS_TABLES reports table "orders" living in space 42; register
	// that space before resolving the table so AddTableByName finds it
	// already open instead of marking it an orphan.
	path := newTableSpaceFile(t, 42)
	_, err := sys.AddSpace(path)
	require.NoError(t, err)

	tbl, err := sys.AddTableByName("orders")
	require.NoError(t, err)
	require.NotNil(t, tbl.Space)
	require.Empty(t, sys.Orphans())

	ix, err := sys.IndexByName("orders", "PRIMARY", sysTablesDescriber)
	require.NoError(t, err)
	require.NotNil(t, ix)
	require.IsType(t, &record.Index{}, ix)
}
