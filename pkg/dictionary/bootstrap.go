package dictionary

import "github.com/innodb-tools/ibdparser/pkg/describer"

// Well-known root pages and index ids of the system tablespace's own
// data-dictionary tables, fixed by MySQL's InnoDB source
// (dict0boot.h's DICT_HDR_* layout) since before any user table exists.
// These are the bootstrap that lets the dictionary describe itself
// (spec.md §4.10's "chicken-and-egg").
const (
	dictHeaderPageNo uint64 = 7

	sysTablesIndexID  uint64 = 1
	sysColumnsIndexID uint64 = 2
	sysIndexesIndexID uint64 = 3
	sysFieldsIndexID  uint64 = 4
)

// bootstrapDescribers are the reduced, representative column sets for
// InnoDB's four self-describing system tables (the real tables carry a
// few more housekeeping columns; these are the ones spec.md's §4.10
// self-description round-trip actually needs: enough to resolve a
// table name to a space id, and an index id to its root page).
func mustDescriber(table, index string, id uint64, kind describer.Kind, key, row []describer.NamedSpec) describer.Describer {
	d, err := describer.New(table, index, id, kind, key, row)
	if err != nil {
		panic(err) // bootstrap specs are fixed at compile time
	}
	return d
}

var sysTablesDescriber = mustDescriber("SYS_TABLES", "CLUST_INDEX", sysTablesIndexID, describer.Clustered,
	[]describer.NamedSpec{{Name: "NAME", Spec: "VARCHAR(192) NOT NULL"}},
	[]describer.NamedSpec{
		{Name: "ID", Spec: "BIGINT UNSIGNED NOT NULL"},
		{Name: "N_COLS", Spec: "INT UNSIGNED NOT NULL"},
		{Name: "TYPE", Spec: "INT UNSIGNED NOT NULL"},
		{Name: "SPACE", Spec: "INT UNSIGNED NOT NULL"},
	},
)

var sysColumnsDescriber = mustDescriber("SYS_COLUMNS", "CLUST_INDEX", sysColumnsIndexID, describer.Clustered,
	[]describer.NamedSpec{
		{Name: "TABLE_ID", Spec: "BIGINT UNSIGNED NOT NULL"},
		{Name: "POS", Spec: "INT UNSIGNED NOT NULL"},
	},
	[]describer.NamedSpec{
		{Name: "NAME", Spec: "VARCHAR(64) NOT NULL"},
		{Name: "MTYPE", Spec: "INT UNSIGNED NOT NULL"},
		{Name: "PREC", Spec: "INT UNSIGNED NOT NULL"},
		{Name: "LEN", Spec: "INT UNSIGNED NOT NULL"},
	},
)

var sysIndexesDescriber = mustDescriber("SYS_INDEXES", "CLUST_INDEX", sysIndexesIndexID, describer.Clustered,
	[]describer.NamedSpec{
		{Name: "TABLE_ID", Spec: "BIGINT UNSIGNED NOT NULL"},
		{Name: "ID", Spec: "BIGINT UNSIGNED NOT NULL"},
	},
	[]describer.NamedSpec{
		{Name: "NAME", Spec: "VARCHAR(64) NOT NULL"},
		{Name: "N_FIELDS", Spec: "INT UNSIGNED NOT NULL"},
		{Name: "TYPE", Spec: "INT UNSIGNED NOT NULL"},
		{Name: "SPACE", Spec: "INT UNSIGNED NOT NULL"},
		{Name: "PAGE_NO", Spec: "INT UNSIGNED NOT NULL"},
	},
)

var sysFieldsDescriber = mustDescriber("SYS_FIELDS", "CLUST_INDEX", sysFieldsIndexID, describer.Clustered,
	[]describer.NamedSpec{
		{Name: "INDEX_ID", Spec: "BIGINT UNSIGNED NOT NULL"},
		{Name: "POS", Spec: "INT UNSIGNED NOT NULL"},
	},
	[]describer.NamedSpec{
		{Name: "COL_NAME", Spec: "VARCHAR(64) NOT NULL"},
	},
)

// bootstrapRegistry returns a fresh registry seeded with the four
// system-table describers, for callers that want to look one up by
// index id without going through System.
func bootstrapRegistry() *describer.Registry {
	r := describer.NewRegistry()
	r.Add(sysTablesDescriber)
	r.Add(sysColumnsDescriber)
	r.Add(sysIndexesDescriber)
	r.Add(sysFieldsDescriber)
	return r
}
