// Package ibdtype decodes InnoDB's fixed- and variable-length column
// encodings into language-neutral values (spec.md §4.3, component C3):
// integers with the sign-bit flip, DECIMAL, temporal types, character
// strings, BLOB/extern pointers, DB_ROLL_PTR and DB_TRX_ID.
//
// Grounded on the *shape* of the teacher's basic.Value family
// (server/innodb/basic/{int_value,bigint_value,varchar_value,
// complext_value}.go — a tagged value wrapper with a DataType()/ToByte()
// pair), rewritten as a plain decode function returning an immutable
// Value struct instead of a mutable arithmetic-capable wrapper: this
// tool never computes with decoded values, only displays them, and the
// teacher's arithmetic methods (Add/Sub/Mul/...) are all `panic("implement
// me")` stubs with no bearing on decoding.
package ibdtype

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/innodb-tools/ibdparser/internal/errs"
)

// Kind names the base family a Spec belongs to.
type Kind int

const (
	KindInt Kind = iota
	KindDecimal
	KindTemporal
	KindString
	KindBlobRef
	KindRollPointer
	KindTransactionID
	KindEnum
)

// Modifier is one of the flags a textual spec can carry.
type Modifier int

const (
	ModUnsigned Modifier = 1 << iota
	ModNotNull
	ModZerofill
)

// Spec is a parsed textual data-type description such as
// "VARCHAR(64) UNSIGNED NOT NULL".
type Spec struct {
	Name      string // e.g. "INT", "VARCHAR", "DECIMAL", "DATETIME"
	Kind      Kind
	Length    int // byte/char length for fixed types, max length for VARCHAR
	Precision int // DECIMAL precision
	Scale     int // DECIMAL scale
	Modifiers Modifier
	Enum      []string // ENUM/SET member names, in declared order
}

func (s Spec) Unsigned() bool { return s.Modifiers&ModUnsigned != 0 }
func (s Spec) NotNull() bool  { return s.Modifiers&ModNotNull != 0 }
func (s Spec) Zerofill() bool { return s.Modifiers&ModZerofill != 0 }
func (s Spec) Nullable() bool { return !s.NotNull() }

// variableStringTypes are the CHAR-family names whose on-page storage is
// variable-length and therefore carries an entry in the record's
// variable-length array (spec.md §3, §4.7) — CHAR/BINARY are the fixed-
// width exceptions.
var variableStringTypes = map[string]bool{
	"VARCHAR": true, "VARBINARY": true,
	"TEXT": true, "TINYTEXT": true, "MEDIUMTEXT": true, "LONGTEXT": true,
	"BLOB": true, "TINYBLOB": true, "MEDIUMBLOB": true, "LONGBLOB": true,
}

// Variable reports whether a column of this Spec occupies an entry in
// the record's variable-length array rather than a fixed byte width.
func (s Spec) Variable() bool {
	return s.Kind == KindString && variableStringTypes[s.Name]
}

// FixedWidth returns the on-page byte width of a fixed-width column
// (every Spec except a Variable() KindString), and false if the column
// is variable-length.
func (s Spec) FixedWidth() (int, bool) {
	if s.Variable() {
		return 0, false
	}
	switch s.Kind {
	case KindInt:
		return s.Length, true
	case KindDecimal:
		return decimalWidth(s.Precision, s.Scale), true
	case KindTemporal:
		return s.Length, true
	case KindString: // CHAR/BINARY: fixed storage, length from the spec
		return s.Length, true
	case KindRollPointer:
		return 7, true
	case KindTransactionID:
		return 6, true
	case KindEnum:
		if len(s.Enum) > 255 {
			return 2, true
		}
		return 1, true
	default:
		return 0, false
	}
}

// decimalWidth computes the packed byte width of DECIMAL(precision,scale),
// mirroring decodeDecimal's group arithmetic.
func decimalWidth(precision, scale int) int {
	if precision <= 0 {
		precision = 10
	}
	intDigits := precision - scale
	intGroups := intDigits / decimalDigitsPerGroup
	intLeftover := intDigits % decimalDigitsPerGroup
	fracGroups := scale / decimalDigitsPerGroup
	fracLeftover := scale % decimalDigitsPerGroup
	return decimalBytesForDigits[intLeftover] + intGroups*4 +
		fracGroups*4 + decimalBytesForDigits[fracLeftover]
}

// fixedWidths gives the on-disk byte width of integer types that do not
// carry an explicit "(N)" length.
var fixedWidths = map[string]int{
	"TINYINT":  1,
	"SMALLINT": 2,
	"MEDIUMINT": 3,
	"INT":      4,
	"INTEGER":  4,
	"BIGINT":   8,
}

// ParseSpec parses a textual column-type specification. This has no
// library counterpart anywhere in the pack — InnoDB/MySQL column-spec
// grammar is a narrow, domain-specific text format no general parsing
// library covers, so it is a small hand-written tokenizer, same as the
// describer literal's `(name, type-spec, modifiers...)` tuple in
// spec.md §4.8.
func ParseSpec(text string) (Spec, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Spec{}, errs.New(errs.InvalidSpecification, "empty type specification")
	}
	upper := strings.ToUpper(text)
	fields := strings.Fields(upper)
	if len(fields) == 0 {
		return Spec{}, errs.New(errs.InvalidSpecification, "empty type specification")
	}

	head := fields[0]
	name := head
	args := ""
	if idx := strings.IndexByte(head, '('); idx >= 0 {
		if !strings.HasSuffix(head, ")") {
			return Spec{}, errs.Errorf(errs.InvalidSpecification, "unterminated length in %q", text)
		}
		name = head[:idx]
		args = head[idx+1 : len(head)-1]
	}

	var mods Modifier
	rest := strings.Join(fields[1:], " ")
	if strings.Contains(rest, "UNSIGNED") {
		mods |= ModUnsigned
	}
	if strings.Contains(rest, "NOT NULL") {
		mods |= ModNotNull
	}
	if strings.Contains(rest, "ZEROFILL") {
		mods |= ModZerofill
	}

	spec := Spec{Name: name, Modifiers: mods}

	switch name {
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "INTEGER", "BIGINT":
		spec.Kind = KindInt
		spec.Length = fixedWidths[name]
		if args != "" {
			// display width, e.g. INT(11): does not change storage width.
			if _, err := strconv.Atoi(args); err != nil {
				return Spec{}, errs.Errorf(errs.InvalidSpecification, "bad display width in %q", text)
			}
		}
	case "DECIMAL", "NUMERIC":
		spec.Kind = KindDecimal
		if args == "" {
			spec.Precision, spec.Scale = 10, 0
			break
		}
		parts := strings.Split(args, ",")
		p, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return Spec{}, errs.Errorf(errs.InvalidSpecification, "bad precision in %q", text)
		}
		spec.Precision = p
		if len(parts) > 1 {
			sc, err := strconv.Atoi(strings.TrimSpace(parts[1]))
			if err != nil {
				return Spec{}, errs.Errorf(errs.InvalidSpecification, "bad scale in %q", text)
			}
			spec.Scale = sc
		}
	case "DATE":
		spec.Kind, spec.Length = KindTemporal, 3
	case "TIME":
		spec.Kind, spec.Length = KindTemporal, 3
	case "DATETIME":
		spec.Kind, spec.Length = KindTemporal, 8
	case "TIMESTAMP":
		spec.Kind, spec.Length = KindTemporal, 4
	case "YEAR":
		spec.Kind, spec.Length = KindTemporal, 1
	case "CHAR", "VARCHAR", "TEXT", "TINYTEXT", "MEDIUMTEXT", "LONGTEXT",
		"BINARY", "VARBINARY", "BLOB", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB":
		spec.Kind = KindString
		if args != "" {
			n, err := strconv.Atoi(args)
			if err != nil {
				return Spec{}, errs.Errorf(errs.InvalidSpecification, "bad length in %q", text)
			}
			spec.Length = n
		}
	case "ROLL_POINTER", "DB_ROLL_PTR":
		spec.Kind, spec.Length = KindRollPointer, 7
	case "TRX_ID", "DB_TRX_ID":
		spec.Kind, spec.Length = KindTransactionID, 6
	case "ENUM", "SET":
		spec.Kind = KindEnum
		spec.Enum = splitEnumMembers(args)
	default:
		return Spec{}, errs.Errorf(errs.InvalidSpecification, "unknown type %q in %q", name, text)
	}
	return spec, nil
}

func splitEnumMembers(args string) []string {
	if args == "" {
		return nil
	}
	raw := strings.Split(args, ",")
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		r = strings.Trim(r, "'\"")
		out = append(out, r)
	}
	return out
}

// String renders the Spec back to roughly its textual form, for
// diagnostics and CLI output.
func (s Spec) String() string {
	var b strings.Builder
	b.WriteString(s.Name)
	switch s.Kind {
	case KindDecimal:
		fmt.Fprintf(&b, "(%d,%d)", s.Precision, s.Scale)
	case KindString:
		if s.Length > 0 {
			fmt.Fprintf(&b, "(%d)", s.Length)
		}
	}
	if s.Unsigned() {
		b.WriteString(" UNSIGNED")
	}
	if s.NotNull() {
		b.WriteString(" NOT NULL")
	}
	if s.Zerofill() {
		b.WriteString(" ZEROFILL")
	}
	return b.String()
}
