package queryir

import "slices"

// Table names a queryable table of the run log.
type Table string

const (
	TableRuns   Table = "runs"
	TableSpikes Table = "spikes"
)

// FieldKind is the value type of a column.
type FieldKind int

const (
	KindInt FieldKind = iota + 1
	KindString
	KindBool
)

func (k FieldKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Column is one field of a table.
type Column struct {
	Name string
	Kind FieldKind
}

// schema lists each table's columns in storage order.
var schema = map[Table][]Column{
	TableRuns: {
		{"id", KindString},
		{"seq", KindInt},
		{"circuit", KindString},
		{"graph_fingerprint", KindString},
		{"steps", KindInt},
		{"record_all", KindBool},
		{"spike_count", KindInt},
		{"trace_hash", KindString},
		{"engine_version", KindString},
	},
	TableSpikes: {
		{"run_id", KindString},
		{"step", KindInt},
		{"neuron_id", KindInt},
	},
}

// Columns returns the columns of t in storage order, or nil for an
// unknown table.
func Columns(t Table) []Column {
	return slices.Clone(schema[t])
}

// FieldKindOf returns the kind of field in t.
func FieldKindOf(t Table, field string) (FieldKind, bool) {
	for _, c := range schema[t] {
		if c.Name == field {
			return c.Kind, true
		}
	}
	return 0, false
}

// Query is a sealed query node.
type Query interface {
	queryNode()
}

// Predicate is a sealed filter node.
type Predicate interface {
	predicateNode()
}

// Select reads rows of one table.
//
//	SELECT <fields> FROM <from> WHERE <filter> ORDER BY <stable key> LIMIT <limit>
//
// Empty Fields selects every column in storage order. A zero Limit means
// no limit.
type Select struct {
	From   Table
	Fields []string
	Filter Predicate
	Limit  int
}

func (Select) queryNode() {}

// Equals matches rows whose field equals a literal. Value must be an int,
// int64, string or bool matching the field's kind.
type Equals struct {
	Field string
	Value any
}

func (Equals) predicateNode() {}

// In matches rows whose integer field is one of Values. An empty set
// matches nothing.
type In struct {
	Field  string
	Values []int64
}

func (In) predicateNode() {}

// Range matches rows whose integer field lies in [Min, Max]. A nil bound
// is open; at least one bound must be set.
type Range struct {
	Field string
	Min   *int64
	Max   *int64
}

func (Range) predicateNode() {}

// And matches rows satisfying every predicate. Empty And matches all rows.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Bound returns a pointer to v, for Range bounds.
func Bound(v int64) *int64 {
	return &v
}
