// Package querysql compiles queryir queries to parameterized SQLite.
package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/spikeforge/internal/queryir"
)

// SQLCompiler compiles queries to parameterized SQL for SQLite.
//
// Every query gets a stable ORDER BY, and literal values are always bound
// as parameters, never interpolated.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile validates q and converts it to SQL with its parameters.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	if res := queryir.Validate(q); !res.IsValid {
		return "", nil, fmt.Errorf("invalid query: %s", strings.Join(res.Errors, "; "))
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		return c.compileSelect(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

func (c *SQLCompiler) compileSelect(q queryir.Select) (string, []any, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", c.columns(q), q.From)

	var params []any
	if q.Filter != nil {
		where, filterParams, err := c.compilePredicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		b.WriteString(" WHERE ")
		b.WriteString(where)
		params = filterParams
	}

	b.WriteString(" ORDER BY ")
	b.WriteString(stableOrderKey(q.From))

	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		params = append(params, int64(q.Limit))
	}
	return b.String(), params, nil
}

// columns renders the select list; no fields means every column.
func (c *SQLCompiler) columns(q queryir.Select) string {
	fields := q.Fields
	if len(fields) == 0 {
		for _, col := range queryir.Columns(q.From) {
			fields = append(fields, col.Name)
		}
	}
	return strings.Join(fields, ", ")
}

// stableOrderKey returns the ORDER BY clause of a table. The run log is
// append-only and read in log order.
func stableOrderKey(t queryir.Table) string {
	switch t {
	case queryir.TableSpikes:
		return "run_id COLLATE BINARY ASC, step ASC, neuron_id ASC"
	default:
		return "seq ASC, id COLLATE BINARY ASC"
	}
}

func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case queryir.Equals:
		return compileEquals(pred)
	case *queryir.Equals:
		return compileEquals(*pred)
	case queryir.In:
		return compileIn(pred)
	case *queryir.In:
		return compileIn(*pred)
	case queryir.Range:
		return compileRange(pred)
	case *queryir.Range:
		return compileRange(*pred)
	case queryir.And:
		return c.compileAnd(pred)
	case *queryir.And:
		return c.compileAnd(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func compileEquals(eq queryir.Equals) (string, []any, error) {
	param := eq.Value
	if n, ok := param.(int); ok {
		param = int64(n)
	}
	return eq.Field + " = ?", []any{param}, nil
}

func compileIn(in queryir.In) (string, []any, error) {
	if len(in.Values) == 0 {
		return "0 = 1", nil, nil
	}
	params := make([]any, len(in.Values))
	for i, v := range in.Values {
		params[i] = v
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(in.Values)), ", ")
	return fmt.Sprintf("%s IN (%s)", in.Field, placeholders), params, nil
}

func compileRange(r queryir.Range) (string, []any, error) {
	switch {
	case r.Min != nil && r.Max != nil:
		return r.Field + " BETWEEN ? AND ?", []any{*r.Min, *r.Max}, nil
	case r.Min != nil:
		return r.Field + " >= ?", []any{*r.Min}, nil
	default:
		return r.Field + " <= ?", []any{*r.Max}, nil
	}
}

func (c *SQLCompiler) compileAnd(and queryir.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil
	}

	parts := make([]string, 0, len(and.Predicates))
	var params []any
	for _, pred := range and.Predicates {
		sql, predParams, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		if len(and.Predicates) > 1 {
			sql = "(" + sql + ")"
		}
		parts = append(parts, sql)
		params = append(params, predParams...)
	}
	return strings.Join(parts, " AND "), params, nil
}
