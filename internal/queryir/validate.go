package queryir

import (
	"fmt"
)

// ValidationResult lists the problems found in a query.
type ValidationResult struct {
	// IsValid is true when Errors is empty.
	IsValid bool

	Errors []string
}

// Validate checks a query against the table schema: known tables and
// fields, literal kinds, and well-formed ranges and limits.
//
// Validate is a pure function with no side effects.
func Validate(query Query) ValidationResult {
	v := &validator{errors: []string{}}
	v.validateQuery(query)

	return ValidationResult{
		IsValid: len(v.errors) == 0,
		Errors:  v.errors,
	}
}

type validator struct {
	table  Table
	errors []string
}

func (v *validator) addError(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case nil:
		v.addError("nil query")
	case Select:
		v.validateSelect(query)
	case *Select:
		if query == nil {
			v.addError("nil query")
			return
		}
		v.validateSelect(*query)
	default:
		v.addError("unknown query type %T", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	if _, ok := schema[sel.From]; !ok {
		v.addError("unknown table %q", sel.From)
		return
	}
	v.table = sel.From

	seen := make(map[string]bool, len(sel.Fields))
	for _, f := range sel.Fields {
		if _, ok := FieldKindOf(sel.From, f); !ok {
			v.addError("unknown field %q in table %s", f, sel.From)
		}
		if seen[f] {
			v.addError("field %q selected twice", f)
		}
		seen[f] = true
	}
	if sel.Limit < 0 {
		v.addError("limit must be >= 0, got %d", sel.Limit)
	}
	v.validatePredicate(sel.Filter)
}

// field reports the kind of a predicate field, recording an error if the
// table has no such field.
func (v *validator) field(name string) (FieldKind, bool) {
	kind, ok := FieldKindOf(v.table, name)
	if !ok {
		v.addError("unknown field %q in table %s", name, v.table)
	}
	return kind, ok
}

func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case nil:
	case Equals:
		v.validateEquals(pred)
	case *Equals:
		v.validateEquals(*pred)
	case In:
		v.requireInt("in", pred.Field)
	case *In:
		v.requireInt("in", pred.Field)
	case Range:
		v.validateRange(pred)
	case *Range:
		v.validateRange(*pred)
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case *And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	default:
		v.addError("unknown predicate type %T", p)
	}
}

func (v *validator) validateEquals(eq Equals) {
	kind, ok := v.field(eq.Field)
	if !ok {
		return
	}
	got, ok := literalKind(eq.Value)
	if !ok {
		v.addError("field %q compared to unsupported literal %T", eq.Field, eq.Value)
		return
	}
	if got != kind {
		v.addError("field %q is %s, compared to %s literal", eq.Field, kind, got)
	}
}

func (v *validator) requireInt(op, field string) {
	kind, ok := v.field(field)
	if ok && kind != KindInt {
		v.addError("%s on %s field %q, only int fields are supported", op, kind, field)
	}
}

func (v *validator) validateRange(r Range) {
	v.requireInt("range", r.Field)
	switch {
	case r.Min == nil && r.Max == nil:
		v.addError("range on %q has no bounds", r.Field)
	case r.Min != nil && r.Max != nil && *r.Min > *r.Max:
		v.addError("range on %q is empty: min %d > max %d", r.Field, *r.Min, *r.Max)
	}
}

// literalKind returns the field kind a literal can be compared with.
func literalKind(v any) (FieldKind, bool) {
	switch v.(type) {
	case int, int64:
		return KindInt, true
	case string:
		return KindString, true
	case bool:
		return KindBool, true
	default:
		return 0, false
	}
}
