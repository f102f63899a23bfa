package databoy

import (
	"context"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/databoy/dialect"
)

// Column names a column for building a ColumnValue pair:
//
//	batch.Values(databoy.Column("FirstName").Eq("Steel"))
type Column string

// Eq pairs the column with a value that is formatted as a SQL literal.
func (c Column) Eq(v any) ColumnValue {
	return ColumnValue{Name: string(c), Value: v}
}

// EqRaw pairs the column with a value emitted by its natural text form.
func (c Column) EqRaw(v any) ColumnValue {
	return ColumnValue{Name: string(c), Value: v, Raw: true}
}

// ColumnValue is a column/value pair accepted by Batch.Values.
type ColumnValue struct {
	Name  string
	Value any
	Raw   bool
}

// valueKind tags the variants of a column value.
type valueKind int

const (
	literalValue valueKind = iota
	rawValue
	boundValue
)

// columnValue is the value descriptor of a row column: a literal, a raw
// fragment, or a placeholder bound to a registered return value.
type columnValue struct {
	kind  valueKind
	value any
	key   string // bound values only; empty binds to the last value
}

// render produces the SQL text of the value. Bound values are looked up in
// reg at call time.
func (v columnValue) render(ctx context.Context, vendor dialect.Vendor, reg *Registry) (string, error) {
	switch v.kind {
	case rawValue:
		return dialect.FormatRaw(v.value, vendor), nil
	case boundValue:
		var (
			val any
			err error
		)
		if v.key == "" {
			val, err = reg.LastValue()
		} else {
			val, err = reg.ValueAt(ctx, v.key)
		}
		if err != nil {
			return "", err
		}
		return dialect.Literal(val), nil
	default:
		return dialect.FormatValue(v.value, vendor), nil
	}
}

// column is one named entry of a row.
type column struct {
	name string // as emitted in statements
	key  string // upper-cased, used for duplicate detection
	val  columnValue
}

// normalize upper-cases a column name.
func normalize(name string) string {
	return cases.Upper(language.Und).String(name)
}

// Raw marks fragment as pre-formatted SQL for Data:
//
//	row.Data("Created", databoy.Raw("GETDATE()"))
func Raw(fragment string) string { return dialect.Raw(fragment) }
