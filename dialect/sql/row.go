package sql

import (
	"golang.org/x/text/cases"

	"github.com/syssam/databoy/dialect"
)

// Row is a dialect.Result holding one scanned database row.
// Columns keep their result-set order; lookups ignore case.
type Row struct {
	columns []string
	values  []any
	index   map[string]int
}

// NewRow builds a Row from parallel column and value slices.
// Byte slices are converted to strings. When a column name repeats,
// lookups return the first occurrence.
func NewRow(columns []string, values []any) *Row {
	r := &Row{
		columns: columns,
		values:  make([]any, len(values)),
		index:   make(map[string]int, len(columns)),
	}
	for i, v := range values {
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		r.values[i] = v
	}
	fold := cases.Fold()
	for i, c := range columns {
		key := fold.String(c)
		if _, ok := r.index[key]; !ok {
			r.index[key] = i
		}
	}
	return r
}

// Get implements dialect.Result.
func (r *Row) Get(column string) (any, bool) {
	i, ok := r.index[cases.Fold().String(column)]
	if !ok || i >= len(r.values) {
		return nil, false
	}
	return r.values[i], true
}

// First implements dialect.Result.
func (r *Row) First() (any, bool) {
	if len(r.values) == 0 {
		return nil, false
	}
	return r.values[0], true
}

// Columns implements dialect.Result.
func (r *Row) Columns() []string { return r.columns }

// Values returns the row values in column order.
func (r *Row) Values() []any { return r.values }

var _ dialect.Result = (*Row)(nil)
