package databoy

import (
	"context"
	"fmt"
	"strings"

	"github.com/syssam/databoy/dialect"
)

// ValueQuery reads single values from a table filtered by column
// equality constraints.
//
//	name, err := databoy.QueryTable(p, "Person").
//	    Where("IdPerson", 1).
//	    Value(ctx, "FirstName")
type ValueQuery struct {
	provider dialect.Provider
	table    string
	where    []column
	err      error
}

// QueryTable starts a value query on table.
func QueryTable(p dialect.Provider, table string) *ValueQuery {
	q := &ValueQuery{provider: p, table: table}
	if table == "" {
		q.err = &NullArgumentError{Name: "table"}
	}
	return q
}

// Where adds the constraint column = value. A column may be constrained
// once.
func (q *ValueQuery) Where(name string, value any) *ValueQuery {
	if q.err != nil {
		return q
	}
	if name == "" {
		q.err = &NullArgumentError{Name: "column"}
		return q
	}
	key := normalize(name)
	for _, c := range q.where {
		if c.key == key {
			q.err = &DuplicateColumnError{Table: q.table, Column: key}
			return q
		}
	}
	q.where = append(q.where, column{name: name, key: key, val: columnValue{kind: literalValue, value: value}})
	return q
}

// And is an alias of Where.
func (q *ValueQuery) And(name string, value any) *ValueQuery { return q.Where(name, value) }

// Statement renders the SELECT.
func (q *ValueQuery) Statement() string {
	var b strings.Builder
	b.WriteString("SELECT * FROM ")
	b.WriteString(q.table)
	for i, c := range q.where {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		b.WriteString(c.name)
		b.WriteString(" = ")
		b.WriteString(dialect.FormatValue(c.val.value, q.provider.Vendor()))
	}
	return b.String()
}

// First returns the first matching row, or ErrNoRows.
func (q *ValueQuery) First(ctx context.Context) (dialect.Result, error) {
	rows, err := q.rows(ctx, dialect.SelectSingle)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows[0], nil
}

// All returns every matching row.
func (q *ValueQuery) All(ctx context.Context) ([]dialect.Result, error) {
	return q.rows(ctx, dialect.SelectAll)
}

// Exists reports whether a row matches.
func (q *ValueQuery) Exists(ctx context.Context) (bool, error) {
	rows, err := q.rows(ctx, dialect.SelectSingle)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// Value returns the named column of the first matching row.
func (q *ValueQuery) Value(ctx context.Context, name string) (any, error) {
	row, err := q.First(ctx)
	if err != nil {
		return nil, err
	}
	v, ok := row.Get(name)
	if !ok {
		return nil, fmt.Errorf("databoy: column %q not found in %s", name, q.table)
	}
	return v, nil
}

func (q *ValueQuery) rows(ctx context.Context, mode dialect.SelectMode) ([]dialect.Result, error) {
	if q.err != nil {
		return nil, q.err
	}
	stmt := q.Statement()
	rows, err := q.provider.Query(ctx, stmt, mode)
	if err != nil {
		return nil, &ProviderError{Op: "query", Table: q.table, Statement: stmt, Err: err}
	}
	return rows, nil
}
