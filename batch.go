package databoy

import "context"

// Batch is an ordered list of rows for one table.
type Batch struct {
	session *Session
	table   string
	rows    []*Row
}

// Table returns the batch table name.
func (b *Batch) Table() string { return b.table }

// Rows returns the rows of the batch in declaration order.
func (b *Batch) Rows() []*Row { return b.rows }

// Row appends a row identified by idColumn = id and returns it. The
// identifying column is also the first column of the row.
func (b *Batch) Row(idColumn string, id any) *Row {
	r := newRow(b)
	b.rows = append(b.rows, r)
	if idColumn == "" {
		r.fail(&NullArgumentError{Name: "idColumn"})
		return r
	}
	r.idColumn, r.id = idColumn, id
	return r.Data(idColumn, id)
}

// Values appends an anonymous row holding pairs. The row has no
// identifying column and is written when the session commits.
func (b *Batch) Values(pairs ...ColumnValue) *Batch {
	r := newRow(b)
	b.rows = append(b.rows, r)
	for _, p := range pairs {
		if p.Raw {
			r.DataRaw(p.Name, p.Value)
		} else {
			r.Data(p.Name, p.Value)
		}
	}
	return b
}

// ForTable starts a new batch in the session.
func (b *Batch) ForTable(name string) *Batch { return b.session.ForTable(name) }

// Commit commits the session.
func (b *Batch) Commit(ctx context.Context) error { return b.session.Commit(ctx) }
