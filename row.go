package databoy

import (
	"context"
	"fmt"
	"strings"

	"github.com/syssam/databoy/dialect"
)

// Mode selects the statement a row writes.
type Mode int

// Row modes.
const (
	Insert Mode = iota
	Update
	Delete
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case Update:
		return "update"
	case Delete:
		return "delete"
	default:
		return "insert"
	}
}

// Row accumulates the columns of one table row.
//
// Builder methods never fail directly. Errors are recorded on the session
// and returned by Session.Err and Session.Commit.
type Row struct {
	batch       *Batch
	idColumn    string
	id          any
	columns     []column
	mode        Mode
	deleteFirst bool
	returns     []*ReturnValueCommand
}

func newRow(b *Batch) *Row {
	return &Row{batch: b}
}

// Table returns the table the row belongs to.
func (r *Row) Table() string { return r.batch.table }

// Mode returns the write mode of the row.
func (r *Row) Mode() Mode { return r.mode }

// IsDeleteFirst reports whether the row is deleted before the write phase.
func (r *Row) IsDeleteFirst() bool { return r.deleteFirst }

// ID returns the identifying column and value.
func (r *Row) ID() (string, any) { return r.idColumn, r.id }

// Data adds a column whose value is formatted as a SQL literal.
func (r *Row) Data(name string, value any) *Row {
	return r.add(name, normalize(name), columnValue{kind: literalValue, value: value})
}

// D is shorthand for Data.
func (r *Row) D(name string, value any) *Row { return r.Data(name, value) }

// DataRaw adds a column whose value is emitted by its natural text form,
// without quoting.
func (r *Row) DataRaw(name string, value any) *Row {
	return r.add(name, normalize(name), columnValue{kind: rawValue, value: value})
}

// DataString adds the raw pairs of an inline key=value string.
// See ParseColumnValues for the grammar.
func (r *Row) DataString(s string) *Row {
	pairs, err := ParseColumnValues(s)
	if err != nil {
		r.fail(err)
		return r
	}
	for _, p := range pairs {
		r.DataRaw(p.Name, p.Value)
	}
	return r
}

// DS is shorthand for DataString.
func (r *Row) DS(s string) *Row { return r.DataString(s) }

// ForUpdate makes the row write an UPDATE.
func (r *Row) ForUpdate() *Row {
	r.mode = Update
	return r
}

// ForDelete makes the row write a DELETE.
func (r *Row) ForDelete() *Row {
	r.mode = Delete
	return r
}

// DeleteFirst deletes the row during the delete phase, before any row is
// written, independently of its mode.
func (r *Row) DeleteFirst() *Row {
	r.deleteFirst = true
	return r
}

// ReturnValue starts a read-back of column after the row is written.
// The builder must be finished with ForImmediateUse or AtKey.
func (r *Row) ReturnValue(column string) *ReturnValueBuilder {
	return &ReturnValueBuilder{row: r, column: column}
}

// BindColumn adds a column whose value is a previously registered return
// value. It binds to the last value unless To selects a key. The column
// name is emitted as given.
func (r *Row) BindColumn(name string) *Binding {
	n := len(r.columns)
	r.add(name, name, columnValue{kind: boundValue})
	if len(r.columns) == n {
		return &Binding{row: r, index: -1}
	}
	return &Binding{row: r, index: n}
}

// Row starts a new row in the same batch.
func (r *Row) Row(idColumn string, id any) *Row { return r.batch.Row(idColumn, id) }

// Values adds an anonymous row to the same batch.
func (r *Row) Values(pairs ...ColumnValue) *Batch { return r.batch.Values(pairs...) }

// ForTable starts a new batch in the session.
func (r *Row) ForTable(name string) *Batch { return r.batch.ForTable(name) }

// Commit commits the session.
func (r *Row) Commit(ctx context.Context) error { return r.batch.Commit(ctx) }

func (r *Row) add(name, display string, v columnValue) *Row {
	if name == "" {
		r.fail(&NullArgumentError{Name: "column"})
		return r
	}
	key := normalize(name)
	for _, c := range r.columns {
		if c.key == key {
			r.fail(&DuplicateColumnError{Table: r.Table(), Column: key})
			return r
		}
	}
	r.columns = append(r.columns, column{name: display, key: key, val: v})
	return r
}

func (r *Row) fail(err error) { r.batch.session.record(err) }

func (r *Row) registry() *Registry { return r.batch.session.registry }

// WriteStatement renders the INSERT, UPDATE or DELETE for the row's mode.
// Bound columns are resolved against the session registry.
func (r *Row) WriteStatement(ctx context.Context, vendor dialect.Vendor) (string, error) {
	switch r.mode {
	case Delete:
		return r.DeleteStatement(), nil
	case Update:
		return r.updateStatement(ctx, vendor)
	default:
		return r.insertStatement(ctx, vendor)
	}
}

// DeleteStatement renders the DELETE for the row.
func (r *Row) DeleteStatement() string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s", r.Table(), r.where())
}

func (r *Row) insertStatement(ctx context.Context, vendor dialect.Vendor) (string, error) {
	names := make([]string, 0, len(r.columns))
	values := make([]string, 0, len(r.columns))
	for _, c := range r.columns {
		v, err := c.val.render(ctx, vendor, r.registry())
		if err != nil {
			return "", err
		}
		names = append(names, c.name)
		values = append(values, v)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES(%s)",
		r.Table(), strings.Join(names, ", "), strings.Join(values, ", ")), nil
}

func (r *Row) updateStatement(ctx context.Context, vendor dialect.Vendor) (string, error) {
	idKey := normalize(r.idColumn)
	set := make([]string, 0, len(r.columns))
	for _, c := range r.columns {
		if c.key == idKey {
			continue
		}
		v, err := c.val.render(ctx, vendor, r.registry())
		if err != nil {
			return "", err
		}
		set = append(set, c.name+" = "+v)
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s", r.Table(), strings.Join(set, ", "), r.where()), nil
}

func (r *Row) where() string {
	return r.idColumn + " = " + dialect.Literal(r.id)
}

// DoWrite executes the row's statement through p, then every return-value
// command of the row in registration order.
func (r *Row) DoWrite(ctx context.Context, p dialect.Provider) error {
	stmt, err := r.WriteStatement(ctx, p.Vendor())
	if err != nil {
		return err
	}
	if err := p.Exec(ctx, stmt); err != nil {
		return &ProviderError{Op: "exec", Table: r.Table(), Statement: stmt, Err: err}
	}
	for _, cmd := range r.returns {
		if err := cmd.resolve(ctx, p); err != nil {
			return err
		}
		if err := r.registry().publish(ctx, cmd); err != nil {
			return err
		}
	}
	return nil
}

// DoDelete executes the row's DELETE through p when DeleteFirst is set.
func (r *Row) DoDelete(ctx context.Context, p dialect.Provider) error {
	if !r.deleteFirst {
		return nil
	}
	stmt := r.DeleteStatement()
	if err := p.Exec(ctx, stmt); err != nil {
		return &ProviderError{Op: "exec", Table: r.Table(), Statement: stmt, Err: err}
	}
	return nil
}

// ReturnValueBuilder finishes a ReturnValue call.
type ReturnValueBuilder struct {
	row    *Row
	column string
}

// ForImmediateUse registers the command as the last return value.
func (b *ReturnValueBuilder) ForImmediateUse() *Row {
	return b.register("")
}

// AtKey registers the command under key.
func (b *ReturnValueBuilder) AtKey(key string) *Row {
	if key == "" {
		b.row.fail(&NullArgumentError{Name: "key"})
		return b.row
	}
	return b.register(key)
}

func (b *ReturnValueBuilder) register(key string) *Row {
	r := b.row
	if b.column == "" {
		r.fail(&NullArgumentError{Name: "column"})
		return r
	}
	cmd := &ReturnValueCommand{
		table:    r.Table(),
		column:   b.column,
		idColumn: r.idColumn,
		id:       r.id,
		key:      key,
	}
	if err := r.registry().Register(cmd); err != nil {
		r.fail(err)
		return r
	}
	r.returns = append(r.returns, cmd)
	return r
}

// Binding finishes a BindColumn call.
type Binding struct {
	row   *Row
	index int
}

// To binds the column to the value registered under key.
func (b *Binding) To(key string) *Row {
	if key == "" {
		b.row.fail(&NullArgumentError{Name: "key"})
		return b.row
	}
	if b.index >= 0 {
		b.row.columns[b.index].val.key = key
	}
	return b.row
}

// ToLast binds the column to the last registered value.
func (b *Binding) ToLast() *Row {
	return b.row
}
