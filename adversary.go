package databoy

import (
	"context"
	"fmt"

	"github.com/syssam/databoy/dialect"
)

// Adversary mutates a row behind the back of the code under test, e.g. to
// provoke optimistic concurrency failures.
//
//	err := databoy.NewAdversary(p, "Person").
//	    IdentifiedBy("IdPerson", 1).
//	    IncRowVersion(ctx, "RowVersion")
type Adversary struct {
	provider dialect.Provider
	table    string
	idColumn string
	id       any
}

// NewAdversary returns an Adversary for table.
func NewAdversary(p dialect.Provider, table string) *Adversary {
	return &Adversary{provider: p, table: table}
}

// IdentifiedBy selects the row idColumn = id.
func (a *Adversary) IdentifiedBy(idColumn string, id any) *Adversary {
	a.idColumn, a.id = idColumn, id
	return a
}

// IncRowVersion increments the version column of the selected row by one.
func (a *Adversary) IncRowVersion(ctx context.Context, versionColumn string) error {
	switch {
	case a.table == "":
		return &NullArgumentError{Name: "table"}
	case a.idColumn == "":
		return &NullArgumentError{Name: "idColumn"}
	case versionColumn == "":
		return &NullArgumentError{Name: "versionColumn"}
	}
	stmt := fmt.Sprintf("UPDATE %s SET %s = %s + 1 WHERE %s = %s",
		a.table, versionColumn, versionColumn, a.idColumn, dialect.Literal(a.id))
	if err := a.provider.Exec(ctx, stmt); err != nil {
		return &ProviderError{Op: "exec", Table: a.table, Statement: stmt, Err: err}
	}
	return nil
}
