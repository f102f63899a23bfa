package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/syssam/databoy/dialect"
)

// ExecQuerier wraps the standard Exec and Query methods.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Driver is a dialect.Provider implementation for SQL based databases.
type Driver struct {
	ExecQuerier
	vendor dialect.Vendor
	name   string
}

// NewDriver creates a new Driver for the given vendor and ExecQuerier.
func NewDriver(vendor dialect.Vendor, ex ExecQuerier) *Driver {
	return &Driver{ExecQuerier: ex, vendor: vendor}
}

// Option configures Open.
type Option func(*openOptions)

type openOptions struct {
	driverName string
}

// WithDriverName overrides the database/sql driver used for the vendor,
// e.g. "postgres" to use lib/pq instead of pgx.
func WithDriverName(name string) Option {
	return func(o *openOptions) { o.driverName = name }
}

// DriverName returns the database/sql driver registered for the vendor.
// Oracle has no bundled driver; callers register one under "oracle".
func DriverName(vendor dialect.Vendor) (string, error) {
	switch vendor {
	case dialect.SQLServer:
		return "sqlserver", nil
	case dialect.Postgres:
		return "pgx", nil
	case dialect.MySQL:
		return "mysql", nil
	case dialect.SQLite:
		return "sqlite", nil
	case dialect.Oracle:
		return "oracle", nil
	case dialect.Provisioned:
		return "", fmt.Errorf("dialect/sql: vendor %q requires a provider factory", vendor)
	default:
		return "", fmt.Errorf("dialect/sql: unsupported vendor %q", vendor)
	}
}

// Open wraps the database/sql.Open method and returns a Driver for the vendor.
func Open(vendor dialect.Vendor, dsn string, opts ...Option) (*Driver, error) {
	var o openOptions
	for _, opt := range opts {
		opt(&o)
	}
	name := o.driverName
	if name == "" {
		var err error
		if name, err = DriverName(vendor); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: open %s: %w", name, err)
	}
	drv := NewDriver(vendor, db)
	drv.name = name
	return drv, nil
}

// OpenDB wraps the given database/sql.DB with a Driver.
func OpenDB(vendor dialect.Vendor, db *sql.DB) *Driver {
	return NewDriver(vendor, db)
}

// DB returns the underlying *sql.DB instance, or nil when the driver wraps
// something else.
func (d *Driver) DB() *sql.DB {
	db, _ := d.ExecQuerier.(*sql.DB)
	return db
}

// Vendor implements the dialect.Provider method.
func (d *Driver) Vendor() dialect.Vendor { return d.vendor }

// DriverName returns the database/sql driver name the Driver was opened
// with. Drivers built by NewDriver or OpenDB report the vendor default.
func (d *Driver) DriverName() string {
	if d.name != "" {
		return d.name
	}
	name, _ := DriverName(d.vendor)
	return name
}

// Exec implements the dialect.Provider method.
func (d *Driver) Exec(ctx context.Context, query string) error {
	return exec(ctx, d.ExecQuerier, query)
}

// Query implements the dialect.Provider method.
func (d *Driver) Query(ctx context.Context, query string, mode dialect.SelectMode) ([]dialect.Result, error) {
	return queryRows(ctx, d.ExecQuerier, query, mode)
}

// Tx starts and returns a transaction. A Tx is itself a Provider, so a
// session can be committed inside it and rolled back afterwards.
func (d *Driver) Tx(ctx context.Context) (*Tx, error) {
	db := d.DB()
	if db == nil {
		return nil, errors.New("dialect/sql: driver does not wrap a *sql.DB")
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: begin: %w", err)
	}
	txd := NewDriver(d.vendor, tx)
	txd.name = d.name
	return &Tx{Driver: txd, tx: tx}, nil
}

// Close closes the underlying connection.
func (d *Driver) Close() error {
	if db := d.DB(); db != nil {
		return db.Close()
	}
	return nil
}

// Tx is a Provider bound to a database transaction.
type Tx struct {
	*Driver
	tx *sql.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit() error { return t.tx.Commit() }

// Rollback rolls back the transaction.
func (t *Tx) Rollback() error { return t.tx.Rollback() }

// Close is a no-op for transactions; use Commit or Rollback.
func (t *Tx) Close() error { return nil }

func exec(ctx context.Context, ex ExecQuerier, query string) error {
	if _, err := ex.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("dialect/sql: exec: %w", err)
	}
	return nil
}

func queryRows(ctx context.Context, ex ExecQuerier, query string, mode dialect.SelectMode) (_ []dialect.Result, rerr error) {
	rows, err := ex.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: query: %w", err)
	}
	defer func() { rerr = errors.Join(rerr, rows.Close()) }()
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: query: columns: %w", err)
	}
	var results []dialect.Result
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("dialect/sql: query: scan: %w", err)
		}
		results = append(results, NewRow(columns, values))
		if mode == dialect.SelectSingle {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dialect/sql: query: %w", err)
	}
	return results, nil
}

var (
	_ dialect.Provider = (*Driver)(nil)
	_ dialect.Provider = (*Tx)(nil)
)
