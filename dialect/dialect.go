package dialect

import (
	"context"
	"fmt"
	"strings"
)

// Vendor identifies a database engine family.
type Vendor string

// Vendors known to databoy.
const (
	SQLServer   Vendor = "sqlserver"
	Oracle      Vendor = "oracle"
	Provisioned Vendor = "provisioned"
	Postgres    Vendor = "postgres"
	MySQL       Vendor = "mysql"
	SQLite      Vendor = "sqlite"
)

// vendors lists every valid vendor, in declaration order.
var vendors = []Vendor{SQLServer, Oracle, Provisioned, Postgres, MySQL, SQLite}

// String implements fmt.Stringer.
func (v Vendor) String() string { return string(v) }

// ParseVendor resolves a vendor name case-insensitively.
// "mssql" and "postgresql" are accepted as aliases.
func ParseVendor(s string) (Vendor, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "mssql":
		return SQLServer, nil
	case "postgresql", "pgx":
		return Postgres, nil
	}
	for _, v := range vendors {
		if string(v) == name {
			return v, nil
		}
	}
	return "", fmt.Errorf("dialect: unknown vendor %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler, which lets a Vendor
// be decoded straight from configuration files.
func (v *Vendor) UnmarshalText(text []byte) error {
	parsed, err := ParseVendor(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// SelectMode controls how many rows a query returns.
type SelectMode int

const (
	// SelectSingle stops after the first row.
	SelectSingle SelectMode = iota
	// SelectAll returns every row.
	SelectAll
)

// String implements fmt.Stringer.
func (m SelectMode) String() string {
	if m == SelectSingle {
		return "single"
	}
	return "all"
}

// Result is one row returned by a Provider.
type Result interface {
	// Get returns the value of the named column. Lookup is case-insensitive.
	Get(column string) (any, bool)
	// First returns the value of the first column of the row.
	First() (any, bool)
	// Columns returns the column names in result-set order.
	Columns() []string
}

// Provider executes statements against one database connection.
type Provider interface {
	// Query runs a statement that returns rows.
	Query(ctx context.Context, query string, mode SelectMode) ([]Result, error)
	// Exec runs a statement that returns no rows.
	Exec(ctx context.Context, query string) error
	// Vendor reports the engine family of the connection.
	Vendor() Vendor
}
