// Package dialect defines the vendor enumeration and the execution
// contracts databoy uses to talk to a database.
//
// # Vendors
//
// A Vendor names the target database engine family. In databoy the vendor
// only affects how Go values are rendered as SQL literals:
//
//	dialect.SQLServer   = "sqlserver"
//	dialect.Oracle      = "oracle"
//	dialect.Provisioned = "provisioned"
//	dialect.Postgres    = "postgres"
//	dialect.MySQL       = "mysql"
//	dialect.SQLite      = "sqlite"
//
// # Provider Interface
//
// A Provider executes statements for a single connection:
//
//	type Provider interface {
//	    Query(ctx context.Context, query string, mode SelectMode) ([]Result, error)
//	    Exec(ctx context.Context, query string) error
//	    Vendor() Vendor
//	}
//
// Rows come back as Result values with case-insensitive column lookup and a
// First accessor for single-column result sets.
//
// # Literal Formatting
//
// FormatValue renders a value for a vendor:
//
//	dialect.FormatValue("Petter", dialect.SQLServer)         // 'Petter'
//	dialect.FormatValue("$$GETDATE()", dialect.SQLServer)    // GETDATE()
//	dialect.FormatValue(t, dialect.Oracle)                   // to_date('2012/01/02 03:04:05', 'YYYY/MM/DD HH:MI:SS')
//
// The dialect/sql sub-package provides a database/sql backed Provider.
package dialect
