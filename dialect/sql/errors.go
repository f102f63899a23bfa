package sql

import (
	"errors"
	"strings"

	mssql "github.com/denisenkom/go-mssqldb"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// PostgreSQL SQLSTATE codes for constraint violations (Class 23).
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// MySQL error numbers for constraint violations.
const (
	mysqlDuplicateEntry         = 1062
	mysqlForeignKeyParent       = 1451 // Cannot delete or update a parent row
	mysqlForeignKeyChild        = 1452 // Cannot add or update a child row
	mysqlCheckConstraintViolate = 3819
)

// SQL Server error numbers for constraint violations.
const (
	mssqlUniqueConstraint = 2627
	mssqlUniqueIndex      = 2601
	mssqlConstraintClash  = 547 // FOREIGN KEY or CHECK conflict
)

// IsConstraintError reports whether the error resulted from a database
// constraint violation.
func IsConstraintError(err error) bool {
	return IsUniqueConstraintError(err) ||
		IsForeignKeyConstraintError(err) ||
		IsCheckConstraintError(err)
}

// IsUniqueConstraintError reports if the error resulted from a uniqueness
// constraint violation, e.g. re-inserting seed data without DeleteFirst.
func IsUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if sqlState(err) == pgUniqueViolation {
		return true
	}
	if n, ok := mysqlNumber(err); ok && n == mysqlDuplicateEntry {
		return true
	}
	if n, ok := mssqlNumber(err); ok && (n == mssqlUniqueConstraint || n == mssqlUniqueIndex) {
		return true
	}
	if c, ok := sqliteCode(err); ok && (c == sqlite3.SQLITE_CONSTRAINT_UNIQUE || c == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY) {
		return true
	}
	return containsAny(err.Error(),
		"Error 1062",                 // MySQL
		"violates unique constraint", // Postgres
		"UNIQUE constraint failed",   // SQLite
		"Violation of PRIMARY KEY",   // SQL Server
		"Violation of UNIQUE KEY",    // SQL Server
		"ORA-00001",                  // Oracle
	)
}

// IsForeignKeyConstraintError reports if the error resulted from a
// foreign-key constraint violation, e.g. deleting a parent before its
// dependents.
func IsForeignKeyConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if sqlState(err) == pgForeignKeyViolation {
		return true
	}
	if n, ok := mysqlNumber(err); ok && (n == mysqlForeignKeyParent || n == mysqlForeignKeyChild) {
		return true
	}
	if n, ok := mssqlNumber(err); ok && n == mssqlConstraintClash && strings.Contains(err.Error(), "FOREIGN KEY") {
		return true
	}
	if c, ok := sqliteCode(err); ok && c == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
		return true
	}
	return containsAny(err.Error(),
		"Error 1451",                      // MySQL
		"Error 1452",                      // MySQL
		"violates foreign key constraint", // Postgres
		"FOREIGN KEY constraint failed",   // SQLite
		"ORA-02291",                       // Oracle, parent key not found
		"ORA-02292",                       // Oracle, child record found
	)
}

// IsCheckConstraintError reports if the error resulted from a check
// constraint violation.
func IsCheckConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if sqlState(err) == pgCheckViolation {
		return true
	}
	if n, ok := mysqlNumber(err); ok && n == mysqlCheckConstraintViolate {
		return true
	}
	if n, ok := mssqlNumber(err); ok && n == mssqlConstraintClash && strings.Contains(err.Error(), "CHECK") {
		return true
	}
	if c, ok := sqliteCode(err); ok && c == sqlite3.SQLITE_CONSTRAINT_CHECK {
		return true
	}
	return containsAny(err.Error(),
		"Error 3819",                // MySQL
		"violates check constraint", // Postgres
		"CHECK constraint failed",   // SQLite
		"ORA-02290",                 // Oracle
	)
}

// sqlState returns the SQLSTATE of a pgx or lib/pq error, if any.
func sqlState(err error) string {
	if e, ok := asError[*pgconn.PgError](err); ok {
		return e.Code
	}
	if e, ok := asError[*pq.Error](err); ok {
		return string(e.Code)
	}
	return ""
}

func mysqlNumber(err error) (uint16, bool) {
	if e, ok := asError[*mysql.MySQLError](err); ok {
		return e.Number, true
	}
	return 0, false
}

func mssqlNumber(err error) (int32, bool) {
	if e, ok := asError[mssql.Error](err); ok {
		return e.Number, true
	}
	if e, ok := asError[*mssql.Error](err); ok && e != nil {
		return e.Number, true
	}
	return 0, false
}

func sqliteCode(err error) (int, bool) {
	if e, ok := asError[*sqlite.Error](err); ok {
		return e.Code(), true
	}
	return 0, false
}

// asError extracts an error of type T from the error chain.
func asError[T error](err error) (T, bool) {
	var target T
	if errors.As(err, &target) {
		return target, true
	}
	return target, false
}

// containsAny returns true if s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
