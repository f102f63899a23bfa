package sql

// Registers the "pgx" database/sql driver. The mysql, lib/pq, go-mssqldb
// and modernc sqlite drivers register through the imports in errors.go.
import _ "github.com/jackc/pgx/v5/stdlib"
