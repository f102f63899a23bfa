package sql

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/databoy/dialect"
)

func newMock(t *testing.T) (*Driver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return OpenDB(dialect.SQLServer, db), mock
}

func TestOpenDB(t *testing.T) {
	for _, v := range []dialect.Vendor{dialect.SQLServer, dialect.Oracle, dialect.Postgres, dialect.SQLite} {
		t.Run(string(v), func(t *testing.T) {
			db, _, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			drv := OpenDB(v, db)
			assert.Equal(t, v, drv.Vendor())
			assert.Same(t, db, drv.DB())
		})
	}
}

func TestDriverName(t *testing.T) {
	tests := map[dialect.Vendor]string{
		dialect.SQLServer: "sqlserver",
		dialect.Postgres:  "pgx",
		dialect.MySQL:     "mysql",
		dialect.SQLite:    "sqlite",
		dialect.Oracle:    "oracle",
	}
	for v, want := range tests {
		got, err := DriverName(v)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := DriverName(dialect.Provisioned)
	require.Error(t, err)
	_, err = DriverName("db2")
	require.Error(t, err)
}

func TestDriverDriverName(t *testing.T) {
	drv, err := Open(dialect.SQLite, ":memory:")
	require.NoError(t, err)
	defer drv.Close()
	assert.Equal(t, "sqlite", drv.DriverName())

	pq, err := Open(dialect.Postgres, "postgres://localhost/none", WithDriverName("postgres"))
	require.NoError(t, err)
	defer pq.Close()
	assert.Equal(t, "postgres", pq.DriverName())
	assert.Equal(t, dialect.Postgres, pq.Vendor())

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, "mysql", OpenDB(dialect.MySQL, db).DriverName())
}

func TestDriverQuery(t *testing.T) {
	drv, mock := newMock(t)
	ctx := context.Background()

	t.Run("Single", func(t *testing.T) {
		mock.ExpectQuery("SELECT IdPerson FROM Person WHERE Id = 'a'").
			WillReturnRows(sqlmock.NewRows([]string{"IdPerson"}).AddRow(int64(7)).AddRow(int64(8)))
		rows, err := drv.Query(ctx, "SELECT IdPerson FROM Person WHERE Id = 'a'", dialect.SelectSingle)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		v, ok := rows[0].First()
		require.True(t, ok)
		assert.Equal(t, int64(7), v)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("All", func(t *testing.T) {
		mock.ExpectQuery("SELECT * FROM Person").
			WillReturnRows(sqlmock.NewRows([]string{"Id", "Name"}).
				AddRow(1, []byte("Ann")).
				AddRow(2, nil))
		rows, err := drv.Query(ctx, "SELECT * FROM Person", dialect.SelectAll)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		name, ok := rows[0].Get("NAME")
		require.True(t, ok)
		assert.Equal(t, "Ann", name, "byte slices are read as strings")
		name, ok = rows[1].Get("name")
		require.True(t, ok)
		assert.Nil(t, name)
		assert.Equal(t, []string{"Id", "Name"}, rows[1].Columns())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error", func(t *testing.T) {
		mock.ExpectQuery("SELECT broken").WillReturnError(errors.New("syntax error"))
		_, err := drv.Query(ctx, "SELECT broken", dialect.SelectAll)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dialect/sql: query")
		assert.Contains(t, err.Error(), "syntax error")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDriverExec(t *testing.T) {
	drv, mock := newMock(t)
	ctx := context.Background()
	mock.ExpectExec("DELETE FROM Person WHERE IdPerson = 1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, drv.Exec(ctx, "DELETE FROM Person WHERE IdPerson = 1"))

	cause := errors.New("connection reset")
	mock.ExpectExec("DELETE FROM Person WHERE IdPerson = 2").WillReturnError(cause)
	err := drv.Exec(ctx, "DELETE FROM Person WHERE IdPerson = 2")
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverTransaction(t *testing.T) {
	drv, mock := newMock(t)
	ctx := context.Background()

	t.Run("Rollback", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO Person (IDPERSON) VALUES(1)").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectRollback()
		tx, err := drv.Tx(ctx)
		require.NoError(t, err)
		assert.Equal(t, dialect.SQLServer, tx.Vendor())
		require.NoError(t, tx.Exec(ctx, "INSERT INTO Person (IDPERSON) VALUES(1)"))
		require.NoError(t, tx.Rollback())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Commit", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
		mock.ExpectCommit()
		tx, err := drv.Tx(ctx)
		require.NoError(t, err)
		_, err = tx.Query(ctx, "SELECT 1", dialect.SelectSingle)
		require.NoError(t, err)
		require.NoError(t, tx.Commit())
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestContextCancellation(t *testing.T) {
	drv, _ := newMock(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := drv.Exec(ctx, "SELECT 1")
	require.Error(t, err)
}

func TestSQLiteProvider(t *testing.T) {
	drv, err := Open(dialect.SQLite, ":memory:")
	require.NoError(t, err)
	drv.DB().SetMaxOpenConns(1)
	defer drv.Close()
	ctx := context.Background()

	require.NoError(t, drv.Exec(ctx, "CREATE TABLE Person (IdPerson INTEGER PRIMARY KEY, Name TEXT, Age INTEGER CHECK (Age > 0))"))
	require.NoError(t, drv.Exec(ctx, "INSERT INTO Person (IDPERSON, NAME, AGE) VALUES(1, 'Ann', 30)"))

	rows, err := drv.Query(ctx, "SELECT Name, Age FROM Person WHERE IdPerson = 1", dialect.SelectSingle)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	name, ok := rows[0].Get("name")
	require.True(t, ok)
	assert.Equal(t, "Ann", name)

	err = drv.Exec(ctx, "INSERT INTO Person (IDPERSON, NAME, AGE) VALUES(1, 'Bob', 20)")
	require.Error(t, err)
	assert.True(t, IsUniqueConstraintError(err))
	assert.True(t, IsConstraintError(err))

	err = drv.Exec(ctx, "INSERT INTO Person (IDPERSON, NAME, AGE) VALUES(2, 'Bob', -1)")
	require.Error(t, err)
	assert.True(t, IsCheckConstraintError(err))
	assert.False(t, IsUniqueConstraintError(err))
}
