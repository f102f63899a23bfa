package databoy_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/databoy"
	"github.com/syssam/databoy/dialect"
	"github.com/syssam/databoy/dialect/sql"
)

func TestCommitThroughDriver(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()
	drv := sql.OpenDB(dialect.SQLServer, db)

	mock.ExpectExec("DELETE FROM Address WHERE IdAddress = 100").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM Person WHERE IdPerson = 1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO Person (IDPERSON, FIRSTNAME) VALUES(1, 'Petter')").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT IdPerson FROM Person WHERE IdPerson = 1").
		WillReturnRows(sqlmock.NewRows([]string{"IdPerson"}).AddRow(int64(1)))
	mock.ExpectExec("INSERT INTO Address (IDADDRESS, IdPerson) VALUES(100, 1)").WillReturnResult(sqlmock.NewResult(1, 1))

	err = databoy.NewSession(databoy.WithProvider(drv)).
		ForTable("Person").
		Row("IdPerson", 1).D("FirstName", "Petter").DeleteFirst().ReturnValue("IdPerson").AtKey("person").
		ForTable("Address").
		Row("IdAddress", 100).DeleteFirst().BindColumn("IdPerson").To("person").
		Commit(context.Background())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitConstraintFailure(t *testing.T) {
	drv := openSQLite(t)
	ctx := context.Background()
	require.NoError(t, drv.Exec(ctx, "CREATE TABLE Person (IdPerson INTEGER PRIMARY KEY, Name TEXT)"))
	require.NoError(t, drv.Exec(ctx, "INSERT INTO Person (IdPerson, Name) VALUES(1, 'Existing')"))

	err := databoy.NewSession(databoy.WithProvider(drv)).
		ForTable("Person").Row("IdPerson", 1).D("Name", "Duplicate").
		Commit(ctx)
	require.Error(t, err)
	assert.True(t, databoy.IsProviderError(err))
	assert.True(t, sql.IsUniqueConstraintError(err))
}

func TestCommitSQLite(t *testing.T) {
	drv := openSQLite(t)
	ctx := context.Background()
	for _, stmt := range []string{
		"CREATE TABLE Person (Id TEXT PRIMARY KEY, Name TEXT, Seq INTEGER DEFAULT 7, RowVersion INTEGER DEFAULT 0)",
		"CREATE TABLE Address (IdAddress INTEGER PRIMARY KEY, PersonSeq INTEGER, Street TEXT)",
		"INSERT INTO Person (Id, Name) VALUES('p1', 'Stale')",
	} {
		require.NoError(t, drv.Exec(ctx, stmt))
	}

	s := databoy.NewSession(databoy.WithProvider(drv))
	err := s.ForTable("Person").
		Row("Id", "p1").D("Name", "Ann").DeleteFirst().ReturnValue("Seq").AtKey("seq").
		ForTable("Address").
		Row("IdAddress", 1).DS("Street='Main; 1'").BindColumn("PersonSeq").To("seq").
		Commit(ctx)
	require.NoError(t, err)

	seq, err := s.Registry().ValueAt(ctx, "seq")
	require.NoError(t, err)
	assert.Equal(t, int64(7), seq)

	street, err := databoy.QueryTable(drv, "Address").Where("PersonSeq", 7).Value(ctx, "street")
	require.NoError(t, err)
	assert.Equal(t, "Main; 1", street)

	name, err := databoy.QueryTable(drv, "Person").Where("Id", "p1").Value(ctx, "Name")
	require.NoError(t, err)
	assert.Equal(t, "Ann", name)

	err = databoy.NewSession(databoy.WithProvider(drv)).
		ForTable("Person").Row("Id", "p1").D("Name", "Bea").ForUpdate().
		Commit(ctx)
	require.NoError(t, err)
	name, err = databoy.QueryTable(drv, "Person").Where("Id", "p1").Value(ctx, "Name")
	require.NoError(t, err)
	assert.Equal(t, "Bea", name)

	require.NoError(t, databoy.NewAdversary(drv, "Person").IdentifiedBy("Id", "p1").IncRowVersion(ctx, "RowVersion"))
	version, err := databoy.QueryTable(drv, "Person").Where("Id", "p1").Value(ctx, "RowVersion")
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}

func TestCommitInTransaction(t *testing.T) {
	drv := openSQLite(t)
	ctx := context.Background()
	require.NoError(t, drv.Exec(ctx, "CREATE TABLE Person (IdPerson INTEGER PRIMARY KEY, Name TEXT)"))

	tx, err := drv.Tx(ctx)
	require.NoError(t, err)
	err = databoy.NewSession(databoy.WithProvider(tx)).
		ForTable("Person").Row("IdPerson", 1).D("Name", "Ann").
		Commit(ctx)
	require.NoError(t, err)
	exists, err := databoy.QueryTable(tx, "Person").Where("IdPerson", 1).Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, tx.Rollback())

	exists, err = databoy.QueryTable(drv, "Person").Where("IdPerson", 1).Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)
}

func openSQLite(t *testing.T) *sql.Driver {
	t.Helper()
	drv, err := sql.Open(dialect.SQLite, ":memory:")
	require.NoError(t, err)
	drv.DB().SetMaxOpenConns(1)
	t.Cleanup(func() { drv.Close() })
	return drv
}
