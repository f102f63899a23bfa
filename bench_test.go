package databoy

import (
	"context"
	"testing"
	"time"

	"github.com/syssam/databoy/dialect"
)

func BenchmarkInsertStatement_Small(b *testing.B) {
	ctx := context.Background()
	created := time.Date(2009, 11, 10, 23, 0, 0, 0, time.UTC)
	for _, v := range []dialect.Vendor{dialect.SQLServer, dialect.Oracle, dialect.Postgres} {
		b.Run(string(v), func(b *testing.B) {
			row := NewSession().ForTable("users").
				Row("id", 1).
				D("age", 30).D("first_name", "Ariel").D("last_name", "Mashraki").
				D("nickname", "a8m").D("spouse_id", 2).D("created_at", created)
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := row.WriteStatement(ctx, v); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkUpdateStatement(b *testing.B) {
	ctx := context.Background()
	row := NewSession().ForTable("users").
		Row("id", 1).D("age", 31).DS("status='active';visits=visits + 1").ForUpdate()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := row.WriteStatement(ctx, dialect.SQLServer); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseColumnValues(b *testing.B) {
	const s = "FirstName='Billy';LastName='O''Hara; Jr';Age=30;Created=GETDATE()"
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := ParseColumnValues(s); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCommit(b *testing.B) {
	ctx := context.Background()
	for i := 0; i < b.N; i++ {
		rec := newRecorder()
		rec.returns("SELECT id FROM users WHERE id = 1", "id", int64(1))
		err := NewSession(WithProvider(rec)).
			ForTable("users").Row("id", 1).D("name", "a8m").DeleteFirst().ReturnValue("id").ForImmediateUse().
			ForTable("posts").Row("id", 10).D("title", "hello").BindColumn("user_id").ToLast().
			Commit(ctx)
		if err != nil {
			b.Fatal(err)
		}
	}
}
