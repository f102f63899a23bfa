// Package databoy accumulates test data for relational databases and
// writes it in one coordinated commit.
//
// A Session holds batches, a Batch holds the rows of one table, and a Row
// holds column values:
//
//	err := databoy.NewSession(databoy.WithProvider(drv)).
//	    ForTable("Person").
//	    Row("IdPerson", 1).D("FirstName", "Petter").D("LastName", "Hansen").DeleteFirst().
//	    Row("IdPerson", 2).DS("FirstName='Billy';LastName='Hansen'").ReturnValue("IdPerson").ForImmediateUse().
//	    ForTable("Address").
//	    Row("IdAddress", 100).D("Street", "Main").BindColumn("IdPerson").ToLast().
//	    Commit(ctx)
//
// # Commit
//
// Commit first deletes every row marked DeleteFirst, walking batches and
// rows in reverse declaration order so dependents go before the rows they
// reference. It then writes every row in declaration order: an INSERT by
// default, an UPDATE after ForUpdate or a DELETE after ForDelete. The
// first failing statement ends the commit. Nothing is rolled back; wrap the
// provider in a transaction (see dialect/sql) when that is needed.
//
// # Return Values
//
// ReturnValue reads a column back after its row is written. The value is
// either the registry's last value (ForImmediateUse) or stored under a key
// (AtKey). BindColumn uses such a value as a column of a later row:
//
//	s.ForTable("Person").Row("Id", personID).ReturnValue("IdPerson").AtKey("person")
//	s.ForTable("Address").Row("Id", addressID).BindColumn("IdPerson").To("person")
//
// Keys live in the session's Registry. WithRegistry shares one Registry
// between sessions, and WithValueStore backs it with an external store
// such as redisstore.
//
// # Literals
//
// Values are rendered as SQL literals by dialect.FormatValue. Strings are
// quoted without escaping; Raw marks a fragment to emit verbatim.
//
// # Errors
//
// Builder methods record errors on the session instead of returning them.
// Session.Err reports them and Commit returns them before executing
// anything. Provider failures are returned as *ProviderError.
package databoy
