package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Person struct {
	IdPerson  int
	FirstName string
	LastName  string
	secret    string
}

type OrderLine struct {
	Key      int    `databoy:"LineKey,id"`
	Product  string `databoy:"ProductName"`
	Quantity int
	Scratch  string `databoy:"-"`
}

type custom struct {
	Id   int
	Name string
}

func (custom) TableName() string { return "CustomTable" }

func TestTableConventions(t *testing.T) {
	assert.Equal(t, "Person", TypeName()("Person"))
	assert.Equal(t, "People", Plural()("Person"))
	assert.Equal(t, "order_line", Snake()("OrderLine"))
	assert.Equal(t, "order_lines", SnakePlural()("OrderLine"))

	c, err := Pattern("tbl{0}")
	require.NoError(t, err)
	assert.Equal(t, "tblPerson", c("Person"))

	_, err = Pattern("tbl")
	require.Error(t, err)
	assert.Panics(t, func() { MustPattern("nope") })
}

func TestIDConvention(t *testing.T) {
	assert.Equal(t, "IdPerson", DefaultID.Column("Person"))
	assert.Equal(t, "IdPerson", IDConvention("").Column("Person"))
	assert.Equal(t, "Person_ID", IDConvention("{0}_ID").Column("Person"))
	assert.Equal(t, "Id", IDConvention("Id").Column("Person"), "fixed name without placeholder")
}

func TestDescribe(t *testing.T) {
	t.Run("ByConvention", func(t *testing.T) {
		d, err := Default().Describe(&Person{IdPerson: 1, FirstName: "Petter", LastName: "Hansen", secret: "x"})
		require.NoError(t, err)
		assert.Equal(t, "Person", d.Table)
		assert.Equal(t, "IdPerson", d.IDColumn)
		assert.Equal(t, 1, d.ID)
		assert.Equal(t, []Field{{Column: "FirstName", Value: "Petter"}, {Column: "LastName", Value: "Hansen"}}, d.Fields)
	})

	t.Run("Tags", func(t *testing.T) {
		c := Conventions{Table: SnakePlural()}
		d, err := c.Describe(OrderLine{Key: 9, Product: "Pen", Quantity: 2, Scratch: "skip"})
		require.NoError(t, err)
		assert.Equal(t, "order_lines", d.Table)
		assert.Equal(t, "LineKey", d.IDColumn)
		assert.Equal(t, 9, d.ID)
		assert.Equal(t, []Field{{Column: "ProductName", Value: "Pen"}, {Column: "Quantity", Value: 2}}, d.Fields)
	})

	t.Run("Tabler", func(t *testing.T) {
		d, err := Conventions{ID: "Id"}.Describe(custom{Id: 3, Name: "n"})
		require.NoError(t, err)
		assert.Equal(t, "CustomTable", d.Table)
		assert.Equal(t, "Id", d.IDColumn)
	})

	t.Run("Errors", func(t *testing.T) {
		_, err := Default().Describe(42)
		require.Error(t, err)
		_, err = Default().Describe((*Person)(nil))
		require.Error(t, err)
		_, err = Default().Describe(custom{})
		require.Error(t, err, "custom has no IdCustom field")
	})
}
