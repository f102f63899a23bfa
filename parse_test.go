package databoy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColumnValues(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []ColumnValue
	}{
		{
			name:  "single",
			input: "FirstName='Billy'",
			want:  []ColumnValue{{Name: "FIRSTNAME", Value: "'Billy'", Raw: true}},
		},
		{
			name:  "trimmed and upper-cased",
			input: "  firstName = 'Billy' ;  lastName=  'Hansen'  ",
			want: []ColumnValue{
				{Name: "FIRSTNAME", Value: "'Billy'", Raw: true},
				{Name: "LASTNAME", Value: "'Hansen'", Raw: true},
			},
		},
		{
			name:  "trailing semicolon",
			input: "Age=12;",
			want:  []ColumnValue{{Name: "AGE", Value: "12", Raw: true}},
		},
		{
			name:  "semicolon inside quotes",
			input: "Note='a;b';Age=3",
			want: []ColumnValue{
				{Name: "NOTE", Value: "'a;b'", Raw: true},
				{Name: "AGE", Value: "3", Raw: true},
			},
		},
		{
			name:  "doubled quote toggles twice",
			input: "Name='O''Hara; Jr';X=1",
			want: []ColumnValue{
				{Name: "NAME", Value: "'O''Hara; Jr'", Raw: true},
				{Name: "X", Value: "1", Raw: true},
			},
		},
		{
			name:  "odd quote swallows separator",
			input: "Name=it's;X=1",
			want:  []ColumnValue{{Name: "NAME", Value: "it's;X=1", Raw: true}},
		},
		{
			name:  "value keeps equals sign",
			input: "Expr=$$A=B",
			want:  []ColumnValue{{Name: "EXPR", Value: "$$A=B", Raw: true}},
		},
		{
			name:  "empty",
			input: " ; ",
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColumnValues(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseColumnValuesErrors(t *testing.T) {
	_, err := ParseColumnValues("FirstName")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing '='")
	assert.True(t, IsMalformedData(err))
	assert.ErrorIs(t, err, ErrMalformedData)

	err = NewSession().ForTable("Person").Row("IdPerson", 1).DS("Age=3;Broken").Commit(context.Background())
	require.Error(t, err)
	assert.True(t, IsMalformedData(err))

	_, err = ParseColumnValues(" =1")
	require.Error(t, err)
	assert.True(t, IsNullArgument(err))
}
