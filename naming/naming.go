// Package naming derives table and id-column names from Go types.
package naming

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-openapi/inflect"
)

// Placeholder is replaced by the type name in patterns.
const Placeholder = "{0}"

// TableConvention maps a type name to a table name.
type TableConvention func(typeName string) string

// TypeName uses the type name as the table name.
func TypeName() TableConvention {
	return func(name string) string { return name }
}

// Pattern substitutes the type name into pattern, e.g. "tbl{0}".
func Pattern(pattern string) (TableConvention, error) {
	if !strings.Contains(pattern, Placeholder) {
		return nil, fmt.Errorf("naming: table pattern %q has no %s placeholder", pattern, Placeholder)
	}
	return func(name string) string {
		return strings.ReplaceAll(pattern, Placeholder, name)
	}, nil
}

// MustPattern is like Pattern but panics on an invalid pattern.
func MustPattern(pattern string) TableConvention {
	c, err := Pattern(pattern)
	if err != nil {
		panic(err)
	}
	return c
}

// Plural pluralizes the type name: Person becomes People.
func Plural() TableConvention {
	return inflect.Pluralize
}

// Snake converts the type name to snake case: OrderLine becomes order_line.
func Snake() TableConvention {
	return inflect.Underscore
}

// SnakePlural combines Snake and Plural: OrderLine becomes order_lines.
func SnakePlural() TableConvention {
	return func(name string) string { return inflect.Underscore(inflect.Pluralize(name)) }
}

// IDConvention is a pattern for the identifying column. A pattern
// without the placeholder is used as a fixed column name.
type IDConvention string

// DefaultID names the id column of Person "IdPerson".
const DefaultID IDConvention = "Id{0}"

// Column returns the id column for a type name.
func (c IDConvention) Column(typeName string) string {
	if c == "" {
		c = DefaultID
	}
	return strings.ReplaceAll(string(c), Placeholder, typeName)
}

// Conventions bundles the table and id naming rules.
type Conventions struct {
	Table TableConvention
	ID    IDConvention
}

// Default returns the type-name table convention with the "Id{0}" id
// convention.
func Default() Conventions {
	return Conventions{Table: TypeName(), ID: DefaultID}
}

// Tabler overrides the table name of an entity.
type Tabler interface {
	TableName() string
}

// Field is a column of an entity.
type Field struct {
	Column string
	Value  any
}

// Description is the relational shape of an entity value.
type Description struct {
	Table    string
	IDColumn string
	ID       any
	Fields   []Field // in struct order, without the id field
}

// Describe reflects a struct (or pointer to struct) into a Description.
//
// Exported fields become columns. The `databoy` tag renames a column,
// skips it with "-", or marks the id field with the "id" option:
//
//	type Person struct {
//	    Key  int    `databoy:"PersonKey,id"`
//	    Name string `databoy:"FirstName"`
//	    Temp string `databoy:"-"`
//	}
//
// Without an id option, the field named like the id convention is the id.
func (c Conventions) Describe(v any) (*Description, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, errors.New("naming: nil entity")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("naming: entity must be a struct, got %T", v)
	}
	rt := rv.Type()
	table := c.table(rt.Name())
	if t, ok := v.(Tabler); ok {
		table = t.TableName()
	}
	d := &Description{Table: table}
	idName := c.ID.Column(rt.Name())
	idIndex := -1
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		name, opts := parseTag(f.Tag.Get("databoy"))
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		isID := opts == "id" || (idIndex < 0 && !hasIDTag(rt) && strings.EqualFold(name, idName))
		if isID {
			if idIndex >= 0 {
				return nil, fmt.Errorf("naming: %s has more than one id field", rt.Name())
			}
			idIndex = i
			d.IDColumn, d.ID = name, rv.Field(i).Interface()
			continue
		}
		d.Fields = append(d.Fields, Field{Column: name, Value: rv.Field(i).Interface()})
	}
	if idIndex < 0 {
		return nil, fmt.Errorf("naming: %s has no id field %q", rt.Name(), idName)
	}
	return d, nil
}

func (c Conventions) table(typeName string) string {
	if c.Table == nil {
		return typeName
	}
	return c.Table(typeName)
}

func parseTag(tag string) (name, opts string) {
	name, opts, _ = strings.Cut(tag, ",")
	return strings.TrimSpace(name), strings.TrimSpace(opts)
}

func hasIDTag(t reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		if _, opts := parseTag(t.Field(i).Tag.Get("databoy")); opts == "id" {
			return true
		}
	}
	return false
}
