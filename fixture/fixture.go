// Package fixture reads test data from YAML seed files and replays it on a
// databoy session.
//
//	tables:
//	  - table: Person
//	    rows:
//	      - id: {column: IdPerson, value: 1}
//	        delete_first: true
//	        data: {FirstName: Petter, LastName: Hansen}
//	        return: [{column: IdPerson, key: person}]
//	  - table: Address
//	    rows:
//	      - id: {column: IdAddress, value: 100}
//	        bind: [{column: IdPerson, key: person}]
//
// Column order inside data and values mappings is kept as written.
package fixture

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/syssam/databoy"
)

// Fixture is a decoded seed file.
type Fixture struct {
	Tables []Table `yaml:"tables"`
}

// Table holds the rows written to one table.
type Table struct {
	Table  string    `yaml:"table"`
	Rows   []Row     `yaml:"rows"`
	Values []Columns `yaml:"values"`
}

// Row describes one identified row.
type Row struct {
	ID          *ID     `yaml:"id"`
	Mode        string  `yaml:"mode"`
	DeleteFirst bool    `yaml:"delete_first"`
	Data        Columns `yaml:"data"`
	Inline      string  `yaml:"inline"`
	Return      []Ref   `yaml:"return"`
	Bind        []Ref   `yaml:"bind"`
}

// ID is the identifying column of a row.
type ID struct {
	Column string `yaml:"column"`
	Value  any    `yaml:"value"`
}

// Ref names a column and a return value key. An empty key means the last
// value.
type Ref struct {
	Column string `yaml:"column"`
	Key    string `yaml:"key"`
}

// Columns is an ordered column/value mapping.
type Columns []databoy.ColumnValue

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Columns) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("fixture: line %d: columns must be a mapping", node.Line)
	}
	cols := make(Columns, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		var val any
		if err := v.Decode(&val); err != nil {
			return fmt.Errorf("fixture: line %d: column %q: %w", v.Line, k.Value, err)
		}
		cols = append(cols, databoy.ColumnValue{Name: k.Value, Value: val})
	}
	*c = cols
	return nil
}

// Parse decodes a seed file.
func Parse(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("fixture: parse: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Load reads the seed file at path.
func Load(path string) (*Fixture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fixture: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

func (f *Fixture) validate() error {
	for i, t := range f.Tables {
		if t.Table == "" {
			return fmt.Errorf("fixture: tables[%d]: table is required", i)
		}
		for j, r := range t.Rows {
			if r.ID == nil || r.ID.Column == "" {
				return fmt.Errorf("fixture: %s.rows[%d]: id column is required", t.Table, j)
			}
			switch r.Mode {
			case "", "insert", "update", "delete":
			default:
				return fmt.Errorf("fixture: %s.rows[%d]: unknown mode %q", t.Table, j, r.Mode)
			}
		}
	}
	return nil
}

// Apply adds the fixture's tables to s in file order. It returns the errors
// recorded on s while building.
func (f *Fixture) Apply(s *databoy.Session) error {
	if err := f.validate(); err != nil {
		return err
	}
	for _, t := range f.Tables {
		b := s.ForTable(t.Table)
		for _, r := range t.Rows {
			r.apply(b)
		}
		for _, cols := range t.Values {
			b.Values(cols...)
		}
	}
	return s.Err()
}

func (r Row) apply(b *databoy.Batch) {
	row := b.Row(r.ID.Column, r.ID.Value)
	for _, c := range r.Data {
		row.Data(c.Name, c.Value)
	}
	if r.Inline != "" {
		row.DS(r.Inline)
	}
	for _, ref := range r.Bind {
		if ref.Key == "" {
			row.BindColumn(ref.Column).ToLast()
		} else {
			row.BindColumn(ref.Column).To(ref.Key)
		}
	}
	switch r.Mode {
	case "update":
		row.ForUpdate()
	case "delete":
		row.ForDelete()
	}
	if r.DeleteFirst {
		row.DeleteFirst()
	}
	for _, ref := range r.Return {
		if ref.Key == "" {
			row.ReturnValue(ref.Column).ForImmediateUse()
		} else {
			row.ReturnValue(ref.Column).AtKey(ref.Key)
		}
	}
}
