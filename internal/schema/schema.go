// Package schema discovers the tables and columns of the target database and
// keeps a persisted copy so later requests skip introspection.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type Table struct {
	Name    string
	Columns []Column
}

// Description is the catalog of the target database in sqlite_master order.
// Names are kept byte-for-byte as the database reports them.
type Description struct {
	Tables []Table
}

// Table returns the table with the exact given name.
func (d Description) Table(name string) (Table, bool) {
	for _, t := range d.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// MarshalJSON encodes the description as {"table": [{"name","type"}...]}
// keeping table order.
func (d Description) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, t := range d.Tables {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(t.Name)
		if err != nil {
			return nil, err
		}
		cols := t.Columns
		if cols == nil {
			cols = []Column{}
		}
		v, err := json.Marshal(cols)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (d *Description) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("schema: expected object, got %v", tok)
	}

	tables := make([]Table, 0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("schema: expected table name, got %v", tok)
		}
		var cols []Column
		if err := dec.Decode(&cols); err != nil {
			return fmt.Errorf("schema: table %q: %w", name, err)
		}
		tables = append(tables, Table{Name: name, Columns: cols})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	d.Tables = tables
	return nil
}
