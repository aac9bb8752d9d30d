package schema

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

type pragmaColumn struct {
	Cid       int
	Name      string
	Type      string
	Notnull   int
	DfltValue *string
	Pk        int
}

// Introspect reads the table list and per-table columns from the SQLite catalog.
func Introspect(ctx context.Context, db *gorm.DB) (Description, error) {
	names, err := tableNames(ctx, db)
	if err != nil {
		return Description{}, fmt.Errorf("list tables: %w", err)
	}

	desc := Description{Tables: make([]Table, 0, len(names))}
	for _, name := range names {
		var cols []pragmaColumn
		if err := db.WithContext(ctx).
			Raw("PRAGMA table_info(" + quoteIdent(name) + ")").
			Scan(&cols).Error; err != nil {
			return Description{}, fmt.Errorf("table info %q: %w", name, err)
		}

		t := Table{Name: name, Columns: make([]Column, 0, len(cols))}
		for _, c := range cols {
			t.Columns = append(t.Columns, Column{Name: c.Name, Type: c.Type})
		}
		desc.Tables = append(desc.Tables, t)
	}
	return desc, nil
}

func quoteIdent(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func tableNames(ctx context.Context, db *gorm.DB) ([]string, error) {
	rows, err := db.WithContext(ctx).
		Raw("SELECT name FROM sqlite_master WHERE type = 'table'").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
