package query

import (
	"context"
	"errors"
	"testing"

	"github.com/suPer8Hu/askdb/internal/db/dbtest"
)

func TestExecute_Sum(t *testing.T) {
	gdb, _ := dbtest.NewTarget(t, dbtest.Orders...)

	res, err := NewExecutor(gdb).Execute(context.Background(), "SELECT SUM(amount) FROM orders")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(res.Columns) != 1 || len(res.Rows) != 1 || len(res.Rows[0]) != 1 {
		t.Fatalf("expected 1x1 result, got cols=%v rows=%v", res.Columns, res.Rows)
	}
	got, ok := res.Rows[0][0].(float64)
	if !ok || got != 35.0 {
		t.Fatalf("unexpected sum: %#v", res.Rows[0][0])
	}
}

func TestExecute_RowsAndRecord(t *testing.T) {
	gdb, _ := dbtest.NewTarget(t,
		`CREATE TABLE people (name TEXT, city TEXT)`,
		`INSERT INTO people VALUES ('Ana', 'Lisbon'), ('Bo', 'Oslo')`,
	)

	res, err := NewExecutor(gdb).Execute(context.Background(),
		"SELECT name, city FROM people WHERE LOWER(city) LIKE '%o%' ORDER BY name")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(res.Rows))
	}
	rec := res.Record(1)
	if rec["name"] != "Bo" || rec["city"] != "Oslo" {
		t.Fatalf("unexpected record: %#v", rec)
	}
}

func TestExecute_EmptyResultKeepsColumns(t *testing.T) {
	gdb, _ := dbtest.NewTarget(t, dbtest.Orders...)

	res, err := NewExecutor(gdb).Execute(context.Background(), "SELECT id, amount FROM orders WHERE amount > 1000")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(res.Rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(res.Rows))
	}
	if len(res.Columns) != 2 {
		t.Fatalf("expected columns to survive an empty result, got %v", res.Columns)
	}
}

func TestExecute_InvalidSQL(t *testing.T) {
	gdb, _ := dbtest.NewTarget(t, dbtest.Orders...)

	_, err := NewExecutor(gdb).Execute(context.Background(), "SELEKT * FROM orders")
	var qerr *Error
	if !errors.As(err, &qerr) {
		t.Fatalf("expected *query.Error, got %T %v", err, err)
	}
	if qerr.SQL != "SELEKT * FROM orders" {
		t.Fatalf("unexpected sql on error: %q", qerr.SQL)
	}
}

func TestExecute_MissingTable(t *testing.T) {
	gdb, _ := dbtest.NewTarget(t, dbtest.Orders...)

	if _, err := NewExecutor(gdb).Execute(context.Background(), "SELECT * FROM invoices"); err == nil {
		t.Fatalf("expected error for missing table")
	}
}
