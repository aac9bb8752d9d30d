package query

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Row holds one result row, positionally aligned with Result.Columns.
type Row []any

type Result struct {
	Columns  []string
	Rows     []Row
	Duration time.Duration
}

// Record returns row i keyed by column name. Later duplicate column names win.
func (r Result) Record(i int) map[string]any {
	out := make(map[string]any, len(r.Columns))
	for j, c := range r.Columns {
		out[c] = r.Rows[i][j]
	}
	return out
}

// Error marks a failure while running generated SQL, as opposed to a failure
// reaching the database or the model.
type Error struct {
	SQL string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("execute sql: %v", e.Err) }

func (e *Error) Unwrap() error { return e.Err }

type Executor struct {
	db *gorm.DB
}

func NewExecutor(db *gorm.DB) *Executor {
	return &Executor{db: db}
}

// Execute runs sqlText as a read query and materializes every row.
func (e *Executor) Execute(ctx context.Context, sqlText string) (Result, error) {
	start := time.Now()

	rows, err := e.db.WithContext(ctx).Raw(sqlText).Rows()
	if err != nil {
		return Result{}, &Error{SQL: sqlText, Err: err}
	}
	defer rows.Close()

	res, err := scanAll(rows)
	if err != nil {
		return Result{}, &Error{SQL: sqlText, Err: err}
	}
	res.Duration = time.Since(start)
	return res, nil
}

func scanAll(rows *sql.Rows) (Result, error) {
	cols, err := rows.Columns()
	if err != nil {
		return Result{}, err
	}
	res := Result{Columns: cols, Rows: make([]Row, 0)}

	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return Result{}, err
		}
		for i, v := range vals {
			// TEXT and BLOB come back as []byte from some drivers
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		res.Rows = append(res.Rows, Row(vals))
	}
	if err := rows.Err(); err != nil {
		return Result{}, err
	}
	return res, nil
}
