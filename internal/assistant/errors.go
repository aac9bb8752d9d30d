package assistant

import (
	"errors"
	"fmt"
)

// Kind names the pipeline stage a failure came from.
type Kind string

const (
	KindInvalidQuestion Kind = "invalid_question"
	KindSchema          Kind = "schema"
	KindCompletion      Kind = "completion"
	KindMissingSQL      Kind = "missing_sql"
	KindExecution       Kind = "execution"
	KindSummary         Kind = "summary"
)

// ErrNoSQL is wrapped by KindMissingSQL errors.
var ErrNoSQL = errors.New("the model response did not contain a ```sql block")

// Error is the failure value every stage of Ask returns.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the Kind of err, or "" when err did not come from Ask.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// Message is the text shown to users in place of a result.
func Message(err error) string {
	var ae *Error
	if !errors.As(err, &ae) {
		return err.Error()
	}
	switch ae.Kind {
	case KindInvalidQuestion:
		return "Please enter a question."
	case KindSchema:
		return "Could not read the database schema: " + ae.Err.Error()
	case KindCompletion:
		return "The language model request failed: " + ae.Err.Error()
	case KindMissingSQL:
		return "The model did not return a SQL query for this question. Try rephrasing it."
	case KindExecution:
		return "The generated SQL could not be executed: " + ae.Err.Error()
	case KindSummary:
		return "The query ran, but summarizing the result failed: " + ae.Err.Error()
	default:
		return ae.Error()
	}
}
