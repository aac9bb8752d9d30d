package history

import "time"

type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Record is one asked question, answered inline or through the job queue.
type Record struct {
	ID string `gorm:"primaryKey;size:26" json:"id"` // ULID

	Question string `gorm:"type:text;not null" json:"question"`

	IdempotencyKey *string `gorm:"type:varchar(128);uniqueIndex:uniq_history_idempo" json:"-"`

	Status Status `gorm:"type:varchar(16);index;not null" json:"status"`

	// Filled as far as the pipeline got
	SQL      string `gorm:"type:text" json:"sql"`
	Summary  string `gorm:"type:text" json:"summary"`
	RowCount int    `json:"row_count"`

	// Filled when failed
	ErrorKind string  `gorm:"type:varchar(32)" json:"error_kind,omitempty"`
	Error     *string `gorm:"type:text" json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Record) TableName() string { return "ask_history" }
