package history

import (
	"context"
	"errors"

	"github.com/suPer8Hu/askdb/internal/assistant"
	"github.com/suPer8Hu/askdb/internal/common"
	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Migrate() error {
	return r.db.AutoMigrate(&Record{})
}

func (r *Repo) Create(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		id, err := common.NewULID()
		if err != nil {
			return err
		}
		rec.ID = id
	}
	if rec.Status == "" {
		rec.Status = StatusQueued
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *Repo) Get(ctx context.Context, id string) (*Record, error) {
	var rec Record
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns records newest first. beforeID pages backwards through ULIDs.
func (r *Repo) List(ctx context.Context, limit int, beforeID string) ([]Record, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	q := r.db.WithContext(ctx).Order("id DESC").Limit(limit)
	if beforeID != "" {
		q = q.Where("id < ?", beforeID)
	}

	var recs []Record
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// MarkRunning only moves queued records, so a redelivered job does not
// restart one that already finished.
func (r *Repo) MarkRunning(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&Record{}).
		Where("id = ? AND status = ?", id, StatusQueued).
		Update("status", StatusRunning)
	return res.RowsAffected == 1, res.Error
}

// MarkFinished stores the outcome of assistant.Service.Ask on record id.
func (r *Repo) MarkFinished(ctx context.Context, id string, ans *assistant.Answer, askErr error) error {
	return r.db.WithContext(ctx).Model(&Record{}).
		Where("id = ?", id).
		Updates(outcome(ans, askErr)).Error
}

// SaveCompleted records a question that was answered inline.
func (r *Repo) SaveCompleted(ctx context.Context, question string, ans *assistant.Answer, askErr error) (*Record, error) {
	rec := &Record{Question: question}
	applyOutcome(rec, ans, askErr)
	if err := r.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *Repo) GetByIdempotencyKey(ctx context.Context, key string) (*Record, error) {
	var rec Record
	if err := r.db.WithContext(ctx).
		Where("idempotency_key = ?", key).
		First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateOrGetExisting creates rec, or returns the record already holding
// rec.IdempotencyKey. created reports which happened.
func (r *Repo) CreateOrGetExisting(ctx context.Context, rec *Record) (*Record, bool, error) {
	if rec.IdempotencyKey == nil || *rec.IdempotencyKey == "" {
		rec.IdempotencyKey = nil
		if err := r.Create(ctx, rec); err != nil {
			return nil, false, err
		}
		return rec, true, nil
	}

	err := r.Create(ctx, rec)
	if err == nil {
		return rec, true, nil
	}

	existing, getErr := r.GetByIdempotencyKey(ctx, *rec.IdempotencyKey)
	if getErr == nil {
		return existing, false, nil
	}
	if errors.Is(getErr, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	return nil, false, getErr
}

func outcome(ans *assistant.Answer, askErr error) map[string]any {
	var rec Record
	applyOutcome(&rec, ans, askErr)
	return map[string]any{
		"status":     rec.Status,
		"sql":        rec.SQL,
		"summary":    rec.Summary,
		"row_count":  rec.RowCount,
		"error_kind": rec.ErrorKind,
		"error":      rec.Error,
	}
}

func applyOutcome(rec *Record, ans *assistant.Answer, askErr error) {
	if ans != nil {
		rec.SQL = ans.SQL
		rec.Summary = ans.Summary
		rec.RowCount = len(ans.Result.Rows)
	}
	if askErr != nil {
		msg := askErr.Error()
		rec.Status = StatusFailed
		rec.ErrorKind = string(assistant.KindOf(askErr))
		rec.Error = &msg
		return
	}
	rec.Status = StatusSucceeded
	rec.ErrorKind = ""
	rec.Error = nil
}
