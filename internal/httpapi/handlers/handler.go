package handlers

import (
	"context"

	"github.com/suPer8Hu/askdb/internal/assistant"
	"github.com/suPer8Hu/askdb/internal/history"
	"github.com/suPer8Hu/askdb/internal/schema"
	"go.uber.org/zap"
)

type Asker interface {
	Ask(ctx context.Context, question string) (*assistant.Answer, error)
}

type Schemas interface {
	Load(ctx context.Context) (schema.Description, error)
	Refresh(ctx context.Context) (schema.Description, error)
}

// History is the slice of history.Repo the handlers use.
type History interface {
	SaveCompleted(ctx context.Context, question string, ans *assistant.Answer, askErr error) (*history.Record, error)
	Create(ctx context.Context, rec *history.Record) error
	CreateOrGetExisting(ctx context.Context, rec *history.Record) (*history.Record, bool, error)
	Get(ctx context.Context, id string) (*history.Record, error)
	List(ctx context.Context, limit int, beforeID string) ([]history.Record, error)
}

type Publisher interface {
	PublishJob(ctx context.Context, jobID string) error
}

type Handler struct {
	Asker   Asker
	Schemas Schemas
	History History
	// Jobs is nil when no broker is configured; /api/jobs then answers 503.
	Jobs Publisher
	Log  *zap.Logger
}

func NewHandler(asker Asker, schemas Schemas, hist History, jobs Publisher, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Asker: asker, Schemas: schemas, History: hist, Jobs: jobs, Log: log}
}

// record stores an inline ask. A failed write is logged and otherwise ignored.
func (h *Handler) record(ctx context.Context, question string, ans *assistant.Answer, askErr error) string {
	if h.History == nil || assistant.KindOf(askErr) == assistant.KindInvalidQuestion {
		return ""
	}
	rec, err := h.History.SaveCompleted(ctx, question, ans, askErr)
	if err != nil {
		h.Log.Warn("save history failed", zap.Error(err))
		return ""
	}
	return rec.ID
}
