package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/askdb/internal/assistant"
	"github.com/suPer8Hu/askdb/internal/common"
	"github.com/suPer8Hu/askdb/internal/history"
	"github.com/suPer8Hu/askdb/internal/query"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}

type askReq struct {
	Question string `json:"question"`
}

type answerResp struct {
	ID          string      `json:"id,omitempty"`
	Question    string      `json:"question"`
	SQL         string      `json:"sql"`
	Explanation string      `json:"explanation"`
	Columns     []string    `json:"columns"`
	Rows        []query.Row `json:"rows"`
	Summary     string      `json:"summary"`
}

func newAnswerResp(id string, ans *assistant.Answer) answerResp {
	rows := ans.Result.Rows
	if rows == nil {
		rows = []query.Row{}
	}
	cols := ans.Result.Columns
	if cols == nil {
		cols = []string{}
	}
	return answerResp{
		ID:          id,
		Question:    ans.Question,
		SQL:         ans.SQL,
		Explanation: ans.Explanation,
		Columns:     cols,
		Rows:        rows,
		Summary:     ans.Summary,
	}
}

// askStatus maps a pipeline failure to an HTTP status and envelope code.
func askStatus(kind assistant.Kind) (int, int) {
	switch kind {
	case assistant.KindInvalidQuestion:
		return http.StatusBadRequest, 10002
	case assistant.KindSchema:
		return http.StatusInternalServerError, 50010
	case assistant.KindCompletion:
		return http.StatusBadGateway, 50020
	case assistant.KindMissingSQL:
		return http.StatusUnprocessableEntity, 42201
	case assistant.KindExecution:
		return http.StatusUnprocessableEntity, 42202
	case assistant.KindSummary:
		return http.StatusBadGateway, 50021
	default:
		return http.StatusInternalServerError, 50001
	}
}

func (h *Handler) Query(c *gin.Context) {
	var req askReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	ctx := c.Request.Context()
	ans, err := h.Asker.Ask(ctx, req.Question)
	id := h.record(ctx, req.Question, ans, err)

	if err != nil {
		status, code := askStatus(assistant.KindOf(err))
		if ans != nil {
			common.FailWith(c, status, code, assistant.Message(err), newAnswerResp(id, ans))
			return
		}
		common.Fail(c, status, code, assistant.Message(err))
		return
	}
	common.OK(c, newAnswerResp(id, ans))
}

func (h *Handler) GetSchema(c *gin.Context) {
	desc, err := h.Schemas.Load(c.Request.Context())
	if err != nil {
		h.Log.Error("load schema failed", zap.Error(err))
		common.Fail(c, http.StatusInternalServerError, 50010, "failed to load schema")
		return
	}
	common.OK(c, gin.H{"schema": desc})
}

func (h *Handler) RefreshSchema(c *gin.Context) {
	desc, err := h.Schemas.Refresh(c.Request.Context())
	if err != nil {
		h.Log.Error("refresh schema failed", zap.Error(err))
		common.Fail(c, http.StatusInternalServerError, 50011, "failed to refresh schema")
		return
	}
	h.Log.Info("schema refreshed", zap.Int("tables", len(desc.Tables)))
	common.OK(c, gin.H{"schema": desc})
}

func (h *Handler) ListHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	recs, err := h.History.List(c.Request.Context(), limit, c.Query("before_id"))
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to list history")
		return
	}

	nextBeforeID := ""
	if len(recs) > 0 {
		nextBeforeID = recs[len(recs)-1].ID
	}
	common.OK(c, gin.H{
		"records":        recs,
		"next_before_id": nextBeforeID,
	})
}

func (h *Handler) CreateJob(c *gin.Context) {
	if h.Jobs == nil {
		common.Fail(c, http.StatusServiceUnavailable, 50300, "async jobs are not enabled")
		return
	}

	var req askReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "question required")
		return
	}

	idempoKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	if len(idempoKey) > 128 {
		common.Fail(c, http.StatusBadRequest, 10003, "idempotency key too long")
		return
	}
	rec := &history.Record{Question: question, Status: history.StatusQueued}
	if idempoKey != "" {
		rec.IdempotencyKey = &idempoKey
	}

	ctx := c.Request.Context()
	rec, created, err := h.History.CreateOrGetExisting(ctx, rec)
	if err != nil {
		h.Log.Error("create job failed", zap.String("key", idempoKey), zap.Error(err))
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	// Enqueue only when a new job was created
	if created {
		if err := h.Jobs.PublishJob(ctx, rec.ID); err != nil {
			h.Log.Error("publish job failed", zap.String("job", rec.ID), zap.Error(err))
			common.Fail(c, http.StatusInternalServerError, 50002, "enqueue failed")
			return
		}
	}
	common.OK(c, gin.H{"job_id": rec.ID, "created": created})
}

func (h *Handler) GetJob(c *gin.Context) {
	jobID := c.Param("id")
	rec, err := h.History.Get(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40402, "job not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	common.OK(c, gin.H{"job": rec})
}
