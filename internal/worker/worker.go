// Package worker answers queued questions off RabbitMQ.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suPer8Hu/askdb/internal/assistant"
	"github.com/suPer8Hu/askdb/internal/history"
	"github.com/suPer8Hu/askdb/internal/metrics"
	"github.com/suPer8Hu/askdb/internal/store/rabbitmq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Asker interface {
	Ask(ctx context.Context, question string) (*assistant.Answer, error)
}

// Jobs is the slice of history.Repo the worker needs.
type Jobs interface {
	Get(ctx context.Context, id string) (*history.Record, error)
	MarkRunning(ctx context.Context, id string) (bool, error)
	MarkFinished(ctx context.Context, id string, ans *assistant.Answer, askErr error) error
}

// ErrAlreadyHandled means the job left the queued state before this delivery.
var ErrAlreadyHandled = errors.New("job already handled")

type Handler struct {
	asker Asker
	jobs  Jobs
	log   *zap.Logger
}

func NewHandler(asker Asker, jobs Jobs, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{asker: asker, jobs: jobs, log: log}
}

// finishTimeout bounds the final status write, which runs even after the
// job's context is cancelled.
const finishTimeout = 5 * time.Second

// HandleJob runs one queued question. Pipeline failures are stored on the
// record and are not returned: the job itself completed. Only bookkeeping
// errors come back, so the delivery can be dead-lettered.
//
// Once a record is marked running it always ends succeeded or failed, even
// when ctx is cancelled mid-job.
func (h *Handler) HandleJob(ctx context.Context, jobID string) error {
	start := time.Now()

	moved, err := h.jobs.MarkRunning(ctx, jobID)
	if err != nil {
		return err
	}
	if !moved {
		metrics.JobsTotal.WithLabelValues("skipped").Inc()
		return ErrAlreadyHandled
	}

	rec, err := h.jobs.Get(ctx, jobID)
	if err != nil {
		if ferr := h.finish(ctx, jobID, nil, err); ferr != nil {
			return errors.Join(err, ferr)
		}
		metrics.JobsTotal.WithLabelValues(string(history.StatusFailed)).Inc()
		return err
	}

	ans, askErr := h.asker.Ask(ctx, rec.Question)
	if err := h.finish(ctx, jobID, ans, askErr); err != nil {
		return err
	}

	status := string(history.StatusSucceeded)
	if askErr != nil {
		status = string(history.StatusFailed)
	}
	metrics.JobsTotal.WithLabelValues(status).Inc()

	if cost := time.Since(start); cost > 2*time.Second {
		h.log.Info("job_timing", zap.String("job", jobID), zap.String("status", status), zap.Duration("total", cost))
	}
	return nil
}

func (h *Handler) finish(ctx context.Context, jobID string, ans *assistant.Answer, askErr error) error {
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finishTimeout)
	defer cancel()
	if err := h.jobs.MarkFinished(fctx, jobID, ans, askErr); err != nil {
		h.log.Error("mark finished failed", zap.String("job", jobID), zap.Error(err))
		return err
	}
	return nil
}

// Pool consumes deliveries with a fixed number of goroutines.
type Pool struct {
	handler     *Handler
	concurrency int
	log         *zap.Logger
}

func NewPool(handler *Handler, concurrency int, log *zap.Logger) *Pool {
	if concurrency <= 0 {
		concurrency = 2
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pool{handler: handler, concurrency: concurrency, log: log}
}

// Run dispatches deliveries until ctx is done or the channel closes, then
// waits for in-flight jobs.
func (p *Pool) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	jobs := make(chan amqp.Delivery, p.concurrency*2)

	var wg sync.WaitGroup
	wg.Add(p.concurrency)
	for i := 0; i < p.concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range jobs {
				p.handle(ctx, workerID, d)
			}
		}(i)
	}

	defer func() {
		close(jobs)
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			p.log.Info("worker shutting down")
			return
		case d, ok := <-deliveries:
			if !ok {
				p.log.Warn("delivery channel closed")
				return
			}
			jobs <- d
		}
	}
}

func (p *Pool) handle(ctx context.Context, workerID int, d amqp.Delivery) {
	var m rabbitmq.JobMessage
	if err := json.Unmarshal(d.Body, &m); err != nil || m.JobID == "" {
		p.log.Warn("bad message", zap.Int("worker", workerID), zap.Error(err))
		_ = d.Nack(false, false)
		return
	}

	err := p.handler.HandleJob(ctx, m.JobID)
	switch {
	case err == nil, errors.Is(err, ErrAlreadyHandled):
		if err := d.Ack(false); err != nil {
			p.log.Warn("ack failed", zap.Int("worker", workerID), zap.String("job", m.JobID), zap.Error(err))
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		p.log.Warn("job not found", zap.Int("worker", workerID), zap.String("job", m.JobID))
		_ = d.Nack(false, false)
	default:
		p.log.Error("job failed", zap.Int("worker", workerID), zap.String("job", m.JobID), zap.Error(err))
		_ = d.Nack(false, false)
	}
}
