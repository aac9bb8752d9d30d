package assistant

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/suPer8Hu/askdb/internal/ai"
	"github.com/suPer8Hu/askdb/internal/extract"
	"github.com/suPer8Hu/askdb/internal/metrics"
	"github.com/suPer8Hu/askdb/internal/prompt"
	"github.com/suPer8Hu/askdb/internal/query"
	"github.com/suPer8Hu/askdb/internal/schema"
	"go.uber.org/zap"
)

type SchemaSource interface {
	Load(ctx context.Context) (schema.Description, error)
}

type Runner interface {
	Execute(ctx context.Context, sql string) (query.Result, error)
}

// Answer is everything produced for one question. On a KindSummary failure
// SQL and Result are still filled in.
type Answer struct {
	Question string `json:"question"`
	SQL      string `json:"sql"`
	// Explanation is the sentence the model wrote under its SQL block. It is
	// kept for reference; Summary is what gets shown.
	Explanation string       `json:"explanation"`
	Result      query.Result `json:"-"`
	Summary     string       `json:"summary"`
}

type Service struct {
	schemas SchemaSource
	llm     ai.Completer
	runner  Runner
	log     *zap.Logger
}

func NewService(schemas SchemaSource, llm ai.Completer, runner Runner, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{schemas: schemas, llm: llm, runner: runner, log: log}
}

// Ask answers question against the target database using two model calls:
// one to write SQL, one to summarize the rows that SQL returned.
func (s *Service) Ask(ctx context.Context, question string) (ans *Answer, err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = string(KindOf(err))
		}
		metrics.AsksTotal.WithLabelValues(outcome).Inc()
		if err != nil {
			s.log.Warn("ask failed",
				zap.String("kind", outcome),
				zap.Duration("cost", time.Since(start)),
				zap.Error(err),
			)
		}
	}()

	// 1) validate
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &Error{Kind: KindInvalidQuestion, Err: errors.New("question is empty")}
	}
	ans = &Answer{Question: question}

	// 2) schema (cached)
	t0 := time.Now()
	desc, err := s.schemas.Load(ctx)
	observe("schema", t0)
	if err != nil {
		return nil, &Error{Kind: KindSchema, Err: err}
	}

	// 3) ask for SQL
	t1 := time.Now()
	completion, err := s.llm.Generate(ctx, prompt.SQLPrompt(question, desc))
	observe("generate_sql", t1)
	if err != nil {
		return nil, &Error{Kind: KindCompletion, Err: err}
	}

	// 4) pull the SQL out; no block means stop here
	sqlText, found, rest := extract.SQL(completion)
	if !found || sqlText == "" {
		s.log.Debug("completion without sql block", zap.String("completion", completion))
		return nil, &Error{Kind: KindMissingSQL, Err: ErrNoSQL}
	}
	ans.SQL = sqlText
	ans.Explanation = rest

	// 5) run it
	t2 := time.Now()
	res, err := s.runner.Execute(ctx, sqlText)
	observe("execute", t2)
	if err != nil {
		return nil, &Error{Kind: KindExecution, Err: err}
	}
	ans.Result = res

	// 6) summarize the actual rows
	t3 := time.Now()
	summary, err := s.llm.Generate(ctx, prompt.SummaryPrompt(question, res))
	observe("summarize", t3)
	if err != nil {
		return ans, &Error{Kind: KindSummary, Err: err}
	}
	ans.Summary = strings.TrimSpace(summary)

	s.log.Info("ask ok",
		zap.String("sql", sqlText),
		zap.Int("rows", len(res.Rows)),
		zap.Duration("cost", time.Since(start)),
	)
	return ans, nil
}

func observe(stage string, since time.Time) {
	metrics.StageDurationSeconds.WithLabelValues(stage).Observe(time.Since(since).Seconds())
}
