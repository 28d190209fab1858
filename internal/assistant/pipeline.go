package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bizlens/bizlens/internal/nl2sql"
	"github.com/bizlens/bizlens/internal/observability"
	"github.com/bizlens/bizlens/internal/prompt"
	"github.com/bizlens/bizlens/internal/query"
	"github.com/bizlens/bizlens/internal/sqlguard"
)

// Stage names the pipeline step an outcome failed in.
type Stage string

const (
	StageGeneration Stage = "generation"
	StageExtraction Stage = "extraction"
	StageValidation Stage = "validation"
	StageExecution  Stage = "execution"
	// StageCanceled marks a caller that stopped waiting before its
	// answer was ready.
	StageCanceled Stage = "canceled"
)

const (
	successMessage     = "Query executed successfully"
	generateFailPrefix = "Failed to generate SQL query: "
	executeFailPrefix  = "Failed to execute query: "
)

// Outcome is the result of answering one question. Failures carry the
// attempted SQL when the pipeline got that far. Err holds the typed stage
// error and is never serialized.
type Outcome struct {
	Success  bool
	Message  string
	SQL      string
	Rows     []query.Row
	Metadata *Metadata
	Stage    Stage
	Err      error
}

type Pipeline struct {
	builder     *prompt.Builder
	generator   nl2sql.Generator
	coordinator *Coordinator
	cache       OutcomeCache
	logger      *slog.Logger
	group       singleflight.Group
	now         func() time.Time
}

// NewPipeline wires the stages together. cache may be nil to disable
// outcome caching.
func NewPipeline(builder *prompt.Builder, generator nl2sql.Generator, coordinator *Coordinator, cache OutcomeCache, logger *slog.Logger) (*Pipeline, error) {
	if generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if coordinator == nil {
		return nil, fmt.Errorf("coordinator is required")
	}
	if builder == nil {
		builder = prompt.NewBuilder()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{
		builder:     builder,
		generator:   generator,
		coordinator: coordinator,
		cache:       cache,
		logger:      logger,
		now:         time.Now,
	}, nil
}

// Answer turns a natural-language question into an Outcome. It never
// returns an error; every failure is an Outcome with Success false.
// Identical concurrent questions share one computation, which runs detached
// from any single caller's cancellation. A caller whose ctx ends first gets
// a failed outcome while the others keep waiting.
func (p *Pipeline) Answer(ctx context.Context, naturalQuery string) Outcome {
	if p.cache != nil {
		if cached, ok := p.cache.Get(naturalQuery); ok {
			observability.ObserveCacheLookup(true)
			p.logger.DebugContext(ctx, "outcome cache hit", slog.String("query", naturalQuery))
			return cached
		}
		observability.ObserveCacheLookup(false)
	}

	shared := context.WithoutCancel(ctx)
	results := p.group.DoChan(naturalQuery, func() (any, error) {
		if p.cache != nil {
			if cached, ok := p.cache.Get(naturalQuery); ok {
				return cached, nil
			}
		}
		outcome := p.answer(shared, naturalQuery)
		if p.cache != nil && cacheable(outcome) {
			p.cache.Put(naturalQuery, outcome)
		}
		return outcome, nil
	})

	select {
	case result := <-results:
		outcome := result.Val.(Outcome)
		if result.Shared {
			return outcome.clone()
		}
		return outcome
	case <-ctx.Done():
		return p.fail(ctx, StageCanceled, executeFailPrefix, "", ctx.Err())
	}
}

func (p *Pipeline) answer(ctx context.Context, naturalQuery string) Outcome {
	p.logger.InfoContext(ctx, "processing natural language query", slog.String("query", naturalQuery))

	built := p.builder.Build(naturalQuery)

	start := p.now()
	raw, err := p.generator.Generate(ctx, built.Text)
	observability.ObserveGenerationLatency(p.now().Sub(start))
	if err != nil {
		var genErr *nl2sql.GenerationError
		if !errors.As(err, &genErr) {
			err = &nl2sql.GenerationError{Err: err}
		}
		return p.fail(ctx, StageGeneration, generateFailPrefix, "", err)
	}

	statement, err := sqlguard.Extract(raw)
	if err != nil {
		return p.fail(ctx, StageExtraction, generateFailPrefix, "", err)
	}
	p.logger.InfoContext(ctx, "generated sql", slog.String("sql", statement))

	report, err := sqlguard.Validate(statement)
	if err != nil {
		return p.fail(ctx, StageValidation, executeFailPrefix, statement, err)
	}
	for _, warning := range report.Warnings {
		p.logger.WarnContext(ctx, "generated sql contains comment marker",
			slog.String("warning", warning),
			slog.String("sql", statement),
		)
	}

	result, err := p.coordinator.Execute(ctx, statement)
	if err != nil {
		return p.fail(ctx, StageExecution, executeFailPrefix, statement, err)
	}

	observability.ObserveOutcome("", true)
	metadata := result.Metadata
	return Outcome{
		Success:  true,
		Message:  successMessage,
		SQL:      result.SQL,
		Rows:     result.Rows,
		Metadata: &metadata,
	}
}

func (p *Pipeline) fail(ctx context.Context, stage Stage, prefix, statement string, err error) Outcome {
	observability.ObserveOutcome(string(stage), false)
	p.logger.ErrorContext(ctx, "query failed",
		slog.String("stage", string(stage)),
		slog.String("error", err.Error()),
	)
	return Outcome{
		Success: false,
		Message: prefix + err.Error(),
		SQL:     statement,
		Stage:   stage,
		Err:     err,
	}
}

// clone copies row and metadata storage so that cached and shared outcomes
// never alias a caller's copy.
func (o Outcome) clone() Outcome {
	if o.Rows != nil {
		rows := make([]query.Row, len(o.Rows))
		for i, r := range o.Rows {
			rows[i] = slices.Clone(r)
		}
		o.Rows = rows
	}
	if o.Metadata != nil {
		metadata := *o.Metadata
		metadata.ColumnNames = slices.Clone(metadata.ColumnNames)
		o.Metadata = &metadata
	}
	return o
}

// cacheable excludes outcomes that depend on the caller's context or on a
// transient generator condition rather than on the question itself.
func cacheable(outcome Outcome) bool {
	if outcome.Success {
		return true
	}
	if errors.Is(outcome.Err, context.Canceled) || errors.Is(outcome.Err, context.DeadlineExceeded) {
		return false
	}
	var genErr *nl2sql.GenerationError
	if errors.As(outcome.Err, &genErr) && genErr.Transient {
		return false
	}
	return true
}
