package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/bizlens/bizlens/internal/observability"
	"github.com/bizlens/bizlens/internal/query"
)

// Result is a successful execution. SQL is the statement that produced
// Rows, which differs from the input when a join repair was applied.
type Result struct {
	SQL      string
	Rows     []query.Row
	Metadata Metadata
	Repaired bool
}

// Coordinator runs validated statements against the warehouse and applies
// at most one join repair per statement.
type Coordinator struct {
	executor query.Executor
	logger   *slog.Logger
	now      func() time.Time
}

func NewCoordinator(executor query.Executor, logger *slog.Logger) (*Coordinator, error) {
	if executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Coordinator{executor: executor, logger: logger, now: time.Now}, nil
}

// Execute issues statement and, for missing-join failures, one rewritten
// retry. The executor is never called more than twice.
func (c *Coordinator) Execute(ctx context.Context, statement string) (Result, error) {
	start := c.now()
	rows, err := c.executor.Query(ctx, statement)
	if err == nil {
		return c.finish(statement, rows, start, false), nil
	}

	c.logger.ErrorContext(ctx, "sql execution failed",
		slog.String("sql", statement),
		slog.String("error", err.Error()),
	)

	class := classifyFailure(err.Error())
	repair, kind := repairFor(class)
	if repair == nil {
		return Result{}, newExecutionError(class, statement, err, false)
	}

	repaired := repair(statement)
	if repaired == statement {
		return Result{}, newExecutionError(class, statement, err, false)
	}

	c.logger.InfoContext(ctx, "retrying with join repair",
		slog.String("repair", kind),
		slog.String("sql", repaired),
	)
	rows, retryErr := c.executor.Query(ctx, repaired)
	if retryErr != nil {
		observability.ObserveJoinRepair(kind, false)
		c.logger.WarnContext(ctx, "join repair retry failed",
			slog.String("repair", kind),
			slog.String("error", retryErr.Error()),
		)
		return Result{}, newExecutionError(class, statement, errors.Join(err, retryErr), true)
	}
	observability.ObserveJoinRepair(kind, true)
	return c.finish(repaired, rows, start, true), nil
}

func (c *Coordinator) finish(executed string, rows []query.Row, start time.Time, repaired bool) Result {
	elapsed := c.now().Sub(start)
	observability.ObserveExecutionLatency(elapsed)
	return Result{
		SQL:      executed,
		Rows:     rows,
		Metadata: BuildMetadata(executed, rows, elapsed),
		Repaired: repaired,
	}
}
