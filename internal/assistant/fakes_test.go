package assistant

import (
	"context"
	"sync"

	"github.com/bizlens/bizlens/internal/query"
)

type executorReply struct {
	rows []query.Row
	err  error
}

// scriptedExecutor replays replies in order and records every statement.
type scriptedExecutor struct {
	mu      sync.Mutex
	replies []executorReply
	calls   []string
}

func (e *scriptedExecutor) Query(_ context.Context, sqlText string) ([]query.Row, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, sqlText)
	if len(e.replies) == 0 {
		return nil, nil
	}
	reply := e.replies[0]
	if len(e.replies) > 1 {
		e.replies = e.replies[1:]
	}
	if reply.rows == nil {
		return nil, reply.err
	}
	// Fresh storage per call, like a real driver.
	rows := make([]query.Row, len(reply.rows))
	for i, r := range reply.rows {
		rows[i] = append(query.Row(nil), r...)
	}
	return rows, reply.err
}

func (e *scriptedExecutor) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

type fakeGenerator struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
	entered  int
	prompts  []string
	release  chan struct{}
	started  chan struct{}
}

// Generate blocks on release when set and gives up when ctx ends first.
func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.entered++
	g.mu.Unlock()
	if g.started != nil {
		select {
		case g.started <- struct{}{}:
		default:
		}
	}
	if g.release != nil {
		select {
		case <-g.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.prompts = append(g.prompts, prompt)
	return g.response, g.err
}

func (g *fakeGenerator) enteredCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.entered
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func row(fields ...query.Field) query.Row {
	return query.Row(fields)
}
