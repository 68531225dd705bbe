// Package jobqueue delivers background jobs such as luck history writes.
package jobqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/yanqian/omniluck/internal/domain/luck"
)

// ErrNoHandler is returned when a job is enqueued before a handler is set, so
// callers notice the job would be lost.
var ErrNoHandler = errors.New("job queue has no handler")

// Handler executes one job. Payloads arrive JSON encoded regardless of backend.
type Handler func(ctx context.Context, name string, payload []byte)

// HandlerQueue supports setting a handler for job delivery.
type HandlerQueue interface {
	luck.JobQueue
	SetHandler(handler Handler)
	Close()
}

// ImmediateQueue runs the handler in a goroutine on enqueue.
type ImmediateQueue struct {
	mu      sync.RWMutex
	handler Handler
	wg      sync.WaitGroup
}

// NewImmediateQueue constructs the queue.
func NewImmediateQueue(handler Handler) *ImmediateQueue {
	return &ImmediateQueue{handler: handler}
}

// SetHandler replaces the handler used for queued jobs.
func (q *ImmediateQueue) SetHandler(handler Handler) {
	q.mu.Lock()
	q.handler = handler
	q.mu.Unlock()
}

// Enqueue invokes the handler asynchronously. The job outlives the request
// context but keeps its values.
func (q *ImmediateQueue) Enqueue(ctx context.Context, name string, payload any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", name, err)
	}
	q.mu.RLock()
	handler := q.handler
	q.mu.RUnlock()
	if handler == nil {
		return fmt.Errorf("enqueue job %s: %w", name, ErrNoHandler)
	}
	jobCtx := context.WithoutCancel(ctx)
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		handler(jobCtx, name, encoded)
	}()
	return nil
}

// Close waits for in-flight jobs.
func (q *ImmediateQueue) Close() {
	q.wg.Wait()
}

var _ HandlerQueue = (*ImmediateQueue)(nil)
