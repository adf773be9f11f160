package workers

import "context"

// Workers aggregates the background jobs so the server can start and stop
// them as one unit.
type Workers struct {
	workers []Worker
}

// NewWorkers collects the given jobs into an aggregate.
func NewWorkers(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

// Start launches every job in registration order.
func (w *Workers) Start(ctx context.Context) {
	for _, worker := range w.workers {
		worker.Start(ctx)
	}
}

// Stop stops every job in reverse registration order and blocks until all
// of them have exited.
func (w *Workers) Stop() {
	for i := len(w.workers) - 1; i >= 0; i-- {
		w.workers[i].Stop()
	}
}
