// Package workers provides the background maintenance jobs of the auth
// service and a Workers aggregate that runs them in a unified way.
package workers

import "context"

// Worker is the interface implemented by every background job.
//
// Start launches the job's goroutine and returns immediately; the goroutine
// exits when ctx is cancelled or Stop is called. Stop blocks until the
// goroutine has fully exited and is safe to call when the job is not
// running.
type Worker interface {
	Start(ctx context.Context)
	Stop()
}
