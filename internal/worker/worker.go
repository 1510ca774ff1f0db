package worker

import (
	"context"
)

// Worker - long running background task managed by WorkerManager
type Worker interface {
	// Start blocks until the worker is stopped or ctx is cancelled.
	Start(ctx context.Context) error

	Stop() error

	Name() string
}
