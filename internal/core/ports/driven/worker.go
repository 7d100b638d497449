package driven

import (
	"context"
	"errors"
)

// BatchWorker runs one isolated embedding batch and reports a small
// structured result. The isolation boundary exists so that unbounded
// memory growth inside the embedding capability is bounded by worker
// lifetime rather than accumulating across the whole backfill.
type BatchWorker interface {
	// RunBatch embeds up to batchSize chunks and blocks until the
	// worker finishes or the adapter's timeout elapses.
	//
	// A crash or timeout returns an error satisfying IsWorkerCrash
	// (transient, retryable). Output that fails to parse as the
	// expected result returns an error wrapping
	// domain.ErrWorkerProtocol (fatal). A worker that started but
	// whose embedding capability failed to initialise returns an error
	// wrapping domain.ErrEmbeddingUnavailable (fatal).
	RunBatch(ctx context.Context, batchSize int) (*BatchResult, error)
}

// BatchResult is the structured result one worker reports per batch.
type BatchResult struct {
	// Embedded is the number of vectors actually written.
	Embedded int `json:"embedded"`

	// Processed is the number of chunks the worker considered.
	// Zero means no unembedded chunks remain: normal completion.
	Processed int `json:"processed"`
}

// WorkerCrashError indicates a worker exited abnormally or timed out.
// Treated as a transient fault: the supervisor retries up to a ceiling.
type WorkerCrashError struct {
	// ExitCode is the worker's exit status, or -1 on timeout/kill.
	ExitCode int

	// Stderr holds a short excerpt of the worker's stderr.
	Stderr string
}

// Error implements the error interface.
func (e *WorkerCrashError) Error() string {
	if e.Stderr == "" {
		return "worker crashed"
	}
	return "worker crashed: " + e.Stderr
}

// IsWorkerCrash checks whether an error is a transient worker crash.
// Returns the crash details and true if it is.
func IsWorkerCrash(err error) (*WorkerCrashError, bool) {
	var ce *WorkerCrashError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
