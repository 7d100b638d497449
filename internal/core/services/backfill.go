package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/familiar-labs/knowledge-cli/internal/core/domain"
	"github.com/familiar-labs/knowledge-cli/internal/core/ports/driven"
	"github.com/familiar-labs/knowledge-cli/internal/core/ports/driving"
	"github.com/familiar-labs/knowledge-cli/internal/logger"
)

// Ensure EmbedOrchestrator implements the interface.
var _ driving.BackfillService = (*EmbedOrchestrator)(nil)

// Default backfill tuning.
const (
	// DefaultBatchSize bounds one worker's peak memory: the worker
	// process never holds more than this many chunks' embeddings.
	DefaultBatchSize = 2000

	// DefaultRetryLimit is the consecutive-crash ceiling before the
	// run aborts.
	DefaultRetryLimit = 5

	// DefaultRetryBackoff is the pause after a worker crash before the
	// next dispatch.
	DefaultRetryBackoff = 2 * time.Second
)

// BackfillConfig carries the orchestrator's tunables.
type BackfillConfig struct {
	// BatchSize is the number of chunks dispatched per worker.
	BatchSize int

	// RetryLimit is the consecutive-crash ceiling.
	RetryLimit int

	// RetryBackoff is the pause between a crash and the retry.
	RetryBackoff time.Duration

	// Progress receives human-readable progress lines. Nil discards.
	Progress io.Writer
}

// EmbedOrchestrator supervises the embedding backfill: it repeatedly
// dispatches one bounded batch to an isolated worker, absorbs worker
// crashes up to a ceiling, and stops when the store is drained or the
// run becomes hopeless. Exactly one worker is in flight at a time.
type EmbedOrchestrator struct {
	store  driven.KnowledgeStore
	worker driven.BatchWorker
	cfg    BackfillConfig
}

// NewEmbedOrchestrator creates a backfill orchestrator.
func NewEmbedOrchestrator(store driven.KnowledgeStore, worker driven.BatchWorker, cfg BackfillConfig) *EmbedOrchestrator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.RetryLimit <= 0 {
		cfg.RetryLimit = DefaultRetryLimit
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = DefaultRetryBackoff
	}
	if cfg.Progress == nil {
		cfg.Progress = io.Discard
	}

	return &EmbedOrchestrator{
		store:  store,
		worker: worker,
		cfg:    cfg,
	}
}

// Run executes the backfill until the store is drained or the run
// aborts. Vectors written before an abort are durable; re-running
// skips them.
func (o *EmbedOrchestrator) Run(ctx context.Context) (*driving.BackfillSummary, error) {
	start := time.Now()

	total, err := o.store.CountUnembedded(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting unembedded chunks: %w", err)
	}
	if total == 0 {
		return &driving.BackfillSummary{
			Outcome: driving.OutcomeAlreadyComplete,
			Elapsed: time.Since(start),
		}, nil
	}

	fmt.Fprintf(o.cfg.Progress, "%d chunks need embeddings\n", total)

	summary := &driving.BackfillSummary{Remaining: total}
	crashes := 0 // consecutive, reset on any successful batch

	for summary.Embedded < total {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := o.worker.RunBatch(ctx, o.cfg.BatchSize)

		if crash, ok := driven.IsWorkerCrash(err); ok {
			crashes++
			summary.Retries++
			fmt.Fprintf(o.cfg.Progress, "Worker crashed (attempt %d): %s\n", crashes, crash.Stderr)
			if crashes > o.cfg.RetryLimit {
				return o.abort(summary, start,
					fmt.Sprintf("gave up after %d consecutive crashes", crashes)), nil
			}
			if err := sleepCtx(ctx, o.cfg.RetryBackoff); err != nil {
				return nil, err
			}
			continue
		}

		if errors.Is(err, domain.ErrWorkerProtocol) {
			// The worker contract was violated, not a transient fault.
			// Retrying cannot help.
			return o.abort(summary, start, err.Error()), nil
		}
		if errors.Is(err, domain.ErrEmbeddingUnavailable) {
			return o.abort(summary, start, err.Error()), nil
		}
		if err != nil {
			return nil, fmt.Errorf("running batch: %w", err)
		}

		crashes = 0

		if result.Processed == 0 {
			// Nothing left to consider: normal completion.
			break
		}
		if result.Embedded == 0 {
			// The batch found chunks but embedded none; dispatching
			// again would select the same chunks forever.
			logger.Warn("Batch processed %d chunks but embedded none; stopping", result.Processed)
			break
		}

		summary.Embedded += result.Embedded
		summary.Remaining = total - summary.Embedded

		elapsed := time.Since(start)
		rate := float64(summary.Embedded) / elapsed.Seconds()
		var remainingMin float64
		if rate > 0 {
			remainingMin = float64(summary.Remaining) / rate / 60
		}
		fmt.Fprintf(o.cfg.Progress, "  %d/%d (%d%%) - %.0f/sec - ~%.0fmin left\n",
			summary.Embedded, total, summary.Embedded*100/total, rate, remainingMin)
	}

	summary.Outcome = driving.OutcomeDrained
	summary.Remaining = total - summary.Embedded
	summary.Elapsed = time.Since(start)
	return summary, nil
}

// abort finalises a summary for a run that gave up.
func (o *EmbedOrchestrator) abort(summary *driving.BackfillSummary, start time.Time, reason string) *driving.BackfillSummary {
	summary.Outcome = driving.OutcomeAborted
	summary.AbortReason = reason
	summary.Elapsed = time.Since(start)
	return summary
}

// sleepCtx sleeps for d unless the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
