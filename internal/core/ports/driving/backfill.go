package driving

import (
	"context"
	"time"
)

// BackfillService drives embedding computation for chunks that lack a
// vector, one isolated worker batch at a time.
type BackfillService interface {
	// Run executes the backfill until the store is drained or the run
	// aborts. Partial progress is durable either way: vectors written
	// before an abort remain, and re-running skips embedded chunks.
	Run(ctx context.Context) (*BackfillSummary, error)
}

// BackfillOutcome classifies how a backfill run ended.
type BackfillOutcome string

const (
	// OutcomeAlreadyComplete means no chunks needed embedding.
	OutcomeAlreadyComplete BackfillOutcome = "already-complete"

	// OutcomeDrained means the run embedded everything it could and a
	// worker reported an empty batch.
	OutcomeDrained BackfillOutcome = "drained"

	// OutcomeAborted means the run gave up: retry ceiling exceeded,
	// protocol violation, or embedding capability failure.
	OutcomeAborted BackfillOutcome = "aborted"
)

// BackfillSummary reports the outcome of one backfill run.
type BackfillSummary struct {
	// Outcome classifies the terminal state.
	Outcome BackfillOutcome

	// Embedded is the total number of vectors written this run.
	Embedded int

	// Remaining is the unembedded count at the start of the run minus
	// what this run embedded.
	Remaining int

	// Retries is the number of worker crashes absorbed during the run.
	Retries int

	// AbortReason describes why an aborted run gave up. Empty otherwise.
	AbortReason string

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration
}
