package driving

import (
	"context"
	"time"
)

// ImportService ingests raw sources into the knowledge store.
// Sources are processed strictly in order; one failing source never
// aborts the run.
type ImportService interface {
	// ImportDirectory recursively imports all session transcripts
	// (*.jsonl) under dir, skipping sources already recorded.
	ImportDirectory(ctx context.Context, dir string) (*ImportSummary, error)

	// ImportExport imports every eligible conversation from an
	// exported-conversations JSON document.
	ImportExport(ctx context.Context, path string) (*ImportSummary, error)

	// ImportFile imports one arbitrary text file as a single document.
	ImportFile(ctx context.Context, path string) (*ImportSummary, error)
}

// ImportSummary reports the outcome of one import run.
type ImportSummary struct {
	// Imported is the number of documents committed.
	Imported int

	// Skipped counts sources passed over: already imported, oversized,
	// unparseable, below the signal threshold, or chunkless.
	Skipped int

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration
}
