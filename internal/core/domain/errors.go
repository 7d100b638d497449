package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDimensionMismatch indicates a vector write whose length
	// disagrees with the store's established dimensionality. The write
	// must fail without mutating the chunk.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrSourceTooLarge indicates a source exceeded the import size guard.
	ErrSourceTooLarge = errors.New("source exceeds size limit")

	// ErrBelowSignalThreshold indicates a transcript with too few human
	// messages to be worth importing. Not an error per se; the source
	// is counted as skipped.
	ErrBelowSignalThreshold = errors.New("below minimum message threshold")

	// ErrParse indicates malformed source content.
	ErrParse = errors.New("parse error")

	// ErrWorkerProtocol indicates a worker produced output that does not
	// parse as the expected structured result. Unrecoverable for the
	// run: the contract was violated, not a transient fault.
	ErrWorkerProtocol = errors.New("worker protocol violation")

	// ErrEmbeddingUnavailable indicates the embedding capability failed
	// to initialise. The backfill aborts immediately.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
