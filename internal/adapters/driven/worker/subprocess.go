// Package worker implements the BatchWorker port by re-invoking the
// current binary as an isolated embedding worker process.
//
// Each batch runs in its own process so that memory growth or a crash
// inside the embedding capability terminates only that process, never
// the supervising orchestrator.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/familiar-labs/knowledge-cli/internal/core/domain"
	"github.com/familiar-labs/knowledge-cli/internal/core/ports/driven"
)

// Ensure Subprocess implements the interface.
var _ driven.BatchWorker = (*Subprocess)(nil)

// stderrExcerptLen bounds how much worker stderr is carried into crash
// errors and log lines.
const stderrExcerptLen = 200

// Subprocess spawns one worker process per batch.
type Subprocess struct {
	binary     string
	dataDir    string
	configPath string
	timeout    time.Duration
}

// NewSubprocess creates a subprocess worker launcher. binary is the
// executable to invoke (normally the running binary itself); dataDir
// and configPath are forwarded so the worker opens the same store with
// the same settings. A worker exceeding timeout is killed and treated
// as crashed.
func NewSubprocess(binary, dataDir, configPath string, timeout time.Duration) *Subprocess {
	return &Subprocess{
		binary:     binary,
		dataDir:    dataDir,
		configPath: configPath,
		timeout:    timeout,
	}
}

// RunBatch spawns one worker scoped to batchSize chunks and blocks
// until it exits or the timeout elapses.
func (s *Subprocess) RunBatch(ctx context.Context, batchSize int) (*driven.BatchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	args := []string{"embed-worker", "--batch-size", strconv.Itoa(batchSize)}
	if s.dataDir != "" {
		args = append(args, "--data-dir", s.dataDir)
	}
	if s.configPath != "" {
		args = append(args, "--config", s.configPath)
	}

	cmd := exec.CommandContext(ctx, s.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return nil, &driven.WorkerCrashError{
			ExitCode: -1,
			Stderr:   fmt.Sprintf("timed out after %s", s.timeout),
		}
	}

	if runErr != nil {
		// A worker whose embedding capability failed to initialise
		// reports a structured error payload before exiting non-zero.
		// That is fatal, not a crash to retry.
		if _, perr := parseResult(stdout.Bytes()); errors.Is(perr, domain.ErrEmbeddingUnavailable) {
			return nil, perr
		}

		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return nil, &driven.WorkerCrashError{
				ExitCode: exitErr.ExitCode(),
				Stderr:   excerpt(stderr.String()),
			}
		}
		return nil, &driven.WorkerCrashError{
			ExitCode: -1,
			Stderr:   excerpt(runErr.Error()),
		}
	}

	return parseResult(stdout.Bytes())
}

// parseResult decodes the single structured line a worker must print.
// Anything else is a protocol violation.
func parseResult(output []byte) (*driven.BatchResult, error) {
	line := lastLine(output)
	if line == "" {
		return nil, fmt.Errorf("%w: empty output", domain.ErrWorkerProtocol)
	}

	var payload struct {
		Embedded  *int    `json:"embedded"`
		Processed *int    `json:"processed"`
		Error     *string `json:"error"`
	}
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrWorkerProtocol, excerpt(line))
	}

	if payload.Error != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmbeddingUnavailable, *payload.Error)
	}
	if payload.Embedded == nil || payload.Processed == nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrWorkerProtocol, excerpt(line))
	}

	return &driven.BatchResult{
		Embedded:  *payload.Embedded,
		Processed: *payload.Processed,
	}, nil
}

// lastLine returns the last non-empty line of output.
func lastLine(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// excerpt truncates s for inclusion in error messages.
func excerpt(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > stderrExcerptLen {
		return s[:stderrExcerptLen]
	}
	return s
}
