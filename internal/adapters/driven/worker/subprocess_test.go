package worker

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/familiar-labs/knowledge-cli/internal/core/domain"
	"github.com/familiar-labs/knowledge-cli/internal/core/ports/driven"
)

func TestParseResult(t *testing.T) {
	t.Run("valid result", func(t *testing.T) {
		res, err := parseResult([]byte(`{"embedded": 42, "processed": 50}`))
		require.NoError(t, err)
		assert.Equal(t, 42, res.Embedded)
		assert.Equal(t, 50, res.Processed)
	})

	t.Run("result after noise lines", func(t *testing.T) {
		out := []byte("loading model\n{\"embedded\": 1, \"processed\": 1}\n")
		res, err := parseResult(out)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Embedded)
	})

	t.Run("empty batch is valid", func(t *testing.T) {
		res, err := parseResult([]byte(`{"embedded": 0, "processed": 0}`))
		require.NoError(t, err)
		assert.Equal(t, 0, res.Processed)
	})

	t.Run("structured error payload", func(t *testing.T) {
		_, err := parseResult([]byte(`{"error": "model failed to load"}`))
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
		assert.Contains(t, err.Error(), "model failed to load")
	})

	t.Run("empty output is a protocol violation", func(t *testing.T) {
		_, err := parseResult(nil)
		assert.ErrorIs(t, err, domain.ErrWorkerProtocol)
	})

	t.Run("non-JSON output is a protocol violation", func(t *testing.T) {
		_, err := parseResult([]byte("panic: out of memory"))
		assert.ErrorIs(t, err, domain.ErrWorkerProtocol)
	})

	t.Run("wrong shape is a protocol violation", func(t *testing.T) {
		_, err := parseResult([]byte(`{"done": true}`))
		assert.ErrorIs(t, err, domain.ErrWorkerProtocol)
	})
}

func TestRunBatch_Crash(t *testing.T) {
	bin, err := exec.LookPath("false")
	if err != nil {
		t.Skip("false not available")
	}

	s := NewSubprocess(bin, "", "", time.Minute)
	_, err = s.RunBatch(context.Background(), 10)

	crash, ok := driven.IsWorkerCrash(err)
	require.True(t, ok, "expected a crash error, got %v", err)
	assert.NotEqual(t, 0, crash.ExitCode)
}

func TestRunBatch_ProtocolViolation(t *testing.T) {
	bin, err := exec.LookPath("echo")
	if err != nil {
		t.Skip("echo not available")
	}

	// echo exits 0 but prints its arguments, not a structured result.
	s := NewSubprocess(bin, "", "", time.Minute)
	_, err = s.RunBatch(context.Background(), 10)
	assert.ErrorIs(t, err, domain.ErrWorkerProtocol)
}

func TestRunBatch_Timeout(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	script := filepath.Join(t.TempDir(), "slow.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nsleep 10\n"), 0755))

	s := NewSubprocess(script, "", "", 50*time.Millisecond)
	start := time.Now()
	_, err := s.RunBatch(context.Background(), 10)
	elapsed := time.Since(start)

	crash, ok := driven.IsWorkerCrash(err)
	require.True(t, ok, "expected a crash error, got %v", err)
	assert.Equal(t, -1, crash.ExitCode)
	assert.Contains(t, crash.Stderr, "timed out")
	assert.Less(t, elapsed, 5*time.Second)
}

func TestExcerpt(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	assert.Len(t, excerpt(string(long)), stderrExcerptLen)
	assert.Equal(t, "short", excerpt("  short\n"))
}
