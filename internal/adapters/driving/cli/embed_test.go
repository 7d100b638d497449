package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/familiar-labs/knowledge-cli/internal/core/ports/driving"
)

// fakeBackfill returns a canned summary.
type fakeBackfill struct {
	summary *driving.BackfillSummary
}

func (f *fakeBackfill) Run(_ context.Context) (*driving.BackfillSummary, error) {
	return f.summary, nil
}

func TestEmbedCmd_AlreadyComplete(t *testing.T) {
	setupTestServices(t)
	backfillService = &fakeBackfill{summary: &driving.BackfillSummary{
		Outcome: driving.OutcomeAlreadyComplete,
	}}

	out, err := execute("embed")

	require.NoError(t, err)
	assert.Contains(t, out, "All chunks already have embeddings.")
}

func TestEmbedCmd_Drained(t *testing.T) {
	setupTestServices(t)
	backfillService = &fakeBackfill{summary: &driving.BackfillSummary{
		Outcome:  driving.OutcomeDrained,
		Embedded: 42,
		Retries:  2,
	}}

	out, err := execute("embed")

	require.NoError(t, err)
	assert.Contains(t, out, "Embedded 42 chunks")
	assert.Contains(t, out, "2 worker retries")
}

func TestEmbedCmd_Aborted(t *testing.T) {
	setupTestServices(t)
	backfillService = &fakeBackfill{summary: &driving.BackfillSummary{
		Outcome:     driving.OutcomeAborted,
		Embedded:    10,
		Remaining:   90,
		AbortReason: "gave up after 6 consecutive crashes",
	}}

	out, err := execute("embed")

	require.Error(t, err)
	assert.Contains(t, out, "Aborted after embedding 10 chunks")
	assert.Contains(t, out, "90 chunks remain")
	assert.Contains(t, err.Error(), "consecutive crashes")
}

func TestEmbedCmd_RejectsArgs(t *testing.T) {
	setupTestServices(t)

	_, err := execute("embed", "extra")

	assert.Error(t, err)
}
