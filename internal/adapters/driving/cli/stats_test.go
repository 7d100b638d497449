package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsCmd_EmptyStore(t *testing.T) {
	setupTestServices(t)

	out, err := execute("stats")

	require.NoError(t, err)
	assert.Contains(t, out, "Documents:   0")
	assert.Contains(t, out, "Chunks:      0")
	assert.NotContains(t, out, "Dimensions:")
}

func TestStatsCmd_CountsEmbedded(t *testing.T) {
	mem := setupTestServices(t)
	seedDocument(t, mem, "doc-1", "one", "two", "three")

	refs, err := mem.SelectUnembedded(context.Background(), 1)
	require.NoError(t, err)
	require.NoError(t, mem.WriteVector(context.Background(), refs[0].ID, []float32{1, 2}))

	out, err := execute("stats")

	require.NoError(t, err)
	assert.Contains(t, out, "Chunks:      3")
	assert.Contains(t, out, "Embedded:    1")
	assert.Contains(t, out, "Unembedded:  2")
	assert.Contains(t, out, "Dimensions:  2")
}

func TestDeleteCmd_RemovesDocument(t *testing.T) {
	mem := setupTestServices(t)
	seedDocument(t, mem, "doc-1", "text")

	out, err := execute("delete", "doc-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Deleted document doc-1")

	docs, _, err := mem.Totals(context.Background())
	require.NoError(t, err)
	assert.Zero(t, docs)
}

func TestDeleteCmd_NotFound(t *testing.T) {
	setupTestServices(t)

	_, err := execute("delete", "missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no document with ID missing")
}

func TestVersionCmd(t *testing.T) {
	setupTestServices(t)

	out, err := execute("version")

	require.NoError(t, err)
	assert.Contains(t, out, "knowledge version dev")
}
