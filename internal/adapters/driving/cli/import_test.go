package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportCmd_Use(t *testing.T) {
	assert.Equal(t, "import [directory]", importCmd.Use)
}

func TestImportCmd_HasFlags(t *testing.T) {
	require.NotNil(t, importCmd.Flags().Lookup("export"))
	require.NotNil(t, importCmd.Flags().Lookup("file"))
}

func TestImportCmd_ExportAndFileExclusive(t *testing.T) {
	setupTestServices(t)
	t.Cleanup(func() { importExportPath = ""; importFilePath = "" })

	_, err := execute("import", "--export", "a.json", "--file", "b.txt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestImportCmd_Directory(t *testing.T) {
	mem := setupTestServices(t)

	dir := t.TempDir()
	var b strings.Builder
	for i := 0; i < 6; i++ {
		fmt.Fprintf(&b, `{"type":"user","message":{"content":"Question %d"}}`+"\n", i)
		fmt.Fprintf(&b, `{"type":"assistant","message":{"content":[{"type":"text","text":"Answer %d"}]}}`+"\n", i)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "t.jsonl"), []byte(b.String()), 0o644))

	out, err := execute("import", dir)

	require.NoError(t, err)
	assert.Contains(t, out, "1 imported, 0 skipped")
	assert.Contains(t, out, "Knowledge base: 1 documents")

	docs, chunks, err := mem.Totals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, docs)
	assert.Greater(t, chunks, 0)
}

func TestImportCmd_File(t *testing.T) {
	setupTestServices(t)
	t.Cleanup(func() { importFilePath = "" })

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("Some notes worth keeping."), 0o644))

	out, err := execute("import", "--file", path)

	require.NoError(t, err)
	assert.Contains(t, out, "1 imported")
}
