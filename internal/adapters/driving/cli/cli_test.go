package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/familiar-labs/knowledge-cli/internal/adapters/driven/config/file"
	"github.com/familiar-labs/knowledge-cli/internal/adapters/driven/storage/memory"
	"github.com/familiar-labs/knowledge-cli/internal/core/domain"
)

// setupTestServices wires the command tree to an in-memory store.
// Returns the store and a cleanup restoring the package state.
func setupTestServices(t *testing.T) *memory.KnowledgeStore {
	t.Helper()

	oldStore := store
	oldCfg := cfg
	oldBackfill := backfillService
	oldImporter := importService

	mem := memory.NewKnowledgeStore()
	defaults := file.Default()
	store = mem
	cfg = &defaults
	backfillService = nil
	importService = nil

	t.Cleanup(func() {
		store = oldStore
		cfg = oldCfg
		backfillService = oldBackfill
		importService = oldImporter
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	return mem
}

// execute runs the root command with args and captures its output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// seedDocument inserts one document with the given fragments.
func seedDocument(t *testing.T, mem *memory.KnowledgeStore, id string, fragments ...string) {
	t.Helper()
	err := mem.InsertDocumentWithChunks(context.Background(), &domain.Document{
		ID:         id,
		Filename:   "doc " + id,
		SourceType: domain.SourceTypeSession,
	}, fragments)
	if err != nil {
		t.Fatalf("seeding document: %v", err)
	}
}
