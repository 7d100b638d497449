package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/familiar-labs/knowledge-cli/internal/adapters/driven/embedding/ollama"
	"github.com/familiar-labs/knowledge-cli/internal/core/services"
)

var workerBatchSize int

// embedWorkerCmd is the child process half of the embed command. It
// embeds one batch and reports a single JSON line on stdout; the parent
// parses nothing else. Hidden because users never run it directly.
var embedWorkerCmd = &cobra.Command{
	Use:    "embed-worker",
	Short:  "Embed one batch of chunks (internal)",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE:   runEmbedWorker,
}

func init() {
	embedWorkerCmd.Flags().IntVar(&workerBatchSize, "batch-size", services.DefaultBatchSize, "chunks per batch")
	rootCmd.AddCommand(embedWorkerCmd)
}

func runEmbedWorker(cmd *cobra.Command, _ []string) error {
	if err := ensureStore(); err != nil {
		return err
	}
	ctx := context.Background()

	embedding := ollama.NewEmbeddingService(ollama.Config{
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    cfg.EmbeddingTimeout(),
	})
	defer embedding.Close()

	// An unreachable embedding server is fatal for the whole backfill,
	// not just this batch. Report it structurally so the parent can
	// tell it apart from a crash.
	if err := embedding.Ping(ctx); err != nil {
		return reportWorkerError(cmd, fmt.Errorf("embedding server unreachable: %w", err))
	}

	result, err := services.NewBatchEmbedder(store, embedding).EmbedBatch(ctx, workerBatchSize)
	if err != nil {
		return reportWorkerError(cmd, err)
	}

	out, err := json.Marshal(result)
	if err != nil {
		return err
	}
	cmd.Println(string(out))
	return nil
}

// reportWorkerError emits the structured error line and fails the
// command.
func reportWorkerError(cmd *cobra.Command, err error) error {
	line, merr := json.Marshal(map[string]string{"error": err.Error()})
	if merr != nil {
		return err
	}
	cmd.Println(string(line))
	return err
}
