package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/familiar-labs/knowledge-cli/internal/adapters/driven/worker"
	"github.com/familiar-labs/knowledge-cli/internal/core/ports/driving"
	"github.com/familiar-labs/knowledge-cli/internal/core/services"
)

// backfillService is wired lazily; tests inject a fake.
var backfillService driving.BackfillService

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Backfill embeddings for imported chunks",
	Long: `Computes embeddings for chunks that do not have one yet. Each batch
runs in an isolated worker process so a crash loses at most one batch;
the run resumes from durable state and already-embedded chunks are
never recomputed.`,
	Args: cobra.NoArgs,
	RunE: runEmbed,
}

func init() {
	rootCmd.AddCommand(embedCmd)
}

func runEmbed(cmd *cobra.Command, _ []string) error {
	if backfillService == nil {
		if err := ensureStore(); err != nil {
			return err
		}
		binary, err := os.Executable()
		if err != nil {
			return fmt.Errorf("locating own binary: %w", err)
		}
		w := worker.NewSubprocess(binary, flagDataDir, flagConfig, cfg.WorkerTimeout())
		backfillService = services.NewEmbedOrchestrator(store, w, services.BackfillConfig{
			BatchSize:    cfg.Backfill.BatchSize,
			RetryLimit:   cfg.Backfill.RetryLimit,
			RetryBackoff: cfg.RetryBackoff(),
			Progress:     cmd.OutOrStdout(),
		})
	}

	summary, err := backfillService.Run(context.Background())
	if err != nil {
		return fmt.Errorf("embedding backfill failed: %w", err)
	}

	switch summary.Outcome {
	case driving.OutcomeAlreadyComplete:
		cmd.Println("All chunks already have embeddings.")
	case driving.OutcomeDrained:
		cmd.Printf("Embedded %d chunks in %s", summary.Embedded, summary.Elapsed.Round(timeRound))
		if summary.Retries > 0 {
			cmd.Printf(" (%d worker retries)", summary.Retries)
		}
		cmd.Println()
		if summary.Remaining > 0 {
			cmd.Printf("%d chunks could not be embedded; re-run to retry them.\n", summary.Remaining)
		}
	case driving.OutcomeAborted:
		cmd.Printf("Aborted after embedding %d chunks: %s\n", summary.Embedded, summary.AbortReason)
		cmd.Printf("%d chunks remain; progress is saved, re-run to continue.\n", summary.Remaining)
		return fmt.Errorf("backfill aborted: %s", summary.AbortReason)
	}
	return nil
}
