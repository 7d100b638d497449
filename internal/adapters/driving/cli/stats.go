package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge base statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if err := ensureStore(); err != nil {
		return err
	}
	ctx := context.Background()

	docs, chunks, err := store.Totals(ctx)
	if err != nil {
		return fmt.Errorf("reading totals: %w", err)
	}
	unembedded, err := store.CountUnembedded(ctx)
	if err != nil {
		return fmt.Errorf("counting unembedded chunks: %w", err)
	}
	dim, err := store.VectorDimension(ctx)
	if err != nil {
		return fmt.Errorf("reading vector dimension: %w", err)
	}

	cmd.Printf("Documents:   %d\n", docs)
	cmd.Printf("Chunks:      %d\n", chunks)
	cmd.Printf("Embedded:    %d\n", chunks-unembedded)
	cmd.Printf("Unembedded:  %d\n", unembedded)
	if dim > 0 {
		cmd.Printf("Dimensions:  %d\n", dim)
	}
	cmd.Printf("Location:    %s\n", dataDirLabel())
	return nil
}
