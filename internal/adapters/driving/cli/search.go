package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over imported chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := ensureStore(); err != nil {
		return err
	}
	ctx := context.Background()

	chunks, err := store.SearchChunks(ctx, args[0], searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(chunks) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	for i, chunk := range chunks {
		doc, err := store.GetDocument(ctx, chunk.DocumentID)
		name := chunk.DocumentID
		if err == nil {
			name = doc.Filename
		}
		cmd.Printf("[%d] %s\n", i+1, name)
		cmd.Printf("    %s\n\n", snippet(chunk.Text, 200))
	}
	return nil
}

// snippet trims text to a one-line preview of at most n characters.
func snippet(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > n {
		text = text[:n] + "..."
	}
	return text
}
