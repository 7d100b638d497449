package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/familiar-labs/knowledge-cli/internal/core/domain"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [document-id]",
	Short: "Delete a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	if err := ensureStore(); err != nil {
		return err
	}

	id := args[0]
	if err := store.DeleteDocument(context.Background(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no document with ID %s", id)
		}
		return fmt.Errorf("delete failed: %w", err)
	}

	cmd.Printf("Deleted document %s\n", id)
	return nil
}
