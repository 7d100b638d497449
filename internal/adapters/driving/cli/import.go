package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/familiar-labs/knowledge-cli/internal/core/ports/driving"
)

var (
	importExportPath string
	importFilePath   string
)

var importCmd = &cobra.Command{
	Use:   "import [directory]",
	Short: "Import transcripts into the knowledge base",
	Long: `Imports session transcripts (*.jsonl) from a directory, an exported
conversations JSON file (--export), or a single text file (--file).
Already-imported sources are skipped; transcripts with too few human
messages are not worth storing and are skipped as well.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importExportPath, "export", "", "import an exported-conversations JSON file")
	importCmd.Flags().StringVar(&importFilePath, "file", "", "import a single text file")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if importExportPath != "" && importFilePath != "" {
		return errors.New("--export and --file are mutually exclusive")
	}

	if err := ensureImporter(); err != nil {
		return err
	}
	ctx := context.Background()

	var (
		summary *driving.ImportSummary
		err     error
	)
	switch {
	case importExportPath != "":
		summary, err = importService.ImportExport(ctx, importExportPath)
	case importFilePath != "":
		summary, err = importService.ImportFile(ctx, importFilePath)
	default:
		dir, dirErr := importDir(args)
		if dirErr != nil {
			return dirErr
		}
		summary, err = importService.ImportDirectory(ctx, dir)
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	cmd.Printf("Done in %s: %d imported, %d skipped\n",
		summary.Elapsed.Round(timeRound), summary.Imported, summary.Skipped)

	docs, chunks, err := store.Totals(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("Knowledge base: %d documents, %d chunks (%s)\n", docs, chunks, dataDirLabel())
	return nil
}

// importDir resolves the directory argument, defaulting to
// ~/.familiar/transcripts.
func importDir(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".familiar", "transcripts"), nil
}
