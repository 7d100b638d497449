// Package cli implements the knowledge command-line interface using
// cobra. Commands talk to core services through the driving ports;
// adapters are wired lazily on first use so that flag parsing and help
// output never touch the database.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/familiar-labs/knowledge-cli/internal/adapters/driven/config/file"
	"github.com/familiar-labs/knowledge-cli/internal/adapters/driven/storage/sqlite"
	"github.com/familiar-labs/knowledge-cli/internal/chunker"
	"github.com/familiar-labs/knowledge-cli/internal/core/ports/driven"
	"github.com/familiar-labs/knowledge-cli/internal/core/services"
	"github.com/familiar-labs/knowledge-cli/internal/extractors/export"
	"github.com/familiar-labs/knowledge-cli/internal/extractors/plainfile"
	"github.com/familiar-labs/knowledge-cli/internal/extractors/session"
	"github.com/familiar-labs/knowledge-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// timeRound is the display granularity for elapsed durations.
const timeRound = 100 * time.Millisecond

var (
	flagVerbose bool
	flagDataDir string
	flagConfig  string
)

// Wired services. Package-level so tests can inject fakes.
var (
	store         driven.KnowledgeStore
	importService *services.Importer
	cfg           *file.Config
)

var rootCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Local knowledge base over conversation transcripts",
	Long: `Imports conversation transcripts into a local SQLite knowledge base,
chunks them for retrieval, and backfills embeddings via a local model.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.familiar/knowledge)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.familiar/knowledge/config.toml)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ensureConfig loads the TOML config once.
func ensureConfig() error {
	if cfg != nil {
		return nil
	}
	loaded, err := file.Load(flagConfig)
	if err != nil {
		return err
	}
	cfg = loaded
	return nil
}

// ensureStore opens the SQLite store once. The handle stays open for
// the life of the process.
func ensureStore() error {
	if store != nil {
		return nil
	}
	if err := ensureConfig(); err != nil {
		return err
	}
	s, err := sqlite.NewStore(flagDataDir)
	if err != nil {
		return fmt.Errorf("opening knowledge base: %w", err)
	}
	store = s
	return nil
}

// ensureImporter wires the import service once.
func ensureImporter() error {
	if importService != nil {
		return nil
	}
	if err := ensureStore(); err != nil {
		return err
	}
	splitter := chunker.New(
		chunker.WithLongParagraph(cfg.Chunking.LongParagraph),
		chunker.WithSentenceBuffer(cfg.Chunking.SentenceBuffer),
		chunker.WithSmallParagraph(cfg.Chunking.SmallParagraph),
	)
	importService = services.NewImporter(
		store,
		splitter,
		session.New(),
		export.New(),
		plainfile.New(),
		services.ImporterConfig{
			MaxSourceSize:   cfg.Import.MaxSourceSizeBytes,
			MinUserMessages: cfg.Import.MinUserMessages,
			Progress:        os.Stdout,
		},
	)
	return nil
}

// dataDirLabel returns the effective data directory for display.
func dataDirLabel() string {
	if flagDataDir != "" {
		return flagDataDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.familiar/knowledge"
	}
	return filepath.Join(home, ".familiar", "knowledge")
}
