package services

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/familiar-labs/knowledge-cli/internal/core/domain"
	"github.com/familiar-labs/knowledge-cli/internal/core/ports/driven"
	"github.com/familiar-labs/knowledge-cli/internal/core/ports/driving"
	"github.com/familiar-labs/knowledge-cli/internal/logger"
)

// Ensure Importer implements the interface.
var _ driving.ImportService = (*Importer)(nil)

// Default import limits.
const (
	// DefaultMaxSourceSize is the size guard above which a source is
	// skipped unread.
	DefaultMaxSourceSize = 50_000_000 // 50MB

	// DefaultMinUserMessages is the minimum-signal filter: transcripts
	// with fewer human messages than this are not worth importing.
	DefaultMinUserMessages = 5

	// progressEvery is how many sources pass between progress lines on
	// long directory runs.
	progressEvery = 10
)

// ImporterConfig carries the importer's tunable limits.
type ImporterConfig struct {
	// MaxSourceSize is the per-source size guard in bytes.
	MaxSourceSize int64

	// MinUserMessages is the minimum human message count for
	// transcript sources.
	MinUserMessages int

	// Progress receives human-readable progress lines. Nil discards.
	Progress io.Writer
}

// Importer ingests raw sources into the knowledge store. Sources are
// processed strictly in order, one at a time; a failing source is
// counted and skipped, never fatal to the run.
type Importer struct {
	store    driven.KnowledgeStore
	splitter driven.Chunker
	session  driven.Extractor
	export   driven.Extractor
	plain    driven.Extractor
	cfg      ImporterConfig
}

// NewImporter creates an importer over the given store, chunker and
// format extractors.
func NewImporter(
	store driven.KnowledgeStore,
	splitter driven.Chunker,
	session driven.Extractor,
	export driven.Extractor,
	plain driven.Extractor,
	cfg ImporterConfig,
) *Importer {
	if cfg.MaxSourceSize <= 0 {
		cfg.MaxSourceSize = DefaultMaxSourceSize
	}
	if cfg.MinUserMessages <= 0 {
		cfg.MinUserMessages = DefaultMinUserMessages
	}
	if cfg.Progress == nil {
		cfg.Progress = io.Discard
	}

	return &Importer{
		store:    store,
		splitter: splitter,
		session:  session,
		export:   export,
		plain:    plain,
		cfg:      cfg,
	}
}

// ImportDirectory recursively imports all session transcripts (*.jsonl)
// under dir, skipping sources whose path is already recorded.
func (im *Importer) ImportDirectory(ctx context.Context, dir string) (*driving.ImportSummary, error) {
	start := time.Now()

	transcripts, err := findTranscripts(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	if len(transcripts) == 0 {
		fmt.Fprintf(im.cfg.Progress, "No .jsonl files found under %s\n", dir)
		return &driving.ImportSummary{Elapsed: time.Since(start)}, nil
	}

	// One query up front instead of a dedup lookup per source.
	existing, err := im.store.ImportedSourcePaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading imported paths: %w", err)
	}

	toProcess := transcripts[:0]
	for _, path := range transcripts {
		if _, ok := existing[path]; !ok {
			toProcess = append(toProcess, path)
		}
	}

	fmt.Fprintf(im.cfg.Progress, "Found %d total transcripts, %d new\n", len(transcripts), len(toProcess))

	summary := &driving.ImportSummary{}
	for i, path := range toProcess {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if im.importTranscript(ctx, path) {
			summary.Imported++
		} else {
			summary.Skipped++
		}

		if (i+1)%progressEvery == 0 {
			elapsed := time.Since(start)
			rate := float64(summary.Imported) / elapsed.Seconds()
			fmt.Fprintf(im.cfg.Progress, "  [%d/%d] imported: %d, skipped: %d (%.1f/s)\n",
				i+1, len(toProcess), summary.Imported, summary.Skipped, rate)
		}
	}

	summary.Elapsed = time.Since(start)
	return summary, nil
}

// importTranscript ingests one session transcript. Returns true when a
// document was committed, false when the source was skipped.
func (im *Importer) importTranscript(ctx context.Context, path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		logger.Warn("Skipping %s: %v", path, err)
		return false
	}
	if info.Size() > im.cfg.MaxSourceSize {
		logger.Debug("Skipping %s: %d bytes exceeds limit", path, info.Size())
		return false
	}

	records, err := im.session.Extract(ctx, path)
	if err != nil {
		logger.Warn("Skipping %s: %v", path, err)
		return false
	}
	rec := records[0]

	if rec.CountRole(domain.RoleHuman) < im.cfg.MinUserMessages {
		logger.Debug("Skipping %s: %v", path, domain.ErrBelowSignalThreshold)
		return false
	}

	fragments := im.splitter.Split(rec.Transcript())
	if len(fragments) == 0 {
		return false
	}

	doc := &domain.Document{
		ID:            uuid.New().String(),
		Filename:      rec.Name,
		ImportDate:    time.Now(),
		SourceType:    domain.SourceTypeSession,
		SourcePath:    path,
		SourceModDate: info.ModTime(),
	}
	if err := im.store.InsertDocumentWithChunks(ctx, doc, fragments); err != nil {
		logger.Warn("Skipping %s: %v", path, err)
		return false
	}
	return true
}

// ImportExport imports every eligible conversation from an exported-
// conversations JSON document. Conversations carry no dedup key, so
// re-importing the same export duplicates them.
func (im *Importer) ImportExport(ctx context.Context, path string) (*driving.ImportSummary, error) {
	start := time.Now()

	records, err := im.export.Extract(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("extracting export: %w", err)
	}

	eligible := make([]domain.SourceRecord, 0, len(records))
	for _, rec := range records {
		if rec.CountRole(domain.RoleHuman) >= im.cfg.MinUserMessages {
			eligible = append(eligible, rec)
		}
	}

	fmt.Fprintf(im.cfg.Progress, "Found %d conversations, %d with >= %d human messages\n",
		len(records), len(eligible), im.cfg.MinUserMessages)

	summary := &driving.ImportSummary{Skipped: len(records) - len(eligible)}
	for i, rec := range eligible {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fragments := im.splitter.Split(rec.Transcript())
		if len(fragments) == 0 {
			summary.Skipped++
			continue
		}

		doc := &domain.Document{
			ID:         uuid.New().String(),
			Filename:   rec.Name,
			ImportDate: time.Now(),
			SourceType: domain.SourceTypeExport,
		}
		if err := im.store.InsertDocumentWithChunks(ctx, doc, fragments); err != nil {
			logger.Warn("Skipping %q: %v", rec.Name, err)
			summary.Skipped++
			continue
		}
		summary.Imported++

		if (i+1)%progressEvery == 0 {
			fmt.Fprintf(im.cfg.Progress, "  [%d/%d] imported: %d\n", i+1, len(eligible), summary.Imported)
		}
	}

	summary.Elapsed = time.Since(start)
	return summary, nil
}

// ImportFile imports one arbitrary text file as a single document. The
// absolute path is the dedup key: importing the same file twice yields
// one document and a skip.
func (im *Importer) ImportFile(ctx context.Context, path string) (*driving.ImportSummary, error) {
	start := time.Now()
	summary := &driving.ImportSummary{}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	imported, err := im.store.IsSourceImported(ctx, abs)
	if err != nil {
		return nil, fmt.Errorf("checking dedup key: %w", err)
	}
	if imported {
		fmt.Fprintf(im.cfg.Progress, "Already imported: %s\n", abs)
		summary.Skipped++
		summary.Elapsed = time.Since(start)
		return summary, nil
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if info.Size() > im.cfg.MaxSourceSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", domain.ErrSourceTooLarge, path, info.Size())
	}

	records, err := im.plain.Extract(ctx, abs)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", path, err)
	}
	rec := records[0]

	fragments := im.splitter.Split(rec.Transcript())
	if len(fragments) == 0 {
		fmt.Fprintf(im.cfg.Progress, "File is empty or produced no chunks\n")
		summary.Skipped++
		summary.Elapsed = time.Since(start)
		return summary, nil
	}

	doc := &domain.Document{
		ID:            uuid.New().String(),
		Filename:      rec.Name,
		ImportDate:    time.Now(),
		SourceType:    domain.SourceTypeFile,
		SourcePath:    abs,
		SourceModDate: info.ModTime(),
	}
	if err := im.store.InsertDocumentWithChunks(ctx, doc, fragments); err != nil {
		return nil, fmt.Errorf("inserting document: %w", err)
	}

	fmt.Fprintf(im.cfg.Progress, "Imported %s (%d chunks)\n", rec.Name, len(fragments))
	summary.Imported++
	summary.Elapsed = time.Since(start)
	return summary, nil
}

// findTranscripts returns all *.jsonl files under dir, sorted.
func findTranscripts(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".jsonl") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
