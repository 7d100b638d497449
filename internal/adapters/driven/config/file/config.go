// Package file loads CLI configuration from a TOML file. Every knob
// has a default; a missing config file is not an error.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds every tunable the CLI reads from disk.
type Config struct {
	Chunking  ChunkingConfig  `toml:"chunking"`
	Import    ImportConfig    `toml:"import"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Backfill  BackfillConfig  `toml:"backfill"`
}

// ChunkingConfig tunes the text splitter.
type ChunkingConfig struct {
	// LongParagraph is the length above which a paragraph is split
	// into sentences.
	LongParagraph int `toml:"long_paragraph"`

	// SentenceBuffer bounds a packed group of sentences.
	SentenceBuffer int `toml:"sentence_buffer"`

	// SmallParagraph is the accumulation threshold for short
	// paragraphs.
	SmallParagraph int `toml:"small_paragraph"`
}

// ImportConfig tunes source ingestion.
type ImportConfig struct {
	// MinUserMessages is the minimum human message count for a
	// transcript to be worth importing.
	MinUserMessages int `toml:"min_user_messages"`

	// MaxSourceSizeBytes is the per-source size guard.
	MaxSourceSizeBytes int64 `toml:"max_source_size_bytes"`
}

// EmbeddingConfig points at the local embedding server.
type EmbeddingConfig struct {
	BaseURL    string `toml:"base_url"`
	Model      string `toml:"model"`
	Dimensions int    `toml:"dimensions"`

	// TimeoutSeconds bounds one embedding request.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// BackfillConfig tunes the embedding backfill supervisor.
type BackfillConfig struct {
	// BatchSize is the number of chunks per worker process.
	BatchSize int `toml:"batch_size"`

	// RetryLimit is the consecutive worker crash ceiling.
	RetryLimit int `toml:"retry_limit"`

	// RetryBackoffSeconds is the pause between a crash and the retry.
	RetryBackoffSeconds int `toml:"retry_backoff_seconds"`

	// WorkerTimeoutSeconds bounds one worker process's lifetime.
	WorkerTimeoutSeconds int `toml:"worker_timeout_seconds"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Chunking: ChunkingConfig{
			LongParagraph:  800,
			SentenceBuffer: 600,
			SmallParagraph: 100,
		},
		Import: ImportConfig{
			MinUserMessages:    5,
			MaxSourceSizeBytes: 50_000_000,
		},
		Embedding: EmbeddingConfig{
			BaseURL:        "http://localhost:11434",
			Model:          "nomic-embed-text",
			Dimensions:     768,
			TimeoutSeconds: 30,
		},
		Backfill: BackfillConfig{
			BatchSize:            2000,
			RetryLimit:           5,
			RetryBackoffSeconds:  2,
			WorkerTimeoutSeconds: 600,
		},
	}
}

// DefaultPath returns the default config file location,
// ~/.familiar/knowledge/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".familiar", "knowledge", "config.toml"), nil
}

// Load reads the config at path, overlaying it on the defaults. An
// empty path means the default location. A missing file yields the
// defaults; a malformed file is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return &cfg, nil
}

// EmbeddingTimeout returns the embedding request timeout as a duration.
func (c *Config) EmbeddingTimeout() time.Duration {
	return time.Duration(c.Embedding.TimeoutSeconds) * time.Second
}

// RetryBackoff returns the backfill retry backoff as a duration.
func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.Backfill.RetryBackoffSeconds) * time.Second
}

// WorkerTimeout returns the per-worker lifetime bound as a duration.
func (c *Config) WorkerTimeout() time.Duration {
	return time.Duration(c.Backfill.WorkerTimeoutSeconds) * time.Second
}
