// Package plainfile extracts the whole content of an arbitrary text
// file as a single untagged block.
package plainfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/familiar-labs/knowledge-cli/internal/core/domain"
	"github.com/familiar-labs/knowledge-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles arbitrary text files.
type Extractor struct{}

// New creates a new plain file extractor.
func New() *Extractor {
	return &Extractor{}
}

// SourceType returns the format this extractor handles.
func (e *Extractor) SourceType() domain.SourceType {
	return domain.SourceTypeFile
}

// Extract reads the file at path as one untagged message. The record
// name is the file's base name.
func (e *Extractor) Extract(_ context.Context, path string) ([]domain.SourceRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	return []domain.SourceRecord{{
		Name:     filepath.Base(path),
		Messages: []domain.Message{{Role: domain.RoleNone, Text: string(data)}},
	}}, nil
}
