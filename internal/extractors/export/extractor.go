// Package export extracts conversations from an exported-conversations
// JSON document. One export file contains many conversations; each
// becomes its own record.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/familiar-labs/knowledge-cli/internal/core/domain"
	"github.com/familiar-labs/knowledge-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor parses exported-conversation JSON documents.
type Extractor struct{}

// New creates a new export extractor.
func New() *Extractor {
	return &Extractor{}
}

// SourceType returns the format this extractor handles.
func (e *Extractor) SourceType() domain.SourceType {
	return domain.SourceTypeExport
}

// conversation mirrors one entry of the export's top-level array.
type conversation struct {
	Name         string `json:"name"`
	ChatMessages []struct {
		Sender string `json:"sender"`
		Text   string `json:"text"`
	} `json:"chat_messages"`
}

// Extract parses the export at path and yields one record per
// conversation. Records from exports carry no dedup key upstream, so
// re-importing the same export duplicates its conversations.
func (e *Extractor) Extract(_ context.Context, path string) ([]domain.SourceRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}

	var conversations []conversation
	if err := json.Unmarshal(data, &conversations); err != nil {
		return nil, fmt.Errorf("%w: decoding export: %w", domain.ErrParse, err)
	}

	records := make([]domain.SourceRecord, 0, len(conversations))
	for _, conv := range conversations {
		name := conv.Name
		if name == "" {
			name = "Untitled"
		}

		messages := make([]domain.Message, 0, len(conv.ChatMessages))
		for _, m := range conv.ChatMessages {
			role := domain.RoleAssistant
			if m.Sender == "human" {
				role = domain.RoleHuman
			}
			messages = append(messages, domain.Message{Role: role, Text: m.Text})
		}

		records = append(records, domain.SourceRecord{
			Name:     "export: " + name,
			Messages: messages,
		})
	}

	return records, nil
}
