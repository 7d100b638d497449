// Package session extracts role-tagged messages from line-delimited
// JSON session transcripts.
package session

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/familiar-labs/knowledge-cli/internal/core/domain"
	"github.com/familiar-labs/knowledge-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// maxLineSize bounds a single transcript line. Tool output lines can be
// large, so this is generous.
const maxLineSize = 10 * 1024 * 1024

// Extractor parses session transcript files (*.jsonl).
type Extractor struct{}

// New creates a new session transcript extractor.
func New() *Extractor {
	return &Extractor{}
}

// SourceType returns the format this extractor handles.
func (e *Extractor) SourceType() domain.SourceType {
	return domain.SourceTypeSession
}

// line is the subset of a transcript line the extractor cares about.
// Content is raw because its shape differs by message type: user
// messages carry a string, assistant messages carry a block list.
type line struct {
	Type    string `json:"type"`
	Message struct {
		Content json.RawMessage `json:"content"`
	} `json:"message"`
}

// contentBlock is one element of an assistant message's content list.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Extract stream-parses the transcript at path, keeping only human and
// assistant text. Malformed lines and non-text blocks are skipped, not
// fatal. Yields exactly one record named session/<dir>/<stem>.
func (e *Extractor) Extract(_ context.Context, path string) ([]domain.SourceRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening transcript: %w", err)
	}
	defer f.Close()

	var messages []domain.Message

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var l line
		if err := json.Unmarshal([]byte(raw), &l); err != nil {
			continue
		}

		switch l.Type {
		case "user":
			var content string
			if err := json.Unmarshal(l.Message.Content, &content); err != nil {
				continue // structured content, not plain user text
			}
			if strings.TrimSpace(content) != "" {
				messages = append(messages, domain.Message{Role: domain.RoleHuman, Text: content})
			}

		case "assistant":
			var blocks []contentBlock
			if err := json.Unmarshal(l.Message.Content, &blocks); err != nil {
				continue
			}
			var parts []string
			for _, b := range blocks {
				if b.Type == "text" && strings.TrimSpace(b.Text) != "" {
					parts = append(parts, b.Text)
				}
			}
			if len(parts) > 0 {
				messages = append(messages, domain.Message{
					Role: domain.RoleAssistant,
					Text: strings.Join(parts, "\n"),
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading transcript: %w", domain.ErrParse, err)
	}

	return []domain.SourceRecord{{
		Name:     displayName(path),
		Messages: messages,
	}}, nil
}

// displayName builds session/<project-dir>/<session-stem> from the
// transcript path.
func displayName(path string) string {
	dir := filepath.Base(filepath.Dir(path))
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return "session/" + dir + "/" + stem
}
