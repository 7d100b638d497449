package driven

import (
	"context"

	"github.com/familiar-labs/knowledge-cli/internal/core/domain"
)

// Extractor converts one raw source into role-tagged records.
// Each source format (session transcript, conversation export, plain
// file) implements this interface; new formats are new variants, not
// new call sites.
//
// Extraction is pure: no persistence, no side effects.
type Extractor interface {
	// SourceType returns the format this extractor handles.
	SourceType() domain.SourceType

	// Extract parses the source at path. A transcript or plain file
	// yields exactly one record; an export yields one record per
	// conversation. Malformed content returns an error wrapping
	// domain.ErrParse.
	Extract(ctx context.Context, path string) ([]domain.SourceRecord, error)
}
