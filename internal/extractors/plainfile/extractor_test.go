package plainfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/familiar-labs/knowledge-cli/internal/core/domain"
)

func TestExtract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.md")
	if err := os.WriteFile(path, []byte("Line one.\n\nLine two."), 0o644); err != nil {
		t.Fatal(err)
	}

	records, err := New().Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}

	rec := records[0]
	if rec.Name != "notes.md" {
		t.Errorf("unexpected name %q", rec.Name)
	}
	if len(rec.Messages) != 1 {
		t.Fatalf("expected one message, got %d", len(rec.Messages))
	}
	if rec.Messages[0].Role != domain.RoleNone {
		t.Errorf("expected untagged role, got %q", rec.Messages[0].Role)
	}
	if rec.Messages[0].Text != "Line one.\n\nLine two." {
		t.Errorf("unexpected text %q", rec.Messages[0].Text)
	}
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := New().Extract(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSourceType(t *testing.T) {
	if New().SourceType() != domain.SourceTypeFile {
		t.Error("wrong source type")
	}
}
