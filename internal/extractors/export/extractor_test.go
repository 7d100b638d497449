package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/familiar-labs/knowledge-cli/internal/core/domain"
)

func writeExport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conversations.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtract_OneRecordPerConversation(t *testing.T) {
	path := writeExport(t, `[
		{"name":"First chat","chat_messages":[
			{"sender":"human","text":"hello"},
			{"sender":"assistant","text":"hi there"}
		]},
		{"name":"","chat_messages":[{"sender":"human","text":"solo"}]}
	]`)

	records, err := New().Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	if records[0].Name != "export: First chat" {
		t.Errorf("unexpected name %q", records[0].Name)
	}
	if records[0].Messages[0].Role != domain.RoleHuman {
		t.Errorf("expected human role, got %q", records[0].Messages[0].Role)
	}
	if records[0].Messages[1].Role != domain.RoleAssistant {
		t.Errorf("expected assistant role, got %q", records[0].Messages[1].Role)
	}
	if records[1].Name != "export: Untitled" {
		t.Errorf("unexpected fallback name %q", records[1].Name)
	}
}

func TestExtract_MalformedJSON(t *testing.T) {
	path := writeExport(t, `{"not":"an array"}`)

	_, err := New().Extract(context.Background(), path)
	if !errors.Is(err, domain.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestExtract_EmptyArray(t *testing.T) {
	path := writeExport(t, `[]`)

	records, err := New().Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestSourceType(t *testing.T) {
	if New().SourceType() != domain.SourceTypeExport {
		t.Error("wrong source type")
	}
}
