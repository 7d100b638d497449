package domain

import "strings"

// Role tags who produced a block of text within a source.
type Role string

const (
	// RoleHuman marks text written by the user.
	RoleHuman Role = "Human"

	// RoleAssistant marks text produced by the assistant.
	RoleAssistant Role = "Assistant"

	// RoleNone marks untagged text, e.g. the body of a plain file.
	RoleNone Role = ""
)

// Message is one role-tagged text block extracted from a source.
type Message struct {
	Role Role
	Text string
}

// SourceRecord is the ordered message sequence extracted from one
// logical source. A transcript file yields exactly one record; an
// export file yields one record per conversation it contains.
type SourceRecord struct {
	// Name is the display name for the document built from this record.
	Name string

	// Messages are the extracted blocks, in source order.
	Messages []Message
}

// CountRole returns how many messages carry the given role.
// Used for the minimum-signal filter before import.
func (r *SourceRecord) CountRole(role Role) int {
	n := 0
	for _, m := range r.Messages {
		if m.Role == role {
			n++
		}
	}
	return n
}

// Transcript renders the record as one logical document text. Tagged
// messages are prefixed with their role on its own line; untagged text
// passes through as-is. Blocks are joined by blank lines.
func (r *SourceRecord) Transcript() string {
	parts := make([]string, 0, len(r.Messages))
	for _, m := range r.Messages {
		if m.Role == RoleNone {
			parts = append(parts, m.Text)
			continue
		}
		parts = append(parts, "["+string(m.Role)+"]\n"+m.Text)
	}
	return strings.Join(parts, "\n\n")
}
