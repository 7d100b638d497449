package domain

// SourceType identifies the format a document was imported from.
// The set is closed; new formats are new extractor variants.
type SourceType string

const (
	// SourceTypeSession is a line-delimited JSON transcript of one
	// recorded session, with role-tagged messages.
	SourceTypeSession SourceType = "session"

	// SourceTypeExport is a JSON document containing exported
	// conversations, many per file.
	SourceTypeExport SourceType = "export"

	// SourceTypeFile is an arbitrary plain text file.
	SourceTypeFile SourceType = "file"
)

// Valid reports whether t is a recognised source type.
func (t SourceType) Valid() bool {
	switch t {
	case SourceTypeSession, SourceTypeExport, SourceTypeFile:
		return true
	}
	return false
}
