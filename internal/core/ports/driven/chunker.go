package driven

// Chunker splits one block of text into bounded fragments, in order.
// Splitting must be deterministic.
type Chunker interface {
	Split(text string) []string
}
