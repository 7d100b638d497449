// Package chunker splits document text into bounded, search-friendly
// fragments.
package chunker

import "strings"

// DefaultLongParagraph is the length above which a paragraph is split
// into sentence-packed sub-fragments instead of being accumulated.
const DefaultLongParagraph = 800

// DefaultSentenceBuffer is the ceiling for sentence-packed sub-fragments.
const DefaultSentenceBuffer = 600

// DefaultSmallParagraph is the buffer size under which short paragraphs
// keep accumulating into one fragment.
const DefaultSmallParagraph = 100

// Splitter turns a block of text into an ordered sequence of fragments.
// Splitting is deterministic: the same input always yields the same
// fragments.
type Splitter struct {
	longParagraph  int
	sentenceBuffer int
	smallParagraph int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithLongParagraph sets the long-paragraph threshold in characters.
func WithLongParagraph(n int) Option {
	return func(s *Splitter) {
		if n > 0 {
			s.longParagraph = n
		}
	}
}

// WithSentenceBuffer sets the sentence-packing ceiling in characters.
func WithSentenceBuffer(n int) Option {
	return func(s *Splitter) {
		if n > 0 {
			s.sentenceBuffer = n
		}
	}
}

// WithSmallParagraph sets the small-paragraph threshold in characters.
func WithSmallParagraph(n int) Option {
	return func(s *Splitter) {
		if n > 0 {
			s.smallParagraph = n
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		longParagraph:  DefaultLongParagraph,
		sentenceBuffer: DefaultSentenceBuffer,
		smallParagraph: DefaultSmallParagraph,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Split breaks text into fragments. Empty or whitespace-only input
// yields no fragments. Fragments never exceed the sentence-buffer
// ceiling unless a single sentence unit alone already does, in which
// case it passes through unsplit.
func (s *Splitter) Split(text string) []string {
	var fragments []string
	var buffer string

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		switch {
		case len(para) > s.longParagraph:
			if buffer != "" {
				fragments = append(fragments, buffer)
				buffer = ""
			}
			fragments = append(fragments, s.splitSentences(para)...)

		case len(buffer)+len(para) < s.smallParagraph:
			if buffer != "" {
				buffer += "\n\n"
			}
			buffer += para

		default:
			if buffer != "" {
				fragments = append(fragments, buffer)
			}
			buffer = para
		}
	}

	if buffer != "" {
		fragments = append(fragments, buffer)
	}
	return fragments
}

// splitSentences greedily packs sentence-like units of one long
// paragraph into sub-fragments under the sentence-buffer ceiling. A
// unit is emitted on its own when adding the next unit would exceed the
// ceiling; a single oversized unit passes through untouched.
func (s *Splitter) splitSentences(para string) []string {
	sentences := strings.Split(strings.ReplaceAll(para, ". ", ".\n"), "\n")

	var packed []string
	var buf string
	for _, sent := range sentences {
		if len(buf)+len(sent) > s.sentenceBuffer {
			if buf != "" {
				packed = append(packed, buf)
			}
			buf = sent
		} else {
			if buf != "" {
				buf += " "
			}
			buf += sent
		}
	}
	if buf != "" {
		packed = append(packed, buf)
	}
	return packed
}
