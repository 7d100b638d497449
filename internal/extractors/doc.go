// Package extractors provides implementations of the Extractor
// interface for the supported source formats. Each extractor knows how
// to turn one raw source into role-tagged text records; none of them
// touch persistence.
package extractors
