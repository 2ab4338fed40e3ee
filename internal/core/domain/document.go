package domain

import (
	"strings"
	"time"
)

// DocumentStatus tracks a document through the interpretation lifecycle.
type DocumentStatus string

// Document lifecycle states.
const (
	// StatusSubmitted means the document text has been accepted but not processed.
	StatusSubmitted DocumentStatus = "submitted"

	// StatusProcessing means the pipeline is currently interpreting the document.
	StatusProcessing DocumentStatus = "processing"

	// StatusAwaitingClarification means processing is parked on open
	// clarification questions raised for thin input.
	StatusAwaitingClarification DocumentStatus = "awaiting_clarification"

	// StatusReadyForPreprocessing means a graph version has been committed
	// and the document can be handed to downstream stages.
	StatusReadyForPreprocessing DocumentStatus = "ready_for_preprocessing"

	// StatusFailed means processing failed unrecoverably; FailureReason is set.
	StatusFailed DocumentStatus = "failed"

	// StatusCancelled means the submission was withdrawn by the caller.
	StatusCancelled DocumentStatus = "cancelled"
)

// IsTerminal reports whether no further processing may happen in this state.
func (s DocumentStatus) IsTerminal() bool {
	return s == StatusFailed || s == StatusCancelled
}

// Valid reports whether s is a known lifecycle state.
func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusProcessing, StatusAwaitingClarification,
		StatusReadyForPreprocessing, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Document is a handle on one submitted project document.
// The normalized text is immutable once chunked; lifecycle fields
// are the only mutable state.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Name is the human-readable name (usually the source filename).
	Name string

	// Content is the normalized text as received from the ingestion layer.
	Content string

	// Status is the current lifecycle state.
	Status DocumentStatus

	// Domain is the classified domain label, set after chunking.
	Domain string

	// DomainConfidence is the classifier margin in [0,1].
	DomainConfidence float64

	// LatestVersion is the highest committed graph version, 0 before any build.
	LatestVersion int

	// ConfirmedVersion is the graph version accepted by the caller, 0 if none.
	ConfirmedVersion int

	// FailureReason explains a failed status, empty otherwise.
	FailureReason string

	// SubmittedAt is when the document was accepted.
	SubmittedAt time.Time

	// UpdatedAt is when lifecycle state last changed.
	UpdatedAt time.Time
}

// UsableLength returns the number of non-whitespace runes in the content.
// Lifecycle gates (insufficient input, clarification) measure this, not
// the raw length, so padding cannot defeat them.
func (d *Document) UsableLength() int {
	n := 0
	for _, r := range d.Content {
		if !strings.ContainsRune(" \t\r\n\v\f", r) {
			n++
		}
	}
	return n
}

// SourceLocation points a chunk back into the normalized source text.
type SourceLocation struct {
	// Offset is the rune offset of the chunk start in the document content.
	Offset int

	// Length is the chunk length in runes.
	Length int
}

// ChunkTagRequirementRich marks chunks whose text is dense with
// requirement-like phrasing. The retriever builds its query vector
// from these chunks first.
const ChunkTagRequirementRich = "requirement-rich"

// Chunk is a semantically coherent span of document text.
// Chunks are created once per document and never mutated.
type Chunk struct {
	// ID is unique per document and content-addressed, so identical
	// input reproduces identical chunk IDs.
	ID string

	// DocID links to the parent Document.
	DocID string

	// Sequence is the ordinal position within the document, from 0.
	Sequence int

	// Text is the chunk content.
	Text string

	// Source locates the chunk in the original text.
	Source SourceLocation

	// Embedding is the vector representation of Text.
	Embedding []float32

	// Tags carries semantic labels such as ChunkTagRequirementRich.
	Tags []string
}

// HasTag reports whether the chunk carries the given tag.
func (c *Chunk) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
