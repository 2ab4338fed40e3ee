// Package semantic provides an embedding-driven chunker that splits where
// the meaning of the text shifts rather than at fixed character counts.
package semantic

import (
	"context"
	"fmt"
	"sync"
	"unicode"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/ports/driven"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/tokens"
	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/vectors"
)

// Ensure Chunker implements the interface.
var _ driven.Chunker = (*Chunker)(nil)

// Default configuration values.
const (
	DefaultSplitThreshold  = 0.35
	DefaultWindowSentences = 3
	DefaultMinChunkTokens  = 48
	DefaultMaxChunkTokens  = 512
	DefaultTagThreshold    = 0.62
	DefaultMinInputChars   = 80
)

// requirementPhrases anchor the requirement-rich tag: chunks whose
// embedding sits close to the centroid of these phrases get tagged.
var requirementPhrases = []string{
	"The system must allow users to sign in and manage their account.",
	"Users shall be able to create, edit, and delete records.",
	"The application must send a notification when the order status changes.",
	"The service should support exporting reports as spreadsheets.",
	"Administrators must be able to configure roles and permissions.",
	"The platform must process payments securely and log every transaction.",
	"As a user, I want to search the catalog so that I can find what I need.",
	"The API must validate input and return clear error messages.",
}

// Chunker splits document text into semantic chunks using window
// embeddings. It implements the driven.Chunker interface.
type Chunker struct {
	embedder        driven.EmbeddingService
	countTokens     func(string) int
	splitThreshold  float64
	windowSentences int
	minChunkTokens  int
	maxChunkTokens  int
	tagThreshold    float64
	minInputChars   int

	mu       sync.Mutex
	centroid []float32
}

// Option configures the semantic chunker.
type Option func(*Chunker)

// WithSplitThreshold sets the cosine distance above which a chunk
// boundary is placed.
func WithSplitThreshold(t float64) Option {
	return func(c *Chunker) {
		if t > 0 {
			c.splitThreshold = t
		}
	}
}

// WithWindowSentences sets the sliding window width in sentences.
func WithWindowSentences(w int) Option {
	return func(c *Chunker) {
		if w > 0 {
			c.windowSentences = w
		}
	}
}

// WithMinChunkTokens sets the merge threshold for small chunks.
func WithMinChunkTokens(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.minChunkTokens = n
		}
	}
}

// WithMaxChunkTokens sets the hard split cap for large chunks.
func WithMaxChunkTokens(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.maxChunkTokens = n
		}
	}
}

// WithTagThreshold sets the similarity to the requirement centroid above
// which a chunk is tagged requirement-rich.
func WithTagThreshold(t float64) Option {
	return func(c *Chunker) {
		if t > 0 {
			c.tagThreshold = t
		}
	}
}

// WithMinInputChars sets the usable-text floor below which chunking is
// rejected.
func WithMinInputChars(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.minInputChars = n
		}
	}
}

// WithTokenCounter replaces the token counting function.
func WithTokenCounter(count func(string) int) Option {
	return func(c *Chunker) {
		if count != nil {
			c.countTokens = count
		}
	}
}

// New creates a semantic chunker backed by the given embedding service.
func New(embedder driven.EmbeddingService, opts ...Option) *Chunker {
	c := &Chunker{
		embedder:        embedder,
		countTokens:     tokens.Count,
		splitThreshold:  DefaultSplitThreshold,
		windowSentences: DefaultWindowSentences,
		minChunkTokens:  DefaultMinChunkTokens,
		maxChunkTokens:  DefaultMaxChunkTokens,
		tagThreshold:    DefaultTagThreshold,
		minInputChars:   DefaultMinInputChars,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.maxChunkTokens <= c.minChunkTokens {
		c.maxChunkTokens = c.minChunkTokens * 4
	}

	return c
}

// Name returns the chunker name.
func (c *Chunker) Name() string {
	return "semantic"
}

// Chunk splits the document text into ordered, embedded, tagged chunks.
func (c *Chunker) Chunk(ctx context.Context, docID, text string) ([]domain.Chunk, error) {
	usable := usableRunes(text)
	if usable < c.minInputChars {
		return nil, &domain.InsufficientInputError{Have: usable, Need: c.minInputChars}
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil, &domain.InsufficientInputError{Have: usable, Need: c.minInputChars}
	}

	segments, err := c.segment(ctx, sentences)
	if err != nil {
		return nil, err
	}
	segments = c.mergeSmall(segments)
	segments = c.splitLarge(segments)

	chunks := make([]domain.Chunk, len(segments))
	texts := make([]string, len(segments))
	for i, seg := range segments {
		first := seg.sentences[0]
		last := seg.sentences[len(seg.sentences)-1]
		body := joinSentences(seg.sentences)
		texts[i] = body
		chunks[i] = domain.Chunk{
			ID:       domain.ChunkID(docID, i, body),
			DocID:    docID,
			Sequence: i,
			Text:     body,
			Source: domain.SourceLocation{
				Offset: first.Offset,
				Length: last.Offset + last.Length - first.Offset,
			},
		}
	}

	embeddings, err := c.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("embed chunks: got %d embeddings for %d chunks", len(embeddings), len(chunks))
	}

	centroid, err := c.requirementCentroid(ctx)
	if err != nil {
		return nil, fmt.Errorf("requirement centroid: %w", err)
	}

	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
		if vectors.Cosine(embeddings[i], centroid) >= c.tagThreshold {
			chunks[i].Tags = []string{domain.ChunkTagRequirementRich}
		}
	}

	return chunks, nil
}

// segment groups sentences into runs, breaking where consecutive window
// embeddings drift apart by more than the split threshold.
func (c *Chunker) segment(ctx context.Context, sentences []sentence) ([]segment, error) {
	n := len(sentences)
	if n == 1 {
		return []segment{c.newSegment(sentences)}, nil
	}

	windows := make([]string, n)
	for i := range sentences {
		end := i + c.windowSentences
		if end > n {
			end = n
		}
		windows[i] = joinSentences(sentences[i:end])
	}

	vecs, err := c.embedder.EmbedBatch(ctx, windows)
	if err != nil {
		return nil, fmt.Errorf("embed windows: %w", err)
	}
	if len(vecs) != n {
		return nil, fmt.Errorf("embed windows: got %d embeddings for %d windows", len(vecs), n)
	}

	var segments []segment
	start := 0
	for j := 0; j < n-1; j++ {
		lead := j - c.windowSentences + 1
		if lead < 0 {
			lead = 0
		}
		if vectors.Distance(vecs[lead], vecs[j+1]) > c.splitThreshold {
			segments = append(segments, c.newSegment(sentences[start:j+1]))
			start = j + 1
		}
	}
	segments = append(segments, c.newSegment(sentences[start:]))
	return segments, nil
}

// segment is a run of consecutive sentences forming one chunk candidate.
type segment struct {
	sentences []sentence
	tokens    int
}

func (c *Chunker) newSegment(ss []sentence) segment {
	return segment{sentences: ss, tokens: c.countTokens(joinSentences(ss))}
}

// mergeSmall folds segments under the minimum token count into their
// smaller neighbour until every segment is large enough or one remains.
func (c *Chunker) mergeSmall(segments []segment) []segment {
	for len(segments) > 1 {
		idx := -1
		for i, seg := range segments {
			if seg.tokens < c.minChunkTokens {
				idx = i
				break
			}
		}
		if idx == -1 {
			break
		}

		target := idx - 1
		switch {
		case idx == 0:
			target = 1
		case idx < len(segments)-1 && segments[idx+1].tokens < segments[idx-1].tokens:
			target = idx + 1
		}

		lo, hi := target, idx
		if idx < target {
			lo, hi = idx, target
		}

		// Segment sentence slices alias the shared sentence array, so the
		// merge must copy rather than append in place.
		merged := make([]sentence, 0, len(segments[lo].sentences)+len(segments[hi].sentences))
		merged = append(merged, segments[lo].sentences...)
		merged = append(merged, segments[hi].sentences...)
		segments[lo] = c.newSegment(merged)
		segments = append(segments[:lo+1], segments[lo+2:]...)
	}
	return segments
}

// splitLarge hard-splits segments over the maximum token count at sentence
// boundaries, and oversize single sentences near their midpoint.
func (c *Chunker) splitLarge(segments []segment) []segment {
	var out []segment
	for _, seg := range segments {
		if seg.tokens <= c.maxChunkTokens {
			out = append(out, seg)
			continue
		}

		var cur []sentence
		curTokens := 0
		flush := func() {
			if len(cur) > 0 {
				out = append(out, c.newSegment(cur))
				cur = nil
				curTokens = 0
			}
		}

		for _, s := range seg.sentences {
			st := c.countTokens(s.Text)
			if st > c.maxChunkTokens {
				flush()
				for _, piece := range c.splitOversize(s) {
					out = append(out, c.newSegment([]sentence{piece}))
				}
				continue
			}
			if curTokens+st > c.maxChunkTokens {
				flush()
			}
			cur = append(cur, s)
			curTokens += st
		}
		flush()
	}
	return out
}

// splitOversize divides a single sentence that alone exceeds the cap,
// cutting at the whitespace nearest its midpoint so offsets stay exact.
func (c *Chunker) splitOversize(s sentence) []sentence {
	if c.countTokens(s.Text) <= c.maxChunkTokens {
		return []sentence{s}
	}

	runes := []rune(s.Text)
	mid := len(runes) / 2
	cut := -1
	for d := 0; d <= mid; d++ {
		if mid-d > 0 && unicode.IsSpace(runes[mid-d]) {
			cut = mid - d
			break
		}
		if mid+d < len(runes) && unicode.IsSpace(runes[mid+d]) {
			cut = mid + d
			break
		}
	}
	if cut <= 0 || cut >= len(runes)-1 {
		cut = mid
	}

	left, okL := makeSentence(runes, 0, cut)
	right, okR := makeSentence(runes, cut, len(runes))
	if !okL || !okR {
		return []sentence{s}
	}
	left.Offset += s.Offset
	right.Offset += s.Offset

	return append(c.splitOversize(left), c.splitOversize(right)...)
}

// requirementCentroid embeds the anchor phrases once and caches their
// normalized mean. Failed attempts are retried on the next call.
func (c *Chunker) requirementCentroid(ctx context.Context) ([]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.centroid != nil {
		return c.centroid, nil
	}

	vecs, err := c.embedder.EmbedBatch(ctx, requirementPhrases)
	if err != nil {
		return nil, err
	}
	c.centroid = vectors.NormalizeL2(vectors.Mean(vecs))
	return c.centroid, nil
}

// usableRunes counts non-whitespace runes.
func usableRunes(text string) int {
	n := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
