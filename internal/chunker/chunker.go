// Package chunker splits normalised document text into bounded-size,
// overlapping segments. Splitting respects markdown heading boundaries
// where possible and removes exact-duplicate segments by content hash.
// The chunker is pure and synchronous; it performs no I/O.
package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/0xKoller/orquel-sub001/internal/core/domain"
)

// DefaultMaxChunkSize is the default chunk budget in characters.
const DefaultMaxChunkSize = 1200

// DefaultOverlap is the default number of overlapping characters
// carried between consecutive chunks.
const DefaultOverlap = 150

// HashLength is the number of hex characters kept from the SHA-256
// digest when fingerprinting chunk content.
const HashLength = 16

// chunkNamespace is the fixed UUID namespace for deterministic chunk IDs.
var chunkNamespace = uuid.MustParse("6ba7b815-9dad-11d1-80b4-00c04fd430c8")

var (
	horizontalSpaceRE = regexp.MustCompile(`[^\S\n]+`)
	newlineRunRE      = regexp.MustCompile(`\n{3,}`)
	atxHeadingRE      = regexp.MustCompile(`^#{1,6}\s`)
)

// Chunker splits document content into overlapping chunks.
type Chunker struct {
	maxChunkSize    int
	overlap         int
	respectHeadings bool
}

// Option configures the chunker.
type Option func(*Chunker)

// WithMaxChunkSize sets the chunk budget in characters.
func WithMaxChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.maxChunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// WithRespectHeadings toggles splitting markdown sources at ATX headings.
func WithRespectHeadings(respect bool) Option {
	return func(c *Chunker) {
		c.respectHeadings = respect
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		maxChunkSize:    DefaultMaxChunkSize,
		overlap:         DefaultOverlap,
		respectHeadings: true,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't exceed chunk size
	if c.overlap >= c.maxChunkSize {
		c.overlap = c.maxChunkSize / 4
	}

	return c
}

// Normalize canonicalises text before chunking: outer whitespace is
// trimmed, CRLF becomes LF, runs of horizontal whitespace collapse to a
// single space, and 3+ consecutive newlines collapse to exactly 2.
// Lossy but deterministic, so cosmetically different copies of the same
// logical content normalise identically.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = horizontalSpaceRE.ReplaceAllString(text, " ")
	text = newlineRunRE.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Fingerprint returns the content hash used for deduplication: the
// first HashLength hex characters of the SHA-256 digest of text.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:HashLength]
}

// ChunkID derives a deterministic chunk identifier from the source
// title, the emission position, and the content hash.
func ChunkID(title string, index int, hash string) string {
	name := fmt.Sprintf("%s:%d:%s", title, index, hash)
	return uuid.NewSHA1(chunkNamespace, []byte(name)).String()
}

// Chunk splits text into chunks for the given source. It is total over
// any input: an empty string produces a single empty chunk, and
// pathological input with no break points degenerates to hard cuts.
func (c *Chunker) Chunk(text string, source *domain.SourceDescriptor) []domain.Chunk {
	if source == nil {
		source = &domain.SourceDescriptor{}
	}

	normalized := Normalize(text)

	// Short-circuit: content within budget is one chunk, no splitting.
	var segments []string
	switch {
	case len(normalized) <= c.maxChunkSize:
		segments = []string{normalized}
	case c.respectHeadings && source.Kind == domain.SourceKindMarkdown:
		for _, section := range splitSections(normalized) {
			if len(section) <= c.maxChunkSize {
				segments = append(segments, section)
				continue
			}
			segments = append(segments, c.splitBySize(section)...)
		}
	default:
		segments = c.splitBySize(normalized)
	}

	chunks := make([]domain.Chunk, 0, len(segments))
	seen := make(map[string]bool, len(segments))

	for i, segment := range segments {
		segment = strings.TrimSpace(segment)
		hash := Fingerprint(segment)

		// Exact duplicates are dropped, first occurrence wins.
		// Indices are not renumbered, so gaps may appear.
		if seen[hash] {
			continue
		}
		seen[hash] = true

		chunks = append(chunks, domain.Chunk{
			ID:   ChunkID(source.Title, i, hash),
			Text: segment,
			Metadata: domain.ChunkMetadata{
				Source:     source,
				ChunkIndex: i,
				Hash:       hash,
			},
		})
	}

	return chunks
}

// splitSections splits markdown text at ATX heading lines. Each heading
// starts a new section that includes the heading itself; content before
// the first heading forms its own leading section.
func splitSections(text string) []string {
	lines := strings.Split(text, "\n")

	var sections []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			sections = append(sections, current.String())
			current.Reset()
		}
	}

	for _, line := range lines {
		if atxHeadingRE.MatchString(line) {
			flush()
		}
		if current.Len() > 0 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
	}
	flush()

	return sections
}

// splitBySize performs sliding-window splitting. Break points prefer
// the last sentence boundary in the trailing 30% of the window, then
// the last space in the trailing 50%, then a hard cut at the window
// boundary. The start offset always advances by at least one character
// so pathological input cannot stall the loop.
func (c *Chunker) splitBySize(text string) []string {
	var segments []string

	start := 0
	for {
		if start+c.maxChunkSize >= len(text) {
			segments = append(segments, text[start:])
			return segments
		}

		windowEnd := start + c.maxChunkSize
		breakPoint := c.findBreakPoint(text, start, windowEnd)

		segments = append(segments, text[start:breakPoint])

		next := breakPoint - c.overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
}

// findBreakPoint locates where the window [start, windowEnd) should end.
func (c *Chunker) findBreakPoint(text string, start, windowEnd int) int {
	window := text[start:windowEnd]

	// Sentence boundary within the trailing 30% of the window.
	sentenceFloor := len(window) - c.maxChunkSize*30/100
	if idx := strings.LastIndex(window, ". "); idx >= sentenceFloor {
		return start + idx + 1 // keep the period
	}

	// Word boundary within the trailing 50%.
	wordFloor := len(window) - c.maxChunkSize*50/100
	if idx := strings.LastIndex(window, " "); idx >= wordFloor {
		return start + idx
	}

	// Hard cut, mid-word.
	return windowEnd
}
