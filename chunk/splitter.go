package chunk

import (
	"strings"

	"github.com/poiesic/wikirag/core"
)

// Boundary markers tried in priority order when shrinking a window to avoid
// splitting mid-sentence.
var boundaryMarkers = [][]rune{[]rune("\n"), []rune(". "), []rune("; ")}

// Splitter splits document text into overlapping, size-bounded segments.
type Splitter struct {
	size    int
	overlap int
}

// NewSplitter creates a splitter. size must be strictly greater than overlap,
// otherwise the advance step would never make progress; that combination is a
// configuration error.
func NewSplitter(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, ErrInvalidChunking
	}
	if overlap < 0 || size <= overlap {
		return nil, ErrInvalidChunking
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

// Size returns the configured window size in characters.
func (s *Splitter) Size() int { return s.size }

// Overlap returns the configured overlap in characters.
func (s *Splitter) Overlap() int { return s.overlap }

// Split breaks text into overlapping segments. Text no longer than the window
// size is returned as a single trimmed segment. Otherwise each window ends at
// the last boundary marker found in its final 20% when one exists past the
// window start, and the next window begins overlap characters before the
// previous one ended.
func (s *Splitter) Split(text string) []string {
	// Window arithmetic is in characters, not bytes, so multibyte text never
	// gets cut mid-rune.
	runes := []rune(text)
	textLen := len(runes)
	if textLen <= s.size {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}

	var chunks []string
	start := 0

	for start < textLen {
		end := start + s.size
		if end > textLen {
			end = textLen
		}

		// Not at the very end: prefer a sentence boundary. Search only the
		// last 20% of the window so chunks stay close to the target size.
		if end < textLen {
			searchStart := start + s.size*8/10
			for _, sep := range boundaryMarkers {
				pos := lastIndexRunes(runes[searchStart:end], sep)
				if pos < 0 {
					continue
				}
				pos += searchStart
				if pos > start {
					end = pos + len(sep)
					break
				}
			}
		}

		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			chunks = append(chunks, piece)
		}

		if end >= textLen {
			break
		}

		// A boundary-shrunk window can end before start+overlap when the
		// overlap is close to the window size; step past it rather than loop.
		next := end - s.overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// lastIndexRunes returns the index of the last occurrence of sep in window,
// or -1 if sep does not occur.
func lastIndexRunes(window, sep []rune) int {
	for i := len(window) - len(sep); i >= 0; i-- {
		match := true
		for j := range sep {
			if window[i+j] != sep[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// SplitDocument derives the ordered chunk set for a document. Chunk ids are
// the document's page id plus the chunk ordinal, so re-splitting the same
// document yields identical ids.
func (s *Splitter) SplitDocument(doc *core.Document) []core.Chunk {
	pieces := s.Split(doc.Text)
	chunks := make([]core.Chunk, 0, len(pieces))
	for i, text := range pieces {
		chunks = append(chunks, core.Chunk{
			ChunkID:    core.ChunkID(doc.PageID, i),
			Text:       text,
			PageTitle:  doc.PageTitle,
			EntityType: doc.EntityType,
			SourceURL:  doc.SourceURL,
			ChunkIndex: i,
		})
	}
	return chunks
}
