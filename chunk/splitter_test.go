package chunk

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/poiesic/wikirag/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSplitter(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		s, err := NewSplitter(1000, 200)
		require.NoError(t, err)
		assert.Equal(t, 1000, s.Size())
		assert.Equal(t, 200, s.Overlap())
	})

	t.Run("size equals overlap", func(t *testing.T) {
		_, err := NewSplitter(200, 200)
		assert.ErrorIs(t, err, ErrInvalidChunking)
	})

	t.Run("size below overlap", func(t *testing.T) {
		_, err := NewSplitter(100, 200)
		assert.ErrorIs(t, err, ErrInvalidChunking)
	})

	t.Run("zero size", func(t *testing.T) {
		_, err := NewSplitter(0, 0)
		assert.ErrorIs(t, err, ErrInvalidChunking)
	})

	t.Run("negative overlap", func(t *testing.T) {
		_, err := NewSplitter(100, -1)
		assert.ErrorIs(t, err, ErrInvalidChunking)
	})
}

func TestSplit_ShortText(t *testing.T) {
	s, err := NewSplitter(1000, 200)
	require.NoError(t, err)

	t.Run("returns single trimmed chunk", func(t *testing.T) {
		chunks := s.Split("  hello world  ")
		require.Len(t, chunks, 1)
		assert.Equal(t, "hello world", chunks[0])
	})

	t.Run("exactly size", func(t *testing.T) {
		text := strings.Repeat("a", 1000)
		chunks := s.Split(text)
		require.Len(t, chunks, 1)
		assert.Equal(t, text, chunks[0])
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, s.Split(""))
		assert.Empty(t, s.Split("   \n  "))
	})
}

func TestSplit_SentenceBoundaries(t *testing.T) {
	s, err := NewSplitter(1000, 200)
	require.NoError(t, err)

	// "A. B. " repeated 300 times = 1800 chars of two-letter sentences.
	text := strings.Repeat("A. B. ", 300)
	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)

	for i, c := range chunks {
		assert.LessOrEqual(t, len(c), 1000, "chunk %d exceeds window", i)
		// Every break lands after ". ", never mid-word.
		assert.Equal(t, byte('.'), c[len(c)-1], "chunk %d ends mid-sentence: %q", i, c[len(c)-4:])
	}
}

func TestSplit_OverlapBounded(t *testing.T) {
	s, err := NewSplitter(100, 20)
	require.NoError(t, err)

	// No boundary markers at all: windows are exact and overlap is exact.
	text := strings.Repeat("x", 350)
	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prev, cur := chunks[i-1], chunks[i]
		overlap := 20
		if len(cur) < overlap {
			overlap = len(cur)
		}
		assert.True(t, strings.HasSuffix(prev, cur[:overlap]),
			"chunk %d does not share its prefix with the previous suffix", i)
	}
}

func TestSplit_ReconstructsText(t *testing.T) {
	s, err := NewSplitter(100, 20)
	require.NoError(t, err)

	text := strings.Repeat("x", 350)
	chunks := s.Split(text)
	require.NotEmpty(t, chunks)

	// Concatenating chunks minus the overlap regions reconstructs the input.
	var b strings.Builder
	b.WriteString(chunks[0])
	for i := 1; i < len(chunks); i++ {
		b.WriteString(chunks[i][20:])
	}
	assert.Equal(t, text, b.String())
}

func TestSplit_MultibyteText(t *testing.T) {
	s, err := NewSplitter(100, 20)
	require.NoError(t, err)

	t.Run("window counts characters not bytes", func(t *testing.T) {
		// 100 three-byte runes fit in a single 100-character window.
		text := strings.Repeat("研", 100)
		chunks := s.Split(text)
		require.Len(t, chunks, 1)
		assert.Equal(t, text, chunks[0])
	})

	t.Run("cuts land on rune boundaries", func(t *testing.T) {
		text := strings.Repeat("研", 350)
		chunks := s.Split(text)
		require.Greater(t, len(chunks), 1)

		for i, c := range chunks {
			assert.True(t, utf8.ValidString(c), "chunk %d contains invalid UTF-8", i)
			assert.LessOrEqual(t, utf8.RuneCountInString(c), 100, "chunk %d exceeds window", i)
		}

		// Overlap is measured in characters as well.
		for i := 1; i < len(chunks); i++ {
			prev, cur := []rune(chunks[i-1]), []rune(chunks[i])
			assert.Equal(t, string(prev[len(prev)-20:]), string(cur[:20]),
				"chunk %d does not overlap the previous chunk by 20 characters", i)
		}
	})

	t.Run("boundary search in mixed text", func(t *testing.T) {
		text := strings.Repeat("研究の結果。です. ", 40)
		chunks := s.Split(text)
		require.Greater(t, len(chunks), 1)
		for i, c := range chunks {
			assert.True(t, utf8.ValidString(c), "chunk %d contains invalid UTF-8", i)
		}
	})
}

func TestSplit_Terminates(t *testing.T) {
	// Overlap just below size with dense boundaries: the advance guard must
	// still make progress.
	s, err := NewSplitter(100, 99)
	require.NoError(t, err)

	text := strings.Repeat("ab. ", 200)
	chunks := s.Split(text)
	assert.NotEmpty(t, chunks)
}

func TestSplitDocument(t *testing.T) {
	s, err := NewSplitter(50, 10)
	require.NoError(t, err)

	doc := &core.Document{
		PageID:     7,
		PageTitle:  "Some Article",
		EntityType: core.EntityArticle,
		Text:       strings.Repeat("sentence one. ", 20),
		SourceURL:  "http://wiki.local/index.php/Some_Article",
	}

	chunks := s.SplitDocument(doc)
	require.Greater(t, len(chunks), 1)

	for i, c := range chunks {
		assert.Equal(t, core.ChunkID(7, i), c.ChunkID)
		assert.Equal(t, i, c.ChunkIndex)
		assert.Equal(t, doc.PageTitle, c.PageTitle)
		assert.Equal(t, doc.EntityType, c.EntityType)
		assert.Equal(t, doc.SourceURL, c.SourceURL)
		assert.NoError(t, core.ValidateChunk(&c))
	}

	// Deterministic re-derivation.
	again := s.SplitDocument(doc)
	assert.Equal(t, chunks, again)
}
