package badger

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/wikirag/core"
	"github.com/poiesic/wikirag/storage"
)

func newTestIndex(t *testing.T) storage.VectorIndex {
	t.Helper()
	idx, err := NewMemoryVectorIndex("test_collection")
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func testChunk(id string, entity core.EntityType) core.Chunk {
	return core.Chunk{
		ChunkID:    id,
		Text:       "text for " + id,
		PageTitle:  "Page " + id,
		EntityType: entity,
		SourceURL:  "http://wiki.local/index.php/" + id,
	}
}

func TestVectorIndex_AddAndQuery(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	chunks := []core.Chunk{
		testChunk("1_0", core.EntityArticle),
		testChunk("1_1", core.EntityArticle),
		testChunk("2_0", core.EntityAuthor),
	}
	vectors := [][]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0.9, 0.1, 0, 0},
	}

	n, err := idx.Add(ctx, chunks, vectors)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	matches, err := idx.Query(ctx, []float32{1, 0, 0, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "1_0", matches[0].Chunk.ChunkID, "exact match ranks first")
	assert.Equal(t, "2_0", matches[1].Chunk.ChunkID)
	assert.InDelta(t, 0.0, matches[0].Distance, 1e-6)
	assert.Less(t, matches[0].Distance, matches[1].Distance)
}

func TestVectorIndex_QueryRoundTripsChunkFields(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	chunk := testChunk("7_3", core.EntityInstitution)
	chunk.ChunkIndex = 3
	_, err := idx.Add(ctx, []core.Chunk{chunk}, [][]float32{{0.5, 0.5}})
	require.NoError(t, err)

	matches, err := idx.Query(ctx, []float32{0.5, 0.5}, 1, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	got := matches[0].Chunk
	assert.Equal(t, chunk, got.Chunk)
	assert.Equal(t, []float32{0.5, 0.5}, got.Vector)
}

func TestVectorIndex_UpsertOverwrites(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	chunk := testChunk("1_0", core.EntityArticle)
	_, err := idx.Add(ctx, []core.Chunk{chunk}, [][]float32{{1, 0}})
	require.NoError(t, err)

	chunk.Text = "updated text"
	_, err = idx.Add(ctx, []core.Chunk{chunk}, [][]float32{{0, 1}})
	require.NoError(t, err)

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "re-adding the same ID must not duplicate")

	matches, err := idx.Query(ctx, []float32{0, 1}, 1, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "updated text", matches[0].Chunk.Text)
	assert.InDelta(t, 0.0, matches[0].Distance, 1e-6)
}

func TestVectorIndex_EntityTypeFilter(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	chunks := []core.Chunk{
		testChunk("1_0", core.EntityArticle),
		testChunk("2_0", core.EntityAuthor),
		testChunk("3_0", core.EntityAuthor),
	}
	vectors := [][]float32{
		{1, 0},
		{0.6, 0.4},
		{0, 1},
	}
	_, err := idx.Add(ctx, chunks, vectors)
	require.NoError(t, err)

	author := core.EntityAuthor
	matches, err := idx.Query(ctx, []float32{1, 0}, 10, &author)
	require.NoError(t, err)
	require.Len(t, matches, 2, "filtering happens before ranking")
	for _, m := range matches {
		assert.Equal(t, core.EntityAuthor, m.Chunk.EntityType)
	}
	assert.Equal(t, "2_0", matches[0].Chunk.ChunkID)
}

func TestVectorIndex_EmptyIndexQuery(t *testing.T) {
	idx := newTestIndex(t)

	matches, err := idx.Query(context.Background(), []float32{1, 0}, 5, nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestVectorIndex_KLargerThanCount(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	_, err := idx.Add(ctx,
		[]core.Chunk{testChunk("1_0", core.EntityArticle)},
		[][]float32{{1, 0}})
	require.NoError(t, err)

	matches, err := idx.Query(ctx, []float32{1, 0}, 100, nil)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestVectorIndex_DimensionMismatch(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	_, err := idx.Add(ctx,
		[]core.Chunk{testChunk("1_0", core.EntityArticle)},
		[][]float32{{1, 0, 0}})
	require.NoError(t, err)

	t.Run("add", func(t *testing.T) {
		_, err := idx.Add(ctx,
			[]core.Chunk{testChunk("2_0", core.EntityArticle)},
			[][]float32{{1, 0}})
		assert.ErrorIs(t, err, storage.ErrDimensionMismatch)
	})

	t.Run("query", func(t *testing.T) {
		_, err := idx.Query(ctx, []float32{1, 0}, 5, nil)
		assert.ErrorIs(t, err, storage.ErrDimensionMismatch)
	})
}

func TestVectorIndex_LengthMismatch(t *testing.T) {
	idx := newTestIndex(t)

	_, err := idx.Add(context.Background(),
		[]core.Chunk{testChunk("1_0", core.EntityArticle)},
		[][]float32{{1, 0}, {0, 1}})
	assert.ErrorIs(t, err, storage.ErrLengthMismatch)
}

func TestVectorIndex_InvalidQuery(t *testing.T) {
	idx := newTestIndex(t)

	_, err := idx.Query(context.Background(), []float32{1}, 0, nil)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)

	_, err = idx.Query(context.Background(), nil, 5, nil)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestVectorIndex_Reset(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	_, err := idx.Add(ctx,
		[]core.Chunk{testChunk("1_0", core.EntityArticle)},
		[][]float32{{1, 0, 0}})
	require.NoError(t, err)

	require.NoError(t, idx.Reset(ctx))

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Dimension is relearned after a reset.
	_, err = idx.Add(ctx,
		[]core.Chunk{testChunk("2_0", core.EntityArticle)},
		[][]float32{{1, 0}})
	assert.NoError(t, err)
}

func TestVectorIndex_BatchedWrites(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	// More chunks than one write batch holds.
	var chunks []core.Chunk
	var vectors [][]float32
	for i := 0; i < 250; i++ {
		chunks = append(chunks, testChunk(fmt.Sprintf("%d_0", i), core.EntityArticle))
		vectors = append(vectors, []float32{float32(i), 1})
	}

	n, err := idx.Add(ctx, chunks, vectors)
	require.NoError(t, err)
	assert.Equal(t, 250, n)

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 250, count)
}

func TestVectorIndex_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	idx, err := NewVectorIndex(dir, "persist_test")
	require.NoError(t, err)

	_, err = idx.Add(ctx,
		[]core.Chunk{testChunk("1_0", core.EntityArticle)},
		[][]float32{{1, 0, 0}})
	require.NoError(t, err)
	require.NoError(t, idx.Close())

	reopened, err := NewVectorIndex(dir, "persist_test")
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Dimension survives the reopen.
	_, err = reopened.Add(ctx,
		[]core.Chunk{testChunk("2_0", core.EntityArticle)},
		[][]float32{{1, 0}})
	assert.ErrorIs(t, err, storage.ErrDimensionMismatch)
}

func TestVectorIndex_ClosedErrors(t *testing.T) {
	idx, err := NewMemoryVectorIndex("closed_test")
	require.NoError(t, err)
	require.NoError(t, idx.Close())

	_, err = idx.Count(context.Background())
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}
