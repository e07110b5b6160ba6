package storage

import (
	"context"

	"github.com/poiesic/wikirag/core"
)

// Metric identifies the distance function a vector index ranks by.
type Metric int

const (
	// MetricCosine ranks by cosine distance (1 - cosine similarity).
	MetricCosine Metric = iota
)

func (m Metric) String() string {
	switch m {
	case MetricCosine:
		return "cosine"
	default:
		return "unknown"
	}
}

// Match is a single nearest-neighbor result. Distance is expressed in the
// index's metric; smaller is closer.
type Match struct {
	Chunk    core.IndexedChunk
	Distance float32
}

// VectorIndex stores embedded chunks and answers nearest-neighbor queries.
// Implementations must be thread-safe and support concurrent access.
type VectorIndex interface {
	// Add upserts chunks with their vectors, keyed by chunk ID. Re-adding
	// an existing ID overwrites it. chunks and vectors must have equal
	// length, and every vector must match the index dimension (learned
	// from the first vector ever added). Returns the number of chunks
	// written.
	Add(ctx context.Context, chunks []core.Chunk, vectors [][]float32) (int, error)

	// Query returns the k nearest chunks to the given vector, ordered by
	// ascending distance. A non-nil filter restricts candidates to one
	// entity type before ranking. An empty index returns an empty slice.
	Query(ctx context.Context, vector []float32, k int, filter *core.EntityType) ([]Match, error)

	// Metric reports the distance function Query ranks by.
	Metric() Metric

	// Count returns the number of chunks currently indexed.
	Count(ctx context.Context) (int, error)

	// Reset removes every chunk from the index.
	Reset(ctx context.Context) error

	// Close closes the index and releases resources.
	Close() error
}
