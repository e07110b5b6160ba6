// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/wikirag/core"
	"github.com/poiesic/wikirag/storage"
)

// writeBatchSize bounds how many chunks go into one write transaction.
const writeBatchSize = 100

// vectorIndex implements storage.VectorIndex on top of BadgerDB. Chunks are
// stored as MUS-encoded values under per-collection keys; queries do a full
// scan and rank by cosine distance.
type vectorIndex struct {
	backend    *Backend
	collection string
	logger     *slog.Logger

	mu        sync.Mutex
	dimension int // 0 until the first vector is stored
	ownsDB    bool
}

// NewVectorIndex opens a persistent vector index stored at path.
func NewVectorIndex(path, collection string) (storage.VectorIndex, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return newVectorIndex(backend, collection, true)
}

// NewVectorIndexWithBackend creates a vector index over an existing backend.
// The caller retains ownership of the backend.
func NewVectorIndexWithBackend(backend *Backend, collection string) (storage.VectorIndex, error) {
	return newVectorIndex(backend, collection, false)
}

func newVectorIndex(backend *Backend, collection string, ownsDB bool) (*vectorIndex, error) {
	idx := &vectorIndex{
		backend:    backend,
		collection: collection,
		logger:     slog.Default().With("component", "vector-index"),
		ownsDB:     ownsDB,
	}
	if err := idx.loadDimension(); err != nil {
		if ownsDB {
			backend.Close()
		}
		return nil, err
	}
	return idx, nil
}

func (v *vectorIndex) makeChunkKey(chunkID string) []byte {
	return []byte("idxchu:" + v.collection + ":" + chunkID)
}

func (v *vectorIndex) chunkPrefix() []byte {
	return []byte("idxchu:" + v.collection + ":")
}

func (v *vectorIndex) dimensionKey() []byte {
	return []byte("idxdim:" + v.collection)
}

// loadDimension restores the learned vector dimension after a reopen.
func (v *vectorIndex) loadDimension() error {
	return v.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(v.dimensionKey())
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) == 8 {
				v.dimension = int(binary.BigEndian.Uint64(val))
			}
			return nil
		})
	}, false)
}

// Add implements storage.VectorIndex.
func (v *vectorIndex) Add(ctx context.Context, chunks []core.Chunk, vectors [][]float32) (int, error) {
	if v.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}
	if len(chunks) != len(vectors) {
		return 0, fmt.Errorf("%w: %d chunks, %d vectors", storage.ErrLengthMismatch, len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	// Validate every vector before writing anything.
	for i, vec := range vectors {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if len(vec) == 0 {
			return 0, fmt.Errorf("%w: empty vector for chunk %s", storage.ErrDimensionMismatch, chunks[i].ChunkID)
		}
		if v.dimension == 0 {
			v.dimension = len(vec)
		}
		if len(vec) != v.dimension {
			return 0, fmt.Errorf("%w: chunk %s has dimension %d, index has %d",
				storage.ErrDimensionMismatch, chunks[i].ChunkID, len(vec), v.dimension)
		}
	}

	written := 0
	for start := 0; start < len(chunks); start += writeBatchSize {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		end := min(start+writeBatchSize, len(chunks))

		err := v.backend.WithTx(func(tx *badger.Txn) error {
			for i := start; i < end; i++ {
				indexed := &core.IndexedChunk{Chunk: chunks[i], Vector: vectors[i]}
				if err := tx.Set(v.makeChunkKey(chunks[i].ChunkID), storage.MarshalIndexedChunk(indexed)); err != nil {
					return err
				}
			}
			dim := make([]byte, 8)
			binary.BigEndian.PutUint64(dim, uint64(v.dimension))
			if err := tx.Set(v.dimensionKey(), dim); err != nil {
				return err
			}
			return tx.Commit()
		}, true)
		if err != nil {
			return written, err
		}
		written = end
	}

	v.logger.Debug("chunks indexed", "collection", v.collection, "count", written)
	return written, nil
}

// Query implements storage.VectorIndex.
func (v *vectorIndex) Query(ctx context.Context, vector []float32, k int, filter *core.EntityType) ([]storage.Match, error) {
	if v.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", storage.ErrInvalidQuery, k)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", storage.ErrInvalidQuery)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v.mu.Lock()
	dimension := v.dimension
	v.mu.Unlock()
	if dimension != 0 && len(vector) != dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, index has %d",
			storage.ErrDimensionMismatch, len(vector), dimension)
	}

	matches := []storage.Match{}
	err := v.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = v.chunkPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunk *core.IndexedChunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalIndexedChunk(val)
				return err
			})
			if err != nil {
				return err
			}

			// Filter before ranking so k is spent on matching chunks only.
			if filter != nil && chunk.EntityType != *filter {
				continue
			}

			matches = append(matches, storage.Match{
				Chunk:    *chunk,
				Distance: cosineDistance(vector, chunk.Vector),
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Stable sort keeps iteration order among equal distances.
	slices.SortStableFunc(matches, func(a, b storage.Match) int {
		if a.Distance < b.Distance {
			return -1
		}
		if a.Distance > b.Distance {
			return 1
		}
		return 0
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Metric implements storage.VectorIndex.
func (v *vectorIndex) Metric() storage.Metric {
	return storage.MetricCosine
}

// Count implements storage.VectorIndex.
func (v *vectorIndex) Count(ctx context.Context) (int, error) {
	if v.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count := 0
	err := v.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = v.chunkPrefix()
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Reset implements storage.VectorIndex.
func (v *vectorIndex) Reset(ctx context.Context) error {
	if v.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.backend.DropPrefix(v.chunkPrefix()); err != nil {
		return err
	}
	if err := v.backend.DropPrefix(v.dimensionKey()); err != nil {
		return err
	}
	v.dimension = 0

	v.logger.Info("index reset", "collection", v.collection)
	return nil
}

// Close implements storage.VectorIndex.
func (v *vectorIndex) Close() error {
	if !v.ownsDB {
		return nil
	}
	return v.backend.Close()
}

// cosineDistance computes 1 - cosine similarity. Zero-norm vectors are
// maximally distant.
func cosineDistance(a, b []float32) float32 {
	var dot, normA, normB float64
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return float32(1 - dot/(math.Sqrt(normA)*math.Sqrt(normB)))
}
