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


package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/poiesic/wikirag/ai"
	"github.com/poiesic/wikirag/core"
	"github.com/poiesic/wikirag/storage"
)

// NoResultsMessage is the context block produced when nothing relevant
// exists in the index. It stands in for retrieved content so the generator
// can tell the user the knowledge base has no answer.
const NoResultsMessage = "No relevant documents found in the knowledge base."

const defaultTopK = 5

// Retriever embeds user queries and finds the most similar chunks in the
// vector index.
type Retriever struct {
	embedder ai.Embedder
	index    storage.VectorIndex
	topK     int
	logger   *slog.Logger
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithTopK sets the default number of results when a query doesn't specify one.
func WithTopK(k int) RetrieverOption {
	return func(r *Retriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) RetrieverOption {
	return func(r *Retriever) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRetriever creates a retriever over the given embedder and index.
func NewRetriever(embedder ai.Embedder, index storage.VectorIndex, opts ...RetrieverOption) (*Retriever, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if index == nil {
		return nil, ErrIndexRequired
	}
	r := &Retriever{
		embedder: embedder,
		index:    index,
		topK:     defaultTopK,
		logger:   slog.Default().With("component", "retriever"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Retrieve embeds the query and returns the topK most similar chunks,
// ordered by descending similarity. topK <= 0 falls back to the retriever's
// default. A non-nil filter restricts results to one entity type.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int, filter *core.EntityType) ([]core.RetrievalResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if topK <= 0 {
		topK = r.topK
	}

	vector, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := r.index.Query(ctx, vector, topK, filter)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	metric := r.index.Metric()
	results := make([]core.RetrievalResult, len(matches))
	for i, m := range matches {
		results[i] = core.RetrievalResult{
			ChunkID:         m.Chunk.ChunkID,
			Text:            m.Chunk.Text,
			PageTitle:       m.Chunk.PageTitle,
			EntityType:      m.Chunk.EntityType,
			SourceURL:       m.Chunk.SourceURL,
			SimilarityScore: SimilarityFromDistance(metric, m.Distance),
		}
	}

	r.logger.Debug("retrieval complete", "query_len", len(query), "results", len(results))
	return results, nil
}

// FormatContext renders retrieval results into the context block handed to
// the generator. Sources are numbered from 1 in rank order.
func FormatContext(results []core.RetrievalResult) string {
	if len(results) == 0 {
		return NoResultsMessage
	}

	blocks := make([]string, len(results))
	for i, res := range results {
		blocks[i] = fmt.Sprintf("[Source %d] %s (Type: %s, Relevance: %.2f)\n%s",
			i+1, res.PageTitle, res.EntityType, res.SimilarityScore, res.Text)
	}
	return strings.Join(blocks, "\n\n---\n\n")
}

// SimilarityFromDistance converts an index distance into a similarity score
// in the metric's natural scale, rounded to 4 decimal places.
func SimilarityFromDistance(metric storage.Metric, distance float32) float32 {
	var similarity float64
	switch metric {
	case storage.MetricCosine:
		similarity = 1 - float64(distance)
	default:
		similarity = -float64(distance)
	}
	return float32(math.Round(similarity*10000) / 10000)
}
