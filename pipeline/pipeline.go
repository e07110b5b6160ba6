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


package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/wikirag/ai"
	"github.com/poiesic/wikirag/chunk"
	"github.com/poiesic/wikirag/core"
	"github.com/poiesic/wikirag/retrieval"
	"github.com/poiesic/wikirag/storage"
	"github.com/poiesic/wikirag/trace"
)

// embedBatchSize bounds how many chunk texts go to the embedder per call.
const embedBatchSize = 100

// DocumentSource supplies the documents an ingestion run indexes.
type DocumentSource interface {
	// FetchAllDocuments returns all documents plus the count of pages
	// that failed to fetch.
	FetchAllDocuments(ctx context.Context) ([]*core.Document, int, error)
}

// IngestStatus reports how an ingestion run ended.
type IngestStatus string

const (
	// IngestCompleted means documents were fetched and indexed.
	IngestCompleted IngestStatus = "completed"
	// IngestSkipped means the index already had chunks and forceReload was false.
	IngestSkipped IngestStatus = "skipped"
)

// IngestResult summarizes one ingestion run.
type IngestResult struct {
	Status           IngestStatus
	ExistingChunks   int
	DocumentsFetched int
	FailedPages      int
	ChunksCreated    int
	ChunksStored     int
	EntityCounts     map[string]int
	FetchSecs        float64
	EmbedSecs        float64
}

// QueryLatency breaks a query's wall time down by stage, in milliseconds.
type QueryLatency struct {
	RetrievalMS  float64
	GenerationMS float64
	TotalMS      float64
}

// QueryResult is the answer to one user query plus everything needed to
// audit it.
type QueryResult struct {
	Answer     string
	Sources    []core.RetrievalResult
	TraceID    string
	Model      string
	FullPrompt string
	Latency    QueryLatency
}

// Pipeline wires the RAG components together. It is safe for concurrent
// queries; at most one ingestion runs at a time.
type Pipeline struct {
	source    DocumentSource
	splitter  *chunk.Splitter
	embedder  ai.Embedder
	index     storage.VectorIndex
	retriever *retrieval.Retriever
	generator ai.Generator
	tracer    *trace.Logger
	logger    *slog.Logger

	ingestMu sync.Mutex
}

// New creates a pipeline from its components. All components are required.
func New(source DocumentSource, splitter *chunk.Splitter, embedder ai.Embedder, index storage.VectorIndex, retriever *retrieval.Retriever, generator ai.Generator, tracer *trace.Logger) (*Pipeline, error) {
	switch {
	case source == nil:
		return nil, ErrSourceRequired
	case splitter == nil:
		return nil, ErrSplitterRequired
	case embedder == nil:
		return nil, ErrEmbedderRequired
	case index == nil:
		return nil, ErrIndexRequired
	case retriever == nil:
		return nil, ErrRetrieverRequired
	case generator == nil:
		return nil, ErrGeneratorRequired
	case tracer == nil:
		return nil, ErrTracerRequired
	}

	return &Pipeline{
		source:    source,
		splitter:  splitter,
		embedder:  embedder,
		index:     index,
		retriever: retriever,
		generator: generator,
		tracer:    tracer,
		logger:    slog.Default().With("component", "pipeline"),
	}, nil
}

// Ingest fetches every document from the source, chunks and embeds them,
// and fills the vector index. When the index already holds chunks and
// forceReload is false the run is skipped. With forceReload the index is
// cleared first. Only one ingestion may run at a time.
func (p *Pipeline) Ingest(ctx context.Context, forceReload bool) (*IngestResult, error) {
	if !p.ingestMu.TryLock() {
		return nil, ErrIngestInProgress
	}
	defer p.ingestMu.Unlock()

	count, err := p.index.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count index: %w", err)
	}
	if count > 0 && !forceReload {
		p.logger.Info("index already populated, skipping ingestion", "chunks", count)
		return &IngestResult{Status: IngestSkipped, ExistingChunks: count}, nil
	}
	if forceReload {
		if err := p.index.Reset(ctx); err != nil {
			return nil, fmt.Errorf("reset index: %w", err)
		}
	}

	p.logger.Info("fetching documents from knowledge source")
	fetchStart := time.Now()
	documents, failed, err := p.source.FetchAllDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch documents: %w", err)
	}
	fetchSecs := time.Since(fetchStart).Seconds()
	p.logger.Info("documents fetched", "count", len(documents), "failed", failed, "secs", fmt.Sprintf("%.1f", fetchSecs))

	entityCounts := make(map[string]int)
	for _, doc := range documents {
		entityCounts[doc.EntityType.String()]++
	}

	var chunks []core.Chunk
	for _, doc := range documents {
		chunks = append(chunks, p.splitter.SplitDocument(doc)...)
	}
	p.logger.Info("documents chunked", "chunks", len(chunks))

	embedStart := time.Now()
	stored := 0
	for start := 0; start < len(chunks); start += embedBatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+embedBatchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}
		vectors, err := p.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed chunks: %w", err)
		}

		n, err := p.index.Add(ctx, batch, vectors)
		if err != nil {
			return nil, fmt.Errorf("index chunks: %w", err)
		}
		stored += n
	}
	embedSecs := time.Since(embedStart).Seconds()
	p.logger.Info("chunks embedded and stored", "stored", stored, "secs", fmt.Sprintf("%.1f", embedSecs))

	return &IngestResult{
		Status:           IngestCompleted,
		DocumentsFetched: len(documents),
		FailedPages:      failed,
		ChunksCreated:    len(chunks),
		ChunksStored:     stored,
		EntityCounts:     entityCounts,
		FetchSecs:        fetchSecs,
		EmbedSecs:        embedSecs,
	}, nil
}

// Query runs the retrieve, generate, and trace flow for one user question.
// topK <= 0 uses the retriever's default; a non-nil filter restricts
// retrieval to one entity type. The trace is written even when generation
// reports a failure answer.
func (p *Pipeline) Query(ctx context.Context, userQuery string, topK int, filter *core.EntityType) (*QueryResult, error) {
	retrieveStart := time.Now()
	sources, err := p.retriever.Retrieve(ctx, userQuery, topK, filter)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	retrievalMS := float64(time.Since(retrieveStart).Microseconds()) / 1000

	contextBlock := retrieval.FormatContext(sources)

	genStart := time.Now()
	genResult := p.generator.Generate(ctx, userQuery, contextBlock)
	generationMS := float64(time.Since(genStart).Microseconds()) / 1000

	traceID, err := p.tracer.LogTrace(userQuery, sources, genResult.FullPrompt,
		genResult.Answer, genResult.Model, retrievalMS, generationMS)
	if err != nil {
		return nil, fmt.Errorf("log trace: %w", err)
	}

	p.logger.Info("query complete",
		"sources", len(sources),
		"trace_id", traceID,
		"retrieval_ms", fmt.Sprintf("%.2f", retrievalMS),
		"generation_ms", fmt.Sprintf("%.2f", generationMS))

	return &QueryResult{
		Answer:     genResult.Answer,
		Sources:    sources,
		TraceID:    traceID,
		Model:      genResult.Model,
		FullPrompt: genResult.FullPrompt,
		Latency: QueryLatency{
			RetrievalMS:  retrievalMS,
			GenerationMS: generationMS,
			TotalMS:      retrievalMS + generationMS,
		},
	}, nil
}

// ChunkCount reports how many chunks the index currently holds.
func (p *Pipeline) ChunkCount(ctx context.Context) (int, error) {
	return p.index.Count(ctx)
}
