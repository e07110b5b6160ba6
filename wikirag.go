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


// Package wikirag assembles a retrieval-augmented generation system over a
// MediaWiki knowledge base: pages are fetched, chunked, embedded, and
// indexed; queries retrieve the most relevant chunks and ground an LLM
// answer, with a full trace written for every invocation.
package wikirag

import (
	"log/slog"
	"time"

	"github.com/poiesic/wikirag/ai"
	"github.com/poiesic/wikirag/ai/ollama"
	"github.com/poiesic/wikirag/ai/openai"
	"github.com/poiesic/wikirag/chunk"
	"github.com/poiesic/wikirag/config"
	"github.com/poiesic/wikirag/pipeline"
	"github.com/poiesic/wikirag/retrieval"
	"github.com/poiesic/wikirag/storage"
	"github.com/poiesic/wikirag/storage/badger"
	"github.com/poiesic/wikirag/trace"
	"github.com/poiesic/wikirag/wiki"
)

// App wires every component of the RAG system from one configuration.
type App struct {
	index     storage.VectorIndex
	pipeline  *pipeline.Pipeline
	tracer    *trace.Logger
	generator ai.Generator
	logger    *slog.Logger
}

// NewApp builds a fully wired application from the given configuration.
func NewApp(cfg *config.Config) (*App, error) {
	aiCfg := ai.NewConfig(
		ai.WithEmbeddingHost(cfg.Embedding.Host),
		ai.WithEmbeddingModel(cfg.Embedding.Model),
		ai.WithGenerationHost(cfg.Generation.Host),
		ai.WithGenerationModel(cfg.Generation.Model),
		ai.WithGenerationTimeout(time.Duration(cfg.Generation.TimeoutSecs)*time.Second),
	)
	aiCfg.Temperature = cfg.Generation.Temperature
	aiCfg.TopP = cfg.Generation.TopP
	aiCfg.MaxTokens = cfg.Generation.MaxTokens

	embedder, err := openai.NewEmbedder(aiCfg)
	if err != nil {
		return nil, err
	}

	generator, err := ollama.NewGenerator(aiCfg)
	if err != nil {
		return nil, err
	}

	index, err := badger.NewVectorIndex(cfg.Storage.Path, cfg.Storage.Collection)
	if err != nil {
		return nil, err
	}

	client := wiki.NewClient(cfg.Wiki.URL)
	ingester, err := wiki.NewIngester(client, wiki.WithMaxWorkers(cfg.Wiki.MaxWorkers))
	if err != nil {
		index.Close()
		return nil, err
	}

	splitter, err := chunk.NewSplitter(cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err != nil {
		index.Close()
		return nil, err
	}

	retriever, err := retrieval.NewRetriever(embedder, index, retrieval.WithTopK(cfg.Retrieval.TopK))
	if err != nil {
		index.Close()
		return nil, err
	}

	tracer, err := trace.NewLogger(cfg.Traces.Dir)
	if err != nil {
		index.Close()
		return nil, err
	}

	pipe, err := pipeline.New(ingester, splitter, embedder, index, retriever, generator, tracer)
	if err != nil {
		index.Close()
		return nil, err
	}

	return &App{
		index:     index,
		pipeline:  pipe,
		tracer:    tracer,
		generator: generator,
		logger:    slog.Default(),
	}, nil
}

// Pipeline returns the ingestion and query orchestrator.
func (a *App) Pipeline() *pipeline.Pipeline {
	return a.pipeline
}

// Traces returns the trace logger for inspection commands.
func (a *App) Traces() *trace.Logger {
	return a.tracer
}

// Generator exposes the LLM client for health checks.
func (a *App) Generator() ai.Generator {
	return a.generator
}

// Close releases the underlying storage.
func (a *App) Close() error {
	if err := a.index.Close(); err != nil {
		a.logger.Error("error closing vector index", "err", err)
		return err
	}
	return nil
}
