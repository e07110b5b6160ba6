// Package ai defines the interfaces for external AI services used by the
// RAG pipeline: text embedding and grounded answer generation.
//
// Both services are pluggable. The pipeline depends only on the Embedder and
// Generator interfaces; concrete clients live in the openai and ollama
// subpackages, and deterministic test doubles in mock.
package ai
