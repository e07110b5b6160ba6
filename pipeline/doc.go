// Package pipeline orchestrates the full RAG flow. Ingestion fetches pages
// from the knowledge source, chunks them, embeds the chunks, and fills the
// vector index. Queries retrieve the most relevant chunks, hand them to the
// generator as context, and record a complete trace of the invocation.
package pipeline
