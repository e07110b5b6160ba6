// Package retrieval turns user queries into ranked knowledge-base chunks.
// It embeds the query, searches the vector index, converts distances into
// similarity scores, and formats the winners into the context block the
// generator consumes.
package retrieval
