// Package ollama provides the ai.Generator implementation backed by a local
// Ollama server, plus best-effort health probes against its tags endpoint.
package ollama
