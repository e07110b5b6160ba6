// Package openai provides an ai.Embedder backed by any OpenAI-compatible
// embedding API (Ollama, LocalAI, vLLM, OpenAI itself).
package openai
