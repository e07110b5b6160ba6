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


package ai

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for AI service clients.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server.
	EmbeddingHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "all-minilm", "text-embedding-3-small"
	EmbeddingModel string

	// GenerationHost is the base URL of the Ollama generation service.
	// Example: "http://localhost:11434"
	GenerationHost string

	// GenerationModel is the model identifier to use for answer generation.
	// Example: "llama3"
	GenerationModel string

	// Temperature controls decoding randomness. Kept low for factual grounding.
	Temperature float64

	// TopP is the nucleus sampling parameter.
	TopP float64

	// MaxTokens bounds the length of a generated answer.
	MaxTokens int

	// GenerationTimeout bounds one generation call. Expiry degrades to an
	// error answer instead of hanging the caller.
	GenerationTimeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithGenerationHost sets the generation service host URL.
func WithGenerationHost(host string) ConfigOption {
	return func(c *Config) {
		c.GenerationHost = host
	}
}

// WithGenerationModel sets the generation model identifier.
func WithGenerationModel(model string) ConfigOption {
	return func(c *Config) {
		c.GenerationModel = model
	}
}

// WithHost sets both the embedding and generation hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.GenerationHost = host
	}
}

// WithGenerationTimeout sets the bounded wait for one generation call.
func WithGenerationTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.GenerationTimeout = d
	}
}

// DefaultConfig returns a Config with sensible defaults for a local Ollama
// instance serving both embeddings and generation.
func DefaultConfig() *Config {
	return &Config{
		EmbeddingHost:     "http://localhost:11434/v1",
		EmbeddingModel:    "all-minilm",
		GenerationHost:    "http://localhost:11434",
		GenerationModel:   "llama3",
		Temperature:       0.3,
		TopP:              0.9,
		MaxTokens:         1024,
		GenerationTimeout: 120 * time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the provided
// options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form. The embedding
// host gains a /v1 suffix when missing, which OpenAI-compatible APIs
// (Ollama, LocalAI, vLLM, etc.) require; the generation host uses Ollama's
// native API and must not carry one.
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
		c.EmbeddingHost = c.EmbeddingHost + "/v1"
	}
	if c.GenerationHost != "" {
		c.GenerationHost = strings.TrimSuffix(c.GenerationHost, "/")
		c.GenerationHost = strings.TrimSuffix(c.GenerationHost, "/v1")
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.GenerationHost == "" {
		return errors.New("ai config: GenerationHost is required")
	}
	if c.GenerationModel == "" {
		return errors.New("ai config: GenerationModel is required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return errors.New("ai config: Temperature must be between 0 and 2")
	}
	if c.TopP <= 0 || c.TopP > 1 {
		return errors.New("ai config: TopP must be in (0, 1]")
	}
	if c.MaxTokens <= 0 {
		return errors.New("ai config: MaxTokens must be positive")
	}
	if c.GenerationTimeout <= 0 {
		return errors.New("ai config: GenerationTimeout must be positive")
	}
	return nil
}
