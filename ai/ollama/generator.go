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


package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/poiesic/wikirag/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

const probeTimeout = 5 * time.Second

// Generator implements ai.Generator against an Ollama server.
type Generator struct {
	client      llms.Model
	host        string
	model       string
	temperature float64
	topP        float64
	maxTokens   int
	timeout     time.Duration
	httpClient  *http.Client
	logger      *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := ollama.New(
		ollama.WithServerURL(config.GenerationHost),
		ollama.WithModel(config.GenerationModel),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client:      client,
		host:        config.GenerationHost,
		model:       config.GenerationModel,
		temperature: config.Temperature,
		topP:        config.TopP,
		maxTokens:   config.MaxTokens,
		timeout:     config.GenerationTimeout,
		httpClient:  &http.Client{Timeout: probeTimeout},
		logger:      slog.Default().With("component", "ollama-generator"),
	}, nil
}

// NewGenerator creates a new generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// Generate builds the grounding prompt and calls Ollama synchronously with
// streaming disabled. Service failures never surface as errors: the result's
// Answer carries a descriptive "Error: ..." message instead, and FullPrompt
// and Model stay populated for tracing.
func (g *Generator) Generate(ctx context.Context, query, contextBlock string) *ai.GenerationResult {
	fullPrompt := BuildPrompt(query, contextBlock)
	result := &ai.GenerationResult{
		FullPrompt: fullPrompt,
		Model:      g.model,
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	answer, err := llms.GenerateFromSinglePrompt(callCtx, g.client, fullPrompt,
		llms.WithTemperature(g.temperature),
		llms.WithTopP(g.topP),
		llms.WithMaxTokens(g.maxTokens),
	)
	if err != nil {
		g.logger.Error("generation failed", "model", g.model, "err", err)
		result.Answer = g.describeFailure(err)
		return result
	}

	if answer == "" {
		result.Answer = "Error: No response from LLM."
		return result
	}

	result.Answer = answer
	return result
}

// describeFailure maps a transport error to the user-visible answer string.
func (g *Generator) describeFailure(err error) string {
	var opErr *net.OpError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "Error: LLM request timed out. Please try again."
	case errors.As(err, &opErr):
		return fmt.Sprintf(
			"Error: Could not connect to Ollama server at %s. Please ensure Ollama is running.",
			g.host)
	default:
		return fmt.Sprintf("Error generating response: %v", err)
	}
}

// tagsResponse mirrors the Ollama /api/tags payload.
type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// CheckConnection reports whether the Ollama server answers its tags
// endpoint. Best-effort health probe.
func (g *Generator) CheckConnection(ctx context.Context) bool {
	resp, err := g.getTags(ctx)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// ListModels returns the model names available on the server, or an empty
// slice when the server cannot be reached or answers garbage.
func (g *Generator) ListModels(ctx context.Context) []string {
	resp, err := g.getTags(ctx)
	if err != nil {
		return []string{}
	}
	defer resp.Body.Close()

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		g.logger.Debug("failed to decode tags response", "err", err)
		return []string{}
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names
}

func (g *Generator) getTags(ctx context.Context) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.host+"/api/tags", nil)
	if err != nil {
		return nil, err
	}
	return g.httpClient.Do(req)
}
