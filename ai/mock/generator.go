package mock

import (
	"context"

	"github.com/poiesic/wikirag/ai"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	GenerateFunc func(ctx context.Context, query, contextBlock string) *ai.GenerationResult

	// Connected controls the default CheckConnection answer.
	Connected bool

	// Models is the default ListModels answer.
	Models []string

	callCount int
}

// NewMockGenerator creates a mock generator that reports itself connected
// and answers with a fixed grounded-looking response.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		Connected: true,
		Models:    []string{"mock-model"},
	}
}

// Generate returns an injected or default deterministic result. The default
// keeps the contract of the real generator: FullPrompt and Model are always
// populated.
func (m *MockGenerator) Generate(ctx context.Context, query, contextBlock string) *ai.GenerationResult {
	m.callCount++

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, query, contextBlock)
	}

	return &ai.GenerationResult{
		Answer:     "Mock answer for: " + query,
		FullPrompt: contextBlock + "\n\nUSER QUESTION: " + query,
		Model:      "mock-model",
	}
}

// CheckConnection returns the configured Connected flag.
func (m *MockGenerator) CheckConnection(ctx context.Context) bool {
	return m.Connected
}

// ListModels returns the configured model list.
func (m *MockGenerator) ListModels(ctx context.Context) []string {
	return m.Models
}

// CallCount returns the number of Generate calls.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}
