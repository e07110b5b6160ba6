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


package trace

import (
	"encoding/json"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/poiesic/wikirag/core"
)

const (
	previewLength    = 300
	defaultListLimit = 20
	tracePrefix      = "trace_"
	traceSuffix      = ".json"
)

// RetrievedDocument records one retrieval hit inside a trace. Content is
// truncated to a preview so traces stay small.
type RetrievedDocument struct {
	ChunkID         string  `json:"chunk_id"`
	SourcePage      string  `json:"source_page"`
	EntityType      string  `json:"entity_type"`
	SourceURL       string  `json:"source_url"`
	SimilarityScore float32 `json:"similarity_score"`
	ContentPreview  string  `json:"content_preview"`
}

// Latency breaks a query's wall time down by stage, in milliseconds.
type Latency struct {
	Retrieval  float64 `json:"retrieval"`
	Generation float64 `json:"generation"`
	Total      float64 `json:"total"`
}

// Trace is the complete record of one pipeline query: what was asked, what
// was retrieved, the exact prompt, and what came back.
type Trace struct {
	TraceID             string              `json:"trace_id"`
	Timestamp           time.Time           `json:"timestamp"`
	UserQuery           string              `json:"user_query"`
	RetrievedDocuments  []RetrievedDocument `json:"retrieved_documents"`
	ConstructedPrompt   string              `json:"constructed_prompt"`
	LLMResponse         string              `json:"llm_response"`
	ModelUsed           string              `json:"model_used"`
	LatencyMS           Latency             `json:"latency_ms"`
	NumSourcesRetrieved int                 `json:"num_sources_retrieved"`
}

// Summary is the listing view of a trace.
type Summary struct {
	TraceID        string    `json:"trace_id"`
	Timestamp      time.Time `json:"timestamp"`
	UserQuery      string    `json:"user_query"`
	NumSources     int       `json:"num_sources"`
	TotalLatencyMS float64   `json:"total_latency_ms"`
}

// Logger persists one JSON file per pipeline invocation, named by trace ID.
type Logger struct {
	dir    string
	logger *slog.Logger
}

// NewLogger creates a trace logger writing into dir, creating it if needed.
func NewLogger(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Logger{
		dir:    dir,
		logger: slog.Default().With("component", "trace-logger"),
	}, nil
}

// LogTrace saves a complete trace and returns its generated ID.
func (l *Logger) LogTrace(userQuery string, docs []core.RetrievalResult, prompt, response, model string, retrievalMS, generationMS float64) (string, error) {
	traceID := uuid.NewString()

	retrieved := make([]RetrievedDocument, len(docs))
	for i, doc := range docs {
		retrieved[i] = RetrievedDocument{
			ChunkID:         doc.ChunkID,
			SourcePage:      doc.PageTitle,
			EntityType:      doc.EntityType.String(),
			SourceURL:       doc.SourceURL,
			SimilarityScore: doc.SimilarityScore,
			ContentPreview:  preview(doc.Text),
		}
	}

	t := Trace{
		TraceID:            traceID,
		Timestamp:          time.Now().UTC(),
		UserQuery:          userQuery,
		RetrievedDocuments: retrieved,
		ConstructedPrompt:  prompt,
		LLMResponse:        response,
		ModelUsed:          model,
		LatencyMS: Latency{
			Retrieval:  round2(retrievalMS),
			Generation: round2(generationMS),
			Total:      round2(retrievalMS + generationMS),
		},
		NumSourcesRetrieved: len(docs),
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(l.tracePath(traceID), data, 0644); err != nil {
		return "", err
	}

	l.logger.Debug("trace saved", "trace_id", traceID)
	return traceID, nil
}

// GetTrace loads a trace by ID. Returns nil without error when no trace
// with that ID exists.
func (l *Logger) GetTrace(traceID string) (*Trace, error) {
	data, err := os.ReadFile(l.tracePath(traceID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var t Trace
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTraces returns summaries of the most recent traces, newest first.
// Corrupt trace files are skipped. limit <= 0 uses the default of 20.
func (l *Logger) ListTraces(limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, err
	}

	type fileInfo struct {
		path  string
		mtime time.Time
	}
	var files []fileInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, tracePrefix) || !strings.HasSuffix(name, traceSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, fileInfo{
			path:  filepath.Join(l.dir, name),
			mtime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].mtime.After(files[j].mtime)
	})

	var summaries []Summary
	for _, f := range files {
		if len(summaries) >= limit {
			break
		}
		data, err := os.ReadFile(f.path)
		if err != nil {
			continue
		}
		var t Trace
		if err := json.Unmarshal(data, &t); err != nil {
			l.logger.Warn("skipping corrupt trace file", "path", f.path)
			continue
		}
		summaries = append(summaries, Summary{
			TraceID:        t.TraceID,
			Timestamp:      t.Timestamp,
			UserQuery:      t.UserQuery,
			NumSources:     t.NumSourcesRetrieved,
			TotalLatencyMS: t.LatencyMS.Total,
		})
	}
	return summaries, nil
}

// TraceCount returns the total number of stored traces.
func (l *Logger) TraceCount() (int, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && strings.HasPrefix(name, tracePrefix) && strings.HasSuffix(name, traceSuffix) {
			count++
		}
	}
	return count, nil
}

func (l *Logger) tracePath(traceID string) string {
	return filepath.Join(l.dir, tracePrefix+traceID+traceSuffix)
}

// preview truncates text to the preview length, by characters not bytes.
func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLength {
		return text
	}
	return string(runes[:previewLength])
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
