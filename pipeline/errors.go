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


package pipeline

import "errors"

var (
	// ErrIngestInProgress indicates another ingestion run holds the lock.
	ErrIngestInProgress = errors.New("ingestion already in progress")

	// ErrSourceRequired is returned when a document source is not provided.
	ErrSourceRequired = errors.New("document source is required")

	// ErrSplitterRequired is returned when a splitter is not provided.
	ErrSplitterRequired = errors.New("splitter is required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrIndexRequired is returned when a vector index is not provided.
	ErrIndexRequired = errors.New("vector index is required")

	// ErrRetrieverRequired is returned when a retriever is not provided.
	ErrRetrieverRequired = errors.New("retriever is required")

	// ErrGeneratorRequired is returned when a generator is not provided.
	ErrGeneratorRequired = errors.New("generator is required")

	// ErrTracerRequired is returned when a trace logger is not provided.
	ErrTracerRequired = errors.New("trace logger is required")
)
