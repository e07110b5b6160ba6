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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrInvalidEntityType indicates an entity type outside the closed set.
	ErrInvalidEntityType = errors.New("invalid entity type")

	// ErrEmptyText indicates the Text field is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrEmptyTitle indicates the PageTitle field is empty.
	ErrEmptyTitle = errors.New("page title cannot be empty")

	// ErrEmptyChunkID indicates the ChunkID field is empty.
	ErrEmptyChunkID = errors.New("chunk id cannot be empty")
)
