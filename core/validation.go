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

import "fmt"

// ValidateEntityType checks that t is one of the closed set of entity types.
func ValidateEntityType(t EntityType) error {
	switch t {
	case EntityUnknown, EntityArticle, EntityAuthor, EntityInstitution, EntityKeyword:
		return nil
	default:
		return ErrInvalidEntityType
	}
}

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - PageTitle must not be empty
//   - Text must not be empty
//   - EntityType must be within the closed set
//
// Metadata is not validated: an unknown-template page legitimately carries
// only the raw text field, and known templates may have every optional
// field absent.
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}
	if doc.PageTitle == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyTitle)
	}
	if doc.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyText)
	}
	if err := ValidateEntityType(doc.EntityType); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}
	if chunk.ChunkID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyChunkID)
	}
	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}
	if chunk.ChunkIndex < 0 {
		return fmt.Errorf("%w: chunk index must not be negative", ErrInvalidChunk)
	}
	return nil
}
