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


// Package storage provides the vector index abstraction for wikirag.
//
// This package defines the VectorIndex interface that decouples storage
// implementation from retrieval logic, allowing different backends
// (BadgerDB, in-memory, etc.) to be used interchangeably.
//
// # Constructor Return Type Pattern
//
// Public constructors return the storage.VectorIndex interface rather
// than a concrete type:
//
//	index, err := badger.NewVectorIndex(path, collection)  // returns storage.VectorIndex
//
// This keeps consumers decoupled from BadgerDB specifics and lets tests
// substitute mock or in-memory implementations without modification.
//
// # Usage
//
// Create a persistent index:
//
//	index, err := badger.NewVectorIndex("/path/to/db", "mediawiki_rag")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer index.Close()
//
// Use in tests with in-memory storage:
//
//	index, err := badger.NewMemoryVectorIndex("mediawiki_rag")
//
// # Thread Safety
//
// All VectorIndex implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
