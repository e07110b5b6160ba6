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


package wiki

import "errors"

var (
	// ErrSourceUnreachable indicates the page listing failed after all
	// retries. Fatal to an ingestion run: no partial page list is usable.
	ErrSourceUnreachable = errors.New("knowledge source unreachable")

	// ErrPageFetch indicates one page could not be retrieved or parsed
	// after retries. Never fatal to a batch.
	ErrPageFetch = errors.New("page fetch failed")

	// ErrFetcherRequired is returned when a page fetcher is not provided.
	ErrFetcherRequired = errors.New("page fetcher required")

	// ErrInvalidMaxAttempts indicates a non-positive retry attempt count.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")
)
