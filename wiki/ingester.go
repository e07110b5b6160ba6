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

import (
	"context"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/wikirag/core"
)

const defaultMaxWorkers = 10

// PageFetcher abstracts the page source for the ingester so tests can
// substitute a fake wiki.
type PageFetcher interface {
	ListPages(ctx context.Context) ([]string, error)
	FetchPage(ctx context.Context, title string) (*core.Document, error)
}

// Ingester pulls every page from the knowledge source and turns each one
// into a Document, fetching pages concurrently on a bounded worker pool.
type Ingester struct {
	fetcher    PageFetcher
	maxWorkers int
	logger     *slog.Logger
}

// IngesterOption configures an Ingester.
type IngesterOption func(*Ingester)

// WithMaxWorkers bounds the number of concurrent page fetches.
func WithMaxWorkers(n int) IngesterOption {
	return func(ing *Ingester) {
		if n > 0 {
			ing.maxWorkers = n
		}
	}
}

// WithIngesterLogger sets a custom logger.
func WithIngesterLogger(logger *slog.Logger) IngesterOption {
	return func(ing *Ingester) {
		if logger != nil {
			ing.logger = logger
		}
	}
}

// NewIngester creates an ingester over the given page source.
func NewIngester(fetcher PageFetcher, opts ...IngesterOption) (*Ingester, error) {
	if fetcher == nil {
		return nil, ErrFetcherRequired
	}
	ing := &Ingester{
		fetcher:    fetcher,
		maxWorkers: defaultMaxWorkers,
		logger:     slog.Default().With("component", "ingester"),
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing, nil
}

// FetchAllDocuments lists every page and fetches them concurrently. Pages
// whose rendered text is empty are skipped silently; pages that fail to
// fetch are counted and logged but never abort the batch. Document order
// follows completion, not listing order.
func (ing *Ingester) FetchAllDocuments(ctx context.Context) ([]*core.Document, int, error) {
	titles, err := ing.fetcher.ListPages(ctx)
	if err != nil {
		return nil, 0, err
	}

	pool, err := ants.NewPool(ing.maxWorkers)
	if err != nil {
		return nil, 0, err
	}
	defer pool.Release()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		docs   []*core.Document
		failed int
	)

	for _, title := range titles {
		wg.Add(1)
		title := title
		submitErr := pool.Submit(func() {
			defer wg.Done()

			doc, err := ing.fetcher.FetchPage(ctx, title)
			if err != nil {
				ing.logger.Warn("page fetch failed", "title", title, "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			if doc.Text == "" {
				return
			}

			mu.Lock()
			docs = append(docs, doc)
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			failed++
			mu.Unlock()
		}
	}

	wg.Wait()

	ing.logger.Info("document fetch complete",
		"pages", len(titles),
		"documents", len(docs),
		"failed", failed)
	return docs, failed, nil
}
