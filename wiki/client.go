package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/poiesic/wikirag/core"
)

const (
	listPageSize       = "500"
	defaultMaxAttempts = 3
	defaultBaseDelay   = time.Second
	defaultHTTPTimeout = 30 * time.Second
)

// Client is a read-only MediaWiki API client. It lists pages and fetches
// wikitext; every network call goes through the shared retry policy.
type Client struct {
	baseURL     string
	apiURL      string
	httpClient  *http.Client
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithRetryPolicy sets the bounded retry policy for all network calls.
func WithRetryPolicy(maxAttempts int, baseDelay time.Duration) ClientOption {
	return func(c *Client) {
		if maxAttempts > 0 {
			c.maxAttempts = maxAttempts
		}
		if baseDelay > 0 {
			c.baseDelay = baseDelay
		}
	}
}

// WithClientLogger sets a custom logger.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client for the MediaWiki instance at baseURL
// (e.g. "http://wiki.local:8080"; the api.php endpoint is derived from it).
func NewClient(baseURL string, opts ...ClientOption) *Client {
	baseURL = strings.TrimSuffix(baseURL, "/")
	c := &Client{
		baseURL:     baseURL,
		apiURL:      baseURL + "/api.php",
		httpClient:  &http.Client{Timeout: defaultHTTPTimeout},
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		logger:      slog.Default().With("component", "wiki-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type allPagesResponse struct {
	Query struct {
		AllPages []struct {
			Title string `json:"title"`
		} `json:"allpages"`
	} `json:"query"`
	Continue *struct {
		APContinue string `json:"apcontinue"`
	} `json:"continue"`
}

type parsePageResponse struct {
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
	Parse struct {
		Title    string `json:"title"`
		PageID   int    `json:"pageid"`
		Wikitext struct {
			Text string `json:"*"`
		} `json:"wikitext"`
	} `json:"parse"`
}

// ListPages retrieves all page titles via the allpages API, following
// continuation tokens until the listing is exhausted. One outstanding
// request at a time. A batch that fails after all retries aborts the whole
// listing: a partial page list is not usable.
func (c *Client) ListPages(ctx context.Context) ([]string, error) {
	var titles []string
	continueToken := ""

	for {
		params := url.Values{
			"action":  {"query"},
			"list":    {"allpages"},
			"aplimit": {listPageSize},
			"format":  {"json"},
		}
		if continueToken != "" {
			params.Set("apcontinue", continueToken)
		}

		var batch allPagesResponse
		err := RetryWithBackoff(ctx, func() error {
			// A failed attempt can leave partially decoded fields behind;
			// start every attempt from a zero value.
			batch = allPagesResponse{}
			return c.getJSON(ctx, params, &batch)
		}, c.maxAttempts, c.baseDelay)
		if err != nil {
			return nil, fmt.Errorf("%w: cannot list pages at %s: %v", ErrSourceUnreachable, c.apiURL, err)
		}

		for _, p := range batch.Query.AllPages {
			titles = append(titles, p.Title)
		}

		if batch.Continue == nil || batch.Continue.APContinue == "" {
			break
		}
		continueToken = batch.Continue.APContinue
	}

	c.logger.Info("page listing complete", "pages", len(titles))
	return titles, nil
}

// FetchPage retrieves a page's wikitext and parses it into a Document.
// Transport failures are retried with backoff; an exhausted retry budget or
// an API-level error yields ErrPageFetch, which callers count but never
// treat as fatal.
func (c *Client) FetchPage(ctx context.Context, title string) (*core.Document, error) {
	params := url.Values{
		"action": {"parse"},
		"page":   {title},
		"prop":   {"wikitext"},
		"format": {"json"},
	}

	var resp parsePageResponse
	err := RetryWithBackoff(ctx, func() error {
		resp = parsePageResponse{}
		return c.getJSON(ctx, params, &resp)
	}, c.maxAttempts, c.baseDelay)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPageFetch, title, err)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrPageFetch, title, resp.Error.Info)
	}

	wikitext := resp.Parse.Wikitext.Text
	entity, meta := ParseTemplate(wikitext)

	return &core.Document{
		PageID:     resp.Parse.PageID,
		PageTitle:  title,
		EntityType: entity,
		Metadata:   meta,
		Text:       RenderText(entity, meta, title),
		SourceURL:  c.pageURL(title),
	}, nil
}

// pageURL links back to the human-readable wiki page.
func (c *Client) pageURL(title string) string {
	return c.baseURL + "/index.php/" + strings.ReplaceAll(title, " ", "_")
}

func (c *Client) getJSON(ctx context.Context, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
