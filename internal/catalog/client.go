// Package catalog implements the HTTP client for the external book-catalog
// source (an Aladin-style TTB API). The client is an explicitly constructed
// dependency, not a package-level singleton, so services can swap in a test
// double via the Source interface.
//
// The upstream is treated as unreliable: every field of an item record is
// optional, requests carry a short timeout, and callers decide whether a
// failure degrades to stale cache or surfaces as an error.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Sort orders accepted by the upstream search endpoint.
const (
	SortSalesPoint = "SalesPoint"
)

// Query types understood by the upstream list endpoint.
const (
	QueryBestseller = "Bestseller"
	QueryNewSpecial = "ItemNewSpecial"
)

// Item is one raw record returned by the upstream catalog. Any field may be
// absent; zero values are the defined fallbacks.
type Item struct {
	ItemID             int64  `json:"itemId"`
	ISBN               string `json:"isbn"`
	ISBN13             string `json:"isbn13"`
	Title              string `json:"title"`
	Author             string `json:"author"`
	Publisher          string `json:"publisher"`
	PubDate            string `json:"pubDate"`
	Description        string `json:"description"`
	Cover              string `json:"cover"`
	CategoryID         int    `json:"categoryId"`
	CategoryName       string `json:"categoryName"`
	MallType           string `json:"mallType"`
	BestRank           int    `json:"bestRank"`
	SalesPoint         int    `json:"salesPoint"`
	CustomerReviewRank int    `json:"customerReviewRank"`

	// SubInfo carries optional enrichments requested via OptResult.
	SubInfo *SubInfo `json:"subInfo,omitempty"`
}

// SubInfo holds the optional lookup enrichments (currently review excerpts).
type SubInfo struct {
	Reviews []ReviewExcerpt `json:"reviewList,omitempty"`
}

// ReviewExcerpt is a short reader-review headline attached to a lookup
// response.
type ReviewExcerpt struct {
	Title string `json:"title"`
}

// envelope is the common wrapper of all upstream responses.
type envelope struct {
	Items []Item `json:"item"`
}

// Source is the read interface services depend on. *Client implements it;
// tests substitute fakes.
type Source interface {
	// ItemList fetches up to maxResults records of the named list flavor.
	ItemList(ctx context.Context, queryType string, maxResults, start int) ([]Item, error)
	// ItemLookup fetches the detail record for one ISBN13, including review
	// excerpts. Returns ErrItemNotFound when the upstream knows no such book.
	ItemLookup(ctx context.Context, isbn13 string) (*Item, error)
	// ItemSearch runs a query against the upstream search endpoint.
	// queryType is "Keyword" or "Author"; sort may be empty.
	ItemSearch(ctx context.Context, query, queryType, sort string, maxResults, start int) ([]Item, error)
}

// ErrItemNotFound is returned by ItemLookup when the upstream response holds
// no item for the requested ISBN.
var ErrItemNotFound = fmt.Errorf("catalog: item not found")

// Config carries the endpoint and credential settings for Client.
type Config struct {
	TTBKey     string // upstream API key
	ListURL    string // list endpoint URL
	LookupURL  string // detail endpoint URL
	SearchURL  string // search endpoint URL
	APIVersion string // upstream API version string
	Timeout    time.Duration
	// MaxRPS throttles outbound calls; <= 0 disables throttling.
	MaxRPS float64
}

// Client talks to the external catalog over HTTP. Safe for concurrent use.
type Client struct {
	cfg     Config
	httpc   *http.Client
	limiter *rate.Limiter
}

// New builds a Client from cfg, applying a 10s default timeout.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	var lim *rate.Limiter
	if cfg.MaxRPS > 0 {
		lim = rate.NewLimiter(rate.Limit(cfg.MaxRPS), 1)
	}
	return &Client{
		cfg:     cfg,
		httpc:   &http.Client{Timeout: cfg.Timeout},
		limiter: lim,
	}
}

// ItemList implements Source.
func (c *Client) ItemList(ctx context.Context, queryType string, maxResults, start int) ([]Item, error) {
	q := c.baseQuery()
	q.Set("QueryType", queryType)
	q.Set("MaxResults", strconv.Itoa(maxResults))
	q.Set("start", strconv.Itoa(start))
	q.Set("SearchTarget", "Book")

	env, err := c.get(ctx, c.cfg.ListURL, q)
	if err != nil {
		return nil, err
	}
	return env.Items, nil
}

// ItemLookup implements Source.
func (c *Client) ItemLookup(ctx context.Context, isbn13 string) (*Item, error) {
	q := c.baseQuery()
	q.Set("ItemId", isbn13)
	q.Set("ItemIdType", "ISBN13")
	q.Set("OptResult", "reviewList,description")

	env, err := c.get(ctx, c.cfg.LookupURL, q)
	if err != nil {
		return nil, err
	}
	if len(env.Items) == 0 {
		return nil, ErrItemNotFound
	}
	it := env.Items[0]
	return &it, nil
}

// ItemSearch implements Source.
func (c *Client) ItemSearch(ctx context.Context, query, queryType, sort string, maxResults, start int) ([]Item, error) {
	q := c.baseQuery()
	q.Set("Query", query)
	q.Set("QueryType", queryType)
	q.Set("MaxResults", strconv.Itoa(maxResults))
	q.Set("start", strconv.Itoa(start))
	q.Set("SearchTarget", "Book")
	if sort != "" {
		q.Set("Sort", sort)
	}

	env, err := c.get(ctx, c.cfg.SearchURL, q)
	if err != nil {
		return nil, err
	}
	return env.Items, nil
}

// baseQuery returns the parameters shared by every upstream call.
func (c *Client) baseQuery() url.Values {
	q := url.Values{}
	q.Set("ttbkey", c.cfg.TTBKey)
	q.Set("Output", "JS")
	q.Set("Version", c.cfg.APIVersion)
	return q
}

// get performs one throttled GET and decodes the response envelope.
func (c *Client) get(ctx context.Context, rawURL string, q url.Values) (*envelope, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	res, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(res.Body, 4<<10))
		return nil, fmt.Errorf("catalog: upstream status %d", res.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("catalog: decode response: %w", err)
	}
	return &env, nil
}

// Cover500 upgrades an upstream thumbnail URL to the 500px rendition. URLs
// already pointing at /cover500/ pass through unchanged.
func Cover500(u string) string {
	if u == "" {
		return ""
	}
	if strings.Contains(u, "/cover500/") {
		return u
	}
	return strings.Replace(u, "/coversum/", "/cover500/", 1)
}

// ReviewTitles extracts the cleaned review headlines from a lookup item,
// dropping upstream tag markers and blank entries.
func ReviewTitles(it *Item) []string {
	if it == nil || it.SubInfo == nil {
		return nil
	}
	out := make([]string, 0, len(it.SubInfo.Reviews))
	for _, r := range it.SubInfo.Reviews {
		t := strings.TrimSpace(r.Title)
		t = strings.ReplaceAll(t, "[100자평]", "")
		t = strings.ReplaceAll(t, "[마이리뷰]", "")
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
