// Package tmdb is a client for the metadata endpoints this service uses:
// search, title details, and franchise collections.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"entracker/pkg/httpx"
)

var (
	// ErrUpstream indicates the metadata service was unreachable or answered
	// with an unexpected status.
	ErrUpstream = errors.New("metadata service unavailable")
	// ErrNotFound indicates the metadata service has no matching entity.
	ErrNotFound = errors.New("not found in metadata service")
)

// Kind selects which half of the metadata API a request targets.
type Kind string

const (
	KindMovie Kind = "movie"
	KindTV    Kind = "tv"
)

type Client struct {
	baseURL string
	apiKey  string
	http    httpx.HTTPClient
}

type Option func(*Client)

// WithHTTPClient overrides the transport. Mostly for tests.
func WithHTTPClient(client httpx.HTTPClient) Option {
	return func(c *Client) {
		c.http = client
	}
}

// New creates a metadata client. A missing API key is a configuration
// failure, not a transient one, and is rejected here.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("tmdb api key is required")
	}

	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    httpx.NewRateLimitedHTTPClient(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// SearchMedia queries the search endpoint for the given kind. Zero matches
// yield an empty slice, not an error.
func (c *Client) SearchMedia(ctx context.Context, kind Kind, query string) ([]SearchResult, error) {
	q := url.Values{}
	q.Set("query", query)

	var resp searchResponse
	if err := c.get(ctx, fmt.Sprintf("/3/search/%s", kind), q, &resp); err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, SearchResult{
			ID:          r.ID,
			Name:        firstNonEmpty(r.Title, r.Name),
			ReleaseDate: firstNonEmpty(r.ReleaseDate, r.FirstAirDate),
		})
	}

	return results, nil
}

// SearchCollection queries the collection search endpoint by franchise name.
func (c *Client) SearchCollection(ctx context.Context, query string) ([]SearchResult, error) {
	q := url.Values{}
	q.Set("query", query)

	var resp searchResponse
	if err := c.get(ctx, "/3/search/collection", q, &resp); err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, SearchResult{
			ID:   r.ID,
			Name: firstNonEmpty(r.Title, r.Name),
		})
	}

	return results, nil
}

// Details fetches a title by id, including its collection membership and
// streaming providers.
func (c *Client) Details(ctx context.Context, kind Kind, id int) (*Details, error) {
	q := url.Values{}
	q.Set("append_to_response", "watch/providers")

	var d Details
	if err := c.get(ctx, fmt.Sprintf("/3/%s/%d", kind, id), q, &d); err != nil {
		return nil, err
	}

	return &d, nil
}

// Collection fetches a franchise and all titles the metadata service
// associates with it.
func (c *Client) Collection(ctx context.Context, id int) (*Collection, error) {
	var coll Collection
	if err := c.get(ctx, fmt.Sprintf("/3/collection/%d", id), nil, &coll); err != nil {
		return nil, err
	}

	return &coll, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Add("Authorization", "Bearer "+c.apiKey)
	req.Header.Add("accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %s", ErrUpstream, res.Status)
	}

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return json.Unmarshal(b, out)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
