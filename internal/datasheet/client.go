package datasheet

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lepinkainen/partly/internal/enrichment/part"
	errs "github.com/lepinkainen/partly/internal/errors"
	"github.com/lepinkainen/partly/internal/manufacturer"
	"github.com/lepinkainen/partly/internal/mpn"
	"github.com/lepinkainen/partly/internal/ratelimit"
)

const (
	// SourceName identifies candidates returned by the HTTP parts API.
	SourceName = "datasheet-api"

	defaultMaxAttempts   = 3
	defaultRatePerSecond = 5
	defaultTimeout       = 10 * time.Second
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client queries a parts search API over HTTP.
type Client struct {
	apiKey        string
	baseURL       string
	httpClient    HTTPDoer
	rateLimiter   *ratelimit.Limiter
	retryAttempts int
	backoff       func(attempt int) time.Duration
}

// NewClient creates a parts API client for baseURL.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	client := &Client{
		apiKey:        apiKey,
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		httpClient:    &http.Client{Timeout: defaultTimeout},
		rateLimiter:   ratelimit.New(SourceName, defaultRatePerSecond),
		retryAttempts: defaultMaxAttempts,
		backoff:       backoffDelay,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) Option {
	return func(client *Client) {
		if c != nil {
			client.httpClient = c
		}
	}
}

// WithBaseURL overrides the base URL given to NewClient.
func WithBaseURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.baseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithRetryAttempts sets the number of attempts for failed requests.
func WithRetryAttempts(attempts int) Option {
	return func(client *Client) {
		if attempts > 0 {
			client.retryAttempts = attempts
		}
	}
}

// WithRateLimiter sets a custom rate limiter for the client.
func WithRateLimiter(limiter *ratelimit.Limiter) Option {
	return func(client *Client) {
		if limiter != nil {
			client.rateLimiter = limiter
		}
	}
}

// Name identifies the source in logs and candidate records.
func (c *Client) Name() string {
	return SourceName
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Manufacturer string         `json:"manufacturer"`
	MPN          string         `json:"mpn"`
	DatasheetURL string         `json:"datasheet_url"`
	Specs        map[string]any `json:"specs"`
	Confidence   float64        `json:"confidence"`
	Source       string         `json:"source"`
}

// Lookup searches the API for key, passing a known manufacturer as a filter hint.
func (c *Client) Lookup(ctx context.Context, key mpn.Key, m manufacturer.Resolved) ([]part.Candidate, error) {
	params := url.Values{}
	params.Set("mpn", key.String())
	if m.IsKnown() {
		params.Set("manufacturer", m.Name())
	}

	var resp searchResponse
	err := c.getJSON(ctx, c.baseURL+"/parts/search?"+params.Encode(), &resp)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.NewLookupError(SourceName, key.String(), err)
	}

	candidates := make([]part.Candidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		candidates = append(candidates, r.toCandidate(key))
	}
	return candidates, nil
}

// Ping checks that the API answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	var ignored map[string]any
	if err := c.getJSON(ctx, c.baseURL+"/health", &ignored); err != nil {
		return errs.NewLookupError(SourceName, "", err)
	}
	return nil
}

func (r searchResult) toCandidate(key mpn.Key) part.Candidate {
	c := part.Candidate{
		Manufacturer: strings.TrimSpace(r.Manufacturer),
		MPN:          strings.TrimSpace(r.MPN),
		DatasheetURL: strings.TrimSpace(r.DatasheetURL),
		Confidence:   r.Confidence,
		Source:       r.Source,
	}
	if c.MPN == "" {
		c.MPN = key.String()
	}
	c.Key = mpn.Normalize(c.MPN)
	if c.Source == "" {
		c.Source = SourceName
	}

	if len(r.Specs) > 0 {
		c.Fields = make(map[string]string, len(r.Specs))
		for k, v := range r.Specs {
			if s := specString(v); s != "" {
				c.Fields[k] = s
			}
		}
	}
	return c
}

func specString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
