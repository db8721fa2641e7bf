// Package doi resolves DOI references on demand through the doi.org content
// negotiation endpoint. Results are CSL JSON bodies; the browse GUI renders
// them the same way it renders indexed Relaton bodies.
package doi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ribose/bibxml-browse/pkg/httperr"
)

const (
	// BaseURL is the DOI resolver endpoint.
	BaseURL = "https://doi.org"

	// Accept header selecting CSL JSON from the resolver.
	cslJSON = "application/vnd.citationstyles.csl+json"

	// DefaultTimeout bounds a single resolver round trip.
	DefaultTimeout = 15 * time.Second

	// Resolver etiquette: stay around one request per second with a small
	// burst, same as an anonymous crossref client.
	requestsPerSecond = 1.0
	burst             = 2

	maxBodySize = 1 << 20
)

// Client is a rate-limited HTTP client for DOI resolution.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	mailto     string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithMailto sets the contact address advertised in the User-Agent, which
// moves requests into the resolver's polite pool.
func WithMailto(mailto string) Option {
	return func(c *Client) {
		c.mailto = mailto
	}
}

// NewClient creates a DOI resolver client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		baseURL:    BaseURL,
	}

	if m := os.Getenv("DOI_MAILTO"); m != "" {
		c.mailto = m
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetRef fetches the citation body for a DOI. A 404 from the resolver maps to
// a not-found error; any other failure is reported as an upstream error.
func (c *Client) GetRef(ctx context.Context, ref string) ([]byte, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, httperr.NewBadRequest("empty DOI reference")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := c.baseURL + "/" + url.PathEscape(ref)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", cslJSON)
	req.Header.Set("User-Agent", userAgent(c.mailto))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, httperr.NewUpstream("doi resolver request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, httperr.NewNotFound("DOI " + ref + " not found")
	default:
		return nil, httperr.NewUpstream(fmt.Sprintf("doi resolver returned %d for %s", resp.StatusCode, ref), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, httperr.NewUpstream("reading doi resolver response", err)
	}
	return body, nil
}

func userAgent(mailto string) string {
	ua := "bibxml-browse/1.0"
	if mailto != "" {
		ua += " (mailto:" + mailto + ")"
	}
	return ua
}
