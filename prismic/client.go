// Package prismic is a small client for the Prismic REST API v2: master ref
// resolution, predicate queries, single-document lookups and pagination
// cursors.
package prismic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	dialTimeout    = 10 * time.Second
	requestTimeout = 30 * time.Second
	defaultRefTTL  = 5 * time.Second
	maxErrorBody   = 64 << 10
)

var netDialer = &net.Dialer{
	Timeout: dialTimeout,
}

var defaultHTTPClient = &http.Client{
	Transport: &http.Transport{
		DialContext: netDialer.DialContext,
	},
	Timeout: requestTimeout,
}

// Options configures a Client.
type Options struct {
	AccessToken string       // optional permanent access token
	HTTPClient  *http.Client // default: 30s timeout
	RefTTL      time.Duration
}

// Client talks to one Prismic repository. It is safe for concurrent use.
type Client struct {
	endpoint    *url.URL
	accessToken string
	http        *http.Client
	refTTL      time.Duration
	now         func() time.Time

	mu        sync.Mutex
	masterRef string
	refAt     time.Time
}

// New creates a Client for the API endpoint, e.g.
// "https://my-repo.cdn.prismic.io/api/v2".
func New(endpoint string, opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("prismic: parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("prismic: endpoint %q must be an absolute http(s) URL", endpoint)
	}
	c := &Client{
		endpoint:    u,
		accessToken: opts.AccessToken,
		http:        opts.HTTPClient,
		refTTL:      opts.RefTTL,
		now:         time.Now,
	}
	if c.http == nil {
		c.http = defaultHTTPClient
	}
	if c.refTTL <= 0 {
		c.refTTL = defaultRefTTL
	}
	return c, nil
}

// Ref is a content release pointer listed by the API root.
type Ref struct {
	ID          string `json:"id"`
	Ref         string `json:"ref"`
	Label       string `json:"label"`
	IsMasterRef bool   `json:"isMasterRef"`
}

type apiRoot struct {
	Refs []Ref `json:"refs"`
}

// MasterRef returns the ref of the published content. The value is memoized
// for a few seconds since it only changes when editors publish.
func (c *Client) MasterRef(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.masterRef != "" && c.now().Sub(c.refAt) < c.refTTL {
		ref := c.masterRef
		c.mu.Unlock()
		return ref, nil
	}
	c.mu.Unlock()

	var root apiRoot
	if err := c.getJSON(ctx, c.withToken(c.endpoint.String()), &root); err != nil {
		return "", fmt.Errorf("prismic: load api root: %w", err)
	}
	for _, r := range root.Refs {
		if r.IsMasterRef {
			c.mu.Lock()
			c.masterRef = r.Ref
			c.refAt = c.now()
			c.mu.Unlock()
			return r.Ref, nil
		}
	}
	return "", errors.New("prismic: api root lists no master ref")
}

// ref returns the ref carried by ctx (preview) or the master ref.
func (c *Client) ref(ctx context.Context) (string, error) {
	if r := RefFromContext(ctx); r != "" {
		return r, nil
	}
	return c.MasterRef(ctx)
}

// Query runs a predicate search and returns one page of results.
func (c *Client) Query(ctx context.Context, predicates []Predicate, opts QueryOptions) (*Response, error) {
	ref, err := c.ref(ctx)
	if err != nil {
		return nil, err
	}
	u := *c.endpoint
	u.Path += "/documents/search"
	u.RawQuery = opts.values(ref, predicates).Encode()

	var resp Response
	if err := c.getJSON(ctx, c.withToken(u.String()), &resp); err != nil {
		return nil, fmt.Errorf("prismic: query: %w", err)
	}
	return &resp, nil
}

// QueryFirst returns the first document matching predicates, or ErrNotFound.
func (c *Client) QueryFirst(ctx context.Context, predicates []Predicate, opts QueryOptions) (*Document, error) {
	opts.PageSize = 1
	opts.Page = 0
	resp, err := c.Query(ctx, predicates, opts)
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, ErrNotFound
	}
	return &resp.Results[0], nil
}

// GetByUID fetches the document of docType whose uid is uid.
func (c *Client) GetByUID(ctx context.Context, docType, uid string, opts QueryOptions) (*Document, error) {
	return c.QueryFirst(ctx, []Predicate{At("my."+docType+".uid", uid)}, opts)
}

// GetByID fetches a document by its Prismic id.
func (c *Client) GetByID(ctx context.Context, id string, opts QueryOptions) (*Document, error) {
	return c.QueryFirst(ctx, []Predicate{At("document.id", id)}, opts)
}

// FetchPage follows a next_page cursor returned by an earlier query. The
// cursor must belong to this repository.
func (c *Client) FetchPage(ctx context.Context, cursor string) (*Response, error) {
	if !c.OwnsURL(cursor) {
		return nil, fmt.Errorf("prismic: cursor %q does not belong to %s", cursor, c.endpoint.Host)
	}
	var resp Response
	if err := c.getJSON(ctx, c.withToken(cursor), &resp); err != nil {
		return nil, fmt.Errorf("prismic: fetch page: %w", err)
	}
	return &resp, nil
}

// OwnsURL reports whether raw points at this client's API host.
func (c *Client) OwnsURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme == c.endpoint.Scheme && u.Host == c.endpoint.Host &&
		strings.HasPrefix(u.Path, c.endpoint.Path+"/")
}

// withToken appends the access token unless raw already carries one.
func (c *Client) withToken(raw string) string {
	if c.accessToken == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Get("access_token") != "" {
		return raw
	}
	q.Set("access_token", c.accessToken)
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Client) getJSON(ctx context.Context, u string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newAPIError(resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
