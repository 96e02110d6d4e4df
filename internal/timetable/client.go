package timetable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Backend is the search-session surface of the timetable service.
// This interface is implemented by *Client and can be used for testing.
type Backend interface {
	StartSearch(ctx context.Context, req SearchRequest) (*StartResponse, error)
	StopSearch(ctx context.Context) error
	FetchStatus(ctx context.Context, withData bool) (*StatusResponse, error)
	FetchSolutions(ctx context.Context) (*SolutionsResponse, error)
}

// Ensure Client implements Backend at compile time.
var _ Backend = (*Client)(nil)

// Client talks to the timetable HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	log       zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger attaches a logger for per-request debug lines.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithHTTPClient replaces the default transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

const (
	defaultAPIBind   = "127.0.0.1:8899"
	defaultUserAgent = "kickoff/0.1"
	requestIDHeader  = "X-Request-ID"
)

// NewClient builds a Client using the provided apiBind host:port value.
// The search endpoints can run for a long time, so the default transport has
// no timeout of its own; callers bound calls through ctx.
func NewClient(apiBind string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(apiBind)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{},
		userAgent: defaultUserAgent,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// StartSearch launches a search job and returns the first batch of results.
func (c *Client) StartSearch(ctx context.Context, req SearchRequest) (*StartResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload StartResponse
	if err := c.do(ctx, http.MethodPost, &url.URL{Path: "/search-start"}, req.normalized(), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// StopSearch asks the backend to cancel the running job.
func (c *Client) StopSearch(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	var ack struct{}
	return c.do(ctx, http.MethodPost, &url.URL{Path: "/search-stop"}, nil, &ack)
}

// FetchStatus retrieves the search job status. withData asks the backend to
// include the session's tournament name, team directory and day window.
func (c *Client) FetchStatus(ctx context.Context, withData bool) (*StatusResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	rel := &url.URL{Path: "/status"}
	if withData {
		rel.RawQuery = url.Values{"with-data": {"1"}}.Encode()
	}
	var payload StatusResponse
	if err := c.do(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FetchSolutions retrieves the full solution list of the current session.
func (c *Client) FetchSolutions(ctx context.Context) (*SolutionsResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload SolutionsResponse
	if err := c.do(ctx, http.MethodGet, &url.URL{Path: "/get-solutions"}, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// DownloadReference returns the export path for a solution hash.
func DownloadReference(hash string) string {
	rel := &url.URL{Path: "/download-solution", RawQuery: url.Values{"hash": {hash}}.Encode()}
	return rel.String()
}

// DownloadSolution streams the spreadsheet export of one solution into dst and
// returns the file name suggested by the server, if any.
func (c *Client) DownloadSolution(ctx context.Context, hash string, dst io.Writer) (string, error) {
	if c == nil {
		return "", fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(hash) == "" {
		return "", fmt.Errorf("solution hash required")
	}
	rel := &url.URL{Path: "/download-solution", RawQuery: url.Values{"hash": {hash}}.Encode()}
	resp, err := c.send(ctx, http.MethodGet, rel, nil, "*/*")
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if _, err := io.Copy(dst, resp.Body); err != nil {
		return "", fmt.Errorf("read export: %w", err)
	}
	return attachmentName(resp.Header.Get("Content-Disposition")), nil
}

// SaveEntity creates or updates an administrative record.
func (c *Client) SaveEntity(ctx context.Context, e Entity) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if e == nil {
		return fmt.Errorf("entity is nil")
	}
	return c.entityCall(ctx, "/save-entity", e.Kind(), e.EntityID(), saveBody(e))
}

// DeleteEntity removes an administrative record.
func (c *Client) DeleteEntity(ctx context.Context, kind EntityKind, id int) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.entityCall(ctx, "/del-entity", kind, id, nil)
}

func (c *Client) entityCall(ctx context.Context, path string, kind EntityKind, id int, body any) error {
	values := url.Values{}
	values.Set("tag", string(kind))
	values.Set("id", strconv.Itoa(id))
	rel := &url.URL{Path: path, RawQuery: values.Encode()}
	var result EntityResult
	if err := c.do(ctx, http.MethodPost, rel, body, &result); err != nil {
		return err
	}
	if !result.Result {
		return &ServerError{Message: result.Error}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	resp, err := c.send(ctx, method, rel, body, "application/json")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// send issues the request and returns the response for a 2xx status. The
// caller owns the body.
func (c *Client) send(ctx context.Context, method string, rel *url.URL, body any, accept string) (*http.Response, error) {
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Str("request_id", requestID).Str("method", method).Str("path", rel.Path).
			Dur("took", time.Since(started)).Err(err).Msg("request failed")
		return nil, fmt.Errorf("execute request: %w", err)
	}
	c.log.Debug().Str("request_id", requestID).Str("method", method).Str("path", rel.Path).
		Int("status", resp.StatusCode).Dur("took", time.Since(started)).Msg("request done")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("api %s returned status %d", rel.Path, resp.StatusCode)
	}
	return resp, nil
}

func attachmentName(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(params["filename"])
}

func parseBaseURL(apiBind string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBind)
	if trimmed == "" {
		trimmed = defaultAPIBind
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_bind %q: %w", apiBind, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
