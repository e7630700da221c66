package swarmcli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/swarmnode-ai/swarmnode-go/pkg/swarmnode"
	"resty.dev/v3"
)

// Request describes one API call. Path is either relative to /v1/ or an
// absolute URL returned by a previous response.
type Request struct {
	Method string
	Path   string
	Query  map[string]string
	Body   any
}

// Requester performs one authenticated API call and decodes the JSON response
// body into out. A nil out discards the body.
type Requester interface {
	Do(ctx context.Context, req Request, out any) error
}

// HTTPClient implements Requester using Resty v3 and opens live channels with
// gorilla/websocket
type HTTPClient struct {
	config         *swarmnode.Config
	client         *resty.Client
	httpClient     *http.Client
	dialer         *websocket.Dialer
	httpScheme     string
	wsScheme       string
	timeout        time.Duration
	receiveTimeout time.Duration
}

// NewHTTPClient creates a new SwarmNode API client reading its credentials from config
func NewHTTPClient(config *swarmnode.Config, options ...Option) (*HTTPClient, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}

	c := &HTTPClient{
		config:     config,
		httpScheme: "https",
		wsScheme:   "wss",
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: defaultHandshakeTimeout,
		},
	}

	// Apply options
	for _, option := range options {
		if err := option(c); err != nil {
			return nil, err
		}
	}

	if c.httpClient != nil {
		c.client = resty.NewWithClient(c.httpClient)
	} else {
		c.client = resty.New()
	}
	c.client.
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetDisableWarn(true)
	if c.timeout > 0 {
		c.client.SetTimeout(c.timeout)
	}

	return c, nil
}

// Config returns the configuration the client reads on every call
func (c *HTTPClient) Config() *swarmnode.Config {
	return c.config
}

// Do performs one request. It fails with swarmnode.ErrAPIKeyNotSet before any
// network I/O when no API key is configured.
func (c *HTTPClient) Do(ctx context.Context, req Request, out any) error {
	creds := c.config.Snapshot()
	if !creds.HasAPIKey() {
		return &swarmnode.Error{Kind: swarmnode.ErrAPIKeyNotSet}
	}

	url := c.resolveURL(creds.APIBase, req.Path)
	request := c.client.R().
		SetContext(ctx).
		SetAuthToken(creds.APIKey)

	if len(req.Query) > 0 {
		request = request.SetQueryParams(req.Query)
	}
	if req.Body != nil {
		request = request.SetBody(req.Body)
	}

	slog.Debug("Sending request", "method", req.Method, "url", url)

	resp, err := request.Execute(req.Method, url)
	if err != nil {
		return &swarmnode.Error{Kind: swarmnode.ErrTransport, Err: err}
	}

	var bodyBytes []byte
	if resp.Body != nil {
		bodyBytes, err = io.ReadAll(resp.Body)
		if err != nil {
			return &swarmnode.Error{Kind: swarmnode.ErrTransport, Err: fmt.Errorf("failed to read response body: %w", err)}
		}
	}

	slog.Debug("Received response", "method", req.Method, "url", url, "status", resp.StatusCode())

	if !resp.IsSuccess() {
		return errorFromResponse(resp.StatusCode(), bodyBytes)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return &swarmnode.Error{Kind: swarmnode.ErrDecode, StatusCode: resp.StatusCode(), Err: err}
	}
	return nil
}

func (c *HTTPClient) resolveURL(apiBase, path string) string {
	if isAbsoluteURL(path) {
		return path
	}
	return fmt.Sprintf("%s://%s/v1/%s", c.httpScheme, apiBase, strings.TrimPrefix(path, "/"))
}

func isAbsoluteURL(path string) bool {
	return strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "http://")
}

// errorFromResponse maps a failed response, preferring the API's detail
// message over the canonical status text
func errorFromResponse(statusCode int, body []byte) error {
	var payload struct {
		Detail string `json:"detail"`
	}
	reason := ""
	if len(bytes.TrimSpace(body)) > 0 && json.Unmarshal(body, &payload) == nil {
		reason = payload.Detail
	}
	return swarmnode.ErrorFromStatus(statusCode, reason)
}

// Fetch performs req and decodes the response into a new T
func Fetch[T any](ctx context.Context, r Requester, req Request) (*T, error) {
	var out T
	if err := r.Do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
