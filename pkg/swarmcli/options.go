package swarmcli

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const defaultHandshakeTimeout = 45 * time.Second

type Option func(*HTTPClient) error

// WithTimeout bounds every HTTP request. No timeout is applied by default.
func WithTimeout(timeout time.Duration) Option {
	return func(c *HTTPClient) error {
		if timeout <= 0 {
			return fmt.Errorf("timeout must be greater than 0")
		}
		c.timeout = timeout
		return nil
	}
}

// WithReceiveTimeout bounds the wait for the frame of a single-shot live
// channel. Zero waits until the context is done.
func WithReceiveTimeout(timeout time.Duration) Option {
	return func(c *HTTPClient) error {
		if timeout < 0 {
			return fmt.Errorf("receive timeout must not be negative")
		}
		c.receiveTimeout = timeout
		return nil
	}
}

// WithHTTPClient sets the underlying http.Client used for API calls
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *HTTPClient) error {
		if httpClient == nil {
			return fmt.Errorf("http client must not be nil")
		}
		c.httpClient = httpClient
		return nil
	}
}

// WithDialer sets the websocket dialer used for live channels
func WithDialer(dialer *websocket.Dialer) Option {
	return func(c *HTTPClient) error {
		if dialer == nil {
			return fmt.Errorf("dialer must not be nil")
		}
		c.dialer = dialer
		return nil
	}
}

// WithInsecure switches to http and ws schemes, for local API servers
func WithInsecure() Option {
	return func(c *HTTPClient) error {
		c.httpScheme = "http"
		c.wsScheme = "ws"
		return nil
	}
}
