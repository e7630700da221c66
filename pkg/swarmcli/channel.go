package swarmcli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"
	"github.com/swarmnode-ai/swarmnode-go/pkg/swarmnode"
)

// ChannelMode selects the live endpoint of an execution
type ChannelMode int

const (
	// ModeSingle receives the final result frame of an execution
	ModeSingle ChannelMode = iota
	// ModeContinuous receives every frame an execution emits
	ModeContinuous
)

func (m ChannelMode) endpoint() string {
	if m == ModeContinuous {
		return "execution-stream"
	}
	return "execution"
}

func (m ChannelMode) String() string {
	if m == ModeContinuous {
		return "continuous"
	}
	return "single"
}

// Channel is an open websocket connection scoped to one execution address.
// It cannot be reused once closed.
type Channel struct {
	address string
	mode    ChannelMode
	conn    *websocket.Conn

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// OpenChannel dials the live endpoint for address, authenticating with the
// API key configured at the time of the call
func (c *HTTPClient) OpenChannel(ctx context.Context, address string, mode ChannelMode) (*Channel, error) {
	creds := c.config.Snapshot()
	if !creds.HasAPIKey() {
		return nil, &swarmnode.Error{Kind: swarmnode.ErrAPIKeyNotSet}
	}
	if address == "" {
		return nil, swarmnode.MissingFieldError("address")
	}

	url := fmt.Sprintf("%s://%s/ws/v1/%s/%s/", c.wsScheme, creds.APIBase, mode.endpoint(), address)
	header := http.Header{}
	header.Set("Authorization", "Bearer "+creds.APIKey)

	conn, resp, err := c.dialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
			apiErr := swarmnode.ErrorFromStatus(resp.StatusCode, "")
			apiErr.Err = err
			return nil, apiErr
		}
		return nil, &swarmnode.Error{Kind: swarmnode.ErrTransport, Err: err}
	}

	slog.Debug("Live channel opened", "address", address, "mode", mode)

	return &Channel{address: address, mode: mode, conn: conn}, nil
}

// Address returns the execution address the channel is bound to
func (ch *Channel) Address() string { return ch.address }

// Mode returns the live endpoint the channel is connected to
func (ch *Channel) Mode() ChannelMode { return ch.mode }

// Receive blocks until the next frame arrives. It returns io.EOF when the
// server closes the connection normally. Any other failure, or ctx being
// done, closes the channel.
func (ch *Channel) Receive(ctx context.Context) (string, error) {
	if ch.closed.Load() {
		return "", swarmnode.ErrChannelClosed
	}

	stop := context.AfterFunc(ctx, func() { _ = ch.Close() })
	defer stop()

	messageType, data, err := ch.conn.ReadMessage()
	if err != nil {
		_ = ch.Close()
		if ctx.Err() != nil {
			return "", &swarmnode.Error{Kind: swarmnode.ErrTransport, Err: ctx.Err()}
		}
		if isNormalClose(err) {
			return "", io.EOF
		}
		return "", &swarmnode.Error{Kind: swarmnode.ErrTransport, Err: err}
	}

	text, err := frameText(messageType, data)
	if err != nil {
		_ = ch.Close()
		return "", err
	}
	return text, nil
}

// Frames yields frames in receipt order until the server closes the
// connection. A failure is yielded once and ends the sequence. The channel is
// closed when the sequence ends or the consumer stops pulling.
func (ch *Channel) Frames(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		defer ch.Close()

		for {
			frame, err := ch.Receive(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", err)
				return
			}
			if !yield(frame, nil) {
				return
			}
		}
	}
}

// Close releases the connection. It is safe to call more than once.
func (ch *Channel) Close() error {
	ch.closeOnce.Do(func() {
		ch.closed.Store(true)
		ch.closeErr = ch.conn.Close()
		slog.Debug("Live channel closed", "address", ch.address, "mode", ch.mode)
	})
	return ch.closeErr
}

// ListenExecution waits for the single result frame of an execution. A
// connection closed before any frame arrives is an error.
func (c *HTTPClient) ListenExecution(ctx context.Context, address string) (string, error) {
	ch, err := c.OpenChannel(ctx, address, ModeSingle)
	if err != nil {
		return "", err
	}
	defer ch.Close()

	if c.receiveTimeout > 0 {
		if err := ch.conn.SetReadDeadline(time.Now().Add(c.receiveTimeout)); err != nil {
			return "", &swarmnode.Error{Kind: swarmnode.ErrTransport, Err: err}
		}
	}

	frame, err := ch.Receive(ctx)
	if errors.Is(err, io.EOF) {
		return "", &swarmnode.Error{Kind: swarmnode.ErrTransport, Err: swarmnode.ErrNoFrame}
	}
	return frame, err
}

// StreamExecution yields every frame of an execution. The connection is
// opened when iteration starts; a failure to open is yielded as the only
// element.
func (c *HTTPClient) StreamExecution(ctx context.Context, address string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		ch, err := c.OpenChannel(ctx, address, ModeContinuous)
		if err != nil {
			yield("", err)
			return
		}

		for frame, err := range ch.Frames(ctx) {
			if !yield(frame, err) {
				return
			}
		}
	}
}

func isNormalClose(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	)
}

func frameText(messageType int, data []byte) (string, error) {
	if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
		return "", &swarmnode.Error{Kind: swarmnode.ErrDecode, Reason: fmt.Sprintf("unexpected frame type %d", messageType)}
	}
	if !utf8.Valid(data) {
		return "", &swarmnode.Error{Kind: swarmnode.ErrDecode, Reason: "frame is not valid UTF-8 text"}
	}
	return string(data), nil
}
