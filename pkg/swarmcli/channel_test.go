package swarmcli

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swarmnode-ai/swarmnode-go/pkg/swarmnode"
)

// newChannelClient starts a websocket stub running serve for every accepted
// connection
func newChannelClient(t *testing.T, serve func(r *http.Request, conn *websocket.Conn), options ...Option) *HTTPClient {
	t.Helper()

	upgrader := websocket.Upgrader{}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		serve(r, conn)
	}), options...)
	return client
}

func sendFrames(conn *websocket.Conn, frames ...string) {
	for _, frame := range frames {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(frame))
	}
}

func closeNormally(conn *websocket.Conn) {
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// waitForClient blocks until the client side goes away
func waitForClient(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func collect(seq func(func(string, error) bool)) ([]string, []error) {
	var frames []string
	var errs []error
	for frame, err := range seq {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		frames = append(frames, frame)
	}
	return frames, errs
}

func TestStreamExecution_CleanClose(t *testing.T) {
	client := newChannelClient(t, func(r *http.Request, conn *websocket.Conn) {
		assert.Equal(t, "/ws/v1/execution-stream/addr-1/", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		sendFrames(conn, "a", "b")
		closeNormally(conn)
	})

	frames, errs := collect(client.StreamExecution(context.Background(), "addr-1"))

	assert.Equal(t, []string{"a", "b"}, frames)
	assert.Empty(t, errs)
}

func TestStreamExecution_ErrorAfterFrame(t *testing.T) {
	client := newChannelClient(t, func(r *http.Request, conn *websocket.Conn) {
		sendFrames(conn, "a")
		_ = conn.NetConn().Close()
	})

	frames, errs := collect(client.StreamExecution(context.Background(), "addr-1"))

	assert.Equal(t, []string{"a"}, frames)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], swarmnode.ErrTransport)
}

func TestStreamExecution_InvalidTextFrame(t *testing.T) {
	client := newChannelClient(t, func(r *http.Request, conn *websocket.Conn) {
		sendFrames(conn, "a")
		_ = conn.WriteMessage(websocket.BinaryMessage, []byte{0xff, 0xfe})
		sendFrames(conn, "never seen")
		closeNormally(conn)
	})

	frames, errs := collect(client.StreamExecution(context.Background(), "addr-1"))

	assert.Equal(t, []string{"a"}, frames)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], swarmnode.ErrDecode)
}

func TestStreamExecution_OpenFailure(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	}))

	frames, errs := collect(client.StreamExecution(context.Background(), "addr-1"))

	assert.Empty(t, frames)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], swarmnode.ErrUnauthenticated)
}

func TestStreamExecution_StopReleasesConnection(t *testing.T) {
	released := make(chan struct{})
	client := newChannelClient(t, func(r *http.Request, conn *websocket.Conn) {
		go func() {
			waitForClient(conn)
			close(released)
		}()
		for i := 0; i < 1000; i++ {
			if err := conn.WriteMessage(websocket.TextMessage, []byte("tick")); err != nil {
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	})

	for frame, err := range client.StreamExecution(context.Background(), "addr-1") {
		require.NoError(t, err)
		assert.Equal(t, "tick", frame)
		break
	}

	select {
	case <-released:
	case <-time.After(2 * time.Second):
		t.Fatal("connection was not released after the consumer stopped")
	}
}

func TestListenExecution(t *testing.T) {
	client := newChannelClient(t, func(r *http.Request, conn *websocket.Conn) {
		assert.Equal(t, "/ws/v1/execution/addr-1/", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		sendFrames(conn, `{"status":"success"}`, "ignored")
		waitForClient(conn)
	})

	frame, err := client.ListenExecution(context.Background(), "addr-1")

	require.NoError(t, err)
	assert.Equal(t, `{"status":"success"}`, frame)
}

func TestListenExecution_ClosedWithoutFrame(t *testing.T) {
	client := newChannelClient(t, func(r *http.Request, conn *websocket.Conn) {
		closeNormally(conn)
	})

	frame, err := client.ListenExecution(context.Background(), "addr-1")

	assert.Empty(t, frame)
	assert.ErrorIs(t, err, swarmnode.ErrNoFrame)
	assert.NotErrorIs(t, err, io.EOF)
}

func TestListenExecution_ReceiveTimeout(t *testing.T) {
	client := newChannelClient(t, func(r *http.Request, conn *websocket.Conn) {
		waitForClient(conn)
	}, WithReceiveTimeout(50*time.Millisecond))

	start := time.Now()
	_, err := client.ListenExecution(context.Background(), "addr-1")

	assert.ErrorIs(t, err, swarmnode.ErrTransport)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestListenExecution_ContextCancel(t *testing.T) {
	client := newChannelClient(t, func(r *http.Request, conn *websocket.Conn) {
		waitForClient(conn)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.ListenExecution(ctx, "addr-1")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOpenChannel_APIKeyNotSet(t *testing.T) {
	client, err := NewHTTPClient(swarmnode.NewConfig(), WithInsecure())
	require.NoError(t, err)

	ch, err := client.OpenChannel(context.Background(), "addr-1", ModeContinuous)

	assert.Nil(t, ch)
	assert.ErrorIs(t, err, swarmnode.ErrAPIKeyNotSet)
}

func TestOpenChannel_RequiresAddress(t *testing.T) {
	client := newChannelClient(t, func(r *http.Request, conn *websocket.Conn) {})

	_, err := client.OpenChannel(context.Background(), "", ModeSingle)

	assert.ErrorIs(t, err, swarmnode.ErrBadRequest)
}

func TestChannel_NotReusable(t *testing.T) {
	client := newChannelClient(t, func(r *http.Request, conn *websocket.Conn) {
		sendFrames(conn, "a")
		closeNormally(conn)
	})

	ch, err := client.OpenChannel(context.Background(), "addr-1", ModeContinuous)
	require.NoError(t, err)
	assert.Equal(t, "addr-1", ch.Address())
	assert.Equal(t, ModeContinuous, ch.Mode())

	frames, errs := collect(ch.Frames(context.Background()))
	assert.Equal(t, []string{"a"}, frames)
	assert.Empty(t, errs)

	_, err = ch.Receive(context.Background())
	assert.True(t, errors.Is(err, swarmnode.ErrChannelClosed))

	_, errs = collect(ch.Frames(context.Background()))
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], swarmnode.ErrChannelClosed)

	assert.NoError(t, ch.Close())
}

func TestChannel_ReceiveReportsEOF(t *testing.T) {
	client := newChannelClient(t, func(r *http.Request, conn *websocket.Conn) {
		sendFrames(conn, "only")
		closeNormally(conn)
	})

	ch, err := client.OpenChannel(context.Background(), "addr-1", ModeSingle)
	require.NoError(t, err)
	defer ch.Close()

	frame, err := ch.Receive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "only", frame)

	_, err = ch.Receive(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}
