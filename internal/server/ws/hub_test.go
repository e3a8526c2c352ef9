package ws

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalscope/signalscope/internal/sim"
)

func testLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(ctx, testLogger())
	go h.Run()
	t.Cleanup(func() {
		h.Stop()
		cancel()
	})
	return h
}

func dial(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(Handler(h))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubBroadcastsTickFrames(t *testing.T) {
	h := startHub(t)
	conn := dial(t, h)

	require.Eventually(t, func() bool {
		return h.ClientCount() == 1
	}, time.Second, 5*time.Millisecond)

	frame := sim.Frame{TimeStep: 7, Value: 42.5}
	state := sim.State{TimeStep: 8, Values: []float64{1, 2, 42.5}}
	h.BroadcastFrame(frame, state)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg TickMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "tick", msg.Type)
	assert.Equal(t, 7, msg.Frame.TimeStep)
	assert.Equal(t, 42.5, msg.Frame.Value)
	assert.Equal(t, []float64{1, 2, 42.5}, msg.State.Values)
}

func TestHubMultipleClients(t *testing.T) {
	h := startHub(t)
	a := dial(t, h)
	b := dial(t, h)

	require.Eventually(t, func() bool {
		return h.ClientCount() == 2
	}, time.Second, 5*time.Millisecond)

	h.BroadcastFrame(sim.Frame{TimeStep: 1, Value: 3.0}, sim.State{})

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Contains(t, string(data), `"time_step":1`)
	}
}

func TestHubClientDisconnect(t *testing.T) {
	h := startHub(t)
	conn := dial(t, h)

	require.Eventually(t, func() bool {
		return h.ClientCount() == 1
	}, time.Second, 5*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool {
		return h.ClientCount() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestDropAfterStopDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub(ctx, testLogger())
	go h.Run()

	h.Stop()

	// A client tearing down after shutdown must not hang on the hub.
	done := make(chan struct{})
	go func() {
		h.drop(&Client{send: make(chan []byte, 1)})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("drop blocked after hub stop")
	}
}

func TestBroadcastWithNoClients(t *testing.T) {
	h := startHub(t)

	// Must not block or panic.
	h.BroadcastFrame(sim.Frame{TimeStep: 0, Value: 1}, sim.State{})
	assert.Equal(t, 0, h.ClientCount())
}
