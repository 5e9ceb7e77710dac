package websocket

import (
	"context"
	"testing"
	"time"

	"roboto-sai-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_DeliversOnlyToMatchingSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil, logger.NewNopLogger())
	go hub.Run(ctx)

	a := &Client{Hub: hub, SessionKey: "u::a", Send: make(chan []byte, 4)}
	b := &Client{Hub: hub, SessionKey: "u::b", Send: make(chan []byte, 4)}
	hub.register <- a
	hub.register <- b

	require.Eventually(t, func() bool { return hub.Listeners("u::a") == 1 && hub.Listeners("u::b") == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(ctx, "u::a", []byte(`{"type":"assistant_message"}`))

	select {
	case msg := <-a.Send:
		assert.JSONEq(t, `{"type":"assistant_message"}`, string(msg))
	case <-time.After(time.Second):
		t.Fatal("listener on u::a got nothing")
	}
	assert.Empty(t, b.Send)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil, logger.NewNopLogger())
	go hub.Run(ctx)

	c := &Client{Hub: hub, SessionKey: "u::s", Send: make(chan []byte, 1)}
	hub.register <- c
	hub.unregister <- c

	require.Eventually(t, func() bool { return hub.Listeners("u::s") == 0 }, time.Second, 10*time.Millisecond)
	_, open := <-c.Send
	assert.False(t, open)
}

func TestHub_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil, logger.NewNopLogger())
	go hub.Run(ctx)

	c := &Client{Hub: hub, SessionKey: "u::s", Send: make(chan []byte, 1)}
	hub.register <- c
	require.Eventually(t, func() bool { return hub.Listeners("u::s") == 1 }, time.Second, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		hub.Publish(ctx, "u::s", []byte("1"))
		hub.Publish(ctx, "u::s", []byte("2"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full buffer")
	}
	assert.Len(t, c.Send, 1)
}

func TestHub_StoppedHubDoesNotBlockClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	hub := NewHub(nil, logger.NewNopLogger())
	go hub.Run(ctx)

	c := &Client{Hub: hub, SessionKey: "u::s", Send: make(chan []byte, 1)}
	require.True(t, hub.join(c))
	require.Eventually(t, func() bool { return hub.Listeners("u::s") == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-hub.done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	_, open := <-c.Send
	assert.False(t, open, "stopping the hub releases its clients")

	tests := []struct {
		name string
		call func()
	}{
		{"leave after stop", func() { hub.leave(c) }},
		{"join after stop", func() {
			assert.False(t, hub.join(&Client{Hub: hub, SessionKey: "u::late", Send: make(chan []byte, 1)}))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			returned := make(chan struct{})
			go func() {
				tt.call()
				close(returned)
			}()
			select {
			case <-returned:
			case <-time.After(time.Second):
				t.Fatal("client blocked on a stopped hub")
			}
		})
	}
	assert.Zero(t, hub.Listeners(""))
}
