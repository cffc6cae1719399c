package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelboard/backend/internal/events"
	"github.com/labelboard/backend/internal/shared/types"
)

func newWSFixture(t *testing.T) (*Handler, *events.Bus, *events.Notifier, *websocket.Conn) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bus := events.NewBus()
	notifier := events.NewNotifier(bus)
	handler := NewHandler(bus, notifier, nil)

	router := gin.New()
	router.GET("/ws", handler.HandleConnection)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool {
		return handler.Clients() == 1
	}, time.Second, 5*time.Millisecond)

	return handler, bus, notifier, conn
}

// readEvent reads frames until one of the wanted type arrives
func readEvent(t *testing.T, conn *websocket.Conn, wanted string) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &decoded))
		if decoded["type"] == wanted {
			return decoded
		}
	}
}

func TestStreamsBusEvents(t *testing.T) {
	_, bus, _, conn := newWSFixture(t)

	bus.Publish(events.TypeModeChanged, types.ModeLabelStream)

	event := readEvent(t, conn, string(events.TypeModeChanged))
	assert.Equal(t, "labelstream", event["payload"])
}

func TestPingPong(t *testing.T) {
	_, _, _, conn := newWSFixture(t)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	readEvent(t, conn, "pong")
}

func TestPingsInterleaveWithEventStream(t *testing.T) {
	_, bus, _, conn := newWSFixture(t)

	const rounds = 25
	published := make(chan struct{})
	go func() {
		defer close(published)
		for i := 0; i < rounds; i++ {
			bus.Publish(events.TypeTaskSelected, i)
		}
	}()
	for i := 0; i < rounds; i++ {
		require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	}

	pongs, selections := 0, 0
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for pongs < rounds || selections < rounds {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &decoded))
		switch decoded["type"] {
		case "pong":
			pongs++
		case string(events.TypeTaskSelected):
			selections++
		}
	}
	<-published

	assert.Equal(t, rounds, pongs)
	assert.Equal(t, rounds, selections)
}

func TestConfirmRoundTrip(t *testing.T) {
	_, _, notifier, conn := newWSFixture(t)

	answered := make(chan bool, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		answered <- notifier.Confirm(ctx, types.Confirmation{Message: "Delete 2 tasks?"})
	}()

	event := readEvent(t, conn, string(events.TypeConfirmRequested))
	payload, ok := event["payload"].(map[string]interface{})
	require.True(t, ok)
	id, _ := payload["id"].(string)
	require.NotEmpty(t, id)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type": "confirm", "id": id, "accepted": true,
	}))

	select {
	case accepted := <-answered:
		assert.True(t, accepted)
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation never resolved")
	}
}

func TestStaleConfirmIgnored(t *testing.T) {
	_, bus, _, conn := newWSFixture(t)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type": "confirm", "id": "gone", "accepted": true,
	}))

	// The connection keeps working after a stale answer.
	bus.Publish(events.TypeSelectionCleared, nil)
	readEvent(t, conn, string(events.TypeSelectionCleared))
}

func TestDisconnectUnregisters(t *testing.T) {
	handler, _, _, conn := newWSFixture(t)

	conn.Close()
	require.Eventually(t, func() bool {
		return handler.Clients() == 0
	}, time.Second, 5*time.Millisecond)
}
