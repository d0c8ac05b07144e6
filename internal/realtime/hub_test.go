package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// hubServer exposes the hub over httptest so tests can dial real sockets.
func hubServer(t *testing.T, hub *Hub, allowed map[string]struct{}) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user")
		streams := strings.Split(r.URL.Query().Get("streams"), ",")
		hub.Serve(userID, streams, allowed, w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dialHub(t *testing.T, srv *httptest.Server, userID string, streams ...string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") +
		"?user=" + userID + "&streams=" + strings.Join(streams, ",")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

// awaitPong round-trips a ping control frame. Because the read loop starts
// after registration, a pong reply proves the subscriptions are in place.
func awaitPong(t *testing.T, conn *websocket.Conn) {
	t.Helper()

	require.NoError(t, conn.WriteJSON(controlMessage{Action: "ping"}))
	msg := readMessage(t, conn)
	require.Equal(t, "pong", msg.Event)
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHubBroadcastToUserReachesSubscriber(t *testing.T) {
	hub := NewHub()
	srv := hubServer(t, hub, nil)

	conn := dialHub(t, srv, "alice", StreamStatuses)
	awaitPong(t, conn)

	// A message for someone else must not land on alice's socket.
	hub.BroadcastToUser(StreamStatuses, "bob", Message{Event: "status.changed", Data: "wrong"})
	hub.BroadcastToUser(StreamStatuses, "alice", Message{
		Event: "status.changed",
		Data:  map[string]any{"user_id": "carol"},
	})

	msg := readMessage(t, conn)
	require.Equal(t, StreamStatuses, msg.Stream)
	require.Equal(t, "status.changed", msg.Event)
}

func TestHubFiltersUnauthorizedStreams(t *testing.T) {
	hub := NewHub()
	allowed := map[string]struct{}{StreamStatuses: {}}
	srv := hubServer(t, hub, allowed)

	conn := dialHub(t, srv, "alice", StreamStatuses, StreamInvites)
	awaitPong(t, conn)

	// The invites subscription was filtered at registration, so only the
	// statuses broadcast may arrive.
	hub.BroadcastToUser(StreamInvites, "alice", Message{Event: "invite.created"})
	hub.BroadcastToUser(StreamStatuses, "alice", Message{Event: "status.changed"})

	msg := readMessage(t, conn)
	require.Equal(t, StreamStatuses, msg.Stream)
	require.Equal(t, "status.changed", msg.Event)
}

func TestHubSubscribeAndUnsubscribeControlFrames(t *testing.T) {
	hub := NewHub()
	srv := hubServer(t, hub, nil)

	conn := dialHub(t, srv, "alice", StreamNotifications)
	awaitPong(t, conn)

	require.NoError(t, conn.WriteJSON(controlMessage{
		Action:  "subscribe",
		Streams: []string{StreamStatuses},
	}))
	awaitPong(t, conn)

	hub.BroadcastToUser(StreamStatuses, "alice", Message{Event: "status.changed"})
	msg := readMessage(t, conn)
	require.Equal(t, StreamStatuses, msg.Stream)

	require.NoError(t, conn.WriteJSON(controlMessage{
		Action:  "unsubscribe",
		Streams: []string{StreamStatuses},
	}))
	awaitPong(t, conn)

	// After unsubscribing, only the notification broadcast comes through.
	hub.BroadcastToUser(StreamStatuses, "alice", Message{Event: "status.changed"})
	hub.BroadcastToUser(StreamNotifications, "alice", Message{Event: "notification.created"})

	msg = readMessage(t, conn)
	require.Equal(t, StreamNotifications, msg.Stream)
	require.Equal(t, "notification.created", msg.Event)
}

func TestHubBroadcastToUsersFansOut(t *testing.T) {
	hub := NewHub()
	srv := hubServer(t, hub, nil)

	alice := dialHub(t, srv, "alice", StreamStatuses)
	bob := dialHub(t, srv, "bob", StreamStatuses)
	awaitPong(t, alice)
	awaitPong(t, bob)

	hub.BroadcastToUsers(StreamStatuses, []string{"alice", "bob"}, Message{Event: "status.changed"})

	for _, conn := range []*websocket.Conn{alice, bob} {
		msg := readMessage(t, conn)
		require.Equal(t, "status.changed", msg.Event)
	}
}

func TestKnownStreams(t *testing.T) {
	streams := KnownStreams()
	require.Contains(t, streams, StreamStatuses)
	require.Contains(t, streams, StreamInvites)
	require.Contains(t, streams, StreamNotifications)
	require.Contains(t, streams, StreamPresence)
}
