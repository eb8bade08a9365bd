package presence

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func startTestHub(t *testing.T) (*Hub, *Tracker, *httptest.Server) {
	t.Helper()

	tracker := NewTracker(nil, nil)
	hub := NewHub(HubConfig{Tracker: tracker})
	go hub.Run()
	t.Cleanup(hub.Stop)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)

	return hub, tracker, srv
}

func dialPresence(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?user_id=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial presence channel as %s: %v", userID, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read presence frame: %v", err)
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Failed to decode presence frame %q: %v", data, err)
	}
	return msg
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func TestHub_SnapshotOnConnect(t *testing.T) {
	_, tracker, srv := startTestHub(t)

	conn := dialPresence(t, srv, "u1")
	msg := readFrame(t, conn)

	if msg.Type != "sync" {
		t.Fatalf("First frame type = %s, want sync", msg.Type)
	}
	if len(msg.Members) != 1 || msg.Members[0] != "u1" {
		t.Errorf("Snapshot members = %v, want [u1]", msg.Members)
	}

	waitFor(t, "tracker to contain u1", func() bool { return tracker.Contains("u1") })
}

func TestHub_BroadcastsJoinToExistingPeers(t *testing.T) {
	_, tracker, srv := startTestHub(t)

	conn1 := dialPresence(t, srv, "u1")
	_ = readFrame(t, conn1) // own snapshot

	conn2 := dialPresence(t, srv, "u2")
	snapshot := readFrame(t, conn2)
	if snapshot.Type != "sync" || len(snapshot.Members) != 2 {
		t.Errorf("u2 snapshot = %+v, want sync with 2 members", snapshot)
	}

	join := readFrame(t, conn1)
	if join.Type != "join" || join.UserID != "u2" {
		t.Errorf("u1 received %+v, want join for u2", join)
	}

	waitFor(t, "tracker to contain both", func() bool {
		return tracker.Contains("u1") && tracker.Contains("u2")
	})
}

func TestHub_BroadcastsLeaveOnDisconnect(t *testing.T) {
	_, tracker, srv := startTestHub(t)

	conn1 := dialPresence(t, srv, "u1")
	_ = readFrame(t, conn1)

	conn2 := dialPresence(t, srv, "u2")
	_ = readFrame(t, conn2)
	_ = readFrame(t, conn1) // join frame for u2

	if err := conn2.Close(); err != nil {
		t.Fatalf("Failed to close u2: %v", err)
	}

	leave := readFrame(t, conn1)
	if leave.Type != "leave" || leave.UserID != "u2" {
		t.Errorf("u1 received %+v, want leave for u2", leave)
	}

	waitFor(t, "tracker to drop u2", func() bool { return !tracker.Contains("u2") })
}

func TestHub_SecondConnectionSameIdentityDoesNotRejoin(t *testing.T) {
	_, tracker, srv := startTestHub(t)

	conn1 := dialPresence(t, srv, "u1")
	_ = readFrame(t, conn1)

	// A second tab for the same identity: peers see no join frame and
	// closing it does not drop membership.
	conn1b := dialPresence(t, srv, "u1")
	_ = readFrame(t, conn1b)

	if err := conn1b.Close(); err != nil {
		t.Fatalf("Failed to close second connection: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if !tracker.Contains("u1") {
		t.Error("Identity dropped while a connection remained")
	}

	// No join/leave frames should have reached the first connection.
	if err := conn1.SetReadDeadline(time.Now().Add(100 * time.Millisecond)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}
	if _, data, err := conn1.ReadMessage(); err == nil {
		t.Errorf("Unexpected frame for duplicate identity: %s", data)
	}
}

func TestHub_ConfiguredJoinLimitApplies(t *testing.T) {
	tracker := NewTracker(nil, nil)
	hub := NewHub(HubConfig{Tracker: tracker, JoinRate: 0.001, JoinBurst: 1})
	go hub.Run()
	t.Cleanup(hub.Stop)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)

	// The burst of one admits the first join; the near-zero refill rate
	// rejects the second.
	dialPresence(t, srv, "u1")

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?user_id=u2"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("Dial past the join limit succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Expected 429 response, got %+v", resp)
	}
}

func TestHub_RejectsMissingUserID(t *testing.T) {
	_, _, srv := startTestHub(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("Dial without user_id succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 response, got %+v", resp)
	}
}
