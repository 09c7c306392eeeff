package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"frictionstudy/internal/service"
)

func newWSServer(t *testing.T) (*Hub, *service.AuthService, *httptest.Server) {
	t.Helper()
	hub := NewHub()
	authSvc := service.NewAuthService("test-secret", time.Hour)
	h := NewHandler(hub, authSvc, "monitor-key")

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/session", h.SessionWS)
	mux.HandleFunc("/ws/monitor", h.MonitorWS)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return hub, authSvc, srv
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func waitRegistered(t *testing.T, hub *Hub, sessionID string, monitors int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		ok := len(hub.monitorConns) >= monitors && (sessionID == "" || len(hub.sessionConns[sessionID]) > 0)
		hub.mu.RUnlock()
		if ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("connection was not registered in time")
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return msg
}

func TestSessionPushReachesParticipantOnly(t *testing.T) {
	hub, authSvc, srv := newWSServer(t)

	tokenA, _ := authSvc.IssueSessionToken("session-a", time.Now())
	tokenB, _ := authSvc.IssueSessionToken("session-b", time.Now())

	connA, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/session?token="+tokenA), nil)
	if err != nil {
		t.Fatalf("dial a: %v", err)
	}
	defer connA.Close()
	connB, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/session?token="+tokenB), nil)
	if err != nil {
		t.Fatalf("dial b: %v", err)
	}
	defer connB.Close()
	waitRegistered(t, hub, "session-a", 0)
	waitRegistered(t, hub, "session-b", 0)

	hub.BroadcastToSession("session-b", service.EventVerifyComplete, map[string]int{"itemId": 7})

	msg := readMessage(t, connB)
	if msg.Type != MsgVerificationComplete {
		t.Fatalf("expected %s, got %s", MsgVerificationComplete, msg.Type)
	}
	var payload map[string]int
	json.Unmarshal(msg.Payload, &payload)
	if payload["itemId"] != 7 {
		t.Fatalf("unexpected payload %s", msg.Payload)
	}

	connA.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := connA.ReadMessage(); err == nil {
		t.Fatal("session-a must not receive session-b's events")
	}
}

func TestMonitorFeed(t *testing.T) {
	hub, authSvc, srv := newWSServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/monitor?key=wrong"), nil)
	if err == nil || resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a wrong key, got %v", err)
	}

	monitor, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/monitor?key=monitor-key"), nil)
	if err != nil {
		t.Fatalf("dial monitor: %v", err)
	}
	defer monitor.Close()
	waitRegistered(t, hub, "", 1)

	token, _ := authSvc.IssueSessionToken("session-a", time.Now())
	participant, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/session?token="+token), nil)
	if err != nil {
		t.Fatalf("dial participant: %v", err)
	}
	defer participant.Close()

	if msg := readMessage(t, monitor); msg.Type != MsgParticipantOnline {
		t.Fatalf("expected %s, got %s", MsgParticipantOnline, msg.Type)
	}

	hub.BroadcastToMonitor(service.EventDecisionSaved, map[string]interface{}{"sessionId": "session-a", "itemId": 1})
	if msg := readMessage(t, monitor); msg.Type != MsgDecisionSaved {
		t.Fatalf("expected %s, got %s", MsgDecisionSaved, msg.Type)
	}
}

func TestSessionWSRejectsBadToken(t *testing.T) {
	_, _, srv := newWSServer(t)
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/session?token=nope"), nil)
	if err == nil || resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
