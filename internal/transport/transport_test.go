package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/helix-dev/helix/internal/chat"
)

// testServer accepts one WebSocket connection at a time and exposes the
// frames it receives plus a way to push frames to the client.
type testServer struct {
	srv      *httptest.Server
	received chan frame
	conns    chan *websocket.Conn
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		received: make(chan frame, 16),
		conns:    make(chan *websocket.Conn, 4),
	}
	ts.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Errorf("accept: %v", err)
			return
		}
		ts.conns <- conn
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				return
			}
			var f frame
			if err := json.Unmarshal(data, &f); err != nil {
				t.Errorf("server got malformed frame: %v", err)
				continue
			}
			ts.received <- f
		}
	}))
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *testServer) url() string {
	return "ws" + strings.TrimPrefix(ts.srv.URL, "http")
}

func (ts *testServer) push(t *testing.T, event string, data any) {
	t.Helper()
	conn := <-ts.conns
	ts.conns <- conn
	payload, _ := json.Marshal(data)
	msg, _ := json.Marshal(frame{Event: event, Data: payload})
	if err := conn.Write(context.Background(), websocket.MessageText, msg); err != nil {
		t.Fatalf("server push: %v", err)
	}
}

func (ts *testServer) nextFrame(t *testing.T) frame {
	t.Helper()
	select {
	case f := <-ts.received:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return frame{}
	}
}

func TestConnectAndEmit(t *testing.T) {
	ts := newTestServer(t)
	client := NewClient(ts.url())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Connect(ctx, "recruiter"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Disconnect()

	client.JoinRoom("1")
	f := ts.nextFrame(t)
	if f.Event != "join_room" {
		t.Errorf("event = %q, want join_room", f.Event)
	}
	var roomID string
	if err := json.Unmarshal(f.Data, &roomID); err != nil || roomID != "1" {
		t.Errorf("join_room data = %s", f.Data)
	}

	client.SendMessage("1", "hello team")
	f = ts.nextFrame(t)
	if f.Event != "send_message" {
		t.Errorf("event = %q, want send_message", f.Event)
	}
	var payload sendMessagePayload
	if err := json.Unmarshal(f.Data, &payload); err != nil {
		t.Fatalf("unmarshal send_message: %v", err)
	}
	if payload.RoomID != "1" || payload.Message != "hello team" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestEmitWhenDisconnectedIsNoOp(t *testing.T) {
	client := NewClient("ws://127.0.0.1:1/ws")

	// Must not panic or block.
	client.JoinRoom("1")
	client.LeaveRoom("1")
	client.SendMessage("1", "dropped")
	client.Disconnect()
	client.Disconnect()
}

func TestConnectFailure(t *testing.T) {
	client := NewClient("ws://127.0.0.1:1/ws")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Connect(ctx, "recruiter"); err == nil {
		t.Fatal("expected connection error")
	}
	if client.Connected() {
		t.Error("Connected() = true after failed dial")
	}
}

func TestInboundDispatch(t *testing.T) {
	ts := newTestServer(t)
	client := NewClient(ts.url())

	messages := make(chan chat.Message, 4)
	responses := make(chan json.RawMessage, 4)
	client.OnMessageReceived(func(m chat.Message) { messages <- m })
	client.OnAPIResponseReceived(func(raw json.RawMessage) { responses <- raw })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Connect(ctx, "recruiter"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Disconnect()

	ts.push(t, "receive_message", chat.Message{ID: "1", Text: "hi", Sender: "ana", Timestamp: 1700000000000})
	select {
	case m := <-messages:
		if m.Text != "hi" || m.Sender != "ana" {
			t.Errorf("message = %+v", m)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("receive_message not dispatched")
	}

	ts.push(t, "api_response", map[string]string{"message": "assistant reply"})
	select {
	case raw := <-responses:
		if !strings.Contains(string(raw), "assistant reply") {
			t.Errorf("api_response payload = %s", raw)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("api_response not dispatched")
	}
}

func TestLastRegistrationWins(t *testing.T) {
	ts := newTestServer(t)
	client := NewClient(ts.url())

	first := make(chan chat.Message, 1)
	second := make(chan chat.Message, 1)
	client.OnMessageReceived(func(m chat.Message) { first <- m })
	client.OnMessageReceived(func(m chat.Message) { second <- m })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Connect(ctx, "recruiter"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Disconnect()

	ts.push(t, "receive_message", chat.Message{ID: "1", Text: "only once"})

	select {
	case <-second:
	case <-time.After(2 * time.Second):
		t.Fatal("replacement handler never invoked")
	}
	select {
	case <-first:
		t.Error("replaced handler still invoked")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestReconnectReplacesConnection(t *testing.T) {
	ts := newTestServer(t)
	client := NewClient(ts.url())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Connect(ctx, "recruiter"); err != nil {
		t.Fatalf("first Connect failed: %v", err)
	}
	if err := client.Connect(ctx, "recruiter"); err != nil {
		t.Fatalf("second Connect failed: %v", err)
	}
	defer client.Disconnect()

	if !client.Connected() {
		t.Error("Connected() = false after reconnect")
	}

	// Emissions go to the replacement connection.
	client.JoinRoom("2")
	f := ts.nextFrame(t)
	if f.Event != "join_room" {
		t.Errorf("event = %q", f.Event)
	}
}
