package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/vovakirdan/relaychat/internal/config"
	"github.com/vovakirdan/relaychat/internal/core"
	"github.com/vovakirdan/relaychat/internal/proto"
)

const stamp = " 2024-05-06 07:08:09"

func startTestServer(t *testing.T) (*httptest.Server, *core.Hub, *WSHandler) {
	t.Helper()

	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local)
	hub := core.NewHub(core.Options{Now: func() time.Time { return at }})

	cfg := config.Default()
	cfg.HTTPAddr = ":0"

	ws := NewWSHandler(hub, cfg.MaxLineBytes, nil)
	server := NewServer(hub, ws, cfg, nil)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, hub, ws
}

func dialWS(t *testing.T, ctx context.Context, ts *httptest.Server, name string) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", name, err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "done") })

	if err := conn.Write(ctx, websocket.MessageText, []byte(name)); err != nil {
		t.Fatalf("send identity: %v", err)
	}
	return conn
}

func readLine(t *testing.T, ctx context.Context, conn *websocket.Conn, want string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("expected %q, read failed: %v", want, err)
	}
	if got := string(data); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts, _, _ := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestWebSocketChatAndOnline(t *testing.T) {
	ts, hub, ws := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := dialWS(t, ctx, ts, "alice")
	readLine(t, ctx, alice, "Welcome, alice!")
	// Sessions are sequential: the reply means alice's join fan-out is done.
	if err := alice.Write(ctx, websocket.MessageText, []byte("#search(zzz)")); err != nil {
		t.Fatalf("send search: %v", err)
	}
	readLine(t, ctx, alice, proto.NotFound)

	bob := dialWS(t, ctx, ts, "bob")
	readLine(t, ctx, bob, "Welcome, bob!")
	readLine(t, ctx, alice, "Server : bob has entered the chat!"+stamp)

	if err := alice.Write(ctx, websocket.MessageText, []byte(proto.ChatLine("alice", "hi there", 1))); err != nil {
		t.Fatalf("send chat: %v", err)
	}
	readLine(t, ctx, bob, "alice : hi there [1] message(s)"+stamp)

	if err := bob.Write(ctx, websocket.MessageText, []byte("#search(hi)")); err != nil {
		t.Fatalf("send search: %v", err)
	}
	readLine(t, ctx, bob, "alice : hi there [1] message(s)"+stamp)

	resp, err := ts.Client().Get(ts.URL + "/api/online")
	if err != nil {
		t.Fatalf("online request failed: %v", err)
	}
	defer resp.Body.Close()

	var online OnlineResponse
	if err := json.NewDecoder(resp.Body).Decode(&online); err != nil {
		t.Fatalf("decode online: %v", err)
	}
	if online.Count != 2 || len(online.Users) != 2 {
		t.Fatalf("expected 2 online users, got %+v", online)
	}
	if online.Users[0].Identity != "alice" || online.Users[1].Identity != "bob" {
		t.Fatalf("expected admission order, got %+v", online.Users)
	}
	if online.Users[0].MessagesSent != 1 || online.Users[1].MessagesSent != 0 {
		t.Fatalf("unexpected sent counters: %+v", online.Users)
	}

	if err := bob.Close(websocket.StatusNormalClosure, "bye"); err != nil {
		t.Fatalf("close bob: %v", err)
	}
	readLine(t, ctx, alice, "Server : bob has left the chat"+stamp)

	deadline := time.Now().Add(2 * time.Second)
	for hub.Registry().CountWithIdentity("bob") != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("bob was not removed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := alice.Close(websocket.StatusNormalClosure, "bye"); err != nil {
		t.Fatalf("close alice: %v", err)
	}
	waitCtx, waitCancel := context.WithTimeout(ctx, 2*time.Second)
	defer waitCancel()
	if err := ws.Wait(waitCtx); err != nil {
		t.Fatalf("sessions still running after both clients left: %v", err)
	}
	if hub.Registry().Len() != 0 {
		t.Fatalf("expected empty registry, got %d", hub.Registry().Len())
	}
}

func TestStatusRoutesStillServedBesideWebSocket(t *testing.T) {
	ts, _, _ := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/api/online")
	if err != nil {
		t.Fatalf("online request failed: %v", err)
	}
	defer resp.Body.Close()

	var online OnlineResponse
	if err := json.NewDecoder(resp.Body).Decode(&online); err != nil {
		t.Fatalf("decode online: %v", err)
	}
	if online.Count != 0 || len(online.Users) != 0 {
		t.Fatalf("expected nobody online, got %+v", online)
	}

	missing, err := ts.Client().Get(ts.URL + "/nope")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer missing.Body.Close()
	if missing.StatusCode != stdhttp.StatusNotFound {
		t.Fatalf("expected 404 from the router, got %d", missing.StatusCode)
	}
}
