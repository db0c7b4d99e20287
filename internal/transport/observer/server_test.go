package observer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"mapsync.ai/internal/mapstore"
	"mapsync.ai/internal/model"
	"mapsync.ai/internal/multimap"
	"mapsync.ai/internal/observerproto"
)

func newFeed(t *testing.T) (*Server, *httptest.Server, *multimap.Manager) {
	t.Helper()
	main := mapstore.NewMemory("main.map", model.Dimensions{Rows: 2, Cols: 2})
	main.AddPlayer(model.Player{ID: 1, Name: "alice", Current: true})
	sub := mapstore.NewMemory("sub1.map", model.Dimensions{Rows: 2, Cols: 2})
	set, err := multimap.NewMapSet(main, sub)
	if err != nil {
		t.Fatalf("map set: %v", err)
	}
	s := NewServer(nil, nil)
	mgr := multimap.NewManager(set, multimap.WithJournal(s))
	s.bootstrap = func() observerproto.BootstrapResponse { return Bootstrap(mgr) }

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/observer/bootstrap", s.BootstrapHandler())
	mux.HandleFunc("/v1/observer/ws", s.WSHandler())
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return s, srv, mgr
}

func dial(t *testing.T, s *Server, srv *httptest.Server, maps ...string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/observer/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	before := s.Sessions()
	sub := observerproto.SubscribeMsg{Type: observerproto.TypeSubscribe, ProtocolVersion: observerproto.Version, Maps: maps}
	if err := conn.WriteJSON(sub); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	deadline := time.Now().Add(3 * time.Second)
	for s.Sessions() == before {
		if time.Now().After(deadline) {
			t.Fatalf("session never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}
	return conn
}

func readChange(t *testing.T, conn *websocket.Conn) observerproto.ChangeMsg {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var msg observerproto.ChangeMsg
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestServer_StreamsFilteredChanges(t *testing.T) {
	s, srv, mgr := newFeed(t)
	conn := dial(t, s, srv, "sub1.map")

	p := model.Point{Row: 1, Col: 0}
	for _, m := range mgr.MapSet().All() {
		m.AddFixture(p, model.NewUnit(model.Player{ID: 1}, "k", "Scouts", 9))
	}
	if !mgr.RenameItem(model.NewUnit(model.Player{ID: 1}, "k", "Scouts", 9), "Rangers") {
		t.Fatalf("rename failed")
	}

	msg := readChange(t, conn)
	if msg.Type != observerproto.TypeChange || msg.Map != "sub1.map" || msg.Op != "rename" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.Row != 1 || msg.Col != 0 || msg.FixtureID != 9 || msg.Detail != "Rangers" {
		t.Fatalf("entry fields: %+v", msg)
	}
	if msg.Seq != 2 {
		t.Fatalf("seq: got %d want 2 (main's change is filtered out)", msg.Seq)
	}
}

func TestServer_RejectsBadHandshake(t *testing.T) {
	s, srv, _ := newFeed(t)
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/observer/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if err := conn.WriteJSON(map[string]string{"type": "HELLO"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected policy-violation close, got %v", err)
	}
	if s.Sessions() != 0 {
		t.Fatalf("rejected client must not be registered")
	}
}

func TestServer_Bootstrap(t *testing.T) {
	_, srv, _ := newFeed(t)
	resp, err := http.Get(srv.URL + "/v1/observer/bootstrap")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var b observerproto.BootstrapResponse
	if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(b.Maps) != 2 || !b.Maps[0].Main || b.Maps[1].Filename != "sub1.map" || b.Maps[1].Rows != 2 {
		t.Fatalf("maps: %+v", b.Maps)
	}
	if len(b.Players) != 1 || !b.Players[0].Current {
		t.Fatalf("players: %+v", b.Players)
	}
}

func TestServer_RecordWithoutSubscribersDoesNotBlock(t *testing.T) {
	s := NewServer(nil, nil)
	for i := 0; i < 10; i++ {
		s.Record(multimap.Entry{Op: "rename", Map: "main.map"})
	}
	if s.Dropped() != 0 {
		t.Fatalf("nothing should be counted as dropped without subscribers")
	}
}
