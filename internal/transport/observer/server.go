package observer

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"mapsync.ai/internal/multimap"
	"mapsync.ai/internal/observerproto"
)

// Server streams every journaled change to websocket subscribers. It is a
// multimap.Journal: Record fans the entry out without blocking, dropping it
// for any subscriber whose queue is full.
type Server struct {
	bootstrap func() observerproto.BootstrapResponse
	log       *log.Logger

	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[*session]struct{}
	seq      uint64

	dropped atomic.Uint64
}

type session struct {
	out  chan []byte
	maps atomic.Pointer[map[string]bool]
}

func (s *session) wants(mapName string) bool {
	f := s.maps.Load()
	return f == nil || len(*f) == 0 || (*f)[mapName]
}

func (s *session) setFilter(maps []string) {
	f := make(map[string]bool, len(maps))
	for _, m := range maps {
		if m = strings.TrimSpace(m); m != "" {
			f[m] = true
		}
	}
	s.maps.Store(&f)
}

// NewServer builds a feed whose bootstrap endpoint answers with bootstrap().
// bootstrap runs on HTTP goroutines, so it must do its own locking.
func NewServer(bootstrap func() observerproto.BootstrapResponse, logger *log.Logger) *Server {
	return &Server{
		bootstrap: bootstrap,
		log:       logger,
		sessions:  map[*session]struct{}{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Bootstrap describes the map set behind mgr.
func Bootstrap(mgr *multimap.Manager) observerproto.BootstrapResponse {
	resp := observerproto.BootstrapResponse{ProtocolVersion: observerproto.Version}
	for i, m := range mgr.MapSet().All() {
		d := m.Dimensions()
		resp.Maps = append(resp.Maps, observerproto.MapInfo{Filename: m.Filename(), Main: i == 0, Rows: d.Rows, Cols: d.Cols})
	}
	for _, p := range mgr.Players() {
		resp.Players = append(resp.Players, observerproto.PlayerInfo{ID: p.ID, Name: p.Name, Current: p.Current})
	}
	return resp
}

func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) Dropped() uint64 { return s.dropped.Load() }

func (s *Server) Record(e multimap.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if len(s.sessions) == 0 {
		return
	}
	b, err := json.Marshal(observerproto.ChangeMsg{
		Type:            observerproto.TypeChange,
		ProtocolVersion: observerproto.Version,
		Seq:             s.seq,
		Op:              e.Op,
		Map:             e.Map,
		Row:             e.Point.Row,
		Col:             e.Point.Col,
		FixtureID:       e.FixtureID,
		Detail:          e.Detail,
	})
	if err != nil {
		return
	}
	for sess := range s.sessions {
		if !sess.wants(e.Map) {
			continue
		}
		select {
		case sess.out <- b:
		default:
			s.dropped.Add(1)
		}
	}
}

func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(s.bootstrap())
	}
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: must send SUBSCRIBE first.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		sub, ok := decodeSubscribe(msg)
		if !ok {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected SUBSCRIBE"), time.Now().Add(time.Second))
			return
		}

		sess := &session{out: make(chan []byte, 1024)}
		sess.setFilter(sub.Maps)
		s.mu.Lock()
		s.sessions[sess] = struct{}{}
		s.mu.Unlock()
		if s.log != nil {
			s.log.Printf("observer: %s subscribed (maps=%v)", r.RemoteAddr, sub.Maps)
		}
		defer func() {
			s.mu.Lock()
			delete(s.sessions, sess)
			s.mu.Unlock()
		}()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case b := <-sess.out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		// Reader loop: allow SUBSCRIBE updates.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			if sub, ok := decodeSubscribe(msg); ok {
				sess.setFilter(sub.Maps)
			}
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		// Best-effort wait for the writer to stop so it doesn't outlive conn.
		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func decodeSubscribe(b []byte) (observerproto.SubscribeMsg, bool) {
	var sub observerproto.SubscribeMsg
	if err := json.Unmarshal(b, &sub); err != nil {
		return sub, false
	}
	return sub, sub.Type == observerproto.TypeSubscribe && sub.ProtocolVersion == observerproto.Version
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
