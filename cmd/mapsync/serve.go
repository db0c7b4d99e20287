package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"mapsync.ai/internal/model"
	"mapsync.ai/internal/observerproto"
	"mapsync.ai/internal/transport/observer"
)

func serveCmd(args []string, logger *log.Logger) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "./mapsync.yaml", "map set config path")
	addr := fs.String("addr", "", "http listen address (default: observer_addr from config, else 127.0.0.1:8080)")
	_ = fs.Parse(args)

	cfg := loadConfig(*cfgPath)
	listen := strings.TrimSpace(*addr)
	if listen == "" {
		listen = cfg.ObserverAddr
	}
	if listen == "" {
		listen = "127.0.0.1:8080"
	}

	a := &adminAPI{logger: logger}
	feed := observer.NewServer(a.bootstrap, logger)
	s, err := openSession(cfg, logger, feed)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer s.close()
	a.s = s

	ctx, cancel := signalContext()
	defer cancel()

	srv := &http.Server{
		Addr:              listen,
		Handler:           a.routes(feed),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s (%d map(s))", listen, len(s.maps))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

// adminAPI serializes every edit and read of the loaded map set.
type adminAPI struct {
	logger *log.Logger

	mu sync.Mutex
	s  *session
}

func (a *adminAPI) bootstrap() observerproto.BootstrapResponse {
	a.mu.Lock()
	defer a.mu.Unlock()
	return observer.Bootstrap(a.s.mgr)
}

func (a *adminAPI) routes(feed *observer.Server) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok\n"))
	})
	mux.HandleFunc("/v1/observer/bootstrap", feed.BootstrapHandler())
	mux.HandleFunc("/v1/observer/ws", feed.WSHandler())
	mux.HandleFunc("/v1/admin/dedupe", a.post(func(r *http.Request) (report, error) {
		return a.s.dedupe(r.URL.Query().Get("apply") == "true"), nil
	}))
	mux.HandleFunc("/v1/admin/coalesce", a.post(func(r *http.Request) (report, error) {
		return a.s.coalesce(r.URL.Query().Get("apply") == "true"), nil
	}))
	mux.HandleFunc("/v1/admin/propagate", a.post(func(r *http.Request) (report, error) {
		p, err := pointParam(r)
		if err != nil {
			return report{}, err
		}
		if !a.s.mgr.MapSet().Main().Dimensions().Contains(p) {
			return report{}, fmt.Errorf("location %v outside the map", p)
		}
		return a.s.propagate(p), nil
	}))
	mux.HandleFunc("/v1/admin/transfer", a.post(func(r *http.Request) (report, error) {
		q := r.URL.Query()
		pile, err1 := strconv.Atoi(q.Get("pile"))
		dest, err2 := strconv.Atoi(q.Get("dest"))
		qty, err3 := strconv.ParseFloat(q.Get("qty"), 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return report{}, fmt.Errorf("transfer needs integer pile and dest and a numeric qty")
		}
		return a.s.transfer(pile, dest, qty)
	}))
	mux.HandleFunc("/v1/admin/save", a.post(func(*http.Request) (report, error) {
		n, err := a.s.save()
		return report{Applied: n}, err
	}))
	return mux
}

// post wraps a locked, loopback-only POST handler answering with a report.
func (a *adminAPI) post(fn func(r *http.Request) (report, error)) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		a.mu.Lock()
		rep, err := fn(r)
		a.mu.Unlock()

		rw.Header().Set("Content-Type", "application/json")
		if err != nil {
			a.logger.Printf("%s: %v", r.URL.Path, err)
			rw.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(rw).Encode(map[string]any{"ok": false, "error": err.Error()})
			return
		}
		_ = json.NewEncoder(rw).Encode(map[string]any{"ok": true, "report": rep})
	}
}

func pointParam(r *http.Request) (model.Point, error) {
	q := r.URL.Query()
	row, err := strconv.Atoi(q.Get("row"))
	if err != nil {
		return model.InvalidPoint, fmt.Errorf("bad row: %w", err)
	}
	col, err := strconv.Atoi(q.Get("col"))
	if err != nil {
		return model.InvalidPoint, fmt.Errorf("bad col: %w", err)
	}
	return model.Point{Row: row, Col: col}, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
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
