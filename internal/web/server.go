// Package web provides the HTTP status server for the relay-scheduler daemon.
package web

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/sweeney/relay-scheduler/internal/status"
)

const (
	// DefaultPushInterval is how often /ws clients receive the status.
	DefaultPushInterval = 2 * time.Second

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Options configures a Server.
type Options struct {
	Metrics      http.Handler // served at /metrics when set
	PushInterval time.Duration
	Log          zerolog.Logger
}

// Server serves the status page, JSON, metrics and a live websocket feed.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	log        zerolog.Logger
	push       time.Duration
	upgrader   websocket.Upgrader

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a Server that reads state from the given tracker.
func New(addr string, tracker *status.Tracker, opts Options) *Server {
	if opts.PushInterval <= 0 {
		opts.PushInterval = DefaultPushInterval
	}
	s := &Server{
		tracker: tracker,
		log:     opts.Log.With().Str("component", "web").Logger(),
		push:    opts.PushInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		done: make(chan struct{}),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", s.handleIndex)
	r.Get("/index.html", s.handleIndex)
	r.Get("/index.json", s.handleJSON)
	r.Get("/ws", s.handleWS)
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics)
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the router. Useful for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown closes websocket feeds and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closeOnce.Do(func() { close(s.done) })
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderHTML(w, snap); err != nil {
		s.log.Error().Err(err).Msg("render index")
	}
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

// handleWS streams the status JSON on connect and every push interval until
// the client goes away or the server shuts down.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()
	s.log.Debug().Str("remote", r.RemoteAddr).Msg("websocket client connected")

	// Reader: only needed for pongs and to notice the client closing.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pushTicker := time.NewTicker(s.push)
	defer pushTicker.Stop()
	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	if err := s.writeStatus(conn); err != nil {
		return
	}

	for {
		select {
		case <-pushTicker.C:
			if err := s.writeStatus(conn); err != nil {
				return
			}
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-gone:
			s.log.Debug().Str("remote", r.RemoteAddr).Msg("websocket client disconnected")
			return
		case <-s.done:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
			return
		}
	}
}

func (s *Server) writeStatus(conn *websocket.Conn) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := conn.WriteMessage(websocket.TextMessage, status.FormatJSON(s.tracker.Snapshot()))
	if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		s.log.Debug().Err(err).Msg("websocket write failed")
	}
	return err
}
