// Package server exposes the calculator over a websocket endpoint and a
// plain JSON HTTP endpoint, with Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/pengelbrecht/calc/internal/calculator"
)

const (
	DefaultAddr = "127.0.0.1:8790"

	pingInterval = 30 * time.Second
	readTimeout  = 90 * time.Second
	writeTimeout = 10 * time.Second
	maxMessage   = 4096
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for the server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRateLimit sets the per-connection token bucket.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		s.rateLimit = rate.Limit(rps)
		s.burst = burst
	}
}

// Server evaluates calculator requests.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	upgrader   websocket.Upgrader
	metrics    *metrics

	rateLimit rate.Limit
	burst     int

	conns   map[*websocket.Conn]struct{}
	connsMu sync.Mutex
}

// New creates a server listening on addr (DefaultAddr if empty).
func New(addr string, opts ...Option) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	s := &Server{
		logger:    slog.Default(),
		metrics:   newMetrics(),
		rateLimit: 50,
		burst:     20,
		conns:     make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/eval", s.handleEval)
	mux.HandleFunc("/ws", s.handleWS)
	mux.Handle("/metrics", s.metrics.handler())

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is like Run but accepts an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("server listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		err := s.httpServer.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
			return
		}
		errCh <- err
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.closeConns()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		s.logger.Info("server stopped")
		return <-errCh
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessage))
	if err := dec.Decode(&req); err != nil {
		s.metrics.observe("unknown", outcomeRejected)
		writeJSON(w, http.StatusBadRequest, errorResponse("", CodeBadRequest, err))
		return
	}

	resp := s.evaluate(req)
	status := http.StatusOK
	switch resp.Code {
	case CodeBadRequest:
		status = http.StatusBadRequest
	case CodeInvalidArgument:
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	s.trackConn(conn)
	defer s.untrackConn(conn)

	s.metrics.connections.Inc()
	defer s.metrics.connections.Dec()

	logger := s.logger.With("remote", r.RemoteAddr)
	logger.Debug("websocket connected")

	conn.SetReadLimit(maxMessage)
	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	pingDone := make(chan struct{})
	defer close(pingDone)
	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-pingDone:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
					return
				}
			}
		}
	}()

	limiter := rate.NewLimiter(s.rateLimit, s.burst)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("websocket read failed", "error", err)
			} else {
				logger.Debug("websocket closed")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))

		resp := s.handleMessage(msg, limiter)

		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(resp); err != nil {
			logger.Warn("websocket write failed", "error", err)
			return
		}
	}
}

func (s *Server) handleMessage(msg []byte, limiter *rate.Limiter) Response {
	var req Request
	if err := json.Unmarshal(msg, &req); err != nil {
		s.metrics.observe("unknown", outcomeRejected)
		return errorResponse("", CodeBadRequest, err)
	}
	if !limiter.Allow() {
		s.metrics.observe(opLabel(req.Op), outcomeRejected)
		return errorResponse(req.ID, CodeRateLimited, ErrRateLimited)
	}
	return s.evaluate(req)
}

func (s *Server) evaluate(req Request) Response {
	op, err := calculator.ParseOp(req.Op)
	if err != nil {
		s.metrics.observe("unknown", outcomeRejected)
		return errorResponse(req.ID, CodeBadRequest, err)
	}

	v, err := calculator.Eval(op, req.A, req.B)
	if err != nil {
		s.metrics.observe(op.String(), outcomeError)
		s.logger.Debug("evaluation failed", "op", op.String(), "a", req.A, "b", req.B, "error", err)
		return errorResponse(req.ID, CodeInvalidArgument, err)
	}

	s.metrics.observe(op.String(), outcomeOK)
	return resultResponse(req.ID, v)
}

func opLabel(raw string) string {
	op, err := calculator.ParseOp(raw)
	if err != nil {
		return "unknown"
	}
	return op.String()
}

func (s *Server) trackConn(conn *websocket.Conn) {
	s.connsMu.Lock()
	s.conns[conn] = struct{}{}
	s.connsMu.Unlock()
}

func (s *Server) untrackConn(conn *websocket.Conn) {
	s.connsMu.Lock()
	delete(s.conns, conn)
	s.connsMu.Unlock()
	conn.Close()
}

// closeConns sends a going-away close frame to every open websocket.
// Hijacked connections are not closed by http.Server.Shutdown.
func (s *Server) closeConns() {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for conn := range s.conns {
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		conn.Close()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
