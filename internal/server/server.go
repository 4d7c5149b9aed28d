// Package server exposes the tag bot over HTTP. It stands in for a chat
// transport: each POST carries one message and the caller who sent it.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/scubot/tagbot/internal/bot"
	"github.com/scubot/tagbot/internal/dispatch"
)

// RequestIDHeader carries the request id in and out.
const RequestIDHeader = "X-Request-ID"

const shutdownTimeout = 5 * time.Second

// maxBodyBytes caps a dispatch request body.
const maxBodyBytes = 64 << 10

// Options configures a Server.
type Options struct {
	Addr        string
	MetricsPath string
	// Metrics is served at MetricsPath when set.
	Metrics http.Handler
	Logger  *log.Logger
}

// Server is the HTTP front end for a bot.
type Server struct {
	bot     *bot.Bot
	opts    Options
	logger  *log.Logger
	handler http.Handler
}

// DispatchRequest is the body of POST /dispatch.
type DispatchRequest struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	Message  string `json:"message"`
}

// DispatchResponse is the body of a successful POST /dispatch.
type DispatchResponse struct {
	Reply    string `json:"reply"`
	Markdown bool   `json:"markdown"`
}

// RouteInfo describes one registered route.
type RouteInfo struct {
	Template string `json:"template"`
	Captures int    `json:"captures"`
	Untyped  int    `json:"untyped"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New builds a server for b.
func New(b *bot.Bot, opts Options) *Server {
	s := &Server{bot: b, opts: opts, logger: opts.Logger}
	if s.logger == nil {
		s.logger = log.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /dispatch", s.handleDispatch)
	mux.HandleFunc("GET /routes", s.handleRoutes)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Metrics != nil && opts.MetricsPath != "" {
		mux.Handle("GET "+opts.MetricsPath, opts.Metrics)
	}

	s.handler = s.withRequestLog(mux)
	return s
}

// Handler returns the root handler, including request logging.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	var req DispatchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required"})
		return
	}

	ctx := r.Context()
	if req.UserID != "" {
		ctx = bot.WithCaller(ctx, bot.Caller{ID: req.UserID, Name: req.UserName})
	}

	reply, err := s.bot.Handle(ctx, req.Message)
	switch {
	case errors.Is(err, dispatch.ErrNoMatch):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no matching command"})
	case err != nil:
		requestLogger(ctx, s.logger).Error("dispatch failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	default:
		writeJSON(w, http.StatusOK, DispatchResponse{Reply: reply.Text, Markdown: reply.Markdown})
	}
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	rules := s.bot.Registry().Rules()
	out := make([]RouteInfo, 0, len(rules))
	for _, rule := range rules {
		key := rule.Key()
		out = append(out, RouteInfo{
			Template: rule.Template(),
			Captures: key.Captures,
			Untyped:  key.Untyped,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
