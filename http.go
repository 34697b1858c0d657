package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mark3labs/mcp-go/server"

	"github.com/c3mb0/mindset-mcp/pkg/coach"
	"github.com/c3mb0/mindset-mcp/pkg/compose"
)

// mountMCP attaches the MCP transport selected by cfg to r and returns its
// shutdown hook.
func mountMCP(r chi.Router, cfg *ServerConfig, s *server.MCPServer) func(context.Context) error {
	switch cfg.Transport {
	case transportSSE:
		sse := server.NewSSEServer(s, server.WithBaseURL(cfg.BaseURL))
		r.Handle("/sse", sse.SSEHandler())
		r.Handle("/message", sse.MessageHandler())
		return sse.Shutdown
	default:
		streamable := server.NewStreamableHTTPServer(s, server.WithEndpointPath("/mcp"))
		r.Handle("/mcp", streamable)
		return streamable.Shutdown
	}
}

func newRouter(cfg *ServerConfig, s *server.MCPServer, c *coach.Coach, logger *slog.Logger) (http.Handler, func(context.Context) error) {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc:  func(r *http.Request, origin string) bool { return true },
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{server.HeaderKeySessionID},
		AllowCredentials: false,
	}))

	shutdown := mountMCP(r, cfg, s)
	r.Post("/api/respond", newBridgeHandler(c).ServeHTTP)

	return r, shutdown
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"request_id", chiMiddleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"elapsed", time.Since(start),
			)
		})
	}
}

// JSON writes data with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type bridgeRequest struct {
	Messages  json.RawMessage `json:"messages"`
	Goal      string          `json:"goal"`
	Context   string          `json:"context"`
	SessionID string          `json:"session_id"`
}

type bridgeResponse struct {
	State            string              `json:"state"`
	InteractionCount int                 `json:"interaction_count"`
	CTA              string              `json:"cta"`
	Content          compose.ContentList `json:"content"`
}

// bridgeHandler serves the coach to plain JSON callers that speak a chat
// message list instead of MCP.
type bridgeHandler struct {
	coach *coach.Coach
}

func newBridgeHandler(c *coach.Coach) *bridgeHandler {
	return &bridgeHandler{coach: c}
}

func (h *bridgeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBridgeRequest(w, r)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		JSON(w, status, toErrorResponse(err))
		return
	}
	resp := h.coach.Respond(req)
	JSON(w, http.StatusOK, bridgeResponse{
		State:            string(resp.State),
		InteractionCount: resp.InteractionCount,
		CTA:              string(resp.CTA),
		Content:          resp.Content,
	})
}

func decodeBridgeRequest(w http.ResponseWriter, r *http.Request) (coach.Request, error) {
	var body bridgeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBridgeBody))
	if err := dec.Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return coach.Request{}, fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, tooLarge.Limit)
		}
		return coach.Request{}, fmt.Errorf("%w: malformed JSON body: %v", ErrInvalidInput, err)
	}

	raw := bytes.TrimSpace(body.Messages)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return coach.Request{}, &ValidationError{Field: "messages", Message: "is required"}
	}
	if raw[0] != '[' {
		return coach.Request{}, &ValidationError{Field: "messages", Value: string(raw), Message: "must be an array"}
	}
	var msgs []chatMessage
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return coach.Request{}, &ValidationError{Field: "messages", Message: "entries must be {role, content} objects"}
	}

	sessionKey := body.SessionID
	if sessionKey == "" {
		sessionKey = r.Header.Get(server.HeaderKeySessionID)
	}
	return coach.Request{
		Message:    lastUserMessage(msgs),
		Goal:       body.Goal,
		Context:    body.Context,
		SessionKey: sessionKey,
	}, nil
}

// lastUserMessage returns the newest user turn, or the newest turn of any
// role when no user turn exists.
func lastUserMessage(msgs []chatMessage) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if strings.EqualFold(msgs[i].Role, "user") {
			return msgs[i].Content
		}
	}
	if len(msgs) > 0 {
		return msgs[len(msgs)-1].Content
	}
	return ""
}

// serveHTTP runs the HTTP surface until ctx is cancelled.
func serveHTTP(ctx context.Context, cfg *ServerConfig, s *server.MCPServer, c *coach.Coach, logger *slog.Logger) error {
	handler, shutdownMCP := newRouter(cfg, s, c, logger)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      0, // SSE and streamable responses stay open
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Addr, "transport", cfg.Transport)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdownMCP(shutdownCtx); err != nil {
		logger.Warn("mcp transport shutdown", "error", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
