package a2a

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// malformedFormat documents the envelope a caller must send, echoed
// back whenever the request body cannot be decoded.
const malformedFormat = `{"command": "<name>", "params": {...}}`

// Server exposes a Dispatcher over HTTP.
type Server struct {
	dispatcher *Dispatcher
	auth       *BearerAuth // nil disables the check
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithBearerAuth enables a required Authorization: Bearer <jwt> check
// on every request, validated against auth.
func WithBearerAuth(auth *BearerAuth) ServerOption {
	return func(s *Server) { s.auth = auth }
}

// NewServer builds a Server dispatching onto tools.
func NewServer(dispatcher *Dispatcher, opts ...ServerOption) *Server {
	s := &Server{dispatcher: dispatcher}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns the chi mux with the single message endpoint
// registered, since the raw wire framing this runtime accepts is
// deliberately narrow: one inbound boundary the dispatcher hangs off.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if s.auth != nil {
		r.Use(s.auth.Middleware)
	}
	r.Post("/a2a/message", s.handleMessage)
	return r
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, failure("reading request body failed: "+err.Error()))
		return
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, failure(
			"Error: "+err.Error()+"\n\nExpected JSON format: "+malformedFormat))
		return
	}
	if req.Command == "" {
		writeJSON(w, http.StatusBadRequest, failure(
			"Error: missing command\n\nExpected JSON format: "+malformedFormat))
		return
	}

	resp := s.dispatcher.Dispatch(req)
	status := http.StatusOK
	if !resp.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
