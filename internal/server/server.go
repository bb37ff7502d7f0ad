// Package server is a reference task server: one versioned task list resource
// behind a shared password, with a websocket feed of accepted writes.
package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/coder/websocket"
	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const maxBodySize = 64 << 20

// Options configure a Server.
type Options struct {
	// Store holds the resource (default: in-memory).
	Store Store

	// Password is exchanged for session tokens.
	Password string

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Server serves the task list resource.
type Server struct {
	store    Store
	password string
	logger   *slog.Logger
	feed     *hub

	mu       sync.RWMutex
	sessions map[string]struct{}
}

// New creates a server.
func New(opts Options) *Server {
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Server{
		store:    opts.Store,
		password: opts.Password,
		logger:   opts.Logger,
		feed:     newHub(),
		sessions: make(map[string]struct{}),
	}
}

// Handler returns the HTTP handler with all routes.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.Methods(http.MethodPost).Path("/session").HandlerFunc(s.login)

	authed := r.NewRoute().Subrouter()
	authed.Use(s.requireSession)
	authed.Methods(http.MethodDelete).Path("/session").HandlerFunc(s.logout)
	authed.Methods(http.MethodGet).Path("/").HandlerFunc(s.getResource)
	authed.Methods(http.MethodPut).Path("/").HandlerFunc(s.putResource)
	authed.Methods(http.MethodDelete).Path("/").HandlerFunc(s.deleteResource)
	authed.Methods(http.MethodGet).Path("/events").HandlerFunc(s.events)

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		s.logger.Info("handled", "method", r.Method, "url", r.URL, "duration", m.Duration, "status", m.Code)
	})
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearer(r)
		s.mu.RLock()
		_, ok := s.sessions[token]
		s.mu.RUnlock()
		if token == "" || !ok {
			writeError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if subtle.ConstantTimeCompare([]byte(body.Password), []byte(s.password)) != 1 {
		writeError(w, http.StatusUnauthorized, "invalid password")
		return
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = struct{}{}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	delete(s.sessions, bearer(r))
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getResource(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.Get(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) putResource(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Data    *string `json:"data"`
		Version *int    `json:"version"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.Version == nil {
		writeError(w, http.StatusBadRequest, "missing version")
		return
	}

	st, err := s.store.Put(r.Context(), body.Data, *body.Version)
	if errors.Is(err, ErrStale) {
		writeJSON(w, http.StatusConflict, st)
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}

	s.logger.Debug("resource updated", "version", st.Version)
	s.feed.publish(st.Version)
	writeJSON(w, http.StatusOK, map[string]int{"version": st.Version})
}

func (s *Server) deleteResource(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.Delete(r.Context())
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.logger.Debug("resource deleted", "version", st.Version)
	s.feed.publish(st.Version)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Error("failed to accept websocket", "err", err)
		return
	}
	defer conn.CloseNow()

	versions, cancel := s.feed.subscribe()
	defer cancel()

	// The feed is write-only; CloseRead cancels ctx once the peer goes away.
	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			return
		case v := <-versions:
			data, _ := json.Marshal(map[string]int{"version": v})
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		}
	}
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.Error("store failure", "err", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("invalid request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
