// Package api serves the finch command API the webview front-end and the
// shell process call: secret storage, file passthrough, file picking, change
// events, and health.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/finchapp/finch/internal/backend"
	"github.com/finchapp/finch/internal/picker"
	"github.com/finchapp/finch/internal/secrets"
)

// Commands are cheap local filesystem calls; the limiter only guards
// against a runaway front-end loop.
const (
	rateLimit = rate.Limit(200)
	rateBurst = 400
)

// Server serves the finch command API over a Unix socket and optionally TCP.
type Server struct {
	backend *backend.Backend
	server  *http.Server
	logger  *slog.Logger
	limiter *rate.Limiter
}

// NewServer creates an API server backed by the given backend.
func NewServer(b *backend.Backend) *Server {
	s := &Server{
		backend: b,
		logger:  slog.With("component", "api"),
		limiter: rate.NewLimiter(rateLimit, rateBurst),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/secrets", s.listSecrets)
	mux.HandleFunc("GET /v1/secrets/{key}", s.getSecret)
	mux.HandleFunc("PUT /v1/secrets/{key}", s.setSecret)
	mux.HandleFunc("DELETE /v1/secrets/{key}", s.removeSecret)
	mux.HandleFunc("POST /v1/secrets/lookup", s.lookupSecrets)
	mux.HandleFunc("POST /v1/picks", s.requestPick)
	mux.HandleFunc("GET /v1/picks/next", s.nextPick)
	mux.HandleFunc("POST /v1/picks/{id}", s.resolvePick)
	mux.HandleFunc("POST /v1/files/read", s.readFile)
	mux.HandleFunc("POST /v1/files/write", s.writeFile)
	mux.HandleFunc("GET /v1/files/exists", s.fileExists)
	mux.HandleFunc("POST /v1/watch", s.addWatch)
	mux.HandleFunc("DELETE /v1/watch", s.removeWatch)
	mux.HandleFunc("GET /v1/events", s.nextEvent)
	mux.HandleFunc("GET /v1/audit", s.recentAudit)
	mux.HandleFunc("GET /v1/health", s.health)

	s.server = &http.Server{Handler: s.limit(mux)}
	return s
}

// ListenUnix starts the server on a Unix socket.
func (s *Server) ListenUnix(path string) error {
	ln, err := net.Listen("unix", path)
	if err != nil {
		return err
	}
	s.logger.Info("API listening", "socket", path)
	return s.server.Serve(ln)
}

// ListenTCP starts the server on a TCP address. The returned address
// carries the OS-assigned port when addr ends in ":0".
func (s *Server) ListenTCP(addr string) (net.Addr, <-chan error, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("API listening", "addr", ln.Addr())

	errCh := make(chan error, 1)
	go func() { errCh <- s.server.Serve(ln) }()
	return ln.Addr(), errCh, nil
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "too many requests", Kind: "rate_limited"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- secrets ---

func (s *Server) listSecrets(w http.ResponseWriter, r *http.Request) {
	keys, err := s.backend.Secrets.List()
	if err != nil {
		writeError(w, err)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"keys": keys})
}

func (s *Server) getSecret(w http.ResponseWriter, r *http.Request) {
	value, err := s.backend.Secrets.Get(r.PathValue("key"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"value": value})
}

func (s *Server) setSecret(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body", Kind: "bad_request"})
		return
	}
	if err := s.backend.Secrets.Set(r.PathValue("key"), body.Value); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "stored"})
}

func (s *Server) removeSecret(w http.ResponseWriter, r *http.Request) {
	// Removing a missing key succeeds: there is nothing to do, and that is
	// not a failure.
	if err := s.backend.Secrets.Delete(r.PathValue("key")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (s *Server) lookupSecrets(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Keys []string `json:"keys"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body", Kind: "bad_request"})
		return
	}
	values, err := s.backend.Secrets.GetMultiple(body.Keys)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]map[string]string{"values": values})
}

// --- picks ---

func (s *Server) requestPick(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Filter []string `json:"filter"`
	}
	// An empty body means the default filter.
	json.NewDecoder(r.Body).Decode(&body)
	if len(body.Filter) == 0 {
		body.Filter = []string{"json"}
	}

	// Blocks until the shell resolves the pick, the client goes away, or
	// the configured timeout fires.
	path, ok, err := s.backend.Picks.Pick(r.Context(), body.Filter)
	if err != nil {
		writeError(w, err)
		return
	}

	var result *string
	if ok {
		result = &path
	}
	writeJSON(w, http.StatusOK, map[string]*string{"path": result})
}

func (s *Server) nextPick(w http.ResponseWriter, r *http.Request) {
	req, err := s.backend.Picks.Next(r.Context())
	if err != nil {
		// Long-poll cut short; the shell will reconnect.
		writeJSON(w, http.StatusNoContent, nil)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) resolvePick(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Path      string `json:"path"`
		Cancelled bool   `json:"cancelled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body", Kind: "bad_request"})
		return
	}
	if err := s.backend.Picks.Resolve(r.PathValue("id"), body.Path, !body.Cancelled); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "resolved"})
}

// --- files ---

func (s *Server) readFile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "missing path", Kind: "bad_request"})
		return
	}
	content, err := s.backend.Files.Read(body.Path)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"content": content})
}

func (s *Server) writeFile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "missing path", Kind: "bad_request"})
		return
	}
	if err := s.backend.Files.Write(body.Path, body.Content); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "written"})
}

func (s *Server) fileExists(w http.ResponseWriter, r *http.Request) {
	// Never errors: an unreadable or absent path reports false.
	exists := s.backend.Files.Exists(r.URL.Query().Get("path"))
	writeJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

// --- watch ---

func (s *Server) addWatch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "missing path", Kind: "bad_request"})
		return
	}
	if err := s.backend.Watcher.Add(body.Path); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "watching"})
}

func (s *Server) removeWatch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "missing path", Kind: "bad_request"})
		return
	}
	if err := s.backend.Watcher.Remove(body.Path); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "unwatched"})
}

func (s *Server) nextEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := s.backend.Watcher.Next(r.Context())
	if err != nil {
		writeJSON(w, http.StatusNoContent, nil)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// --- audit, health ---

func (s *Server) recentAudit(w http.ResponseWriter, r *http.Request) {
	n := 50
	if q := r.URL.Query().Get("n"); q != "" {
		if parsed, err := strconv.Atoi(q); err == nil && parsed > 0 {
			n = parsed
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": s.backend.Audit.Recent(n)})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	report := s.backend.Health()
	status := http.StatusOK
	if report.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// --- helpers ---

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// writeError maps the closed set of error kinds onto HTTP statuses so the
// front-end can branch on category instead of parsing message text.
func writeError(w http.ResponseWriter, err error) {
	status, kind := http.StatusInternalServerError, "io"
	switch {
	case errors.Is(err, secrets.ErrNotFound):
		status, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, secrets.ErrInvalidKey):
		status, kind = http.StatusBadRequest, "invalid_key"
	case errors.Is(err, secrets.ErrDirectory):
		kind = "directory"
	case errors.Is(err, secrets.ErrDecode):
		kind = "decode"
	case errors.Is(err, secrets.ErrEncoding):
		kind = "encoding"
	case errors.Is(err, secrets.ErrWrite):
		kind = "write"
	case errors.Is(err, secrets.ErrDelete):
		kind = "delete"
	case errors.Is(err, picker.ErrUnknownRequest):
		status, kind = http.StatusNotFound, "unknown_pick"
	case errors.Is(err, picker.ErrTimeout):
		status, kind = http.StatusGatewayTimeout, "pick_timeout"
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Kind: kind})
}
