// Package fmtest provides an in-process fake FireMon server for tests.
package fmtest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/fmapi/firemon-api-go/pkg/firemon"
)

const (
	Username = "firemon"
	Password = "firemon"
	Version  = "10.0.0"
)

// Call is a request received by the server.
type Call struct {
	Method string
	Path   string
	Query  map[string][]string
	Header http.Header
	Body   []byte
}

// Server is a fake FireMon server. Login, version and domain 1 routes are
// registered by NewServer; tests add the routes they exercise.
type Server struct {
	*httptest.Server

	t      testing.TB
	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  []Call
}

// NewServer starts a fake server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		t:      t,
		routes: map[string]http.HandlerFunc{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)

	s.Handle(http.MethodPost, "/securitymanager/api/authentication/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Username != Username || creds.Password != Password {
			WriteJSON(w, http.StatusUnauthorized, map[string]any{"message": "invalid credentials"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "fmtest-session", Path: "/"})
		WriteJSON(w, http.StatusOK, map[string]any{"authorized": true})
	})
	s.HandleJSON(http.MethodGet, "/securitymanager/api/version", http.StatusOK, map[string]any{
		"fmosVersion":     Version,
		"securityManager": Version,
	})
	s.HandleJSON(http.MethodGet, "/securitymanager/api/domain/1", http.StatusOK, map[string]any{
		"id":          1,
		"name":        "Default",
		"description": "Default Domain",
	})

	return s
}

// Handle registers h for method and exact path.
func (s *Server) Handle(method, path string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[method+" "+path] = h
}

// HandleJSON registers a fixed JSON response.
func (s *Server) HandleJSON(method, path string, status int, body any) {
	s.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, status, body)
	})
}

// HandleStatus registers an empty response with the given status.
func (s *Server) HandleStatus(method, path string, status int) {
	s.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	})
}

// HandlePaged serves items the way FireMon pages results, honoring the
// page and pageSize parameters.
func (s *Server) HandlePaged(method, path string, items []map[string]any) {
	s.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, Page(items, r))
	})
}

// Page slices items for the page requested by r.
func Page(items []map[string]any, r *http.Request) map[string]any {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if size <= 0 {
		size = 20
	}
	start := page * size
	if start > len(items) {
		start = len(items)
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	results := make([]any, 0, end-start)
	for _, item := range items[start:end] {
		results = append(results, item)
	}
	return map[string]any{
		"total":    len(items),
		"page":     page,
		"pageSize": size,
		"count":    len(results),
		"results":  results,
	}
}

// Calls returns every request received for method and path. An empty
// method or path matches anything.
func (s *Server) Calls(method, path string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Call
	for _, c := range s.calls {
		if (method == "" || c.Method == method) && (path == "" || c.Path == path) {
			out = append(out, c)
		}
	}
	return out
}

// LastCall returns the most recent request for method and path.
func (s *Server) LastCall(method, path string) (Call, bool) {
	calls := s.Calls(method, path)
	if len(calls) == 0 {
		return Call{}, false
	}
	return calls[len(calls)-1], true
}

// Config returns a client config for the server with fast retries.
func (s *Server) Config() *firemon.Config {
	return &firemon.Config{
		Host:         s.URL,
		Username:     Username,
		Password:     Password,
		Timeout:      5 * time.Second,
		MaxAttempts:  3,
		RetryMinWait: time.Millisecond,
		RetryMaxWait: 5 * time.Millisecond,
		Logger:       hclog.NewNullLogger(),
	}
}

// Client logs in to the server. opts adjust the config first.
func (s *Server) Client(opts ...func(*firemon.Config)) *firemon.Client {
	s.t.Helper()

	cfg := s.Config()
	for _, opt := range opts {
		opt(cfg)
	}
	c, err := firemon.New(context.Background(), cfg)
	if err != nil {
		s.t.Fatalf("failed to create client: %v", err)
	}
	return c
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.calls = append(s.calls, Call{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})
	h, ok := s.routes[r.Method+" "+r.URL.Path]
	s.mu.Unlock()

	if user, pass, authed := r.BasicAuth(); !authed || user != Username || pass != Password {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	h(w, r)
}

// WriteJSON writes body as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// JSON decodes a recorded JSON request body.
func (c Call) JSON(t testing.TB) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(c.Body, &out); err != nil {
		t.Fatalf("request body is not a JSON object: %v: %s", err, c.Body)
	}
	return out
}
