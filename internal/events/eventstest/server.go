// Package eventstest provides an in-memory events backend for tests.
package eventstest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/cwarden/daybook/internal/events"
)

// Server is an httptest server speaking the events API.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	store    events.Store
	nextID   int
	requests []string
	fail     map[string]failure
}

type failure struct {
	status  int
	message string
}

func NewServer(seed events.Store) *Server {
	s := &Server{
		store: events.Store{},
		fail:  make(map[string]failure),
	}
	for date, evs := range seed {
		s.store[date] = append([]events.Event(nil), evs...)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/events", s.handleList)
	mux.HandleFunc("POST /api/events", s.handleCreate)
	mux.HandleFunc("DELETE /api/events/{id}", s.handleDelete)
	s.Server = httptest.NewServer(s.record(mux))
	return s
}

// Fail makes every request with the given method answer status. An empty
// message sends a body that is not JSON.
func (s *Server) Fail(method string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[method] = failure{status: status, message: message}
}

// Recover clears a failure installed with Fail.
func (s *Server) Recover(method string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fail, method)
}

// Requests returns "METHOD /path" for every request served so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Count returns how many requests used method.
func (s *Server) Count(method string) int {
	n := 0
	for _, r := range s.Requests() {
		if strings.HasPrefix(r, method+" ") {
			n++
		}
	}
	return n
}

// Snapshot copies the server-side store.
func (s *Server) Snapshot() events.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := events.Store{}
	for date, evs := range s.store {
		out[date] = append([]events.Event(nil), evs...)
	}
	return out
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		f, failing := s.fail[r.Method]
		s.mu.Unlock()

		if failing {
			if f.message == "" {
				http.Error(w, "backend unavailable", f.status)
				return
			}
			writeJSON(w, f.status, map[string]string{"message": f.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req events.NewEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid data"})
		return
	}
	if req.Date == "" || req.Event.Author == "" || req.Event.Content == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid data"})
		return
	}

	s.mu.Lock()
	s.nextID++
	ev := events.Event{
		ID:      fmt.Sprintf("evt-%d", s.nextID),
		Author:  req.Event.Author,
		Content: req.Event.Content,
	}
	s.store[req.Date] = append(s.store[req.Date], ev)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{"message": "Event saved successfully", "event": ev})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	for date, evs := range s.store {
		for i, ev := range evs {
			if ev.ID != id {
				continue
			}
			s.store[date] = append(evs[:i:i], evs[i+1:]...)
			if len(s.store[date]) == 0 {
				delete(s.store, date)
			}
			writeJSON(w, http.StatusOK, map[string]any{"message": "Event deleted successfully", "event": ev})
			return
		}
	}

	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Event not found"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
