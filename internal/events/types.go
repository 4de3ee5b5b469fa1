package events

import (
	"errors"
	"fmt"
	"sort"
)

// Event is a single note attached to a calendar date. The backend assigns
// the ID; events are never edited in place.
type Event struct {
	ID      string `json:"id"`
	Author  string `json:"author"`
	Content string `json:"content"`
}

// Store maps an ISO date (YYYY-MM-DD) to that day's events in display order.
type Store map[string][]Event

// NewEventRequest is the POST body accepted by the events endpoint.
type NewEventRequest struct {
	Date  string   `json:"date"`
	Event NewEvent `json:"event"`
}

type NewEvent struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

// ErrValidation marks input rejected before any request is made.
var ErrValidation = errors.New("validation failed")

// APIError is a non-2xx response from the events backend.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
}

// Normalize drops dates that have no events left.
func (s Store) Normalize() Store {
	for date, evs := range s {
		if len(evs) == 0 {
			delete(s, date)
		}
	}
	return s
}

func (s Store) For(date string) []Event {
	return s[date]
}

func (s Store) Count(date string) int {
	return len(s[date])
}

// Len returns the total number of events across all dates.
func (s Store) Len() int {
	n := 0
	for _, evs := range s {
		n += len(evs)
	}
	return n
}

// Dates returns the populated dates in ascending order.
func (s Store) Dates() []string {
	dates := make([]string, 0, len(s))
	for date := range s {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// Find locates an event by ID.
func (s Store) Find(id string) (string, Event, bool) {
	for _, date := range s.Dates() {
		for _, ev := range s[date] {
			if ev.ID == id {
				return date, ev, true
			}
		}
	}
	return "", Event{}, false
}

// InMonth returns the subset of the store whose dates start with the
// given YYYY-MM prefix.
func (s Store) InMonth(prefix string) Store {
	out := Store{}
	for date, evs := range s {
		if len(date) >= len(prefix) && date[:len(prefix)] == prefix {
			out[date] = evs
		}
	}
	return out
}
