package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	eventsPath       = "/api/events"
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "daybook"
	maxErrorBody     = 64 << 10
)

// Client talks to the events REST backend.
type Client struct {
	BaseURL   string
	UserAgent string
	http      *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.UserAgent = ua
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		UserAgent: defaultUserAgent,
		http:      &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List fetches the whole event collection. The backend takes no filters.
func (c *Client) List(ctx context.Context) (Store, error) {
	resp, err := c.do(ctx, http.MethodGet, eventsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus("fetch events", resp); err != nil {
		return nil, err
	}

	var store Store
	if err := json.NewDecoder(resp.Body).Decode(&store); err != nil {
		return nil, fmt.Errorf("fetch events: decode response: %w", err)
	}
	if store == nil {
		store = Store{}
	}
	return store.Normalize(), nil
}

// Create posts a new event. Empty author or content never reaches the network.
func (c *Client) Create(ctx context.Context, date, author, content string) error {
	req, err := NewRequest(date, author, content)
	if err != nil {
		return err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("save event: encode request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, eventsPath, body)
	if err != nil {
		return fmt.Errorf("save event: %w", err)
	}
	defer resp.Body.Close()

	return checkStatus("save event", resp)
}

// Delete removes a single event by ID.
func (c *Client) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: missing event id", ErrValidation)
	}

	resp, err := c.do(ctx, http.MethodDelete, eventsPath+"/"+url.PathEscape(id), nil)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	defer resp.Body.Close()

	return checkStatus("delete event", resp)
}

// NewRequest trims and validates user input into a POST body.
func NewRequest(date, author, content string) (NewEventRequest, error) {
	author = strings.TrimSpace(author)
	content = strings.TrimSpace(content)
	date = strings.TrimSpace(date)

	if author == "" || content == "" {
		return NewEventRequest{}, fmt.Errorf("%w: author and content are required", ErrValidation)
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return NewEventRequest{}, fmt.Errorf("%w: invalid date %q", ErrValidation, date)
	}

	return NewEventRequest{
		Date:  date,
		Event: NewEvent{Author: author, Content: content},
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, err
	}

	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("events: %s %s failed after %v (request %s): %v", method, path, time.Since(start).Round(time.Millisecond), reqID, err)
		return nil, err
	}

	log.Printf("events: %s %s -> %d in %v (request %s)", method, path, resp.StatusCode, time.Since(start).Round(time.Millisecond), reqID)
	return resp, nil
}

// checkStatus turns a non-2xx response into an *APIError, keeping the
// server's {"message": ...} when it sent one.
func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{Op: op, StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil && len(data) > 0 {
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &payload) == nil {
			apiErr.Message = strings.TrimSpace(payload.Message)
		}
	}

	return apiErr
}
