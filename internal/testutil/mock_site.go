// Package testutil provides testing utilities for the coinmarket client.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockSiteResponse defines the behavior for a mock site endpoint.
type MockSiteResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockSite is a configurable mock of the scraped site for testing.
type MockSite struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount      int
	LastRequestHeader http.Header
}

// NewMockSite creates a new mock site server.
func NewMockSite() *MockSite {
	mock := &MockSite{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockSite) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockSite) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockSite) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestHeader = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockSite) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockSite) SetResponse(path string, resp MockSiteResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetCurrencyPage serves an HTML page on the currency path for a slug.
func (m *MockSite) SetCurrencyPage(slug, body string) {
	m.SetResponse("/currencies/"+slug+"/", NewPageResponse(body))
}

// SetQuickSearchIndex serves a quick-search index built from the given
// symbol→slug map on the given path.
func (m *MockSite) SetQuickSearchIndex(path string, correspondences map[string]string) {
	type entry struct {
		Symbol string `json:"symbol"`
		Slug   string `json:"slug"`
	}
	entries := make([]entry, 0, len(correspondences))
	for symbol, slug := range correspondences {
		entries = append(entries, entry{Symbol: symbol, Slug: slug})
	}
	body, _ := json.Marshal(entries)

	m.SetResponse(path, MockSiteResponse{
		StatusCode: http.StatusOK,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	})
}

// SetSlowThenFast makes the first n requests to path stall for delay
// before answering, and later ones answer immediately. Combined with a
// short client timeout this simulates a request that succeeds only on
// the retry pass.
func (m *MockSite) SetSlowThenFast(path string, n int, delay time.Duration, body string) {
	var mu sync.Mutex
	served := 0

	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		served++
		slow := served <= n
		mu.Unlock()

		if slow {
			time.Sleep(delay)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockSite) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// defaultHandler serves a minimal HTML page for any unconfigured path.
func (m *MockSite) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("<html><body>" + r.URL.Path + "</body></html>"))
}

// NewPageResponse creates a standard 200 OK HTML response.
func NewPageResponse(body string) MockSiteResponse {
	return MockSiteResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"Content-Type": "text/html; charset=utf-8",
		},
	}
}

// NewNotFoundResponse creates a 404 Not Found response.
func NewNotFoundResponse() MockSiteResponse {
	return MockSiteResponse{
		StatusCode: http.StatusNotFound,
		Body:       "<html><body>Page not found</body></html>",
		Headers: map[string]string{
			"Content-Type": "text/html; charset=utf-8",
		},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockSiteResponse {
	return MockSiteResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       "Rate limit exceeded",
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockSiteResponse {
	return MockSiteResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       "Internal server error",
	}
}
