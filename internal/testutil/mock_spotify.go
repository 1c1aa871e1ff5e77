// Package testutil provides testing utilities for spotifetch.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
}

// MockSpotify is a configurable mock Spotify API server covering both
// the accounts token endpoint and the Web API endpoints.
type MockSpotify struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount      int
	TokenRequestCount int
	PathCounts        map[string]int
	LastRequestHeader http.Header
}

// NewMockSpotify creates a new mock Spotify server with a working token
// endpoint at /api/token.
func NewMockSpotify() *MockSpotify {
	mock := &MockSpotify{
		handlers:   make(map[string]func(w http.ResponseWriter, r *http.Request)),
		PathCounts: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.PathCounts[r.URL.Path]++
		mock.LastRequestHeader = r.Header.Clone()
		mock.mu.Unlock()

		if r.URL.Path == "/api/token" {
			mock.tokenHandler(w, r)
			return
		}

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, `{"error": {"status": 404, "message": "Not found: %s"}}`, r.URL.Path)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockSpotify) URL() string {
	return m.server.URL
}

// TokenURL returns the mock token endpoint URL.
func (m *MockSpotify) TokenURL() string {
	return m.server.URL + "/api/token"
}

// Close shuts down the mock server.
func (m *MockSpotify) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockSpotify) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.TokenRequestCount = 0
	m.PathCounts = make(map[string]int)
	m.LastRequestHeader = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockSpotify) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a static response for a path.
func (m *MockSpotify) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		if resp.Headers["Content-Type"] == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetRateLimitSequence configures a path to answer with n 429 responses
// carrying the given Retry-After value, then delegate to next.
func (m *MockSpotify) SetRateLimitSequence(path string, n int, retryAfter string, next func(w http.ResponseWriter, r *http.Request)) {
	var mu sync.Mutex
	remaining := n

	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		limited := remaining > 0
		if limited {
			remaining--
		}
		mu.Unlock()

		if limited {
			if retryAfter != "" {
				w.Header().Set("Retry-After", retryAfter)
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error": {"status": 429, "message": "API rate limit exceeded"}}`))
			return
		}
		next(w, r)
	})
}

// SetArtistsResponse configures the batch artists endpoint to return the
// given artists for any ids query. Use nil entries to simulate
// unmatched IDs.
func (m *MockSpotify) SetArtistsResponse(artists []map[string]any) {
	body, _ := json.Marshal(map[string]any{"artists": artists})
	m.SetResponse("/v1/artists", MockResponse{
		StatusCode: http.StatusOK,
		Body:       string(body),
	})
}

// SetAlbumsResponse configures the albums endpoint for one artist.
// Pass no albums to simulate an artist with no releases.
func (m *MockSpotify) SetAlbumsResponse(artistID string, albums ...map[string]any) {
	items := make([]map[string]any, 0, len(albums))
	items = append(items, albums...)
	body, _ := json.Marshal(map[string]any{"items": items, "total": len(items)})
	m.SetResponse("/v1/artists/"+artistID+"/albums", MockResponse{
		StatusCode: http.StatusOK,
		Body:       string(body),
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockSpotify) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetPathCount returns the number of requests made to a specific path.
func (m *MockSpotify) GetPathCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.PathCounts[path]
}

// tokenHandler implements the client-credentials token endpoint. It
// requires HTTP Basic credentials and rejects anything else with 400,
// mirroring the accounts service.
func (m *MockSpotify) tokenHandler(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.TokenRequestCount++
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	if _, _, ok := r.BasicAuth(); !ok {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "invalid_client", "error_description": "Invalid client"}`))
		return
	}

	if err := r.ParseForm(); err != nil || r.Form.Get("grant_type") != "client_credentials" {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "unsupported_grant_type"}`))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"access_token": "mock-token", "token_type": "Bearer", "expires_in": 3600, "scope": ""}`))
}

// NewArtist builds an artist object for mock responses.
func NewArtist(id, name string, popularity, followers int) map[string]any {
	return map[string]any{
		"id":         id,
		"name":       name,
		"popularity": popularity,
		"followers":  map[string]any{"total": followers},
	}
}

// NewAlbum builds an album object for mock responses.
func NewAlbum(id, name, releaseDate, precision string, artistIDs ...string) map[string]any {
	artists := make([]map[string]any, 0, len(artistIDs))
	for _, artistID := range artistIDs {
		artists = append(artists, map[string]any{"id": artistID, "name": artistID})
	}
	return map[string]any{
		"id":                     id,
		"name":                   name,
		"release_date":           releaseDate,
		"release_date_precision": precision,
		"artists":                artists,
	}
}
