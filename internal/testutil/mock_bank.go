// Package testutil provides testing utilities for bankbridge.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"time"

	"github.com/Sternrassler/bankbridge/pkg/bank"
	"github.com/Sternrassler/bankbridge/pkg/catalog"
)

// MockBankResponse defines the behavior for a mock bank endpoint response.
type MockBankResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockBankServer is a configurable mock of the remote bank endpoints.
// Every registered path serves one bank; unregistered paths return 404.
type MockBankServer struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	// Tracking
	RequestCount      int
	LastRequestHeader http.Header
}

// NewMockBankServer creates and starts a new mock bank server.
func NewMockBankServer() *MockBankServer {
	mock := &MockBankServer{
		handlers: make(map[string]http.HandlerFunc),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		http.NotFound(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockBankServer) URL() string {
	return m.server.URL
}

// Address returns the absolute address of path on the mock server.
func (m *MockBankServer) Address(path string) string {
	return m.server.URL + path
}

// Close shuts down the mock server.
func (m *MockBankServer) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockBankServer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestHeader = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockBankServer) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockBankServer) SetResponse(path string, resp MockBankResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			select {
			case <-time.After(resp.Delay):
			case <-r.Context().Done():
				return
			}
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

// SetBank serves record as a healthy bank at path.
func (m *MockBankServer) SetBank(path string, record bank.Record) {
	m.SetResponse(path, NewBankResponse(record))
}

// Catalog returns a catalog naming every registered path, in path order.
func (m *MockBankServer) Catalog() *catalog.Catalog {
	m.mu.RLock()
	paths := make([]string, 0, len(m.handlers))
	for p := range m.handlers {
		paths = append(paths, p)
	}
	m.mu.RUnlock()

	sort.Strings(paths)
	entries := make([]catalog.Entry, 0, len(paths))
	for _, p := range paths {
		entries = append(entries, catalog.Entry{Name: p, Address: m.Address(p)})
	}
	return catalog.New(entries...)
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockBankServer) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetLastRequestHeader returns the headers of the most recent request.
func (m *MockBankServer) GetLastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastRequestHeader.Clone()
}

// NewBankResponse creates a 200 OK response carrying record.
func NewBankResponse(record bank.Record) MockBankResponse {
	body, err := json.Marshal(record)
	if err != nil {
		panic(err)
	}
	return MockBankResponse{
		StatusCode: http.StatusOK,
		Body:       string(body),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockBankResponse {
	return MockBankResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// NewMalformedResponse creates a 200 OK response whose body is not a bank record.
func NewMalformedResponse() MockBankResponse {
	return MockBankResponse{
		StatusCode: http.StatusOK,
		Body:       `{"bic": `,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}
