package crmclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/fieldmap/pkg/mapping"
)

// mockServer creates a test server and a client pointed at it.
func mockServer(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return New(ts.URL, opts...)
}

func jsonHandler(t *testing.T, statusCode int, body any) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		if body != nil {
			if err := json.NewEncoder(w).Encode(body); err != nil {
				t.Errorf("failed to encode response: %v", err)
			}
		}
	}
}

func TestNew(t *testing.T) {
	c := New("http://localhost:3000/")
	assert.Equal(t, "http://localhost:3000", c.BaseURL())
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)

	c = New("http://x", WithTimeout(2*time.Second), WithTimeout(0))
	assert.Equal(t, 2*time.Second, c.httpClient.Timeout)
}

func TestFetchSample(t *testing.T) {
	var gotPath, gotKey, gotAuth string
	c := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-API-Key")
		gotAuth = r.Header.Get("Authorization")
		jsonHandler(t, http.StatusOK, []map[string]any{
			{"id": "1", "first_name": "aymene"},
			{"id": "2", "first_name": "abd1"},
		})(w, r)
	}, WithAPIKey("mock-oggo-key"), WithToken("tok"))

	sample, err := c.FetchSample(context.Background(), mapping.EntityContact)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "1", "first_name": "aymene"}, sample)
	assert.Equal(t, "/contacts", gotPath)
	assert.Equal(t, "mock-oggo-key", gotKey)
	assert.Equal(t, "Bearer tok", gotAuth)
}

func TestFetchSample_Empty(t *testing.T) {
	c := mockServer(t, jsonHandler(t, http.StatusOK, []any{}))
	_, err := c.FetchSample(context.Background(), mapping.EntityProject)
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestFetchSample_Unauthorized(t *testing.T) {
	c := mockServer(t, jsonHandler(t, http.StatusUnauthorized, map[string]string{
		"error":   "Unauthorized",
		"message": "Missing or invalid API key",
	}))

	_, err := c.FetchSample(context.Background(), mapping.EntityContact)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Unauthorized", apiErr.Code)
	assert.Contains(t, err.Error(), "Missing or invalid API key")
}

func TestFetchSample_NonJSONError(t *testing.T) {
	c := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	_, err := c.FetchSample(context.Background(), mapping.EntityContact)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "source api: request failed: status 502", err.Error())
}

func TestFetchSample_Timeout(t *testing.T) {
	c := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}, WithTimeout(20*time.Millisecond))

	_, err := c.FetchSample(context.Background(), mapping.EntityContact)
	assert.Error(t, err)
}

func TestListFields(t *testing.T) {
	c := mockServer(t, jsonHandler(t, http.StatusOK, []map[string]any{
		{"id": "proj_1", "name": "Website Redesign", "budget": 50000},
	}))

	fields, err := c.ListFields(context.Background(), mapping.EntityProject)
	require.NoError(t, err)
	assert.Equal(t, []mapping.Field{
		{Path: "budget", Label: "Budget"},
		{Path: "id", Label: "Id"},
		{Path: "name", Label: "Name"},
	}, fields)
}

func TestHealth(t *testing.T) {
	c := mockServer(t, jsonHandler(t, http.StatusOK, map[string]string{"status": "ok"}))
	assert.NoError(t, c.Health(context.Background()))

	down := mockServer(t, jsonHandler(t, http.StatusServiceUnavailable, nil))
	assert.Error(t, down.Health(context.Background()))
}
