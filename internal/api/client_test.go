package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

func newTestClient(url string, retries int) *Client {
	return NewClient(url, Options{Timeout: time.Second, RetryMax: retries})
}

func TestGet_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/api/orders/123" {
			t.Fatalf("path = %s, want /api/orders/123", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(orderResponse{ID: 123, Status: "Pending"})
	}))
	defer ts.Close()

	client := newTestClient(ts.URL, 0)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var res orderResponse
	if err := client.Do(ctx, Request{Method: http.MethodGet, Path: "/api/orders/123"}, &res); err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if res.ID != 123 || res.Status != "Pending" {
		t.Fatalf("unexpected response: %+v", res)
	}
}

func TestPost_SendsJSONBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "key-1", r.Header.Get(IdempotencyKeyHeader))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Cancelled", body["status"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":7,"status":"Cancelled"}`))
	}))
	defer ts.Close()

	client := newTestClient(ts.URL, 0)

	var res orderResponse
	err := client.Do(context.Background(), Request{
		Method:         http.MethodPost,
		Path:           "/api/orders",
		Body:           map[string]string{"status": "Cancelled"},
		IdempotencyKey: "key-1",
	}, &res)
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.ID)
}

func TestDo_NoContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	var res orderResponse
	err := newTestClient(ts.URL, 0).Do(context.Background(), Request{Method: http.MethodDelete, Path: "/api/orders/1"}, &res)
	require.NoError(t, err)
	assert.Zero(t, res.ID)
}

func TestDo_ErrorFieldNormalization(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
		isJSON  bool
	}{
		{name: "message", status: 404, body: `{"message":"No orders found for the user."}`, message: "No orders found for the user.", isJSON: true},
		{name: "error", status: 400, body: `{"error":"Cannot cancel a completed order."}`, message: "Cannot cancel a completed order.", isJSON: true},
		{name: "errors list", status: 400, body: `{"errors":["a","b"]}`, message: "a; b", isJSON: true},
		{name: "errors form", status: 400, body: `{"errors":{"status":["required"],"quantity":["too small"]}}`, message: "quantity: too small; status: required", isJSON: true},
		{name: "description", status: 403, body: `{"description":"nope"}`, message: "nope", isJSON: true},
		{name: "not json", status: 502, body: `<html>bad gateway</html>`, message: "", isJSON: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			err := newTestClient(ts.URL, 0).Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"}, nil)

			var rerr *RequestError
			require.True(t, errors.As(err, &rerr), "got %v", err)
			assert.Equal(t, tt.status, rerr.StatusCode)
			assert.Equal(t, tt.message, rerr.Message)
			assert.Equal(t, tt.isJSON, rerr.JSON)
		})
	}
}

func TestDo_RetriesIdempotentRequests(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	defer ts.Close()

	var res orderResponse
	err := newTestClient(ts.URL, 2).Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/orders/1"}, &res)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, int64(1), res.ID)
}

func TestDo_DoesNotRetryPost(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"down"}`))
	}))
	defer ts.Close()

	err := newTestClient(ts.URL, 3).Do(context.Background(), Request{Method: http.MethodPost, Path: "/api/orders/1/cancel"}, nil)

	var rerr *RequestError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "down", rerr.Message)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDo_NetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	err := newTestClient(url, 0).Do(context.Background(), Request{Method: http.MethodPost, Path: "/api/orders"}, nil)

	var nerr *NetworkError
	require.True(t, errors.As(err, &nerr), "got %v", err)
	assert.Equal(t, "/api/orders", nerr.Path)
}

func TestDo_DecodeError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"not-a-number"}`))
	}))
	defer ts.Close()

	var res orderResponse
	err := newTestClient(ts.URL, 0).Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/orders/1"}, &res)

	var derr *DecodeError
	assert.True(t, errors.As(err, &derr), "got %v", err)
}

func TestDo_NotConfigured(t *testing.T) {
	err := NewClient("", Options{}).Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/orders/1"}, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNewClient_AddsScheme(t *testing.T) {
	c := NewClient("localhost:5000/", Options{})
	assert.True(t, strings.HasPrefix(c.baseURL, "http://"))
	assert.Equal(t, "http://localhost:5000", c.baseURL)
}
