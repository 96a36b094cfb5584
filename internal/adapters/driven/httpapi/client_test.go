package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_PostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var in map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "hello", in["input"])

		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := New(server.URL+"/v1/", 0, Bearer("sk-test"))
	var out struct {
		OK bool `json:"ok"`
	}

	err := c.PostJSON(context.Background(), "/embeddings", map[string]string{"input": "hello"}, &out)

	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, server.URL+"/v1", c.BaseURL())
}

func TestClient_StatusErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"openai shape", `{"error":{"message":"Incorrect API key","type":"invalid_request_error"}}`, "Incorrect API key"},
		{"ollama shape", `{"error":"model not found"}`, "model not found"},
		{"mistral message", `{"object":"error","message":"Unauthorized","type":"invalid_request"}`, "Unauthorized"},
		{"mistral detail", `{"detail":"Not authenticated"}`, "Not authenticated"},
		{"plain text", "bad gateway\n", "bad gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := New(server.URL, 0, nil).Get(context.Background(), "/models", nil)

			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
			assert.Equal(t, tt.want, statusErr.Message)
		})
	}
}

func TestClient_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	var out map[string]any
	err := New(server.URL, 0, nil).Get(context.Background(), "/", &out)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	err := New(url, 0, nil).Get(context.Background(), "/", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "send request")
}
