package aiprovider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, 500, req.MaxTokens)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  Продолжение текста.  "}}]}`))
	}))
	defer server.Close()

	client := New("sk-test", server.URL, "gpt-4o-mini")
	result, err := client.Complete(context.Background(), "Ты литературный ассистент.", "Продолжи текст.", 500)
	require.NoError(t, err)
	assert.Equal(t, "Продолжение текста.", result)
}

func TestClient_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit exceeded"}}`))
	}))
	defer server.Close()

	client := New("sk-test", server.URL, "gpt-4o-mini")
	_, err := client.Complete(context.Background(), "system", "user", 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Rate limit exceeded")
}

func TestClient_Complete_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := New("sk-test", server.URL, "gpt-4o-mini")
	_, err := client.Complete(context.Background(), "system", "user", 100)
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}
