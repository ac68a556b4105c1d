package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readvault/internal/config"
)

func TestOllamaGenerate(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: ollamaMessage{Role: "assistant", Content: "TOPICS: Testing\nSUMMARY: Fine."},
		})
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "qwen2.5:7b")
	out, err := c.Generate(context.Background(), "analyze this")

	require.NoError(t, err)
	assert.Equal(t, "TOPICS: Testing\nSUMMARY: Fine.", out)
	assert.Equal(t, "qwen2.5:7b", got.Model)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "analyze this", got.Messages[0].Content)
}

func TestOllamaGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "missing")
	_, err := c.Generate(context.Background(), "prompt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "model not found")
}

func TestOllamaGenerateHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewOllamaClient(srv.URL, "qwen2.5:7b")
	_, err := c.Generate(ctx, "prompt")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestOllamaGenerateMisconfigured(t *testing.T) {
	c := NewOllamaClient("", "")
	_, err := c.Generate(context.Background(), "prompt")
	assert.Error(t, err)
}

func TestFactoryResolvesBackends(t *testing.T) {
	client, err := New(context.Background(), config.EnrichmentConfig{
		Backend:  "ollama",
		Endpoint: "http://localhost:11434",
		Model:    "qwen2.5:7b",
	})
	require.NoError(t, err)
	assert.IsType(t, (*OllamaClient)(nil), client)

	// Empty backend falls back to the local server.
	client, err = New(context.Background(), config.EnrichmentConfig{Model: "qwen2.5:7b"})
	require.NoError(t, err)
	assert.IsType(t, (*OllamaClient)(nil), client)

	_, err = New(context.Background(), config.EnrichmentConfig{Backend: "watson"})
	assert.Error(t, err)

	_, err = New(context.Background(), config.EnrichmentConfig{Backend: "gemini"})
	assert.Error(t, err) // no api key
}
