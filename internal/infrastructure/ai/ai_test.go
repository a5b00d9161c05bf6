package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/CRM-api/internal/application/ports"
	"github.com/jhoicas/CRM-api/pkg/config"
)

func TestAnthropicMessages_FusionaYDescartaAssistantInicial(t *testing.T) {
	msgs := anthropicMessages([]ports.ChatTurn{
		{Role: "assistant", Content: "hola, ¿en qué ayudo?"},
		{Role: "user", Content: "a"},
		{Role: "user", Content: "b"},
		{Role: "assistant", Content: "c"},
		{Role: "user", Content: "d"},
	})
	require.Len(t, msgs, 3)
	assert.Equal(t, anthropicMessage{Role: "user", Content: "a\n\nb"}, msgs[0])
	assert.Equal(t, "assistant", msgs[1].Role)
	assert.Equal(t, "d", msgs[2].Content)
}

func TestAnthropicChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		var req anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "sistema", req.System)
		require.Len(t, req.Messages, 1)
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":" Claro, aquí va. "}]}`))
	}))
	defer srv.Close()

	s := NewAnthropicService("test-key", "claude-test", 0)
	s.url = srv.URL
	out, err := s.Chat(context.Background(), "sistema", []ports.ChatTurn{{Role: "user", Content: "redacta un correo"}})
	require.NoError(t, err)
	assert.Equal(t, "Claro, aquí va.", out)
	assert.Equal(t, "anthropic", s.Name())
}

func TestAnthropicChat_ReintentaEn503(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"ok"}]}`))
	}))
	defer srv.Close()

	s := NewAnthropicService("k", "m", 2)
	s.url = srv.URL
	out, err := s.Chat(context.Background(), "", []ports.ChatTurn{{Role: "user", Content: "x"}})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestAnthropicChat_ErrorDelProveedor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"max_tokens"}}`))
	}))
	defer srv.Close()

	s := NewAnthropicService("k", "m", 0)
	s.url = srv.URL
	_, err := s.Chat(context.Background(), "", []ports.ChatTurn{{Role: "user", Content: "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_request_error")
}

func TestGeminiChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "gk", r.URL.Query().Get("key"))
		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 2)
		assert.Equal(t, "model", req.Contents[1].Role)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"respuesta"}]}}]}`))
	}))
	defer srv.Close()

	s := NewGeminiService("gk", "gemini-test", 0)
	s.baseURL = srv.URL
	out, err := s.Chat(context.Background(), "sys", []ports.ChatTurn{
		{Role: "user", Content: "hola"},
		{Role: "assistant", Content: "hola"},
	})
	require.NoError(t, err)
	assert.Equal(t, "respuesta", out)
}

func TestChat_SinAPIKey(t *testing.T) {
	_, err := NewAnthropicService("", "m", 0).Chat(context.Background(), "", []ports.ChatTurn{{Role: "user", Content: "x"}})
	assert.ErrorIs(t, err, ports.ErrLLMNotConfigured)
	_, err = NewGeminiService("", "m", 0).Chat(context.Background(), "", []ports.ChatTurn{{Role: "user", Content: "x"}})
	assert.ErrorIs(t, err, ports.ErrLLMNotConfigured)
}

func TestNew(t *testing.T) {
	llm, err := New(config.AIConfig{Provider: "anthropic"})
	require.NoError(t, err)
	assert.Nil(t, llm, "sin API key el chat queda deshabilitado")

	llm, err = New(config.AIConfig{Provider: "gemini", GeminiAPIKey: "k", GeminiModel: "gemini-1.5-flash"})
	require.NoError(t, err)
	assert.Equal(t, "gemini", llm.Name())

	_, err = New(config.AIConfig{Provider: "openai"})
	assert.Error(t, err)
}
