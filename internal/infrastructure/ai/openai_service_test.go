package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/finanzas-ai/internal/application/ports"
)

func TestOpenAIComplete_Exitoso(t *testing.T) {
	var gotReq openAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "respuesta del modelo"}},
			},
		})
	}))
	defer srv.Close()

	svc := NewOpenAIService("sk-test", "gpt-4o")
	svc.baseURL = srv.URL

	out, err := svc.Complete(context.Background(), ports.CompletionRequest{
		System:      "Eres un analista.",
		Prompt:      "¿Cuánto vendimos?",
		Temperature: 0.1,
		MaxTokens:   2000,
	})
	require.NoError(t, err)
	assert.Equal(t, "respuesta del modelo", out)

	// El protocolo debe llevar system + user, temperatura y presupuesto de tokens.
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "user", gotReq.Messages[1].Role)
	assert.InDelta(t, 0.1, gotReq.Temperature, 1e-9)
	assert.Equal(t, 2000, gotReq.MaxTokens)
	assert.Equal(t, "gpt-4o", gotReq.Model)
}

func TestOpenAIComplete_ErrorDeAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"type": "invalid_request_error", "message": "Incorrect API key"},
		})
	}))
	defer srv.Close()

	svc := NewOpenAIService("sk-malo", "gpt-4o")
	svc.baseURL = srv.URL

	_, err := svc.Complete(context.Background(), ports.CompletionRequest{Prompt: "hola"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect API key")
}

func TestOpenAIComplete_SinAPIKey(t *testing.T) {
	svc := NewOpenAIService("", "gpt-4o")
	_, err := svc.Complete(context.Background(), ports.CompletionRequest{Prompt: "hola"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestAnthropicComplete_Exitoso(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sk-ant", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": "{\"indices\":[\"invoices\"]}"}},
		})
	}))
	defer srv.Close()

	svc := NewAnthropicService("sk-ant", "claude-3-5-haiku-20241022")
	svc.baseURL = srv.URL

	out, err := svc.Complete(context.Background(), ports.CompletionRequest{Prompt: "traduce"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"indices":["invoices"]}`, out)
}

func TestProvider_Nombres(t *testing.T) {
	assert.Equal(t, "OpenAI ChatGPT", NewOpenAIService("", "").Provider())
	assert.Equal(t, "Anthropic Claude", NewAnthropicService("", "").Provider())
}
