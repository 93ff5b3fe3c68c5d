package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatClient_GenerateWithSystem(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"  Reads the payroll file.\n"}}]}`))
	}))
	defer srv.Close()

	t.Setenv("TEST_LLM_KEY", "sk-test")
	c, err := NewOpenAICompatibleClient("TEST_LLM_KEY", "gpt-4o", srv.URL+"/v1/", Options{MaxTokens: 256})
	require.NoError(t, err)

	out, err := c.GenerateWithSystem(context.Background(), "you summarize", "PARA-1.")
	require.NoError(t, err)
	assert.Equal(t, "Reads the payroll file.", out)

	assert.Equal(t, "gpt-4o", got.Model)
	assert.Equal(t, 256, got.MaxTokens)
	assert.Equal(t, float64(0), got.Temperature)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "PARA-1.", got.Messages[1].Content)
	assert.Equal(t, "gpt-4o", c.ModelName())
}

func TestChatClient_Azure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/deployments/prod-4o/chat/completions", r.URL.Path)
		assert.Equal(t, "2024-06-01", r.URL.Query().Get("api-version"))
		assert.Equal(t, "az-key", r.Header.Get("api-key"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Empty(t, req.Model)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	t.Setenv("TEST_AZURE_KEY", "az-key")
	c, err := NewAzureClient("TEST_AZURE_KEY", srv.URL, "prod-4o", "2024-06-01", Options{})
	require.NoError(t, err)

	out, err := c.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, "prod-4o", c.ModelName())
}

func TestChatClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http status", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`},
		{"api error", http.StatusOK, `{"error":{"message":"bad model"}}`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"garbage", http.StatusOK, `not json`},
	}

	t.Setenv("TEST_LLM_KEY", "sk-test")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := NewOpenAICompatibleClient("TEST_LLM_KEY", "m", srv.URL, Options{})
			require.NoError(t, err)

			_, err = c.Generate(context.Background(), "x")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrLLMFailure), "got %v", err)
		})
	}
}

func TestChatClient_ContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	t.Setenv("TEST_LLM_KEY", "sk-test")
	c, err := NewOpenAICompatibleClient("TEST_LLM_KEY", "m", srv.URL, Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Generate(ctx, "x")
	assert.ErrorIs(t, err, ErrLLMFailure)
}

func TestMissingAPIKey(t *testing.T) {
	t.Setenv("TEST_EMPTY_KEY", "")
	_, err := NewOpenAIClient("TEST_EMPTY_KEY", "gpt-4o", Options{})
	assert.Error(t, err)

	_, err = NewAzureClient("TEST_EMPTY_KEY", "https://x", "d", "v", Options{})
	assert.Error(t, err)
}

func TestMockLLM(t *testing.T) {
	m := NewMockLLM()
	out, err := m.GenerateWithSystem(context.Background(), "sys", "PARA-1.\n    MOVE 1 TO X.")
	require.NoError(t, err)
	assert.Equal(t, "Summary of PARA-1.", out)
	assert.Equal(t, "mock", m.ModelName())

	m.Reply = "fixed"
	out, err = m.Generate(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, "fixed", out)

	m.Err = errors.New("boom")
	_, err = m.Generate(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrLLMFailure)
}
