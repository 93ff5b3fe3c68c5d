package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// ErrLLMFailure wraps every failure to obtain a completion.
var ErrLLMFailure = errors.New("llm request failed")

type ChatClient struct {
	apiKey      string
	authHeader  string
	model       string
	endpoint    string
	temperature float64
	maxTokens   int
	client      *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
	Error   *apiError    `json:"error,omitempty"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Options tunes generation for all providers.
type Options struct {
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return 120 * time.Second
	}
	return o.Timeout
}

func NewOpenAIClient(apiKeyEnv, model string, opts Options) (*ChatClient, error) {
	return NewOpenAICompatibleClient(apiKeyEnv, model, "https://api.openai.com/v1", opts)
}

// NewOpenAICompatibleClient targets any server exposing /chat/completions,
// such as a local Ollama or vLLM instance.
func NewOpenAICompatibleClient(apiKeyEnv, model, baseURL string, opts Options) (*ChatClient, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}

	return &ChatClient{
		apiKey:      apiKey,
		authHeader:  "Authorization",
		model:       model,
		endpoint:    strings.TrimRight(baseURL, "/") + "/chat/completions",
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		client: &http.Client{
			Timeout: opts.timeout(),
		},
	}, nil
}

// NewAzureClient talks to an Azure OpenAI deployment. The deployment, not the
// model field, selects the model on Azure.
func NewAzureClient(apiKeyEnv, endpoint, deployment, apiVersion string, opts Options) (*ChatClient, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}
	if endpoint == "" || deployment == "" {
		return nil, fmt.Errorf("azure client needs both an endpoint and a deployment")
	}

	u := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(endpoint, "/"), url.PathEscape(deployment), url.QueryEscape(apiVersion))

	return &ChatClient{
		apiKey:      apiKey,
		authHeader:  "api-key",
		model:       deployment,
		endpoint:    u,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		client: &http.Client{
			Timeout: opts.timeout(),
		},
	}, nil
}

func (c *ChatClient) Generate(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, []chatMessage{{Role: "user", Content: prompt}})
}

func (c *ChatClient) GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.complete(ctx, []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	})
}

func (c *ChatClient) ModelName() string {
	return c.model
}

func (c *ChatClient) complete(ctx context.Context, messages []chatMessage) (string, error) {
	reqBody := chatRequest{
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	if c.authHeader == "Authorization" {
		reqBody.Model = c.model
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal request: %v", ErrLLMFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", ErrLLMFailure, err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.authHeader == "Authorization" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	} else {
		req.Header.Set(c.authHeader, c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLLMFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", ErrLLMFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: API returned status %d: %s", ErrLLMFailure, resp.StatusCode, preview(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("%w: failed to parse response (body: %s): %v", ErrLLMFailure, preview(body), err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("%w: API error: %s", ErrLLMFailure, chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: response has no choices", ErrLLMFailure)
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

// MockLLM returns a deterministic reply derived from the prompt. It never
// touches the network.
type MockLLM struct {
	// Reply, when set, is returned verbatim instead of the derived text.
	Reply string
	Err   error
}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	return m.GenerateWithSystem(ctx, "", prompt)
}

func (m *MockLLM) GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Err != nil {
		return "", fmt.Errorf("%w: %v", ErrLLMFailure, m.Err)
	}
	if m.Reply != "" {
		return m.Reply, nil
	}
	firstLine, _, _ := strings.Cut(strings.TrimSpace(userPrompt), "\n")
	return "Summary of " + firstLine, nil
}

func (m *MockLLM) ModelName() string {
	return "mock"
}
