package openai_provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// client implements the provider interface against any
// OpenAI-compatible chat-completions endpoint.
type client struct {
	baseURL      string
	apiKey       string
	defaultModel string
	temperature  float64
	maxTokens    int
	httpClient   *http.Client
}

// Message represents a message in a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// request represents a request to the chat-completions API
type request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// response represents a response from the chat-completions API
type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewOpenAIClient creates a new chat-completion client. Completion
// calls carry no client-side timeout; the only bounded waits in the
// system are the probe timeouts on the tool side.
func NewOpenAIClient(baseURL, apiKey, defaultModel string, temperature float64, maxTokens int) *client {
	return &client{
		baseURL:      baseURL,
		apiKey:       apiKey,
		defaultModel: defaultModel,
		temperature:  temperature,
		maxTokens:    maxTokens,
		httpClient:   &http.Client{},
	}
}

// Complete sends a single-message completion request and returns the
// first choice's content.
func (c *client) Complete(ctx context.Context, prompt, model string) (string, error) {
	if model == "" {
		model = c.defaultModel
	}

	requestBody := request{
		Model:       model,
		Messages:    []Message{{Role: "user", Content: prompt}},
		Stream:      false,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("completion API returned status %d: %s", resp.StatusCode, string(b))
	}

	var completionResp response
	if err := json.NewDecoder(resp.Body).Decode(&completionResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(completionResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return completionResp.Choices[0].Message.Content, nil
}
