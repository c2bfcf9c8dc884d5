package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAI is a minimal chat-completions client. Each call is a single
// request and a single response: no retries, no caching, no streaming.
type OpenAI struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewOpenAI creates a client for the hosted API.
func NewOpenAI(apiKey string) *OpenAI {
	return NewOpenAIWithBaseURL(apiKey, defaultOpenAIBaseURL)
}

// NewOpenAIWithBaseURL creates a client against a custom endpoint, used by
// tests.
func NewOpenAIWithBaseURL(apiKey, baseURL string) *OpenAI {
	return &OpenAI{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

// ChatRequest describes one completion call.
type ChatRequest struct {
	Model       string
	System      string
	User        string
	MaxTokens   int
	Temperature float64
	// JSONObject asks the model for a strict JSON object response.
	JSONObject bool
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one chat-completion request and returns the message text.
func (c *OpenAI) Complete(ctx context.Context, req ChatRequest) (string, error) {
	if c.apiKey == "" {
		return "", &Error{Kind: KindAuthentication, Message: "OPENAI_API_KEY is not configured"}
	}

	var messages []openAIMessage
	if req.System != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: req.User})

	body := openAIRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.JSONObject {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &Error{Kind: KindUnavailable, Message: fmt.Sprintf("upstream request failed: %v", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Kind: KindUnavailable, Message: fmt.Sprintf("failed to read upstream response: %v", err)}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", &Error{Kind: KindRateLimited, Message: "Rate limit exceeded. Please try again in a moment."}
	case resp.StatusCode == http.StatusUnauthorized:
		return "", &Error{Kind: KindAuthentication, Message: "upstream rejected the API key"}
	case resp.StatusCode != http.StatusOK:
		return "", &Error{Kind: KindUnavailable, Message: fmt.Sprintf("upstream returned status %d", resp.StatusCode)}
	}

	var parsed openAIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &Error{Kind: KindUpstreamMalformed, Message: "upstream response was not valid JSON"}
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", &Error{Kind: KindUpstreamMalformed, Message: "upstream response contained no content"}
	}

	return parsed.Choices[0].Message.Content, nil
}
