package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"talk-studio/draft"
)

// Client talks to the gateway service from the web application. It
// satisfies draft.Generator. Calls are issued once per user action and
// never retried; the request context carries cancellation, so a client
// that navigates away tears the upstream call down with it.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client for the gateway service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 3 * time.Minute,
		},
	}
}

type generateResponse struct {
	Content string `json:"content"`
	Error   string `json:"error"`
}

// Generate asks the gateway for speech prose matching the brief. The
// brief is validated before any network I/O.
func (c *Client) Generate(ctx context.Context, brief draft.Brief) (string, error) {
	if !brief.Complete() {
		return "", &Error{Kind: KindValidation, Message: "Title and topic are required"}
	}

	body, err := c.post(ctx, "/generate", brief)
	if err != nil {
		return "", err
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &Error{Kind: KindUpstreamMalformed, Message: "invalid response from generation gateway"}
	}
	if parsed.Content == "" {
		return "", &Error{Kind: KindUpstreamMalformed, Message: "generation gateway returned no content"}
	}
	return parsed.Content, nil
}

type analyzeRequest struct {
	SpeechContent string `json:"speechContent"`
}

type analyzeResponse struct {
	Scores
	Error string `json:"error"`
}

// Analyze asks the gateway for rhetorical-appeal scores. Blank content is
// rejected before any network call. Scores are clamped once more on the
// way in; the gateway's word is not taken for range safety.
func (c *Client) Analyze(ctx context.Context, speechContent string) (Scores, error) {
	if strings.TrimSpace(speechContent) == "" {
		return Scores{}, &Error{Kind: KindValidation, Message: "Speech content is required for analysis."}
	}

	body, err := c.post(ctx, "/analyze", analyzeRequest{SpeechContent: speechContent})
	if err != nil {
		return Scores{}, err
	}

	var parsed analyzeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Scores{}, &Error{Kind: KindUpstreamMalformed, Message: "invalid response from analysis gateway"}
	}

	scores := parsed.Scores
	scores.Logos = ClampScore(float64(scores.Logos))
	scores.Pathos = ClampScore(float64(scores.Pathos))
	scores.Ethos = ClampScore(float64(scores.Ethos))
	return scores, nil
}

// post issues one JSON POST and maps non-2xx statuses to the error
// taxonomy.
func (c *Client) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindUnavailable, Message: fmt.Sprintf("gateway unreachable: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindUnavailable, Message: "failed to read gateway response"}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := errorMessage(body, resp.StatusCode)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return nil, &Error{Kind: KindAuthentication, Message: message}
		case http.StatusTooManyRequests:
			return nil, &Error{Kind: KindRateLimited, Message: "Rate limit exceeded. Please try again in a moment."}
		case http.StatusBadRequest:
			return nil, &Error{Kind: KindValidation, Message: message}
		default:
			return nil, &Error{Kind: KindUnavailable, Message: message}
		}
	}

	return body, nil
}

func errorMessage(body []byte, status int) string {
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
		return parsed.Error
	}
	return fmt.Sprintf("gateway request failed with status %d", status)
}
