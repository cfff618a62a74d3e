package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/JustineDevs/Hyperkit-Agent-sub004/internal/errors"
)

// chatMessage is one message in an openai-compatible chat request.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the openai-compatible chat-completions request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature,omitempty"`
}

// chatResponse is the subset of the chat-completions response we consume.
type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// systemPrompt frames every generation request. The contract must arrive as
// plain Solidity source; markdown fences are stripped defensively anyway.
const systemPrompt = "You are a Solidity smart contract engineer. " +
	"Respond with a single complete Solidity source file and nothing else."

// ChatProvider is a generation provider backed by an openai-compatible
// chat-completions endpoint.
type ChatProvider struct {
	name     string
	endpoint string
	model    string
	apiKey   string
	http     *http.Client
}

// NewChatProvider creates a ChatProvider. The per-attempt deadline comes
// from the caller's context, so the underlying client carries no timeout
// of its own.
func NewChatProvider(name, endpoint, model, apiKey string) *ChatProvider {
	return &ChatProvider{
		name:     name,
		endpoint: endpoint,
		model:    model,
		apiKey:   apiKey,
		http: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				ForceAttemptHTTP2:   true,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

// Name returns the configured provider name.
func (c *ChatProvider) Name() string { return c.name }

// Complete sends the prompt and returns the generated source text.
//
// Error classes matter to the router:
//   - transport failures, 5xx, and auth failures map to ErrProviderUnavailable
//   - an explicit provider-side refusal maps to ErrProviderRefused
//   - an empty completion maps to ErrEmptyCompletion
func (c *ChatProvider) Complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", errors.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", errors.ErrProviderUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden,
		resp.StatusCode >= 500:
		return "", fmt.Errorf("%w: status %d", errors.ErrProviderUnavailable, resp.StatusCode)
	default:
		// 4xx beyond auth is the provider telling us it won't fulfill
		// this request as phrased.
		return "", fmt.Errorf("%w: status %d: %s",
			errors.ErrProviderRefused, resp.StatusCode, summarizeBody(body))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: malformed response: %v", errors.ErrProviderUnavailable, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("%w: %s", errors.ErrProviderRefused, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.ErrEmptyCompletion
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if parsed.Choices[0].FinishReason == "content_filter" {
		return "", fmt.Errorf("%w: completion stopped by content filter", errors.ErrProviderRefused)
	}
	if content == "" {
		return "", errors.ErrEmptyCompletion
	}

	return StripCodeFence(content), nil
}

// summarizeBody flattens an error body to one short line for error messages.
func summarizeBody(body []byte) string {
	s := strings.Join(strings.Fields(string(body)), " ")
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

// StripCodeFence removes a wrapping markdown code fence from generated
// source, if present. Providers are told not to fence output but some do
// anyway.
func StripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return trimmed
	}

	// Drop the opening fence line (which may carry a language tag) and a
	// trailing fence line.
	lines = lines[1:]
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
