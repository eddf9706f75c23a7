// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// deepSeekAPIBase is the OpenAI-compatible DeepSeek root. Package-level var for test substitution.
var deepSeekAPIBase = "https://api.deepseek.com/v1"

// DeepSeekBackend completes prompts with DeepSeek's chat completions API.
type DeepSeekBackend struct {
	APIKey    string
	Model     string
	MaxTokens int
	Client    *http.Client
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends prompt as a single user message and returns the first choice.
func (d *DeepSeekBackend) Complete(ctx context.Context, prompt string) (string, error) {
	bodyBytes, err := json.Marshal(chatRequest{
		Model:     d.Model,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: d.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, deepSeekAPIBase+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.APIKey)

	resp, err := clientOrDefault(d.Client).Do(req)
	if err != nil {
		return "", fmt.Errorf("calling DeepSeek API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("DeepSeek API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding DeepSeek response: %w", err)
	}
	if len(cResp.Choices) == 0 || cResp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("DeepSeek API: %w", ErrEmptyResponse)
	}
	return cResp.Choices[0].Message.Content, nil
}
