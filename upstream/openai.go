package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	openAITimeout        = 120 * time.Second
	providerOpenAI       = "openai"
)

type OpenAIClient struct {
	client  *http.Client
	baseURL string
	limiter *RateLimiter
}

func NewOpenAIClient(baseURL string) *OpenAIClient {
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	return &OpenAIClient{
		client:  &http.Client{Timeout: openAITimeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: NewRateLimiter(5, 10),
	}
}

type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []chatCompletionMsg `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float64             `json:"temperature,omitempty"`
}

type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

func (c *OpenAIClient) Complete(ctx context.Context, apiKey string, in CompletionRequest) (Completion, error) {
	messages := make([]chatCompletionMsg, 0, 2)
	if in.SystemPrompt != "" {
		messages = append(messages, chatCompletionMsg{Role: "system", Content: in.SystemPrompt})
	}
	messages = append(messages, chatCompletionMsg{Role: "user", Content: in.UserPrompt})

	payload, err := json.Marshal(chatCompletionRequest{
		Model:       in.Model,
		Messages:    messages,
		MaxTokens:   in.MaxTokens,
		Temperature: in.Temperature,
	})
	if err != nil {
		return Completion{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return Completion{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	var resp chatCompletionResponse
	if err := doJSON(ctx, c.client, c.limiter, providerOpenAI, req, &resp); err != nil {
		return Completion{}, err
	}
	if len(resp.Choices) == 0 {
		return Completion{}, &Error{Provider: providerOpenAI, StatusCode: http.StatusBadGateway, Body: "no choices in response"}
	}

	return Completion{
		Content:     resp.Choices[0].Message.Content,
		Model:       resp.Model,
		TotalTokens: resp.Usage.TotalTokens,
	}, nil
}
