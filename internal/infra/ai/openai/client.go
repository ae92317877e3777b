package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	domai "github.com/bryanwahyu/grantsheet/internal/domain/ai"
	"github.com/bryanwahyu/grantsheet/internal/infra/ai/prompt"
)

const (
	DefaultBaseURL     = "https://api.groq.com/openai/v1"
	DefaultModel       = "llama-3.1-70b-versatile"
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 2000
	DefaultTimeout     = 60 * time.Second
)

// zeroTemperature stands for 0 on the wire: the request field is omitempty.
const zeroTemperature = math.SmallestNonzeroFloat32

type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	// Temperature nil means DefaultTemperature; 0 is a valid setting.
	Temperature *float32
	MaxTokens   int
	Timeout     time.Duration
}

// Client is the process-wide completion handle. Build it once and share it.
type Client struct {
	*openai.Client
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

func NewClient(opts Options) *Client {
	cfg := openai.DefaultConfig(opts.APIKey)
	cfg.BaseURL = DefaultBaseURL
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	c := &Client{
		Client:      openai.NewClientWithConfig(cfg),
		Model:       opts.Model,
		Temperature: DefaultTemperature,
		MaxTokens:   opts.MaxTokens,
		Timeout:     opts.Timeout,
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if opts.Temperature != nil {
		c.Temperature = *opts.Temperature
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Complete sends one system+user exchange in JSON mode and returns the raw answer.
func (c *Client) Complete(ctx context.Context, documentText string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.Model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: prompt.GetUserPrompt(documentText)},
		},
	}
	// Reasoning models (o1/o3/o4/gpt-5*) take MaxCompletionTokens and reject a custom temperature.
	if isReasoningModel(c.Model) {
		req.MaxCompletionTokens = c.MaxTokens
	} else {
		req.MaxTokens = c.MaxTokens
		req.Temperature = c.Temperature
		if req.Temperature == 0 {
			req.Temperature = zeroTemperature
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", domai.ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", domai.ErrRateLimited, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", domai.ErrRateLimited, reqErr.Err)
	}
	return fmt.Errorf("%w: %w", domai.ErrCompletionFailed, err)
}
