// Package openai wraps the OpenAI chat completions API behind a small
// client used by summary generation and the settings probes.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
	"github.com/ynshm/llm-traffic-optimizer/internal/pkg/apperr"
	"go.uber.org/zap"
)

const (
	generateTimeout = 60 * time.Second
	probeTimeout    = 15 * time.Second
)

// GenerateParams describes one completion request.
type GenerateParams struct {
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int64
	System      string
	Prompt      string
}

// Client issues chat completion and model listing requests. The zero
// retry policy keeps failures visible to the caller instead of silently
// stretching the request window.
type Client struct {
	logger *zap.Logger
	extra  []openaioption.RequestOption
}

// New builds a client. Extra request options are appended to every SDK
// call; tests use them to install a counting transport.
func New(logger *zap.Logger, opts ...openaioption.RequestOption) *Client {
	return &Client{logger: logger.Named("openai"), extra: opts}
}

func (c *Client) sdk(apiKey string) *openaisdk.Client {
	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(strings.TrimSpace(apiKey)),
		openaioption.WithMaxRetries(0),
	}
	opts = append(opts, c.extra...)
	client := openaisdk.NewClient(opts...)
	return &client
}

// Generate runs one chat completion and returns the trimmed assistant
// text. The credential is checked before any network traffic happens.
func (c *Client) Generate(ctx context.Context, p GenerateParams) (string, error) {
	if strings.TrimSpace(p.APIKey) == "" {
		return "", apperr.New(apperr.KindMissingCredential, "openai api key is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	messages := make([]openaisdk.ChatCompletionMessageParamUnion, 0, 2)
	if strings.TrimSpace(p.System) != "" {
		messages = append(messages, openaisdk.SystemMessage(p.System))
	}
	messages = append(messages, openaisdk.UserMessage(p.Prompt))

	params := openaisdk.ChatCompletionNewParams{
		Model:       openaisdk.ChatModel(p.Model),
		Messages:    messages,
		Temperature: openaisdk.Float(p.Temperature),
	}
	if p.MaxTokens > 0 {
		params.MaxTokens = openaisdk.Int(p.MaxTokens)
	}

	resp, err := c.sdk(p.APIKey).Chat.Completions.New(ctx, params)
	if err != nil {
		return "", c.classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", apperr.New(apperr.KindEmptyResponse, "model returned no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", apperr.New(apperr.KindEmptyResponse, "model returned empty content")
	}
	return text, nil
}

// ValidateKey issues a minimal completion to check that the key works.
func (c *Client) ValidateKey(ctx context.Context, apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return apperr.New(apperr.KindMissingCredential, "openai api key is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	_, err := c.sdk(apiKey).Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model:     openaisdk.ChatModelGPT3_5Turbo,
		Messages:  []openaisdk.ChatCompletionMessageParamUnion{openaisdk.UserMessage("ping")},
		MaxTokens: openaisdk.Int(1),
	})
	if err != nil {
		return c.classify(err)
	}
	return nil
}

// ListModels returns the chat-capable model IDs available to the key,
// restricted to the gpt- family.
func (c *Client) ListModels(ctx context.Context, apiKey string) ([]string, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, apperr.New(apperr.KindMissingCredential, "openai api key is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	ids := []string{}
	iter := c.sdk(apiKey).Models.ListAutoPaging(ctx)
	for iter.Next() {
		id := iter.Current().ID
		if strings.HasPrefix(id, "gpt-") {
			ids = append(ids, id)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, c.classify(err)
	}
	return ids, nil
}

func (c *Client) classify(err error) error {
	var apiErr *openaisdk.Error
	if errors.As(err, &apiErr) {
		c.logger.Warn("openai api error",
			zap.Int("status", apiErr.StatusCode),
			zap.String("message", apiErr.Message))
		msg := strings.TrimSpace(apiErr.Message)
		if msg == "" {
			msg = fmt.Sprintf("api returned status %d", apiErr.StatusCode)
		}
		return apperr.New(apperr.KindRemote, msg)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.Is(err, context.DeadlineExceeded) {
		c.logger.Warn("openai request failed", zap.Error(err))
		return apperr.New(apperr.KindTransport, err.Error())
	}

	c.logger.Warn("openai request failed", zap.Error(err))
	return apperr.New(apperr.KindTransport, err.Error())
}
