package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"smart-docs/internal/domain"
)

// GeminiClient asks a Gemini model for a JSON summary.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

var _ Client = (*GeminiClient)(nil)

// NewGeminiClient connects to the Gemini API. An empty model selects
// gemini-2.5-flash.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	return newGeminiClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}, model)
}

func newGeminiClient(ctx context.Context, cfg *genai.ClientConfig, model string) (*GeminiClient, error) {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiClient{client: client, model: model, timeout: defaultChatTimeout}, nil
}

func (c *GeminiClient) Summarize(ctx context.Context, text string) (domain.SummaryResult, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	resp, err := c.client.Models.GenerateContent(reqCtx, c.model, genai.Text(userPrompt(text)), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](defaultChatTemperature),
	})
	if err != nil {
		// The SDK does not always wrap the context error.
		if ctxErr := reqCtx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		return domain.SummaryResult{}, upstreamFailure("gemini", err)
	}
	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return domain.SummaryResult{}, fmt.Errorf("%w: gemini: empty response", domain.ErrMalformedResponse)
	}
	return domain.DecodeSummary([]byte(out))
}
