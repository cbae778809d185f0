package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"smart-docs/internal/domain"
)

// OpenAIClient calls the OpenAI Chat Completions API in JSON mode.
type OpenAIClient struct {
	model   openai.ChatModel
	client  *openai.Client
	timeout time.Duration
}

var _ Client = (*OpenAIClient)(nil)

const (
	defaultChatTimeout     = 60 * time.Second
	defaultChatTemperature = 0.2
)

// NewOpenAIClient builds a client with defaults against api.openai.com.
// Extra request options (base URL, retries) are passed through.
func NewOpenAIClient(apiKey string, model openai.ChatModel, opts ...option.RequestOption) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	cli := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &OpenAIClient{
		model:   model,
		client:  &cli,
		timeout: defaultChatTimeout,
	}, nil
}

func (c *OpenAIClient) Summarize(ctx context.Context, text string) (domain.SummaryResult, error) {
	if c == nil || c.client == nil {
		return domain.SummaryResult{}, fmt.Errorf("%w: nil openai client", domain.ErrUpstreamError)
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	resp, err := c.client.Chat.Completions.New(reqCtx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    buildMessages(systemPrompt, userPrompt(text)),
		Temperature: openai.Float(defaultChatTemperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return domain.SummaryResult{}, upstreamFailure("openai", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return domain.SummaryResult{}, fmt.Errorf("%w: openai: no choices returned", domain.ErrMalformedResponse)
	}
	return domain.DecodeSummary([]byte(resp.Choices[0].Message.Content))
}

func buildMessages(system, user string) []openai.ChatCompletionMessageParamUnion {
	return []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(system),
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(user),
				},
			},
		},
	}
}
