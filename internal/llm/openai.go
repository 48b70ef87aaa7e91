package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ostrander/smithy/internal/apperr"
)

// DefaultModel is used when the config leaves the model empty.
const DefaultModel = "gpt-4o"

const systemPrompt = "You are a senior TypeScript engineer generating " +
	"workflow components. Respond with exactly what is asked for and nothing else."

// OpenAI implements TextGenerator over the chat completions API. A custom
// base URL makes it work with any OpenAI-compatible provider.
type OpenAI struct {
	client    openai.Client
	model     string
	maxTokens int64
}

var _ TextGenerator = (*OpenAI)(nil)

// NewOpenAI creates a chat-completions text generator.
func NewOpenAI(apiKey, model, baseURL string, maxTokens int) *OpenAI {
	if model == "" {
		model = DefaultModel
	}
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAI{
		client:    openai.NewClient(opts...),
		model:     model,
		maxTokens: int64(maxTokens),
	}
}

// Complete sends the prompt and returns the first choice's text.
func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		MaxTokens: openai.Int(o.maxTokens),
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: generation API: %v", apperr.ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: generation API returned no choices", apperr.ErrUnavailable)
	}
	return resp.Choices[0].Message.Content, nil
}
