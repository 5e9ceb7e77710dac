package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"roboto-sai-be/pkg/llm"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	requestTimeout = 120 * time.Second
)

// Provider targets any OpenAI-compatible chat completions endpoint. Chat
// completions are stateless, so PreviousResponseID is ignored and the
// completion id is handed back as the chaining token.
type Provider struct {
	ModelName string
	client    openaigo.Client
}

var _ llm.LLMProvider = &Provider{}

func NewProvider(baseURL, apiKey, modelName string) *Provider {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := openaigo.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(strings.TrimSpace(apiKey)),
		option.WithHTTPClient(&http.Client{Timeout: requestTimeout}),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(requestTimeout),
	)
	return &Provider{ModelName: modelName, client: client}
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (*llm.Response, error) {
	options := llm.Apply(llm.Options{}, opts...)

	messages := make([]openaigo.ChatCompletionMessageParamUnion, 0, len(history)+1)
	if options.Instructions != "" {
		messages = append(messages, openaigo.SystemMessage(options.Instructions))
	}
	for _, msg := range history {
		switch msg.Role {
		case "assistant", "model":
			messages = append(messages, openaigo.AssistantMessage(msg.Content))
		case "system":
			messages = append(messages, openaigo.SystemMessage(msg.Content))
		default:
			messages = append(messages, openaigo.UserMessage(msg.Content))
		}
	}

	params := openaigo.ChatCompletionNewParams{
		Model:    openaigo.ChatModel(p.ModelName),
		Messages: messages,
	}
	if options.Temperature > 0 {
		params.Temperature = openaigo.Float(options.Temperature)
	}
	if options.MaxTokens > 0 {
		params.MaxCompletionTokens = openaigo.Int(int64(options.MaxTokens))
	}
	if options.ReasoningEffort != "" {
		params.ReasoningEffort = shared.ReasoningEffort(options.ReasoningEffort)
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	tokens := int(resp.Usage.TotalTokens)
	out := &llm.Response{
		Content: resp.Choices[0].Message.Content,
		ID:      resp.ID,
	}
	if tokens > 0 {
		out.TokensUsed = &tokens
	}
	return out, nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (*llm.Response, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}
