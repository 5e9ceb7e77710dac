package xai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"roboto-sai-be/pkg/llm"
)

const DefaultBaseURL = "https://api.x.ai/v1"

// Provider talks to the xAI Responses API, which keeps reasoning state on
// the server and hands back a response id to continue from.
type Provider struct {
	BaseURL   string
	APIKey    string
	ModelName string
	Client    *http.Client
}

var _ llm.LLMProvider = &Provider{}

func NewProvider(baseURL, apiKey, modelName string) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Provider{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		APIKey:    apiKey,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 180 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type responsesRequest struct {
	Model              string           `json:"model"`
	Input              []inputMessage   `json:"input"`
	Instructions       string           `json:"instructions,omitempty"`
	PreviousResponseID string           `json:"previous_response_id,omitempty"`
	Reasoning          *reasoningConfig `json:"reasoning,omitempty"`
	Include            []string         `json:"include,omitempty"`
	Temperature        *float64         `json:"temperature,omitempty"`
	MaxOutputTokens    int              `json:"max_output_tokens,omitempty"`
	Store              bool             `json:"store"`
}

type inputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type reasoningConfig struct {
	Effort string `json:"effort,omitempty"`
}

type responsesResponse struct {
	ID     string       `json:"id"`
	Output []outputItem `json:"output"`
	Usage  *struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type outputItem struct {
	Type             string `json:"type"`
	EncryptedContent string `json:"encrypted_content"`
	Content          []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// --- Interface Implementation ---

func (p *Provider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (*llm.Response, error) {
	options := llm.Apply(llm.Options{}, opts...)

	input := make([]inputMessage, 0, len(history))
	for _, msg := range history {
		role := msg.Role
		if role == "model" {
			role = "assistant"
		}
		input = append(input, inputMessage{Role: role, Content: msg.Content})
	}

	payload := responsesRequest{
		Model:              p.ModelName,
		Input:              input,
		Instructions:       options.Instructions,
		PreviousResponseID: options.PreviousResponseID,
		Include:            []string{"reasoning.encrypted_content"},
		MaxOutputTokens:    options.MaxTokens,
		Store:              true,
	}
	if options.ReasoningEffort != "" {
		payload.Reasoning = &reasoningConfig{Effort: options.ReasoningEffort}
	}
	if options.Temperature > 0 {
		t := options.Temperature
		payload.Temperature = &t
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.APIKey)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("xai request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("xai error: status %d, body: %s", resp.StatusCode, string(raw))
	}

	var parsed responsesResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return nil, fmt.Errorf("xai error: %s", parsed.Error.Message)
	}

	out := &llm.Response{ID: parsed.ID}
	var text strings.Builder
	for _, item := range parsed.Output {
		switch item.Type {
		case "reasoning":
			if item.EncryptedContent != "" {
				out.EncryptedThinking = item.EncryptedContent
			}
		case "message":
			for _, c := range item.Content {
				if c.Type == "output_text" {
					text.WriteString(c.Text)
				}
			}
		}
	}
	out.Content = text.String()
	if parsed.Usage != nil {
		n := parsed.Usage.TotalTokens
		out.TokensUsed = &n
	}
	return out, nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (*llm.Response, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}
