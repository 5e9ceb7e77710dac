package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int

	// Server-side continuation token from an earlier call. Backends
	// without response chaining ignore it.
	PreviousResponseID string
	ReasoningEffort    string
	Instructions       string
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithPreviousResponseID(id string) Option {
	return func(o *Options) {
		o.PreviousResponseID = id
	}
}

func WithReasoningEffort(effort string) Option {
	return func(o *Options) {
		o.ReasoningEffort = effort
	}
}

func WithInstructions(instructions string) Option {
	return func(o *Options) {
		o.Instructions = instructions
	}
}

// Apply folds opts over the given defaults.
func Apply(defaults Options, opts ...Option) *Options {
	o := defaults
	for _, opt := range opts {
		opt(&o)
	}
	return &o
}

// Response is what a backend returns for one call.
type Response struct {
	Content           string
	ID                string // chaining token, empty when the backend has none
	EncryptedThinking string
	TokensUsed        *int
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (*Response, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (*Response, error)
}
