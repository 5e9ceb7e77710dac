package llm

import (
	"context"
	"errors"
	"strings"

	"roboto-sai-be/internal/entity"
)

// Result is the outcome of one model invocation. ResponseID is set only
// when Success is true; Error only when it is false.
type Result struct {
	Success           bool
	Response          string
	ResponseID        *string
	EncryptedThinking *string
	TokensUsed        *int
	Error             string
}

var ErrEmptyResponse = errors.New("model returned an empty response")

// Invoker turns a stored transcript into a single provider call.
// It never retries and never returns an error; failures come back as
// Result{Success: false}.
type Invoker struct {
	provider LLMProvider
	persona  string
	defaults []Option
}

// NewInvoker builds an invoker. defaults are applied to every call before
// the per-call options, so a call can still override them.
func NewInvoker(provider LLMProvider, persona string, defaults ...Option) *Invoker {
	return &Invoker{provider: provider, persona: persona, defaults: defaults}
}

// Invoke replays the full history, including the new user turn, and passes
// previousResponseID as an additional continuity hint.
func (i *Invoker) Invoke(ctx context.Context, history []entity.Turn, emotionHint, displayName, previousResponseID string, opts ...Option) Result {
	if i.provider == nil {
		return Result{Error: "no model provider configured"}
	}

	messages := make([]Message, 0, len(history))
	for _, t := range history {
		messages = append(messages, Message{Role: t.Role, Content: t.Content})
	}

	callOpts := make([]Option, 0, len(i.defaults)+len(opts)+2)
	callOpts = append(callOpts, i.defaults...)
	callOpts = append(callOpts, WithInstructions(i.instructions(emotionHint, displayName)))
	if previousResponseID != "" {
		callOpts = append(callOpts, WithPreviousResponseID(previousResponseID))
	}
	callOpts = append(callOpts, opts...)

	resp, err := i.provider.Chat(ctx, messages, callOpts...)
	if err == nil && (resp == nil || strings.TrimSpace(resp.Content) == "") {
		err = ErrEmptyResponse
	}
	if err != nil {
		return Result{Error: err.Error()}
	}

	out := Result{
		Success:    true,
		Response:   resp.Content,
		TokensUsed: resp.TokensUsed,
	}
	if resp.ID != "" {
		id := resp.ID
		out.ResponseID = &id
	}
	if resp.EncryptedThinking != "" {
		blob := resp.EncryptedThinking
		out.EncryptedThinking = &blob
	}
	return out
}

func (i *Invoker) instructions(emotionHint, displayName string) string {
	var b strings.Builder
	b.WriteString(i.persona)
	if displayName != "" {
		b.WriteString("\n\nYou are speaking with ")
		b.WriteString(displayName)
		b.WriteString(".")
	}
	if emotionHint != "" {
		b.WriteString("\nTheir current emotional tone: ")
		b.WriteString(emotionHint)
		b.WriteString(".")
	}
	return strings.TrimSpace(b.String())
}
