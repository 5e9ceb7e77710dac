package factory

import (
	"testing"

	"roboto-sai-be/pkg/llm/ollama"
	"roboto-sai-be/pkg/llm/openai"
	"roboto-sai-be/pkg/llm/xai"
)

func TestNewLLMProvider(t *testing.T) {
	tests := []struct {
		provider string
		wantErr  bool
		check    func(any) bool
	}{
		{"xai", false, func(p any) bool { _, ok := p.(*xai.Provider); return ok }},
		{"", false, func(p any) bool { _, ok := p.(*xai.Provider); return ok }},
		{"openai", false, func(p any) bool { _, ok := p.(*openai.Provider); return ok }},
		{"ollama", false, func(p any) bool { _, ok := p.(*ollama.OllamaProvider); return ok }},
		{"bard", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			p, err := NewLLMProvider(tt.provider, "model", "", "key")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.provider)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.check(p) {
				t.Fatalf("unexpected provider type %T", p)
			}
		})
	}
}
