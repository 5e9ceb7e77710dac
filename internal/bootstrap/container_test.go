package bootstrap

import (
	"testing"

	"roboto-sai-be/internal/config"
	"roboto-sai-be/pkg/llm"

	"github.com/stretchr/testify/assert"
)

func TestInvokerDefaults(t *testing.T) {
	tests := []struct {
		name string
		ai   config.AIConfig
		want llm.Options
	}{
		{"unset", config.AIConfig{}, llm.Options{}},
		{"temperature only", config.AIConfig{Temperature: 0.2}, llm.Options{Temperature: 0.2}},
		{"both", config.AIConfig{Temperature: 0.9, MaxTokens: 300}, llm.Options{Temperature: 0.9, MaxTokens: 300}},
		{"negative ignored", config.AIConfig{Temperature: -1, MaxTokens: -5}, llm.Options{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := llm.Apply(llm.Options{}, invokerDefaults(tt.ai)...)
			assert.Equal(t, tt.want, *got)
		})
	}
}
