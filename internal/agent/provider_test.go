// SPDX-License-Identifier: AGPL-3.0-only
package agent

import (
	"strings"
	"testing"

	"github.com/rodman1980/ai-dial-ums-ui-agent/internal/config"
)

func TestNewChatProvider_DefaultIsOpenAI(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AI.OpenAIAPIKey = "sk-test"

	provider, err := NewChatProvider(cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := provider.(*OpenAIProvider); !ok {
		t.Errorf("Expected *OpenAIProvider, got %T", provider)
	}
}

func TestNewChatProvider_ExplicitOpenAI(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AI.Provider = "openai"
	cfg.AI.OpenAIAPIKey = "sk-test"

	provider, err := NewChatProvider(cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := provider.(*OpenAIProvider); !ok {
		t.Errorf("Expected *OpenAIProvider, got %T", provider)
	}
}

func TestNewChatProvider_Anthropic(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AI.Provider = "anthropic"
	cfg.AI.AnthropicAPIKey = "sk-ant-test"

	provider, err := NewChatProvider(cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := provider.(*AnthropicProvider); !ok {
		t.Errorf("Expected *AnthropicProvider, got %T", provider)
	}
}

func TestNewChatProvider_AnthropicCaseInsensitive(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AI.Provider = "Anthropic"
	cfg.AI.AnthropicAPIKey = "sk-ant-test"

	provider, err := NewChatProvider(cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := provider.(*AnthropicProvider); !ok {
		t.Errorf("Expected *AnthropicProvider, got %T", provider)
	}
}

func TestNewChatProvider_FallbackToGenericKey(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AI.Provider = "openai"
	cfg.AI.APIKey = "generic-key"

	provider, err := NewChatProvider(cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := provider.(*OpenAIProvider); !ok {
		t.Errorf("Expected *OpenAIProvider, got %T", provider)
	}
}

func TestNewChatProvider_MissingKey(t *testing.T) {
	for _, providerName := range []string{"openai", "anthropic"} {
		cfg := config.DefaultConfig()
		cfg.AI.Provider = providerName

		_, err := NewChatProvider(cfg)
		if err == nil {
			t.Errorf("Expected error for %s without API key", providerName)
			continue
		}
		if !strings.Contains(err.Error(), "API key") {
			t.Errorf("Expected API key error for %s, got %v", providerName, err)
		}
	}
}
