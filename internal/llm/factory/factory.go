// Package factory builds an llm.Provider from configuration.
package factory

import (
	"fmt"

	"github.com/nepselab/floorwatch/internal/config"
	"github.com/nepselab/floorwatch/internal/core"
	"github.com/nepselab/floorwatch/internal/llm"
	"github.com/nepselab/floorwatch/internal/llm/claude"
	"github.com/nepselab/floorwatch/internal/llm/ollama"
	"github.com/nepselab/floorwatch/internal/llm/openai"
)

// New creates the provider named by cfg.Provider.
func New(cfg config.LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "claude":
		return claude.New(cfg.Claude.APIKey, cfg.Claude.Model)
	case "openai":
		return openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	case "ollama":
		return ollama.New(cfg.Ollama.Endpoint, cfg.Ollama.Model)
	default:
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown llm provider: %s", cfg.Provider))
	}
}
