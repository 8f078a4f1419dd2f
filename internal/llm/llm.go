// File path: internal/llm/llm.go
package llm

import (
	"os"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/pulse360/questengine/internal/common"
	"github.com/pulse360/questengine/internal/llm/providers"
)

type Message = providers.Message

type ChatRequest = providers.ChatRequest

type Provider = providers.Provider

// ErrNoGenerator marks the offline provider; the pipeline treats it like any
// other oracle failure.
var ErrNoGenerator = providers.ErrNoGenerator

// NewProvider selects the generative backend from the environment: an OpenAI
// key wins, then a configured Ollama model, then the offline provider.
func NewProvider() Provider {
	logger := common.Logger()
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey != "" {
		opts := []option.RequestOption{option.WithAPIKey(apiKey)}
		if timeoutStr := strings.TrimSpace(os.Getenv("OPENAI_HTTP_TIMEOUT")); timeoutStr != "" {
			timeout, err := time.ParseDuration(timeoutStr)
			if err != nil {
				logger.Warn("llm: invalid OPENAI_HTTP_TIMEOUT, using default", "value", timeoutStr, "error", err)
			} else {
				logger.Info("llm: configuring OpenAI client with custom HTTP timeout", "timeout", timeout)
				opts = append(opts, option.WithRequestTimeout(timeout))
			}
		}
		if endpoint := strings.TrimSpace(os.Getenv("OPENAI_ENDPOINT")); endpoint != "" {
			logger.Info("llm: configuring OpenAI client with custom endpoint", "endpoint", endpoint)
			opts = append(opts, option.WithBaseURL(endpoint))
		} else {
			logger.Debug("llm: using default OpenAI endpoint")
		}
		client := openai.NewClient(opts...)
		logger.Info("llm: OpenAI provider selected")
		return providers.NewOpenAIProvider(client)
	}
	if model := strings.TrimSpace(os.Getenv("OLLAMA_MODEL")); model != "" {
		provider, err := providers.NewOllamaProvider(strings.TrimSpace(os.Getenv("OLLAMA_HOST")), model)
		if err != nil {
			logger.Warn("llm: ollama configuration failed; falling back to offline provider", "error", err)
		} else {
			logger.Info("llm: ollama provider selected", "model", model)
			return provider
		}
	}
	logger.Warn("llm: no generative backend configured; using offline provider")
	return providers.NewOfflineProvider()
}
