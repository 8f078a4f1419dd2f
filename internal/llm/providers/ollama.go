// File path: internal/llm/providers/ollama.go
package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"

	"github.com/pulse360/questengine/internal/common"
)

// OllamaProvider serves generation requests from a locally hosted model via
// langchaingo, so deployments without an OpenAI key still get real oracle
// output instead of going straight to the fallback bank.
type OllamaProvider struct {
	model *ollama.LLM
	name  string
}

func NewOllamaProvider(serverURL, modelName string) (*OllamaProvider, error) {
	opts := []ollama.Option{ollama.WithModel(modelName)}
	if strings.TrimSpace(serverURL) != "" {
		opts = append(opts, ollama.WithServerURL(serverURL))
	}
	model, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("configure ollama: %w", err)
	}
	logger := common.Logger()
	logger.Info("llm: ollama provider configured", "model", modelName, "server", serverURL)
	return &OllamaProvider{model: model, name: modelName}, nil
}

func (o *OllamaProvider) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if o.model == nil {
		return "", fmt.Errorf("nil ollama model")
	}
	logger := common.Logger()
	content := make([]llms.MessageContent, 0, len(req.Messages))
	for _, msg := range req.Messages {
		role := schema.ChatMessageTypeHuman
		switch strings.ToLower(msg.Role) {
		case "system":
			role = schema.ChatMessageTypeSystem
		case "assistant":
			role = schema.ChatMessageTypeAI
		}
		content = append(content, llms.TextParts(role, msg.Content))
	}
	var callOpts []llms.CallOption
	if req.Temperature > 0 {
		callOpts = append(callOpts, llms.WithTemperature(req.Temperature))
	}
	resp, err := o.model.GenerateContent(ctx, content, callOpts...)
	if err != nil {
		logger.Error("llm: ollama generation failed", "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	logger.Debug("llm: ollama generation succeeded")
	return resp.Choices[0].Content, nil
}

func (o *OllamaProvider) Name() string {
	return "ollama"
}
