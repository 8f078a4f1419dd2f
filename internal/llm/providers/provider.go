// File path: internal/llm/providers/provider.go
package providers

import (
	"context"
	"errors"
)

// Message is a single chat turn sent to a generative provider.
type Message struct {
	Role    string
	Content string
}

// ChatRequest carries the messages plus the sampling temperature requested by
// the caller. Temperature zero means "provider default".
type ChatRequest struct {
	Messages    []Message
	Temperature float64
}

// Provider abstracts the generative text service. Implementations must treat
// the context as the sole cancellation/timeout mechanism.
type Provider interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
	Name() string
}

// ErrNoGenerator is returned by the offline provider: it exists so the rest
// of the stack can be exercised without network access, with every generation
// request resolving through the fallback bank.
var ErrNoGenerator = errors.New("no generative model configured")

type OfflineProvider struct{}

func NewOfflineProvider() *OfflineProvider {
	return &OfflineProvider{}
}

func (p *OfflineProvider) Chat(ctx context.Context, req ChatRequest) (string, error) {
	return "", ErrNoGenerator
}

func (p *OfflineProvider) Name() string {
	return "offline"
}
