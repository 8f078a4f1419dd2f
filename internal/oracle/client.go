// File path: internal/oracle/client.go
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pulse360/questengine/internal/common"
	"github.com/pulse360/questengine/internal/llm"
)

// FileRef points at reference material already uploaded to the generative
// service by the document collaborator. The engine only forwards the
// reference; it never uploads content itself.
type FileRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Request is the oracle contract: a system role, a prompt, optional
// attachment references and a sampling temperature.
type Request struct {
	System      string
	Prompt      string
	Attachments []FileRef
	Temperature float64
}

// Response carries the raw oracle text. FromCache is set when the answer was
// served by the response cache rather than a live call.
type Response struct {
	Text      string
	FromCache bool
}

var (
	// ErrRefused signals that the oracle answered but declined to engage
	// with the request ("I cannot see the document...").
	ErrRefused = errors.New("oracle refused the request")
	// ErrEmptyResponse signals a successful transport with no usable text.
	ErrEmptyResponse = errors.New("oracle returned empty response")
)

// refusalMarkers are matched case-insensitively against the start of the
// response. The oracle phrases refusals many ways; these cover the forms
// observed in production.
var refusalMarkers = []string{
	"i cannot see",
	"i can't see",
	"i am unable to see",
	"i'm unable to see",
	"unable to access the",
	"i cannot access",
	"i can't access",
	"i'm sorry, but i",
	"i am sorry, but i",
	"as an ai",
	"i don't have access",
	"i do not have access",
}

// IsRefusal reports whether the oracle text is a refusal rather than
// generated content.
func IsRefusal(text string) bool {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return false
	}
	// Only inspect the leading portion: refusal phrasing buried deep inside
	// an otherwise structured response should not discard real questions.
	head := normalized
	if len(head) > 200 {
		head = head[:200]
	}
	for _, marker := range refusalMarkers {
		if strings.Contains(head, marker) {
			return true
		}
	}
	return false
}

// Client issues prompts to the generative provider. Decorators (circuit
// breaker, response cache) are composed once at construction; the client
// itself holds no retry logic; escalation belongs to the pipeline.
type Client struct {
	provider llm.Provider
}

// Option customizes client construction.
type Option func(*options)

type options struct {
	breaker  *breakerConfig
	cacheTTL time.Duration
	clock    func() time.Time
}

// WithBreaker enables the circuit breaker with the given failure threshold
// and recovery timeout.
func WithBreaker(threshold int, recovery time.Duration) Option {
	return func(o *options) {
		o.breaker = &breakerConfig{threshold: threshold, recovery: recovery}
	}
}

// WithCacheTTL enables the response cache. A zero TTL disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.cacheTTL = ttl
	}
}

// withClock injects a fake clock for breaker tests.
func withClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// NewClient wraps the provider with the configured decorators. Order
// matters: the cache sits outside the breaker so cached answers remain
// servable while the circuit is open.
func NewClient(provider llm.Provider, opts ...Option) *Client {
	cfg := options{clock: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	wrapped := provider
	if cfg.breaker != nil {
		wrapped = newBreakerProvider(wrapped, *cfg.breaker, cfg.clock)
	}
	if cfg.cacheTTL > 0 {
		wrapped = newCachingProvider(wrapped, cfg.cacheTTL)
	}
	return &Client{provider: wrapped}
}

// Complete sends the request and returns the raw response text. Every
// failure mode (transport, timeout, open breaker, refusal, empty text) comes
// back as an error the caller funnels into its fallback path.
func (c *Client) Complete(ctx context.Context, req Request) (Response, error) {
	if c == nil || c.provider == nil {
		return Response{}, fmt.Errorf("oracle client not configured")
	}
	logger := common.Logger()
	prompt := req.Prompt
	if len(req.Attachments) > 0 {
		names := make([]string, 0, len(req.Attachments))
		for _, ref := range req.Attachments {
			if trimmed := strings.TrimSpace(ref.Name); trimmed != "" {
				names = append(names, trimmed)
			}
		}
		if len(names) > 0 {
			prompt = fmt.Sprintf("%s\n\nReference material available to you: %s", prompt, strings.Join(names, ", "))
		}
	}
	messages := []llm.Message{}
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, llm.Message{Role: "system", Content: req.System})
	}
	messages = append(messages, llm.Message{Role: "user", Content: prompt})

	var cached bool
	ctx = withCacheMarker(ctx, &cached)
	text, err := c.provider.Chat(ctx, llm.ChatRequest{Messages: messages, Temperature: req.Temperature})
	if err != nil {
		logger.Warn("oracle: completion failed", "provider", c.provider.Name(), "error", err)
		return Response{}, err
	}
	if strings.TrimSpace(text) == "" {
		logger.Warn("oracle: completion returned empty text", "provider", c.provider.Name())
		return Response{}, ErrEmptyResponse
	}
	if IsRefusal(text) {
		logger.Warn("oracle: completion refused", "provider", c.provider.Name())
		return Response{}, ErrRefused
	}
	logger.Debug("oracle: completion succeeded", "provider", c.provider.Name(), "chars", len(text), "cached", cached)
	return Response{Text: text, FromCache: cached}, nil
}

// Provider exposes the decorated provider, mainly for wiring diagnostics.
func (c *Client) Provider() llm.Provider {
	if c == nil {
		return nil
	}
	return c.provider
}
