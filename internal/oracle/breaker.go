// File path: internal/oracle/breaker.go
package oracle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pulse360/questengine/internal/common"
	"github.com/pulse360/questengine/internal/llm"
)

// ErrCircuitOpen is returned while the breaker is rejecting calls. The
// pipeline treats it exactly like a transport failure.
var ErrCircuitOpen = errors.New("oracle circuit open")

type circuitState int

const (
	circuitClosed circuitState = iota
	circuitOpen
	circuitHalfOpen
)

func (s circuitState) String() string {
	switch s {
	case circuitOpen:
		return "open"
	case circuitHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

type breakerConfig struct {
	threshold int
	recovery  time.Duration
}

func (c breakerConfig) withDefaults() breakerConfig {
	if c.threshold <= 0 {
		c.threshold = 5
	}
	if c.recovery <= 0 {
		c.recovery = 30 * time.Second
	}
	return c
}

// breakerProvider wraps a provider with a closed/open/half-open circuit
// breaker so a struggling generative service fails fast instead of stalling
// every generation run on timeouts.
type breakerProvider struct {
	inner llm.Provider
	cfg   breakerConfig
	clock func() time.Time

	mu          sync.Mutex
	state       circuitState
	failures    int
	lastFailure time.Time
}

func newBreakerProvider(inner llm.Provider, cfg breakerConfig, clock func() time.Time) *breakerProvider {
	if clock == nil {
		clock = time.Now
	}
	return &breakerProvider{inner: inner, cfg: cfg.withDefaults(), clock: clock}
}

func (b *breakerProvider) Chat(ctx context.Context, req llm.ChatRequest) (string, error) {
	if !b.allow() {
		common.Logger().Warn("oracle: circuit open, rejecting call", "provider", b.inner.Name())
		return "", ErrCircuitOpen
	}
	text, err := b.inner.Chat(ctx, req)
	if err != nil {
		b.recordFailure()
		return "", err
	}
	b.recordSuccess()
	return text, nil
}

func (b *breakerProvider) Name() string {
	if b.inner == nil {
		return "breaker"
	}
	return fmt.Sprintf("%s+breaker", b.inner.Name())
}

// allow decides whether a call may proceed, transitioning open → half-open
// once the recovery timeout has elapsed.
func (b *breakerProvider) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != circuitOpen {
		return true
	}
	if b.clock().After(b.lastFailure.Add(b.cfg.recovery)) {
		common.Logger().Info("oracle: circuit half-open, testing service availability")
		b.state = circuitHalfOpen
		return true
	}
	return false
}

func (b *breakerProvider) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == circuitHalfOpen {
		common.Logger().Info("oracle: service recovered, closing circuit")
	}
	b.state = circuitClosed
	b.failures = 0
}

func (b *breakerProvider) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	b.lastFailure = b.clock()
	switch b.state {
	case circuitHalfOpen:
		common.Logger().Warn("oracle: failed during recovery, reopening circuit")
		b.state = circuitOpen
	case circuitClosed:
		if b.failures >= b.cfg.threshold {
			common.Logger().Warn("oracle: circuit opening", "failures", b.failures)
			b.state = circuitOpen
		}
	}
}

// snapshot exposes breaker state for tests.
func (b *breakerProvider) snapshot() (circuitState, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state, b.failures
}
