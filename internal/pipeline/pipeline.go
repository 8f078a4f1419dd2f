// File path: internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pulse360/questengine/internal/bank"
	"github.com/pulse360/questengine/internal/common"
	"github.com/pulse360/questengine/internal/dedup"
	"github.com/pulse360/questengine/internal/feedback"
	"github.com/pulse360/questengine/internal/llm"
	"github.com/pulse360/questengine/internal/oracle"
	"github.com/pulse360/questengine/internal/parser"
	"github.com/pulse360/questengine/internal/prompt"
)

// defaultTemperature is the sampling temperature for generation calls.
const defaultTemperature = 0.7

// Escalation tiers. TierNone records that no oracle content was used at all.
const (
	TierNone         = -1
	TierPrimary      = 0
	TierMissing      = 1
	TierInsufficient = 2
)

// Generator runs the full question pipeline: prompt, oracle, parse, dedup,
// escalate, balance, adjust. Each invocation owns its own accumulator, so
// separate generation requests are safe to run concurrently.
type Generator struct {
	oracle      *oracle.Client
	bank        *bank.Bank
	dedup       dedup.Config
	temperature float64
}

// Option customizes generator construction.
type Option func(*Generator)

// WithDedupConfig overrides the similarity thresholds.
func WithDedupConfig(cfg dedup.Config) Option {
	return func(g *Generator) { g.dedup = cfg }
}

// WithTemperature overrides the oracle sampling temperature.
func WithTemperature(t float64) Option {
	return func(g *Generator) { g.temperature = t }
}

// New wires a generator from its collaborators.
func New(client *oracle.Client, questionBank *bank.Bank, opts ...Option) *Generator {
	g := &Generator{
		oracle:      client,
		bank:        questionBank,
		dedup:       dedup.LoadConfig(),
		temperature: defaultTemperature,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Result is the pipeline output together with its degradation record.
type Result struct {
	RunID         string              `json:"run_id"`
	Questions     []feedback.Question `json:"questions"`
	HighestTier   int                 `json:"highest_tier"`
	FallbackCount int                 `json:"fallback_count"`
}

// GenerateQuestions produces exactly the requested number of questions for
// every enabled perspective. Oracle failures at any tier degrade through the
// fallback bank; the only error paths left are invalid settings and a nil
// bank, both programmer mistakes rather than runtime conditions.
func (g *Generator) GenerateQuestions(ctx context.Context, info feedback.TemplateInfo, settings feedback.PerspectiveSettings, attachments []oracle.FileRef) (Result, error) {
	logger := common.Logger()
	if err := settings.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid perspective settings: %w", err)
	}
	if g.bank == nil {
		return Result{}, fmt.Errorf("fallback bank not configured")
	}
	result := Result{RunID: uuid.NewString(), HighestTier: TierNone}
	active := settings.Active()
	if len(active) == 0 {
		logger.Warn("pipeline: no enabled perspectives, returning empty set", "run_id", result.RunID)
		return result, nil
	}
	logger.Info("pipeline: generation started",
		"run_id", result.RunID, "perspectives", len(active), "total_target", settings.TotalTarget())

	accepted := make(map[feedback.Perspective][]feedback.Question, len(active))
	acceptedSets := make(map[feedback.Perspective]*dedup.Set, len(active))
	for _, p := range active {
		acceptedSets[p] = dedup.NewSet()
	}

	oracleAvailable := g.oracle != nil

	// Tier 0: the primary generation call covering every active perspective.
	if oracleAvailable {
		text, err := g.complete(ctx, prompt.Build(info, settings), attachments)
		switch {
		case err == nil:
			merged := g.merge(accepted, acceptedSets, parser.Parse(text, settings), info, active)
			if merged > 0 {
				result.HighestTier = TierPrimary
			}
			logger.Info("pipeline: primary tier parsed", "run_id", result.RunID, "accepted", merged)
		case errors.Is(err, llm.ErrNoGenerator), errors.Is(err, oracle.ErrCircuitOpen):
			// The backend is down for this run; later tiers would only burn
			// time before the bank fills the gap anyway.
			oracleAvailable = false
			logger.Warn("pipeline: oracle unavailable, skipping escalation", "run_id", result.RunID, "error", err)
		default:
			logger.Warn("pipeline: primary tier failed", "run_id", result.RunID, "error", err)
		}
	}

	// Tier 1: one re-framed call for perspectives that came back empty.
	if oracleAvailable {
		var missing []feedback.Perspective
		for _, p := range active {
			if len(accepted[p]) == 0 {
				missing = append(missing, p)
			}
		}
		if len(missing) > 0 {
			text, err := g.complete(ctx, prompt.BuildMissing(info, settings, missing), attachments)
			if err != nil {
				logger.Warn("pipeline: missing-perspective tier failed", "run_id", result.RunID, "error", err)
				if errors.Is(err, oracle.ErrCircuitOpen) {
					oracleAvailable = false
				}
			} else {
				merged := g.merge(accepted, acceptedSets, parser.Parse(text, settings), info, missing)
				if merged > 0 {
					result.HighestTier = TierMissing
				}
				logger.Info("pipeline: missing-perspective tier parsed",
					"run_id", result.RunID, "perspectives", len(missing), "accepted", merged)
			}
		}
	}

	// Tier 2: one top-up call for perspectives that parsed short.
	if oracleAvailable {
		needs := make(map[feedback.Perspective]int)
		var short []feedback.Perspective
		for _, p := range active {
			available := len(accepted[p])
			if available > 0 && available < settings.Target(p) {
				needs[p] = settings.Target(p) - available
				short = append(short, p)
			}
		}
		if len(needs) > 0 {
			text, err := g.complete(ctx, prompt.BuildDeficit(info, needs), attachments)
			if err != nil {
				logger.Warn("pipeline: insufficient-perspective tier failed", "run_id", result.RunID, "error", err)
			} else {
				merged := g.merge(accepted, acceptedSets, parser.Parse(text, settings), info, short)
				if merged > 0 {
					result.HighestTier = TierInsufficient
				}
				logger.Info("pipeline: insufficient-perspective tier parsed",
					"run_id", result.RunID, "perspectives", len(short), "accepted", merged)
			}
		}
	}

	questions := g.balance(accepted, settings, info)
	adjustTypeMix(questions, settings, info.RatingPercentage)
	assignOrder(questions)

	for _, q := range questions {
		if q.IsFallback {
			result.FallbackCount++
		}
	}
	result.Questions = questions
	logger.Info("pipeline: generation finished",
		"run_id", result.RunID,
		"questions", len(questions),
		"highest_tier", result.HighestTier,
		"fallback", result.FallbackCount)
	return result, nil
}

// complete issues one oracle call with the generator's temperature.
func (g *Generator) complete(ctx context.Context, promptText string, attachments []oracle.FileRef) (string, error) {
	resp, err := g.oracle.Complete(ctx, oracle.Request{
		System:      prompt.SystemRole,
		Prompt:      promptText,
		Attachments: attachments,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// merge folds freshly parsed candidates into the accumulator for the allowed
// perspectives only, sanitizing text and rejecting near-duplicates of what
// is already accepted. Returns the number of questions accepted.
func (g *Generator) merge(
	accepted map[feedback.Perspective][]feedback.Question,
	sets map[feedback.Perspective]*dedup.Set,
	parsed map[feedback.Perspective][]parser.Candidate,
	info feedback.TemplateInfo,
	allowed []feedback.Perspective,
) int {
	allowedSet := make(map[feedback.Perspective]struct{}, len(allowed))
	for _, p := range allowed {
		allowedSet[p] = struct{}{}
	}
	total := 0
	for _, p := range feedback.CanonicalOrder {
		if _, ok := allowedSet[p]; !ok {
			continue
		}
		candidates := parsed[p]
		if len(candidates) == 0 {
			continue
		}
		set := sets[p]
		for _, candidate := range candidates {
			text := sanitizeText(candidate.Text, info)
			if text == "" {
				continue
			}
			if set.Conflicts(text, g.dedup.Strict) {
				continue
			}
			set.Add(text)
			accepted[p] = append(accepted[p], feedback.Question{
				Text:        text,
				Type:        candidate.Type,
				Category:    candidate.Category,
				Perspective: p,
				Required:    true,
			})
			total++
		}
	}
	return total
}
