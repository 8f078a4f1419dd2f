// File path: internal/bank/bank.go
package bank

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pulse360/questengine/internal/common"
	"github.com/pulse360/questengine/internal/dedup"
	"github.com/pulse360/questengine/internal/feedback"
)

// oversampleFactor controls how many pool candidates are gathered per needed
// question, leaving headroom for similarity filtering.
const oversampleFactor = 4

// placeholderAttempts caps the uniqueness retries per synthesized
// placeholder. After the cap a non-unique placeholder is accepted and logged
// as a data-quality condition; the fill must always terminate.
const placeholderAttempts = 5

// Bank is the static pool of pre-written questions used when oracle output
// cannot satisfy a perspective's quota.
type Bank struct {
	pools  poolTable
	dedup  dedup.Config
	rng    *rand.Rand
	shared []entry
}

type entry struct {
	Text     string                `yaml:"text"`
	Type     string                `yaml:"type,omitempty"`
	Category string                `yaml:"category,omitempty"`
	typ      feedback.QuestionType `yaml:"-"`
}

type perspectivePools struct {
	Generic       []entry            `yaml:"generic,omitempty"`
	DocumentTypes map[string][]entry `yaml:"document_types,omitempty"`
}

type poolTable map[feedback.Perspective]*perspectivePools

type bankFile struct {
	Perspectives map[string]perspectivePools `yaml:"perspectives"`
	Shared       []entry                     `yaml:"shared,omitempty"`
}

// Option customizes bank construction.
type Option func(*Bank)

// WithRand injects a deterministic random source for tests.
func WithRand(rng *rand.Rand) Option {
	return func(b *Bank) { b.rng = rng }
}

// WithDedupConfig overrides the similarity thresholds.
func WithDedupConfig(cfg dedup.Config) Option {
	return func(b *Bank) { b.dedup = cfg }
}

// New returns a bank seeded with the built-in curated pools. When
// PULSE360_BANK_FILE points at a YAML file, its pools are merged on top.
func New(opts ...Option) *Bank {
	b := &Bank{
		pools:  builtinPools(),
		shared: sharedPool(),
		dedup:  dedup.LoadConfig(),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(b)
	}
	if path := strings.TrimSpace(os.Getenv("PULSE360_BANK_FILE")); path != "" {
		if err := b.mergeFile(path); err != nil {
			common.Logger().Warn("bank: custom pool file not loaded", "path", path, "error", err)
		} else {
			common.Logger().Info("bank: custom pools merged", "path", path)
		}
	}
	b.resolveTypes()
	return b
}

// mergeFile overlays pools from a YAML file onto the built-in tables.
// Unknown perspective keys are rejected so typos surface at startup instead
// of silently starving a perspective.
func (b *Bank) mergeFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read bank file: %w", err)
	}
	var file bankFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse bank file: %w", err)
	}
	for key, pools := range file.Perspectives {
		perspective, err := feedback.ParsePerspective(key)
		if err != nil {
			return fmt.Errorf("bank file: %w", err)
		}
		target, ok := b.pools[perspective]
		if !ok {
			target = &perspectivePools{}
			b.pools[perspective] = target
		}
		target.Generic = append(pools.Generic, target.Generic...)
		for docType, entries := range pools.DocumentTypes {
			if target.DocumentTypes == nil {
				target.DocumentTypes = make(map[string][]entry)
			}
			normalized := normalizeDocType(docType)
			target.DocumentTypes[normalized] = append(entries, target.DocumentTypes[normalized]...)
		}
	}
	b.shared = append(file.Shared, b.shared...)
	return nil
}

func (b *Bank) resolveTypes() {
	resolve := func(entries []entry) {
		for i := range entries {
			if parsed, ok := feedback.ParseQuestionType(entries[i].Type); ok {
				entries[i].typ = parsed
			} else {
				entries[i].typ = feedback.TypeRating
			}
			if strings.TrimSpace(entries[i].Category) == "" {
				entries[i].Category = feedback.DefaultCategory
			}
		}
	}
	for _, pools := range b.pools {
		resolve(pools.Generic)
		for _, entries := range pools.DocumentTypes {
			resolve(entries)
		}
	}
	resolve(b.shared)
}

// Fill returns exactly needed questions for the perspective, each flagged as
// fallback content. Sourcing order: document-type pool, then the
// perspective's generic pool, then the shared pool, then synthesized
// placeholders. Candidates are screened against avoid at the loose pool
// threshold and against each other at the strict threshold, then shuffled
// for variety.
func (b *Bank) Fill(p feedback.Perspective, info feedback.TemplateInfo, needed int, avoid *dedup.Set) []feedback.Question {
	if needed <= 0 {
		return nil
	}
	logger := common.Logger()
	candidates := b.gather(p, info.DocumentType, needed*oversampleFactor)

	accepted := make([]feedback.Question, 0, needed)
	local := dedup.NewSet()
	for _, candidate := range candidates {
		if avoid.Conflicts(candidate.Text, b.dedup.Pool) {
			continue
		}
		if local.Conflicts(candidate.Text, b.dedup.Strict) {
			continue
		}
		local.Add(candidate.Text)
		accepted = append(accepted, feedback.Question{
			Text:        candidate.Text,
			Type:        candidate.typ,
			Category:    candidate.Category,
			Perspective: p,
			Required:    true,
			IsFallback:  true,
		})
	}

	b.rng.Shuffle(len(accepted), func(i, j int) {
		accepted[i], accepted[j] = accepted[j], accepted[i]
	})
	if len(accepted) > needed {
		accepted = accepted[:needed]
	}

	if len(accepted) < needed {
		logger.Warn("bank: pool exhausted, synthesizing placeholders",
			"perspective", string(p), "needed", needed, "available", len(accepted))
		accepted = b.synthesize(p, needed, accepted, avoid)
	}
	return accepted
}

// gather concatenates the pools in priority order, up to the oversample
// budget. A document type with no dedicated pool resolves to the generic
// pools, never to an error.
func (b *Bank) gather(p feedback.Perspective, docType string, budget int) []entry {
	var out []entry
	pools := b.pools[p]
	if pools != nil {
		if docPool, ok := pools.DocumentTypes[normalizeDocType(docType)]; ok {
			out = append(out, docPool...)
		}
		out = append(out, pools.Generic...)
	}
	out = append(out, b.shared...)
	if len(out) > budget {
		out = out[:budget]
	}
	return out
}

// synthesize pads the accepted list with numbered placeholder questions
// cycling through the generic competency areas.
func (b *Bank) synthesize(p feedback.Perspective, needed int, accepted []feedback.Question, avoid *dedup.Set) []feedback.Question {
	logger := common.Logger()
	local := dedup.NewSet()
	for _, q := range accepted {
		local.Add(q.Text)
	}
	counter := 0
	for len(accepted) < needed {
		counter++
		competency := placeholderCompetencies[(counter-1)%len(placeholderCompetencies)]
		text := ""
		unique := false
		for attempt := 0; attempt < placeholderAttempts; attempt++ {
			text = placeholderText(p, competency, counter, attempt)
			if !local.Conflicts(text, b.dedup.Strict) && !avoid.Conflicts(text, b.dedup.Pool) {
				unique = true
				break
			}
		}
		if !unique {
			logger.Warn("bank: accepting non-unique placeholder", "perspective", string(p), "counter", counter)
		}
		local.Add(text)
		accepted = append(accepted, feedback.Question{
			Text:        text,
			Type:        feedback.TypeRating,
			Category:    titleWord(competency),
			Perspective: p,
			Required:    true,
			IsFallback:  true,
		})
	}
	return accepted
}

func placeholderText(p feedback.Perspective, competency string, counter, attempt int) string {
	verbPhrase, possessive := "does this person demonstrate", "this person's"
	if p == feedback.PerspectiveSelf {
		verbPhrase, possessive = "do you demonstrate", "your"
	}
	switch attempt {
	case 0:
		return fmt.Sprintf("How would you rate %s %s? (Area %d)", possessive, competency, counter)
	case 1:
		return fmt.Sprintf("How consistently %s strong %s? (Area %d)", verbPhrase, competency, counter)
	case 2:
		return fmt.Sprintf("Rate the overall effectiveness of %s %s in daily work. (Area %d)", possessive, competency, counter)
	default:
		return fmt.Sprintf("How would you rate %s %s? (Area %d, variant %d)", possessive, competency, counter, attempt)
	}
}

func normalizeDocType(docType string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(docType))), "_")
}

func titleWord(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
