// File path: internal/feedback/types.go
package feedback

import (
	"fmt"
	"strings"
)

// Perspective identifies the rater role a question is addressed to. The set
// is closed: anything outside the five canonical roles is rejected at the
// boundary rather than carried through the pipeline as a free-form string.
type Perspective string

const (
	PerspectiveManager      Perspective = "manager"
	PerspectivePeer         Perspective = "peer"
	PerspectiveDirectReport Perspective = "direct_report"
	PerspectiveSelf         Perspective = "self"
	PerspectiveExternal     Perspective = "external"
)

// CanonicalOrder is the fixed ordering used when concatenating perspective
// blocks into the final question list.
var CanonicalOrder = []Perspective{
	PerspectiveManager,
	PerspectivePeer,
	PerspectiveDirectReport,
	PerspectiveSelf,
	PerspectiveExternal,
}

// ParsePerspective maps loose external spellings ("direct report",
// "DIRECT_REPORT") onto the closed enum.
func ParsePerspective(value string) (Perspective, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")
	switch Perspective(normalized) {
	case PerspectiveManager, PerspectivePeer, PerspectiveDirectReport, PerspectiveSelf, PerspectiveExternal:
		return Perspective(normalized), nil
	}
	return "", fmt.Errorf("unknown perspective %q", value)
}

// Valid reports whether the perspective is one of the five canonical roles.
func (p Perspective) Valid() bool {
	switch p {
	case PerspectiveManager, PerspectivePeer, PerspectiveDirectReport, PerspectiveSelf, PerspectiveExternal:
		return true
	}
	return false
}

// DisplayName returns the human-readable label used in prompts and section
// headers.
func (p Perspective) DisplayName() string {
	switch p {
	case PerspectiveManager:
		return "Manager"
	case PerspectivePeer:
		return "Peer"
	case PerspectiveDirectReport:
		return "Direct Report"
	case PerspectiveSelf:
		return "Self"
	case PerspectiveExternal:
		return "External Stakeholder"
	}
	return string(p)
}

// QuestionType distinguishes scored rating questions from free-text ones.
type QuestionType string

const (
	TypeRating    QuestionType = "rating"
	TypeOpenEnded QuestionType = "open_ended"
)

// ParseQuestionType tolerates the spellings the oracle tends to emit
// ("open-ended", "Open Ended", "scale").
func ParseQuestionType(value string) (QuestionType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")
	switch normalized {
	case "rating", "scale", "likert":
		return TypeRating, true
	case "open_ended", "open", "text", "free_text":
		return TypeOpenEnded, true
	}
	return "", false
}

// Question is the central value object flowing through the pipeline. Order
// is zero until the quota balancer assigns the final sequence.
type Question struct {
	Text        string       `json:"text" db:"text"`
	Type        QuestionType `json:"type" db:"type"`
	Category    string       `json:"category" db:"category"`
	Perspective Perspective  `json:"perspective" db:"perspective"`
	Required    bool         `json:"required" db:"required"`
	Order       int          `json:"order" db:"position"`
	IsFallback  bool         `json:"is_fallback" db:"is_fallback"`
}

// DefaultCategory labels questions whose category the oracle omitted.
const DefaultCategory = "General"

// PerspectiveConfig holds the per-perspective generation settings.
type PerspectiveConfig struct {
	Enabled       bool `json:"enabled"`
	QuestionCount int  `json:"question_count"`
}

// PerspectiveSettings maps each rater role to its configuration. Perspectives
// absent from the map are treated as disabled.
type PerspectiveSettings map[Perspective]PerspectiveConfig

// Active returns the perspectives that participate in generation, in
// canonical order. A perspective with a zero target count is skipped.
func (s PerspectiveSettings) Active() []Perspective {
	var active []Perspective
	for _, p := range CanonicalOrder {
		cfg, ok := s[p]
		if !ok || !cfg.Enabled || cfg.QuestionCount <= 0 {
			continue
		}
		active = append(active, p)
	}
	return active
}

// Target returns the requested question count for a perspective, zero when
// the perspective is disabled.
func (s PerspectiveSettings) Target(p Perspective) int {
	cfg, ok := s[p]
	if !ok || !cfg.Enabled || cfg.QuestionCount < 0 {
		return 0
	}
	return cfg.QuestionCount
}

// TotalTarget sums the targets of all active perspectives.
func (s PerspectiveSettings) TotalTarget() int {
	total := 0
	for _, p := range s.Active() {
		total += s[p].QuestionCount
	}
	return total
}

// Validate rejects settings containing unknown perspectives or negative
// counts before the pipeline starts.
func (s PerspectiveSettings) Validate() error {
	for p, cfg := range s {
		if !p.Valid() {
			return fmt.Errorf("unknown perspective %q in settings", string(p))
		}
		if cfg.QuestionCount < 0 {
			return fmt.Errorf("negative question count %d for perspective %q", cfg.QuestionCount, string(p))
		}
	}
	return nil
}

// TemplateInfo is the read-only context bag describing the feedback template
// being generated. It contextualizes prompt and fallback phrasing and is
// never mutated by the pipeline.
type TemplateInfo struct {
	DocumentType     string `json:"document_type"`
	Name             string `json:"name"`
	Purpose          string `json:"purpose"`
	Department       string `json:"department"`
	Description      string `json:"description"`
	RatingPercentage int    `json:"rating_percentage"`
}
