// File path: internal/dedup/dedup.go
package dedup

import (
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/pulse360/questengine/internal/feedback"
)

// Config carries the two similarity thresholds the pipeline runs with. The
// values are heuristic and deliberately tunable: strict guards oracle output
// against rephrasings, pool is looser because the fallback bank's templated
// phrasing overlaps more between questions that are genuinely distinct.
type Config struct {
	Strict float64
	Pool   float64
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{Strict: 0.85, Pool: 0.60}
}

// LoadConfig applies PULSE360_DEDUP_STRICT / PULSE360_DEDUP_POOL overrides
// on top of the defaults. Out-of-range values are ignored.
func LoadConfig() Config {
	cfg := DefaultConfig()
	if v := parseThreshold(os.Getenv("PULSE360_DEDUP_STRICT")); v > 0 {
		cfg.Strict = v
	}
	if v := parseThreshold(os.Getenv("PULSE360_DEDUP_POOL")); v > 0 {
		cfg.Pool = v
	}
	return cfg
}

func parseThreshold(raw string) float64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || value <= 0 || value > 1 {
		return 0
	}
	return value
}

// Normalize lowercases, strips punctuation and collapses whitespace so that
// trivial formatting differences never defeat similarity scoring.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func wordSet(text string) map[string]struct{} {
	words := strings.Fields(Normalize(text))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Similarity is the word-overlap coefficient of the two normalized texts:
// |intersection| / min(|words1|, |words2|), in [0, 1].
func Similarity(a, b string) float64 {
	return setSimilarity(wordSet(a), wordSet(b))
}

func setSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	smaller, larger := a, b
	if len(b) < len(a) {
		smaller, larger = b, a
	}
	shared := 0
	for w := range smaller {
		if _, ok := larger[w]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(smaller))
}

// Set accumulates the normalized word sets of accepted question texts, so a
// growing selection can be checked pairwise without re-normalizing.
type Set struct {
	entries []map[string]struct{}
}

// NewSet seeds a Set from existing question texts.
func NewSet(texts ...string) *Set {
	s := &Set{}
	for _, text := range texts {
		s.Add(text)
	}
	return s
}

// Add records a text in the set.
func (s *Set) Add(text string) {
	if s == nil {
		return
	}
	s.entries = append(s.entries, wordSet(text))
}

// Len returns the number of recorded texts.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Conflicts reports whether the text exceeds the threshold against any
// recorded entry.
func (s *Set) Conflicts(text string, threshold float64) bool {
	if s == nil || len(s.entries) == 0 {
		return false
	}
	candidate := wordSet(text)
	for _, entry := range s.entries {
		if setSimilarity(candidate, entry) > threshold {
			return true
		}
	}
	return false
}

// Filter removes questions whose text is a near-duplicate of an earlier kept
// question or of any entry in against (which may be nil). The accepted set
// is not mutated; callers decide what to record after filtering.
func Filter(questions []feedback.Question, against *Set, threshold float64) []feedback.Question {
	kept := make([]feedback.Question, 0, len(questions))
	local := &Set{}
	for _, q := range questions {
		if against.Conflicts(q.Text, threshold) {
			continue
		}
		if local.Conflicts(q.Text, threshold) {
			continue
		}
		local.Add(q.Text)
		kept = append(kept, q)
	}
	return kept
}
