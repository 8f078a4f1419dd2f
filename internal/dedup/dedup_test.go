// File path: internal/dedup/dedup_test.go
package dedup

import (
	"testing"

	"github.com/pulse360/questengine/internal/feedback"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"How well does this person communicate?", "how well does this person communicate"},
		{"  **Rate** their   TEAMWORK!!  ", "rate their teamwork"},
		{"a\tb\nc", "a b c"},
		{"", ""},
		{"???", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	if got := Similarity("How well does this person lead?", "How well does this person lead?"); got != 1 {
		t.Fatalf("expected identical texts to score 1, got %f", got)
	}
	if got := Similarity("rate teamwork quality", "describe recent conflict"); got != 0 {
		t.Fatalf("expected disjoint texts to score 0, got %f", got)
	}
	if got := Similarity("", "anything"); got != 0 {
		t.Fatalf("expected empty text to score 0, got %f", got)
	}
	// Overlap coefficient divides by the smaller word set.
	got := Similarity("alpha beta gamma delta", "alpha beta")
	if got != 1 {
		t.Fatalf("expected subset to score 1, got %f", got)
	}
}

func TestSimilaritySurvivesFormatting(t *testing.T) {
	a := "How well does this person communicate with the team?"
	b := "**How well does this person communicate with the team**"
	if got := Similarity(a, b); got != 1 {
		t.Fatalf("expected formatting-only difference to score 1, got %f", got)
	}
}

func TestSetConflicts(t *testing.T) {
	set := NewSet("How well does this person communicate with the team?")
	if !set.Conflicts("How well does this person communicate with their team?", 0.85) {
		t.Fatalf("expected near-duplicate to conflict at 0.85")
	}
	if set.Conflicts("Describe a recent disagreement and its resolution.", 0.85) {
		t.Fatalf("expected unrelated text not to conflict")
	}
	var nilSet *Set
	if nilSet.Conflicts("anything", 0.85) {
		t.Fatalf("nil set must never conflict")
	}
	if nilSet.Len() != 0 {
		t.Fatalf("nil set length should be 0, got %d", nilSet.Len())
	}
}

func TestFilterRemovesNearDuplicates(t *testing.T) {
	questions := []feedback.Question{
		{Text: "How well does this person communicate with the team?"},
		{Text: "How well does this person communicate with their team?"},
		{Text: "Describe the impact of their mentoring on junior colleagues."},
	}
	kept := Filter(questions, nil, 0.85)
	if len(kept) != 2 {
		t.Fatalf("expected 2 kept questions, got %d", len(kept))
	}
	if kept[0].Text != questions[0].Text {
		t.Fatalf("expected earliest duplicate to win, got %q", kept[0].Text)
	}
}

func TestFilterAgainstSet(t *testing.T) {
	against := NewSet("How well does this person communicate with the team?")
	questions := []feedback.Question{
		{Text: "How well does this person communicate with the wider team?"},
		{Text: "Rate their willingness to mentor less experienced colleagues."},
	}
	kept := Filter(questions, against, 0.85)
	if len(kept) != 1 {
		t.Fatalf("expected 1 kept question, got %d", len(kept))
	}
	if kept[0].Text != questions[1].Text {
		t.Fatalf("unexpected survivor %q", kept[0].Text)
	}
	if against.Len() != 1 {
		t.Fatalf("Filter must not mutate the against set, len = %d", against.Len())
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PULSE360_DEDUP_STRICT", "0.9")
	t.Setenv("PULSE360_DEDUP_POOL", "0.5")
	cfg := LoadConfig()
	if cfg.Strict != 0.9 {
		t.Fatalf("expected strict 0.9, got %f", cfg.Strict)
	}
	if cfg.Pool != 0.5 {
		t.Fatalf("expected pool 0.5, got %f", cfg.Pool)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("PULSE360_DEDUP_STRICT", "1.5")
	t.Setenv("PULSE360_DEDUP_POOL", "not-a-number")
	cfg := LoadConfig()
	if cfg.Strict != 0.85 {
		t.Fatalf("expected default strict 0.85, got %f", cfg.Strict)
	}
	if cfg.Pool != 0.60 {
		t.Fatalf("expected default pool 0.60, got %f", cfg.Pool)
	}
}
