// File path: internal/bank/bank_test.go
package bank

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pulse360/questengine/internal/dedup"
	"github.com/pulse360/questengine/internal/feedback"
)

func testBank(t *testing.T) *Bank {
	t.Helper()
	t.Setenv("PULSE360_BANK_FILE", "")
	return New(WithRand(rand.New(rand.NewSource(1))), WithDedupConfig(dedup.DefaultConfig()))
}

func TestFillReturnsExactCount(t *testing.T) {
	b := testBank(t)
	info := feedback.TemplateInfo{DocumentType: "performance"}
	questions := b.Fill(feedback.PerspectivePeer, info, 5, dedup.NewSet())
	if len(questions) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(questions))
	}
	for _, q := range questions {
		if !q.IsFallback {
			t.Fatalf("bank question not flagged as fallback: %+v", q)
		}
		if q.Perspective != feedback.PerspectivePeer {
			t.Fatalf("wrong perspective %q", q.Perspective)
		}
		if !q.Required {
			t.Fatalf("bank question should be required: %+v", q)
		}
		if q.Type != feedback.TypeRating && q.Type != feedback.TypeOpenEnded {
			t.Fatalf("unresolved question type %q", q.Type)
		}
	}
}

func TestFillMutualUniqueness(t *testing.T) {
	b := testBank(t)
	cfg := dedup.DefaultConfig()
	questions := b.Fill(feedback.PerspectiveManager, feedback.TemplateInfo{}, 8, dedup.NewSet())
	for i := range questions {
		for j := i + 1; j < len(questions); j++ {
			if sim := dedup.Similarity(questions[i].Text, questions[j].Text); sim > cfg.Strict {
				t.Fatalf("questions %d and %d too similar (%f):\n%q\n%q",
					i, j, sim, questions[i].Text, questions[j].Text)
			}
		}
	}
}

func TestFillHonorsAvoidList(t *testing.T) {
	b := testBank(t)
	blocked := "How effectively does this person collaborate with colleagues on shared work?"
	avoid := dedup.NewSet(blocked)
	questions := b.Fill(feedback.PerspectivePeer, feedback.TemplateInfo{}, 6, avoid)
	if len(questions) != 6 {
		t.Fatalf("expected 6 questions, got %d", len(questions))
	}
	cfg := dedup.DefaultConfig()
	for _, q := range questions {
		if !strings.Contains(q.Text, "(Area") {
			if sim := dedup.Similarity(q.Text, blocked); sim > cfg.Pool {
				t.Fatalf("pool question conflicts with avoid list (%f): %q", sim, q.Text)
			}
		}
	}
}

func TestFillSynthesizesPlaceholders(t *testing.T) {
	b := testBank(t)
	questions := b.Fill(feedback.PerspectiveExternal, feedback.TemplateInfo{}, 30, dedup.NewSet())
	if len(questions) != 30 {
		t.Fatalf("expected 30 questions even with exhausted pools, got %d", len(questions))
	}
	placeholders := 0
	for _, q := range questions {
		if strings.Contains(q.Text, "(Area") {
			placeholders++
			if !q.IsFallback || q.Type != feedback.TypeRating {
				t.Fatalf("placeholder must be a fallback rating question: %+v", q)
			}
		}
	}
	if placeholders == 0 {
		t.Fatalf("expected synthesized placeholders for a 30-question fill")
	}
}

func TestFillSelfPlaceholdersAddressTheSubject(t *testing.T) {
	b := testBank(t)
	questions := b.Fill(feedback.PerspectiveSelf, feedback.TemplateInfo{}, 25, dedup.NewSet())
	for _, q := range questions {
		if strings.Contains(q.Text, "(Area") && strings.Contains(q.Text, "this person") {
			t.Fatalf("self placeholder should address the subject directly: %q", q.Text)
		}
	}
}

func TestFillZeroNeeded(t *testing.T) {
	b := testBank(t)
	if got := b.Fill(feedback.PerspectivePeer, feedback.TemplateInfo{}, 0, nil); got != nil {
		t.Fatalf("expected nil for zero needed, got %+v", got)
	}
}

func TestGatherPrefersDocumentTypePool(t *testing.T) {
	b := testBank(t)
	entries := b.gather(feedback.PerspectiveManager, "Performance", 3)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Text != "How consistently does this person deliver work that meets quality standards?" {
		t.Fatalf("document-type pool should come first, got %q", entries[0].Text)
	}
}

func TestMergeFile(t *testing.T) {
	b := testBank(t)
	path := filepath.Join(t.TempDir(), "bank.yaml")
	content := strings.Join([]string{
		"perspectives:",
		"  peer:",
		"    generic:",
		"      - text: How well does this person champion cross-team initiatives?",
		"        category: Influence",
		"shared:",
		"  - text: How transparent is this person about mistakes?",
		"    type: open_ended",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write bank file: %v", err)
	}
	if err := b.mergeFile(path); err != nil {
		t.Fatalf("mergeFile: %v", err)
	}
	b.resolveTypes()

	peer := b.pools[feedback.PerspectivePeer]
	if peer.Generic[0].Text != "How well does this person champion cross-team initiatives?" {
		t.Fatalf("custom entry should be prepended, got %q", peer.Generic[0].Text)
	}
	if peer.Generic[0].Category != "Influence" {
		t.Fatalf("category not carried: %q", peer.Generic[0].Category)
	}
	if b.shared[0].Text != "How transparent is this person about mistakes?" {
		t.Fatalf("shared entry should be prepended, got %q", b.shared[0].Text)
	}
	if b.shared[0].typ != feedback.TypeOpenEnded {
		t.Fatalf("shared entry type not resolved: %q", b.shared[0].typ)
	}
}

func TestMergeFileRejectsUnknownPerspective(t *testing.T) {
	b := testBank(t)
	path := filepath.Join(t.TempDir(), "bank.yaml")
	content := "perspectives:\n  client:\n    generic:\n      - text: anything\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write bank file: %v", err)
	}
	if err := b.mergeFile(path); err == nil {
		t.Fatalf("expected error for unknown perspective key")
	}
}
