// File path: internal/sqlite/store_test.go
package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/pulse360/questengine/internal/feedback"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleTemplate() StoredTemplate {
	return StoredTemplate{
		ID: "tpl-1",
		Info: feedback.TemplateInfo{
			Name:             "Q3 Engineering Review",
			DocumentType:     "performance",
			Purpose:          "quarterly growth check",
			Department:       "Engineering",
			RatingPercentage: 70,
		},
		RunID:         "run-1",
		HighestTier:   1,
		FallbackCount: 2,
		CreatedAt:     time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		Questions: []feedback.Question{
			{Text: "How clearly does this person communicate?", Type: feedback.TypeRating, Category: "Communication", Perspective: feedback.PerspectiveManager, Required: true, Order: 1},
			{Text: "Describe a recent success.", Type: feedback.TypeOpenEnded, Category: "Performance", Perspective: feedback.PerspectivePeer, Required: true, Order: 2, IsFallback: true},
		},
	}
}

func TestSaveAndGetTemplate(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	tpl := sampleTemplate()
	if err := store.SaveTemplate(ctx, tpl); err != nil {
		t.Fatalf("save template: %v", err)
	}

	got, err := store.GetTemplate(ctx, tpl.ID)
	if err != nil {
		t.Fatalf("get template: %v", err)
	}
	if got.Info.Name != tpl.Info.Name {
		t.Fatalf("expected name %q, got %q", tpl.Info.Name, got.Info.Name)
	}
	if got.Info.RatingPercentage != 70 {
		t.Fatalf("expected rating percentage 70, got %d", got.Info.RatingPercentage)
	}
	if got.RunID != "run-1" || got.HighestTier != 1 || got.FallbackCount != 2 {
		t.Fatalf("run record mismatch: %+v", got)
	}
	if len(got.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(got.Questions))
	}
	first := got.Questions[0]
	if first.Text != tpl.Questions[0].Text || first.Type != feedback.TypeRating || first.Order != 1 {
		t.Fatalf("question round-trip mismatch: %+v", first)
	}
	if !first.Required || first.IsFallback {
		t.Fatalf("question flags mismatch: %+v", first)
	}
	second := got.Questions[1]
	if second.Perspective != feedback.PerspectivePeer || !second.IsFallback {
		t.Fatalf("second question mismatch: %+v", second)
	}
}

func TestQuestionsReturnOrderedByPosition(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	tpl := sampleTemplate()
	// Insert positions out of order; the read must sort them.
	tpl.Questions[0].Order = 2
	tpl.Questions[1].Order = 1
	if err := store.SaveTemplate(ctx, tpl); err != nil {
		t.Fatalf("save template: %v", err)
	}
	got, err := store.GetTemplate(ctx, tpl.ID)
	if err != nil {
		t.Fatalf("get template: %v", err)
	}
	if got.Questions[0].Order != 1 || got.Questions[1].Order != 2 {
		t.Fatalf("questions not ordered by position: %+v", got.Questions)
	}
}

func TestGetTemplateNotFound(t *testing.T) {
	store := testStore(t)
	if _, err := store.GetTemplate(context.Background(), "missing"); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestListTemplates(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	older := sampleTemplate()
	if err := store.SaveTemplate(ctx, older); err != nil {
		t.Fatalf("save older: %v", err)
	}
	newer := sampleTemplate()
	newer.ID = "tpl-2"
	newer.RunID = "run-2"
	newer.Info.Name = "Leadership Review"
	newer.CreatedAt = older.CreatedAt.Add(time.Hour)
	newer.Questions = newer.Questions[:1]
	if err := store.SaveTemplate(ctx, newer); err != nil {
		t.Fatalf("save newer: %v", err)
	}

	list, err := store.ListTemplates(ctx)
	if err != nil {
		t.Fatalf("list templates: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(list))
	}
	if list[0].ID != "tpl-2" {
		t.Fatalf("expected newest first, got %q", list[0].ID)
	}
	if list[0].QuestionCount != 1 || list[1].QuestionCount != 2 {
		t.Fatalf("question counts wrong: %+v", list)
	}
	if list[1].Name != "Q3 Engineering Review" {
		t.Fatalf("unexpected name %q", list[1].Name)
	}
}

func TestSaveTemplateRejectsDuplicateID(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	tpl := sampleTemplate()
	if err := store.SaveTemplate(ctx, tpl); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := store.SaveTemplate(ctx, tpl); err == nil {
		t.Fatalf("expected primary-key violation on duplicate save")
	}
}
