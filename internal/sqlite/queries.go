// File path: internal/sqlite/queries.go
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pulse360/questengine/internal/feedback"
)

// ErrTemplateNotFound is returned when a template id has no catalog row.
var ErrTemplateNotFound = errors.New("template not found")

// StoredTemplate is a template together with its most recent generated
// question set and the degradation record of the run that produced it.
type StoredTemplate struct {
	ID            string                `json:"id"`
	Info          feedback.TemplateInfo `json:"info"`
	RunID         string                `json:"run_id"`
	HighestTier   int                   `json:"highest_tier"`
	FallbackCount int                   `json:"fallback_count"`
	CreatedAt     time.Time             `json:"created_at"`
	Questions     []feedback.Question   `json:"questions"`
}

// TemplateSummary is the listing row for stored templates.
type TemplateSummary struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	DocumentType  string    `json:"document_type" db:"document_type"`
	QuestionCount int       `json:"question_count" db:"question_count"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// SaveTemplate persists the template, the generation run and its questions
// in one transaction.
func (s *Store) SaveTemplate(ctx context.Context, tpl StoredTemplate) error {
	if s == nil || s.db == nil {
		return errors.New("sqlite store not initialised")
	}
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	createdAt := tpl.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO templates (id, name, document_type, purpose, department, description, rating_percentage, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tpl.ID, tpl.Info.Name, tpl.Info.DocumentType, tpl.Info.Purpose, tpl.Info.Department,
		tpl.Info.Description, tpl.Info.RatingPercentage, createdAt,
	); err != nil {
		return fmt.Errorf("insert template: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO generation_runs (id, template_id, highest_tier, fallback_count, created_at) VALUES (?, ?, ?, ?, ?)`,
		tpl.RunID, tpl.ID, tpl.HighestTier, tpl.FallbackCount, createdAt,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for _, q := range tpl.Questions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO questions (template_id, run_id, position, text, type, category, perspective, required, is_fallback)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			tpl.ID, tpl.RunID, q.Order, q.Text, string(q.Type), q.Category, string(q.Perspective), q.Required, q.IsFallback,
		); err != nil {
			return fmt.Errorf("insert question %d: %w", q.Order, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// GetTemplate fetches a template and its question set ordered by position.
func (s *Store) GetTemplate(ctx context.Context, id string) (StoredTemplate, error) {
	if s == nil || s.db == nil {
		return StoredTemplate{}, errors.New("sqlite store not initialised")
	}
	var row struct {
		ID               string    `db:"id"`
		Name             string    `db:"name"`
		DocumentType     string    `db:"document_type"`
		Purpose          string    `db:"purpose"`
		Department       string    `db:"department"`
		Description      string    `db:"description"`
		RatingPercentage int       `db:"rating_percentage"`
		CreatedAt        time.Time `db:"created_at"`
	}
	err := s.db.GetContext(ctx, &row, `SELECT id, name, document_type, purpose, department, description, rating_percentage, created_at FROM templates WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredTemplate{}, ErrTemplateNotFound
	}
	if err != nil {
		return StoredTemplate{}, fmt.Errorf("select template: %w", err)
	}
	tpl := StoredTemplate{
		ID: row.ID,
		Info: feedback.TemplateInfo{
			Name:             row.Name,
			DocumentType:     row.DocumentType,
			Purpose:          row.Purpose,
			Department:       row.Department,
			Description:      row.Description,
			RatingPercentage: row.RatingPercentage,
		},
		CreatedAt: row.CreatedAt,
	}
	var run struct {
		ID            string `db:"id"`
		HighestTier   int    `db:"highest_tier"`
		FallbackCount int    `db:"fallback_count"`
	}
	err = s.db.GetContext(ctx, &run, `SELECT id, highest_tier, fallback_count FROM generation_runs WHERE template_id = ? ORDER BY created_at DESC LIMIT 1`, id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return StoredTemplate{}, fmt.Errorf("select run: %w", err)
	}
	if err == nil {
		tpl.RunID = run.ID
		tpl.HighestTier = run.HighestTier
		tpl.FallbackCount = run.FallbackCount
	}
	if err := s.db.SelectContext(ctx, &tpl.Questions,
		`SELECT text, type, category, perspective, required, position, is_fallback FROM questions WHERE template_id = ? ORDER BY position`, id); err != nil {
		return StoredTemplate{}, fmt.Errorf("select questions: %w", err)
	}
	return tpl, nil
}

// ListTemplates returns catalog summaries, newest first.
func (s *Store) ListTemplates(ctx context.Context) ([]TemplateSummary, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("sqlite store not initialised")
	}
	var out []TemplateSummary
	err := s.db.SelectContext(ctx, &out,
		`SELECT t.id, t.name, t.document_type, t.created_at,
		        (SELECT COUNT(*) FROM questions q WHERE q.template_id = t.id) AS question_count
		 FROM templates t ORDER BY t.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return out, nil
}
