// File path: internal/api/templates_handler.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pulse360/questengine/internal/common"
	"github.com/pulse360/questengine/internal/feedback"
	"github.com/pulse360/questengine/internal/oracle"
	"github.com/pulse360/questengine/internal/sqlite"
)

// GenerateRequest is the request body for template generation. Perspective
// keys accept loose spellings ("direct report") and are validated into the
// closed enum before the pipeline runs.
type GenerateRequest struct {
	Template     feedback.TemplateInfo                 `json:"template"`
	Perspectives map[string]feedback.PerspectiveConfig `json:"perspectives"`
	Attachments  []oracle.FileRef                      `json:"attachments,omitempty"`
}

// GenerateResponse returns the stored template id plus the pipeline output.
type GenerateResponse struct {
	TemplateID    string              `json:"template_id"`
	RunID         string              `json:"run_id"`
	HighestTier   int                 `json:"highest_tier"`
	FallbackCount int                 `json:"fallback_count"`
	Questions     []feedback.Question `json:"questions"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if strings.TrimSpace(req.Template.Name) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("template name required"))
		return
	}
	settings := make(feedback.PerspectiveSettings, len(req.Perspectives))
	for key, cfg := range req.Perspectives {
		perspective, err := feedback.ParsePerspective(key)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		settings[perspective] = cfg
	}
	if settings.TotalTarget() == 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("no enabled perspectives with a question count"))
		return
	}

	result, err := s.generator.GenerateQuestions(r.Context(), req.Template, settings, req.Attachments)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	stored := sqlite.StoredTemplate{
		ID:            uuid.NewString(),
		Info:          req.Template,
		RunID:         result.RunID,
		HighestTier:   result.HighestTier,
		FallbackCount: result.FallbackCount,
		Questions:     result.Questions,
	}
	if err := s.catalog.SaveTemplate(r.Context(), stored); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("persist template: %w", err))
		return
	}
	logger.Info("api: template generated",
		"template_id", stored.ID, "run_id", result.RunID,
		"questions", len(result.Questions), "fallback", result.FallbackCount)
	writeJSON(w, http.StatusCreated, GenerateResponse{
		TemplateID:    stored.ID,
		RunID:         result.RunID,
		HighestTier:   result.HighestTier,
		FallbackCount: result.FallbackCount,
		Questions:     result.Questions,
	})
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("template id required"))
		return
	}
	tpl, err := s.catalog.GetTemplate(r.Context(), id)
	if err != nil {
		if err == sqlite.ErrTemplateNotFound {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.catalog.ListTemplates(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"templates": templates})
}
