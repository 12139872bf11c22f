package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/me/planline/pkg/model"
)

func (s *Server) handleListDependencies(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	deps := s.editor.Snapshot().Dependencies
	start, end, pg := listOptions(r).Page(len(deps))
	respondList(w, reqID, deps[start:end], pg)
}

type createDependencyRequest struct {
	FromTaskID string `json:"fromTaskId"`
	ToTaskID   string `json:"toTaskId"`
}

func (s *Server) handleCreateDependency(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req createDependencyRequest
	if !decodeBody(w, r, reqID, &req) {
		return
	}

	var details []model.FieldError
	if req.FromTaskID == "" {
		details = append(details, model.FieldError{Field: "fromTaskId", Message: "required"})
	}
	if req.ToTaskID == "" {
		details = append(details, model.FieldError{Field: "toTaskId", Message: "required"})
	}
	if len(details) > 0 {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("missing task ids", details...))
		return
	}

	dep, err := s.editor.AddDependency(r.Context(), req.FromTaskID, req.ToTaskID)
	if err != nil {
		respondEditorError(w, reqID, s.logger, err)
		return
	}
	respondCreated(w, reqID, dep)
}

func (s *Server) handleDeleteDependency(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	if err := s.editor.RemoveDependency(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondEditorError(w, reqID, s.logger, err)
		return
	}
	respondOK(w, reqID, map[string]any{"deleted": true})
}

func (s *Server) handleClearDependencies(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	n, err := s.editor.ClearDependencies(r.Context())
	if err != nil {
		respondEditorError(w, reqID, s.logger, err)
		return
	}
	respondOK(w, reqID, map[string]any{"deleted": n})
}
