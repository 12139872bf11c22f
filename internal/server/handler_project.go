package server

import (
	"net/http"

	"github.com/me/planline/internal/project"
)

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, s.editor.Snapshot().Project)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req project.ProjectFields
	if !decodeBody(w, r, reqID, &req) {
		return
	}

	p, err := s.editor.UpdateProject(r.Context(), req)
	if err != nil {
		respondEditorError(w, reqID, s.logger, err)
		return
	}
	respondOK(w, reqID, p)
}
