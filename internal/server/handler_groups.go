package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/me/planline/internal/project"
)

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	groups := s.editor.Snapshot().Groups
	start, end, pg := listOptions(r).Page(len(groups))
	respondList(w, reqID, groups[start:end], pg)
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req project.GroupFields
	if !decodeBody(w, r, reqID, &req) {
		return
	}

	g, err := s.editor.AddGroup(r.Context(), req)
	if err != nil {
		respondEditorError(w, reqID, s.logger, err)
		return
	}
	respondCreated(w, reqID, g)
}

func (s *Server) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req project.GroupFields
	if !decodeBody(w, r, reqID, &req) {
		return
	}

	g, err := s.editor.UpdateGroup(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondEditorError(w, reqID, s.logger, err)
		return
	}
	respondOK(w, reqID, g)
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	if err := s.editor.RemoveGroup(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondEditorError(w, reqID, s.logger, err)
		return
	}
	respondOK(w, reqID, map[string]any{"deleted": true})
}
