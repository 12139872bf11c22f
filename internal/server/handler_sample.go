package server

import (
	"net/http"
	"time"

	"github.com/me/planline/internal/exchange"
	"github.com/me/planline/internal/sample"
	"github.com/me/planline/internal/timeline"
	"github.com/me/planline/pkg/model"
)

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	size, err := sample.ParseSize(r.URL.Query().Get("size"))
	if err != nil {
		respondEditorError(w, reqID, s.logger, err)
		return
	}
	snap, err := sample.Generate(size, timeline.TodayDayIndex(time.Now()), nil)
	if err != nil {
		respondEditorError(w, reqID, s.logger, err)
		return
	}
	// Generated projects go through the same checks as an import.
	if err := exchange.Validate(exchange.Build(snap)); err != nil {
		s.logger.Error("generated sample is invalid", "request_id", reqID, "size", size, "error", err)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: err.Error()})
		return
	}
	if err := s.editor.Replace(r.Context(), snap); err != nil {
		respondEditorError(w, reqID, s.logger, err)
		return
	}

	s.logger.Info("sample project loaded", "size", size, "tasks", len(snap.Tasks))
	respondOK(w, reqID, s.replaceSummary())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	if err := s.editor.Reset(r.Context()); err != nil {
		respondEditorError(w, reqID, s.logger, err)
		return
	}
	respondOK(w, reqID, s.replaceSummary())
}
