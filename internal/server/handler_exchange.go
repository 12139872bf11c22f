package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/me/planline/internal/exchange"
	"github.com/me/planline/pkg/model"
)

var contentTypes = map[exchange.Format]string{
	exchange.FormatJSON: "application/json",
	exchange.FormatYAML: "application/yaml",
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	format, err := exchange.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondEditorError(w, reqID, s.logger, err)
		return
	}

	snap := s.editor.Snapshot()
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", exportFilename(snap.Project.Name, format)))
	if err := exchange.Encode(w, exchange.Build(snap), format); err != nil {
		// Headers are gone; all we can do is log.
		s.logger.Error("export failed", "request_id", reqID, "error", err)
	}
}

func exportFilename(name string, format exchange.Format) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, strings.TrimSpace(name))
	if slug == "" {
		slug = "project"
	}
	return "planline-" + slug + "." + string(format)
}

type importResponse struct {
	Project      model.Project `json:"project"`
	Tasks        int           `json:"tasks"`
	Dependencies int           `json:"dependencies"`
	Groups       int           `json:"groups"`
	ScheduleOK   bool          `json:"schedule_ok"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	format, err := exchange.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondEditorError(w, reqID, s.logger, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxImportBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, reqID, http.StatusRequestEntityTooLarge, &model.APIError{
				Code:    model.ErrTooLarge,
				Message: fmt.Sprintf("import document exceeds %d bytes", tooLarge.Limit),
			})
			return
		}
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("read body: "+err.Error()))
		return
	}

	env, err := exchange.Decode(bytes.NewReader(body), format)
	if err != nil {
		respondEditorError(w, reqID, s.logger, err)
		return
	}
	if err := s.editor.Replace(r.Context(), env.Snapshot()); err != nil {
		respondEditorError(w, reqID, s.logger, err)
		return
	}

	s.logger.Info("project imported", "project", env.Project.Name, "tasks", len(env.Tasks))
	respondOK(w, reqID, s.replaceSummary())
}

// replaceSummary describes the project after a wholesale replacement.
func (s *Server) replaceSummary() importResponse {
	snap := s.editor.Snapshot()
	return importResponse{
		Project:      snap.Project,
		Tasks:        len(snap.Tasks),
		Dependencies: len(snap.Dependencies),
		Groups:       len(snap.Groups),
		ScheduleOK:   s.editor.Schedule().Err == nil,
	}
}
