package server

import (
	"net/http"
	"runtime"
	"time"
)

type healthResponse struct {
	Status       string     `json:"status"`
	Version      string     `json:"version"`
	GoVersion    string     `json:"go_version"`
	Uptime       string     `json:"uptime"`
	Store        string     `json:"store"`
	Project      string     `json:"project"`
	Tasks        int        `json:"tasks"`
	Dependencies int        `json:"dependencies"`
	ScheduleOK   bool       `json:"schedule_ok"`
	LastSavedAt  *time.Time `json:"last_saved_at,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	snap := s.editor.Snapshot()
	resp := healthResponse{
		Status:       "healthy",
		Version:      Version,
		GoVersion:    runtime.Version(),
		Uptime:       time.Since(s.startTime).Round(time.Second).String(),
		Store:        "sqlite",
		Project:      snap.Project.Name,
		Tasks:        len(snap.Tasks),
		Dependencies: len(snap.Dependencies),
		ScheduleOK:   s.editor.Schedule().Err == nil,
	}
	if saved := s.editor.LastSavedAt(); !saved.IsZero() {
		resp.LastSavedAt = &saved
	}
	respondOK(w, reqID, resp)
}
