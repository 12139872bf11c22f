package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/me/planline/internal/project"
	"github.com/me/planline/pkg/model"
)

// listOptions reads ?limit= and ?offset=, ignoring malformed values.
func listOptions(r *http.Request) model.ListOptions {
	opts := model.DefaultListOptions()
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		opts.Limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
		opts.Offset = v
	}
	opts.Clamp()
	return opts
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	tasks := s.editor.Snapshot().Tasks
	if groupID := r.URL.Query().Get("group_id"); groupID != "" {
		filtered := []model.Task{}
		for _, t := range tasks {
			if t.InGroup(groupID) {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}

	start, end, pg := listOptions(r).Page(len(tasks))
	respondList(w, reqID, tasks[start:end], pg)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req project.TaskFields
	if !decodeBody(w, r, reqID, &req) {
		return
	}

	task, err := s.editor.AddTask(r.Context(), req)
	if err != nil {
		respondEditorError(w, reqID, s.logger, err)
		return
	}
	respondCreated(w, reqID, task)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	task, err := s.editor.Task(id)
	if err != nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("task", id))
		return
	}
	respondOK(w, reqID, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req project.TaskFields
	if !decodeBody(w, r, reqID, &req) {
		return
	}

	task, err := s.editor.UpdateTask(r.Context(), id, req)
	if err != nil {
		respondEditorError(w, reqID, s.logger, err)
		return
	}
	respondOK(w, reqID, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := s.editor.RemoveTask(r.Context(), id); err != nil {
		respondEditorError(w, reqID, s.logger, err)
		return
	}
	respondOK(w, reqID, map[string]any{"deleted": true})
}

type moveTasksRequest struct {
	TaskIDs     []string `json:"taskIds"`
	TargetIndex int      `json:"targetIndex"`
	GroupID     *string  `json:"groupId"`
}

func (s *Server) handleMoveTasks(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req moveTasksRequest
	if !decodeBody(w, r, reqID, &req) {
		return
	}
	if len(req.TaskIDs) == 0 {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("nothing to move",
			model.FieldError{Field: "taskIds", Message: "at least one task id is required"}))
		return
	}

	if err := s.editor.MoveTasks(r.Context(), req.TaskIDs, req.TargetIndex, req.GroupID); err != nil {
		respondEditorError(w, reqID, s.logger, err)
		return
	}
	respondOK(w, reqID, s.editor.Snapshot().Tasks)
}
