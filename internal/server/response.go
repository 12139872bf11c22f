package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/me/planline/internal/exchange"
	"github.com/me/planline/internal/project"
	"github.com/me/planline/internal/sample"
	"github.com/me/planline/internal/scheduler"
	"github.com/me/planline/pkg/model"
)

// requestID generates a unique request identifier.
func requestID() string {
	return "req_" + uuid.New().String()[:8]
}

// respondOK writes a success response with the standard envelope.
func respondOK(w http.ResponseWriter, reqID string, data any) {
	respondJSON(w, http.StatusOK, reqID, data, nil, nil)
}

// respondCreated writes a 201 response with the standard envelope.
func respondCreated(w http.ResponseWriter, reqID string, data any) {
	respondJSON(w, http.StatusCreated, reqID, data, nil, nil)
}

// respondList writes a success response with pagination.
func respondList(w http.ResponseWriter, reqID string, data any, pg *model.Pagination) {
	respondJSON(w, http.StatusOK, reqID, data, pg, nil)
}

// respondError writes an error response with the standard envelope.
func respondError(w http.ResponseWriter, reqID string, status int, apiErr *model.APIError) {
	respondJSON(w, status, reqID, nil, nil, apiErr)
}

func respondJSON(w http.ResponseWriter, status int, reqID string, data any, pg *model.Pagination, apiErr *model.APIError) {
	resp := model.Response{
		RequestID:  reqID,
		Timestamp:  time.Now().UTC(),
		Data:       data,
		Pagination: pg,
		Error:      apiErr,
	}
	if apiErr != nil {
		resp.Status = "error"
	} else {
		resp.Status = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// decodeBody decodes a JSON request body into v, answering 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, reqID string, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("Invalid JSON body: " + err.Error()))
		return false
	}
	return true
}

// respondEditorError maps an editor or import error to an API error.
func respondEditorError(w http.ResponseWriter, reqID string, logger *slog.Logger, err error) {
	var cycleErr *scheduler.CycleError

	switch {
	case errors.Is(err, project.ErrInvalid),
		errors.Is(err, project.ErrSelfDependency),
		errors.Is(err, exchange.ErrInvalidDocument),
		errors.Is(err, exchange.ErrUnsupportedFormat),
		errors.Is(err, sample.ErrUnknownSize):
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(err.Error()))

	case errors.Is(err, project.ErrTaskNotFound),
		errors.Is(err, project.ErrDependencyNotFound),
		errors.Is(err, project.ErrGroupNotFound):
		respondError(w, reqID, http.StatusNotFound, &model.APIError{Code: model.ErrNotFound, Message: err.Error()})

	case errors.Is(err, project.ErrDuplicateDependency):
		respondError(w, reqID, http.StatusConflict, model.NewConflictError(err.Error()))

	case errors.Is(err, project.ErrWouldCycle):
		var ids []string
		if errors.As(err, &cycleErr) {
			ids = cycleErr.TaskIDs
		}
		respondError(w, reqID, http.StatusConflict, model.NewConflictError(project.ErrWouldCycle.Error(), ids...))

	default:
		logger.Error("request failed", "request_id", reqID, "error", err)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: err.Error()})
	}
}
