package server

import "net/http"

type endpointInfo struct {
	Path        string   `json:"path"`
	Methods     []string `json:"methods"`
	Description string   `json:"description"`
}

type discoveryResponse struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Endpoints   []endpointInfo `json:"endpoints"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, discoveryResponse{
		Name:        "planline API",
		Version:     "v1",
		Description: "Project timeline editor with finish-to-start scheduling",
		Endpoints: []endpointInfo{
			{"/api/v1/project", []string{"GET", "PUT"}, "Project name and epoch"},
			{"/api/v1/tasks", []string{"GET", "POST"}, "Task list and creation"},
			{"/api/v1/tasks/{id}", []string{"GET", "PATCH", "DELETE"}, "Single Task operations"},
			{"/api/v1/tasks/move", []string{"POST"}, "Reorder Tasks and assign them to a Group"},
			{"/api/v1/dependencies", []string{"GET", "POST", "DELETE"}, "Finish-to-start Dependencies (DELETE clears all)"},
			{"/api/v1/dependencies/{id}", []string{"DELETE"}, "Remove a Dependency"},
			{"/api/v1/groups", []string{"GET", "POST"}, "Task Groups"},
			{"/api/v1/groups/{id}", []string{"PATCH", "DELETE"}, "Rename, collapse or remove a Group"},
			{"/api/v1/schedule", []string{"GET"}, "Effective start and end day of every Task"},
			{"/api/v1/export", []string{"GET"}, "Download the project (?format=json|yaml)"},
			{"/api/v1/import", []string{"POST"}, "Replace the project with an exported document"},
			{"/api/v1/sample", []string{"POST"}, "Replace the project with a generated sample (?size=small|medium|large)"},
			{"/api/v1/reset", []string{"POST"}, "Clear the project back to an empty default"},
			{"/api/v1/health", []string{"GET"}, "Server health and version"},
		},
	})
}
