package server

import (
	"net/http"

	"github.com/me/planline/internal/scheduler"
	"github.com/me/planline/pkg/model"
)

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	snap := s.editor.Snapshot()
	sched := s.editor.Schedule()

	resp := model.Schedule{
		OK:           sched.Err == nil,
		Starts:       sched.Starts,
		Ends:         make(map[string]int, len(sched.Starts)),
		CycleTaskIDs: []string{},
	}
	if sched.Err != nil {
		resp.Error = scheduler.CycleTag
		resp.CycleTaskIDs = append(resp.CycleTaskIDs, sched.CycleTaskIDs...)
	}
	for _, t := range snap.Tasks {
		if start, ok := sched.Starts[t.ID]; ok {
			resp.Ends[t.ID] = scheduler.TaskEnd(start, t.DurationDays)
		}
	}
	respondOK(w, reqID, resp)
}
