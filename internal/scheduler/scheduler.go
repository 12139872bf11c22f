// Package scheduler computes effective task starts from Finish-to-Start
// dependencies.
//
// ComputeEffectiveStarts is a pure function: it keeps no state between
// calls, never mutates its inputs, and is safe for concurrent use. Every
// call rebuilds the dependency graph from the full task and dependency
// lists.
package scheduler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/me/planline/pkg/model"
)

// CycleTag identifies a cycle failure in serialized schedule results.
const CycleTag = "cycle"

// ErrCycle is matched by every *CycleError via errors.Is.
var ErrCycle = errors.New("dependency cycle")

// CycleError is returned when the dependency graph contains a cycle.
//
// TaskIDs holds every task that never reached in-degree zero, in input
// order. That includes tasks downstream of a cycle that are not part of
// it themselves.
type CycleError struct {
	TaskIDs []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle involving tasks: %s", strings.Join(e.TaskIDs, ", "))
}

// Is reports whether target is ErrCycle.
func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}

// TaskEnd returns the first free day after a task: start + duration.
// A task starting at day 5 with duration 3 occupies days 5, 6, 7 and ends at 8.
func TaskEnd(start, duration int) int {
	return start + duration
}

// ComputeEffectiveStarts returns the effective start day of every task after
// Finish-to-Start propagation, or a *CycleError.
//
// Dependencies whose endpoints are not both present in tasks are ignored.
// Self-dependencies and duplicate edges are not rejected here; they are
// counted like any other edge (a self-dependency therefore always reports
// a cycle).
//
// Ties are broken by input order: in-degree-zero tasks are queued in task
// order and successors are released in dependency order, so identical
// inputs always produce identical results.
func ComputeEffectiveStarts(tasks []model.Task, deps []model.Dependency) (map[string]int, error) {
	byID := make(map[string]*model.Task, len(tasks))
	for i := range tasks {
		byID[tasks[i].ID] = &tasks[i]
	}

	// preds[B] = [A] means B starts after A finishes.
	// succs[A] = [B] is the forward edge used by the sort.
	preds := make(map[string][]string, len(tasks))
	succs := make(map[string][]string, len(tasks))
	inDegree := make(map[string]int, len(tasks))
	for _, t := range tasks {
		preds[t.ID] = nil
		succs[t.ID] = nil
		inDegree[t.ID] = 0
	}

	for _, d := range deps {
		if byID[d.FromTaskID] == nil || byID[d.ToTaskID] == nil {
			continue
		}
		preds[d.ToTaskID] = append(preds[d.ToTaskID], d.FromTaskID)
		succs[d.FromTaskID] = append(succs[d.FromTaskID], d.ToTaskID)
		inDegree[d.ToTaskID]++
	}

	// Kahn's algorithm: FIFO queue seeded in task order.
	queue := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if inDegree[t.ID] == 0 {
			queue = append(queue, t.ID)
		}
	}

	order := make([]string, 0, len(tasks))
	placed := make(map[string]bool, len(tasks))
	for head := 0; head < len(queue); head++ {
		id := queue[head]
		order = append(order, id)
		placed[id] = true

		for _, succ := range succs[id] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}

	if len(order) < len(tasks) {
		var cycle []string
		for _, t := range tasks {
			if !placed[t.ID] {
				cycle = append(cycle, t.ID)
			}
		}
		return nil, &CycleError{TaskIDs: cycle}
	}

	starts := make(map[string]int, len(tasks))
	for _, id := range order {
		effective := byID[id].StartDayIndex
		for _, p := range preds[id] {
			if end := TaskEnd(starts[p], byID[p].DurationDays); end > effective {
				effective = end
			}
		}
		starts[id] = effective
	}

	return starts, nil
}
