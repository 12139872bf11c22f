// Package project holds the application state of an open project: the
// tasks, dependencies, groups and project record, plus the schedule
// computed from them.
//
// Every mutation is validated, persisted, and only then applied in memory
// together with a freshly computed schedule. A failed edit leaves both
// the store and the in-memory state untouched.
package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/me/planline/internal/logging"
	"github.com/me/planline/internal/scheduler"
	"github.com/me/planline/internal/store"
	"github.com/me/planline/internal/timeline"
	"github.com/me/planline/pkg/model"
)

// Schedule is the cached scheduler output for the current snapshot.
type Schedule struct {
	// Starts maps task id to effective start day. Empty while a cycle exists.
	Starts map[string]int
	// Err is the *scheduler.CycleError of the last run, or nil.
	Err error
	// CycleTaskIDs lists the tasks that could not be ordered.
	CycleTaskIDs []string
}

// Editor owns the in-memory project and keeps it in sync with the store.
// It is safe for concurrent use.
type Editor struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time

	mu          sync.RWMutex
	snap        *model.Snapshot
	schedule    Schedule
	lastSavedAt time.Time
}

// Option configures optional Editor dependencies.
type Option func(*Editor)

// WithClock overrides time.Now, used for default start days and save times.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) {
		e.now = now
	}
}

// NewEditor creates an Editor with an empty default project. Call Hydrate to
// load persisted state.
func NewEditor(st store.Store, logger *slog.Logger, opts ...Option) *Editor {
	e := &Editor{
		store:  st,
		logger: logger.With("component", "editor"),
		now:    time.Now,
		snap: &model.Snapshot{
			Project: model.Project{
				ID:    timeline.DefaultProjectID,
				Name:  timeline.DefaultProjectName,
				Epoch: timeline.EpochDate,
			},
			Tasks:        []model.Task{},
			Dependencies: []model.Dependency{},
			Groups:       []model.Group{},
		},
		schedule: Schedule{Starts: map[string]int{}},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Hydrate replaces the in-memory state with the store's contents.
func (e *Editor) Hydrate(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.hydrateLocked(ctx)
}

func (e *Editor) hydrateLocked(ctx context.Context) error {
	snap, err := e.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("hydrate: %w", err)
	}
	e.snap = snap
	e.schedule = e.reschedule(snap)
	e.log(ctx).Info("project loaded",
		"project", snap.Project.Name,
		"tasks", len(snap.Tasks),
		"dependencies", len(snap.Dependencies),
		"groups", len(snap.Groups),
	)
	return nil
}

// --- Read side ---

// Snapshot returns a deep copy of the current project.
func (e *Editor) Snapshot() *model.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap.Clone()
}

// Schedule returns a copy of the current schedule.
func (e *Editor) Schedule() Schedule {
	e.mu.RLock()
	defer e.mu.RUnlock()

	starts := make(map[string]int, len(e.schedule.Starts))
	for id, s := range e.schedule.Starts {
		starts[id] = s
	}
	return Schedule{
		Starts:       starts,
		Err:          e.schedule.Err,
		CycleTaskIDs: slices.Clone(e.schedule.CycleTaskIDs),
	}
}

// Task returns the task with the given id.
func (e *Editor) Task(id string) (model.Task, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	i := e.taskIndex(id)
	if i < 0 {
		return model.Task{}, notFound(ErrTaskNotFound, id)
	}
	t := e.snap.Tasks[i]
	if t.GroupID != nil {
		t.GroupID = model.StringPtr(*t.GroupID)
	}
	return t, nil
}

// LastSavedAt returns the time of the last successful edit, or the zero time.
func (e *Editor) LastSavedAt() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastSavedAt
}

// --- Tasks ---

// AddTask creates a task. Unset fields default to "New task", today's day
// index, a three day duration and the next palette colour. The task is
// appended after every existing task.
func (e *Editor) AddTask(ctx context.Context, f TaskFields) (model.Task, error) {
	if err := f.validate("AddTask"); err != nil {
		return model.Task{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkGroup(f.GroupID); err != nil {
		return model.Task{}, err
	}

	maxSort := -1
	for _, t := range e.snap.Tasks {
		maxSort = max(maxSort, t.SortOrder)
	}

	task := model.Task{
		ID:            "task_" + uuid.New().String(),
		Name:          timeline.DefaultTaskName,
		StartDayIndex: timeline.TodayDayIndex(e.now()),
		DurationDays:  timeline.DefaultDuration,
		Color:         timeline.ColorFor(len(e.snap.Tasks)),
		SortOrder:     maxSort + 1,
	}
	applyTaskFields(&task, f)

	if err := e.store.SaveTask(ctx, &task); err != nil {
		return model.Task{}, fmt.Errorf("save task: %w", err)
	}

	next := e.snap.Clone()
	next.Tasks = append(next.Tasks, task)
	e.commit(next, true)

	e.log(ctx).Debug("task added", "task_id", task.ID, "start", task.StartDayIndex, "duration", task.DurationDays)
	return task, nil
}

// UpdateTask applies f to a task. The schedule is recomputed only when the
// start or duration changes.
func (e *Editor) UpdateTask(ctx context.Context, id string, f TaskFields) (model.Task, error) {
	if err := f.validate("UpdateTask"); err != nil {
		return model.Task{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.taskIndex(id)
	if i < 0 {
		return model.Task{}, notFound(ErrTaskNotFound, id)
	}
	if err := e.checkGroup(f.GroupID); err != nil {
		return model.Task{}, err
	}

	next := e.snap.Clone()
	applyTaskFields(&next.Tasks[i], f)
	task := next.Tasks[i]

	if err := e.store.SaveTask(ctx, &task); err != nil {
		return model.Task{}, fmt.Errorf("save task: %w", err)
	}
	e.commit(next, f.schedulingChange())

	e.log(ctx).Debug("task updated", "task_id", id, "rescheduled", f.schedulingChange())
	return task, nil
}

// RemoveTask deletes a task and every dependency that touches it.
func (e *Editor) RemoveTask(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.taskIndex(id) < 0 {
		return notFound(ErrTaskNotFound, id)
	}

	next := e.snap.Clone()
	next.Dependencies = slices.DeleteFunc(next.Dependencies, func(d model.Dependency) bool {
		return d.FromTaskID == id || d.ToTaskID == id
	})

	if err := e.store.DeleteDependenciesForTask(ctx, id); err != nil {
		return fmt.Errorf("delete dependencies: %w", err)
	}
	if err := e.store.DeleteTask(ctx, id); err != nil {
		// The dependency removal is already persisted; mirror it.
		e.commit(next, true)
		return fmt.Errorf("delete task: %w", err)
	}

	next.Tasks = slices.DeleteFunc(next.Tasks, func(t model.Task) bool { return t.ID == id })
	e.commit(next, true)

	e.log(ctx).Debug("task removed", "task_id", id)
	return nil
}

// MoveTasks moves the given tasks, keeping their relative order, to
// targetIndex among the remaining tasks and assigns them to groupID (nil
// removes them from any group). targetIndex is clamped to the valid range
// and sort orders are renumbered from zero.
func (e *Editor) MoveTasks(ctx context.Context, ids []string, targetIndex int, groupID *string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	moving := make(map[string]bool, len(ids))
	for _, id := range ids {
		if e.taskIndex(id) < 0 {
			return notFound(ErrTaskNotFound, id)
		}
		moving[id] = true
	}
	if err := e.checkGroup(groupID); err != nil {
		return err
	}

	next := e.snap.Clone()
	var moved, rest []model.Task
	for _, t := range next.Tasks {
		if moving[t.ID] {
			t.GroupID = nil
			if groupID != nil && *groupID != "" {
				t.GroupID = model.StringPtr(*groupID)
			}
			moved = append(moved, t)
		} else {
			rest = append(rest, t)
		}
	}

	target := min(max(targetIndex, 0), len(rest))
	next.Tasks = slices.Concat(rest[:target], moved, rest[target:])
	for i := range next.Tasks {
		next.Tasks[i].SortOrder = i
	}

	if err := e.store.SaveTasks(ctx, next.Tasks); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	// Task order feeds the scheduler's tie-breaking.
	e.commit(next, true)

	e.log(ctx).Debug("tasks moved", "task_ids", ids, "target", target)
	return nil
}

// --- Dependencies ---

// AddDependency links from → to (from must finish before to starts).
// Self-dependencies, duplicates and edges that would close a cycle are
// rejected without touching the store.
func (e *Editor) AddDependency(ctx context.Context, fromTaskID, toTaskID string) (model.Dependency, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if fromTaskID == toTaskID {
		return model.Dependency{}, ErrSelfDependency
	}
	for _, id := range []string{fromTaskID, toTaskID} {
		if e.taskIndex(id) < 0 {
			return model.Dependency{}, notFound(ErrTaskNotFound, id)
		}
	}
	for _, d := range e.snap.Dependencies {
		if d.FromTaskID == fromTaskID && d.ToTaskID == toTaskID {
			return model.Dependency{}, ErrDuplicateDependency
		}
	}

	dep := model.Dependency{
		ID:         "dep_" + uuid.New().String(),
		FromTaskID: fromTaskID,
		ToTaskID:   toTaskID,
	}
	next := e.snap.Clone()
	next.Dependencies = append(next.Dependencies, dep)

	sched := e.reschedule(next)
	if sched.Err != nil {
		e.log(ctx).Info("dependency rejected", "from", fromTaskID, "to", toTaskID, "reason", "cycle")
		return model.Dependency{}, fmt.Errorf("%w: %w", ErrWouldCycle, sched.Err)
	}

	if err := e.store.SaveDependency(ctx, &dep); err != nil {
		return model.Dependency{}, fmt.Errorf("save dependency: %w", err)
	}
	e.apply(next, sched)

	e.log(ctx).Debug("dependency added", "dependency_id", dep.ID, "from", fromTaskID, "to", toTaskID)
	return dep, nil
}

// RemoveDependency deletes a dependency.
func (e *Editor) RemoveDependency(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := slices.IndexFunc(e.snap.Dependencies, func(d model.Dependency) bool { return d.ID == id })
	if i < 0 {
		return notFound(ErrDependencyNotFound, id)
	}

	if err := e.store.DeleteDependency(ctx, id); err != nil {
		return fmt.Errorf("delete dependency: %w", err)
	}

	next := e.snap.Clone()
	next.Dependencies = slices.Delete(next.Dependencies, i, i+1)
	e.commit(next, true)

	e.log(ctx).Debug("dependency removed", "dependency_id", id)
	return nil
}

// --- Project ---

// UpdateProject applies f to the project record.
func (e *Editor) UpdateProject(ctx context.Context, f ProjectFields) (model.Project, error) {
	if err := f.validate("UpdateProject"); err != nil {
		return model.Project{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.snap.Clone()
	if f.Name != nil {
		next.Project.Name = *f.Name
	}
	if f.Epoch != nil {
		next.Project.Epoch = *f.Epoch
	}

	if err := e.store.SaveProject(ctx, &next.Project); err != nil {
		return model.Project{}, fmt.Errorf("save project: %w", err)
	}
	e.commit(next, false)
	return next.Project, nil
}

// --- Groups ---

// AddGroup creates a group after every existing group.
func (e *Editor) AddGroup(ctx context.Context, f GroupFields) (model.Group, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	maxSort := -1
	for _, g := range e.snap.Groups {
		maxSort = max(maxSort, g.SortOrder)
	}

	group := model.Group{
		ID:        "grp_" + uuid.New().String(),
		Name:      timeline.DefaultGroupName,
		SortOrder: maxSort + 1,
	}
	applyGroupFields(&group, f)

	if err := e.store.SaveGroup(ctx, &group); err != nil {
		return model.Group{}, fmt.Errorf("save group: %w", err)
	}

	next := e.snap.Clone()
	next.Groups = append(next.Groups, group)
	e.commit(next, false)
	return group, nil
}

// UpdateGroup renames or collapses a group.
func (e *Editor) UpdateGroup(ctx context.Context, id string, f GroupFields) (model.Group, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.groupIndex(id)
	if i < 0 {
		return model.Group{}, notFound(ErrGroupNotFound, id)
	}

	next := e.snap.Clone()
	applyGroupFields(&next.Groups[i], f)

	if err := e.store.SaveGroup(ctx, &next.Groups[i]); err != nil {
		return model.Group{}, fmt.Errorf("save group: %w", err)
	}
	e.commit(next, false)
	return next.Groups[i], nil
}

// RemoveGroup deletes a group. Its tasks are kept and ungrouped.
func (e *Editor) RemoveGroup(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.groupIndex(id)
	if i < 0 {
		return notFound(ErrGroupNotFound, id)
	}

	next := e.snap.Clone()
	var ungrouped []model.Task
	for j := range next.Tasks {
		if next.Tasks[j].InGroup(id) {
			next.Tasks[j].GroupID = nil
			ungrouped = append(ungrouped, next.Tasks[j])
		}
	}

	if len(ungrouped) > 0 {
		if err := e.store.SaveTasks(ctx, ungrouped); err != nil {
			return fmt.Errorf("ungroup tasks: %w", err)
		}
	}
	if err := e.store.DeleteGroup(ctx, id); err != nil {
		// Tasks are already ungrouped in the store; mirror that.
		e.commit(next, false)
		return fmt.Errorf("delete group: %w", err)
	}

	next.Groups = slices.Delete(next.Groups, i, i+1)
	e.commit(next, false)

	e.log(ctx).Debug("group removed", "group_id", id, "ungrouped", len(ungrouped))
	return nil
}

// --- Bulk ---

// Replace swaps the whole project for snap (used by import) and reloads it
// from the store. A snapshot containing a cycle is accepted; the schedule
// then reports it.
func (e *Editor) Replace(ctx context.Context, snap *model.Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.ReplaceAll(ctx, snap); err != nil {
		return fmt.Errorf("replace project: %w", err)
	}
	if err := e.hydrateLocked(ctx); err != nil {
		return err
	}
	e.lastSavedAt = e.now()
	return nil
}

// Reset clears the store and reloads, leaving the default project with no
// tasks, dependencies or groups.
func (e *Editor) Reset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.Clear(ctx); err != nil {
		return fmt.Errorf("reset project: %w", err)
	}
	if err := e.hydrateLocked(ctx); err != nil {
		return err
	}
	e.lastSavedAt = e.now()
	e.log(ctx).Info("project reset")
	return nil
}

// ClearDependencies removes every dependency and reschedules. It returns
// the number removed.
func (e *Editor) ClearDependencies(ctx context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := len(e.snap.Dependencies)
	if err := e.store.DeleteAllDependencies(ctx); err != nil {
		return 0, fmt.Errorf("clear dependencies: %w", err)
	}

	next := e.snap.Clone()
	next.Dependencies = []model.Dependency{}
	e.commit(next, true)

	e.log(ctx).Debug("dependencies cleared", "removed", n)
	return n, nil
}

// --- internals ---

// reschedule runs the scheduler over snap.
func (e *Editor) reschedule(snap *model.Snapshot) Schedule {
	starts, err := scheduler.ComputeEffectiveStarts(snap.Tasks, snap.Dependencies)
	if err != nil {
		var cycleErr *scheduler.CycleError
		if errors.As(err, &cycleErr) {
			e.logger.Warn("schedule has a cycle", "task_ids", cycleErr.TaskIDs)
			return Schedule{Starts: map[string]int{}, Err: err, CycleTaskIDs: cycleErr.TaskIDs}
		}
		e.logger.Error("schedule failed", "error", err)
		return Schedule{Starts: map[string]int{}, Err: err}
	}
	return Schedule{Starts: starts}
}

// commit installs next, recomputing the schedule when rescheduling is set.
// Callers hold e.mu.
func (e *Editor) commit(next *model.Snapshot, rescheduling bool) {
	sched := e.schedule
	if rescheduling {
		sched = e.reschedule(next)
	}
	e.apply(next, sched)
}

func (e *Editor) apply(next *model.Snapshot, sched Schedule) {
	e.snap = next
	e.schedule = sched
	e.lastSavedAt = e.now()
}

func (e *Editor) log(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, e.logger)
}

func (e *Editor) taskIndex(id string) int {
	return slices.IndexFunc(e.snap.Tasks, func(t model.Task) bool { return t.ID == id })
}

func (e *Editor) groupIndex(id string) int {
	return slices.IndexFunc(e.snap.Groups, func(g model.Group) bool { return g.ID == id })
}

// checkGroup accepts nil, "" (no group) or the id of an existing group.
func (e *Editor) checkGroup(groupID *string) error {
	if groupID == nil || *groupID == "" {
		return nil
	}
	if e.groupIndex(*groupID) < 0 {
		return notFound(ErrGroupNotFound, *groupID)
	}
	return nil
}

func applyTaskFields(t *model.Task, f TaskFields) {
	if f.Name != nil {
		t.Name = *f.Name
	}
	if f.StartDayIndex != nil {
		t.StartDayIndex = *f.StartDayIndex
	}
	if f.DurationDays != nil {
		t.DurationDays = *f.DurationDays
	}
	if f.Color != nil {
		t.Color = *f.Color
	}
	if f.GroupID != nil {
		t.GroupID = nil
		if *f.GroupID != "" {
			t.GroupID = model.StringPtr(*f.GroupID)
		}
	}
}

func applyGroupFields(g *model.Group, f GroupFields) {
	if f.Name != nil {
		g.Name = *f.Name
	}
	if f.Collapsed != nil {
		g.Collapsed = *f.Collapsed
	}
}
