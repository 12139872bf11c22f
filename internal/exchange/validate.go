package exchange

import (
	"errors"
	"fmt"

	goerrors "github.com/TudorHulban/go-errors"
	"github.com/asaskevich/govalidator"

	"github.com/me/planline/internal/timeline"
	"github.com/me/planline/pkg/model"
)

// ErrInvalidDocument wraps every problem found in an imported document.
var ErrInvalidDocument = errors.New("invalid project document")

// document mirrors Envelope with pointers where a missing field must be
// told apart from a zero value.
type document struct {
	Version      *int            `json:"version" yaml:"version"`
	Project      *docProject     `json:"project" yaml:"project"`
	Tasks        []docTask       `json:"tasks" yaml:"tasks"`
	Dependencies []docDependency `json:"dependencies" yaml:"dependencies"`
	Groups       []docGroup      `json:"groups" yaml:"groups"`
}

type docProject struct {
	ID    string `json:"id" yaml:"id" valid:"required"`
	Name  string `json:"name" yaml:"name" valid:"required"`
	Epoch string `json:"epoch" yaml:"epoch"`
}

type docTask struct {
	ID            string  `json:"id" yaml:"id" valid:"required"`
	Name          string  `json:"name" yaml:"name"`
	StartDayIndex *int    `json:"startDayIndex" yaml:"startDayIndex"`
	DurationDays  *int    `json:"durationDays" yaml:"durationDays"`
	GroupID       *string `json:"groupId" yaml:"groupId"`
	Color         string  `json:"color" yaml:"color" valid:"hexcolor,optional"`
	SortOrder     *int    `json:"sortOrder" yaml:"sortOrder"`
}

type docDependency struct {
	ID         string `json:"id" yaml:"id" valid:"required"`
	FromTaskID string `json:"fromTaskId" yaml:"fromTaskId" valid:"required"`
	ToTaskID   string `json:"toTaskId" yaml:"toTaskId" valid:"required"`
}

type docGroup struct {
	ID        string `json:"id" yaml:"id" valid:"required"`
	Name      string `json:"name" yaml:"name"`
	Collapsed bool   `json:"collapsed" yaml:"collapsed"`
	SortOrder int    `json:"sortOrder" yaml:"sortOrder"`
}

// Validate checks an envelope the same way Decode checks a document.
func Validate(env *Envelope) error {
	return fromEnvelope(env).validate()
}

func invalidf(issue error, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %w", ErrInvalidDocument, fmt.Sprintf(format, args...), issue)
}

func (d *document) validate() error {
	if d.Version == nil {
		return invalidf(goerrors.ErrNilInput{InputName: "version"}, "version is required")
	}
	if *d.Version != Version {
		return invalidf(goerrors.ErrServiceValidation{
			ServiceName: "exchange",
			Caller:      "Validate",
			Issue:       fmt.Errorf("got version %d, want %d", *d.Version, Version),
		}, "unsupported version %d", *d.Version)
	}

	if d.Project == nil {
		return invalidf(goerrors.ErrNilInput{InputName: "project"}, "project is required")
	}
	if _, err := govalidator.ValidateStruct(d.Project); err != nil {
		return invalidf(err, "project")
	}
	if d.Project.Epoch != "" && !govalidator.IsTime(d.Project.Epoch, "2006-01-02") {
		return invalidf(goerrors.ErrInvalidInput{
			Caller:     "Validate",
			InputName:  "epoch",
			InputValue: d.Project.Epoch,
			Issue:      errors.New("expected a YYYY-MM-DD date"),
		}, "project epoch %q is not a date", d.Project.Epoch)
	}

	groups := make(map[string]bool, len(d.Groups))
	for i := range d.Groups {
		g := &d.Groups[i]
		if _, err := govalidator.ValidateStruct(g); err != nil {
			return invalidf(err, "groups[%d]", i)
		}
		if groups[g.ID] {
			return invalidf(errors.New("duplicate id"), "group %s appears twice", g.ID)
		}
		groups[g.ID] = true
	}

	tasks := make(map[string]bool, len(d.Tasks))
	for i := range d.Tasks {
		if err := d.Tasks[i].validate(i, groups); err != nil {
			return err
		}
		if tasks[d.Tasks[i].ID] {
			return invalidf(errors.New("duplicate id"), "task %s appears twice", d.Tasks[i].ID)
		}
		tasks[d.Tasks[i].ID] = true
	}

	deps := make(map[string]bool, len(d.Dependencies))
	for i := range d.Dependencies {
		dep := &d.Dependencies[i]
		if _, err := govalidator.ValidateStruct(dep); err != nil {
			return invalidf(err, "dependencies[%d]", i)
		}
		if deps[dep.ID] {
			return invalidf(errors.New("duplicate id"), "dependency %s appears twice", dep.ID)
		}
		deps[dep.ID] = true

		for _, end := range []struct{ name, id string }{
			{"fromTaskId", dep.FromTaskID},
			{"toTaskId", dep.ToTaskID},
		} {
			if !tasks[end.id] {
				return invalidf(goerrors.ErrInvalidInput{
					Caller:     "Validate",
					InputName:  end.name,
					InputValue: end.id,
					Issue:      errors.New("unknown task id"),
				}, "dependency %s references non-existent task %s", dep.ID, end.id)
			}
		}
	}

	return nil
}

func (t *docTask) validate(i int, groups map[string]bool) error {
	if _, err := govalidator.ValidateStruct(t); err != nil {
		return invalidf(err, "tasks[%d]", i)
	}
	if t.StartDayIndex == nil {
		return invalidf(goerrors.ErrNilInput{InputName: "startDayIndex"},
			"task %s: startDayIndex is required", t.ID)
	}
	if t.DurationDays == nil {
		return invalidf(goerrors.ErrNilInput{InputName: "durationDays"},
			"task %s: durationDays is required", t.ID)
	}
	if *t.DurationDays < 1 {
		return invalidf(goerrors.ErrNegativeInput{InputName: "durationDays"},
			"task %s: durationDays must be positive, got %d", t.ID, *t.DurationDays)
	}
	if t.GroupID != nil && *t.GroupID != "" && !groups[*t.GroupID] {
		return invalidf(goerrors.ErrInvalidInput{
			Caller:     "Validate",
			InputName:  "groupId",
			InputValue: *t.GroupID,
			Issue:      errors.New("unknown group id"),
		}, "task %s references non-existent group %s", t.ID, *t.GroupID)
	}
	return nil
}

// envelope converts a validated document. Missing colours, sort orders and
// epochs are filled with defaults.
func (d *document) envelope() *Envelope {
	env := &Envelope{
		Version: *d.Version,
		Project: model.Project{
			ID:    d.Project.ID,
			Name:  d.Project.Name,
			Epoch: d.Project.Epoch,
		},
		Tasks:        make([]model.Task, 0, len(d.Tasks)),
		Dependencies: make([]model.Dependency, 0, len(d.Dependencies)),
		Groups:       make([]model.Group, 0, len(d.Groups)),
	}
	if env.Project.Epoch == "" {
		env.Project.Epoch = timeline.EpochDate
	}

	for i, t := range d.Tasks {
		task := model.Task{
			ID:            t.ID,
			Name:          t.Name,
			StartDayIndex: *t.StartDayIndex,
			DurationDays:  *t.DurationDays,
			Color:         t.Color,
			SortOrder:     i,
		}
		if t.GroupID != nil && *t.GroupID != "" {
			task.GroupID = model.StringPtr(*t.GroupID)
		}
		if t.SortOrder != nil {
			task.SortOrder = *t.SortOrder
		}
		if task.Color == "" {
			task.Color = timeline.ColorFor(i)
		}
		env.Tasks = append(env.Tasks, task)
	}
	for _, dep := range d.Dependencies {
		env.Dependencies = append(env.Dependencies, model.Dependency(dep))
	}
	for _, g := range d.Groups {
		env.Groups = append(env.Groups, model.Group(g))
	}
	return env
}

func fromEnvelope(env *Envelope) *document {
	d := &document{
		Version: &env.Version,
		Project: &docProject{
			ID:    env.Project.ID,
			Name:  env.Project.Name,
			Epoch: env.Project.Epoch,
		},
	}
	for _, t := range env.Tasks {
		d.Tasks = append(d.Tasks, docTask{
			ID:            t.ID,
			Name:          t.Name,
			StartDayIndex: &t.StartDayIndex,
			DurationDays:  &t.DurationDays,
			GroupID:       t.GroupID,
			Color:         t.Color,
			SortOrder:     &t.SortOrder,
		})
	}
	for _, dep := range env.Dependencies {
		d.Dependencies = append(d.Dependencies, docDependency(dep))
	}
	for _, g := range env.Groups {
		d.Groups = append(d.Groups, docGroup(g))
	}
	return d
}
