package model

// Task is a bar on the timeline. StartDayIndex is the authored start, an
// offset in days from the project epoch; the effective start is computed
// by the scheduler and never stored.
type Task struct {
	ID            string  `json:"id" yaml:"id"`
	Name          string  `json:"name" yaml:"name"`
	StartDayIndex int     `json:"startDayIndex" yaml:"startDayIndex"`
	DurationDays  int     `json:"durationDays" yaml:"durationDays"`
	GroupID       *string `json:"groupId,omitempty" yaml:"groupId,omitempty"`
	Color         string  `json:"color" yaml:"color"`
	SortOrder     int     `json:"sortOrder" yaml:"sortOrder"`
}

// InGroup reports whether the task belongs to the group with the given id.
func (t Task) InGroup(groupID string) bool {
	return t.GroupID != nil && *t.GroupID == groupID
}

// Dependency is a Finish-to-Start link: FromTaskID must finish before
// ToTaskID can start.
type Dependency struct {
	ID         string `json:"id" yaml:"id"`
	FromTaskID string `json:"fromTaskId" yaml:"fromTaskId"`
	ToTaskID   string `json:"toTaskId" yaml:"toTaskId"`
}

// Group is a collapsible set of tasks in the sidebar.
type Group struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Collapsed bool   `json:"collapsed" yaml:"collapsed"`
	SortOrder int    `json:"sortOrder" yaml:"sortOrder"`
}

// Project is the single project record.
type Project struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Epoch string `json:"epoch" yaml:"epoch"`
}

// Snapshot is the full persisted state of a project.
type Snapshot struct {
	Project      Project      `json:"project" yaml:"project"`
	Tasks        []Task       `json:"tasks" yaml:"tasks"`
	Dependencies []Dependency `json:"dependencies" yaml:"dependencies"`
	Groups       []Group      `json:"groups" yaml:"groups"`
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Project:      s.Project,
		Tasks:        make([]Task, len(s.Tasks)),
		Dependencies: make([]Dependency, len(s.Dependencies)),
		Groups:       make([]Group, len(s.Groups)),
	}
	for i, t := range s.Tasks {
		if t.GroupID != nil {
			g := *t.GroupID
			t.GroupID = &g
		}
		out.Tasks[i] = t
	}
	copy(out.Dependencies, s.Dependencies)
	copy(out.Groups, s.Groups)
	return out
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
