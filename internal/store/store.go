package store

import (
	"context"

	"github.com/me/planline/pkg/model"
)

// Store defines the persistence layer for planline entities.
//
// Save methods have upsert semantics. Deleting an id that does not exist is
// not an error.
type Store interface {
	// LoadAll returns the full project. Tasks are ordered by sort order,
	// dependencies by insertion. A default project is returned when none
	// has been saved yet.
	LoadAll(ctx context.Context) (*model.Snapshot, error)

	// Tasks
	SaveTask(ctx context.Context, task *model.Task) error
	SaveTasks(ctx context.Context, tasks []model.Task) error
	DeleteTask(ctx context.Context, id string) error

	// Dependencies
	SaveDependency(ctx context.Context, dep *model.Dependency) error
	DeleteDependency(ctx context.Context, id string) error
	DeleteDependenciesForTask(ctx context.Context, taskID string) error
	DeleteAllDependencies(ctx context.Context) error

	// Groups
	SaveGroup(ctx context.Context, group *model.Group) error
	DeleteGroup(ctx context.Context, id string) error

	// Project
	SaveProject(ctx context.Context, project *model.Project) error

	// ReplaceAll clears every table and writes snap in a single transaction.
	ReplaceAll(ctx context.Context, snap *model.Snapshot) error

	// Clear empties every table, project included.
	Clear(ctx context.Context) error

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
