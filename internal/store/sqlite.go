package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/me/planline/internal/timeline"
	"github.com/me/planline/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a Store.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Every connection to ":memory:" is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// --- Load ---

func (s *SQLiteStore) LoadAll(ctx context.Context) (*model.Snapshot, error) {
	s.logger.Debug("sql", "op", "load_all")

	snap := &model.Snapshot{
		Tasks:        []model.Task{},
		Dependencies: []model.Dependency{},
		Groups:       []model.Group{},
	}

	project, err := s.loadProject(ctx)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	snap.Project = project

	if snap.Tasks, err = s.loadTasks(ctx); err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	if snap.Dependencies, err = s.loadDependencies(ctx); err != nil {
		return nil, fmt.Errorf("load dependencies: %w", err)
	}
	if snap.Groups, err = s.loadGroups(ctx); err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}
	return snap, nil
}

func (s *SQLiteStore) loadProject(ctx context.Context) (model.Project, error) {
	var p model.Project
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, epoch FROM project ORDER BY rowid LIMIT 1`,
	).Scan(&p.ID, &p.Name, &p.Epoch)
	if err == sql.ErrNoRows {
		return model.Project{
			ID:    timeline.DefaultProjectID,
			Name:  timeline.DefaultProjectName,
			Epoch: timeline.EpochDate,
		}, nil
	}
	return p, err
}

func (s *SQLiteStore) loadTasks(ctx context.Context) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, start_day_index, duration_days, group_id, color, sort_order
		 FROM tasks ORDER BY sort_order, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		var groupID sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &t.StartDayIndex, &t.DurationDays,
			&groupID, &t.Color, &t.SortOrder); err != nil {
			return nil, err
		}
		if groupID.Valid {
			t.GroupID = &groupID.String
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *SQLiteStore) loadDependencies(ctx context.Context) ([]model.Dependency, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, from_task_id, to_task_id FROM dependencies ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deps := []model.Dependency{}
	for rows.Next() {
		var d model.Dependency
		if err := rows.Scan(&d.ID, &d.FromTaskID, &d.ToTaskID); err != nil {
			return nil, err
		}
		deps = append(deps, d)
	}
	return deps, rows.Err()
}

func (s *SQLiteStore) loadGroups(ctx context.Context) ([]model.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, collapsed, sort_order FROM task_groups ORDER BY sort_order, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := []model.Group{}
	for rows.Next() {
		var g model.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Collapsed, &g.SortOrder); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// --- Tasks ---

func (s *SQLiteStore) SaveTask(ctx context.Context, task *model.Task) error {
	s.logger.Debug("sql", "op", "upsert", "table", "tasks", "id", task.ID)
	return upsertTask(ctx, s.db, task)
}

func (s *SQLiteStore) SaveTasks(ctx context.Context, tasks []model.Task) error {
	s.logger.Debug("sql", "op", "upsert_batch", "table", "tasks", "count", len(tasks))

	return s.inTx(ctx, func(tx *sql.Tx) error {
		for i := range tasks {
			if err := upsertTask(ctx, tx, &tasks[i]); err != nil {
				return fmt.Errorf("task %s: %w", tasks[i].ID, err)
			}
		}
		return nil
	})
}

func upsertTask(ctx context.Context, ex execer, t *model.Task) error {
	// ON CONFLICT keeps the original rowid, and with it the insertion order.
	_, err := ex.ExecContext(ctx,
		`INSERT INTO tasks (id, name, start_day_index, duration_days, group_id, color, sort_order)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, start_day_index=excluded.start_day_index,
		   duration_days=excluded.duration_days, group_id=excluded.group_id,
		   color=excluded.color, sort_order=excluded.sort_order`,
		t.ID, t.Name, t.StartDayIndex, t.DurationDays, nullable(t.GroupID), t.Color, t.SortOrder,
	)
	return err
}

func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) error {
	s.logger.Debug("sql", "op", "delete", "table", "tasks", "id", id)
	_, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	return err
}

// --- Dependencies ---

func (s *SQLiteStore) SaveDependency(ctx context.Context, dep *model.Dependency) error {
	s.logger.Debug("sql", "op", "upsert", "table", "dependencies", "id", dep.ID)
	return upsertDependency(ctx, s.db, dep)
}

func upsertDependency(ctx context.Context, ex execer, d *model.Dependency) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO dependencies (id, from_task_id, to_task_id) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET from_task_id=excluded.from_task_id, to_task_id=excluded.to_task_id`,
		d.ID, d.FromTaskID, d.ToTaskID,
	)
	return err
}

func (s *SQLiteStore) DeleteDependency(ctx context.Context, id string) error {
	s.logger.Debug("sql", "op", "delete", "table", "dependencies", "id", id)
	_, err := s.db.ExecContext(ctx, `DELETE FROM dependencies WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) DeleteDependenciesForTask(ctx context.Context, taskID string) error {
	s.logger.Debug("sql", "op", "delete_for_task", "table", "dependencies", "task_id", taskID)
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM dependencies WHERE from_task_id = ? OR to_task_id = ?`, taskID, taskID)
	return err
}

func (s *SQLiteStore) DeleteAllDependencies(ctx context.Context) error {
	s.logger.Debug("sql", "op", "delete_all", "table", "dependencies")
	_, err := s.db.ExecContext(ctx, `DELETE FROM dependencies`)
	return err
}

// --- Groups ---

func (s *SQLiteStore) SaveGroup(ctx context.Context, group *model.Group) error {
	s.logger.Debug("sql", "op", "upsert", "table", "task_groups", "id", group.ID)
	return upsertGroup(ctx, s.db, group)
}

func upsertGroup(ctx context.Context, ex execer, g *model.Group) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO task_groups (id, name, collapsed, sort_order) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name, collapsed=excluded.collapsed, sort_order=excluded.sort_order`,
		g.ID, g.Name, g.Collapsed, g.SortOrder,
	)
	return err
}

func (s *SQLiteStore) DeleteGroup(ctx context.Context, id string) error {
	s.logger.Debug("sql", "op", "delete", "table", "task_groups", "id", id)
	_, err := s.db.ExecContext(ctx, `DELETE FROM task_groups WHERE id = ?`, id)
	return err
}

// --- Project ---

func (s *SQLiteStore) SaveProject(ctx context.Context, project *model.Project) error {
	s.logger.Debug("sql", "op", "upsert", "table", "project", "id", project.ID)
	return upsertProject(ctx, s.db, project)
}

func upsertProject(ctx context.Context, ex execer, p *model.Project) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO project (id, name, epoch) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name, epoch=excluded.epoch`,
		p.ID, p.Name, p.Epoch,
	)
	return err
}

// --- Bulk ---

func (s *SQLiteStore) ReplaceAll(ctx context.Context, snap *model.Snapshot) error {
	s.logger.Debug("sql", "op", "replace_all",
		"tasks", len(snap.Tasks), "dependencies", len(snap.Dependencies), "groups", len(snap.Groups))

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := clearTables(ctx, tx); err != nil {
			return err
		}
		if err := upsertProject(ctx, tx, &snap.Project); err != nil {
			return fmt.Errorf("project: %w", err)
		}
		for i := range snap.Groups {
			if err := upsertGroup(ctx, tx, &snap.Groups[i]); err != nil {
				return fmt.Errorf("group %s: %w", snap.Groups[i].ID, err)
			}
		}
		for i := range snap.Tasks {
			if err := upsertTask(ctx, tx, &snap.Tasks[i]); err != nil {
				return fmt.Errorf("task %s: %w", snap.Tasks[i].ID, err)
			}
		}
		for i := range snap.Dependencies {
			if err := upsertDependency(ctx, tx, &snap.Dependencies[i]); err != nil {
				return fmt.Errorf("dependency %s: %w", snap.Dependencies[i].ID, err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.logger.Debug("sql", "op", "clear")
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return clearTables(ctx, tx)
	})
}

func clearTables(ctx context.Context, ex execer) error {
	for _, table := range []string{"tasks", "dependencies", "task_groups", "project"} {
		if _, err := ex.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// inTx runs fn in a transaction, rolling back if fn fails.
func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
