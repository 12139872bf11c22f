package store

import (
	"context"
	"database/sql"
)

// schema contains the DDL for all planline tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS project (
		id    TEXT PRIMARY KEY,
		name  TEXT NOT NULL,
		epoch TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS task_groups (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		collapsed  INTEGER NOT NULL DEFAULT 0,
		sort_order INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id              TEXT PRIMARY KEY,
		name            TEXT NOT NULL,
		start_day_index INTEGER NOT NULL,
		duration_days   INTEGER NOT NULL CHECK (duration_days >= 1),
		group_id        TEXT,
		color           TEXT NOT NULL DEFAULT '',
		sort_order      INTEGER NOT NULL DEFAULT 0
	)`,

	// No foreign keys: the editor tolerates dangling dependency endpoints
	// while a multi-step edit is in flight.
	`CREATE TABLE IF NOT EXISTS dependencies (
		id           TEXT PRIMARY KEY,
		from_task_id TEXT NOT NULL,
		to_task_id   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tasks_group_id ON tasks(group_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_sort_order ON tasks(sort_order)`,
	`CREATE INDEX IF NOT EXISTS idx_task_groups_sort_order ON task_groups(sort_order)`,
	`CREATE INDEX IF NOT EXISTS idx_dependencies_from ON dependencies(from_task_id)`,
	`CREATE INDEX IF NOT EXISTS idx_dependencies_to ON dependencies(to_task_id)`,
}

// migrate executes all schema DDL statements.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
