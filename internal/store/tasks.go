package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wildeye/camtrap/internal/model"
)

// CreateTask inserts a new task record.
func (s *Store) CreateTask(ctx context.Context, t *model.Task) error {
	config, err := json.Marshal(t.Config)
	if err != nil {
		return fmt.Errorf("encode task config: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, type, project_id, user, status, config, output, created, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID,
		t.Type,
		t.ProjectID,
		t.User,
		string(t.Status),
		string(config),
		t.Output,
		t.Created.Unix(),
		t.Updated.Unix(),
	); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// GetTask loads a task record by id.
func (s *Store) GetTask(ctx context.Context, id string) (*model.Task, error) {
	var (
		t                model.Task
		status, config   string
		created, updated int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, type, project_id, user, status, config, output, created, updated
		FROM tasks WHERE id = ?
	`, id).Scan(&t.ID, &t.Type, &t.ProjectID, &t.User, &status, &config, &t.Output, &created, &updated)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task %s: %w", id, model.ErrNoDocument)
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if err := json.Unmarshal([]byte(config), &t.Config); err != nil {
		return nil, fmt.Errorf("decode task config: %w", err)
	}
	t.Status = model.TaskStatus(status)
	t.Created = time.Unix(created, 0).UTC()
	t.Updated = time.Unix(updated, 0).UTC()
	return &t, nil
}

// SaveTask persists a task's status, output, and updated stamp.
func (s *Store) SaveTask(ctx context.Context, t *model.Task) error {
	n, err := s.execOne(ctx,
		"UPDATE tasks SET status = ?, output = ?, updated = ? WHERE id = ?",
		string(t.Status), t.Output, t.Updated.Unix(), t.ID)
	if err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("task %s: %w", t.ID, model.ErrNoDocument)
	}
	return nil
}
