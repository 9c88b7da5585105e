package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/wildeye/camtrap/internal/model"
)

// GetProject loads a project document by id. Returns
// model.ErrNoDocument if the project does not exist.
func (s *Store) GetProject(ctx context.Context, id string) (*model.Project, error) {
	var (
		rev int64
		doc string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT rev, doc FROM projects WHERE id = ?", id).Scan(&rev, &doc)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("project %s: %w", id, model.ErrNoDocument)
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	var p model.Project
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, fmt.Errorf("decode project %s: %w", id, err)
	}
	p.Rev = rev
	return &p, nil
}

// CreateProject inserts a new project document at revision 1.
func (s *Store) CreateProject(ctx context.Context, p *model.Project) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode project %s: %w", p.ID, err)
	}
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO projects (id, rev, doc) VALUES (?, 1, ?)", p.ID, string(doc)); err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	p.Rev = 1
	return nil
}

// SaveProject overwrites a project document, conditional on the
// revision the caller read. A revision mismatch returns
// model.ErrStaleWrite; callers re-read and re-apply.
func (s *Store) SaveProject(ctx context.Context, p *model.Project) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode project %s: %w", p.ID, err)
	}
	n, err := s.execOne(ctx,
		"UPDATE projects SET rev = rev + 1, doc = ? WHERE id = ? AND rev = ?",
		string(doc), p.ID, p.Rev)
	if err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	if n == 0 {
		// Either the document vanished or its revision moved.
		var exists int
		if err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM projects WHERE id = ?", p.ID).Scan(&exists); err != nil {
			return fmt.Errorf("save project: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("project %s: %w", p.ID, model.ErrNoDocument)
		}
		return fmt.Errorf("project %s: %w", p.ID, model.ErrStaleWrite)
	}
	p.Rev++
	return nil
}
