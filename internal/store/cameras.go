package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/wildeye/camtrap/internal/model"
)

// GetWirelessCamera loads a wireless camera identity document.
func (s *Store) GetWirelessCamera(ctx context.Context, id string) (*model.WirelessCamera, error) {
	var (
		rev int64
		doc string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT rev, doc FROM wireless_cameras WHERE id = ?", id).Scan(&rev, &doc)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("wireless camera %s: %w", id, model.ErrNoDocument)
	}
	if err != nil {
		return nil, fmt.Errorf("get wireless camera: %w", err)
	}

	var c model.WirelessCamera
	if err := json.Unmarshal([]byte(doc), &c); err != nil {
		return nil, fmt.Errorf("decode wireless camera %s: %w", id, err)
	}
	c.Rev = rev
	return &c, nil
}

// CreateWirelessCamera inserts a new identity document at revision 1.
func (s *Store) CreateWirelessCamera(ctx context.Context, c *model.WirelessCamera) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode wireless camera %s: %w", c.ID, err)
	}
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO wireless_cameras (id, rev, doc) VALUES (?, 1, ?)", c.ID, string(doc)); err != nil {
		return fmt.Errorf("create wireless camera: %w", err)
	}
	c.Rev = 1
	return nil
}

// SaveWirelessCamera overwrites an identity document, conditional on
// the revision the caller read.
func (s *Store) SaveWirelessCamera(ctx context.Context, c *model.WirelessCamera) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode wireless camera %s: %w", c.ID, err)
	}
	n, err := s.execOne(ctx,
		"UPDATE wireless_cameras SET rev = rev + 1, doc = ? WHERE id = ? AND rev = ?",
		string(doc), c.ID, c.Rev)
	if err != nil {
		return fmt.Errorf("save wireless camera: %w", err)
	}
	if n == 0 {
		var exists int
		if err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM wireless_cameras WHERE id = ?", c.ID).Scan(&exists); err != nil {
			return fmt.Errorf("save wireless camera: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("wireless camera %s: %w", c.ID, model.ErrNoDocument)
		}
		return fmt.Errorf("wireless camera %s: %w", c.ID, model.ErrStaleWrite)
	}
	c.Rev++
	return nil
}

// DeleteWirelessCamera removes an identity document. Used only by
// compensation; registrations are otherwise deactivated, never deleted.
func (s *Store) DeleteWirelessCamera(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM wireless_cameras WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete wireless camera: %w", err)
	}
	return nil
}
