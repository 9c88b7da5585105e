package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/wildeye/camtrap/internal/model"
)

// InsertImage adds one image record. Ingest-time assignment (picking
// the image's deployment) happens upstream; the store persists what it
// is given.
func (s *Store) InsertImage(ctx context.Context, img *model.Image) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO images (id, project_id, camera_id, deployment_id, taken_at, timezone, date_added)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		img.ID,
		img.ProjectID,
		img.CameraID,
		img.DeploymentID,
		img.DateTimeOriginal.Unix(),
		img.Timezone,
		img.DateAdded.Unix(),
	); err != nil {
		return fmt.Errorf("insert image: %w", err)
	}
	return nil
}

// FindImages streams images matching the selector, ordered by capture
// instant then id for deterministic iteration. From/To bound taken_at
// as a half-open interval [From, To).
func (s *Store) FindImages(ctx context.Context, sel model.ImageSelector) (model.ImageCursor, error) {
	query := `
		SELECT id, project_id, camera_id, deployment_id, taken_at, timezone, date_added
		FROM images
		WHERE project_id = ? AND camera_id = ?`
	args := []any{sel.ProjectID, sel.CameraID}
	if sel.From != nil {
		query += " AND taken_at >= ?"
		args = append(args, sel.From.Unix())
	}
	if sel.To != nil {
		query += " AND taken_at < ?"
		args = append(args, sel.To.Unix())
	}
	query += " ORDER BY taken_at ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query images: %w", err)
	}
	return &imageRows{rows: rows}, nil
}

// RelabelImages reassigns every image of one camera to a new camera id
// and returns the ids it touched, so the change can be reversed
// precisely even after the target camera gains images of its own.
func (s *Store) RelabelImages(ctx context.Context, projectID, oldCameraID, newCameraID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM images WHERE project_id = ? AND camera_id = ? ORDER BY id ASC",
		projectID, oldCameraID)
	if err != nil {
		return nil, fmt.Errorf("select images to relabel: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan image id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate image ids: %w", err)
	}
	rows.Close()

	if len(ids) == 0 {
		return []string{}, nil
	}

	if _, err := s.db.ExecContext(ctx,
		"UPDATE images SET camera_id = ? WHERE project_id = ? AND camera_id = ?",
		newCameraID, projectID, oldCameraID); err != nil {
		return nil, fmt.Errorf("relabel images: %w", err)
	}
	return ids, nil
}

// BulkWriteImages applies staged per-image field updates as one batch
// and returns the number of updates applied. The statements run inside
// one sqlite transaction, but callers must treat each operation as
// individually atomic only: when the image collection lives behind a
// remote document store there is no batch guarantee.
func (s *Store) BulkWriteImages(ctx context.Context, updates []model.ImageUpdate) (int64, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin bulk write: %w", err)
	}
	defer tx.Rollback()

	var applied int64
	for _, upd := range updates {
		query, args, ok := buildImageUpdate(upd)
		if !ok {
			continue
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("bulk write image %s: %w", upd.ImageID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("bulk write image %s: %w", upd.ImageID, err)
		}
		applied += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit bulk write: %w", err)
	}
	return applied, nil
}

func buildImageUpdate(upd model.ImageUpdate) (string, []any, bool) {
	var (
		sets []string
		args []any
	)
	if upd.CameraID != nil {
		sets = append(sets, "camera_id = ?")
		args = append(args, *upd.CameraID)
	}
	if upd.DeploymentID != nil {
		sets = append(sets, "deployment_id = ?")
		args = append(args, *upd.DeploymentID)
	}
	if upd.Timezone != nil {
		sets = append(sets, "timezone = ?")
		args = append(args, *upd.Timezone)
	}
	if upd.DateTimeOriginal != nil {
		sets = append(sets, "taken_at = ?")
		args = append(args, upd.DateTimeOriginal.Unix())
	}
	if len(sets) == 0 {
		return "", nil, false
	}
	args = append(args, upd.ImageID)
	return "UPDATE images SET " + strings.Join(sets, ", ") + " WHERE id = ?", args, true
}

// imageRows adapts sql.Rows to the model.ImageCursor contract.
type imageRows struct {
	rows *sql.Rows
	cur  model.Image
	err  error
}

func (c *imageRows) Next() bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}
	var takenAt, dateAdded int64
	if err := c.rows.Scan(
		&c.cur.ID,
		&c.cur.ProjectID,
		&c.cur.CameraID,
		&c.cur.DeploymentID,
		&takenAt,
		&c.cur.Timezone,
		&dateAdded,
	); err != nil {
		c.err = fmt.Errorf("scan image: %w", err)
		return false
	}
	c.cur.DateTimeOriginal = time.Unix(takenAt, 0).UTC()
	c.cur.DateAdded = time.Unix(dateAdded, 0).UTC()
	return true
}

func (c *imageRows) Image() model.Image {
	return c.cur
}

func (c *imageRows) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.rows.Err()
}

func (c *imageRows) Close() error {
	return c.rows.Close()
}
