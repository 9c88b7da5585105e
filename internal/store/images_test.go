package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildeye/camtrap/internal/model"
)

func insertImage(t *testing.T, s *Store, id, cameraID string, takenAt time.Time) {
	t.Helper()
	require.NoError(t, s.InsertImage(context.Background(), &model.Image{
		ID:               id,
		ProjectID:        "sci_0001",
		CameraID:         cameraID,
		DeploymentID:     "d-default",
		DateTimeOriginal: takenAt,
		Timezone:         "UTC",
		DateAdded:        takenAt,
	}))
}

func collect(t *testing.T, cur model.ImageCursor) []model.Image {
	t.Helper()
	defer cur.Close()
	var out []model.Image
	for cur.Next() {
		out = append(out, cur.Image())
	}
	require.NoError(t, cur.Err())
	return out
}

func TestFindImages_HalfOpenInterval(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	insertImage(t, s, "img-1", "CT-7", utc(2023, 1, 1, 0))
	insertImage(t, s, "img-2", "CT-7", utc(2023, 3, 15, 12))
	insertImage(t, s, "img-3", "CT-7", utc(2023, 6, 1, 0))
	insertImage(t, s, "img-4", "CT-9", utc(2023, 3, 15, 12))

	from := utc(2023, 1, 1, 0)
	to := utc(2023, 6, 1, 0)
	cur, err := s.FindImages(ctx, model.ImageSelector{
		ProjectID: "sci_0001", CameraID: "CT-7", From: &from, To: &to,
	})
	require.NoError(t, err)

	got := collect(t, cur)
	require.Len(t, got, 2, "From is inclusive, To exclusive, other cameras excluded")
	assert.Equal(t, "img-1", got[0].ID)
	assert.Equal(t, "img-2", got[1].ID)
}

func TestFindImages_UnboundedAndOrdered(t *testing.T) {
	s := openTestStore(t)

	insertImage(t, s, "img-b", "CT-7", utc(2023, 6, 1, 0))
	insertImage(t, s, "img-a", "CT-7", utc(2023, 1, 1, 0))
	insertImage(t, s, "img-c", "CT-7", utc(2023, 1, 1, 0))

	cur, err := s.FindImages(context.Background(), model.ImageSelector{
		ProjectID: "sci_0001", CameraID: "CT-7",
	})
	require.NoError(t, err)

	got := collect(t, cur)
	require.Len(t, got, 3)
	// taken_at ascending, id breaking the tie.
	assert.Equal(t, "img-a", got[0].ID)
	assert.Equal(t, "img-c", got[1].ID)
	assert.Equal(t, "img-b", got[2].ID)
}

func TestRelabelImages(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	insertImage(t, s, "img-2", "CT-7", utc(2023, 1, 2, 0))
	insertImage(t, s, "img-1", "CT-7", utc(2023, 1, 1, 0))
	insertImage(t, s, "img-3", "CT-9", utc(2023, 1, 3, 0))

	ids, err := s.RelabelImages(ctx, "sci_0001", "CT-7", "CT-9")
	require.NoError(t, err)
	assert.Equal(t, []string{"img-1", "img-2"}, ids)

	cur, err := s.FindImages(ctx, model.ImageSelector{ProjectID: "sci_0001", CameraID: "CT-9"})
	require.NoError(t, err)
	assert.Len(t, collect(t, cur), 3)

	cur, err = s.FindImages(ctx, model.ImageSelector{ProjectID: "sci_0001", CameraID: "CT-7"})
	require.NoError(t, err)
	assert.Empty(t, collect(t, cur))
}

func TestRelabelImages_NoMatches(t *testing.T) {
	s := openTestStore(t)

	ids, err := s.RelabelImages(context.Background(), "sci_0001", "CT-404", "CT-9")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestBulkWriteImages(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	insertImage(t, s, "img-1", "CT-7", utc(2023, 1, 1, 0))
	insertImage(t, s, "img-2", "CT-7", utc(2023, 2, 1, 0))

	dep := "d-a"
	tz := "America/Los_Angeles"
	shifted := time.Date(2023, 1, 1, 0, 0, 0, 0, time.FixedZone("PST", -8*3600))
	n, err := s.BulkWriteImages(ctx, []model.ImageUpdate{
		{ImageID: "img-1", DeploymentID: &dep, Timezone: &tz, DateTimeOriginal: &shifted},
		{ImageID: "img-2", DeploymentID: &dep},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	cur, err := s.FindImages(ctx, model.ImageSelector{ProjectID: "sci_0001", CameraID: "CT-7"})
	require.NoError(t, err)
	got := collect(t, cur)
	require.Len(t, got, 2)

	assert.Equal(t, "d-a", got[0].DeploymentID)
	assert.Equal(t, "America/Los_Angeles", got[0].Timezone)
	assert.True(t, got[0].DateTimeOriginal.Equal(shifted), "the instant follows the staged shift")
	assert.Equal(t, "UTC", got[1].Timezone, "untouched fields keep their values")
}

func TestBulkWriteImages_EmptyBatchAndEmptyUpdate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	n, err := s.BulkWriteImages(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	insertImage(t, s, "img-1", "CT-7", utc(2023, 1, 1, 0))
	n, err = s.BulkWriteImages(ctx, []model.ImageUpdate{{ImageID: "img-1"}})
	require.NoError(t, err)
	assert.Zero(t, n, "an update staging no fields is skipped")
}

func TestBulkWriteImages_UnknownImageCountsZero(t *testing.T) {
	s := openTestStore(t)

	dep := "d-a"
	n, err := s.BulkWriteImages(context.Background(), []model.ImageUpdate{
		{ImageID: "ghost", DeploymentID: &dep},
	})
	require.NoError(t, err)
	assert.Zero(t, n)
}
