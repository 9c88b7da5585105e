package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildeye/camtrap/internal/model"
)

func TestTaskRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	task := &model.Task{
		ID:        "t-1",
		Type:      "UpdateSerialNumber",
		ProjectID: "sci_0001",
		User:      "ops@example.org",
		Status:    model.TaskSubmitted,
		Config:    map[string]any{"CameraID": "CT-7", "NewID": "CT-9"},
		Created:   utc(2024, 5, 1, 12),
		Updated:   utc(2024, 5, 1, 12),
	}
	require.NoError(t, s.CreateTask(ctx, task))

	got, err := s.GetTask(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, task.Type, got.Type)
	assert.Equal(t, task.Config, got.Config)
	assert.Equal(t, model.TaskSubmitted, got.Status)
	assert.True(t, got.Created.Equal(task.Created))
}

func TestGetTask_Missing(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetTask(context.Background(), "ghost")
	assert.ErrorIs(t, err, model.ErrNoDocument)
}

func TestSaveTask_UpdatesStatusAndOutput(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	task := &model.Task{
		ID:      "t-1",
		Type:    "CreateDeployment",
		Status:  model.TaskSubmitted,
		Created: utc(2024, 5, 1, 12),
		Updated: utc(2024, 5, 1, 12),
	}
	require.NoError(t, s.CreateTask(ctx, task))

	task.Status = model.TaskComplete
	task.Output = `{"cameraId":"CT-7"}`
	task.Updated = utc(2024, 5, 1, 13)
	require.NoError(t, s.SaveTask(ctx, task))

	got, err := s.GetTask(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, model.TaskComplete, got.Status)
	assert.Equal(t, task.Output, got.Output)
	assert.True(t, got.Updated.Equal(task.Updated))
}

func TestSaveTask_Missing(t *testing.T) {
	s := openTestStore(t)

	err := s.SaveTask(context.Background(), &model.Task{ID: "ghost", Updated: utc(2024, 5, 1, 12)})
	assert.ErrorIs(t, err, model.ErrNoDocument)
}
