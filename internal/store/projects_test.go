package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildeye/camtrap/internal/model"
)

func TestProjectRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := &model.Project{
		ID:       "sci_0001",
		Name:     "Sonoran Survey",
		Timezone: "America/Phoenix",
		CameraConfigs: []model.CameraConfig{
			{ID: "CT-7", Deployments: []model.Deployment{
				{ID: "d-1", Name: model.DefaultDeploymentName, Timezone: "America/Phoenix"},
			}},
		},
	}
	require.NoError(t, s.CreateProject(ctx, p))
	assert.Equal(t, int64(1), p.Rev)

	got, err := s.GetProject(ctx, "sci_0001")
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.CameraConfigs, got.CameraConfigs)
	assert.Equal(t, int64(1), got.Rev)
}

func TestGetProject_Missing(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetProject(context.Background(), "ghost")
	assert.ErrorIs(t, err, model.ErrNoDocument)
}

func TestSaveProject_BumpsRevision(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := &model.Project{ID: "sci_0001", Timezone: "UTC"}
	require.NoError(t, s.CreateProject(ctx, p))

	p.Name = "renamed"
	require.NoError(t, s.SaveProject(ctx, p))
	assert.Equal(t, int64(2), p.Rev)

	got, err := s.GetProject(ctx, "sci_0001")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, int64(2), got.Rev)
}

func TestSaveProject_StaleRevision(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := &model.Project{ID: "sci_0001", Timezone: "UTC"}
	require.NoError(t, s.CreateProject(ctx, p))

	// Two readers load rev 1; the second save loses.
	first, err := s.GetProject(ctx, "sci_0001")
	require.NoError(t, err)
	second, err := s.GetProject(ctx, "sci_0001")
	require.NoError(t, err)

	first.Name = "winner"
	require.NoError(t, s.SaveProject(ctx, first))

	second.Name = "loser"
	err = s.SaveProject(ctx, second)
	assert.ErrorIs(t, err, model.ErrStaleWrite)

	got, err := s.GetProject(ctx, "sci_0001")
	require.NoError(t, err)
	assert.Equal(t, "winner", got.Name)
}

func TestSaveProject_Missing(t *testing.T) {
	s := openTestStore(t)

	err := s.SaveProject(context.Background(), &model.Project{ID: "ghost", Rev: 1})
	assert.ErrorIs(t, err, model.ErrNoDocument)
}

func TestWirelessCameraRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c := &model.WirelessCamera{
		ID:   "CT-7",
		Make: "RidgeTec",
		Registrations: []model.ProjectRegistration{
			{ProjectID: "sci_0001", Active: true},
			{ProjectID: model.DefaultProjectID, Active: false},
		},
	}
	require.NoError(t, s.CreateWirelessCamera(ctx, c))

	got, err := s.GetWirelessCamera(ctx, "CT-7")
	require.NoError(t, err)
	assert.Equal(t, c.Registrations, got.Registrations)

	got.Registrations[0].Active = false
	got.Registrations[1].Active = true
	require.NoError(t, s.SaveWirelessCamera(ctx, got))

	again, err := s.GetWirelessCamera(ctx, "CT-7")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultProjectID, again.ActiveRegistration().ProjectID)
}

func TestSaveWirelessCamera_StaleRevision(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c := &model.WirelessCamera{ID: "CT-7"}
	require.NoError(t, s.CreateWirelessCamera(ctx, c))

	stale := &model.WirelessCamera{ID: "CT-7", Rev: 99}
	assert.ErrorIs(t, s.SaveWirelessCamera(ctx, stale), model.ErrStaleWrite)
}

func TestDeleteWirelessCamera(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateWirelessCamera(ctx, &model.WirelessCamera{ID: "CT-7"}))
	require.NoError(t, s.DeleteWirelessCamera(ctx, "CT-7"))

	_, err := s.GetWirelessCamera(ctx, "CT-7")
	assert.ErrorIs(t, err, model.ErrNoDocument)

	// Deleting a missing document is a no-op.
	require.NoError(t, s.DeleteWirelessCamera(ctx, "CT-7"))
}
