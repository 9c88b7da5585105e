package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildeye/camtrap/internal/model"
	"github.com/wildeye/camtrap/internal/testutil"
)

func TestRegisterCamera_FirstSight(t *testing.T) {
	ms := testutil.NewMemStore()
	svc := newTestService(ms)
	seedProject(t, ms, &model.Project{ID: "sci_0001", Timezone: "America/Denver"})

	cfg, err := svc.RegisterCamera(context.Background(), RegisterCameraInput{
		ProjectID: "sci_0001",
		CameraID:  "CT-7",
		Make:      "RidgeTec",
	})
	require.NoError(t, err)
	assert.Equal(t, "CT-7", cfg.ID)
	require.Len(t, cfg.Deployments, 1)
	assert.True(t, cfg.Deployments[0].IsDefault())
	assert.Equal(t, "America/Denver", cfg.Deployments[0].Timezone, "the default deployment inherits the project timezone")

	cam, err := ms.GetWirelessCamera(context.Background(), "CT-7")
	require.NoError(t, err)
	active := cam.ActiveRegistration()
	require.NotNil(t, active)
	assert.Equal(t, "sci_0001", active.ProjectID)

	// The fallback registration is created inactive alongside.
	require.Len(t, cam.Registrations, 2)
	assert.Equal(t, model.DefaultProjectID, cam.Registrations[1].ProjectID)
	assert.False(t, cam.Registrations[1].Active)
}

func TestRegisterCamera_AlreadyRegisteredHereIsIdempotent(t *testing.T) {
	ms := testutil.NewMemStore()
	svc := newTestService(ms)
	seedProject(t, ms, &model.Project{ID: "sci_0001", Timezone: "UTC"})

	in := RegisterCameraInput{ProjectID: "sci_0001", CameraID: "CT-7"}
	first, err := svc.RegisterCamera(context.Background(), in)
	require.NoError(t, err)

	again, err := svc.RegisterCamera(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	cam, err := ms.GetWirelessCamera(context.Background(), "CT-7")
	require.NoError(t, err)
	assert.Len(t, cam.Registrations, 2, "no duplicate registrations accumulate")
}

func TestRegisterCamera_TakeoverRejected(t *testing.T) {
	ms := testutil.NewMemStore()
	svc := newTestService(ms)
	seedProject(t, ms, &model.Project{ID: "sci_0001", Timezone: "UTC"})
	seedProject(t, ms, &model.Project{ID: "sci_0002", Timezone: "UTC"})

	_, err := svc.RegisterCamera(context.Background(), RegisterCameraInput{ProjectID: "sci_0001", CameraID: "CT-7"})
	require.NoError(t, err)

	_, err = svc.RegisterCamera(context.Background(), RegisterCameraInput{ProjectID: "sci_0002", CameraID: "CT-7"})
	var cr *CameraRegistrationError
	require.ErrorAs(t, err, &cr)
	assert.Equal(t, "CT-7", cr.CameraID)

	cam, gErr := ms.GetWirelessCamera(context.Background(), "CT-7")
	require.NoError(t, gErr)
	assert.Equal(t, "sci_0001", cam.ActiveRegistration().ProjectID, "the original owner keeps the camera")
}

func TestRegisterCamera_FromDefaultProject(t *testing.T) {
	ms := testutil.NewMemStore()
	svc := newTestService(ms)
	seedProject(t, ms, &model.Project{ID: "sci_0001", Timezone: "UTC"})

	require.NoError(t, ms.CreateWirelessCamera(context.Background(), &model.WirelessCamera{
		ID: "CT-7",
		Registrations: []model.ProjectRegistration{
			{ProjectID: model.DefaultProjectID, Active: true},
		},
	}))

	_, err := svc.RegisterCamera(context.Background(), RegisterCameraInput{ProjectID: "sci_0001", CameraID: "CT-7"})
	require.NoError(t, err)

	cam, err := ms.GetWirelessCamera(context.Background(), "CT-7")
	require.NoError(t, err)
	assert.Equal(t, "sci_0001", cam.ActiveRegistration().ProjectID)
}

func TestUnregisterCamera_FallsBackToDefaultProject(t *testing.T) {
	ms := testutil.NewMemStore()
	svc := newTestService(ms)
	seedProject(t, ms, &model.Project{ID: "sci_0001", Timezone: "UTC"})

	_, err := svc.RegisterCamera(context.Background(), RegisterCameraInput{ProjectID: "sci_0001", CameraID: "CT-7"})
	require.NoError(t, err)

	require.NoError(t, svc.UnregisterCamera(context.Background(), UnregisterCameraInput{ProjectID: "sci_0001", CameraID: "CT-7"}))

	cam, err := ms.GetWirelessCamera(context.Background(), "CT-7")
	require.NoError(t, err)
	active := cam.ActiveRegistration()
	require.NotNil(t, active, "a camera never goes ownerless")
	assert.Equal(t, model.DefaultProjectID, active.ProjectID)
}

func TestUnregisterCamera_NotRegistered(t *testing.T) {
	ms := testutil.NewMemStore()
	svc := newTestService(ms)

	err := svc.UnregisterCamera(context.Background(), UnregisterCameraInput{ProjectID: "sci_0001", CameraID: "CT-7"})
	var cr *CameraRegistrationError
	require.ErrorAs(t, err, &cr)
}

func TestUnregisterCamera_WrongProject(t *testing.T) {
	ms := testutil.NewMemStore()
	svc := newTestService(ms)
	seedProject(t, ms, &model.Project{ID: "sci_0001", Timezone: "UTC"})

	_, err := svc.RegisterCamera(context.Background(), RegisterCameraInput{ProjectID: "sci_0001", CameraID: "CT-7"})
	require.NoError(t, err)

	err = svc.UnregisterCamera(context.Background(), UnregisterCameraInput{ProjectID: "sci_0002", CameraID: "CT-7"})
	var cr *CameraRegistrationError
	require.ErrorAs(t, err, &cr)
}

func TestRegisterCamera_FailedProjectWriteUnwindsCameraCreate(t *testing.T) {
	ms := testutil.NewMemStore()
	svc := newTestService(ms)
	seedProject(t, ms, &model.Project{ID: "sci_0001", Timezone: "UTC"})

	boom := errors.New("disk full")
	for i := 0; i < 3; i++ {
		ms.QueueFailure("projects.save", boom)
	}

	_, err := svc.RegisterCamera(context.Background(), RegisterCameraInput{ProjectID: "sci_0001", CameraID: "CT-7"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	// The camera document created in the first step was rolled back.
	_, gErr := ms.GetWirelessCamera(context.Background(), "CT-7")
	assert.ErrorIs(t, gErr, model.ErrNoDocument)
}
