package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildeye/camtrap/internal/model"
	"github.com/wildeye/camtrap/internal/testutil"
)

func TestSubmitTask(t *testing.T) {
	ms := testutil.NewMemStore()
	svc := newTestService(ms)

	task, err := svc.SubmitTask(context.Background(), TaskCreateDeployment, "sci_0001", "ops@example.org", map[string]any{
		"CameraID": "CT-7",
	})
	require.NoError(t, err)
	assert.Equal(t, "gen-1", task.ID)
	assert.Equal(t, model.TaskSubmitted, task.Status)
	assert.Equal(t, "sci_0001", task.ProjectID)
	assert.Equal(t, "ops@example.org", task.User)
	assert.Equal(t, task.Created, task.Updated)
	assert.False(t, task.Created.IsZero())
}

func TestSubmitTask_UnknownType(t *testing.T) {
	ms := testutil.NewMemStore()
	svc := newTestService(ms)

	_, err := svc.SubmitTask(context.Background(), "RecalibrateFluxCapacitor", "sci_0001", "ops", nil)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Empty(t, ms.Trace(), "nothing persisted for an unknown type")
}

func TestRunTask_CreateDeploymentCompletes(t *testing.T) {
	ms := testutil.NewMemStore()
	svc := newTestService(ms)
	seedProject(t, ms, &model.Project{
		ID:       "sci_0001",
		Timezone: "UTC",
		CameraConfigs: []model.CameraConfig{
			{ID: "CT-7", Deployments: []model.Deployment{
				{ID: "d-default", Name: model.DefaultDeploymentName, Timezone: "UTC"},
			}},
		},
	})

	task, err := svc.SubmitTask(context.Background(), TaskCreateDeployment, "sci_0001", "ops", map[string]any{
		"ProjectID": "sci_0001",
		"CameraID":  "CT-7",
		"Name":      "spring",
		"Timezone":  "UTC",
		"StartDate": "2023-01-01T00:00:00Z",
	})
	require.NoError(t, err)

	done, err := svc.RunTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskComplete, done.Status)
	// The task id consumed gen-1, so the new deployment gets gen-2.
	assert.Equal(t, `{"cameraId":"CT-7","deployments":["d-default","gen-2"]}`, done.Output)
	assert.True(t, done.Updated.After(done.Created))
}

func TestRunTask_FailureSerializesError(t *testing.T) {
	ms := testutil.NewMemStore()
	svc := newTestService(ms)
	seedProject(t, ms, twoWindowProject("sci_0001", "CT-7"))

	task, err := svc.SubmitTask(context.Background(), TaskDeleteDeployment, "sci_0001", "ops", map[string]any{
		"ProjectID":    "sci_0001",
		"CameraID":     "CT-7",
		"DeploymentID": "d-default",
	})
	require.NoError(t, err)

	done, runErr := svc.RunTask(context.Background(), task.ID)
	var fb *ForbiddenError
	require.ErrorAs(t, runErr, &fb, "synchronous callers still see the error")
	assert.Equal(t, model.TaskFail, done.Status)
	assert.Equal(t, `{"code":"FORBIDDEN","error":"forbidden: the default deployment cannot be deleted"}`, done.Output)

	// The failure is durable: reloading the task shows the same output.
	saved, gErr := ms.GetTask(context.Background(), task.ID)
	require.NoError(t, gErr)
	assert.Equal(t, model.TaskFail, saved.Status)
	assert.Equal(t, done.Output, saved.Output)
}

func TestRunTask_UpdateSerialNumber(t *testing.T) {
	ms := testutil.NewMemStore()
	svc := newTestService(ms)
	seedProject(t, ms, twoWindowProject("sci_0001", "CT-7"))

	task, err := svc.SubmitTask(context.Background(), TaskUpdateSerialNumber, "sci_0001", "ops", map[string]any{
		"ProjectID": "sci_0001",
		"CameraID":  "CT-7",
		"NewID":     "CT-9",
	})
	require.NoError(t, err)

	done, err := svc.RunTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskComplete, done.Status)
	assert.Equal(t, `{"isOk":true,"message":"camera CT-7 renamed to CT-9"}`, done.Output)
}

func TestRunTask_OnlySubmittedTasksRun(t *testing.T) {
	ms := testutil.NewMemStore()
	svc := newTestService(ms)
	seedProject(t, ms, twoWindowProject("sci_0001", "CT-7"))

	task, err := svc.SubmitTask(context.Background(), TaskUpdateSerialNumber, "sci_0001", "ops", map[string]any{
		"ProjectID": "sci_0001",
		"CameraID":  "CT-7",
		"NewID":     "CT-9",
	})
	require.NoError(t, err)

	_, err = svc.RunTask(context.Background(), task.ID)
	require.NoError(t, err)

	_, err = svc.RunTask(context.Background(), task.ID)
	var fb *ForbiddenError
	require.ErrorAs(t, err, &fb, "a completed task cannot run twice")
}

func TestRunTask_UnknownTask(t *testing.T) {
	ms := testutil.NewMemStore()
	svc := newTestService(ms)

	_, err := svc.RunTask(context.Background(), "ghost")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}
