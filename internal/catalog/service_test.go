package catalog

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wildeye/camtrap/internal/model"
	"github.com/wildeye/camtrap/internal/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestService wires a service over the memstore with a fixed clock
// and sequential ids so traces and outputs are byte-stable.
func newTestService(ms *testutil.MemStore) *Service {
	clock := testutil.NewFixedClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	clock.Step = time.Second
	return NewService(ms, ms, ms, ms, clock, &testutil.SequentialIDs{Prefix: "gen"}, testLogger())
}

// seedProject creates a project and clears the trace so tests assert
// only on workflow operations.
func seedProject(t *testing.T, ms *testutil.MemStore, p *model.Project) {
	t.Helper()
	require.NoError(t, ms.CreateProject(context.Background(), p))
	ms.ResetTrace()
}

// twoWindowProject is the recurring fixture: one camera with the
// default deployment plus dated windows A (2023-01-01) and B
// (2023-06-01), all UTC.
func twoWindowProject(projectID, cameraID string) *model.Project {
	return &model.Project{
		ID:       projectID,
		Name:     "Survey",
		Timezone: "UTC",
		CameraConfigs: []model.CameraConfig{
			{
				ID: cameraID,
				Deployments: []model.Deployment{
					{ID: "d-default", Name: model.DefaultDeploymentName, Timezone: "UTC"},
					{ID: "d-a", Name: "A", Timezone: "UTC", StartDate: ptr(utcDate(2023, 1, 1)), Editable: true},
					{ID: "d-b", Name: "B", Timezone: "UTC", StartDate: ptr(utcDate(2023, 6, 1)), Editable: true},
				},
			},
		},
	}
}

func seedImage(ms *testutil.MemStore, id, projectID, cameraID, deploymentID string, taken time.Time) {
	ms.AddImage(model.Image{
		ID:               id,
		ProjectID:        projectID,
		CameraID:         cameraID,
		DeploymentID:     deploymentID,
		DateTimeOriginal: taken,
		Timezone:         "UTC",
	})
}
