package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/wildeye/camtrap/internal/testutil"
)

// Golden traces pin the exact store operation sequence of the merge
// workflow, the most intricate composition in the catalog. Any change
// to read ordering, retry counts, or compensation shows up as a diff.

func traceGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func traceBytes(trace []string) []byte {
	return []byte(strings.Join(trace, "\n") + "\n")
}

func TestMergeTrace(t *testing.T) {
	ms := testutil.NewMemStore()
	svc := newTestService(ms)
	mergeFixture(t, ms)

	_, err := svc.UpdateCameraSerialNumber(context.Background(), UpdateSerialNumberInput{
		ProjectID: "sci_0001",
		CameraID:  "CT-7",
		NewID:     "CT-9",
	})
	require.NoError(t, err)

	traceGoldie(t).Assert(t, "merge", traceBytes(ms.Trace()))
}

func TestMergeRollbackTrace(t *testing.T) {
	ms := testutil.NewMemStore()
	svc := newTestService(ms)
	mergeFixture(t, ms)

	boom := errors.New("disk full")
	for i := 0; i < 3; i++ {
		ms.QueueFailure("images.bulkWrite", boom)
	}

	_, err := svc.UpdateCameraSerialNumber(context.Background(), UpdateSerialNumberInput{
		ProjectID: "sci_0001",
		CameraID:  "CT-7",
		NewID:     "CT-9",
	})
	require.Error(t, err)

	traceGoldie(t).Assert(t, "merge_rollback", traceBytes(ms.Trace()))
}
