package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildeye/camtrap/internal/model"
)

func TestFixedClock(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewFixedClock(start)
	c.Step = time.Minute

	assert.Equal(t, start, c.Now())
	assert.Equal(t, start.Add(time.Minute), c.Now())
	assert.Equal(t, start.Add(2*time.Minute), c.Now())
}

func TestSequentialIDs(t *testing.T) {
	g := &SequentialIDs{Prefix: "dep"}
	assert.Equal(t, "dep-1", g.Generate())
	assert.Equal(t, "dep-2", g.Generate())

	anon := &SequentialIDs{}
	assert.Equal(t, "id-1", anon.Generate())
}

func TestMemStore_QueuedFailuresConsumeOnce(t *testing.T) {
	ms := NewMemStore()
	ctx := context.Background()

	boom := errors.New("boom")
	ms.QueueFailure("projects.create", boom)

	err := ms.CreateProject(ctx, &model.Project{ID: "p1"})
	assert.ErrorIs(t, err, boom)

	require.NoError(t, ms.CreateProject(ctx, &model.Project{ID: "p1"}), "the failure is spent after one call")

	assert.Equal(t, []string{
		"projects.create id=p1",
		"projects.create id=p1",
	}, ms.Trace(), "failed calls still appear in the trace")
}

func TestMemStore_StaleWriteDetection(t *testing.T) {
	ms := NewMemStore()
	ctx := context.Background()

	p := &model.Project{ID: "p1"}
	require.NoError(t, ms.CreateProject(ctx, p))

	stale := &model.Project{ID: "p1", Rev: 99}
	assert.ErrorIs(t, ms.SaveProject(ctx, stale), model.ErrStaleWrite)

	require.NoError(t, ms.SaveProject(ctx, p))
	assert.Equal(t, int64(2), p.Rev)
}
