package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/wildeye/camtrap/internal/model"
)

// ReMapImages re-derives the deployment reference, timezone, and wall
// clock of every image a camera has ever captured, after its deployment
// windows changed. The whole re-map retries as one unit: a failed
// attempt restarts from fresh reads, and staged updates are computed
// freshly each attempt, so partial completion of a prior attempt cannot
// corrupt the result.
//
// Calling it twice with no intervening deployment change issues zero
// writes on the second call.
func (s *Service) ReMapImages(ctx context.Context, projectID string, cfg model.CameraConfig) error {
	return retryBounded(ctx, s.logger, "remap-images", defaultAttempts, func(ctx context.Context) error {
		n, err := s.remapOnce(ctx, projectID, cfg)
		if err != nil {
			return err
		}
		s.logger.Info("re-mapped images",
			"project", projectID,
			"camera", cfg.ID,
			"updates", n)
		return nil
	})
}

// remapOnce performs a single re-map pass and returns the number of
// staged updates it wrote.
//
// Cost note: the scan covers every image the camera produced, however
// small the deployment edit was. The staged updates are conditional, so
// the write volume scales with images actually needing a change.
func (s *Service) remapOnce(ctx context.Context, projectID string, cfg model.CameraConfig) (int64, error) {
	sorted := SortDeployments(cfg.Deployments)
	if len(sorted) == 0 {
		return 0, &NotFoundError{Resource: "deployment", ID: "camera " + cfg.ID}
	}

	var updates []model.ImageUpdate
	for i, dep := range sorted {
		sel, ok := intervalSelector(projectID, cfg.ID, sorted, i)
		if !ok {
			continue
		}
		staged, err := s.stageInterval(ctx, sel, dep)
		if err != nil {
			return 0, err
		}
		updates = append(updates, staged...)
	}

	if len(updates) == 0 {
		return 0, nil
	}
	return s.images.BulkWriteImages(ctx, updates)
}

// intervalSelector computes the half-open instant interval owned by
// sorted[i]. The default deployment owns everything before the first
// dated window (or everything, if no dated window exists); dated window
// i owns [start_i, start_{i+1}); the last dated window is unbounded
// above. Returns ok=false for a window that can claim nothing.
func intervalSelector(projectID, cameraID string, sorted []model.Deployment, i int) (model.ImageSelector, bool) {
	sel := model.ImageSelector{ProjectID: projectID, CameraID: cameraID}
	dep := sorted[i]

	if dep.IsDefault() {
		if len(sorted) > 1 {
			sel.To = sorted[1].StartDate
		}
		return sel, true
	}

	if dep.StartDate == nil {
		// A dated window without a start date violates the config
		// invariant; it can own no interval.
		return sel, false
	}
	sel.From = dep.StartDate
	if i+1 < len(sorted) {
		sel.To = sorted[i+1].StartDate
	}
	return sel, true
}

// stageInterval streams the images in one window's interval and stages
// the field updates needed to make each image agree with the window.
func (s *Service) stageInterval(ctx context.Context, sel model.ImageSelector, dep model.Deployment) ([]model.ImageUpdate, error) {
	cur, err := s.images.FindImages(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("find images for deployment %s: %w", dep.ID, err)
	}
	defer cur.Close()

	var staged []model.ImageUpdate
	for cur.Next() {
		img := cur.Image()
		upd := model.ImageUpdate{ImageID: img.ID}
		changed := false

		if img.DeploymentID != dep.ID {
			id := dep.ID
			upd.DeploymentID = &id
			changed = true
		}
		if img.Timezone != dep.Timezone {
			shifted, err := shiftTimezone(img.DateTimeOriginal, img.Timezone, dep.Timezone)
			if err != nil {
				return nil, fmt.Errorf("image %s: %w", img.ID, err)
			}
			tz := dep.Timezone
			upd.Timezone = &tz
			upd.DateTimeOriginal = &shifted
			changed = true
		}
		if changed {
			staged = append(staged, upd)
		}
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("streaming images for deployment %s: %w", dep.ID, err)
	}
	return staged, nil
}

// shiftTimezone moves an instant between zones keeping the local
// wall-clock reading fixed: the instant changes, the displayed
// year/month/day/hour/minute/second does not.
func shiftTimezone(t time.Time, fromTZ, toTZ string) (time.Time, error) {
	from, err := time.LoadLocation(fromTZ)
	if err != nil {
		return time.Time{}, fmt.Errorf("loading timezone %q: %w", fromTZ, err)
	}
	to, err := time.LoadLocation(toTZ)
	if err != nil {
		return time.Time{}, fmt.Errorf("loading timezone %q: %w", toTZ, err)
	}
	return reinterpretWallClock(t.In(from), to), nil
}
