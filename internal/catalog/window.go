package catalog

import (
	"fmt"
	"sort"
	"time"

	"github.com/wildeye/camtrap/internal/model"
)

// AssignDeployment computes which deployment window an image falls into.
//
// The image's wall-clock capture time is anchored in projectTimezone,
// because at assignment time the image's own timezone is not yet known.
// This is a deliberate precision caveat inherited from the catalog's
// design: an image whose true timezone diverges from the project default
// by more than the gap to the next window boundary can be misattributed.
//
// Rules:
//   - empty deployment list: NotFoundError
//   - exactly one deployment: returned unconditionally, default included
//   - otherwise: the deployment with the latest StartDate <= the anchor
//     instant wins; if no dated deployment qualifies, default wins
//
// Among deployments with an equal StartDate the last one in list order
// wins; SortDeployments is stable, so list order is insertion order.
func AssignDeployment(img model.Image, cfg model.CameraConfig, projectTimezone string) (model.Deployment, error) {
	deps := cfg.Deployments
	if len(deps) == 0 {
		return model.Deployment{}, &NotFoundError{Resource: "deployment", ID: "camera " + cfg.ID}
	}
	if len(deps) == 1 {
		return deps[0], nil
	}

	loc, err := time.LoadLocation(projectTimezone)
	if err != nil {
		return model.Deployment{}, fmt.Errorf("loading project timezone %q: %w", projectTimezone, err)
	}
	anchor := reinterpretWallClock(img.DateTimeOriginal, loc)

	sorted := SortDeployments(deps)
	best := sorted[0] // default
	for _, d := range sorted[1:] {
		if d.StartDate != nil && !d.StartDate.After(anchor) {
			best = d
		}
	}
	return best, nil
}

// SortDeployments returns the canonical order for a camera's deployment
// list: the default deployment first, then the dated windows ascending
// by StartDate. The sort is stable and touches nothing but order, so
// applying it twice yields the same result as applying it once.
func SortDeployments(deps []model.Deployment) []model.Deployment {
	var dflt []model.Deployment
	dated := make([]model.Deployment, 0, len(deps))
	for _, d := range deps {
		if d.IsDefault() {
			dflt = append(dflt, d)
			continue
		}
		dated = append(dated, d)
	}

	sort.SliceStable(dated, func(i, j int) bool {
		a, b := dated[i].StartDate, dated[j].StartDate
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return a.Before(*b)
	})

	return append(dflt, dated...)
}

// reinterpretWallClock rebuilds t's wall-clock reading in loc, changing
// the instant but not the displayed year/month/day/hour/minute/second.
func reinterpretWallClock(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}
