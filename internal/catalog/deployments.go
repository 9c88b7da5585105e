package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/wildeye/camtrap/internal/model"
)

// CreateDeploymentInput describes a new dated deployment window.
type CreateDeploymentInput struct {
	ProjectID string
	CameraID  string
	Name      string
	Timezone  string
	StartDate time.Time
}

// UpdateDeploymentInput carries a partial edit of an existing window.
// Nil fields are left unchanged.
type UpdateDeploymentInput struct {
	ProjectID    string
	CameraID     string
	DeploymentID string
	Name         *string
	Timezone     *string
	StartDate    *time.Time
}

// DeleteDeploymentInput identifies a window to remove.
type DeleteDeploymentInput struct {
	ProjectID    string
	CameraID     string
	DeploymentID string
}

// CreateDeployment adds a dated window to a camera's deployment list,
// re-sorts the list, persists the project, and re-maps the camera's
// images. A failed re-map restores the pre-mutation project document.
func (s *Service) CreateDeployment(ctx context.Context, in CreateDeploymentInput) (*model.CameraConfig, error) {
	if in.Name == model.DefaultDeploymentName {
		return nil, &ForbiddenError{Reason: "a second default deployment cannot be created"}
	}
	if err := validateTimezone(in.Timezone); err != nil {
		return nil, err
	}

	dep := model.Deployment{
		ID:       s.ids.Generate(),
		Name:     in.Name,
		Timezone: in.Timezone,
		Editable: true,
	}
	start := in.StartDate
	dep.StartDate = &start

	return s.mutateDeployments(ctx, in.ProjectID, in.CameraID, "create-deployment",
		func(cfg *model.CameraConfig) (bool, error) {
			cfg.Deployments = SortDeployments(append(cfg.Deployments, dep))
			return true, nil
		})
}

// UpdateDeployment edits a window in place. Editing the default
// deployment, or any window marked non-editable, is forbidden. The
// camera's images are re-mapped only when the edit moved a window
// boundary or changed a timezone; a pure rename leaves them untouched.
func (s *Service) UpdateDeployment(ctx context.Context, in UpdateDeploymentInput) (*model.CameraConfig, error) {
	if in.Timezone != nil {
		if err := validateTimezone(*in.Timezone); err != nil {
			return nil, err
		}
	}

	return s.mutateDeployments(ctx, in.ProjectID, in.CameraID, "update-deployment",
		func(cfg *model.CameraConfig) (bool, error) {
			dep := findDeployment(cfg, in.DeploymentID)
			if dep == nil {
				return false, &NotFoundError{Resource: "deployment", ID: in.DeploymentID}
			}
			if dep.IsDefault() {
				return false, &ForbiddenError{Reason: "the default deployment cannot be edited"}
			}
			if !dep.Editable {
				return false, &ForbiddenError{Reason: fmt.Sprintf("deployment %q is not editable", dep.Name)}
			}

			remap := false
			if in.Name != nil {
				dep.Name = *in.Name
			}
			if in.Timezone != nil && dep.Timezone != *in.Timezone {
				dep.Timezone = *in.Timezone
				remap = true
			}
			if in.StartDate != nil && (dep.StartDate == nil || !dep.StartDate.Equal(*in.StartDate)) {
				start := *in.StartDate
				dep.StartDate = &start
				remap = true
			}
			cfg.Deployments = SortDeployments(cfg.Deployments)
			return remap, nil
		})
}

// DeleteDeployment removes a window and re-derives the assignment of
// every image it used to own; images no remaining dated window covers
// fall back to default. The deleted window's id is also stripped from
// every saved view's deployment filter in the same document save.
func (s *Service) DeleteDeployment(ctx context.Context, in DeleteDeploymentInput) (*model.CameraConfig, error) {
	return s.mutateDeployments(ctx, in.ProjectID, in.CameraID, "delete-deployment",
		func(cfg *model.CameraConfig) (bool, error) {
			idx := -1
			for i := range cfg.Deployments {
				if cfg.Deployments[i].ID == in.DeploymentID {
					idx = i
					break
				}
			}
			if idx < 0 {
				return false, &NotFoundError{Resource: "deployment", ID: in.DeploymentID}
			}
			if cfg.Deployments[idx].IsDefault() {
				return false, &ForbiddenError{Reason: "the default deployment cannot be deleted"}
			}
			cfg.Deployments = append(cfg.Deployments[:idx:idx], cfg.Deployments[idx+1:]...)
			cfg.Deployments = SortDeployments(cfg.Deployments)
			return true, nil
		})
}

// mutateDeployments is the shared deployment-CRUD skeleton: load the
// project fresh, apply the mutation to the camera's config, save
// conditionally, then re-map if the mutation asked for it. The
// read-mutate-save unit retries as a whole, so a stale write re-runs
// against the reloaded document. The view filters are pruned of any
// deployment ids the mutation removed, inside the same save.
func (s *Service) mutateDeployments(ctx context.Context, projectID, cameraID, label string, mutate func(cfg *model.CameraConfig) (bool, error)) (*model.CameraConfig, error) {
	led := s.newWorkflowLedger()

	var (
		result    model.CameraConfig
		needRemap bool
	)
	err := retryBounded(ctx, s.logger, label, defaultAttempts, func(ctx context.Context) error {
		proj, err := s.getProject(ctx, projectID)
		if err != nil {
			return err
		}
		cfg := proj.FindCameraConfig(cameraID)
		if cfg == nil {
			return &NotFoundError{Resource: "camera config", ID: cameraID}
		}
		snapshot := cloneProject(proj)

		remap, err := mutate(cfg)
		if err != nil {
			return err
		}
		pruneViewDeployments(proj)

		if err := s.projects.SaveProject(ctx, proj); err != nil {
			return err
		}
		led.Record(StepProjectSaved, projectSavedPayload{Snapshot: *snapshot, CameraID: cameraID})
		result = *cfg
		needRemap = remap
		return nil
	})
	if err != nil {
		return nil, err
	}

	if needRemap {
		if err := s.ReMapImages(ctx, projectID, result); err != nil {
			led.Unwind(ctx)
			return nil, err
		}
	}
	return &result, nil
}

// pruneViewDeployments drops deployment ids that no camera config
// carries anymore from every saved view's filter list.
func pruneViewDeployments(p *model.Project) {
	known := map[string]bool{}
	for _, cfg := range p.CameraConfigs {
		for _, dep := range cfg.Deployments {
			known[dep.ID] = true
		}
	}
	for vi := range p.Views {
		filters := p.Views[vi].Filters.Deployments
		if filters == nil {
			continue
		}
		kept := filters[:0]
		for _, id := range filters {
			if known[id] {
				kept = append(kept, id)
			}
		}
		p.Views[vi].Filters.Deployments = kept
	}
}

func findDeployment(cfg *model.CameraConfig, id string) *model.Deployment {
	for i := range cfg.Deployments {
		if cfg.Deployments[i].ID == id {
			return &cfg.Deployments[i]
		}
	}
	return nil
}

func validateTimezone(tz string) error {
	if _, err := time.LoadLocation(tz); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return nil
}

// cloneProject deep-copies a project document so ledger snapshots are
// immune to later in-place mutation.
func cloneProject(p *model.Project) *model.Project {
	out := *p
	out.CameraConfigs = make([]model.CameraConfig, len(p.CameraConfigs))
	for i, cfg := range p.CameraConfigs {
		out.CameraConfigs[i] = cfg
		out.CameraConfigs[i].Deployments = append([]model.Deployment(nil), cfg.Deployments...)
	}
	out.Views = make([]model.View, len(p.Views))
	for i, v := range p.Views {
		out.Views[i] = v
		out.Views[i].Filters.Cameras = append([]string(nil), v.Filters.Cameras...)
		out.Views[i].Filters.Deployments = append([]string(nil), v.Filters.Deployments...)
		out.Views[i].Filters.Labels = append([]string(nil), v.Filters.Labels...)
	}
	return &out
}
