package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/wildeye/camtrap/internal/model"
)

// UpdateSerialNumberInput renames a camera's public identifier within a
// project. If NewID collides with an existing camera config the
// operation becomes a merge: the source camera is absorbed into the
// target.
type UpdateSerialNumberInput struct {
	ProjectID string
	CameraID  string
	NewID     string
}

// UpdateCameraSerialNumber reassigns a camera's serial number,
// composing the bulk re-mapper and the compensation ledger.
//
// Steps, in order:
//  1. Reject wireless serial numbers; those are not user-editable.
//  2. Relabel every image from the old id to the new id (compensated).
//  3. Decide merge vs rename by whether a config already exists under
//     the new id.
//  4. Merge: re-map the relabeled images onto the target's windows
//     (compensated by re-running the re-mapper with the source config).
//  5. Persist the project document - source config removed and views
//     pruned on merge, config id rewritten in place on rename - as the
//     final step.
//
// Compensations fire only for failures before the final save. A failure
// of the save itself is surfaced as-is: by then the image-side writes
// agree with the target windows and undoing them would not restore
// consistency either. Post-save partial inconsistency is a known,
// accepted gap.
func (s *Service) UpdateCameraSerialNumber(ctx context.Context, in UpdateSerialNumberInput) (model.StandardResult, error) {
	var zero model.StandardResult
	if in.NewID == "" || in.NewID == in.CameraID {
		return zero, &ForbiddenError{Reason: "new serial number must be non-empty and different"}
	}
	if err := s.rejectWirelessSerial(ctx, in.CameraID); err != nil {
		return zero, err
	}

	led := s.newWorkflowLedger()
	merged, err := s.relabelAndRemap(ctx, led, in)
	if err != nil {
		led.Unwind(ctx)
		return zero, err
	}

	// Final step, deliberately last and deliberately uncompensated.
	if err := s.persistSerialChange(ctx, in, merged); err != nil {
		return zero, err
	}

	msg := fmt.Sprintf("camera %s renamed to %s", in.CameraID, in.NewID)
	if merged {
		msg = fmt.Sprintf("camera %s merged into %s", in.CameraID, in.NewID)
	}
	s.logger.Info("serial number updated",
		"project", in.ProjectID,
		"old", in.CameraID,
		"new", in.NewID,
		"merged", merged)
	return model.StandardResult{IsOK: true, Message: msg}, nil
}

// rejectWirelessSerial fails the workflow when the camera identifier
// belongs to a self-registering wireless camera.
func (s *Service) rejectWirelessSerial(ctx context.Context, cameraID string) error {
	_, err := s.cameras.GetWirelessCamera(ctx, cameraID)
	if err == nil {
		return &CameraRegistrationError{
			CameraID: cameraID,
			Reason:   "serial numbers of wireless cameras cannot be edited",
		}
	}
	if errors.Is(err, model.ErrNoDocument) {
		return nil
	}
	return wrapInternal("lookup-wireless-camera", err)
}

// relabelAndRemap performs the compensated steps of the workflow and
// reports whether the change is a merge.
func (s *Service) relabelAndRemap(ctx context.Context, led *Ledger, in UpdateSerialNumberInput) (bool, error) {
	var imageIDs []string
	err := retryBounded(ctx, s.logger, "relabel-images", defaultAttempts, func(ctx context.Context) error {
		ids, err := s.images.RelabelImages(ctx, in.ProjectID, in.CameraID, in.NewID)
		if err != nil {
			return err
		}
		imageIDs = ids
		return nil
	})
	if err != nil {
		return false, err
	}
	led.Record(StepImagesUpdated, imagesUpdatedPayload{
		ProjectID:   in.ProjectID,
		ImageIDs:    imageIDs,
		OldCameraID: in.CameraID,
	})

	proj, err := s.getProject(ctx, in.ProjectID)
	if err != nil {
		return false, err
	}
	source := proj.FindCameraConfig(in.CameraID)
	if source == nil {
		return false, &NotFoundError{Resource: "camera config", ID: in.CameraID}
	}
	target := proj.FindCameraConfig(in.NewID)
	if target == nil {
		return false, nil // plain rename: windows unchanged, no re-map
	}

	// Merge: the relabeled images must fall into the target's windows.
	sourceSnapshot := *source
	sourceSnapshot.Deployments = append([]model.Deployment(nil), source.Deployments...)
	err = retryBounded(ctx, s.logger, "remap-to-target", defaultAttempts, func(ctx context.Context) error {
		_, err := s.remapOnce(ctx, in.ProjectID, *target)
		return err
	})
	if err != nil {
		return false, err
	}
	led.Record(StepImagesRemapped, imagesRemappedPayload{
		ProjectID:     in.ProjectID,
		SourceConfig:  sourceSnapshot,
		QueryCameraID: in.NewID,
	})
	return true, nil
}

// persistSerialChange rewrites the project document. The unit reloads
// the document on every attempt so a stale write re-applies the
// mutation against fresh state.
func (s *Service) persistSerialChange(ctx context.Context, in UpdateSerialNumberInput, merged bool) error {
	return retryBounded(ctx, s.logger, "save-project", defaultAttempts, func(ctx context.Context) error {
		proj, err := s.getProject(ctx, in.ProjectID)
		if err != nil {
			return err
		}
		source := proj.FindCameraConfig(in.CameraID)
		if source == nil {
			return &NotFoundError{Resource: "camera config", ID: in.CameraID}
		}
		if merged {
			removeCameraConfig(proj, in.CameraID)
			pruneViewDeployments(proj)
		} else {
			source.ID = in.NewID
		}
		return s.projects.SaveProject(ctx, proj)
	})
}

func removeCameraConfig(p *model.Project, cameraID string) {
	for i := range p.CameraConfigs {
		if p.CameraConfigs[i].ID == cameraID {
			p.CameraConfigs = append(p.CameraConfigs[:i:i], p.CameraConfigs[i+1:]...)
			return
		}
	}
}
