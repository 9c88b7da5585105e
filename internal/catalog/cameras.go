package catalog

import (
	"context"
	"errors"

	"github.com/wildeye/camtrap/internal/model"
)

// RegisterCameraInput asks for a wireless camera to become actively
// registered to a project.
type RegisterCameraInput struct {
	ProjectID string
	CameraID  string
	Make      string
}

// UnregisterCameraInput releases a camera from its current project.
type UnregisterCameraInput struct {
	ProjectID string
	CameraID  string
}

// RegisterCamera makes a project the active owner of a wireless camera,
// creating the camera identity document on first sight and lazily
// creating the project's camera config. Two independent documents are
// written (camera, then project); a failed second write unwinds the
// first through the ledger.
//
// A camera actively registered to a different real project cannot be
// taken over; unregister it there first.
func (s *Service) RegisterCamera(ctx context.Context, in RegisterCameraInput) (*model.CameraConfig, error) {
	led := s.newWorkflowLedger()
	cfg, err := s.registerCamera(ctx, led, in)
	if err != nil {
		led.Unwind(ctx)
		return nil, err
	}
	return cfg, nil
}

func (s *Service) registerCamera(ctx context.Context, led *Ledger, in RegisterCameraInput) (*model.CameraConfig, error) {
	err := retryBounded(ctx, s.logger, "register-camera", defaultAttempts, func(ctx context.Context) error {
		cam, err := s.cameras.GetWirelessCamera(ctx, in.CameraID)
		if errors.Is(err, model.ErrNoDocument) {
			fresh := &model.WirelessCamera{
				ID:   in.CameraID,
				Make: in.Make,
				Registrations: []model.ProjectRegistration{
					{ProjectID: in.ProjectID, Active: true},
					{ProjectID: model.DefaultProjectID, Active: false},
				},
			}
			if err := s.cameras.CreateWirelessCamera(ctx, fresh); err != nil {
				return err
			}
			led.Record(StepCameraCreated, cameraCreatedPayload{CameraID: in.CameraID})
			return nil
		}
		if err != nil {
			return err
		}

		prev := ""
		if active := cam.ActiveRegistration(); active != nil {
			if active.ProjectID == in.ProjectID {
				return nil // already registered here
			}
			if active.ProjectID != model.DefaultProjectID {
				return &CameraRegistrationError{
					CameraID: in.CameraID,
					Reason:   "already actively registered to project " + active.ProjectID,
				}
			}
			prev = active.ProjectID
		}
		activateRegistration(cam, in.ProjectID)
		if err := s.cameras.SaveWirelessCamera(ctx, cam); err != nil {
			return err
		}
		led.Record(StepCameraRegistered, cameraRegisteredPayload{CameraID: in.CameraID, PrevActiveProjectID: prev})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.ensureCameraConfig(ctx, led, in.ProjectID, in.CameraID)
}

// ensureCameraConfig lazily creates the project-side camera config the
// first time a camera is assigned to a project.
func (s *Service) ensureCameraConfig(ctx context.Context, led *Ledger, projectID, cameraID string) (*model.CameraConfig, error) {
	var result model.CameraConfig
	err := retryBounded(ctx, s.logger, "ensure-camera-config", defaultAttempts, func(ctx context.Context) error {
		proj, err := s.getProject(ctx, projectID)
		if err != nil {
			return err
		}
		if cfg := proj.FindCameraConfig(cameraID); cfg != nil {
			result = *cfg
			return nil
		}
		snapshot := cloneProject(proj)
		proj.CameraConfigs = append(proj.CameraConfigs, model.CameraConfig{
			ID: cameraID,
			Deployments: []model.Deployment{
				model.NewDefaultDeployment(s.ids.Generate(), proj.Timezone),
			},
		})
		if err := s.projects.SaveProject(ctx, proj); err != nil {
			return err
		}
		led.Record(StepProjectSaved, projectSavedPayload{Snapshot: *snapshot})
		result = proj.CameraConfigs[len(proj.CameraConfigs)-1]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// UnregisterCamera deactivates a camera's registration to the given
// project and reactivates the default-project fallback, so every camera
// always has an owner.
func (s *Service) UnregisterCamera(ctx context.Context, in UnregisterCameraInput) error {
	led := s.newWorkflowLedger()
	err := retryBounded(ctx, s.logger, "unregister-camera", defaultAttempts, func(ctx context.Context) error {
		cam, err := s.cameras.GetWirelessCamera(ctx, in.CameraID)
		if errors.Is(err, model.ErrNoDocument) {
			return &CameraRegistrationError{CameraID: in.CameraID, Reason: "camera is not registered"}
		}
		if err != nil {
			return err
		}
		active := cam.ActiveRegistration()
		if active == nil || active.ProjectID != in.ProjectID {
			return &CameraRegistrationError{
				CameraID: in.CameraID,
				Reason:   "camera is not actively registered to project " + in.ProjectID,
			}
		}
		activateRegistration(cam, model.DefaultProjectID)
		if err := s.cameras.SaveWirelessCamera(ctx, cam); err != nil {
			return err
		}
		led.Record(StepCamUnregistered, camUnregisteredPayload{CameraID: in.CameraID, ProjectID: in.ProjectID})
		return nil
	})
	if err != nil {
		led.Unwind(ctx)
		return err
	}
	return nil
}
