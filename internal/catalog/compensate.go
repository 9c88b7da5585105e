package catalog

import (
	"context"
	"fmt"

	"github.com/wildeye/camtrap/internal/model"
)

// Payloads captured by Record calls. Each holds exactly what its
// inverse needs, snapshotted at commit time, so compensation never
// depends on re-reading state the failure may have corrupted.

type cameraCreatedPayload struct {
	CameraID string
}

type cameraRegisteredPayload struct {
	CameraID string
	// PrevActiveProjectID is the registration that was active before
	// this step, or empty if none was.
	PrevActiveProjectID string
}

type camUnregisteredPayload struct {
	CameraID  string
	ProjectID string
}

type projectSavedPayload struct {
	// Snapshot is the whole pre-mutation document.
	Snapshot model.Project
	// CameraID names the camera whose images the mutation re-mapped,
	// so the inverse can re-map them under the snapshot's windows.
	CameraID string
}

type imagesUpdatedPayload struct {
	ProjectID   string
	ImageIDs    []string
	OldCameraID string
}

type imagesRemappedPayload struct {
	ProjectID string
	// SourceConfig is the full camera config removed by the merge.
	SourceConfig model.CameraConfig
	// QueryCameraID is the id the affected images carry at unwind
	// time. Compensation runs in reverse-commit order, so when this
	// inverse fires the images are still labeled with the merge
	// target's id, not the source's.
	QueryCameraID string
}

// newWorkflowLedger builds a ledger with this service's inverse
// registry. Every workflow shares one vocabulary of step kinds.
func (s *Service) newWorkflowLedger() *Ledger {
	return NewLedger(s.logger, map[StepKind]CompensateFunc{
		StepCameraCreated:    s.compensateCameraCreated,
		StepCameraRegistered: s.compensateCameraRegistered,
		StepCamUnregistered:  s.compensateCamUnregistered,
		StepProjectSaved:     s.compensateProjectSaved,
		StepImagesUpdated:    s.compensateImagesUpdated,
		StepImagesRemapped:   s.compensateImagesRemapped,
	})
}

func (s *Service) compensateCameraCreated(ctx context.Context, payload any) error {
	p, ok := payload.(cameraCreatedPayload)
	if !ok {
		return fmt.Errorf("camera-created: unexpected payload %T", payload)
	}
	return s.cameras.DeleteWirelessCamera(ctx, p.CameraID)
}

func (s *Service) compensateCameraRegistered(ctx context.Context, payload any) error {
	p, ok := payload.(cameraRegisteredPayload)
	if !ok {
		return fmt.Errorf("camera-registered: unexpected payload %T", payload)
	}
	cam, err := s.cameras.GetWirelessCamera(ctx, p.CameraID)
	if err != nil {
		return err
	}
	activateRegistration(cam, p.PrevActiveProjectID)
	return s.cameras.SaveWirelessCamera(ctx, cam)
}

func (s *Service) compensateCamUnregistered(ctx context.Context, payload any) error {
	p, ok := payload.(camUnregisteredPayload)
	if !ok {
		return fmt.Errorf("cam-unregistered: unexpected payload %T", payload)
	}
	cam, err := s.cameras.GetWirelessCamera(ctx, p.CameraID)
	if err != nil {
		return err
	}
	activateRegistration(cam, p.ProjectID)
	return s.cameras.SaveWirelessCamera(ctx, cam)
}

// compensateProjectSaved restores the pre-mutation project document and
// re-maps the affected camera's images under the restored windows.
func (s *Service) compensateProjectSaved(ctx context.Context, payload any) error {
	p, ok := payload.(projectSavedPayload)
	if !ok {
		return fmt.Errorf("project-saved: unexpected payload %T", payload)
	}
	cur, err := s.projects.GetProject(ctx, p.Snapshot.ID)
	if err != nil {
		return err
	}
	restored := p.Snapshot
	restored.Rev = cur.Rev
	if err := s.projects.SaveProject(ctx, &restored); err != nil {
		return err
	}
	if p.CameraID == "" {
		return nil
	}
	cfg := restored.FindCameraConfig(p.CameraID)
	if cfg == nil {
		return nil
	}
	_, err = s.remapOnce(ctx, restored.ID, *cfg)
	return err
}

func (s *Service) compensateImagesUpdated(ctx context.Context, payload any) error {
	p, ok := payload.(imagesUpdatedPayload)
	if !ok {
		return fmt.Errorf("images-updated: unexpected payload %T", payload)
	}
	updates := make([]model.ImageUpdate, 0, len(p.ImageIDs))
	for _, id := range p.ImageIDs {
		old := p.OldCameraID
		updates = append(updates, model.ImageUpdate{ImageID: id, CameraID: &old})
	}
	_, err := s.images.BulkWriteImages(ctx, updates)
	return err
}

// compensateImagesRemapped re-runs the re-mapper with the original
// source config so the images fall back into the source's windows. The
// query targets QueryCameraID because the relabel has not been reversed
// yet when this inverse fires.
func (s *Service) compensateImagesRemapped(ctx context.Context, payload any) error {
	p, ok := payload.(imagesRemappedPayload)
	if !ok {
		return fmt.Errorf("images-remapped-to-target-deps: unexpected payload %T", payload)
	}
	cfg := p.SourceConfig
	cfg.ID = p.QueryCameraID
	_, err := s.remapOnce(ctx, p.ProjectID, cfg)
	return err
}

// activateRegistration makes projectID the sole active registration,
// appending one if the camera has never seen the project. An empty
// projectID deactivates everything.
func activateRegistration(cam *model.WirelessCamera, projectID string) {
	found := false
	for i := range cam.Registrations {
		active := projectID != "" && cam.Registrations[i].ProjectID == projectID
		cam.Registrations[i].Active = active
		if active {
			found = true
		}
	}
	if projectID != "" && !found {
		cam.Registrations = append(cam.Registrations, model.ProjectRegistration{ProjectID: projectID, Active: true})
	}
}
