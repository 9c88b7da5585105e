package catalog

import (
	"context"

	"github.com/wildeye/camtrap/internal/model"
)

// Capability names one permission a caller may hold. The set is checked
// explicitly before delegation; there is no dynamic interception.
type Capability string

const (
	CapDeploymentWrite Capability = "deployment:write"
	CapCameraManage    Capability = "camera:manage"
	CapTaskRun         Capability = "task:run"
)

// CapabilitySet is the capabilities granted to one caller.
type CapabilitySet map[Capability]bool

// Has reports whether the set grants cap.
func (cs CapabilitySet) Has(cap Capability) bool {
	return cs[cap]
}

// Operations is the caller-facing surface of the catalog engine.
// *Service implements it directly; *Guarded implements it with a
// capability check in front of every method.
type Operations interface {
	CreateDeployment(ctx context.Context, in CreateDeploymentInput) (*model.CameraConfig, error)
	UpdateDeployment(ctx context.Context, in UpdateDeploymentInput) (*model.CameraConfig, error)
	DeleteDeployment(ctx context.Context, in DeleteDeploymentInput) (*model.CameraConfig, error)
	RegisterCamera(ctx context.Context, in RegisterCameraInput) (*model.CameraConfig, error)
	UnregisterCamera(ctx context.Context, in UnregisterCameraInput) error
	UpdateCameraSerialNumber(ctx context.Context, in UpdateSerialNumberInput) (model.StandardResult, error)
	SubmitTask(ctx context.Context, taskType, projectID, user string, config map[string]any) (*model.Task, error)
	RunTask(ctx context.Context, taskID string) (*model.Task, error)
	ReMapImages(ctx context.Context, projectID string, cfg model.CameraConfig) error
}

// Guarded decorates Operations with capability checks. Missing
// capabilities surface as ForbiddenError before any work happens.
type Guarded struct {
	next Operations
	caps CapabilitySet
}

// NewGuarded wraps ops so every method requires its capability.
func NewGuarded(ops Operations, caps CapabilitySet) *Guarded {
	return &Guarded{next: ops, caps: caps}
}

func (g *Guarded) require(cap Capability) error {
	if !g.caps.Has(cap) {
		return &ForbiddenError{Reason: "missing capability " + string(cap)}
	}
	return nil
}

func (g *Guarded) CreateDeployment(ctx context.Context, in CreateDeploymentInput) (*model.CameraConfig, error) {
	if err := g.require(CapDeploymentWrite); err != nil {
		return nil, err
	}
	return g.next.CreateDeployment(ctx, in)
}

func (g *Guarded) UpdateDeployment(ctx context.Context, in UpdateDeploymentInput) (*model.CameraConfig, error) {
	if err := g.require(CapDeploymentWrite); err != nil {
		return nil, err
	}
	return g.next.UpdateDeployment(ctx, in)
}

func (g *Guarded) DeleteDeployment(ctx context.Context, in DeleteDeploymentInput) (*model.CameraConfig, error) {
	if err := g.require(CapDeploymentWrite); err != nil {
		return nil, err
	}
	return g.next.DeleteDeployment(ctx, in)
}

func (g *Guarded) RegisterCamera(ctx context.Context, in RegisterCameraInput) (*model.CameraConfig, error) {
	if err := g.require(CapCameraManage); err != nil {
		return nil, err
	}
	return g.next.RegisterCamera(ctx, in)
}

func (g *Guarded) UnregisterCamera(ctx context.Context, in UnregisterCameraInput) error {
	if err := g.require(CapCameraManage); err != nil {
		return err
	}
	return g.next.UnregisterCamera(ctx, in)
}

func (g *Guarded) UpdateCameraSerialNumber(ctx context.Context, in UpdateSerialNumberInput) (model.StandardResult, error) {
	if err := g.require(CapCameraManage); err != nil {
		return model.StandardResult{}, err
	}
	return g.next.UpdateCameraSerialNumber(ctx, in)
}

func (g *Guarded) SubmitTask(ctx context.Context, taskType, projectID, user string, config map[string]any) (*model.Task, error) {
	if err := g.require(CapTaskRun); err != nil {
		return nil, err
	}
	return g.next.SubmitTask(ctx, taskType, projectID, user, config)
}

func (g *Guarded) RunTask(ctx context.Context, taskID string) (*model.Task, error) {
	if err := g.require(CapTaskRun); err != nil {
		return nil, err
	}
	return g.next.RunTask(ctx, taskID)
}

func (g *Guarded) ReMapImages(ctx context.Context, projectID string, cfg model.CameraConfig) error {
	if err := g.require(CapDeploymentWrite); err != nil {
		return err
	}
	return g.next.ReMapImages(ctx, projectID, cfg)
}

var _ Operations = (*Service)(nil)
var _ Operations = (*Guarded)(nil)
