package model

import "time"

// DefaultProjectID is the fallback owner every wireless camera keeps a
// registration for. Unregistering from a real project reactivates it.
const DefaultProjectID = "default_project"

// DefaultDeploymentName names the always-present fallback deployment.
// It has no start date, is never editable, and catches any image that
// falls outside every dated window.
const DefaultDeploymentName = "default"

// Project owns camera configs and saved views. It is persisted as one
// document; Rev is the optimistic-concurrency counter maintained by the
// store and is not part of the document body.
type Project struct {
	ID            string         `json:"_id"`
	Name          string         `json:"name"`
	Timezone      string         `json:"timezone"`
	CameraConfigs []CameraConfig `json:"cameraConfigs"`
	Views         []View         `json:"views"`

	Rev int64 `json:"-"`
}

// CameraConfig binds a camera identifier (its serial number) to the
// ordered deployment list for that camera within one project.
//
// Invariant: exactly one deployment named "default" with Editable=false
// and no StartDate, pinned at index 0. All other deployments carry a
// StartDate and the list is ascending by StartDate.
type CameraConfig struct {
	ID          string       `json:"_id"`
	Deployments []Deployment `json:"deployments"`
}

// Deployment is a named placement of a camera at a location/timezone,
// active from StartDate until the next deployment's StartDate.
type Deployment struct {
	ID        string     `json:"_id"`
	Name      string     `json:"name"`
	Timezone  string     `json:"timezone"`
	StartDate *time.Time `json:"startDate,omitempty"`
	Editable  bool       `json:"editable"`
}

// IsDefault reports whether this is the fallback deployment.
func (d Deployment) IsDefault() bool {
	return d.Name == DefaultDeploymentName
}

// View is a saved filter preset on a project.
type View struct {
	ID       string  `json:"_id"`
	Name     string  `json:"name"`
	Editable bool    `json:"editable"`
	Filters  Filters `json:"filters"`
}

// Filters holds the filter fields of a saved view. A nil Deployments
// slice means the view does not filter on deployments at all, which is
// distinct from filtering down to zero deployments.
type Filters struct {
	Cameras     []string `json:"cameras,omitempty"`
	Deployments []string `json:"deployments,omitempty"`
	Labels      []string `json:"labels,omitempty"`
}

// WirelessCamera is the project-independent identity record of a
// self-registering camera.
//
// Invariant: at most one registration is active at any time, and the
// registration list always contains an entry for DefaultProjectID.
type WirelessCamera struct {
	ID            string                `json:"_id"`
	Make          string                `json:"make"`
	Registrations []ProjectRegistration `json:"projRegistrations"`

	Rev int64 `json:"-"`
}

// ProjectRegistration records one project a wireless camera has been
// registered to. Registrations are deactivated, never deleted.
type ProjectRegistration struct {
	ProjectID string `json:"projectId"`
	Active    bool   `json:"active"`
}

// ActiveRegistration returns the currently active registration, or nil
// if every registration is inactive.
func (c *WirelessCamera) ActiveRegistration() *ProjectRegistration {
	for i := range c.Registrations {
		if c.Registrations[i].Active {
			return &c.Registrations[i]
		}
	}
	return nil
}

// Image is one catalog record. DateTimeOriginal is the capture instant;
// Timezone is the IANA zone that instant's wall-clock reading is
// expressed in. DeploymentID must resolve to a deployment inside the
// CameraConfig identified by CameraID within the image's project.
type Image struct {
	ID               string    `json:"_id"`
	ProjectID        string    `json:"projectId"`
	CameraID         string    `json:"cameraId"`
	DeploymentID     string    `json:"deploymentId"`
	DateTimeOriginal time.Time `json:"dateTimeOriginal"`
	Timezone         string    `json:"timezone"`
	DateAdded        time.Time `json:"dateAdded"`
}

// TaskStatus is the lifecycle state of an async task.
type TaskStatus string

const (
	TaskSubmitted TaskStatus = "SUBMITTED"
	TaskRunning   TaskStatus = "RUNNING"
	TaskComplete  TaskStatus = "COMPLETE"
	TaskFail      TaskStatus = "FAIL"
)

// Task is the persisted record of one asynchronous workflow invocation.
// Output holds either the workflow's result or a serialized error; it is
// the only durable record of what the async variant of a workflow did.
type Task struct {
	ID        string         `json:"_id"`
	Type      string         `json:"type"`
	ProjectID string         `json:"projectId"`
	User      string         `json:"user"`
	Status    TaskStatus     `json:"status"`
	Config    map[string]any `json:"config"`
	Output    string         `json:"output,omitempty"`
	Created   time.Time      `json:"created"`
	Updated   time.Time      `json:"updated"`
}

// StandardResult is the caller-facing outcome of the serial-number
// workflow.
type StandardResult struct {
	IsOK    bool   `json:"isOk"`
	Message string `json:"message,omitempty"`
}

// NewDefaultDeployment builds the fallback deployment for a fresh
// camera config. Its timezone starts as the project timezone.
func NewDefaultDeployment(id, projectTimezone string) Deployment {
	return Deployment{
		ID:       id,
		Name:     DefaultDeploymentName,
		Timezone: projectTimezone,
		Editable: false,
	}
}

// FindCameraConfig returns a pointer into the project's config list for
// the given camera id, or nil if the camera has no config here.
func (p *Project) FindCameraConfig(cameraID string) *CameraConfig {
	for i := range p.CameraConfigs {
		if p.CameraConfigs[i].ID == cameraID {
			return &p.CameraConfigs[i]
		}
	}
	return nil
}
