package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wildeye/camtrap/internal/model"
)

// Task types accepted by the runner. Each maps to one workflow; the
// task's Config carries the workflow input.
const (
	TaskCreateDeployment   = "CreateDeployment"
	TaskUpdateDeployment   = "UpdateDeployment"
	TaskDeleteDeployment   = "DeleteDeployment"
	TaskUpdateSerialNumber = "UpdateSerialNumber"
)

// SubmitTask persists a new task record in SUBMITTED state. The record
// is the only durable trace of the async workflow variant: delivery of
// the task to a runner is at-least-once at best and is someone else's
// problem.
func (s *Service) SubmitTask(ctx context.Context, taskType, projectID, user string, config map[string]any) (*model.Task, error) {
	switch taskType {
	case TaskCreateDeployment, TaskUpdateDeployment, TaskDeleteDeployment, TaskUpdateSerialNumber:
	default:
		return nil, &NotFoundError{Resource: "task type", ID: taskType}
	}

	now := s.clock.Now()
	t := &model.Task{
		ID:        s.ids.Generate(),
		Type:      taskType,
		ProjectID: projectID,
		User:      user,
		Status:    model.TaskSubmitted,
		Config:    config,
		Created:   now,
		Updated:   now,
	}
	if err := s.tasks.CreateTask(ctx, t); err != nil {
		return nil, wrapInternal("create-task", err)
	}
	return t, nil
}

// RunTask executes one submitted task: SUBMITTED → RUNNING, then the
// workflow, then COMPLETE with the result or FAIL with the serialized
// error in Output. The error, if any, is also returned so a synchronous
// caller sees it; asynchronous callers read Output instead.
func (s *Service) RunTask(ctx context.Context, taskID string) (*model.Task, error) {
	t, err := s.tasks.GetTask(ctx, taskID)
	if errors.Is(err, model.ErrNoDocument) {
		return nil, &NotFoundError{Resource: "task", ID: taskID}
	}
	if err != nil {
		return nil, wrapInternal("get-task", err)
	}
	if t.Status != model.TaskSubmitted {
		return nil, &ForbiddenError{Reason: fmt.Sprintf("task %s is %s, not %s", taskID, t.Status, model.TaskSubmitted)}
	}

	t.Status = model.TaskRunning
	t.Updated = s.clock.Now()
	if err := s.tasks.SaveTask(ctx, t); err != nil {
		return nil, wrapInternal("save-task", err)
	}

	output, runErr := s.dispatchTask(ctx, t)
	if runErr != nil {
		t.Status = model.TaskFail
		t.Output = serializeTaskError(runErr)
	} else {
		t.Status = model.TaskComplete
		t.Output = output
	}
	t.Updated = s.clock.Now()
	if err := s.tasks.SaveTask(ctx, t); err != nil {
		return nil, wrapInternal("save-task", err)
	}
	return t, runErr
}

// dispatchTask routes a task to its workflow and serializes the result
// as canonical JSON for a byte-stable Output field.
func (s *Service) dispatchTask(ctx context.Context, t *model.Task) (string, error) {
	switch t.Type {
	case TaskCreateDeployment:
		var in CreateDeploymentInput
		if err := decodeTaskConfig(t.Config, &in); err != nil {
			return "", err
		}
		cfg, err := s.CreateDeployment(ctx, in)
		if err != nil {
			return "", err
		}
		return configSummary(cfg)
	case TaskUpdateDeployment:
		var in UpdateDeploymentInput
		if err := decodeTaskConfig(t.Config, &in); err != nil {
			return "", err
		}
		cfg, err := s.UpdateDeployment(ctx, in)
		if err != nil {
			return "", err
		}
		return configSummary(cfg)
	case TaskDeleteDeployment:
		var in DeleteDeploymentInput
		if err := decodeTaskConfig(t.Config, &in); err != nil {
			return "", err
		}
		cfg, err := s.DeleteDeployment(ctx, in)
		if err != nil {
			return "", err
		}
		return configSummary(cfg)
	case TaskUpdateSerialNumber:
		var in UpdateSerialNumberInput
		if err := decodeTaskConfig(t.Config, &in); err != nil {
			return "", err
		}
		res, err := s.UpdateCameraSerialNumber(ctx, in)
		if err != nil {
			return "", err
		}
		data, err := model.MarshalCanonical(map[string]any{
			"isOk":    res.IsOK,
			"message": res.Message,
		})
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", &NotFoundError{Resource: "task type", ID: t.Type}
	}
}

// decodeTaskConfig maps the loosely-typed task config onto a workflow
// input struct via a JSON round trip.
func decodeTaskConfig(config map[string]any, out any) error {
	data, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("encoding task config: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding task config: %w", err)
	}
	return nil
}

func configSummary(cfg *model.CameraConfig) (string, error) {
	ids := make([]any, len(cfg.Deployments))
	for i, d := range cfg.Deployments {
		ids[i] = d.ID
	}
	data, err := model.MarshalCanonical(map[string]any{
		"cameraId":    cfg.ID,
		"deployments": ids,
	})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// serializeTaskError records a failed workflow in the task output. The
// code distinguishes domain failures from wrapped internals.
func serializeTaskError(err error) string {
	code := "INTERNAL_SERVER_ERROR"
	var nf *NotFoundError
	var fb *ForbiddenError
	var cr *CameraRegistrationError
	switch {
	case errors.As(err, &nf):
		code = "NOT_FOUND"
	case errors.As(err, &fb):
		code = "FORBIDDEN"
	case errors.As(err, &cr):
		code = "CAMERA_REGISTRATION_ERROR"
	}
	data, mErr := model.MarshalCanonical(map[string]any{
		"code":  code,
		"error": err.Error(),
	})
	if mErr != nil {
		return fmt.Sprintf(`{"code":%q,"error":%q}`, code, err.Error())
	}
	return string(data)
}
