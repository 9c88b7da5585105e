package catalog

import (
	"errors"
	"fmt"
)

// NotFoundError indicates a referenced project, camera, config, or
// deployment does not exist.
type NotFoundError struct {
	// Resource names the missing thing ("project", "camera config", ...).
	Resource string

	// ID identifies which one, when known.
	ID string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// ForbiddenError indicates an operation the caller may never perform,
// such as editing the default deployment or a non-editable view.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return "forbidden: " + e.Reason
}

// CameraRegistrationError indicates an invalid registration or merge
// state, e.g. registering a camera already owned by another project.
type CameraRegistrationError struct {
	CameraID string
	Reason   string
}

func (e *CameraRegistrationError) Error() string {
	if e.CameraID != "" {
		return fmt.Sprintf("camera %s: %s", e.CameraID, e.Reason)
	}
	return e.Reason
}

// InternalServerError wraps anything unrecognized, including storage
// failures that survived the retry bound. It is the only non-domain
// error callers ever see.
type InternalServerError struct {
	Op  string
	Err error
}

func (e *InternalServerError) Error() string {
	return fmt.Sprintf("internal error in %s: %v", e.Op, e.Err)
}

func (e *InternalServerError) Unwrap() error {
	return e.Err
}

// IsDomainError reports whether err is one of the three domain error
// kinds. Domain errors short-circuit bounded retry and are surfaced to
// callers unwrapped.
func IsDomainError(err error) bool {
	var nf *NotFoundError
	var fb *ForbiddenError
	var cr *CameraRegistrationError
	return errors.As(err, &nf) || errors.As(err, &fb) || errors.As(err, &cr)
}

// wrapInternal wraps err as an InternalServerError unless it already is
// one, or is a domain error, in which case it passes through unchanged.
func wrapInternal(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomainError(err) {
		return err
	}
	var ise *InternalServerError
	if errors.As(err, &ise) {
		return err
	}
	return &InternalServerError{Op: op, Err: err}
}
