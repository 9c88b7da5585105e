package model

import (
	"errors"
	"time"
)

// ErrNoDocument is the storage-layer sentinel for a lookup that matched
// nothing. Workflow code translates it into a domain NotFoundError with
// resource context attached.
var ErrNoDocument = errors.New("no matching document")

// ErrStaleWrite is returned by conditional whole-document saves when the
// document's revision changed between read and write. Workflows treat it
// as transient: the bounded retry re-runs the unit from fresh reads.
var ErrStaleWrite = errors.New("stale write: document revision changed")

// ImageSelector describes a streaming image query. From/To bound
// DateTimeOriginal as a half-open instant interval [From, To); a nil
// bound leaves that side open.
type ImageSelector struct {
	ProjectID string
	CameraID  string
	From      *time.Time
	To        *time.Time
}

// ImageUpdate is one staged per-image field update for a bulk write.
// Nil fields are left untouched. Each update is atomic on its own; the
// batch as a whole carries no atomicity guarantee.
type ImageUpdate struct {
	ImageID          string
	CameraID         *string
	DeploymentID     *string
	Timezone         *string
	DateTimeOriginal *time.Time
}

// ImageCursor streams images matching a selector without materializing
// the result set. Callers must Close and check Err after iteration.
type ImageCursor interface {
	Next() bool
	Image() Image
	Err() error
	Close() error
}
