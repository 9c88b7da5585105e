package catalog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wildeye/camtrap/internal/model"
)

// ProjectStore is the project collection as consumed by workflows.
// Save is a whole-document conditional write: it fails with
// model.ErrStaleWrite when the document's revision moved underneath the
// caller, closing the read-modify-save lost-update race.
type ProjectStore interface {
	GetProject(ctx context.Context, id string) (*model.Project, error)
	CreateProject(ctx context.Context, p *model.Project) error
	SaveProject(ctx context.Context, p *model.Project) error
}

// CameraStore is the wireless camera identity collection.
type CameraStore interface {
	GetWirelessCamera(ctx context.Context, id string) (*model.WirelessCamera, error)
	CreateWirelessCamera(ctx context.Context, c *model.WirelessCamera) error
	SaveWirelessCamera(ctx context.Context, c *model.WirelessCamera) error
	DeleteWirelessCamera(ctx context.Context, id string) error
}

// ImageStore is the image collection. FindImages streams; RelabelImages
// reassigns camera ids and reports which images it touched so the
// change can be reversed precisely; BulkWrite applies staged per-image
// updates, each atomic on its own, the batch as a whole not.
type ImageStore interface {
	FindImages(ctx context.Context, sel model.ImageSelector) (model.ImageCursor, error)
	RelabelImages(ctx context.Context, projectID, oldCameraID, newCameraID string) ([]string, error)
	BulkWriteImages(ctx context.Context, updates []model.ImageUpdate) (int64, error)
}

// TaskStore persists async task records.
type TaskStore interface {
	CreateTask(ctx context.Context, t *model.Task) error
	GetTask(ctx context.Context, id string) (*model.Task, error)
	SaveTask(ctx context.Context, t *model.Task) error
}

// Clock abstracts time retrieval so workflows are deterministic in
// tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// IDGenerator mints document ids. UUIDv7Generator is the production
// implementation; tests inject fixed sequences.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 ids.
//
// Panics if UUID generation fails (should never happen in practice).
type UUIDv7Generator struct{}

func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Service composes the catalog workflows over the store interfaces.
// All methods are safe for concurrent use across different projects and
// cameras; overlapping edits to the same project serialize only through
// the document revision check.
type Service struct {
	projects ProjectStore
	cameras  CameraStore
	images   ImageStore
	tasks    TaskStore
	clock    Clock
	ids      IDGenerator
	logger   *slog.Logger
}

// NewService wires a catalog service. A nil logger falls back to
// slog.Default.
func NewService(projects ProjectStore, cameras CameraStore, images ImageStore, tasks TaskStore, clock Clock, ids IDGenerator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		projects: projects,
		cameras:  cameras,
		images:   images,
		tasks:    tasks,
		clock:    clock,
		ids:      ids,
		logger:   logger.With("component", "catalog.Service"),
	}
}

// getProject loads a project, translating the storage sentinel into the
// domain NotFoundError.
func (s *Service) getProject(ctx context.Context, id string) (*model.Project, error) {
	p, err := s.projects.GetProject(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNoDocument) {
			return nil, &NotFoundError{Resource: "project", ID: id}
		}
		return nil, err
	}
	return p, nil
}
