package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wildeye/camtrap/internal/model"
)

// MemStore is an in-memory document store with the same per-collection,
// per-operation contract as the sqlite store. Every operation appends a
// line to Trace, so tests can assert on exact operation sequences and
// golden files can pin them.
//
// Failures are injected per operation name with QueueFailure; each
// queued failure is consumed by one call, which makes retry-then-
// succeed scenarios expressible.
type MemStore struct {
	mu       sync.Mutex
	projects map[string]string // id -> json doc
	projRevs map[string]int64
	cameras  map[string]string
	camRevs  map[string]int64
	images   map[string]model.Image
	tasks    map[string]model.Task

	trace    []string
	failures map[string][]error
}

// NewMemStore creates an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		projects: map[string]string{},
		projRevs: map[string]int64{},
		cameras:  map[string]string{},
		camRevs:  map[string]int64{},
		images:   map[string]model.Image{},
		tasks:    map[string]model.Task{},
		failures: map[string][]error{},
	}
}

// QueueFailure arranges for the next call to op to fail with err. Call
// repeatedly to fail several consecutive calls.
func (m *MemStore) QueueFailure(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op] = append(m.failures[op], err)
}

// Trace returns the recorded operation log.
func (m *MemStore) Trace() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.trace...)
}

// ResetTrace clears the operation log, keeping the data.
func (m *MemStore) ResetTrace() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trace = nil
}

// record appends a trace line and pops a queued failure, if any.
func (m *MemStore) record(op, detail string) error {
	line := op
	if detail != "" {
		line = op + " " + detail
	}
	m.trace = append(m.trace, line)
	if q := m.failures[op]; len(q) > 0 {
		err := q[0]
		m.failures[op] = q[1:]
		return err
	}
	return nil
}

// --- ProjectStore ---

func (m *MemStore) GetProject(ctx context.Context, id string) (*model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("projects.get", "id="+id); err != nil {
		return nil, err
	}
	doc, ok := m.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", id, model.ErrNoDocument)
	}
	var p model.Project
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, err
	}
	p.Rev = m.projRevs[id]
	return &p, nil
}

func (m *MemStore) CreateProject(ctx context.Context, p *model.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("projects.create", "id="+p.ID); err != nil {
		return err
	}
	if _, ok := m.projects[p.ID]; ok {
		return fmt.Errorf("project %s already exists", p.ID)
	}
	doc, err := json.Marshal(p)
	if err != nil {
		return err
	}
	m.projects[p.ID] = string(doc)
	m.projRevs[p.ID] = 1
	p.Rev = 1
	return nil
}

func (m *MemStore) SaveProject(ctx context.Context, p *model.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("projects.save", "id="+p.ID); err != nil {
		return err
	}
	if _, ok := m.projects[p.ID]; !ok {
		return fmt.Errorf("project %s: %w", p.ID, model.ErrNoDocument)
	}
	if m.projRevs[p.ID] != p.Rev {
		return fmt.Errorf("project %s: %w", p.ID, model.ErrStaleWrite)
	}
	doc, err := json.Marshal(p)
	if err != nil {
		return err
	}
	m.projects[p.ID] = string(doc)
	m.projRevs[p.ID]++
	p.Rev++
	return nil
}

// --- CameraStore ---

func (m *MemStore) GetWirelessCamera(ctx context.Context, id string) (*model.WirelessCamera, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("cameras.get", "id="+id); err != nil {
		return nil, err
	}
	doc, ok := m.cameras[id]
	if !ok {
		return nil, fmt.Errorf("wireless camera %s: %w", id, model.ErrNoDocument)
	}
	var c model.WirelessCamera
	if err := json.Unmarshal([]byte(doc), &c); err != nil {
		return nil, err
	}
	c.Rev = m.camRevs[id]
	return &c, nil
}

func (m *MemStore) CreateWirelessCamera(ctx context.Context, c *model.WirelessCamera) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("cameras.create", "id="+c.ID); err != nil {
		return err
	}
	if _, ok := m.cameras[c.ID]; ok {
		return fmt.Errorf("wireless camera %s already exists", c.ID)
	}
	doc, err := json.Marshal(c)
	if err != nil {
		return err
	}
	m.cameras[c.ID] = string(doc)
	m.camRevs[c.ID] = 1
	c.Rev = 1
	return nil
}

func (m *MemStore) SaveWirelessCamera(ctx context.Context, c *model.WirelessCamera) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("cameras.save", "id="+c.ID); err != nil {
		return err
	}
	if _, ok := m.cameras[c.ID]; !ok {
		return fmt.Errorf("wireless camera %s: %w", c.ID, model.ErrNoDocument)
	}
	if m.camRevs[c.ID] != c.Rev {
		return fmt.Errorf("wireless camera %s: %w", c.ID, model.ErrStaleWrite)
	}
	doc, err := json.Marshal(c)
	if err != nil {
		return err
	}
	m.cameras[c.ID] = string(doc)
	m.camRevs[c.ID]++
	c.Rev++
	return nil
}

func (m *MemStore) DeleteWirelessCamera(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("cameras.delete", "id="+id); err != nil {
		return err
	}
	delete(m.cameras, id)
	delete(m.camRevs, id)
	return nil
}

// --- ImageStore ---

// AddImage seeds an image directly, without touching the trace.
func (m *MemStore) AddImage(img model.Image) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[img.ID] = img
}

// Image returns a seeded or updated image by id.
func (m *MemStore) Image(id string) (model.Image, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	img, ok := m.images[id]
	return img, ok
}

// ImagesByCamera returns all images carrying the given camera id.
func (m *MemStore) ImagesByCamera(projectID, cameraID string) []model.Image {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Image
	for _, img := range m.images {
		if img.ProjectID == projectID && img.CameraID == cameraID {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *MemStore) FindImages(ctx context.Context, sel model.ImageSelector) (model.ImageCursor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("images.find", fmt.Sprintf("camera=%s from=%s to=%s",
		sel.CameraID, formatBound(sel.From), formatBound(sel.To))); err != nil {
		return nil, err
	}
	var matched []model.Image
	for _, img := range m.images {
		if img.ProjectID != sel.ProjectID || img.CameraID != sel.CameraID {
			continue
		}
		if sel.From != nil && img.DateTimeOriginal.Before(*sel.From) {
			continue
		}
		if sel.To != nil && !img.DateTimeOriginal.Before(*sel.To) {
			continue
		}
		matched = append(matched, img)
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.DateTimeOriginal.Equal(b.DateTimeOriginal) {
			return a.DateTimeOriginal.Before(b.DateTimeOriginal)
		}
		return a.ID < b.ID
	})
	return &sliceCursor{images: matched}, nil
}

func (m *MemStore) RelabelImages(ctx context.Context, projectID, oldCameraID, newCameraID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, img := range m.images {
		if img.ProjectID == projectID && img.CameraID == oldCameraID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if err := m.record("images.relabel", fmt.Sprintf("old=%s new=%s n=%d", oldCameraID, newCameraID, len(ids))); err != nil {
		return nil, err
	}
	for _, id := range ids {
		img := m.images[id]
		img.CameraID = newCameraID
		m.images[id] = img
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (m *MemStore) BulkWriteImages(ctx context.Context, updates []model.ImageUpdate) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("images.bulkWrite", fmt.Sprintf("n=%d", len(updates))); err != nil {
		return 0, err
	}
	var applied int64
	for _, upd := range updates {
		img, ok := m.images[upd.ImageID]
		if !ok {
			continue
		}
		if upd.CameraID != nil {
			img.CameraID = *upd.CameraID
		}
		if upd.DeploymentID != nil {
			img.DeploymentID = *upd.DeploymentID
		}
		if upd.Timezone != nil {
			img.Timezone = *upd.Timezone
		}
		if upd.DateTimeOriginal != nil {
			img.DateTimeOriginal = *upd.DateTimeOriginal
		}
		m.images[upd.ImageID] = img
		applied++
	}
	return applied, nil
}

// --- TaskStore ---

func (m *MemStore) CreateTask(ctx context.Context, t *model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("tasks.create", "id="+t.ID); err != nil {
		return err
	}
	m.tasks[t.ID] = *t
	return nil
}

func (m *MemStore) GetTask(ctx context.Context, id string) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("tasks.get", "id="+id); err != nil {
		return nil, err
	}
	t, ok := m.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, model.ErrNoDocument)
	}
	out := t
	return &out, nil
}

func (m *MemStore) SaveTask(ctx context.Context, t *model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("tasks.save", fmt.Sprintf("id=%s status=%s", t.ID, t.Status)); err != nil {
		return err
	}
	if _, ok := m.tasks[t.ID]; !ok {
		return fmt.Errorf("task %s: %w", t.ID, model.ErrNoDocument)
	}
	m.tasks[t.ID] = *t
	return nil
}

func formatBound(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

type sliceCursor struct {
	images []model.Image
	idx    int
	cur    model.Image
}

func (c *sliceCursor) Next() bool {
	if c.idx >= len(c.images) {
		return false
	}
	c.cur = c.images[c.idx]
	c.idx++
	return true
}

func (c *sliceCursor) Image() model.Image { return c.cur }
func (c *sliceCursor) Err() error         { return nil }
func (c *sliceCursor) Close() error       { return nil }
