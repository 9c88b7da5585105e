// Package model defines the document types of the camera-trap catalog.
//
// Three denormalized facts flow through these types and must stay
// consistent as deployments, registrations, and serial numbers change:
//
//   - which physical camera produced an image (Image.CameraID)
//   - which deployment window the image belongs to (Image.DeploymentID)
//   - which project owns it (Image.ProjectID)
//
// Projects and wireless cameras are whole documents with read-modify-save
// semantics and an optimistic-concurrency revision counter. Images are
// flat records addressed individually by the bulk-write machinery.
//
// The package also provides RFC 8785 canonical JSON serialization, used
// wherever byte-stable output matters (task outputs, golden traces).
package model
