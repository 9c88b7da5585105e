// Package catalog implements the consistency engine of the camera-trap
// catalog: deployment window assignment, the bulk re-mapper that
// re-derives image→deployment assignments when windows change, the
// compensation ledger that approximates atomicity across independent
// collections, and the camera-identity workflows built on top of them.
//
// # Execution model
//
// Each workflow runs to completion within a single logical execution.
// Steps are strictly sequential because later steps read state written
// by earlier ones. Storage operations sit behind small interfaces
// (ProjectStore, CameraStore, ImageStore, TaskStore) offering only
// per-collection, per-operation atomicity; there is no transaction
// spanning them, which is why multi-resource workflows carry a Ledger.
//
// # Failure model
//
// Bounded retry wraps the innermost storage units; the ledger wraps the
// outer workflow. Domain errors (NotFoundError, ForbiddenError,
// CameraRegistrationError) bail out of retry immediately. Anything else
// is retried up to the bound and then surfaced as InternalServerError.
// The ledger is in-memory only: a process crash mid-workflow leaves
// partial state behind, and concurrent edits to the same project are
// serialized only by the document revision check, not by this package.
package catalog
