package catalog

import (
	"context"
	"log/slog"
)

// StepKind names one compensatable workflow step. Each workflow uses a
// small vocabulary of kinds and registers an inverse for each.
type StepKind string

const (
	// StepCameraCreated: a wireless camera document was inserted.
	// Inverse: delete the document.
	StepCameraCreated StepKind = "camera-created"

	// StepCameraRegistered: a camera's active registration moved to a
	// project. Inverse: restore the previously active registration.
	StepCameraRegistered StepKind = "camera-registered"

	// StepCamUnregistered: a camera's registration was deactivated.
	// Inverse: re-run register toward the original project.
	StepCamUnregistered StepKind = "cam-unregistered"

	// StepProjectSaved: a project document was overwritten. Inverse:
	// save the pre-mutation snapshot back and re-map the affected
	// camera's images under the snapshot's windows.
	StepProjectSaved StepKind = "project-saved"

	// StepImagesUpdated: a bulk image field change was applied.
	// Inverse: bulk-write the previous field values back.
	StepImagesUpdated StepKind = "images-updated"

	// StepImagesRemapped: images were re-mapped onto a merge target's
	// deployment windows. Inverse: re-run the re-mapper with the
	// original source camera config.
	StepImagesRemapped StepKind = "images-remapped-to-target-deps"
)

// CompensateFunc undoes one recorded step given the payload captured
// when the step committed.
type CompensateFunc func(ctx context.Context, payload any) error

type ledgerEntry struct {
	kind    StepKind
	payload any
}

// Ledger is the accumulate-then-unwind undo log behind every
// multi-resource workflow. A workflow records each step after it
// commits; if a later step fails, Unwind invokes the registered inverse
// of every recorded step in reverse-commit order.
//
// The ledger lives only for one workflow invocation. It is not
// persisted: if the process dies mid-workflow, no compensation runs and
// partial state remains. That gap is accepted; the outer task system
// records enough to notice (Task status stuck in RUNNING).
//
// Not safe for concurrent use; workflows are strictly sequential.
type Ledger struct {
	logger   *slog.Logger
	inverses map[StepKind]CompensateFunc
	entries  []ledgerEntry
}

// NewLedger builds a ledger over the given inverse registry.
func NewLedger(logger *slog.Logger, inverses map[StepKind]CompensateFunc) *Ledger {
	return &Ledger{logger: logger, inverses: inverses}
}

// Record appends a committed step. Call it only after the step's write
// has succeeded; a recorded step is assumed undoable.
func (l *Ledger) Record(kind StepKind, payload any) {
	l.entries = append(l.entries, ledgerEntry{kind: kind, payload: payload})
}

// Len returns the number of recorded steps.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Unwind compensates every recorded step in strict reverse-commit
// order. Compensation failures are collected and logged, never allowed
// to mask the workflow error that triggered the unwind; the caller
// always propagates its original error after calling Unwind.
//
// A step kind with no registered inverse is a programming error and is
// logged as such, then skipped.
func (l *Ledger) Unwind(ctx context.Context) []error {
	var failures []error
	for i := len(l.entries) - 1; i >= 0; i-- {
		entry := l.entries[i]
		inverse, ok := l.inverses[entry.kind]
		if !ok {
			l.logger.Error("no compensation registered for step", "step", string(entry.kind))
			continue
		}
		if err := inverse(ctx, entry.payload); err != nil {
			l.logger.Error("compensation failed",
				"step", string(entry.kind),
				"error", err)
			failures = append(failures, err)
			continue
		}
		l.logger.Info("compensated step", "step", string(entry.kind))
	}
	if len(failures) > 0 {
		l.logger.Error("unwind left partial state", "failed_steps", len(failures), "total_steps", len(l.entries))
	}
	l.entries = l.entries[:0]
	return failures
}
