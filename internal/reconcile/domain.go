// internal/reconcile/domain.go
package reconcile

import (
	"time"

	"github.com/google/uuid"

	"shelfwatch/internal/tracking"
)

// OutcomeKind classifies what one reconciliation pass did to one book.
type OutcomeKind string

const (
	OutcomeStatusChanged OutcomeKind = "status-changed"
	OutcomeUnchanged     OutcomeKind = "unchanged"
	OutcomeNotFound      OutcomeKind = "not-found"
	OutcomeSearchFailed  OutcomeKind = "search-failed"
	OutcomeUpdateFailed  OutcomeKind = "update-failed"
	OutcomeError         OutcomeKind = "error"
)

// BookOutcome records what happened to one book in a run.
type BookOutcome struct {
	BookID    uuid.UUID              `json:"book_id"`
	Title     string                 `json:"title"`
	Kind      OutcomeKind            `json:"kind"`
	OldStatus tracking.LibraryStatus `json:"old_status,omitempty"`
	NewStatus tracking.LibraryStatus `json:"new_status,omitempty"`
	Detail    string                 `json:"detail,omitempty"`
}

// RunReport is the sole surface for run results and per-item failures.
type RunReport struct {
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
	Checked    int                 `json:"checked"`
	Counts     map[OutcomeKind]int `json:"counts"`
	Outcomes   []BookOutcome       `json:"outcomes"`
}

func (r *RunReport) add(outcome BookOutcome) {
	r.Checked++
	r.Counts[outcome.Kind]++
	r.Outcomes = append(r.Outcomes, outcome)
}

// Notification is an instruction to send one change notice. The
// decision logic returns it; the dispatch step executes it, keeping the
// matching and derivation path free of I/O.
type Notification struct {
	Subject string
	HTML    string
}

// checkPlan is the pure result of one observation: the write to apply,
// whether the transition is audited, and whether a notice goes out.
type checkPlan struct {
	NewStatus     tracking.LibraryStatus
	CatalogItemID string
	CheckedAt     time.Time
	Changed       bool
	Notification  *Notification
}
