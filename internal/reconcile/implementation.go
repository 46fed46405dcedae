// internal/reconcile/implementation.go
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"shelfwatch/internal/catalog"
	"shelfwatch/internal/tracking"
)

// ErrRunInProgress is returned when a run is triggered while another is
// still executing. Two overlapping runs could observe the same stale
// status and double-notify.
var ErrRunInProgress = errors.New("reconciliation run already in progress")

// service implements Service. It processes eligible books strictly
// sequentially: the limiter paces catalog queries and per-item state
// never crosses between books.
type service struct {
	store     tracking.Store
	provider  CatalogProvider
	notifier  Notifier // nil when notifications are not configured
	recipient string
	limiter   *rate.Limiter
	tracer    trace.Tracer
	now       func() time.Time
	running   atomic.Bool
}

// NewService creates a reconciliation runner. queryInterval is the
// fixed delay between consecutive catalog queries; zero or negative
// disables pacing (tests).
func NewService(store tracking.Store, provider CatalogProvider, notifier Notifier, recipient string, queryInterval time.Duration) Service {
	limit := rate.Inf
	if queryInterval > 0 {
		limit = rate.Every(queryInterval)
	}
	return &service{
		store:     store,
		provider:  provider,
		notifier:  notifier,
		recipient: recipient,
		limiter:   rate.NewLimiter(limit, 1),
		tracer:    otel.Tracer("shelfwatch/reconcile"),
		now:       time.Now,
	}
}

// Run executes one reconciliation pass over every eligible book and
// always returns a report unless the eligibility query itself fails.
func (s *service) Run(ctx context.Context) (*RunReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)

	ctx, span := s.tracer.Start(ctx, "reconcile.run")
	defer span.End()

	today := midnightUTC(s.now())
	books, err := s.store.ListDueForCheck(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("list due books: %w", err)
	}

	report := &RunReport{
		StartedAt: s.now().UTC(),
		Counts:    make(map[OutcomeKind]int),
	}
	for i, book := range books {
		if i > 0 {
			if err := s.limiter.Wait(ctx); err != nil {
				// Context gone: stop here. Processed books are already
				// persisted; the rest stay untouched and are picked up
				// by the next run.
				break
			}
		}
		report.add(s.checkBook(ctx, book))
	}
	report.FinishedAt = s.now().UTC()

	span.SetAttributes(
		attribute.Int("books.eligible", len(books)),
		attribute.Int("books.changed", report.Counts[OutcomeStatusChanged]),
	)
	return report, nil
}

// checkBook reconciles one book. Every failure inside stays inside: the
// returned outcome is the only way it surfaces.
func (s *service) checkBook(ctx context.Context, book *tracking.Book) BookOutcome {
	outcome := BookOutcome{BookID: book.ID, Title: book.Title, OldStatus: book.Status}

	results, err := s.provider.Search(ctx, book.Title)
	if err != nil {
		outcome.Kind = OutcomeSearchFailed
		outcome.Detail = err.Error()
		return outcome
	}
	if len(results) == 0 {
		outcome.Kind = OutcomeNotFound
		return outcome
	}

	decision := catalog.Match(catalog.MatchQuery{
		Title:       book.Title,
		Identifiers: book.IdentifierSet(),
	}, results)
	plan := planCheck(book, decision, s.now().UTC())

	if !plan.Changed {
		if err := s.store.MarkChecked(ctx, book.ID, plan.CheckedAt, plan.CatalogItemID); err != nil {
			outcome.Kind = OutcomeUpdateFailed
			outcome.Detail = err.Error()
			return outcome
		}
		outcome.Kind = OutcomeUnchanged
		return outcome
	}

	upd := tracking.CheckUpdate{
		Status:        plan.NewStatus,
		CatalogItemID: plan.CatalogItemID,
		CheckedAt:     plan.CheckedAt,
	}
	if err := s.store.UpdateAvailability(ctx, book.ID, upd); err != nil {
		outcome.Kind = OutcomeUpdateFailed
		outcome.Detail = err.Error()
		return outcome
	}

	oldStatus := book.Status
	change := &tracking.StatusChange{
		BookID:    book.ID,
		OldStatus: &oldStatus,
		NewStatus: plan.NewStatus,
		Source:    tracking.SourceCatalogCheck,
		ChangedAt: plan.CheckedAt,
	}
	if err := s.store.AppendStatusChange(ctx, change); err != nil {
		outcome.Kind = OutcomeUpdateFailed
		outcome.Detail = fmt.Sprintf("status updated but audit append failed: %v", err)
		return outcome
	}

	s.dispatch(ctx, book, plan)

	outcome.Kind = OutcomeStatusChanged
	outcome.NewStatus = plan.NewStatus
	return outcome
}

// dispatch executes the plan's notification instruction, best-effort.
func (s *service) dispatch(ctx context.Context, book *tracking.Book, plan checkPlan) {
	if plan.Notification == nil || s.notifier == nil {
		return
	}
	if _, err := s.notifier.Send(ctx, s.recipient, plan.Notification.Subject, plan.Notification.HTML); err != nil {
		log.Printf("notification for %q failed: %v", book.Title, err)
		return
	}
	if err := s.store.MarkNotified(ctx, book.ID, plan.CheckedAt); err != nil {
		log.Printf("failed to record notification time for %q: %v", book.Title, err)
	}
}

// planCheck decides what one observation does to a book. It performs no
// I/O; the runner applies the result.
func planCheck(book *tracking.Book, decision catalog.MatchDecision, now time.Time) checkPlan {
	plan := checkPlan{
		NewStatus: DeriveStatus(decision),
		CheckedAt: now,
	}
	if decision.Matched {
		plan.CatalogItemID = decision.Result.ID
	}
	if plan.NewStatus != book.Status {
		plan.Changed = true
		plan.Notification = changeNotification(book, plan.NewStatus)
	}
	return plan
}

func changeNotification(book *tracking.Book, next tracking.LibraryStatus) *Notification {
	return &Notification{
		Subject: fmt.Sprintf("%q is now %s", book.Title, next.Label()),
		HTML: fmt.Sprintf(
			"<p><strong>%s</strong> by %s moved from <em>%s</em> to <em>%s</em> at your library.</p>",
			html.EscapeString(book.Title), html.EscapeString(book.Author),
			book.Status.Label(), next.Label(),
		),
	}
}

func midnightUTC(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
