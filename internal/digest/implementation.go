// internal/digest/implementation.go
package digest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"shelfwatch/internal/tracking"
)

// ErrNotConfigured means the digest has no mailer to send through.
// Unlike a change notification, the digest exists only to be sent, so
// this is fatal at digest start and nothing is gathered.
var ErrNotConfigured = errors.New("digest mailer is not configured")

// service implements Service. It is read-only against the store; its
// only side effect is the single send.
type service struct {
	store     tracking.Store
	notifier  Notifier
	recipient string
	tracer    trace.Tracer
	now       func() time.Time
}

func NewService(store tracking.Store, notifier Notifier, recipient string) Service {
	return &service{
		store:     store,
		notifier:  notifier,
		recipient: recipient,
		tracer:    otel.Tracer("shelfwatch/digest"),
		now:       time.Now,
	}
}

// BuildAndSend gathers the next seven days of releases and the last
// seven days of status changes, renders one payload, and sends exactly
// once. When both sets are empty it skips rather than sending an empty
// digest.
func (s *service) BuildAndSend(ctx context.Context) (*Outcome, error) {
	if s.notifier == nil || s.recipient == "" {
		return nil, ErrNotConfigured
	}

	ctx, span := s.tracer.Start(ctx, "digest.build_and_send")
	defer span.End()

	now := s.now().UTC()
	today := midnightUTC(now)

	upcoming, err := s.store.ListReleasingBetween(ctx, today, today.AddDate(0, 0, 7))
	if err != nil {
		return nil, fmt.Errorf("list upcoming releases: %w", err)
	}
	changes, err := s.store.ListStatusChangesSince(ctx, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, fmt.Errorf("list status changes: %w", err)
	}

	rows, err := s.joinChanges(ctx, latestPerBook(changes))
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{Upcoming: len(upcoming), Changes: len(rows)}
	span.SetAttributes(
		attribute.Int("digest.upcoming", len(upcoming)),
		attribute.Int("digest.changes", len(rows)),
	)

	if len(upcoming) == 0 && len(rows) == 0 {
		outcome.Skipped = true
		return outcome, nil
	}

	html, err := renderDigest(today, upcoming, rows)
	if err != nil {
		return nil, fmt.Errorf("render digest: %w", err)
	}

	subject := fmt.Sprintf("Release tracker digest for %s", today.Format("Jan 2, 2006"))
	id, err := s.notifier.Send(ctx, s.recipient, subject, html)
	if err != nil {
		log.Printf("digest send failed: %v", err)
		return outcome, nil
	}
	outcome.Sent = true
	outcome.MessageID = id
	return outcome, nil
}

// joinChanges resolves display fields for each change against the live
// book records. Changes whose book has since been deleted are dropped
// silently.
func (s *service) joinChanges(ctx context.Context, changes []*tracking.StatusChange) ([]changeRow, error) {
	var rows []changeRow
	for _, change := range changes {
		book, err := s.store.GetBook(ctx, change.BookID)
		if err != nil {
			if errors.Is(err, tracking.ErrBookNotFound) {
				continue
			}
			return nil, fmt.Errorf("resolve book %s: %w", change.BookID, err)
		}
		from := ""
		if change.OldStatus != nil {
			from = change.OldStatus.Label()
		}
		rows = append(rows, changeRow{
			Title:     book.Title,
			Author:    book.Author,
			From:      from,
			To:        change.NewStatus.Label(),
			ChangedAt: change.ChangedAt.Format("Mon, Jan 2"),
		})
	}
	return rows, nil
}

// latestPerBook collapses multiple transitions inside the window to the
// single most recent one per book; intermediate hops are deliberately
// not shown. Output preserves the order in which books first appear.
func latestPerBook(changes []*tracking.StatusChange) []*tracking.StatusChange {
	latest := make(map[uuid.UUID]*tracking.StatusChange)
	var order []uuid.UUID
	for _, change := range changes {
		current, seen := latest[change.BookID]
		if !seen {
			order = append(order, change.BookID)
		}
		if !seen || !change.ChangedAt.Before(current.ChangedAt) {
			latest[change.BookID] = change
		}
	}
	out := make([]*tracking.StatusChange, 0, len(order))
	for _, id := range order {
		out = append(out, latest[id])
	}
	return out
}

func midnightUTC(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
