// internal/tracking/implementation.go
package tracking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var ErrBookNotFound = errors.New("tracked book not found")

// checkEligible are the statuses that keep a released book in the
// reconciliation pass. not_released is included so a book is promoted on
// the first pass after its release date; available_to_checkout and
// checked_out are terminal for reconciliation.
var checkEligible = []LibraryStatus{
	StatusNotReleased,
	StatusNotAvailable,
	StatusAvailableToHold,
	StatusOnHold,
}

const bookColumns = `id, title, author, release_date, isbn, alt_isbns,
	COALESCE(catalog_item_id, ''), status, last_checked_at, last_notified_at,
	created_at, updated_at`

// postgresStore implements Store against the tracked_books and
// status_changes tables.
type postgresStore struct {
	db     *sql.DB
	tracer trace.Tracer
}

// NewPostgresStore creates the production Store.
func NewPostgresStore(db *sql.DB) Store {
	return &postgresStore{
		db:     db,
		tracer: otel.Tracer("shelfwatch/tracking"),
	}
}

func (s *postgresStore) GetBook(ctx context.Context, id uuid.UUID) (*Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM tracked_books WHERE id = $1`, bookColumns)
	book, err := scanBook(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

func (s *postgresStore) ListDueForCheck(ctx context.Context, asOf time.Time) ([]*Book, error) {
	ctx, span := s.tracer.Start(ctx, "tracking.list_due",
		trace.WithAttributes(attribute.String("as_of", asOf.Format("2006-01-02"))),
	)
	defer span.End()

	statuses := make([]string, len(checkEligible))
	for i, st := range checkEligible {
		statuses[i] = string(st)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM tracked_books
		WHERE release_date <= $1 AND status = ANY($2)
		ORDER BY release_date, title
	`, bookColumns)
	rows, err := s.db.QueryContext(ctx, query, asOf, pq.Array(statuses))
	if err != nil {
		return nil, fmt.Errorf("list due books: %w", err)
	}
	defer rows.Close()

	books, err := collectBooks(rows)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("books.due", len(books)))
	return books, nil
}

func (s *postgresStore) ListReleasingBetween(ctx context.Context, from, to time.Time) ([]*Book, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM tracked_books
		WHERE release_date BETWEEN $1 AND $2
		ORDER BY release_date, title
	`, bookColumns)
	rows, err := s.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("list releasing books: %w", err)
	}
	defer rows.Close()

	return collectBooks(rows)
}

func (s *postgresStore) UpdateAvailability(ctx context.Context, id uuid.UUID, upd CheckUpdate) error {
	ctx, span := s.tracer.Start(ctx, "tracking.update_availability",
		trace.WithAttributes(
			attribute.String("book.id", id.String()),
			attribute.String("book.status", string(upd.Status)),
		),
	)
	defer span.End()

	query := `
		UPDATE tracked_books
		SET status = $1, catalog_item_id = NULLIF($2, ''), last_checked_at = $3, updated_at = NOW()
		WHERE id = $4
	`
	res, err := s.db.ExecContext(ctx, query, upd.Status, upd.CatalogItemID, upd.CheckedAt, id)
	if err != nil {
		return fmt.Errorf("update availability: %w", err)
	}
	return checkOneRow(res)
}

func (s *postgresStore) MarkChecked(ctx context.Context, id uuid.UUID, checkedAt time.Time, catalogItemID string) error {
	query := `
		UPDATE tracked_books
		SET last_checked_at = $1,
		    catalog_item_id = COALESCE(NULLIF($2, ''), catalog_item_id),
		    updated_at = NOW()
		WHERE id = $3
	`
	res, err := s.db.ExecContext(ctx, query, checkedAt, catalogItemID, id)
	if err != nil {
		return fmt.Errorf("mark checked: %w", err)
	}
	return checkOneRow(res)
}

func (s *postgresStore) SetStatus(ctx context.Context, id uuid.UUID, status LibraryStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tracked_books SET status = $1, updated_at = NOW() WHERE id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	return checkOneRow(res)
}

func (s *postgresStore) MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tracked_books SET last_notified_at = $1, updated_at = NOW() WHERE id = $2
	`, at, id)
	if err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	return checkOneRow(res)
}

func (s *postgresStore) AppendStatusChange(ctx context.Context, change *StatusChange) error {
	ctx, span := s.tracer.Start(ctx, "tracking.append_status_change",
		trace.WithAttributes(
			attribute.String("book.id", change.BookID.String()),
			attribute.String("status.new", string(change.NewStatus)),
		),
	)
	defer span.End()

	var old sql.NullString
	if change.OldStatus != nil {
		old = sql.NullString{String: string(*change.OldStatus), Valid: true}
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO status_changes (book_id, old_status, new_status, source, note, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, change.BookID, old, change.NewStatus, change.Source, change.Note, change.ChangedAt).Scan(&change.ID)
	if err != nil {
		return fmt.Errorf("append status change: %w", err)
	}
	return nil
}

func (s *postgresStore) ListStatusChangesSince(ctx context.Context, since time.Time) ([]*StatusChange, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, book_id, old_status, new_status, source, COALESCE(note, ''), changed_at
		FROM status_changes
		WHERE changed_at >= $1
		ORDER BY changed_at
	`, since)
	if err != nil {
		return nil, fmt.Errorf("list status changes: %w", err)
	}
	defer rows.Close()

	var changes []*StatusChange
	for rows.Next() {
		change := &StatusChange{}
		var old sql.NullString
		if err := rows.Scan(&change.ID, &change.BookID, &old, &change.NewStatus,
			&change.Source, &change.Note, &change.ChangedAt); err != nil {
			return nil, fmt.Errorf("scan status change: %w", err)
		}
		if old.Valid {
			prev := LibraryStatus(old.String)
			change.OldStatus = &prev
		}
		changes = append(changes, change)
	}
	return changes, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBook(row rowScanner) (*Book, error) {
	book := &Book{}
	var isbn sql.NullString
	var checked, notified sql.NullTime
	err := row.Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.ReleaseDate,
		&isbn,
		pq.Array(&book.AltISBNs),
		&book.CatalogItemID,
		&book.Status,
		&checked,
		&notified,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	book.ISBN = isbn.String
	if checked.Valid {
		t := checked.Time
		book.LastCheckedAt = &t
	}
	if notified.Valid {
		t := notified.Time
		book.LastNotifiedAt = &t
	}
	return book, nil
}

func collectBooks(rows *sql.Rows) ([]*Book, error) {
	var books []*Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

func checkOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookNotFound
	}
	return nil
}
