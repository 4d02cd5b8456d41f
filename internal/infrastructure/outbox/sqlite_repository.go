package outbox

import (
	"database/sql"
	"errors"
	"fmt"
)

var ErrUnknownEvent = errors.New("outbox event not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const insertEvent = `
	INSERT INTO outbox_events (id, event_type, payload, published, created_at)
	VALUES (?, ?, ?, 0, ?)
`

func (r *SQLiteRepository) Save(evt Event) error {
	if _, err := r.db.Exec(insertEvent, evt.ID, string(evt.Type), evt.Payload, evt.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("save outbox event %s: %w", evt.ID, err)
	}
	return nil
}

const selectUnpublished = `
	SELECT id, event_type, payload, created_at
	FROM outbox_events
	WHERE published = 0
	ORDER BY created_at, rowid
	LIMIT ?
`

// FindUnpublished returns up to limit pending events, oldest first. Events
// saved with the same timestamp keep insertion order.
func (r *SQLiteRepository) FindUnpublished(limit int) ([]Event, error) {
	rows, err := r.db.Query(selectUnpublished, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0, limit)
	for rows.Next() {
		var evt Event
		if err := rows.Scan(&evt.ID, &evt.Type, &evt.Payload, &evt.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, evt)
	}

	return events, rows.Err()
}

func (r *SQLiteRepository) MarkPublished(id string) error {
	res, err := r.db.Exec(`UPDATE outbox_events SET published = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark outbox event %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark outbox event %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownEvent, id)
	}

	return nil
}

// Pending counts events not yet handed to the bus.
func (r *SQLiteRepository) Pending() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM outbox_events WHERE published = 0`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count outbox: %w", err)
	}
	return n, nil
}
