package comment

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// timestampLayout is fixed-width so stored timestamps sort lexicographically.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrNotFound is returned when a comment does not exist.
var ErrNotFound = errors.New("comment not found")

// Repository provides storage for comments, keyed by thread target.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates a comment repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Add stores a new comment for the request's target.
func (r *Repository) Add(req SubmitRequest) (*Comment, error) {
	if req.Message == "" {
		return nil, fmt.Errorf("comment message is required")
	}

	var additional sql.NullString
	if req.Additional != nil {
		data, err := json.Marshal(req.Additional)
		if err != nil {
			return nil, fmt.Errorf("marshaling additional data: %w", err)
		}
		additional = sql.NullString{String: string(data), Valid: true}
	}

	c := Comment{
		ID:         ID(uuid.NewString()),
		Author:     req.Author,
		Message:    req.Message,
		AddedAt:    r.now().UTC().Format(timestampLayout),
		Additional: req.Additional,
	}

	_, err := r.db.Exec(
		"INSERT INTO comments (id, target, author, message, additional, added_at) VALUES (?, ?, ?, ?, ?, ?)",
		string(c.ID), string(req.Target), c.Author, c.Message, additional, c.AddedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting comment: %w", err)
	}

	return &c, nil
}

// ListByTarget returns all comments of a thread, newest first.
func (r *Repository) ListByTarget(target Target) ([]Comment, error) {
	rows, err := r.db.Query(
		"SELECT id, author, message, additional, added_at FROM comments WHERE target = ? ORDER BY added_at DESC",
		string(target),
	)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	comments := []Comment{}
	for rows.Next() {
		var (
			c          Comment
			id         string
			additional sql.NullString
		)
		if err := rows.Scan(&id, &c.Author, &c.Message, &additional, &c.AddedAt); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		c.ID = ID(id)
		if additional.Valid && additional.String != "" {
			var a Additional
			if err := json.Unmarshal([]byte(additional.String), &a); err != nil {
				return nil, fmt.Errorf("decoding additional data of comment %s: %w", id, err)
			}
			c.Additional = &a
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating comments: %w", err)
	}

	return comments, nil
}

// Delete removes a comment by ID.
func (r *Repository) Delete(id ID) error {
	result, err := r.db.Exec("DELETE FROM comments WHERE id = ?", string(id))
	if err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return nil
}
