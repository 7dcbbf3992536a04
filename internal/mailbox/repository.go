// Package mailbox provides read access to inbound email messages stored by
// the mail-transport collaborator. The ingestion pipeline consumes these
// records; it never fetches mail itself.
package mailbox

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("inbound message not found")

// Message is one raw inbound email. A message with LeadID set has already
// been processed and is never picked up again.
type Message struct {
	ID            uuid.UUID
	SenderAddress string
	Subject       string
	PlainBody     string
	HTMLBody      *string
	LeadID        *uuid.UUID
	ReceivedAt    time.Time
}

// Store is the persistence contract the ingestion pipeline needs.
type Store interface {
	ListUnlinked(ctx context.Context, limit int) ([]Message, error)
	GetByID(ctx context.Context, id uuid.UUID) (Message, error)
	LinkToLead(ctx context.Context, messageID, leadID uuid.UUID) error
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const messageColumns = `id, sender_address, subject, plain_body, html_body, lead_id, received_at`

// ListUnlinked returns up to limit messages without a lead link, oldest first.
func (r *Repository) ListUnlinked(ctx context.Context, limit int) ([]Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM inbound_messages
		WHERE lead_id IS NULL
		ORDER BY received_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SenderAddress, &m.Subject, &m.PlainBody, &m.HTMLBody, &m.LeadID, &m.ReceivedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// GetByID retrieves a single message.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Message, error) {
	var m Message
	err := r.pool.QueryRow(ctx, `
		SELECT `+messageColumns+` FROM inbound_messages WHERE id = $1
	`, id).Scan(&m.ID, &m.SenderAddress, &m.Subject, &m.PlainBody, &m.HTMLBody, &m.LeadID, &m.ReceivedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Message{}, ErrNotFound
	}
	return m, err
}

// LinkToLead attaches a message to a lead. Linking is what marks a message
// as processed; it only succeeds once per message.
func (r *Repository) LinkToLead(ctx context.Context, messageID, leadID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE inbound_messages SET lead_id = $2
		WHERE id = $1 AND lead_id IS NULL
	`, messageID, leadID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Compile-time check that Repository implements Store.
var _ Store = (*Repository)(nil)
