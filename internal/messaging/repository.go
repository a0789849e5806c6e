package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parishdesk/backend/internal/models"
)

// Repository persists outbound message logs.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a messaging repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const logColumns = `id, organization_id, member_id, channel, recipient, COALESCE(subject,''), body, status, COALESCE(error,''), sent_by, created_at, sent_at`

func scanLog(row interface{ Scan(...any) error }) (*models.MessageLog, error) {
	var m models.MessageLog
	err := row.Scan(&m.ID, &m.OrganizationID, &m.MemberID, &m.Channel, &m.Recipient,
		&m.Subject, &m.Body, &m.Status, &m.Error, &m.SentBy, &m.CreatedAt, &m.SentAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateBatch inserts queued log rows for a send in one transaction.
func (r *Repository) CreateBatch(ctx context.Context, logs []*models.MessageLog) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const q = `INSERT INTO message_logs (organization_id, member_id, channel, recipient, subject, body, status, sent_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at`
		for _, m := range logs {
			if err := tx.QueryRow(ctx, q, m.OrganizationID, m.MemberID, m.Channel,
				m.Recipient, m.Subject, m.Body, m.Status, m.SentBy).
				Scan(&m.ID, &m.CreatedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID returns one message log scoped to an organization.
func (r *Repository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.MessageLog, error) {
	return scanLog(r.pool.QueryRow(ctx,
		`SELECT `+logColumns+` FROM message_logs WHERE id = $1 AND organization_id = $2`, id, orgID))
}

// List returns an organization's message logs, newest first, capped.
func (r *Repository) List(ctx context.Context, orgID uuid.UUID, limit int) ([]*models.MessageLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+logColumns+` FROM message_logs WHERE organization_id = $1 ORDER BY created_at DESC LIMIT $2`,
		orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.MessageLog
	for rows.Next() {
		m, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// MarkSent records successful delivery.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE message_logs SET status = $2, sent_at = $3 WHERE id = $1`,
		id, models.MessageStatusSent, time.Now())
	return err
}

// MarkFailed records a delivery failure with the provider error.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE message_logs SET status = $2, error = $3 WHERE id = $1`,
		id, models.MessageStatusFailed, reason)
	return err
}
