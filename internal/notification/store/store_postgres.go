package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"eureka/internal/notification/models"
	"eureka/pkg/domain"
	"eureka/pkg/platform/tx"
	"eureka/pkg/realtime/wire"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, n *models.Notification) error {
	_, err := tx.Use(ctx, s.db).ExecContext(ctx, `
		INSERT INTO notifications (id, recipient_id, sender_id, type, content, link, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.UUID(n.ID), uuid.UUID(n.Recipient), uuid.UUID(n.Sender), string(n.Type), n.Content, n.Link, n.IsRead, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByRecipient(ctx context.Context, recipient domain.UserID, limit int) ([]*models.Notification, error) {
	rows, err := tx.Use(ctx, s.db).QueryContext(ctx, `
		SELECT id, recipient_id, sender_id, type, content, link, is_read, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, uuid.UUID(recipient), limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		var (
			n                       models.Notification
			id, recipientID, sender uuid.UUID
			typ                     string
		)
		if err := rows.Scan(&id, &recipientID, &sender, &typ, &n.Content, &n.Link, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.ID = domain.NotificationID(id)
		n.Recipient = domain.UserID(recipientID)
		n.Sender = domain.UserID(sender)
		n.Type = wire.NotificationType(typ)
		out = append(out, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) MarkAllRead(ctx context.Context, recipient domain.UserID) (int64, error) {
	res, err := tx.Use(ctx, s.db).ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE recipient_id = $1 AND is_read = FALSE`,
		uuid.UUID(recipient),
	)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return n, nil
}
