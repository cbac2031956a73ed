package notify

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("notification not found")

type Repository interface {
	Insert(ctx context.Context, n *Notification) (*Notification, error)
	ListForMember(ctx context.Context, memberID int, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, memberID, notificationID int) error
	MarkAllRead(ctx context.Context, memberID int) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, n *Notification) (*Notification, error) {
	var created Notification
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO notifications (member_id, title, message, category)
		VALUES ($1, $2, $3, $4)
		RETURNING id, member_id, title, message, category, is_read, created_at
	`, n.MemberID, n.Title, n.Message, n.Category).StructScan(&created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *repository) ListForMember(ctx context.Context, memberID int, unreadOnly bool) ([]Notification, error) {
	query := `
		SELECT id, member_id, title, message, category, is_read, created_at
		FROM notifications
		WHERE member_id = $1
	`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT 100`

	var notifications []Notification
	if err := r.db.SelectContext(ctx, &notifications, query, memberID); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *repository) MarkRead(ctx context.Context, memberID, notificationID int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = TRUE WHERE id = $1 AND member_id = $2
	`, notificationID, memberID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) MarkAllRead(ctx context.Context, memberID int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = TRUE WHERE member_id = $1 AND is_read = FALSE
	`, memberID)
	return err
}
