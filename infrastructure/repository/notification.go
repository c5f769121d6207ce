package repository

import (
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/synlig/seo-portal-api/infrastructure/database/postgres"
	"github.com/synlig/seo-portal-api/internal/domain"
)

const notificationsTable = "notifications n"

type NotificationRepository interface {
	ListByUser(userID int, limit int) ([]*domain.Notification, error)
	CountUnread(userID int) (int, error)
	Create(notification *domain.Notification) error
	MarkRead(id string, userID int) error
	MarkAllRead(userID int) error
}

type notificationRepository struct {
	conn *postgres.Connection
}

func NewNotificationRepository(conn *postgres.Connection) NotificationRepository {
	return &notificationRepository{
		conn: conn,
	}
}

func (r *notificationRepository) ListByUser(userID int, limit int) ([]*domain.Notification, error) {
	query, args, err := squirrel.
		Select("n.id, n.user_id, n.kind, n.title, n.body, n.ref_id, n.read, n.created_at").
		From(notificationsTable).
		Where(squirrel.Eq{"n.user_id": userID}).
		OrderBy("n.created_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	notifications := make([]*domain.Notification, 0)
	for rows.Next() {
		notification := &domain.Notification{}
		err := rows.Scan(
			&notification.ID,
			&notification.UserID,
			&notification.Kind,
			&notification.Title,
			&notification.Body,
			&notification.RefID,
			&notification.Read,
			&notification.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		notifications = append(notifications, notification)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return notifications, nil
}

func (r *notificationRepository) CountUnread(userID int) (int, error) {
	query, args, err := squirrel.
		Select("COUNT(*)").
		From(notificationsTable).
		Where(squirrel.Eq{"n.user_id": userID, "n.read": false}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("building query: %w", err)
	}

	var count int
	if err := r.conn.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting notifications: %w", err)
	}

	return count, nil
}

func (r *notificationRepository) Create(notification *domain.Notification) error {
	query := squirrel.StatementBuilder.
		Insert("notifications").
		Columns("id", "user_id", "kind", "title", "body", "ref_id", "read").
		Values(
			notification.ID,
			notification.UserID,
			notification.Kind,
			notification.Title,
			notification.Body,
			notification.RefID,
			notification.Read,
		).
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}

	_, err = r.conn.Exec(sqlQuery, args...)
	if err != nil {
		return fmt.Errorf("executing query: %w", err)
	}

	return nil
}

func (r *notificationRepository) MarkRead(id string, userID int) error {
	query := squirrel.StatementBuilder.
		Update("notifications").
		Set("read", true).
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}

	_, err = r.conn.Exec(sqlQuery, args...)
	if err != nil {
		return fmt.Errorf("executing query: %w", err)
	}

	return nil
}

func (r *notificationRepository) MarkAllRead(userID int) error {
	query := squirrel.StatementBuilder.
		Update("notifications").
		Set("read", true).
		Where(squirrel.Eq{"user_id": userID, "read": false}).
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}

	_, err = r.conn.Exec(sqlQuery, args...)
	if err != nil {
		return fmt.Errorf("executing query: %w", err)
	}

	return nil
}
