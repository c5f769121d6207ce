package repository

import (
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/synlig/seo-portal-api/infrastructure/database/postgres"
	"github.com/synlig/seo-portal-api/internal/domain"
)

const (
	threadsTable  = "message_threads mt"
	messagesTable = "messages m"
)

type ThreadRepository interface {
	GetThread(id string) (*domain.MessageThread, error)
	ListThreads(viewer domain.MessageSide) ([]*domain.MessageThread, error)
	ListThreadsByCustomer(customerID string, viewer domain.MessageSide) ([]*domain.MessageThread, error)
	CreateThread(thread *domain.MessageThread) error
	ListMessages(threadID string) ([]*domain.Message, error)
	AppendMessage(message *domain.Message) error
	MarkThreadRead(threadID string, side domain.MessageSide) error
}

type threadRepository struct {
	conn *postgres.Connection
}

func NewThreadRepository(conn *postgres.Connection) ThreadRepository {
	return &threadRepository{
		conn: conn,
	}
}

func unreadColumnFor(side domain.MessageSide) string {
	if side == domain.SideAgency {
		return "read_by_agency"
	}
	return "read_by_customer"
}

func (r *threadRepository) GetThread(id string) (*domain.MessageThread, error) {
	query, args, err := squirrel.
		Select("mt.id, mt.customer_id, mt.subject, mt.last_message_at, mt.created_at").
		From(threadsTable).
		Where(squirrel.Eq{"mt.id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	thread := &domain.MessageThread{}
	row := r.conn.QueryRow(query, args...)
	err = row.Scan(&thread.ID, &thread.CustomerID, &thread.Subject, &thread.LastMessageAt, &thread.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning thread: %w", err)
	}

	return thread, nil
}

// ListThreads returns every thread ordered by last activity, with the unread
// count computed for the viewer's side.
func (r *threadRepository) ListThreads(viewer domain.MessageSide) ([]*domain.MessageThread, error) {
	return r.listThreads(viewer, "")
}

func (r *threadRepository) ListThreadsByCustomer(customerID string, viewer domain.MessageSide) ([]*domain.MessageThread, error) {
	return r.listThreads(viewer, customerID)
}

func (r *threadRepository) listThreads(viewer domain.MessageSide, customerID string) ([]*domain.MessageThread, error) {
	unreadExpr := fmt.Sprintf(
		"(SELECT COUNT(*) FROM messages m WHERE m.thread_id = mt.id AND m.%s = false) AS unread_count",
		unreadColumnFor(viewer),
	)

	builder := squirrel.
		Select("mt.id, mt.customer_id, mt.subject, mt.last_message_at, mt.created_at", unreadExpr).
		From(threadsTable).
		OrderBy("mt.last_message_at DESC NULLS LAST", "mt.created_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	if customerID != "" {
		builder = builder.Where(squirrel.Eq{"mt.customer_id": customerID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	threads := make([]*domain.MessageThread, 0)
	for rows.Next() {
		thread := &domain.MessageThread{}
		err := rows.Scan(
			&thread.ID,
			&thread.CustomerID,
			&thread.Subject,
			&thread.LastMessageAt,
			&thread.CreatedAt,
			&thread.UnreadCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning thread: %w", err)
		}
		threads = append(threads, thread)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return threads, nil
}

func (r *threadRepository) CreateThread(thread *domain.MessageThread) error {
	query := squirrel.StatementBuilder.
		Insert("message_threads").
		Columns("id", "customer_id", "subject").
		Values(thread.ID, thread.CustomerID, thread.Subject).
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

func (r *threadRepository) ListMessages(threadID string) ([]*domain.Message, error) {
	query, args, err := squirrel.
		Select("m.id, m.thread_id, m.sender, m.author_user_id, m.body, m.sent_at, m.read_by_agency, m.read_by_customer").
		From(messagesTable).
		Where(squirrel.Eq{"m.thread_id": threadID}).
		OrderBy("m.sent_at ASC").
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

	messages := make([]*domain.Message, 0)
	for rows.Next() {
		message := &domain.Message{}
		err := rows.Scan(
			&message.ID,
			&message.ThreadID,
			&message.Sender,
			&message.AuthorUserID,
			&message.Body,
			&message.SentAt,
			&message.ReadByAgency,
			&message.ReadByCustomer,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		messages = append(messages, message)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return messages, nil
}

// AppendMessage inserts the message and bumps the thread's last activity.
func (r *threadRepository) AppendMessage(message *domain.Message) error {
	insert := squirrel.StatementBuilder.
		Insert("messages").
		Columns("id", "thread_id", "sender", "author_user_id", "body", "sent_at", "read_by_agency", "read_by_customer").
		Values(
			message.ID,
			message.ThreadID,
			message.Sender,
			message.AuthorUserID,
			message.Body,
			message.SentAt,
			message.ReadByAgency,
			message.ReadByCustomer,
		).
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}

	if _, err = r.conn.Exec(sqlQuery, args...); err != nil {
		return fmt.Errorf("executing query: %w", err)
	}

	touch := squirrel.StatementBuilder.
		Update("message_threads").
		Set("last_message_at", message.SentAt).
		Where(squirrel.Eq{"id": message.ThreadID}).
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err = touch.ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}

	if _, err = r.conn.Exec(sqlQuery, args...); err != nil {
		return fmt.Errorf("executing query: %w", err)
	}

	return nil
}

func (r *threadRepository) MarkThreadRead(threadID string, side domain.MessageSide) error {
	query := squirrel.StatementBuilder.
		Update("messages").
		Set(unreadColumnFor(side), true).
		Where(squirrel.Eq{"thread_id": threadID}).
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
