package repository

import (
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/synlig/seo-portal-api/infrastructure/database/postgres"
	"github.com/synlig/seo-portal-api/internal/domain"
)

const connectionsTable = "provider_connections pc"

type ConnectionRepository interface {
	GetByID(id string) (*domain.Connection, error)
	ListByCustomer(customerID string) ([]*domain.Connection, error)
	SaveOrUpdate(connection *domain.Connection) error
	Delete(id string) error
}

type connectionRepository struct {
	conn *postgres.Connection
}

func NewConnectionRepository(conn *postgres.Connection) ConnectionRepository {
	return &connectionRepository{
		conn: conn,
	}
}

const connectionColumns = "pc.id, pc.customer_id, pc.provider, pc.status, pc.property_ref, pc.last_error, pc.created_at, pc.updated_at"

func (r *connectionRepository) GetByID(id string) (*domain.Connection, error) {
	query, args, err := squirrel.
		Select(connectionColumns).
		From(connectionsTable).
		Where(squirrel.Eq{"pc.id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	connection := &domain.Connection{}
	row := r.conn.QueryRow(query, args...)
	err = row.Scan(
		&connection.ID,
		&connection.CustomerID,
		&connection.Provider,
		&connection.Status,
		&connection.PropertyRef,
		&connection.LastError,
		&connection.CreatedAt,
		&connection.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning connection: %w", err)
	}

	return connection, nil
}

func (r *connectionRepository) ListByCustomer(customerID string) ([]*domain.Connection, error) {
	query, args, err := squirrel.
		Select(connectionColumns).
		From(connectionsTable).
		Where(squirrel.Eq{"pc.customer_id": customerID}).
		OrderBy("pc.provider ASC").
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

	connections := make([]*domain.Connection, 0)
	for rows.Next() {
		connection := &domain.Connection{}
		err := rows.Scan(
			&connection.ID,
			&connection.CustomerID,
			&connection.Provider,
			&connection.Status,
			&connection.PropertyRef,
			&connection.LastError,
			&connection.CreatedAt,
			&connection.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning connection: %w", err)
		}
		connections = append(connections, connection)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return connections, nil
}

func (r *connectionRepository) SaveOrUpdate(connection *domain.Connection) error {
	query := squirrel.StatementBuilder.
		Insert("provider_connections").
		Columns("id", "customer_id", "provider", "status", "property_ref", "last_error").
		Values(
			connection.ID,
			connection.CustomerID,
			connection.Provider,
			connection.Status,
			connection.PropertyRef,
			connection.LastError,
		).
		Suffix(`
			ON CONFLICT (customer_id, provider) DO UPDATE SET
				status = EXCLUDED.status,
				property_ref = EXCLUDED.property_ref,
				last_error = EXCLUDED.last_error,
				updated_at = NOW()
		`).
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}

	_, err = r.conn.Exec(sqlQuery, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("database error: %w (code: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("executing query: %w", err)
	}

	return nil
}

func (r *connectionRepository) Delete(id string) error {
	query, args, err := squirrel.
		Delete("provider_connections").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}

	_, err = r.conn.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("executing query: %w", err)
	}

	return nil
}
