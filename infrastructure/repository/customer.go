package repository

import (
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/synlig/seo-portal-api/infrastructure/database/postgres"
	"github.com/synlig/seo-portal-api/internal/domain"
)

const customersTable = "customers c"

type CustomerRepository interface {
	GetByID(id string) (*domain.Customer, error)
	ListCustomers(includeInactive bool) ([]*domain.Customer, error)
	ListActiveCustomers() ([]*domain.Customer, error)
	CreateCustomer(customer *domain.Customer) error
	UpdateCustomer(customer *domain.Customer) error
	SoftDeleteCustomer(id string) error
}

type customerRepository struct {
	conn *postgres.Connection
}

func NewCustomerRepository(conn *postgres.Connection) CustomerRepository {
	return &customerRepository{
		conn: conn,
	}
}

const customerColumns = "c.id, c.name, c.org_number, c.contact_name, c.contact_email, c.website, c.active, c.services, c.notes, c.created_at, c.updated_at, c.deleted_at"

func (r *customerRepository) GetByID(id string) (*domain.Customer, error) {
	query, args, err := squirrel.
		Select(customerColumns).
		From(customersTable).
		Where(squirrel.Eq{"c.id": id}).
		Where("c.deleted_at IS NULL").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	row := r.conn.QueryRow(query, args...)
	customer, err := scanCustomerRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning customer: %w", err)
	}

	return customer, nil
}

func (r *customerRepository) ListCustomers(includeInactive bool) ([]*domain.Customer, error) {
	builder := squirrel.
		Select(customerColumns).
		From(customersTable).
		Where("c.deleted_at IS NULL").
		OrderBy("c.name ASC").
		PlaceholderFormat(squirrel.Dollar)

	if !includeInactive {
		builder = builder.Where(squirrel.Eq{"c.active": true})
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

	customers := make([]*domain.Customer, 0)
	for rows.Next() {
		customer, err := scanCustomerRows(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning customer: %w", err)
		}
		customers = append(customers, customer)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return customers, nil
}

func (r *customerRepository) ListActiveCustomers() ([]*domain.Customer, error) {
	return r.ListCustomers(false)
}

func (r *customerRepository) CreateCustomer(customer *domain.Customer) error {
	query := squirrel.StatementBuilder.
		Insert("customers").
		Columns("id", "name", "org_number", "contact_name", "contact_email", "website", "active", "services", "notes").
		Values(
			customer.ID,
			customer.Name,
			customer.OrgNumber,
			customer.ContactName,
			customer.ContactEmail,
			customer.Website,
			customer.Active,
			pq.Array(customer.Services),
			customer.Notes,
		).
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

func (r *customerRepository) UpdateCustomer(customer *domain.Customer) error {
	query := squirrel.StatementBuilder.
		Update("customers").
		Set("name", customer.Name).
		Set("org_number", customer.OrgNumber).
		Set("contact_name", customer.ContactName).
		Set("contact_email", customer.ContactEmail).
		Set("website", customer.Website).
		Set("active", customer.Active).
		Set("services", pq.Array(customer.Services)).
		Set("notes", customer.Notes).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": customer.ID}).
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

func (r *customerRepository) SoftDeleteCustomer(id string) error {
	query := squirrel.StatementBuilder.
		Update("customers").
		Set("deleted_at", squirrel.Expr("NOW()")).
		Set("active", false).
		Where(squirrel.Eq{"id": id}).
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

func scanCustomerRow(row *sql.Row) (*domain.Customer, error) {
	customer := &domain.Customer{}
	err := row.Scan(
		&customer.ID,
		&customer.Name,
		&customer.OrgNumber,
		&customer.ContactName,
		&customer.ContactEmail,
		&customer.Website,
		&customer.Active,
		pq.Array(&customer.Services),
		&customer.Notes,
		&customer.CreatedAt,
		&customer.UpdatedAt,
		&customer.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func scanCustomerRows(rows *sql.Rows) (*domain.Customer, error) {
	customer := &domain.Customer{}
	err := rows.Scan(
		&customer.ID,
		&customer.Name,
		&customer.OrgNumber,
		&customer.ContactName,
		&customer.ContactEmail,
		&customer.Website,
		&customer.Active,
		pq.Array(&customer.Services),
		&customer.Notes,
		&customer.CreatedAt,
		&customer.UpdatedAt,
		&customer.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return customer, nil
}
