package migration

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/synlig/seo-portal-api/infrastructure/database/postgres"
)

// statements bootstrap the schema. Every statement is idempotent so the
// bootstrap can run on every start.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		org_number TEXT NOT NULL DEFAULT '',
		contact_name TEXT NOT NULL DEFAULT '',
		contact_email TEXT NOT NULL DEFAULT '',
		website TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		services TEXT[] NOT NULL DEFAULT '{}',
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted_at TIMESTAMPTZ
	)`,

	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		lastname TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		role_id INTEGER NOT NULL DEFAULT 3,
		customer_id TEXT REFERENCES customers(id),
		deleted BOOLEAN NOT NULL DEFAULT FALSE,
		deleted_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS seo_reports (
		id SERIAL PRIMARY KEY,
		customer_id TEXT NOT NULL REFERENCES customers(id),
		period_type TEXT NOT NULL,
		period_key TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'draft',
		version INTEGER NOT NULL DEFAULT 1,
		payload JSONB NOT NULL DEFAULT '{}',
		uploaded_at TIMESTAMPTZ,
		published_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (customer_id, period_type, period_key)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_seo_reports_status
		ON seo_reports (status, published_at DESC)`,

	`CREATE TABLE IF NOT EXISTS provider_connections (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL REFERENCES customers(id),
		provider TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		property_ref TEXT NOT NULL DEFAULT '',
		last_error TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (customer_id, provider)
	)`,

	`CREATE TABLE IF NOT EXISTS message_threads (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL REFERENCES customers(id),
		subject TEXT NOT NULL,
		last_message_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		thread_id TEXT NOT NULL REFERENCES message_threads(id),
		sender TEXT NOT NULL,
		author_user_id INTEGER NOT NULL DEFAULT 0,
		body TEXT NOT NULL,
		sent_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		read_by_agency BOOLEAN NOT NULL DEFAULT FALSE,
		read_by_customer BOOLEAN NOT NULL DEFAULT FALSE
	)`,

	`CREATE INDEX IF NOT EXISTS idx_messages_thread
		ON messages (thread_id, sent_at)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id),
		kind TEXT NOT NULL,
		title TEXT NOT NULL,
		body TEXT NOT NULL DEFAULT '',
		ref_id TEXT NOT NULL DEFAULT '',
		read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_notifications_user
		ON notifications (user_id, read, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		document JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Run applies the schema bootstrap.
func Run(ctx context.Context, conn *postgres.Connection) error {
	for i, statement := range statements {
		if _, err := conn.Exec(statement); err != nil {
			return fmt.Errorf("running migration statement %d: %w", i, err)
		}
	}

	logrus.WithField("statements", len(statements)).Info("Database schema bootstrap complete")
	return nil
}
