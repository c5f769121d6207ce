package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/synlig/seo-portal-api/infrastructure/database/postgres"
	"github.com/synlig/seo-portal-api/internal/domain"
)

// The settings table holds a single JSONB document under a fixed key.
const settingsKey = "agency"

type SettingsRepository interface {
	GetSettings() (*domain.AgencySettings, error)
	SaveSettings(settings *domain.AgencySettings) error
}

type settingsRepository struct {
	conn *postgres.Connection
}

func NewSettingsRepository(conn *postgres.Connection) SettingsRepository {
	return &settingsRepository{
		conn: conn,
	}
}

// GetSettings returns the stored settings, or the defaults when nothing has
// been saved yet.
func (r *settingsRepository) GetSettings() (*domain.AgencySettings, error) {
	query, args, err := squirrel.
		Select("s.document").
		From("settings s").
		Where(squirrel.Eq{"s.key": settingsKey}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	var document []byte
	if err := r.conn.QueryRow(query, args...).Scan(&document); err != nil {
		if err == sql.ErrNoRows {
			return domain.DefaultAgencySettings(), nil
		}
		return nil, fmt.Errorf("scanning settings: %w", err)
	}

	settings := &domain.AgencySettings{}
	if err := json.Unmarshal(document, settings); err != nil {
		return nil, fmt.Errorf("deserializing settings: %w", err)
	}

	return settings, nil
}

func (r *settingsRepository) SaveSettings(settings *domain.AgencySettings) error {
	document, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("serializing settings: %w", err)
	}

	query := squirrel.StatementBuilder.
		Insert("settings").
		Columns("key", "document").
		Values(settingsKey, document).
		Suffix(`
			ON CONFLICT (key) DO UPDATE SET
				document = EXCLUDED.document,
				updated_at = NOW()
		`).
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
