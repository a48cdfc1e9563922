package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/autumsam/postpilot/internal/models"
)

type SettingsRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Settings, bool, error)
	Upsert(ctx context.Context, s *models.Settings, userID int64) error
}

type settingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetByUserID(ctx context.Context, userID int64) (*models.Settings, bool, error) {
	query := `
		SELECT id, user_id, posting_time, default_platforms, brand_name
		FROM settings
		WHERE user_id = $1
	`

	var s models.Settings
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&s.ID, &s.UserID, &s.PostingTime, &s.DefaultPlatforms, &s.BrandName)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}

	return &s, true, nil
}

func (r *settingsRepository) Upsert(ctx context.Context, s *models.Settings, userID int64) error {
	query := `
		INSERT INTO settings (user_id, posting_time, default_platforms, brand_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id)
		DO UPDATE SET
			posting_time = EXCLUDED.posting_time,
			default_platforms = EXCLUDED.default_platforms,
			brand_name = EXCLUDED.brand_name,
			updated_at = $5
	`
	_, err := r.db.ExecContext(ctx, query, userID, s.PostingTime, s.DefaultPlatforms, s.BrandName, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
