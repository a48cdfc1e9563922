package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/autumsam/postpilot/internal/models"
)

type MediaAssetRepository interface {
	Create(ctx context.Context, tx *sql.Tx, ma *models.MediaAsset) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.MediaAsset, error)
	CheckByUserID(ctx context.Context, assetID, userID int64) (bool, error)
	Remove(ctx context.Context, id int64) error
}

type mediaAssetRepository struct {
	db *sql.DB
}

func NewMediaAssetRepository(db *sql.DB) MediaAssetRepository {
	return &mediaAssetRepository{db: db}
}

func (r *mediaAssetRepository) Create(ctx context.Context, tx *sql.Tx, ma *models.MediaAsset) (int64, error) {
	var id int64
	var err error

	query := `
		INSERT INTO media_assets (user_id, file_name, file_type, file_size, file_url, background_style)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	if tx != nil {
		err = tx.QueryRowContext(ctx, query, ma.UserID, ma.FileName, ma.FileType, ma.FileSize, ma.FileURL, ma.BackgroundStyle).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, ma.UserID, ma.FileName, ma.FileType, ma.FileSize, ma.FileURL, ma.BackgroundStyle).Scan(&id)
	}

	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *mediaAssetRepository) GetByID(ctx context.Context, id int64) (*models.MediaAsset, error) {
	query := `
		SELECT id, user_id, file_name, file_type, file_url, background_style, created_at
		FROM media_assets
		WHERE id = $1
	`

	var ma models.MediaAsset
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&ma.ID,
		&ma.UserID,
		&ma.FileName,
		&ma.FileType,
		&ma.FileURL,
		&ma.BackgroundStyle,
		&ma.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &ma, nil
}

func (r *mediaAssetRepository) CheckByUserID(ctx context.Context, assetID, userID int64) (bool, error) {
	query := "SELECT 1 FROM media_assets WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, assetID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *mediaAssetRepository) Remove(ctx context.Context, id int64) error {
	query := `
		DELETE FROM media_assets
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
