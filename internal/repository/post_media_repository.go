package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/autumsam/postpilot/internal/models"
)

type PostMediaRepository interface {
	Create(ctx context.Context, tx *sql.Tx, pm *models.PostMedia) error
	GetByPostID(ctx context.Context, postID int64) (*models.PostMedia, error)
	ListByPostID(ctx context.Context, postID int64) ([]*models.PostMedia, error)
	Remove(ctx context.Context, postID int64) error
}

type postMediaRepository struct {
	db *sql.DB
}

func NewPostMediaRepository(db *sql.DB) PostMediaRepository {
	return &postMediaRepository{db: db}
}

func (r *postMediaRepository) Create(ctx context.Context, tx *sql.Tx, pm *models.PostMedia) error {
	var err error

	query := `
		INSERT INTO post_media (post_id, asset_id, display_order, price, description, comments)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, pm.PostID, pm.AssetID, pm.DisplayOrder, pm.Price, pm.Description, pm.Comments)
	} else {
		_, err = r.db.ExecContext(ctx, query, pm.PostID, pm.AssetID, pm.DisplayOrder, pm.Price, pm.Description, pm.Comments)
	}

	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

func (r *postMediaRepository) GetByPostID(ctx context.Context, postID int64) (*models.PostMedia, error) {
	query := `
		SELECT post_id, asset_id, display_order, price, description, comments
		FROM post_media
		WHERE post_id = $1 AND display_order = 0
	`

	var pm models.PostMedia
	err := r.db.QueryRowContext(ctx, query, postID).Scan(&pm.PostID, &pm.AssetID, &pm.DisplayOrder, &pm.Price, &pm.Description, &pm.Comments)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &pm, nil
}

func (r *postMediaRepository) ListByPostID(ctx context.Context, postID int64) ([]*models.PostMedia, error) {
	query := `
		SELECT post_id, asset_id, display_order, price, description, comments
		FROM post_media
		WHERE post_id = $1
		ORDER BY display_order
	`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var postMedias []*models.PostMedia
	for rows.Next() {
		var pm models.PostMedia
		if err := rows.Scan(&pm.PostID, &pm.AssetID, &pm.DisplayOrder, &pm.Price, &pm.Description, &pm.Comments); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		postMedias = append(postMedias, &pm)
	}

	if err = rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return postMedias, nil
}

func (r *postMediaRepository) Remove(ctx context.Context, postID int64) error {
	query := `
		DELETE FROM post_media
		WHERE post_id = $1
	`

	_, err := r.db.ExecContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}
