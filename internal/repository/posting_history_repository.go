package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/autumsam/postpilot/internal/models"
)

type PostingHistoryRepository interface {
	Create(ctx context.Context, ph *models.PostingHistory) (int64, error)
	GetByUserID(ctx context.Context, userID int64) ([]*models.PostingHistory, error)
	GetByPostID(ctx context.Context, postID int64) ([]*models.PostingHistory, error)
}

type postingHistoryRepository struct {
	db *sql.DB
}

func NewPostingHistoryRepository(db *sql.DB) PostingHistoryRepository {
	return &postingHistoryRepository{db: db}
}

func (r *postingHistoryRepository) Create(ctx context.Context, ph *models.PostingHistory) (int64, error) {
	query := `
		INSERT INTO posting_history (user_id, post_id, account_id, error_message)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, ph.UserID, ph.PostID, ph.AccountID, ph.ErrorMessage).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *postingHistoryRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.PostingHistory, error) {
	query := `
		SELECT id, user_id, post_id, account_id, error_message, created_at
		FROM posting_history
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, userID)
}

func (r *postingHistoryRepository) GetByPostID(ctx context.Context, postID int64) ([]*models.PostingHistory, error) {
	query := `
		SELECT id, user_id, post_id, account_id, error_message, created_at
		FROM posting_history
		WHERE post_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, postID)
}

func (r *postingHistoryRepository) list(ctx context.Context, query string, arg any) ([]*models.PostingHistory, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var history []*models.PostingHistory
	for rows.Next() {
		var ph models.PostingHistory
		if err := rows.Scan(&ph.ID, &ph.UserID, &ph.PostID, &ph.AccountID, &ph.ErrorMessage, &ph.CreatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		history = append(history, &ph)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return history, nil
}
