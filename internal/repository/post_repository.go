package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/autumsam/postpilot/internal/models"
)

type PostRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error)
	GetByUserID(ctx context.Context, userID int64) ([]*models.Post, error)
	RecentCaptions(ctx context.Context, userID int64, limit int) ([]string, error)
	UpdatePostStatus(ctx context.Context, status string, postID int64) error
	CheckByUserID(ctx context.Context, postID, userID int64) (bool, error)
	Remove(ctx context.Context, id int64) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = "id, user_id, post_type, caption, scheduled_time, status, created_at, updated_at"

func scanPost(row interface{ Scan(...any) error }) (*models.Post, error) {
	var post models.Post
	err := row.Scan(&post.ID, &post.UserID, &post.PostType, &post.Caption,
		&post.ScheduledTime, &post.Status, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	query := `
		INSERT INTO posts (user_id, post_type, caption, scheduled_time, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, post.UserID, post.PostType, post.Caption, post.ScheduledTime, post.Status).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, post.UserID, post.PostType, post.Caption, post.ScheduledTime, post.Status).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := "SELECT " + postColumns + " FROM posts WHERE id = $1"
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return post, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	query := "SELECT " + postColumns + " FROM posts WHERE user_id = $1 ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return posts, nil
}

// RecentCaptions feeds the "use previous posts" switch of the AI prompt.
func (r *postRepository) RecentCaptions(ctx context.Context, userID int64, limit int) ([]string, error) {
	query := `
		SELECT caption FROM posts
		WHERE user_id = $1 AND status = $2 AND caption <> ''
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, models.PostStatusPosted, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var captions []string
	for rows.Next() {
		var caption string
		if err := rows.Scan(&caption); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		captions = append(captions, caption)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return captions, nil
}

func (r *postRepository) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	query := "SELECT 1 FROM posts WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, postID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *postRepository) UpdatePostStatus(ctx context.Context, status string, postID int64) error {
	query := `
		UPDATE posts
		SET status = $1,
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)

	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
