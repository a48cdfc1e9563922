package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/autumsam/postpilot/internal/models"
)

type SubscriptionRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Subscription, bool, error)
	Upsert(ctx context.Context, subscription *models.Subscription) error
	ListActive(ctx context.Context) ([]*models.Subscription, error)
}

type subscriptionRepository struct {
	db *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) GetByUserID(ctx context.Context, userID int64) (*models.Subscription, bool, error) {
	query := `
		SELECT id, user_id, subscription_id, plan, subscription_end_date, status
		FROM subscriptions
		WHERE user_id = $1
	`

	var s models.Subscription
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&s.ID, &s.UserID, &s.SubscriptionID, &s.Plan, &s.SubscriptionEndDate, &s.Status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}

	return &s, true, nil
}

func (r *subscriptionRepository) Upsert(ctx context.Context, subscription *models.Subscription) error {
	query := `
		INSERT INTO subscriptions (user_id, subscription_id, plan, subscription_end_date, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id)
		DO UPDATE SET
			subscription_id = EXCLUDED.subscription_id,
			plan = EXCLUDED.plan,
			subscription_end_date = EXCLUDED.subscription_end_date,
			status = EXCLUDED.status,
			updated_at = $6
	`
	_, err := r.db.ExecContext(ctx, query, subscription.UserID, subscription.SubscriptionID,
		subscription.Plan, subscription.SubscriptionEndDate, subscription.Status, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *subscriptionRepository) ListActive(ctx context.Context) ([]*models.Subscription, error) {
	query := `
		SELECT id, user_id, subscription_id, plan, subscription_end_date, status
		FROM subscriptions
		WHERE status = 'active'
		ORDER BY subscription_end_date
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var subs []*models.Subscription
	for rows.Next() {
		var s models.Subscription
		if err := rows.Scan(&s.ID, &s.UserID, &s.SubscriptionID, &s.Plan, &s.SubscriptionEndDate, &s.Status); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		subs = append(subs, &s)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return subs, nil
}
