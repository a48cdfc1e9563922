package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/autumsam/postpilot/internal/models"
	"github.com/autumsam/postpilot/internal/repository"
	"github.com/autumsam/postpilot/internal/transfer"
)

type SubscriptionService interface {
	HandleSubscription(ctx context.Context, payload *transfer.SubscriptionEvent) error
	Overview(ctx context.Context, userID int64) (*models.Subscription, error)
}

type subscriptionService struct {
	u repository.UserRepository
	s repository.SubscriptionRepository
}

func NewSubscriptionService(u repository.UserRepository, s repository.SubscriptionRepository) SubscriptionService {
	return &subscriptionService{
		u: u,
		s: s,
	}
}

// planFromProduct maps the billing product name to an account plan.
func planFromProduct(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "premium":
		return models.PlanPremium
	case "basic":
		return models.PlanBasic
	default:
		return models.PlanFree
	}
}

// HandleSubscription applies a billing webhook. Paid events upsert the
// subscription row and move the user onto the purchased plan; expiry and
// cancellation drop them back to free.
func (s *subscriptionService) HandleSubscription(ctx context.Context, payload *transfer.SubscriptionEvent) error {
	if payload == nil {
		err := errors.New("subscription payload is nil")
		slog.Error(err.Error())
		return err
	}

	customerEmail := payload.Object.Customer.Email
	user, isExist, err := s.u.GetByEmail(ctx, customerEmail)
	if err != nil {
		return fmt.Errorf("fetching user by email failed: %w", err)
	}
	if !isExist {
		err = fmt.Errorf("no account for customer %s", customerEmail)
		slog.Info(err.Error())
		return err
	}

	switch payload.EventType {
	case "subscription.paid":
		plan := planFromProduct(payload.Object.Product.Name)

		subscription := &models.Subscription{
			UserID:              user.ID,
			SubscriptionID:      payload.Object.ID,
			Plan:                plan,
			SubscriptionEndDate: payload.Object.CurrentPeriodEndDate,
			Status:              payload.Object.Status,
		}
		if err := s.s.Upsert(ctx, subscription); err != nil {
			return err
		}

		return s.u.UpdatePlan(ctx, user.ID, plan)

	case "subscription.canceled", "subscription.expired":
		subscription := &models.Subscription{
			UserID:              user.ID,
			SubscriptionID:      payload.Object.ID,
			Plan:                models.PlanFree,
			SubscriptionEndDate: payload.Object.CurrentPeriodEndDate,
			Status:              payload.Object.Status,
		}
		if err := s.s.Upsert(ctx, subscription); err != nil {
			return err
		}

		return s.u.UpdatePlan(ctx, user.ID, models.PlanFree)
	}

	// Unhandled event types are acknowledged so the provider stops retrying.
	return nil
}

func (s *subscriptionService) Overview(ctx context.Context, userID int64) (*models.Subscription, error) {
	subscription, isExist, err := s.s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return &models.Subscription{
			UserID: userID,
			Plan:   models.PlanFree,
			Status: "none",
		}, nil
	}
	return subscription, nil
}
