package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/autumsam/postpilot/internal/models"
	"github.com/autumsam/postpilot/internal/repository"
	"github.com/autumsam/postpilot/internal/transfer"
)

type UserService interface {
	GetUserInfo(ctx context.Context, id int64) (*models.User, error)
	TouchLastActive(ctx context.Context, userID int64)
	RemoveUser(ctx context.Context, userID int64) error

	ListUsers(ctx context.Context, filter repository.UserFilter) ([]*models.User, error)
	UpdateRole(ctx context.Context, adminID int64, req *transfer.UpdateRoleRequest) error
	BulkUpdateStatus(ctx context.Context, req *transfer.BulkStatusRequest) error
	UpdatePlan(ctx context.Context, req *transfer.UpdatePlanRequest) error
}

type userService struct {
	u repository.UserRepository
}

func NewUserService(u repository.UserRepository) UserService {
	return &userService{
		u: u,
	}
}

func (s *userService) GetUserInfo(ctx context.Context, id int64) (*models.User, error) {
	user, isExist, err := s.u.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting user info")
	}

	if !isExist {
		err = errors.New("user not found")
		slog.Info(err.Error())
		return nil, err
	}

	return user, nil
}

// TouchLastActive is best effort; a write failure only gets logged.
func (s *userService) TouchLastActive(ctx context.Context, userID int64) {
	if err := s.u.TouchLastActive(ctx, userID); err != nil {
		slog.Info(err.Error())
	}
}

func (s *userService) RemoveUser(ctx context.Context, userID int64) error {
	return s.u.Remove(ctx, userID)
}

func (s *userService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]*models.User, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}
	users, err := s.u.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing users")
	}
	return users, nil
}

// UpdateRole changes another user's role. Admins cannot demote themselves,
// so there is always at least one admin left.
func (s *userService) UpdateRole(ctx context.Context, adminID int64, req *transfer.UpdateRoleRequest) error {
	if req.UserID == adminID {
		err := errors.New("cannot change own role")
		slog.Info(err.Error())
		return err
	}

	_, isExist, err := s.u.GetByID(ctx, req.UserID)
	if err != nil {
		return err
	}
	if !isExist {
		err = errors.New("user not found")
		slog.Info(err.Error())
		return err
	}

	return s.u.UpdateRole(ctx, req.UserID, req.Role)
}

func (s *userService) BulkUpdateStatus(ctx context.Context, req *transfer.BulkStatusRequest) error {
	if len(req.UserIDs) == 0 {
		err := errors.New("no users selected")
		slog.Info(err.Error())
		return err
	}
	return s.u.UpdateStatus(ctx, req.UserIDs, req.Status)
}

func (s *userService) UpdatePlan(ctx context.Context, req *transfer.UpdatePlanRequest) error {
	_, isExist, err := s.u.GetByID(ctx, req.UserID)
	if err != nil {
		return err
	}
	if !isExist {
		err = errors.New("user not found")
		slog.Info(err.Error())
		return err
	}

	return s.u.UpdatePlan(ctx, req.UserID, req.Plan)
}
