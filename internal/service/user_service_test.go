package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/autumsam/postpilot/internal/models"
	"github.com/autumsam/postpilot/internal/repository"
	"github.com/autumsam/postpilot/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users map[int64]*models.User

	listFilter  repository.UserFilter
	updatedRole struct {
		userID int64
		role   string
	}
	updatedPlan struct {
		userID int64
		plan   string
	}
	statusIDs []int64
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	m := make(map[int64]*models.User)
	for _, u := range users {
		m[u.ID] = u
	}
	return &fakeUserRepo{users: m}
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, bool, error) {
	u, ok := f.users[id]
	return u, ok, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, true, nil
		}
	}
	return nil, false, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *sql.Tx, user *models.User) (int64, error) {
	return 0, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error { return nil }

func (f *fakeUserRepo) List(ctx context.Context, filter repository.UserFilter) ([]*models.User, error) {
	f.listFilter = filter
	return nil, nil
}

func (f *fakeUserRepo) UpdateRole(ctx context.Context, userID int64, role string) error {
	f.updatedRole.userID = userID
	f.updatedRole.role = role
	return nil
}

func (f *fakeUserRepo) UpdateStatus(ctx context.Context, userIDs []int64, status string) error {
	f.statusIDs = userIDs
	return nil
}

func (f *fakeUserRepo) UpdatePlan(ctx context.Context, userID int64, plan string) error {
	f.updatedPlan.userID = userID
	f.updatedPlan.plan = plan
	return nil
}

func (f *fakeUserRepo) TouchLastActive(ctx context.Context, userID int64) error { return nil }

func (f *fakeUserRepo) Remove(ctx context.Context, id int64) error { return nil }

func TestGetUserInfoNotFound(t *testing.T) {
	s := NewUserService(newFakeUserRepo())

	_, err := s.GetUserInfo(context.Background(), 99)
	assert.EqualError(t, err, "user not found")
}

func TestListUsersClampsLimit(t *testing.T) {
	repo := newFakeUserRepo()
	s := NewUserService(repo)

	_, err := s.ListUsers(context.Background(), repository.UserFilter{Limit: 0})
	require.NoError(t, err)
	assert.Equal(t, 50, repo.listFilter.Limit)

	_, err = s.ListUsers(context.Background(), repository.UserFilter{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 50, repo.listFilter.Limit)

	_, err = s.ListUsers(context.Background(), repository.UserFilter{Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 20, repo.listFilter.Limit)
}

func TestUpdateRoleRejectsSelfDemotion(t *testing.T) {
	repo := newFakeUserRepo(&models.User{ID: 1, Role: models.RoleAdmin})
	s := NewUserService(repo)

	err := s.UpdateRole(context.Background(), 1, &transfer.UpdateRoleRequest{UserID: 1, Role: models.RoleUser})
	assert.EqualError(t, err, "cannot change own role")
	assert.Zero(t, repo.updatedRole.userID)
}

func TestUpdateRoleRequiresExistingUser(t *testing.T) {
	s := NewUserService(newFakeUserRepo())

	err := s.UpdateRole(context.Background(), 1, &transfer.UpdateRoleRequest{UserID: 2, Role: models.RoleAdmin})
	assert.EqualError(t, err, "user not found")
}

func TestUpdateRolePromotesOtherUser(t *testing.T) {
	repo := newFakeUserRepo(&models.User{ID: 2, Role: models.RoleUser})
	s := NewUserService(repo)

	err := s.UpdateRole(context.Background(), 1, &transfer.UpdateRoleRequest{UserID: 2, Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, int64(2), repo.updatedRole.userID)
	assert.Equal(t, models.RoleAdmin, repo.updatedRole.role)
}

func TestBulkUpdateStatusRequiresUsers(t *testing.T) {
	s := NewUserService(newFakeUserRepo())

	err := s.BulkUpdateStatus(context.Background(), &transfer.BulkStatusRequest{Status: models.UserStatusSuspended})
	assert.EqualError(t, err, "no users selected")
}

func TestUpdatePlanRequiresExistingUser(t *testing.T) {
	repo := newFakeUserRepo(&models.User{ID: 3})
	s := NewUserService(repo)

	err := s.UpdatePlan(context.Background(), &transfer.UpdatePlanRequest{UserID: 9, Plan: models.PlanPremium})
	assert.EqualError(t, err, "user not found")

	err = s.UpdatePlan(context.Background(), &transfer.UpdatePlanRequest{UserID: 3, Plan: models.PlanPremium})
	require.NoError(t, err)
	assert.Equal(t, models.PlanPremium, repo.updatedPlan.plan)
}
