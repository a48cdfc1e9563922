package service

import (
	"context"
	"errors"
	"testing"

	"github.com/autumsam/postpilot/internal/composer"
	"github.com/autumsam/postpilot/internal/models"
	"github.com/autumsam/postpilot/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSettingsRepo struct {
	stored *models.Settings
	err    error

	upserted *models.Settings
}

func (f *fakeSettingsRepo) GetByUserID(ctx context.Context, userID int64) (*models.Settings, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	return f.stored, f.stored != nil, nil
}

func (f *fakeSettingsRepo) Upsert(ctx context.Context, s *models.Settings, userID int64) error {
	f.upserted = s
	return f.err
}

func TestGetSettingsInfoFallsBackWhenMissing(t *testing.T) {
	s := NewSettingsService(&fakeSettingsRepo{})

	got, err := s.GetSettingsInfo(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, "19:00", got.PostingTime)
	assert.Equal(t, "twitter,instagram", got.DefaultPlatforms)
}

func TestGetSettingsInfoReturnsStoredRow(t *testing.T) {
	repo := &fakeSettingsRepo{stored: &models.Settings{UserID: 7, PostingTime: "08:00", DefaultPlatforms: "linkedin"}}
	s := NewSettingsService(repo)

	got, err := s.GetSettingsInfo(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "08:00", got.PostingTime)
}

func TestUpdateSettingsRejectsBadTime(t *testing.T) {
	repo := &fakeSettingsRepo{}
	s := NewSettingsService(repo)

	err := s.UpdateSettings(context.Background(), 7, &transfer.UpdateSettingsRequest{PostingTime: "9pm"})
	assert.Error(t, err)
	assert.Nil(t, repo.upserted)
}

func TestUpdateSettingsJoinsPlatforms(t *testing.T) {
	repo := &fakeSettingsRepo{}
	s := NewSettingsService(repo)

	err := s.UpdateSettings(context.Background(), 7, &transfer.UpdateSettingsRequest{
		PostingTime:      "21:00",
		DefaultPlatforms: []string{"twitter", "tiktok"},
		BrandName:        "acme",
	})
	require.NoError(t, err)
	require.NotNil(t, repo.upserted)
	assert.Equal(t, "twitter,tiktok", repo.upserted.DefaultPlatforms)
	assert.Equal(t, "acme", repo.upserted.BrandName)
}

func TestComposerDefaultsSplitsPlatformList(t *testing.T) {
	repo := &fakeSettingsRepo{stored: &models.Settings{
		PostingTime:      "08:00",
		DefaultPlatforms: "twitter, linkedin ,,tiktok",
		BrandName:        "acme",
	}}
	s := NewSettingsService(repo)

	d, err := s.ComposerDefaults(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "08:00", d.ScheduleTime)
	assert.Equal(t, []composer.PlatformID{"twitter", "linkedin", "tiktok"}, d.EnabledPlatforms)
	assert.Equal(t, "acme", d.BrandName)
}

func TestComposerDefaultsZeroWhenMissing(t *testing.T) {
	s := NewSettingsService(&fakeSettingsRepo{})

	d, err := s.ComposerDefaults(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, composer.Defaults{}, d)
}

func TestComposerDefaultsPropagatesError(t *testing.T) {
	s := NewSettingsService(&fakeSettingsRepo{err: errors.New("db down")})

	_, err := s.ComposerDefaults(context.Background(), 7)
	assert.Error(t, err)
}
