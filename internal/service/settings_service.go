package service

import (
	"context"
	"strings"
	"time"

	"github.com/autumsam/postpilot/internal/composer"
	"github.com/autumsam/postpilot/internal/models"
	"github.com/autumsam/postpilot/internal/repository"
	"github.com/autumsam/postpilot/internal/transfer"
)

type SettingsService interface {
	composer.DefaultsSource
	GetSettingsInfo(ctx context.Context, userID int64) (*models.Settings, error)
	UpdateSettings(ctx context.Context, userID int64, req *transfer.UpdateSettingsRequest) error
}

type settingsService struct {
	sr repository.SettingsRepository
}

func NewSettingsService(sr repository.SettingsRepository) SettingsService {
	return &settingsService{
		sr: sr,
	}
}

// GetSettingsInfo returns stored settings, or the composer fallbacks
// materialized as a settings row for users who never saved any.
func (s *settingsService) GetSettingsInfo(ctx context.Context, userID int64) (*models.Settings, error) {
	settings, isExist, err := s.sr.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !isExist {
		return &models.Settings{
			UserID:           userID,
			PostingTime:      "19:00",
			DefaultPlatforms: "twitter,instagram",
		}, nil
	}

	return settings, nil
}

func (s *settingsService) UpdateSettings(ctx context.Context, userID int64, req *transfer.UpdateSettingsRequest) error {
	if _, err := time.Parse("15:04", req.PostingTime); err != nil {
		return err
	}

	settings := models.Settings{
		PostingTime:      req.PostingTime,
		DefaultPlatforms: strings.Join(req.DefaultPlatforms, ","),
		BrandName:        req.BrandName,
	}
	return s.sr.Upsert(ctx, &settings, userID)
}

// ComposerDefaults seeds a fresh composer from the user's settings. Missing
// settings yield zero values, which the composer replaces with its own
// fallbacks.
func (s *settingsService) ComposerDefaults(ctx context.Context, userID int64) (composer.Defaults, error) {
	settings, isExist, err := s.sr.GetByUserID(ctx, userID)
	if err != nil {
		return composer.Defaults{}, err
	}
	if !isExist {
		return composer.Defaults{}, nil
	}

	var platforms []composer.PlatformID
	for _, p := range strings.Split(settings.DefaultPlatforms, ",") {
		if p = strings.TrimSpace(p); p != "" {
			platforms = append(platforms, composer.PlatformID(p))
		}
	}

	return composer.Defaults{
		ScheduleTime:     settings.PostingTime,
		EnabledPlatforms: platforms,
		BrandName:        settings.BrandName,
	}, nil
}
