package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/autumsam/postpilot/internal/models"
	"github.com/autumsam/postpilot/internal/repository"
	"github.com/autumsam/postpilot/internal/service"
)

// TokenRefreshJob renews platform tokens that are close to expiry. It runs
// on a cron schedule and refreshes every account expiring within the next
// half hour.
type TokenRefreshJob struct {
	sr repository.SocialAccountRepository
	tw service.TwitterService
	ig service.InstagramService
	fb service.FacebookService
	li service.LinkedInService
	tt service.TiktokService
}

func NewTokenRefreshJob(
	sr repository.SocialAccountRepository,
	tw service.TwitterService,
	ig service.InstagramService,
	fb service.FacebookService,
	li service.LinkedInService,
	tt service.TiktokService) *TokenRefreshJob {
	return &TokenRefreshJob{
		sr: sr,
		tw: tw,
		ig: ig,
		fb: fb,
		li: li,
		tt: tt,
	}
}

func (c *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	currentTime := time.Now()
	timeIn30Minutes := currentTime.Add(30 * time.Minute)

	accounts, err := c.sr.ListByTimeInterval(ctx, currentTime, timeIn30Minutes)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 10)

	for _, acc := range accounts {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(acc *models.SocialAccount) {
			defer wg.Done()
			defer func() { <-semaphore }()

			var err error
			switch acc.Platform {
			case "twitter":
				err = c.tw.RefreshToken(ctx, acc.UserID, acc.AccessToken, acc.RefreshToken)
			case "instagram":
				err = c.ig.RefreshToken(ctx, acc.UserID, acc.RefreshToken)
			case "facebook":
				err = c.fb.RefreshToken(ctx, acc.UserID, acc.AccessToken)
			case "linkedin":
				err = c.li.RefreshToken(ctx, acc.UserID, acc.AccessToken, acc.RefreshToken)
			case "tiktok":
				err = c.tt.RefreshToken(ctx, acc.UserID, acc.AccessToken, acc.RefreshToken)
			}
			if err != nil {
				slog.Info("unable to refresh token", "platform", acc.Platform, "account_id", acc.ID)
			}
		}(acc)
	}

	wg.Wait()
}
