package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	cfg "github.com/autumsam/postpilot/configs"
	"github.com/autumsam/postpilot/internal/composer"
	"github.com/autumsam/postpilot/internal/models"
	"github.com/autumsam/postpilot/internal/repository"
	"github.com/autumsam/postpilot/pkg/utils"
)

const (
	TWITTER_AUTH_URL   = "https://twitter.com/i/oauth2/authorize"
	INSTAGRAM_AUTH_URL = "https://www.instagram.com/oauth/authorize"
	FACEBOOK_AUTH_URL  = "https://www.facebook.com/v21.0/dialog/oauth"
	LINKEDIN_AUTH_URL  = "https://www.linkedin.com/oauth/v2/authorization"
	TIKTOK_AUTH_URL    = "https://www.tiktok.com/v2/auth/authorize"
)

type PlatformService interface {
	GetAuthURL(ctx context.Context, platform, tokenString string) string
	List(ctx context.Context, userID int64) ([]*models.SocialAccount, error)
	Delete(ctx context.Context, userID, accountID int64) error
}

type platformService struct {
	cfg    cfg.Config
	sa     repository.SocialAccountRepository
	tiktok TiktokService
}

func NewPlatformService(c cfg.Config, sa repository.SocialAccountRepository, tiktok TiktokService) PlatformService {
	return &platformService{
		cfg:    c,
		sa:     sa,
		tiktok: tiktok,
	}
}

// GetAuthURL builds the platform's OAuth consent URL. The signed session
// token rides along as state so the callback can tie the new account to
// the logged-in user.
func (s *platformService) GetAuthURL(ctx context.Context, platform, tokenString string) string {
	params := url.Values{}
	params.Add("response_type", "code")
	params.Add("state", tokenString)

	switch composer.PlatformID(platform) {
	case composer.PlatformTwitter:
		params.Add("client_id", s.cfg.Twitter.ClientID)
		params.Add("redirect_uri", s.cfg.Twitter.RedirectURI)
		params.Add("scope", "tweet.read tweet.write users.read offline.access")
		params.Add("code_challenge", "challenge")
		params.Add("code_challenge_method", "plain")
		return fmt.Sprintf("%s?%s", TWITTER_AUTH_URL, params.Encode())

	case composer.PlatformInstagram:
		params.Add("client_id", s.cfg.Instagram.ClientID)
		params.Add("redirect_uri", s.cfg.Instagram.RedirectURI)
		params.Add("scope", "instagram_business_basic,instagram_business_content_publish")
		return fmt.Sprintf("%s?%s", INSTAGRAM_AUTH_URL, params.Encode())

	case composer.PlatformFacebook:
		params.Add("client_id", s.cfg.Facebook.ClientID)
		params.Add("redirect_uri", s.cfg.Facebook.RedirectURI)
		params.Add("scope", "pages_manage_posts,pages_read_engagement")
		return fmt.Sprintf("%s?%s", FACEBOOK_AUTH_URL, params.Encode())

	case composer.PlatformLinkedIn:
		params.Add("client_id", s.cfg.LinkedIn.ClientID)
		params.Add("redirect_uri", s.cfg.LinkedIn.RedirectURI)
		params.Add("scope", "openid profile w_member_social")
		return fmt.Sprintf("%s?%s", LINKEDIN_AUTH_URL, params.Encode())

	case composer.PlatformTiktok:
		params.Add("client_key", s.cfg.Tiktok.ClientID)
		params.Add("redirect_uri", s.cfg.Tiktok.RedirectURI)
		params.Add("scope", "user.info.basic,user.info.profile,video.publish,video.upload")
		return fmt.Sprintf("%s?%s", TIKTOK_AUTH_URL, params.Encode())

	default:
		return ""
	}
}

func (s *platformService) List(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	accounts, err := s.sa.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting social accounts")
	}
	return accounts, nil
}

func (s *platformService) Delete(ctx context.Context, userID, accountID int64) error {
	var err error

	if accountID == 0 {
		err = errors.New("account id is not valid")
		slog.Info(err.Error())
		return err
	}

	isValid, err := s.sa.CheckByUserID(ctx, accountID, userID)
	if err != nil {
		return err
	}
	if !isValid {
		err = errors.New("social account doesn't exist")
		slog.Info(err.Error())
		return err
	}

	accountInfo, err := s.sa.GetByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("unable to get social account info")
	}

	// Best effort revoke where the platform supports it; the local row is
	// removed either way.
	if accountInfo.Platform == string(composer.PlatformTiktok) && s.tiktok != nil {
		accessToken, err := utils.Decrypt(accountInfo.AccessToken, []byte(s.cfg.SecretKey))
		if err == nil {
			if err := s.tiktok.RevokeAccess(ctx, accessToken); err != nil {
				slog.Info(err.Error())
			}
		}
	}

	if err = s.sa.Remove(ctx, accountID); err != nil {
		return fmt.Errorf("error removing account info")
	}

	return nil
}
