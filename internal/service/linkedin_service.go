package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	cfg "github.com/autumsam/postpilot/configs"
	"github.com/autumsam/postpilot/internal/models"
	"github.com/autumsam/postpilot/internal/repository"
	"github.com/autumsam/postpilot/internal/transfer"
	"github.com/autumsam/postpilot/pkg/utils"
	"golang.org/x/oauth2"
)

const (
	linkedinTokenURL    = "https://www.linkedin.com/oauth/v2/accessToken"
	linkedinUserInfoURL = "https://api.linkedin.com/v2/userinfo"
	linkedinPostsURL    = "https://api.linkedin.com/rest/posts"
	linkedinAPIVersion  = "202411"
)

type LinkedInService interface {
	Publisher
	Callback(ctx context.Context, code string, userID int64) error
	RefreshToken(ctx context.Context, userID int64, accessToken, refreshToken string) error
}

type linkedinService struct {
	cfg cfg.Config
	sa  repository.SocialAccountRepository
	pm  repository.PostMediaRepository
	ma  repository.MediaAssetRepository
}

func NewLinkedInService(
	c cfg.Config,
	sa repository.SocialAccountRepository,
	pm repository.PostMediaRepository,
	ma repository.MediaAssetRepository) LinkedInService {
	return &linkedinService{
		cfg: c,
		sa:  sa,
		pm:  pm,
		ma:  ma,
	}
}

func (s *linkedinService) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.LinkedIn.ClientID,
		ClientSecret: s.cfg.LinkedIn.ClientSecret,
		RedirectURL:  s.cfg.LinkedIn.RedirectURI,
		Scopes:       []string{"openid", "profile", "w_member_social"},
		Endpoint: oauth2.Endpoint{
			AuthURL:   LINKEDIN_AUTH_URL,
			TokenURL:  linkedinTokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func (s *linkedinService) Callback(ctx context.Context, code string, userID int64) error {
	if code == "" {
		err := errors.New("code is empty")
		slog.Info(err.Error())
		return err
	}

	token, err := s.oauthConfig().Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	userInfo, err := s.userInfo(ctx, token.AccessToken)
	if err != nil {
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(token.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}
	encryptedRefreshToken, err := utils.Encrypt([]byte(token.RefreshToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	accountInfo := &models.SocialAccount{
		UserID:          userID,
		Platform:        "linkedin",
		AccountID:       userInfo.Sub,
		AccountName:     userInfo.Name,
		AccountUsername: userInfo.Email,
		ProfilePicture:  userInfo.Picture,
		AccessToken:     encryptedAccessToken,
		RefreshToken:    encryptedRefreshToken,
		TokenExpiresAt:  token.Expiry,
	}

	_, err = s.sa.Create(ctx, nil, accountInfo)
	return err
}

func (s *linkedinService) userInfo(ctx context.Context, accessToken string) (*transfer.LinkedInUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, linkedinUserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("linkedin userinfo returned status %d", resp.StatusCode)
	}

	var userInfo transfer.LinkedInUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return &userInfo, nil
}

func (s *linkedinService) RefreshToken(ctx context.Context, userID int64, accessToken, refreshToken string) error {
	decryptedRefreshToken, err := utils.Decrypt(refreshToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	source := s.oauthConfig().TokenSource(ctx, &oauth2.Token{RefreshToken: decryptedRefreshToken})
	token, err := source.Token()
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(token.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}
	newRefreshToken := token.RefreshToken
	if newRefreshToken == "" {
		newRefreshToken = decryptedRefreshToken
	}
	encryptedRefreshToken, err := utils.Encrypt([]byte(newRefreshToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	socialAccount := models.SocialAccount{
		AccessToken:    encryptedAccessToken,
		RefreshToken:   encryptedRefreshToken,
		TokenExpiresAt: token.Expiry,
	}

	return s.sa.SetToken(ctx, userID, accessToken, &socialAccount)
}

// Publish shares the caption on the member's feed. Media is referenced by
// URL in the commentary; native media needs LinkedIn's upload flow, which
// member tokens scoped to w_member_social do not cover for carousels.
func (s *linkedinService) Publish(ctx context.Context, post *models.Post, acc *models.SocialAccount) error {
	accessToken, err := utils.Decrypt(acc.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	commentary := post.Caption
	assets, err := loadPostAssets(ctx, s.pm, s.ma, post.ID)
	if err != nil {
		return err
	}
	if len(assets) > 0 {
		urls := make([]string, 0, len(assets))
		for _, asset := range assets {
			urls = append(urls, asset.FileURL)
		}
		commentary = strings.TrimSpace(commentary + "\n" + strings.Join(urls, "\n"))
	}
	if commentary == "" {
		return errors.New("linkedin post text is empty")
	}

	postRequest := transfer.LinkedInPostRequest{
		Author:     fmt.Sprintf("urn:li:person:%s", acc.AccountID),
		Commentary: commentary,
		Visibility: "PUBLIC",
		Distribution: transfer.LinkedInDistribution{
			FeedDistribution: "MAIN_FEED",
		},
		LifecycleState: "PUBLISHED",
	}

	body, err := json.Marshal(postRequest)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, linkedinPostsURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("LinkedIn-Version", linkedinAPIVersion)
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		var linkedinErr transfer.LinkedInErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&linkedinErr); err == nil && linkedinErr.Message != "" {
			return fmt.Errorf("linkedin publish failed: %s", linkedinErr.Message)
		}
		return fmt.Errorf("linkedin publish returned status %d", resp.StatusCode)
	}

	slog.Info("linkedin post published", "post_id", resp.Header.Get("x-restli-id"))
	return nil
}
