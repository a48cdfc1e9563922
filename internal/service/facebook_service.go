package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	cfg "github.com/autumsam/postpilot/configs"
	"github.com/autumsam/postpilot/internal/models"
	"github.com/autumsam/postpilot/internal/repository"
	"github.com/autumsam/postpilot/internal/transfer"
	"github.com/autumsam/postpilot/pkg/utils"
)

const facebookGraphURL = "https://graph.facebook.com/v21.0"

type FacebookService interface {
	Publisher
	Callback(ctx context.Context, code string, userID int64) error
	RefreshToken(ctx context.Context, userID int64, accessToken string) error
}

type facebookService struct {
	cfg cfg.Config
	sa  repository.SocialAccountRepository
	pm  repository.PostMediaRepository
	ma  repository.MediaAssetRepository
}

func NewFacebookService(
	c cfg.Config,
	sa repository.SocialAccountRepository,
	pm repository.PostMediaRepository,
	ma repository.MediaAssetRepository) FacebookService {
	return &facebookService{
		cfg: c,
		sa:  sa,
		pm:  pm,
		ma:  ma,
	}
}

// Callback exchanges the code, upgrades to a long-lived token and stores
// the user's first managed page. Publishing happens against pages, so the
// page access token is what gets saved.
func (s *facebookService) Callback(ctx context.Context, code string, userID int64) error {
	if code == "" {
		err := errors.New("code is empty")
		slog.Info(err.Error())
		return err
	}

	shortLived, err := s.exchangeCodeForToken(ctx, code)
	if err != nil {
		return err
	}

	longLived, err := s.longLivedToken(ctx, shortLived.AccessToken)
	if err != nil {
		return err
	}

	userInfo, err := s.userInfo(ctx, longLived.AccessToken)
	if err != nil {
		return err
	}

	page, err := s.firstPage(ctx, longLived.AccessToken)
	if err != nil {
		return err
	}

	// Page tokens derived from a long-lived user token do not expire on
	// their own, so both columns hold the page token.
	encryptedPageToken, err := utils.Encrypt([]byte(page.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	accountInfo := &models.SocialAccount{
		UserID:          userID,
		Platform:        "facebook",
		AccountID:       page.ID,
		AccountName:     page.Name,
		AccountUsername: userInfo.Name,
		ProfilePicture:  userInfo.Picture.Data.URL,
		AccessToken:     encryptedPageToken,
		RefreshToken:    encryptedPageToken,
		TokenExpiresAt:  GetExpiresAt(longLived.ExpiresIn),
	}

	_, err = s.sa.Create(ctx, nil, accountInfo)
	return err
}

func (s *facebookService) exchangeCodeForToken(ctx context.Context, code string) (*transfer.FacebookTokenResponse, error) {
	params := url.Values{}
	params.Set("client_id", s.cfg.Facebook.ClientID)
	params.Set("client_secret", s.cfg.Facebook.ClientSecret)
	params.Set("redirect_uri", s.cfg.Facebook.RedirectURI)
	params.Set("code", code)

	return s.tokenRequest(ctx, params)
}

func (s *facebookService) longLivedToken(ctx context.Context, shortLivedToken string) (*transfer.FacebookTokenResponse, error) {
	params := url.Values{}
	params.Set("grant_type", "fb_exchange_token")
	params.Set("client_id", s.cfg.Facebook.ClientID)
	params.Set("client_secret", s.cfg.Facebook.ClientSecret)
	params.Set("fb_exchange_token", shortLivedToken)

	return s.tokenRequest(ctx, params)
}

func (s *facebookService) tokenRequest(ctx context.Context, params url.Values) (*transfer.FacebookTokenResponse, error) {
	reqURL := fmt.Sprintf("%s/oauth/access_token?%s", facebookGraphURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("facebook token endpoint returned status %d", resp.StatusCode)
	}

	var tokenResponse transfer.FacebookTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	return &tokenResponse, nil
}

func (s *facebookService) userInfo(ctx context.Context, accessToken string) (*transfer.FacebookUserInfo, error) {
	reqURL := fmt.Sprintf("%s/me?fields=id,name,picture&access_token=%s", facebookGraphURL, accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	var userInfo transfer.FacebookUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return &userInfo, nil
}

func (s *facebookService) firstPage(ctx context.Context, accessToken string) (*transfer.FacebookPage, error) {
	reqURL := fmt.Sprintf("%s/me/accounts?access_token=%s", facebookGraphURL, accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	var pages transfer.FacebookPagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&pages); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if len(pages.Data) == 0 {
		return nil, errors.New("no facebook pages available for this account")
	}

	return &pages.Data[0], nil
}

// RefreshToken re-exchanges the stored token for a fresh long-lived one.
func (s *facebookService) RefreshToken(ctx context.Context, userID int64, accessToken string) error {
	decryptedToken, err := utils.Decrypt(accessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	refreshed, err := s.longLivedToken(ctx, decryptedToken)
	if err != nil {
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(refreshed.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	socialAccount := models.SocialAccount{
		AccessToken:    encryptedAccessToken,
		RefreshToken:   encryptedAccessToken,
		TokenExpiresAt: GetExpiresAt(refreshed.ExpiresIn),
	}

	return s.sa.SetToken(ctx, userID, accessToken, &socialAccount)
}

// Publish posts to the stored page. With media the first image goes out as
// a photo post, otherwise the caption lands on the page feed.
func (s *facebookService) Publish(ctx context.Context, post *models.Post, acc *models.SocialAccount) error {
	pageToken, err := utils.Decrypt(acc.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	assets, err := loadPostAssets(ctx, s.pm, s.ma, post.ID)
	if err != nil {
		return err
	}

	params := url.Values{}
	params.Set("access_token", pageToken)

	var endpoint string
	if len(assets) > 0 {
		endpoint = fmt.Sprintf("%s/%s/photos", facebookGraphURL, acc.AccountID)
		params.Set("url", assets[0].FileURL)
		params.Set("caption", post.Caption)
	} else {
		endpoint = fmt.Sprintf("%s/%s/feed", facebookGraphURL, acc.AccountID)
		params.Set("message", post.Caption)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s?%s", endpoint, params.Encode()), nil)
	if err != nil {
		return err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer resp.Body.Close()

	var result transfer.FacebookPostResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("facebook publish failed: %s", result.Error.Message)
	}

	slog.Info("facebook post published", "post_id", result.ID)
	return nil
}
