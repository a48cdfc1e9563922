package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	cfg "github.com/autumsam/postpilot/configs"
	"github.com/autumsam/postpilot/internal/models"
	"github.com/autumsam/postpilot/internal/repository"
	"github.com/autumsam/postpilot/internal/transfer"
	"github.com/autumsam/postpilot/pkg/utils"
)

const (
	tiktokTokenURL       = "https://open.tiktokapis.com/v2/oauth/token/"
	tiktokUserInfoURL    = "https://open.tiktokapis.com/v2/user/info/?fields=open_id,avatar_url,display_name,username"
	tiktokVideoInitURL   = "https://open.tiktokapis.com/v2/post/publish/video/init/"
	tiktokContentInitURL = "https://open.tiktokapis.com/v2/post/publish/content/init/"
	tiktokRevokeURL      = "https://open.tiktokapis.com/v2/oauth/revoke/"
)

// Publisher pushes a stored post to one connected account.
type Publisher interface {
	Publish(ctx context.Context, post *models.Post, acc *models.SocialAccount) error
}

type TiktokService interface {
	Publisher
	Callback(ctx context.Context, code string, userID int64) error
	RefreshToken(ctx context.Context, userID int64, accessToken, refreshToken string) error
	RevokeAccess(ctx context.Context, accessToken string) error
}

type tiktokService struct {
	cfg cfg.Config
	sa  repository.SocialAccountRepository
	pm  repository.PostMediaRepository
	ma  repository.MediaAssetRepository
}

func NewTiktokService(
	c cfg.Config,
	sa repository.SocialAccountRepository,
	pm repository.PostMediaRepository,
	ma repository.MediaAssetRepository) TiktokService {
	return &tiktokService{
		cfg: c,
		sa:  sa,
		pm:  pm,
		ma:  ma,
	}
}

func (s *tiktokService) Callback(ctx context.Context, code string, userID int64) error {
	if code == "" {
		err := errors.New("code is empty")
		slog.Info(err.Error())
		return err
	}

	tokenResponse, err := s.exchangeCodeForToken(ctx, code)
	if err != nil {
		return err
	}

	userInfo, err := s.userInfo(ctx, tokenResponse.AccessToken)
	if err != nil {
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(tokenResponse.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}
	encryptedRefreshToken, err := utils.Encrypt([]byte(tokenResponse.RefreshToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	accountInfo := &models.SocialAccount{
		UserID:          userID,
		Platform:        "tiktok",
		AccountID:       userInfo.Data.User.OpenID,
		AccountName:     userInfo.Data.User.DisplayName,
		AccountUsername: userInfo.Data.User.Username,
		ProfilePicture:  userInfo.Data.User.AvatarURL,
		AccessToken:     encryptedAccessToken,
		RefreshToken:    encryptedRefreshToken,
		TokenExpiresAt:  GetExpiresAt(tokenResponse.ExpiresIn),
	}

	_, err = s.sa.Create(ctx, nil, accountInfo)
	return err
}

func (s *tiktokService) exchangeCodeForToken(ctx context.Context, code string) (*transfer.TiktokTokenResponse, error) {
	data := url.Values{}
	data.Add("client_key", s.cfg.Tiktok.ClientID)
	data.Add("client_secret", s.cfg.Tiktok.ClientSecret)
	data.Add("code", code)
	data.Add("grant_type", "authorization_code")
	data.Add("redirect_uri", s.cfg.Tiktok.RedirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tiktokTokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info("tiktok token endpoint returned non-200 status")
		return nil, errors.New("tiktok token endpoint returned non-200 status")
	}

	var tokenResponse transfer.TiktokTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	return &tokenResponse, nil
}

func (s *tiktokService) userInfo(ctx context.Context, accessToken string) (*transfer.TikTokResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tiktokUserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	var result transfer.TikTokResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if result.Error.Code != "" && result.Error.Code != "ok" {
		return nil, fmt.Errorf("tiktok user info failed: %s", result.Error.Message)
	}

	return &result, nil
}

func (s *tiktokService) RefreshToken(ctx context.Context, userID int64, accessToken, refreshToken string) error {
	decryptedRefreshToken, err := utils.Decrypt(refreshToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	data := url.Values{}
	data.Set("client_key", s.cfg.Tiktok.ClientID)
	data.Set("client_secret", s.cfg.Tiktok.ClientSecret)
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", decryptedRefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tiktokTokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tiktok token refresh returned status %d", resp.StatusCode)
	}

	var tokenResponse transfer.TiktokTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(tokenResponse.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}
	encryptedRefreshToken, err := utils.Encrypt([]byte(tokenResponse.RefreshToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	socialAccount := models.SocialAccount{
		AccessToken:    encryptedAccessToken,
		RefreshToken:   encryptedRefreshToken,
		TokenExpiresAt: GetExpiresAt(tokenResponse.ExpiresIn),
	}

	return s.sa.SetToken(ctx, userID, accessToken, &socialAccount)
}

// Publish sends the post to TikTok: single video posts go through the video
// init endpoint, photo sets through the content init endpoint.
func (s *tiktokService) Publish(ctx context.Context, post *models.Post, acc *models.SocialAccount) error {
	accessToken, err := utils.Decrypt(acc.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	assets, err := loadPostAssets(ctx, s.pm, s.ma, post.ID)
	if err != nil {
		return err
	}
	if len(assets) == 0 {
		return errors.New("tiktok posts need at least one media file")
	}

	if post.PostType == PostTypeMultiple {
		return s.publishPhotos(ctx, post, accessToken, assets)
	}
	return s.publishVideo(ctx, post, accessToken, assets[0])
}

func (s *tiktokService) publishVideo(ctx context.Context, post *models.Post, accessToken string, asset *models.MediaAsset) error {
	uploadRequest := transfer.TiktokVideoUploadRequest{
		PostInfo: transfer.TiktokVideoPostInfo{
			Title:        post.Caption,
			PrivacyLevel: "PUBLIC_TO_EVERYONE",
		},
		SourceInfo: transfer.TiktokVideoSourceInfo{
			Source:   "PULL_FROM_URL",
			VideoURL: asset.FileURL,
		},
	}

	return s.publishInit(ctx, tiktokVideoInitURL, accessToken, uploadRequest)
}

func (s *tiktokService) publishPhotos(ctx context.Context, post *models.Post, accessToken string, assets []*models.MediaAsset) error {
	photos := make([]string, 0, len(assets))
	for _, asset := range assets {
		photos = append(photos, asset.FileURL)
	}

	uploadRequest := transfer.TiktokPhotoUploadRequest{
		PostInfo: transfer.TiktokPhotoPostInfo{
			Title:        post.Caption,
			PrivacyLevel: "PUBLIC_TO_EVERYONE",
			AutoAddMusic: true,
		},
		SourceInfo: transfer.TiktokPhotoSourceInfo{
			Source:      "PULL_FROM_URL",
			PhotoImages: photos,
		},
		PostMode:  "DIRECT_POST",
		MediaType: "PHOTO",
	}

	return s.publishInit(ctx, tiktokContentInitURL, accessToken, uploadRequest)
}

func (s *tiktokService) publishInit(ctx context.Context, endpoint, accessToken string, payload any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer resp.Body.Close()

	var result transfer.TikTokUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tiktok publish failed: %s", result.Error.Message)
	}

	slog.Info("tiktok publish accepted", "publish_id", result.Data.PublishID)
	return nil
}

func (s *tiktokService) RevokeAccess(ctx context.Context, accessToken string) error {
	data := url.Values{}
	data.Add("client_key", s.cfg.Tiktok.ClientID)
	data.Add("client_secret", s.cfg.Tiktok.ClientSecret)
	data.Add("token", accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tiktokRevokeURL, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to revoke token, status code: %d", resp.StatusCode)
	}
	return nil
}
