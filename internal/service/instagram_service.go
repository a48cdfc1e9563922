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

const instagramGraphURL = "https://graph.instagram.com"

type InstagramService interface {
	Publisher
	Callback(ctx context.Context, code string, userID int64) error
	RefreshToken(ctx context.Context, userID int64, refreshToken string) error
}

type instagramService struct {
	cfg cfg.Config
	sa  repository.SocialAccountRepository
	pm  repository.PostMediaRepository
	ma  repository.MediaAssetRepository
}

func NewInstagramService(
	c cfg.Config,
	sa repository.SocialAccountRepository,
	pm repository.PostMediaRepository,
	ma repository.MediaAssetRepository) InstagramService {
	return &instagramService{
		cfg: c,
		sa:  sa,
		pm:  pm,
		ma:  ma,
	}
}

func (ig *instagramService) Callback(ctx context.Context, code string, userID int64) error {
	if code == "" {
		err := errors.New("code is empty")
		slog.Info(err.Error())
		return err
	}

	shortLived, err := ig.shortLivedToken(ctx, code)
	if err != nil {
		return err
	}

	longLived, err := ig.longLivedToken(ctx, shortLived.AccessToken)
	if err != nil {
		return err
	}

	userInfo, err := ig.userInfo(ctx, longLived.AccessToken)
	if err != nil {
		return err
	}

	// Instagram has no separate refresh token; the long-lived token refreshes
	// itself, so it fills both columns.
	encryptedAccessToken, err := utils.Encrypt([]byte(longLived.AccessToken), []byte(ig.cfg.SecretKey))
	if err != nil {
		return err
	}

	accountInfo := &models.SocialAccount{
		UserID:          userID,
		Platform:        "instagram",
		AccountID:       userInfo.UserID,
		AccountName:     userInfo.Name,
		AccountUsername: userInfo.Username,
		ProfilePicture:  userInfo.ProfilePicture,
		AccessToken:     encryptedAccessToken,
		RefreshToken:    encryptedAccessToken,
		TokenExpiresAt:  GetExpiresAt(longLived.ExpiresIn),
	}

	_, err = ig.sa.Create(ctx, nil, accountInfo)
	return err
}

func (ig *instagramService) shortLivedToken(ctx context.Context, code string) (*transfer.InstagramTokenResponse, error) {
	data := url.Values{}
	data.Set("client_id", ig.cfg.Instagram.ClientID)
	data.Set("client_secret", ig.cfg.Instagram.ClientSecret)
	data.Set("grant_type", "authorization_code")
	data.Set("redirect_uri", ig.cfg.Instagram.RedirectURI)
	data.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.instagram.com/oauth/access_token", strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to get short-lived token: %w", err)
	}
	defer resp.Body.Close()

	var result transfer.InstagramTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	return &result, nil
}

func (ig *instagramService) longLivedToken(ctx context.Context, shortLivedToken string) (*transfer.InstagramLongLivedToken, error) {
	reqURL := fmt.Sprintf(
		"%s/access_token?grant_type=ig_exchange_token&client_secret=%s&access_token=%s",
		instagramGraphURL, ig.cfg.Instagram.ClientSecret, shortLivedToken,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to get long-lived token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("instagram token exchange returned status %d", resp.StatusCode)
	}

	var result transfer.InstagramLongLivedToken
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode long-lived token response: %w", err)
	}

	return &result, nil
}

func (ig *instagramService) userInfo(ctx context.Context, accessToken string) (*transfer.InstagramUserInfo, error) {
	reqURL := fmt.Sprintf(
		"%s/me?fields=id,username,name,account_type,profile_picture_url&access_token=%s",
		instagramGraphURL, accessToken,
	)

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

	var userInfo transfer.InstagramUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &userInfo, nil
}

func (ig *instagramService) RefreshToken(ctx context.Context, userID int64, refreshToken string) error {
	decryptedToken, err := utils.Decrypt(refreshToken, []byte(ig.cfg.SecretKey))
	if err != nil {
		return err
	}

	reqURL := fmt.Sprintf(
		"%s/refresh_access_token?grant_type=ig_refresh_token&access_token=%s",
		instagramGraphURL, decryptedToken,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result transfer.InstagramLongLivedToken
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(result.AccessToken), []byte(ig.cfg.SecretKey))
	if err != nil {
		return err
	}

	socialAccount := models.SocialAccount{
		AccessToken:    encryptedAccessToken,
		RefreshToken:   encryptedAccessToken,
		TokenExpiresAt: GetExpiresAt(result.ExpiresIn),
	}

	return ig.sa.SetToken(ctx, userID, refreshToken, &socialAccount)
}

// Publish creates the media container(s) and publishes them. Single media
// goes out directly, multiple media as a carousel.
func (ig *instagramService) Publish(ctx context.Context, post *models.Post, acc *models.SocialAccount) error {
	accessToken, err := utils.Decrypt(acc.AccessToken, []byte(ig.cfg.SecretKey))
	if err != nil {
		return err
	}

	assets, err := loadPostAssets(ctx, ig.pm, ig.ma, post.ID)
	if err != nil {
		return err
	}
	if len(assets) == 0 {
		return errors.New("instagram posts need at least one media file")
	}

	var containerID string
	if post.PostType == PostTypeMultiple {
		containerID, err = ig.createCarouselContainer(ctx, acc.AccountID, post.Caption, accessToken, assets)
	} else {
		containerID, err = ig.createContainer(ctx, acc.AccountID, accessToken, map[string]any{
			"image_url":    assets[0].FileURL,
			"caption":      post.Caption,
			"access_token": accessToken,
		})
	}
	if err != nil {
		return err
	}

	return ig.publishContainer(ctx, acc.AccountID, containerID, accessToken)
}

func (ig *instagramService) createCarouselContainer(ctx context.Context, accountID, caption, accessToken string, assets []*models.MediaAsset) (string, error) {
	children := make([]string, 0, len(assets))
	for _, asset := range assets {
		childID, err := ig.createContainer(ctx, accountID, accessToken, map[string]any{
			"image_url":        asset.FileURL,
			"is_carousel_item": true,
			"access_token":     accessToken,
		})
		if err != nil {
			return "", err
		}
		children = append(children, childID)
	}

	return ig.createContainer(ctx, accountID, accessToken, map[string]any{
		"media_type":   "CAROUSEL",
		"caption":      caption,
		"children":     children,
		"access_token": accessToken,
	})
}

func (ig *instagramService) createContainer(ctx context.Context, accountID, accessToken string, payload map[string]any) (string, error) {
	reqURL := fmt.Sprintf("%s/v21.0/%s/media", instagramGraphURL, accountID)

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var igErr transfer.InstagramErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&igErr); err == nil && igErr.Error.Message != "" {
			return "", fmt.Errorf("instagram container creation failed: %s", igErr.Error.Message)
		}
		return "", fmt.Errorf("unexpected status code from instagram: %d", resp.StatusCode)
	}

	var result transfer.InstagramContainerResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}
	if result.ID == "" {
		return "", errors.New("no media ID returned from instagram")
	}

	return result.ID, nil
}

func (ig *instagramService) publishContainer(ctx context.Context, accountID, containerID, accessToken string) error {
	reqURL := fmt.Sprintf("%s/v21.0/%s/media_publish", instagramGraphURL, accountID)
	payload := map[string]string{
		"creation_id":  containerID,
		"access_token": accessToken,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code from instagram: %d", resp.StatusCode)
	}

	return nil
}
