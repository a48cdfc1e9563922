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
	twitterTokenURL = "https://api.twitter.com/2/oauth2/token"
	twitterMeURL    = "https://api.twitter.com/2/users/me?user.fields=profile_image_url"
	twitterTweetURL = "https://api.twitter.com/2/tweets"
)

type TwitterService interface {
	Publisher
	Callback(ctx context.Context, code string, userID int64) error
	RefreshToken(ctx context.Context, userID int64, accessToken, refreshToken string) error
}

type twitterService struct {
	cfg cfg.Config
	sa  repository.SocialAccountRepository
	pm  repository.PostMediaRepository
	ma  repository.MediaAssetRepository
}

func NewTwitterService(
	c cfg.Config,
	sa repository.SocialAccountRepository,
	pm repository.PostMediaRepository,
	ma repository.MediaAssetRepository) TwitterService {
	return &twitterService{
		cfg: c,
		sa:  sa,
		pm:  pm,
		ma:  ma,
	}
}

func (s *twitterService) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.Twitter.ClientID,
		ClientSecret: s.cfg.Twitter.ClientSecret,
		RedirectURL:  s.cfg.Twitter.RedirectURI,
		Scopes:       []string{"tweet.read", "tweet.write", "users.read", "offline.access"},
		Endpoint: oauth2.Endpoint{
			AuthURL:   TWITTER_AUTH_URL,
			TokenURL:  twitterTokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

func (s *twitterService) Callback(ctx context.Context, code string, userID int64) error {
	if code == "" {
		err := errors.New("code is empty")
		slog.Info(err.Error())
		return err
	}

	// The verifier matches the plain code challenge sent on the consent URL.
	token, err := s.oauthConfig().Exchange(ctx, code, oauth2.SetAuthURLParam("code_verifier", "challenge"))
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
		Platform:        "twitter",
		AccountID:       userInfo.Data.ID,
		AccountName:     userInfo.Data.Name,
		AccountUsername: userInfo.Data.Username,
		ProfilePicture:  userInfo.Data.ProfileImageURL,
		AccessToken:     encryptedAccessToken,
		RefreshToken:    encryptedRefreshToken,
		TokenExpiresAt:  token.Expiry,
	}

	_, err = s.sa.Create(ctx, nil, accountInfo)
	return err
}

func (s *twitterService) userInfo(ctx context.Context, accessToken string) (*transfer.TwitterUserResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, twitterMeURL, nil)
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
		return nil, fmt.Errorf("twitter user lookup returned status %d", resp.StatusCode)
	}

	var result transfer.TwitterUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return &result, nil
}

func (s *twitterService) RefreshToken(ctx context.Context, userID int64, accessToken, refreshToken string) error {
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

// Publish sends the caption as a tweet. Attached media is referenced by URL
// since direct uploads need the separate chunked media endpoint.
func (s *twitterService) Publish(ctx context.Context, post *models.Post, acc *models.SocialAccount) error {
	accessToken, err := utils.Decrypt(acc.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	text := post.Caption
	assets, err := loadPostAssets(ctx, s.pm, s.ma, post.ID)
	if err != nil {
		return err
	}
	if len(assets) > 0 {
		urls := make([]string, 0, len(assets))
		for _, asset := range assets {
			urls = append(urls, asset.FileURL)
		}
		text = strings.TrimSpace(text + "\n" + strings.Join(urls, "\n"))
	}
	if text == "" {
		return errors.New("tweet text is empty")
	}

	body, err := json.Marshal(transfer.TwitterTweetRequest{Text: text})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, twitterTweetURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer resp.Body.Close()

	var result transfer.TwitterTweetResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return err
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("twitter publish failed: %s", result.Detail)
	}

	slog.Info("tweet published", "tweet_id", result.Data.ID)
	return nil
}
