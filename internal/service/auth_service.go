package service

import (
	"context"
	"errors"
	"log/slog"

	cfg "github.com/autumsam/postpilot/configs"
	"github.com/autumsam/postpilot/internal/models"
	"github.com/autumsam/postpilot/internal/repository"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

type AuthService interface {
	LoginCallback(ctx context.Context, code string) (userID int64, role string, err error)
}

type authService struct {
	cfg cfg.Config
	u   repository.UserRepository
}

func NewAuthService(c cfg.Config, u repository.UserRepository) AuthService {
	return &authService{
		cfg: c,
		u:   u,
	}
}

func (s *authService) googleConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.GoogleClientID,
		ClientSecret: s.cfg.GoogleClientSecret,
		RedirectURL:  s.cfg.GoogleRedirectURI,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// LoginCallback exchanges the Google OAuth code, resolves the account and
// creates the user on first login.
func (s *authService) LoginCallback(ctx context.Context, code string) (userID int64, role string, err error) {
	if code == "" {
		err = errors.New("code is empty")
		slog.Info(err.Error())
		return 0, "", err
	}

	oauthCfg := s.googleConfig()
	if oauthCfg.ClientID == "" || oauthCfg.ClientSecret == "" || oauthCfg.RedirectURL == "" {
		err = errors.New("oauth2 configuration is incomplete")
		slog.Info(err.Error())
		return 0, "", err
	}

	token, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return 0, "", err
	}

	client := oauthCfg.Client(ctx, token)
	oauthSvc, err := goauth2.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		slog.Info(err.Error())
		return 0, "", err
	}

	userInfo, err := oauthSvc.Userinfo.Get().Do()
	if err != nil {
		slog.Info(err.Error())
		return 0, "", err
	}

	user, isExist, err := s.u.GetByEmail(ctx, userInfo.Email)
	if err != nil {
		return 0, "", err
	}

	if !isExist || user.GoogleID == "" {
		userID, err = s.u.Create(ctx, nil, &models.User{
			GoogleID:       userInfo.Id,
			Email:          userInfo.Email,
			Name:           userInfo.Name,
			ProfilePicture: userInfo.Picture,
			Role:           models.RoleUser,
			Status:         models.UserStatusActive,
			Plan:           models.PlanFree,
		})
		if err != nil {
			slog.Info(err.Error())
			return 0, "", err
		}
		return userID, models.RoleUser, nil
	}

	if user.Status == models.UserStatusSuspended {
		err = errors.New("account is suspended")
		slog.Info(err.Error())
		return 0, "", err
	}

	if err := s.u.TouchLastActive(ctx, user.ID); err != nil {
		slog.Info(err.Error())
	}

	return user.ID, user.Role, nil
}
