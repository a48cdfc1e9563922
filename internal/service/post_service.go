package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/autumsam/postpilot/internal/composer"
	"github.com/autumsam/postpilot/internal/models"
	"github.com/autumsam/postpilot/internal/repository"
)

// Enqueuer hands a stored post to the background publisher. Immediate
// commits use a zero delay.
type Enqueuer interface {
	EnqueuePost(postID int64, delay time.Duration) error
}

type PostService interface {
	composer.Submitter
	List(ctx context.Context, userID int64) ([]*models.Post, error)
	PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error)
	History(ctx context.Context, userID int64) ([]*models.PostingHistory, error)
	Remove(ctx context.Context, userID, postID int64) error
}

type postService struct {
	db *sql.DB
	pr repository.PostRepository
	sa repository.SelectedAccountRepository
	ac repository.SocialAccountRepository
	pm repository.PostMediaRepository
	ph repository.PostingHistoryRepository
	eq Enqueuer
}

func NewPostService(
	db *sql.DB,
	pr repository.PostRepository,
	sa repository.SelectedAccountRepository,
	ac repository.SocialAccountRepository,
	pm repository.PostMediaRepository,
	ph repository.PostingHistoryRepository,
	eq Enqueuer) PostService {
	return &postService{
		db: db,
		pr: pr,
		sa: sa,
		ac: ac,
		pm: pm,
		ph: ph,
		eq: eq,
	}
}

// Submit persists a committed draft and hands it to the publish queue.
// The composer has already checked its own preconditions; this layer is
// responsible for resolving platforms to connected accounts and for the
// transactional write.
func (s *postService) Submit(ctx context.Context, userID int64, sub *composer.Submission) (*composer.Receipt, error) {
	if sub == nil {
		err := errors.New("submission is nil")
		slog.Error(err.Error())
		return nil, err
	}

	platforms := make([]string, 0, len(sub.Platforms))
	for _, p := range sub.Platforms {
		platforms = append(platforms, string(p))
	}

	accounts, err := s.ac.ListByPlatforms(ctx, userID, platforms)
	if err != nil {
		return nil, fmt.Errorf("error resolving connected accounts: %w", err)
	}
	if len(accounts) == 0 {
		err = errors.New("no connected accounts for the selected platforms")
		slog.Info(err.Error())
		return nil, err
	}

	postType := PostTypeSingle
	if len(sub.Media) > 1 {
		postType = PostTypeMultiple
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	post := models.Post{
		UserID:   userID,
		PostType: postType,
		Caption:  sub.Content,
		Status:   models.PostStatusScheduled,
	}
	if sub.ScheduledFor != nil {
		post.ScheduledTime = sql.NullTime{Time: *sub.ScheduledFor, Valid: true}
	}

	postID, err := s.pr.Create(ctx, tx, &post)
	if err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}

	for _, account := range accounts {
		selected := models.SelectedAccount{
			PostID:    postID,
			AccountID: account.ID,
		}
		if err = s.sa.Create(ctx, tx, &selected); err != nil {
			return nil, fmt.Errorf("error saving selected account %d: %w", account.ID, err)
		}
	}

	for i, item := range sub.Media {
		if item.AssetID == 0 {
			continue
		}
		postMedia := models.PostMedia{
			PostID:       postID,
			AssetID:      item.AssetID,
			DisplayOrder: i,
			Price:        item.Price,
			Description:  item.Description,
			Comments:     joinComments(item.Comments),
		}
		if err = s.pm.Create(ctx, tx, &postMedia); err != nil {
			return nil, fmt.Errorf("error saving media file: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	var delay time.Duration
	if sub.ScheduledFor != nil {
		delay = time.Until(*sub.ScheduledFor)
		if delay < 0 {
			delay = 0
		}
	}

	if err := s.eq.EnqueuePost(postID, delay); err != nil {
		return nil, fmt.Errorf("error enqueuing post: %w", err)
	}

	names := make([]string, 0, len(sub.Platforms))
	for _, p := range sub.Platforms {
		names = append(names, composer.DisplayName(p))
	}

	return &composer.Receipt{
		PostID:        postID,
		PlatformNames: names,
	}, nil
}

func (s *postService) List(ctx context.Context, userID int64) ([]*models.Post, error) {
	posts, err := s.pr.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing posts")
	}
	return posts, nil
}

func (s *postService) PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error) {
	var err error

	if postID == 0 {
		err = errors.New("post id is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	isValid, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if !isValid {
		err = errors.New("post doesn't exist")
		slog.Info(err.Error())
		return nil, err
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("error getting post info")
	}

	return post, nil
}

func (s *postService) History(ctx context.Context, userID int64) ([]*models.PostingHistory, error) {
	history, err := s.ph.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing posting history")
	}
	return history, nil
}

func (s *postService) Remove(ctx context.Context, userID, postID int64) error {
	var err error

	if postID == 0 {
		err = errors.New("post id is not valid")
		slog.Info(err.Error())
		return err
	}

	isValid, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !isValid {
		err = errors.New("post doesn't exist")
		slog.Info(err.Error())
		return err
	}

	if err = s.pm.Remove(ctx, postID); err != nil {
		return fmt.Errorf("error removing post media")
	}
	if err = s.pr.Remove(ctx, postID); err != nil {
		return fmt.Errorf("error removing post")
	}

	return nil
}
