package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/autumsam/postpilot/internal/models"
	"github.com/hibiken/asynq"
)

func (q *Queue) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	return q.PublishPost(ctx, payload.PostID)
}

// PublishPost fans the post out to every selected account, at most ten at
// a time. Each attempt leaves a posting history row; the post flips to
// posted only when every account succeeded, and to failed otherwise so the
// dashboard can surface it.
func (q *Queue) PublishPost(ctx context.Context, postID int64) error {
	post, err := q.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}

	accountsSelected, err := q.sa.ListByPostID(ctx, postID)
	if err != nil {
		return err
	}
	if len(accountsSelected) == 0 {
		return errors.New("no accounts selected for publishing")
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		anyFailed bool
	)
	semaphore := make(chan struct{}, 10)

	postToPlatform := func(socialAcc *models.SocialAccount) {
		defer wg.Done()
		defer func() { <-semaphore }()

		var err error
		publisher, ok := q.publishers[socialAcc.Platform]
		if !ok {
			err = errors.New("no publisher for platform " + socialAcc.Platform)
		} else {
			err = publisher.Publish(ctx, post, socialAcc)
		}

		history := models.PostingHistory{
			UserID:    socialAcc.UserID,
			PostID:    postID,
			AccountID: socialAcc.ID,
		}
		if err != nil {
			history.ErrorMessage = err.Error()
			slog.Error("publish failed", "platform", socialAcc.Platform, "post_id", postID, "error", err.Error())
			mu.Lock()
			anyFailed = true
			mu.Unlock()
		}
		if _, err := q.ph.Create(ctx, &history); err != nil {
			slog.Error("error saving posting history", "post_id", postID, "error", err.Error())
		}
	}

	for _, acc := range accountsSelected {
		socialAcc, err := q.ac.GetByID(ctx, acc.AccountID)
		if err != nil {
			slog.Error("error retrieving social account", "account_id", acc.AccountID, "error", err.Error())
			mu.Lock()
			anyFailed = true
			mu.Unlock()
			continue
		}
		if socialAcc == nil {
			slog.Info("social account no longer exists", "account_id", acc.AccountID)
			continue
		}

		wg.Add(1)
		semaphore <- struct{}{}
		go postToPlatform(socialAcc)
	}

	wg.Wait()

	status := models.PostStatusPosted
	if anyFailed {
		status = models.PostStatusFailed
	}
	if err := q.pr.UpdatePostStatus(ctx, status, postID); err != nil {
		slog.Error("error updating post status", "post_id", postID, "error", err.Error())
		return err
	}

	return nil
}
