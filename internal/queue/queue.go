package queue

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// Enqueuer wraps the asynq client behind the interface the post service
// submits through.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

func (e *Enqueuer) EnqueuePost(postID int64, delay time.Duration) error {
	payload, err := json.Marshal(PublishPostPayload{PostID: postID})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypePublishPost, payload)

	if _, err := e.client.Enqueue(task, asynq.ProcessIn(delay)); err != nil {
		return err
	}

	slog.Info("publish task scheduled", "post_id", postID, "delay", delay.String())
	return nil
}
