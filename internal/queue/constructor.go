package queue

import (
	"github.com/autumsam/postpilot/internal/repository"
	"github.com/autumsam/postpilot/internal/service"
)

const TaskTypePublishPost = "publish:post"

type PublishPostPayload struct {
	PostID int64 `json:"post_id"`
}

// Queue dispatches due posts to the platform publishers.
type Queue struct {
	pr repository.PostRepository
	sa repository.SelectedAccountRepository
	ac repository.SocialAccountRepository
	ph repository.PostingHistoryRepository

	publishers map[string]service.Publisher
}

func NewQueue(
	pr repository.PostRepository,
	sa repository.SelectedAccountRepository,
	ac repository.SocialAccountRepository,
	ph repository.PostingHistoryRepository,
	tw service.TwitterService,
	ig service.InstagramService,
	fb service.FacebookService,
	li service.LinkedInService,
	tt service.TiktokService) *Queue {
	return &Queue{
		pr: pr,
		sa: sa,
		ac: ac,
		ph: ph,
		publishers: map[string]service.Publisher{
			"twitter":   tw,
			"instagram": ig,
			"facebook":  fb,
			"linkedin":  li,
			"tiktok":    tt,
		},
	}
}
