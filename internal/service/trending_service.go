package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	cfg "github.com/autumsam/postpilot/configs"
	"github.com/autumsam/postpilot/internal/transfer"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/redis/go-redis/v9"
)

const trendingCacheTTL = time.Hour

// TrendingService surfaces per-platform trending topic suggestions. Results
// come from the model and are cached in redis so repeated dashboard loads
// do not re-query it.
type TrendingService interface {
	Topics(ctx context.Context, platform string) ([]transfer.TrendingTopic, error)
}

type trendingService struct {
	client openai.Client
	model  string
	rdb    *redis.Client
}

func NewTrendingService(c cfg.Config, rdb *redis.Client) TrendingService {
	return &trendingService{
		client: openai.NewClient(option.WithAPIKey(c.OpenAIApiKey)),
		model:  c.OpenAIModel,
		rdb:    rdb,
	}
}

func (s *trendingService) Topics(ctx context.Context, platform string) ([]transfer.TrendingTopic, error) {
	key := fmt.Sprintf("trending:%s", platform)

	cached, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		var topics []transfer.TrendingTopic
		if err := json.Unmarshal([]byte(cached), &topics); err == nil {
			return topics, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		slog.Info(err.Error())
	}

	topics, err := s.fetch(ctx, platform)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(topics); err == nil {
		if err := s.rdb.Set(ctx, key, payload, trendingCacheTTL).Err(); err != nil {
			slog.Info(err.Error())
		}
	}

	return topics, nil
}

func (s *trendingService) fetch(ctx context.Context, platform string) ([]transfer.TrendingTopic, error) {
	system := "You are a social media analyst. Respond with JSON only: an array of objects " +
		`with keys "topic", "description", "engagement_label" and "reason".`
	prompt := fmt.Sprintf("List 5 topics currently trending on %s that a small brand could post about. "+
		"Label expected engagement as High, Medium or Low and explain in one sentence why each is trending.", platform)

	completion, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error calling completion api: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("empty response from model")
	}

	var topics []transfer.TrendingTopic
	if err := unmarshalModelJSON(completion.Choices[0].Message.Content, &topics); err != nil {
		return nil, err
	}
	if len(topics) == 0 {
		return nil, errors.New("no trending topics in model response")
	}

	return topics, nil
}
