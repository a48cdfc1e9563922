package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	cfg "github.com/autumsam/postpilot/configs"
	"github.com/autumsam/postpilot/internal/composer"
	"github.com/autumsam/postpilot/internal/repository"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

const recentCaptionSample = 5

type AIService interface {
	composer.Generator
}

type aiService struct {
	client   openai.Client
	model    string
	pr       repository.PostRepository
	trending TrendingService
}

func NewAIService(c cfg.Config, pr repository.PostRepository, trending TrendingService) AIService {
	return &aiService{
		client:   openai.NewClient(option.WithAPIKey(c.OpenAIApiKey)),
		model:    c.OpenAIModel,
		pr:       pr,
		trending: trending,
	}
}

// Generate produces a primary caption plus variants in a single model call.
// Previous captions and trending topics are folded into the prompt when
// requested; a failure to load either is logged and skipped rather than
// failing the generation.
func (s *aiService) Generate(ctx context.Context, userID int64, req *composer.GenerationRequest) (*composer.Candidate, error) {
	if req == nil {
		err := errors.New("generation request is nil")
		slog.Error(err.Error())
		return nil, err
	}

	var captions []string
	if req.UsePreviousPosts {
		var err error
		captions, err = s.pr.RecentCaptions(ctx, userID, recentCaptionSample)
		if err != nil {
			slog.Info(err.Error())
			captions = nil
		}
	}

	var topics []string
	if req.UseTrending && s.trending != nil {
		platform := string(req.PlatformHint)
		if platform == "" {
			platform = string(composer.PlatformTwitter)
		}
		trendingTopics, err := s.trending.Topics(ctx, platform)
		if err != nil {
			slog.Info(err.Error())
		} else {
			for _, t := range trendingTopics {
				topics = append(topics, t.Topic)
			}
		}
	}

	system, prompt := buildGenerationPrompt(req, captions, topics)

	completion, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.8),
	})
	if err != nil {
		return nil, fmt.Errorf("error calling completion api: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("empty response from model")
	}

	return parseCandidate(completion.Choices[0].Message.Content)
}

func buildGenerationPrompt(req *composer.GenerationRequest, captions, topics []string) (system, prompt string) {
	var sys strings.Builder
	sys.WriteString("You are a social media copywriter. ")
	sys.WriteString("Respond with JSON only, in the shape ")
	sys.WriteString(`{"primary": "...", "variants": ["...", "..."]}`)
	sys.WriteString(" with exactly two variants.")

	var b strings.Builder
	if strings.TrimSpace(req.CustomPrompt) != "" {
		b.WriteString(strings.TrimSpace(req.CustomPrompt))
	} else {
		fmt.Fprintf(&b, "Write a social media post about: %s", strings.TrimSpace(req.Topic))
	}

	if req.PlatformHint != "" {
		fmt.Fprintf(&b, "\nTarget platform: %s.", req.PlatformHint)
	}
	if req.Tone != "" {
		fmt.Fprintf(&b, "\nTone: %s.", req.Tone)
	}
	switch req.Length {
	case composer.LengthShort:
		b.WriteString("\nKeep it under 100 characters.")
	case composer.LengthMedium:
		b.WriteString("\nKeep it between 100 and 280 characters.")
	case composer.LengthLong:
		b.WriteString("\nWrite a longer post, up to 500 characters.")
	}

	if len(captions) > 0 {
		b.WriteString("\nMatch the voice of these recent posts:")
		for _, c := range captions {
			fmt.Fprintf(&b, "\n- %s", truncateText(c, 200))
		}
	}
	if len(topics) > 0 {
		fmt.Fprintf(&b, "\nWeave in one of these trending topics if it fits: %s.", strings.Join(topics, ", "))
	}

	return sys.String(), b.String()
}

func parseCandidate(raw string) (*composer.Candidate, error) {
	var out composer.Candidate
	if err := unmarshalModelJSON(raw, &out); err != nil {
		return nil, err
	}
	out.Primary = strings.TrimSpace(out.Primary)
	if out.Primary == "" {
		return nil, errors.New("primary caption is empty in model response")
	}

	variants := out.Variants[:0]
	for _, v := range out.Variants {
		if v = strings.TrimSpace(v); v != "" {
			variants = append(variants, v)
		}
	}
	out.Variants = variants
	return &out, nil
}

// unmarshalModelJSON tolerates code fences and prose around the JSON body.
func unmarshalModelJSON(raw string, out any) error {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if err := json.Unmarshal([]byte(cleaned), out); err == nil {
		return nil
	}

	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(cleaned, pair[0])
		end := strings.LastIndex(cleaned, pair[1])
		if start >= 0 && end > start {
			if err := json.Unmarshal([]byte(cleaned[start:end+1]), out); err == nil {
				return nil
			}
		}
	}

	return errors.New("invalid JSON response from model")
}

func truncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + "..."
}
