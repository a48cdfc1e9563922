package transfer

type GenerateContentRequest struct {
	Topic            string `json:"topic"`
	CustomPrompt     string `json:"custom_prompt"`
	PlatformHint     string `json:"platform_hint" validate:"omitempty,oneof=twitter instagram facebook linkedin tiktok"`
	Tone             string `json:"tone" validate:"omitempty,oneof=professional casual humorous informative"`
	Length           string `json:"length" validate:"omitempty,oneof=short medium long"`
	UsePreviousPosts bool   `json:"use_previous_posts"`
	UseTrending      bool   `json:"use_trending"`
}

type TrendingTopic struct {
	Topic           string `json:"topic"`
	Description     string `json:"description"`
	EngagementLabel string `json:"engagement_label"`
	Reason          string `json:"reason"`
}
