package transfer

type UpdateSettingsRequest struct {
	PostingTime      string   `json:"posting_time" validate:"required,datetime=15:04"`
	DefaultPlatforms []string `json:"default_platforms" validate:"dive,oneof=twitter instagram facebook linkedin tiktok"`
	BrandName        string   `json:"brand_name"`
}
