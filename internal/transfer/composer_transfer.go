package transfer

// Request bodies for the composer endpoints. Validation tags are enforced
// by the shared validator in the handler layer.

type TogglePlatformRequest struct {
	Platform string `json:"platform" validate:"required,oneof=twitter instagram facebook linkedin tiktok"`
}

type SetContentRequest struct {
	Content string `json:"content"`
}

type AppendEmojiRequest struct {
	Emoji string `json:"emoji" validate:"required"`
}

type LibraryTrackRequest struct {
	TrackName       string `json:"track_name" validate:"required"`
	BackgroundStyle string `json:"background_style" validate:"omitempty,oneof=sunset ocean forest mono neon"`
}

type MediaPatchRequest struct {
	Price           *string `json:"price,omitempty"`
	Description     *string `json:"description,omitempty"`
	BackgroundStyle *string `json:"background_style,omitempty" validate:"omitempty,oneof=sunset ocean forest mono neon"`
	Comment         *string `json:"comment,omitempty"`
}

type ScheduleDateRequest struct {
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type ScheduleTimeRequest struct {
	Time string `json:"time" validate:"required,datetime=15:04"`
}

type SelectCandidateRequest struct {
	Text string `json:"text" validate:"required"`
}
