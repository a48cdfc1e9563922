package transfer

type TikTokResponse struct {
	Data  TiktokUserData `json:"data"`
	Error TiktokError    `json:"error"`
}

type TikTokUploadResponse struct {
	Data  TiktokPublishData `json:"data"`
	Error TiktokError       `json:"error"`
}

type TiktokPublishData struct {
	PublishID string `json:"publish_id"`
}

type TiktokUserData struct {
	User TiktokUser `json:"user"`
}

type TiktokUser struct {
	OpenID      string `json:"open_id"`
	AvatarURL   string `json:"avatar_url"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username"`
}

type TiktokError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	LogID   string `json:"log_id"`
}

type TiktokVideoPostInfo struct {
	Title        string `json:"title"`
	PrivacyLevel string `json:"privacy_level"`
}

type TiktokPhotoPostInfo struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	PrivacyLevel string `json:"privacy_level"`
	AutoAddMusic bool   `json:"auto_add_music"`
}

type TiktokVideoSourceInfo struct {
	Source   string `json:"source"`
	VideoURL string `json:"video_url"`
}

type TiktokPhotoSourceInfo struct {
	Source          string   `json:"source"`
	PhotoCoverIndex int      `json:"photo_cover_index"`
	PhotoImages     []string `json:"photo_images"`
}

type TiktokVideoUploadRequest struct {
	PostInfo   TiktokVideoPostInfo   `json:"post_info"`
	SourceInfo TiktokVideoSourceInfo `json:"source_info"`
}

type TiktokPhotoUploadRequest struct {
	PostInfo   TiktokPhotoPostInfo   `json:"post_info"`
	SourceInfo TiktokPhotoSourceInfo `json:"source_info"`
	PostMode   string                `json:"post_mode"`
	MediaType  string                `json:"media_type"`
}

type TiktokTokenResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int    `json:"expires_in"`
	OpenID           string `json:"open_id"`
	RefreshExpiresIn int    `json:"refresh_expires_in"`
	RefreshToken     string `json:"refresh_token"`
	Scope            string `json:"scope"`
	TokenType        string `json:"token_type"`
}
