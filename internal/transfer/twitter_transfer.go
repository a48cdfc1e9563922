package transfer

type TwitterUserResponse struct {
	Data TwitterUser `json:"data"`
}

type TwitterUser struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Username        string `json:"username"`
	ProfileImageURL string `json:"profile_image_url"`
}

type TwitterTweetRequest struct {
	Text string `json:"text"`
}

type TwitterTweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}
