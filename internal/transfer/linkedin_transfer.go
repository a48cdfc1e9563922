package transfer

type LinkedInUserInfo struct {
	Sub        string `json:"sub"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
	Email      string `json:"email"`
}

type LinkedInPostRequest struct {
	Author         string                  `json:"author"`
	Commentary     string                  `json:"commentary"`
	Visibility     string                  `json:"visibility"`
	Distribution   LinkedInDistribution    `json:"distribution"`
	Content        *LinkedInMediaContent   `json:"content,omitempty"`
	LifecycleState string                  `json:"lifecycleState"`
}

type LinkedInDistribution struct {
	FeedDistribution string `json:"feedDistribution"`
}

type LinkedInMediaContent struct {
	Media LinkedInMedia `json:"media"`
}

type LinkedInMedia struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

type LinkedInErrorResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}
