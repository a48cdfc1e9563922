package composer

// PreviewPage is one platform-styled mock page: one page per media item.
type PreviewPage struct {
	Index           int       `json:"index"`
	BrandName       string    `json:"brand_name"`
	Content         string    `json:"content"`
	MediaID         string    `json:"media_id"`
	MediaType       MediaType `json:"media_type"`
	PreviewURL      string    `json:"preview_url,omitempty"`
	BackgroundStyle string    `json:"background_style,omitempty"`
	Price           string    `json:"price,omitempty"`
	Description     string    `json:"description,omitempty"`
	Comments        []string  `json:"comments,omitempty"`
}

// Preview projects the current state into preview pages. An empty media
// list yields nil: no placeholder page is rendered no matter how much
// caption text there is.
func (c *Composer) Preview() []PreviewPage {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.media) == 0 {
		return nil
	}

	pages := make([]PreviewPage, 0, len(c.media))
	for i, m := range c.media {
		pages = append(pages, PreviewPage{
			Index:           i,
			BrandName:       c.brandName,
			Content:         c.content,
			MediaID:         m.ID,
			MediaType:       m.Type,
			PreviewURL:      m.PreviewURL,
			BackgroundStyle: m.BackgroundStyle,
			Price:           m.Price,
			Description:     m.Description,
			Comments:        append([]string(nil), m.Comments...),
		})
	}
	return pages
}
