package composer

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

// MediaItem is one attached unit in the composer's media list. The ID is
// local to the composer session; AssetID points at the uploaded object once
// the bytes are in storage (zero for library tracks).
type MediaItem struct {
	ID              string    `json:"id"`
	Type            MediaType `json:"type"`
	AssetID         int64     `json:"asset_id,omitempty"`
	FileName        string    `json:"file_name,omitempty"`
	PreviewURL      string    `json:"preview_url,omitempty"`
	BackgroundStyle string    `json:"background_style,omitempty"`
	Comments        []string  `json:"comments,omitempty"`
	Price           string    `json:"price,omitempty"`
	Description     string    `json:"description,omitempty"`
}

// MediaPatch merges into an item in place. Nil fields are left alone;
// Comment appends to the ordered comment list.
type MediaPatch struct {
	Price           *string `json:"price,omitempty"`
	Description     *string `json:"description,omitempty"`
	BackgroundStyle *string `json:"background_style,omitempty"`
	Comment         *string `json:"comment,omitempty"`
}

// BackgroundPalette is the fixed set of card styles selectable for audio
// and text-only media.
var BackgroundPalette = []string{"sunset", "ocean", "forest", "mono", "neon"}

// AddMedia appends an uploaded asset to the media list and reveals the
// preview panel.
func (c *Composer) AddMedia(mt MediaType, assetID int64, fileName, previewURL string) (*MediaItem, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	item := MediaItem{
		ID:         id,
		Type:       mt,
		AssetID:    assetID,
		FileName:   fileName,
		PreviewURL: previewURL,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.media = append(c.media, item)
	c.previewVisible = true

	return &item, nil
}

// AddLibraryTrack appends an audio item backed by a library track instead
// of an uploaded file. The background style is independent of the track.
func (c *Composer) AddLibraryTrack(assetID int64, trackName, backgroundStyle string) (*MediaItem, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	if backgroundStyle == "" {
		backgroundStyle = BackgroundPalette[0]
	}

	item := MediaItem{
		ID:              id,
		Type:            MediaAudio,
		AssetID:         assetID,
		FileName:        trackName,
		BackgroundStyle: backgroundStyle,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.media = append(c.media, item)
	c.previewVisible = true

	return &item, nil
}

// UpdateMedia merges the patch into the matching item. An unknown id is a
// silent no-op: ids are locally generated, so a miss means the item was
// already removed.
func (c *Composer) UpdateMedia(id string, patch MediaPatch) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.media {
		if c.media[i].ID != id {
			continue
		}
		if patch.Price != nil {
			c.media[i].Price = *patch.Price
		}
		if patch.Description != nil {
			c.media[i].Description = *patch.Description
		}
		if patch.BackgroundStyle != nil {
			c.media[i].BackgroundStyle = *patch.BackgroundStyle
		}
		if patch.Comment != nil {
			c.media[i].Comments = append(c.media[i].Comments, *patch.Comment)
		}
		return
	}
}

// RemoveMedia drops the matching item; the preview panel hides once the
// list empties. Unknown ids are ignored.
func (c *Composer) RemoveMedia(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.media {
		if c.media[i].ID == id {
			c.media = append(c.media[:i], c.media[i+1:]...)
			break
		}
	}
	if len(c.media) == 0 {
		c.previewVisible = false
	}
}

func (c *Composer) ClearMedia() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.media = nil
	c.previewVisible = false
}

func (c *Composer) MediaItems() []MediaItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyMedia(c.media)
}

func (c *Composer) PreviewVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.previewVisible
}

func copyMedia(items []MediaItem) []MediaItem {
	if items == nil {
		return nil
	}
	out := make([]MediaItem, len(items))
	copy(out, items)
	for i := range out {
		if len(items[i].Comments) > 0 {
			out[i].Comments = append([]string(nil), items[i].Comments...)
		}
	}
	return out
}
