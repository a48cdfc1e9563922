package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/autumsam/postpilot/internal/models"
	"github.com/autumsam/postpilot/internal/repository"
)

const (
	PostTypeSingle   = models.PostTypeSingle
	PostTypeMultiple = models.PostTypeMultiple
)

// Outbound platform calls get a bounded client so a stalled API cannot pin
// a publish worker forever.
var httpClient = &http.Client{Timeout: 2 * time.Minute}

func GetExpiresAt(expiresIn int) time.Time {
	return time.Now().Add(time.Duration(expiresIn) * time.Second)
}

// loadPostAssets resolves a post's media rows to their stored assets, in
// display order.
func loadPostAssets(ctx context.Context, pm repository.PostMediaRepository, ma repository.MediaAssetRepository, postID int64) ([]*models.MediaAsset, error) {
	postMedia, err := pm.ListByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	assets := make([]*models.MediaAsset, 0, len(postMedia))
	for _, media := range postMedia {
		asset, err := ma.GetByID(ctx, media.AssetID)
		if err != nil {
			return nil, err
		}
		if asset == nil {
			continue
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

func joinComments(comments []string) string {
	return strings.Join(comments, "\n")
}
