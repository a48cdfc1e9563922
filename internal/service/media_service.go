package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/autumsam/postpilot/internal/composer"
	"github.com/autumsam/postpilot/internal/models"
	"github.com/autumsam/postpilot/internal/repository"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// UploadedMedia is what the composer needs to attach an uploaded file.
type UploadedMedia struct {
	AssetID    int64
	Type       composer.MediaType
	FileName   string
	PreviewURL string
}

type MediaService interface {
	Upload(ctx context.Context, userID int64, file *multipart.FileHeader) (*UploadedMedia, error)
	SaveLibraryTrack(ctx context.Context, userID int64, trackName, backgroundStyle string) (int64, error)
}

type mediaService struct {
	ma repository.MediaAssetRepository
	r2 *R2Service
}

func NewMediaService(ma repository.MediaAssetRepository, r2 *R2Service) MediaService {
	return &mediaService{ma: ma, r2: r2}
}

var allowedTypes = map[string]composer.MediaType{
	"jpg":  composer.MediaImage,
	"jpeg": composer.MediaImage,
	"png":  composer.MediaImage,
	"mp4":  composer.MediaVideo,
	"mov":  composer.MediaVideo,
	"mp3":  composer.MediaAudio,
}

// Upload sniffs the file type, pushes the bytes to storage and records the
// asset. The returned preview URL doubles as the composer's preview
// reference.
func (s *mediaService) Upload(ctx context.Context, userID int64, file *multipart.FileHeader) (*UploadedMedia, error) {
	fileContent, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer fileContent.Close()

	fileBytes, err := io.ReadAll(fileContent)
	if err != nil {
		return nil, fmt.Errorf("error reading file content: %w", err)
	}

	fileType, err := filetype.Match(fileBytes)
	if err != nil || fileType == types.Unknown {
		return nil, errors.New("unsupported file type")
	}

	mediaType, ok := allowedTypes[fileType.Extension]
	if !ok {
		return nil, fmt.Errorf("file type %s is not allowed", fileType.Extension)
	}

	key, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	if err := s.r2.Upload(ctx, key, fileBytes, fileType.MIME.Value); err != nil {
		return nil, fmt.Errorf("error uploading file: %w", err)
	}

	ma := models.MediaAsset{
		UserID:   userID,
		FileName: key,
		FileType: fileType.MIME.Value,
		FileSize: int64(len(fileBytes)),
		FileURL:  s.r2.PublicURL(key),
	}

	assetID, err := s.ma.Create(ctx, nil, &ma)
	if err != nil {
		return nil, fmt.Errorf("error saving media asset: %w", err)
	}

	name := file.Filename
	if strings.TrimSpace(name) == "" {
		name = key
	}

	return &UploadedMedia{
		AssetID:    assetID,
		Type:       mediaType,
		FileName:   name,
		PreviewURL: ma.FileURL,
	}, nil
}

// SaveLibraryTrack records an audio item that has no uploaded bytes; the
// track lives in the shared library, only the reference is stored.
func (s *mediaService) SaveLibraryTrack(ctx context.Context, userID int64, trackName, backgroundStyle string) (int64, error) {
	if strings.TrimSpace(trackName) == "" {
		err := errors.New("track name cannot be empty")
		slog.Info(err.Error())
		return 0, err
	}

	ma := models.MediaAsset{
		UserID:          userID,
		FileName:        trackName,
		FileType:        "audio/library",
		BackgroundStyle: backgroundStyle,
	}

	assetID, err := s.ma.Create(ctx, nil, &ma)
	if err != nil {
		return 0, fmt.Errorf("error saving library track: %w", err)
	}

	return assetID, nil
}
