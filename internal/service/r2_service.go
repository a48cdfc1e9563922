package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/autumsam/postpilot/configs"
)

// R2Service uploads media objects to Cloudflare R2 through the S3 API.
// The client is built once and reused across uploads.
type R2Service struct {
	config cfg.Config

	once   sync.Once
	client *s3.Client
}

func NewR2Service(cfg cfg.Config) *R2Service {
	return &R2Service{config: cfg}
}

func (r *R2Service) r2Client() *s3.Client {
	r.once.Do(func() {
		awsCfg, err := config.LoadDefaultConfig(context.TODO(),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r.config.R2.AccessKey, r.config.R2.SecretKey, "")),
			config.WithRegion("auto"),
		)
		if err != nil {
			slog.Info(err.Error())
			log.Fatal(err)
		}

		r.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r.config.R2.AccountID))
		})
	})
	return r.client
}

func (r *R2Service) Upload(ctx context.Context, key string, file []byte, filetype string) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.config.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(filetype),
	}

	if _, err := r.r2Client().PutObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

func (r *R2Service) Delete(ctx context.Context, key string) error {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(r.config.R2.BucketName),
		Key:    aws.String(key),
	}

	if _, err := r.r2Client().DeleteObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

// PublicURL returns the served location of an uploaded object.
func (r *R2Service) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s", r.config.R2.PublicURL, key)
}
