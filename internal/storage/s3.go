package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/pass-service/internal/config"
)

// Upload describes a blob to be stored.
type Upload struct {
	Data        []byte
	ContentType string
	Folder      string
}

// DocumentStore stores uploaded identity documents and generated pass images,
// returning stable URLs.
type DocumentStore interface {
	Store(ctx context.Context, upload Upload) (string, error)
	Delete(ctx context.Context, identifier string) error
}

// S3Store is an S3-compatible implementation (MinIO in development).
type S3Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
	logger    *zap.Logger
}

// NewS3Store builds the client once at startup.
func NewS3Store(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	publicURL := strings.TrimSuffix(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = strings.TrimSuffix(cfg.Endpoint, "/")
	}

	return &S3Store{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicURL,
		logger:    logger,
	}, nil
}

// Store validates and uploads the blob, returning its public URL.
func (s *S3Store) Store(ctx context.Context, upload Upload) (string, error) {
	if err := ValidateDocument(upload.ContentType, int64(len(upload.Data))); err != nil {
		return "", err
	}

	key := objectKey(upload.Folder, upload.ContentType)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(upload.Data),
		ContentType: aws.String(upload.ContentType),
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, key), nil
}

// Delete removes a blob by key or public URL. Best-effort: callers treat a
// failure as non-fatal, so the error is logged here as well as returned.
func (s *S3Store) Delete(ctx context.Context, identifier string) error {
	key := s.keyFromIdentifier(identifier)
	if key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.Warn("failed to delete stored object", zap.String("key", key), zap.Error(err))
	}
	return err
}

func (s *S3Store) keyFromIdentifier(identifier string) string {
	prefix := fmt.Sprintf("%s/%s/", s.publicURL, s.bucket)
	if strings.HasPrefix(identifier, prefix) {
		return strings.TrimPrefix(identifier, prefix)
	}
	return strings.TrimPrefix(identifier, "/")
}

func objectKey(folder, contentType string) string {
	d := time.Now()
	if folder == "" {
		folder = "uploads"
	}
	return fmt.Sprintf("%s/%d/%02d/%02d/%s%s", folder, d.Year(), d.Month(), d.Day(), uuid.NewString(), extensionFor(contentType))
}
