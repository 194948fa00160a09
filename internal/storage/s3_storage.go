package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/mithaqq/mithaqq-backend/config"
)

const presignExpiry = 15 * time.Minute

var (
	ErrContentTypeNotAllowed = errors.New("content type not allowed")
	ErrUnknownFolder         = errors.New("unknown upload folder")
)

// ImageContentTypes are the only uploads accepted for catalog images.
var ImageContentTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/webp",
}

// Folders catalog images may be uploaded to.
var Folders = map[string]bool{
	"products":  true,
	"courses":   true,
	"packages":  true,
	"companies": true,
	"blog":      true,
}

type PresignedUpload struct {
	UploadURL string `json:"upload_url"`
	FileURL   string `json:"file_url"`
	Key       string `json:"key"`
}

// Presigner hands out direct-to-bucket upload URLs.
type Presigner interface {
	PresignUpload(ctx context.Context, folder, filename, contentType string) (*PresignedUpload, error)
}

type S3Storage struct {
	presign *s3.PresignClient
	bucket  string
	region  string
	baseURL string
}

func NewS3Storage(ctx context.Context, cfg config.S3Config) *S3Storage {
	var awsCfg aws.Config
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region:      cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		}
	} else {
		// default credential chain: env, shared config, instance role
		loaded, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			loaded = aws.Config{Region: cfg.Region}
		}
		awsCfg = loaded
	}

	return &S3Storage{
		presign: s3.NewPresignClient(s3.NewFromConfig(awsCfg)),
		bucket:  cfg.Bucket,
		region:  cfg.Region,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// PresignUpload returns a PUT URL valid for 15 minutes under folder/<uuid><ext>.
func (s *S3Storage) PresignUpload(ctx context.Context, folder, filename, contentType string) (*PresignedUpload, error) {
	if !Folders[folder] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFolder, folder)
	}
	if err := ValidateContentType(contentType, ImageContentTypes); err != nil {
		return nil, err
	}

	key := ObjectKey(folder, filename)
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	return &PresignedUpload{
		UploadURL: req.URL,
		FileURL:   s.FileURL(key),
		Key:       key,
	}, nil
}

// FileURL prefers the CDN base URL over the bucket's own endpoint.
func (s *S3Storage) FileURL(key string) string {
	if s.baseURL != "" {
		return fmt.Sprintf("%s/%s", s.baseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

func ObjectKey(folder, filename string) string {
	return fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), strings.ToLower(filepath.Ext(filename)))
}

func ValidateContentType(contentType string, allowedTypes []string) error {
	for _, allowed := range allowedTypes {
		if contentType == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrContentTypeNotAllowed, contentType)
}
