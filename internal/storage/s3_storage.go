// Package storage issues presigned S3 PUT URLs for menu image uploads.
// The browser uploads directly to the bucket; the server never touches
// the image bytes.
package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const (
	menuImageFolder = "menu-images"
	presignExpiry   = 15 * time.Minute
)

// imageContentTypes is the upload allowlist. Menu images only.
var imageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type S3Storage struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

type PresignedURLResponse struct {
	UploadURL string `json:"upload_url"`
	FileURL   string `json:"file_url"`
	Key       string `json:"key"`
}

func NewS3Storage(region, bucket, accessKeyID, secretAccessKey, baseURL string) *S3Storage {
	var cfg aws.Config
	var err error

	// Static credentials when configured, default chain otherwise
	// (environment variables, ~/.aws/credentials, IAM role).
	if accessKeyID != "" && secretAccessKey != "" {
		cfg = aws.Config{
			Region: region,
			Credentials: credentials.NewStaticCredentialsProvider(
				accessKeyID,
				secretAccessKey,
				"",
			),
		}
	} else {
		cfg, err = config.LoadDefaultConfig(context.TODO(),
			config.WithRegion(region),
		)
		if err != nil {
			cfg = aws.Config{
				Region: region,
			}
		}
	}

	return &S3Storage{
		client:  s3.NewFromConfig(cfg),
		bucket:  bucket,
		baseURL: baseURL,
	}
}

// PresignMenuImageUpload returns a presigned PUT URL for a new menu
// image. The object key is a fresh UUID under the menu-images prefix,
// keeping the original extension.
func (s *S3Storage) PresignMenuImageUpload(ctx context.Context, filename, contentType string) (*PresignedURLResponse, error) {
	key := fmt.Sprintf("%s/%s%s", menuImageFolder, uuid.New().String(), filepath.Ext(filename))

	presignClient := s3.NewPresignClient(s.client)
	presignedReq, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	// Public URL: CDN/custom domain when configured, direct S3 otherwise.
	var fileURL string
	if s.baseURL != "" {
		fileURL = fmt.Sprintf("%s/%s", s.baseURL, key)
	} else {
		fileURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.client.Options().Region, key)
	}

	return &PresignedURLResponse{
		UploadURL: presignedReq.URL,
		FileURL:   fileURL,
		Key:       key,
	}, nil
}

// ValidateImageType rejects content types outside the image allowlist.
func (s *S3Storage) ValidateImageType(contentType string) error {
	if !imageContentTypes[contentType] {
		return fmt.Errorf("content type %s is not allowed", contentType)
	}
	return nil
}
