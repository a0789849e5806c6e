// Package storage provides S3-backed photo storage for members and children.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

const (
	// MaxPhotoSize is the maximum allowed file size for photo uploads (5MB).
	MaxPhotoSize = 5 * 1024 * 1024
	// FolderMemberPhotos is the S3 prefix for member photo objects.
	FolderMemberPhotos = "members"
	// FolderChildPhotos is the S3 prefix for child photo objects.
	FolderChildPhotos = "children"
)

// Allowed photo MIME types and extensions.
var (
	AllowedPhotoTypes = map[string]string{
		"image/jpeg": ".jpg",
		"image/jpg":  ".jpg",
		"image/png":  ".png",
		"image/webp": ".webp",
	}
	AllowedPhotoExtensions = map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".webp": "image/webp",
	}
)

// S3Config holds S3 client configuration.
type S3Config struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	PhotosBucket         string
	PresignExpireMinutes int
}

// S3 provides S3 operations with validation and pre-signed URLs.
type S3 struct {
	client   *s3.Client
	uploader *manager.Uploader
	cfg      S3Config
	logger   *zap.Logger
}

// NewS3 creates an S3 client using credentials from config or .env (AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY).
func NewS3(ctx context.Context, cfg S3Config, logger *zap.Logger) (*S3, error) {
	accessKey := cfg.AccessKeyID
	secretKey := cfg.SecretAccessKey
	if accessKey == "" || secretKey == "" {
		accessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		secretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey, secretKey, "",
		)))
		if logger != nil {
			logger.Info("S3 client using credentials from .env/config",
				zap.String("region", cfg.Region), zap.String("photos_bucket", cfg.PhotosBucket))
		}
	} else if logger != nil {
		logger.Warn("S3 client using default credential chain (AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY not set)")
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
	})
	return &S3{
		client:   client,
		uploader: uploader,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// ValidatePhotoType returns true if the content type and/or extension are allowed for photos.
func ValidatePhotoType(contentType, filename string) bool {
	ext := strings.ToLower(path.Ext(filename))
	if contentType != "" {
		if _, ok := AllowedPhotoTypes[strings.ToLower(contentType)]; ok {
			return true
		}
	}
	if ext != "" {
		if _, ok := AllowedPhotoExtensions[ext]; ok {
			return true
		}
	}
	return false
}

// ContentTypeForFilename returns the MIME type for a photo filename extension.
func ContentTypeForFilename(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ct, ok := AllowedPhotoExtensions[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

// MemberPhotoKey returns the S3 object key: members/{org_id}/{member_id}{ext}.
func MemberPhotoKey(orgID, memberID, filename string) string {
	return path.Join(FolderMemberPhotos, orgID, memberID+strings.ToLower(path.Ext(filename)))
}

// ChildPhotoKey returns the S3 object key: children/{org_id}/{child_id}{ext}.
func ChildPhotoKey(orgID, childID, filename string) string {
	return path.Join(FolderChildPhotos, orgID, childID+strings.ToLower(path.Ext(filename)))
}

// PhotosBucket returns the configured photos bucket name.
func (s *S3) PhotosBucket() string { return s.cfg.PhotosBucket }

// PresignExpire returns the configured presign duration.
func (s *S3) PresignExpire() time.Duration {
	if s.cfg.PresignExpireMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(s.cfg.PresignExpireMinutes) * time.Minute
}

// Upload streams a reader to S3 and returns the object URL. Photos are never
// public; reads go through pre-signed URLs.
func (s *S3) Upload(ctx context.Context, key, contentType string, body io.Reader, contentLength int64) (string, error) {
	var contentLengthPtr *int64
	if contentLength > 0 {
		contentLengthPtr = &contentLength
	}
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.PhotosBucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: contentLengthPtr,
	}
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.PhotosBucket, s.cfg.Region, key), nil
}

// GeneratePresignedDownloadURL returns a pre-signed GET URL for a photo.
func (s *S3) GeneratePresignedDownloadURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(s.client)
	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.PhotosBucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expires
	})
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return req.URL, nil
}

// DeleteObject removes a photo object from the photos bucket.
func (s *S3) DeleteObject(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.PhotosBucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}
