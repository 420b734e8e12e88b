// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/unique-collection/catalog/internal/config"
	"github.com/unique-collection/catalog/internal/models"
)

// ImageStore is the narrow capability the catalog needs from remote object
// storage.
type ImageStore interface {
	Upload(ctx context.Context, image ImageUpload) (models.AssetRef, error)
	Delete(ctx context.Context, ref models.AssetRef) error
	TransformURL(ref models.AssetRef, opts TransformOptions) string
}

// ImageUpload is one file received from a client, already read into memory.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type TransformOptions struct {
	Width   int
	Height  int
	Crop    string
	Quality string
}

type UploadOptions struct {
	Folder           string
	MaxSize          int64 // in bytes
	MaxFiles         int
	AllowedTypes     []string
	AllowedMIMETypes []string
}

var (
	DetailPrimaryTransform = TransformOptions{Width: 800, Height: 800, Crop: "fill", Quality: "auto:good"}
	DetailGalleryTransform = TransformOptions{Width: 400, Height: 400, Crop: "fill", Quality: "auto:good"}
	ListTransform          = TransformOptions{Width: 600, Height: 600, Crop: "fill", Quality: "auto:good"}
)

func GetProductUploadOptions(cfg config.StorageConfig) UploadOptions {
	return UploadOptions{
		Folder:           cfg.UploadFolder,
		MaxSize:          cfg.MaxFileSize,
		MaxFiles:         cfg.MaxFiles,
		AllowedTypes:     []string{".jpg", ".jpeg", ".png", ".webp"},
		AllowedMIMETypes: []string{"image/jpeg", "image/png", "image/webp"},
	}
}

// ValidateImage checks the file name, declared content type, sniffed content
// and size against options.
func ValidateImage(image ImageUpload, options UploadOptions) error {
	if options.MaxSize > 0 && int64(len(image.Data)) > options.MaxSize {
		return NewValidationError(fmt.Sprintf("file %s is %d bytes, larger than the %d byte limit",
			image.Filename, len(image.Data), options.MaxSize))
	}

	if len(image.Data) == 0 {
		return NewValidationError(fmt.Sprintf("file %s is empty", image.Filename))
	}

	fileExt := strings.ToLower(filepath.Ext(image.Filename))
	if !containsString(options.AllowedTypes, fileExt) {
		return NewValidationError("Only image files are allowed (jpg, jpeg, png, webp)")
	}

	declared := strings.ToLower(strings.TrimSpace(strings.Split(image.ContentType, ";")[0]))
	if declared != "" && !containsString(options.AllowedMIMETypes, declared) {
		return NewValidationError("Only image files are allowed (jpg, jpeg, png, webp)")
	}

	detected := mimetype.Detect(image.Data)
	if !containsString(options.AllowedMIMETypes, detected.String()) {
		return NewValidationError(fmt.Sprintf("file %s does not contain a supported image", image.Filename))
	}

	return nil
}

// NewImageStore picks the store implementation from cfg. Missing S3
// credentials never fail construction; the returned store rejects uploads.
func NewImageStore(cfg config.StorageConfig, logger *logrus.Logger) (ImageStore, error) {
	switch cfg.Driver {
	case "memory":
		logger.Warn("Using in-memory image store; uploaded images are not persisted")
		return NewMemoryImageStore(cfg.CDNURL), nil
	case "s3", "":
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}

	if !cfg.HasStorageCredentials() {
		logger.Warn("Storage credentials not found. Image uploads will fail until AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are set")
		return &unconfiguredImageStore{logger: logger}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return NewS3ImageStore(s3.New(sess), cfg), nil
}

// S3ImageStore keeps product images in an S3 bucket.
type S3ImageStore struct {
	client s3iface.S3API
	config config.StorageConfig
}

func NewS3ImageStore(client s3iface.S3API, cfg config.StorageConfig) *S3ImageStore {
	return &S3ImageStore{client: client, config: cfg}
}

func (s *S3ImageStore) Upload(ctx context.Context, image ImageUpload) (models.AssetRef, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	key := generateObjectKey(image.Filename, s.config.UploadFolder)
	contentType := image.ContentType
	if contentType == "" {
		contentType = mimetype.Detect(image.Data).String()
	}

	params := &s3.PutObjectInput{
		Bucket:        aws.String(s.config.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(image.Data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(image.Data))),
		ACL:           aws.String(s3.ObjectCannedACLPublicRead),
	}
	if s.config.NotificationURL != "" {
		params.Metadata = map[string]*string{
			"notification-url": aws.String(s.config.NotificationURL),
		}
	}

	if _, err := s.client.PutObjectWithContext(ctx, params); err != nil {
		return models.AssetRef{}, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return models.AssetRef{Key: key, URL: s.objectURL(key)}, nil
}

func (s *S3ImageStore) Delete(ctx context.Context, ref models.AssetRef) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}

	return nil
}

// TransformURL returns a resized delivery URL through the configured image
// CDN. Without one, or for a ref that cannot be transformed, the ref's
// default URL is returned.
func (s *S3ImageStore) TransformURL(ref models.AssetRef, opts TransformOptions) string {
	return transformURL(s.config.TransformBaseURL, ref, opts)
}

func (s *S3ImageStore) objectURL(key string) string {
	if s.config.CDNURL != "" {
		return fmt.Sprintf("%s/%s", s.config.CDNURL, key)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		s.config.Bucket, s.config.Region, key)
}

// unconfiguredImageStore stands in when no credentials were supplied.
type unconfiguredImageStore struct {
	logger *logrus.Logger
}

func (u *unconfiguredImageStore) Upload(_ context.Context, image ImageUpload) (models.AssetRef, error) {
	return models.AssetRef{}, ErrStorageNotConfigured
}

func (u *unconfiguredImageStore) Delete(_ context.Context, ref models.AssetRef) error {
	u.logger.WithField("key", ref.Key).Warn("Image storage not configured; skipping delete")
	return nil
}

func (u *unconfiguredImageStore) TransformURL(ref models.AssetRef, _ TransformOptions) string {
	return ref.URL
}

func transformURL(base string, ref models.AssetRef, opts TransformOptions) string {
	if base == "" || ref.Key == "" {
		return ref.URL
	}

	query := url.Values{}
	query.Set("fm", "auto")
	if opts.Width > 0 && opts.Height > 0 {
		query.Set("w", strconv.Itoa(opts.Width))
		query.Set("h", strconv.Itoa(opts.Height))
		crop := opts.Crop
		if crop == "" {
			crop = "fill"
		}
		query.Set("fit", crop)
	}
	quality := opts.Quality
	if quality == "" {
		quality = "auto:good"
	}
	query.Set("q", quality)

	target, err := url.Parse(fmt.Sprintf("%s/%s", base, strings.TrimPrefix(ref.Key, "/")))
	if err != nil {
		return ref.URL
	}
	target.RawQuery = query.Encode()
	return target.String()
}

func generateObjectKey(originalName, folder string) string {
	id := uuid.New()
	ext := strings.ToLower(filepath.Ext(originalName))

	timestamp := time.Now().UTC().Format("20060102")
	filename := fmt.Sprintf("%s_%s%s", timestamp, id.String(), ext)

	if folder != "" {
		return fmt.Sprintf("%s/%s", folder, filename)
	}

	return filename
}

func containsString(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
