// Package storage keeps product images and avatars in an S3-compatible
// bucket, with an in-process stub for development.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/storefront/backend/internal/application/media"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	defaultEndpoint = "http://localhost:9000"
	defaultRegion   = "us-east-1"
	defaultExpiry   = 15 * time.Minute
)

// S3ObjectStorage serves the media layer from one bucket. Only keys under
// product-images/ and avatars/ are presigned, probed or deleted.
type S3ObjectStorage struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	bucket     string
	publicBase string
	expiry     time.Duration
	logger     *zap.Logger
}

// S3ObjectStorageOption configures an S3ObjectStorage
type S3ObjectStorageOption func(*S3ObjectStorage)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) S3ObjectStorageOption {
	return func(s *S3ObjectStorage) {
		s.logger = logger
	}
}

// WithPresignExpiration overrides the default upload URL lifetime
func WithPresignExpiration(d time.Duration) S3ObjectStorageOption {
	return func(s *S3ObjectStorage) {
		s.expiry = d
	}
}

// NewS3ObjectStorage builds the client from cfg. No request is made until
// the first call, so a bad endpoint surfaces on EnsureBucket.
func NewS3ObjectStorage(cfg *config.StorageConfig, opts ...S3ObjectStorageOption) (*S3ObjectStorage, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if err := validateS3Config(cfg); err != nil {
		return nil, err
	}

	endpoint, err := endpointURL(cfg)
	if err != nil {
		return nil, err
	}
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint.String())
	})

	s := &S3ObjectStorage{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		bucket:     cfg.Bucket,
		publicBase: publicBaseURL(cfg, endpoint),
		expiry:     cfg.PresignExpiration,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.expiry <= 0 {
		s.expiry = defaultExpiry
	}
	return s, nil
}

func validateS3Config(cfg *config.StorageConfig) error {
	var errs []error
	if cfg.Bucket == "" {
		errs = append(errs, errors.New("storage bucket is required"))
	}
	if cfg.AccessKey == "" {
		errs = append(errs, errors.New("storage access key is required"))
	}
	if cfg.SecretKey == "" {
		errs = append(errs, errors.New("storage secret key is required"))
	}
	return errors.Join(errs...)
}

// endpointURL adds the scheme when the endpoint is a bare host
func endpointURL(cfg *config.StorageConfig) (*url.URL, error) {
	raw := cfg.Endpoint
	if raw == "" {
		raw = defaultEndpoint
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		scheme := "http://"
		if cfg.UseSSL {
			scheme = "https://"
		}
		raw = scheme + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid storage endpoint: %w", err)
	}
	return u, nil
}

// EnsureBucket creates the media bucket on first start
func (s *S3ObjectStorage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}

	s.logger.Info("Creating media bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	var owned *types.BucketAlreadyOwnedByYou
	if err != nil && !errors.As(err, &owned) {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// GenerateUploadURL presigns a PUT for a new image. The client must send the
// same Content-Type, and only the image types the media layer accepts are signed.
func (s *S3ObjectStorage) GenerateUploadURL(
	ctx context.Context,
	storageKey, contentType string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if err := checkKey(storageKey); err != nil {
		return "", time.Time{}, err
	}
	if _, ok := media.ImageContentTypes[contentType]; !ok {
		return "", time.Time{}, fmt.Errorf("content type %q is not an accepted image type", contentType)
	}
	if expiresIn <= 0 {
		expiresIn = s.expiry
	}

	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(storageKey),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expiresIn))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("presign upload %s: %w", storageKey, err)
	}
	return req.URL, time.Now().Add(expiresIn), nil
}

// DeleteObject removes a replaced avatar or a detached product image
func (s *S3ObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	if err := checkKey(storageKey); err != nil {
		return err
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageKey),
	}); err != nil {
		return fmt.Errorf("delete %s: %w", storageKey, err)
	}
	s.logger.Debug("Deleted media object", zap.String("key", storageKey))
	return nil
}

// ObjectExists reports whether the client finished uploading to storageKey
func (s *S3ObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	if err := checkKey(storageKey); err != nil {
		return false, err
	}
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageKey),
	})
	switch {
	case err == nil:
		return true, nil
	case isNotFound(err):
		return false, nil
	default:
		return false, fmt.Errorf("head %s: %w", storageKey, err)
	}
}

// PublicURL returns <public base>/<key>
func (s *S3ObjectStorage) PublicURL(storageKey string) string {
	return s.publicBase + "/" + strings.TrimLeft(storageKey, "/")
}

// Bucket returns the bucket name
func (s *S3ObjectStorage) Bucket() string {
	return s.bucket
}

// isNotFound covers the typed errors and the bare codes some S3-compatible
// servers answer HEAD requests with
func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) || errors.As(err, &noSuchBucket) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return true
		}
	}
	return false
}

// publicBaseURL prefers the configured base URL (usually a CDN). Otherwise
// objects are addressed on the endpoint, path-style or virtual-hosted.
func publicBaseURL(cfg *config.StorageConfig, endpoint *url.URL) string {
	if cfg.PublicBaseURL != "" {
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	}
	base := strings.TrimRight(endpoint.String(), "/")
	if cfg.UsePathStyle {
		return base + "/" + cfg.Bucket
	}
	return endpoint.Scheme + "://" + cfg.Bucket + "." + endpoint.Host
}
