package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/coupang-catalog/backend/internal/domain/catalog"
	infraconfig "github.com/coupang-catalog/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// S3Source reads the catalog from an object in S3-compatible storage
// (AWS S3, MinIO, RustFS and the like)
type S3Source struct {
	client  *s3.Client
	bucket  string
	key     string
	maxSize int64
	logger  *zap.Logger
}

// S3SourceOption is a functional option for configuring S3Source
type S3SourceOption func(*S3Source)

// WithLogger sets a custom logger for S3Source
func WithLogger(logger *zap.Logger) S3SourceOption {
	return func(s *S3Source) {
		s.logger = logger
	}
}

// WithMaxSize bounds the object size
func WithMaxSize(n int64) S3SourceOption {
	return func(s *S3Source) {
		if n > 0 {
			s.maxSize = n
		}
	}
}

// NewS3Source creates an S3Source. Static credentials are used when an access
// key is configured, otherwise the default AWS credential chain applies.
func NewS3Source(ctx context.Context, cfg *infraconfig.StorageConfig, bucket, key string, opts ...S3SourceOption) (*S3Source, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if key == "" {
		return nil, errors.New("storage key is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		if cfg.SecretAccessKey == "" {
			return nil, errors.New("storage secret access key is required with an access key id")
		}
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint != "" {
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid storage endpoint: %w", err)
		}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	s := &S3Source{
		client:  client,
		bucket:  bucket,
		key:     key,
		maxSize: DefaultMaxSize,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Fetch downloads the object
func (s *S3Source) Fetch(ctx context.Context) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		var noSuchBucket *types.NoSuchBucket
		if errors.As(err, &noSuchKey) || errors.As(err, &noSuchBucket) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, s.Describe())
		}
		return nil, fmt.Errorf("failed to get catalog object: %w", err)
	}
	defer out.Body.Close()

	if out.ContentLength != nil && *out.ContentLength > s.maxSize {
		return nil, fmt.Errorf("%w (%d bytes)", ErrSourceTooLarge, s.maxSize)
	}

	data, err := readLimited(out.Body, s.maxSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog object: %w", err)
	}

	s.logger.Debug("Catalog object downloaded",
		zap.String("bucket", s.bucket),
		zap.String("key", s.key),
		zap.Int("bytes", len(data)),
	)
	return data, nil
}

// Describe returns s3://bucket/key
func (s *S3Source) Describe() string {
	return "s3://" + s.bucket + "/" + s.key
}

// Bucket returns the bucket name
func (s *S3Source) Bucket() string {
	return s.bucket
}

var _ catalog.Source = (*S3Source)(nil)
