package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	errMissingBucket = errors.New("media: bucket is required")
	errMissingRegion = errors.New("media: region is required")
)

// S3StoreConfig describes the bucket backing gallery uploads. BaseURL, when
// set, overrides the virtual-hosted S3 address for CDN or proxy fronting.
type S3StoreConfig struct {
	Bucket  string
	Region  string
	BaseURL string
}

// S3Store stores gallery photos in an S3 bucket and hands out their public
// addresses.
type S3Store struct {
	client  *s3.Client
	bucket  string
	region  string
	baseURL string
}

// NewS3Store constructs an S3-backed blob store using the ambient AWS
// credential chain.
func NewS3Store(ctx context.Context, cfg S3StoreConfig) (*S3Store, error) {
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, errMissingBucket
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		return nil, errMissingRegion
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("media: load aws config: %w", err)
	}

	return &S3Store{
		client:  s3.NewFromConfig(awsCfg),
		bucket:  bucket,
		region:  region,
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
	}, nil
}

// Upload writes one object to the bucket.
func (s *S3Store) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("media: put object %s: %w", key, err)
	}
	return nil
}

// PublicURL returns the public address of an uploaded object.
func (s *S3Store) PublicURL(key string) string {
	if s.baseURL != "" {
		return s.baseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
