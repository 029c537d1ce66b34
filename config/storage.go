package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds S3 client and bucket info
type S3Config struct {
	Client     *s3.Client
	BucketName string
	Region     string
	Endpoint   string
	PublicURL  string
}

// NewS3Config initializes the S3 client. Credentials come from the usual
// AWS chain. A custom endpoint switches to path-style addressing so MinIO
// and other S3-compatible stores work.
func NewS3Config(ctx context.Context, cfg *Config) (*S3Config, error) {
	if !cfg.StorageEnabled() {
		return nil, fmt.Errorf("S3_BUCKET_NAME is not set")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Config{
		Client:     client,
		BucketName: cfg.S3Bucket,
		Region:     cfg.S3Region,
		Endpoint:   strings.TrimRight(cfg.S3Endpoint, "/"),
		PublicURL:  cfg.S3PublicURL,
	}, nil
}

// ObjectURL is the public URL for an object key.
func (s *S3Config) ObjectURL(key string) string {
	switch {
	case s.PublicURL != "":
		return s.PublicURL + "/" + key
	case s.Endpoint != "":
		return fmt.Sprintf("%s/%s/%s", s.Endpoint, s.BucketName, key)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.BucketName, s.Region, key)
	}
}
