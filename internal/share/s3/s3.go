// Package s3 shares reports through an S3-compatible bucket (AWS S3 or
// MinIO) and hands back a presigned download link.
package s3

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type Config struct {
	Bucket   string
	Region   string
	Endpoint string // optional, e.g. a MinIO URL
	Prefix   string
	// AccessKeyID and SecretAccessKey are optional; the default credential
	// chain is used when empty.
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
	LinkTTL         time.Duration
}

type Sharer struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	prefix  string
	ttl     time.Duration
}

func New(ctx context.Context, cfg Config) (*Sharer, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	ttl := cfg.LinkTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Sharer{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		prefix:  cfg.Prefix,
		ttl:     ttl,
	}, nil
}

// Share uploads the file at p under the configured prefix and returns a
// presigned GET URL valid for the link TTL.
func (s *Sharer) Share(ctx context.Context, p, mime string) (string, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", fmt.Errorf("failed to open report: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("failed to close report", "error", err)
		}
	}()

	key := path.Join(s.prefix, filepath.Base(p))
	input := &s3.PutObjectInput{Bucket: &s.bucket, Key: &key, Body: f}
	if mime != "" {
		input.ContentType = &mime
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}

	out, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key},
		func(po *s3.PresignOptions) { po.Expires = s.ttl })
	if err != nil {
		return "", fmt.Errorf("failed to presign report link: %w", err)
	}
	return out.URL, nil
}
