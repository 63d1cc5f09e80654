package media

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	sc "github.com/streamvault/streamvault/internal/server/config"
)

// Seams for tests.
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
)

// S3Host uploads media objects with date-partitioned random keys, e.g.
// media/2026/9/1/8f14e45f-....
type S3Host struct {
	cfg *sc.Config
}

func NewS3Host(cfg *sc.Config) *S3Host {
	return &S3Host{cfg: cfg}
}

func randomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("media/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (h *S3Host) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(h.cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			h.cfg.S3AccessKey,
			h.cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(h.cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// Upload stores the object and returns its public URL.
func (h *S3Host) Upload(ctx context.Context, r io.Reader, contentType string) (string, error) {
	client, err := h.getClient(ctx)
	if err != nil {
		return "", fmt.Errorf("media host: %w", err)
	}

	bucket := h.cfg.S3Bucket
	key := randomStorageKey()

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("media host: %w", err)
	}

	return h.objectURL(key), nil
}

func (h *S3Host) objectURL(key string) string {
	base := strings.TrimSuffix(h.cfg.S3BaseEndpoint, "/")
	return fmt.Sprintf("%s/%s/%s", base, h.cfg.S3Bucket, key)
}
