package media

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	sc "github.com/streamvault/streamvault/internal/server/config"
)

func testHost() *S3Host {
	return NewS3Host(&sc.Config{
		S3AccessKey:    "admin",
		S3SecretKey:    "secretpassword",
		S3Bucket:       "streamvault",
		S3Region:       "us-east-1",
		S3BaseEndpoint: "http://127.0.0.1:9000/",
	})
}

func stubAWSSeams(t *testing.T) {
	t.Helper()
	origLoad, origNew, origPut := loadDefaultAWSConfig, newS3ClientFromConfig, putObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
		putObject = origPut
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client { return &s3.Client{} }
}

func TestUpload_PutsObjectAndReturnsURL(t *testing.T) {
	stubAWSSeams(t)

	var got *s3.PutObjectInput
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		got = in
		return &s3.PutObjectOutput{}, nil
	}

	url, err := testHost().Upload(context.Background(), strings.NewReader("png-bytes"), "image/png")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if got == nil {
		t.Fatal("PutObject was not called")
	}
	if *got.Bucket != "streamvault" {
		t.Errorf("bucket = %q", *got.Bucket)
	}
	if *got.ContentType != "image/png" {
		t.Errorf("content type = %q", *got.ContentType)
	}
	if !strings.HasPrefix(*got.Key, "media/") {
		t.Errorf("key = %q, want media/ prefix", *got.Key)
	}
	body, _ := io.ReadAll(got.Body)
	if string(body) != "png-bytes" {
		t.Errorf("body = %q", body)
	}

	want := "http://127.0.0.1:9000/streamvault/" + *got.Key
	if url != want {
		t.Errorf("url = %q, want %q", url, want)
	}
}

func TestUpload_PutError(t *testing.T) {
	stubAWSSeams(t)

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return nil, errors.New("put-fail")
	}

	_, err := testHost().Upload(context.Background(), strings.NewReader("x"), "image/png")
	if err == nil || !strings.Contains(err.Error(), "put-fail") {
		t.Fatalf("want put-fail, got %v", err)
	}
}

func TestUpload_ConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("config-fail")
	}

	_, err := testHost().Upload(context.Background(), strings.NewReader("x"), "image/png")
	if err == nil || !strings.Contains(err.Error(), "config-fail") {
		t.Fatalf("want config-fail, got %v", err)
	}
}

func TestRandomStorageKey_Unique(t *testing.T) {
	a, b := randomStorageKey(), randomStorageKey()
	if a == b {
		t.Fatalf("keys collide: %q", a)
	}
}
