// Package s3sink implements the optional secondary backup destination:
// once a local backup volume (or make-slave file set) has been finished,
// it can be streamed up to an S3 bucket, the way the teacher's content
// store offloads blocks there.
package s3sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config configures a Sink.
type Config struct {
	Client          *s3.Client // if nil, NewSink builds one from the remaining fields
	Region          string
	Endpoint        string // non-empty selects an S3-compatible endpoint
	AccessKeyID     string
	SecretAccessKey string
	ForcePathStyle  bool

	Bucket    string
	KeyPrefix string
}

// Sink uploads finished backup files to one S3 bucket.
type Sink struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
}

// NewSink builds a Sink, constructing an S3 client from cfg's credentials
// when cfg.Client is nil, and verifies the bucket is reachable.
func NewSink(ctx context.Context, cfg Config) (*Sink, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3sink: bucket name is required")
	}

	client := cfg.Client
	if client == nil {
		awsCfg, err := config.LoadDefaultConfig(ctx,
			config.WithRegion(cfg.Region),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		)
		if err != nil {
			return nil, fmt.Errorf("s3sink: load aws config: %w", err)
		}
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = &cfg.Endpoint
			}
			o.UsePathStyle = cfg.ForcePathStyle
		})
	}

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
		return nil, fmt.Errorf("s3sink: access bucket %q: %w", cfg.Bucket, err)
	}

	return &Sink{client: client, bucket: cfg.Bucket, keyPrefix: cfg.KeyPrefix}, nil
}

// UploadFile streams the file at path to the bucket under key, prefixed by
// the sink's KeyPrefix if set. It is meant to run after Session.Finish has
// closed the local file.
func (s *Sink) UploadFile(ctx context.Context, path, key string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("s3sink: open %s: %w", path, err)
	}
	defer f.Close()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
		Body:   f,
	})
	if err != nil {
		return fmt.Errorf("s3sink: upload %s: %w", path, err)
	}
	return nil
}

// UploadDir uploads every regular file directly under dir (one level, not
// recursive), used for make-slave mode's per-volume files plus the .info
// marker WriteSlaveInfo wrote alongside them.
func (s *Sink) UploadDir(ctx context.Context, dir, keyPrefix string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("s3sink: read dir %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		key := filepath.Join(keyPrefix, e.Name())
		if err := s.UploadFile(ctx, path, key); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sink) objectKey(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return s.keyPrefix + key
}
