// Package backups mirrors replaced directory snapshots to an S3 compatible
// bucket.
package backups

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	sc "github.com/dmitrijs2005/teamdb/internal/server/config"
)

// KeyPrefix is the object key prefix of mirrored backups.
const KeyPrefix = "backups/"

const keyTimeLayout = "20060102T150405Z"

var (
	loadAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return config.LoadDefaultConfig(ctx, optFns...)
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) putObjectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Mirror uploads backups as JSON objects named
// backups/<created-at>-<backup-id>.json.
type S3Mirror struct {
	client putObjectAPI
	bucket string
}

// NewS3Mirror builds a mirror from the server config. Static credentials are
// used when an access key is set, the default AWS chain otherwise. A custom
// endpoint switches to path-style addressing for MinIO and friends.
func NewS3Mirror(ctx context.Context, c *sc.Config) (*S3Mirror, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(c.S3Region)}
	if c.S3AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.S3AccessKey, c.S3SecretKey, ""),
		))
	}

	cfg, err := loadAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(c.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Mirror{client: client, bucket: c.S3Bucket}, nil
}

// ObjectKey returns the key a backup is stored under.
func ObjectKey(id string, createdAt time.Time) string {
	return fmt.Sprintf("%s%s-%s.json", KeyPrefix, createdAt.UTC().Format(keyTimeLayout), id)
}

// Put uploads body and returns the object key.
func (m *S3Mirror) Put(ctx context.Context, id string, createdAt time.Time, body []byte) (string, error) {
	key := ObjectKey(id, createdAt)
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload backup %s: %w", key, err)
	}
	return key, nil
}
