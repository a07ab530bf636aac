package backups

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sc "github.com/dmitrijs2005/teamdb/internal/server/config"
)

type fakeS3 struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	if in.Body != nil {
		f.body, _ = io.ReadAll(in.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestObjectKey(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 5, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "backups/20260301T083005Z-abc.json", ObjectKey("abc", at))
}

func TestPut(t *testing.T) {
	f := &fakeS3{}
	m := &S3Mirror{client: f, bucket: "dir-backups"}
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	key, err := m.Put(context.Background(), "id1", at, []byte(`{"version":"20260301"}`))
	require.NoError(t, err)
	assert.Equal(t, "backups/20260301T000000Z-id1.json", key)
	assert.Equal(t, "dir-backups", aws.ToString(f.in.Bucket))
	assert.Equal(t, key, aws.ToString(f.in.Key))
	assert.Equal(t, "application/json", aws.ToString(f.in.ContentType))
	assert.Equal(t, `{"version":"20260301"}`, string(f.body))
}

func TestPut_Error(t *testing.T) {
	m := &S3Mirror{client: &fakeS3{err: errors.New("access denied")}, bucket: "b"}

	_, err := m.Put(context.Background(), "id1", time.Now(), []byte("{}"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestNewS3Mirror(t *testing.T) {
	origLoad, origNew := loadAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() { loadAWSConfig, newS3ClientFromConfig = origLoad, origNew })

	var gotOpts s3.Options
	f := &fakeS3{}
	loadAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		var lo config.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-west-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		creds, err := lo.Credentials.Retrieve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "AK", creds.AccessKeyID)
		assert.Equal(t, "SK", creds.SecretAccessKey)
		return aws.Config{Region: lo.Region}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) putObjectAPI {
		for _, fn := range optFns {
			fn(&gotOpts)
		}
		return f
	}

	m, err := NewS3Mirror(context.Background(), &sc.Config{
		S3Bucket:    "b",
		S3Region:    "eu-west-1",
		S3Endpoint:  "http://127.0.0.1:9000",
		S3AccessKey: "AK",
		S3SecretKey: "SK",
	})
	require.NoError(t, err)
	assert.Equal(t, "b", m.bucket)
	assert.Same(t, f, m.client)
	assert.Equal(t, "http://127.0.0.1:9000", aws.ToString(gotOpts.BaseEndpoint))
	assert.True(t, gotOpts.UsePathStyle)
}

func TestNewS3Mirror_ConfigError(t *testing.T) {
	orig := loadAWSConfig
	t.Cleanup(func() { loadAWSConfig = orig })
	loadAWSConfig = func(context.Context, ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no profile")
	}

	_, err := NewS3Mirror(context.Background(), &sc.Config{S3Bucket: "b"})
	require.ErrorContains(t, err, "no profile")
}
