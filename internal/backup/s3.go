package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// DefaultObjectKey is the object key used by S3Storage.
const DefaultObjectKey = "journal/" + DefaultFileName

// S3Config holds the connection settings for an S3-compatible bucket
// (AWS, MinIO, ...).
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // empty for AWS
	AccessKey string
	SecretKey string
}

// S3API is the subset of *s3.Client used by S3Storage.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewS3Client builds an S3 client from cfg. With a custom endpoint it uses
// path-style addressing, which MinIO requires.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("backup.NewS3Client: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// S3Storage keeps the snapshot as a single object in a bucket. It stores
// opaque bytes only; the journal itself always lives in the local store.
type S3Storage struct {
	client S3API
	bucket string
	key    string
	sealer *Sealer
}

// NewS3Storage stores snapshots at bucket/key. An empty key means
// DefaultObjectKey. sealer may be nil.
func NewS3Storage(client S3API, bucket, key string, sealer *Sealer) *S3Storage {
	if key == "" {
		key = DefaultObjectKey
	}
	return &S3Storage{client: client, bucket: bucket, key: key, sealer: sealer}
}

// Name implements Storage.
func (s *S3Storage) Name() string { return "s3://" + s.bucket + "/" + s.key }

// Save implements Storage.
func (s *S3Storage) Save(ctx context.Context, data []byte) error {
	if s.sealer != nil {
		sealed, err := s.sealer.Seal(data)
		if err != nil {
			return err
		}
		data = sealed
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/octet-stream"),
	})
	if err != nil {
		return fmt.Errorf("backup.S3Storage.Save: %w", err)
	}
	return nil
}

// Load implements Storage.
func (s *S3Storage) Load(ctx context.Context) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNoBackup
		}
		return nil, fmt.Errorf("backup.S3Storage.Load: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("backup.S3Storage.Load: read body: %w", err)
	}
	if s.sealer != nil {
		return s.sealer.Open(data)
	}
	return data, nil
}
