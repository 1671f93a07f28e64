package assets

import (
	"context"
	"fmt"
	"portal/internal/structures"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type objectDeleter interface {
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store removes objects stored under keyPrefix+publicID.
type S3Store struct {
	client    objectDeleter
	bucket    string
	keyPrefix string
}

var loadDefaultAWSConfig = config.LoadDefaultConfig

// NewS3Store builds a client for conf. A custom endpoint switches to
// path-style addressing for MinIO.
func NewS3Store(ctx context.Context, conf structures.AssetsConfig) (*S3Store, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(conf.Region)}
	if conf.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conf.AccessKey, conf.SecretKey, ""),
		))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("assets: load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if conf.Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Store(client, conf.Bucket, conf.KeyPrefix), nil
}

func newS3Store(client objectDeleter, bucket, keyPrefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, keyPrefix: keyPrefix}
}

func (s *S3Store) DeleteAsset(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.keyPrefix + publicID),
	})
	if err != nil {
		return fmt.Errorf("assets: delete %s: %w", publicID, err)
	}
	return nil
}
