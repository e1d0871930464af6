package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3API はS3Storageが使うS3クライアントのメソッドです。
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Storage はS3バケットにオブジェクトを保存します。
type S3Storage struct {
	client  s3API
	bucket  string
	baseURL string
}

var _ Storage = (*S3Storage)(nil)

// NewS3Storage は環境変数や共有設定からAWS設定を読み込み、S3Storageを返します。
// publicURLが空の場合は https://<bucket>.s3.amazonaws.com を使います。
func NewS3Storage(ctx context.Context, bucket, region, publicURL string) (*S3Storage, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return newS3Storage(s3.NewFromConfig(awsCfg), bucket, publicURL), nil
}

func newS3Storage(client s3API, bucket, publicURL string) *S3Storage {
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.amazonaws.com", bucket)
	}
	return &S3Storage{client: client, bucket: bucket, baseURL: publicURL}
}

// Save はオブジェクトをアップロードし公開URLを返します。
func (s *S3Storage) Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return joinURL(s.baseURL, key), nil
}

// Delete はオブジェクトを削除します。
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	var nsk *types.NoSuchKey
	if err != nil && !errors.As(err, &nsk) {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// KeyFromURL は公開URLからキーを取り出します。
func (s *S3Storage) KeyFromURL(url string) (string, bool) {
	return keyFromURL(s.baseURL, url)
}
