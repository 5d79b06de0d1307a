// Package s3 provides the object storage adapter for avatar and document
// blobs, speaking to any S3-compatible backend (MinIO in development).
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/lborres/portal/core"
)

type Adapter struct {
	client *s3.Client
}

var _ core.ObjectStorage = (*Adapter)(nil)

// Options carry the S3 connection settings. Endpoint points at a
// MinIO-compatible server; path-style addressing is forced for it.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
}

func New(ctx context.Context, opts Options) (*Adapter, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(opts.Endpoint)
		o.UsePathStyle = true
	})

	return &Adapter{client: client}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (a *Adapter) EnsureBucket(ctx context.Context, bucket string) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	if !errors.As(err, &notFound) {
		return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}

	_, err = a.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)})
	if err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}
	return nil
}

func (a *Adapter) Put(ctx context.Context, bucket, name string, body []byte, contentType string) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(name),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	return err
}

func (a *Adapter) Get(ctx context.Context, bucket, name string) (io.ReadCloser, *core.ObjectInfo, error) {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, nil, core.ErrFileNotFound
		}
		return nil, nil, err
	}

	return out.Body, objectInfo(out.ContentType, out.ContentLength), nil
}

func (a *Adapter) Stat(ctx context.Context, bucket, name string) (*core.ObjectInfo, error) {
	out, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return nil, core.ErrFileNotFound
		}
		return nil, err
	}

	return objectInfo(out.ContentType, out.ContentLength), nil
}

func (a *Adapter) Delete(ctx context.Context, bucket, name string) error {
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(name),
	})
	return err
}

func objectInfo(contentType *string, size *int64) *core.ObjectInfo {
	info := &core.ObjectInfo{}
	if contentType != nil {
		info.ContentType = *contentType
	}
	if size != nil {
		info.Size = *size
	}
	return info
}
