package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3manager "github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/semmidev/dbhook/internal/domain"
)

type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type objectUploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

type S3Options struct {
	Bucket      string
	PartSize    int64
	Concurrency int
}

type S3Storage struct {
	client   objectGetter
	uploader objectUploader
	bucket   string
}

// NewS3 wraps an existing client. Uploads go through the multipart uploader so
// memory stays bounded by PartSize * Concurrency whatever the archive size.
func NewS3(client *s3.Client, opts S3Options) *S3Storage {
	uploader := s3manager.NewUploader(client, func(u *s3manager.Uploader) {
		if opts.PartSize >= s3manager.MinUploadPartSize {
			u.PartSize = opts.PartSize
		}
		if opts.Concurrency > 0 {
			u.Concurrency = opts.Concurrency
		}
	})

	return &S3Storage{
		client:   client,
		uploader: uploader,
		bucket:   opts.Bucket,
	}
}

func (s *S3Storage) Name() string {
	return "s3"
}

// Upload streams body into s3://bucket/key.
func (s *S3Storage) Upload(ctx context.Context, key string, body io.Reader) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	return nil
}

// Download returns the object body; the caller closes it.
func (s *S3Storage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("s3://%s/%s: %w", s.bucket, key, domain.ErrBackupNotFound)
		}
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}

	if out == nil || out.Body == nil {
		return nil, fmt.Errorf("s3://%s/%s: empty response: %w", s.bucket, key, domain.ErrBackupNotFound)
	}

	return out.Body, nil
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}

	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}

	return false
}
