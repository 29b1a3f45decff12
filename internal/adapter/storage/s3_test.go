package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	s3manager "github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/semmidev/dbhook/internal/domain"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeGetter struct {
	out   *s3.GetObjectOutput
	err   error
	input *s3.GetObjectInput
}

func (f *fakeGetter) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.input = params
	return f.out, f.err
}

type fakeUploader struct {
	input    *s3.PutObjectInput
	received string
	err      error
}

func (f *fakeUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	f.input = input
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.received = string(data)
	if f.err != nil {
		return nil, f.err
	}
	return &s3manager.UploadOutput{}, nil
}

func notFoundResponseError() error {
	return &smithyhttp.ResponseError{
		Response: &smithyhttp.Response{Response: &http.Response{StatusCode: http.StatusNotFound}},
		Err:      errors.New("not found"),
	}
}

func TestS3Storage(t *testing.T) {
	Convey("Given an S3Storage", t, func() {
		ctx := context.Background()
		getter := &fakeGetter{}
		uploader := &fakeUploader{}
		storage := &S3Storage{client: getter, uploader: uploader, bucket: "backups-bucket"}
		key := domain.BackupKey("app1", "d-1")

		So(storage.Name(), ShouldEqual, "s3")

		Convey("Upload passes the stream as the request body", func() {
			err := storage.Upload(ctx, key, strings.NewReader("archive bytes"))

			So(err, ShouldBeNil)
			So(*uploader.input.Bucket, ShouldEqual, "backups-bucket")
			So(*uploader.input.Key, ShouldEqual, "backups/app1/d-1.archive")
			So(uploader.received, ShouldEqual, "archive bytes")
		})

		Convey("Upload wraps uploader failures", func() {
			uploader.err = errors.New("access denied")
			err := storage.Upload(ctx, key, strings.NewReader("x"))

			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "failed to upload to S3: access denied")
		})

		Convey("Download returns the object body", func() {
			getter.out = &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("archive bytes"))}
			body, err := storage.Download(ctx, key)

			So(err, ShouldBeNil)
			data, _ := io.ReadAll(body)
			So(string(data), ShouldEqual, "archive bytes")
			So(*getter.input.Key, ShouldEqual, key)
		})

		Convey("Download maps missing objects to ErrBackupNotFound", func() {
			for _, err := range []error{
				&types.NoSuchKey{},
				notFoundResponseError(),
				&smithy.GenericAPIError{Code: "NotFound"},
			} {
				getter.err = err
				body, got := storage.Download(ctx, key)
				So(body, ShouldBeNil)
				So(errors.Is(got, domain.ErrBackupNotFound), ShouldBeTrue)
			}
		})

		Convey("Download treats an empty response as missing", func() {
			getter.out = &s3.GetObjectOutput{}
			_, err := storage.Download(ctx, key)

			So(errors.Is(err, domain.ErrBackupNotFound), ShouldBeTrue)
		})

		Convey("Download keeps other failures as transport errors", func() {
			getter.err = &smithy.GenericAPIError{Code: "AccessDenied"}
			_, err := storage.Download(ctx, key)

			So(err, ShouldNotBeNil)
			So(errors.Is(err, domain.ErrBackupNotFound), ShouldBeFalse)
			So(err.Error(), ShouldContainSubstring, "failed to get object from S3")
		})
	})
}
