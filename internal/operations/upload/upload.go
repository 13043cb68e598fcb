// Package upload handles S3 object upload operations.
//
// Uploads are single-pass PutObject calls; the payload is staged in memory so
// the SDK can compute content length and checksums in one request.
package upload

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/lickdlabs/go-aws-s3/errors"
	"github.com/lickdlabs/go-aws-s3/internal/s3api"
	"github.com/lickdlabs/go-aws-s3/s3types"
)

// Uploader handles S3 upload operations.
type Uploader struct {
	s3Client s3api.S3API
}

// New creates a new Uploader instance.
func New(s3Client s3api.S3API) *Uploader {
	return &Uploader{
		s3Client: s3Client,
	}
}

// Upload uploads data from an io.Reader to S3 in a single PutObject call.
func (u *Uploader) Upload(
	ctx context.Context,
	bucket, key string,
	reader io.Reader,
	config *s3types.UploadOptionConfig,
	startTime time.Time,
) (*s3types.UploadResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewObjectError("upload", bucket, key, err)
	}
	return u.Put(ctx, bucket, key, data, config, startTime)
}

// Put uploads byte data to S3.
func (u *Uploader) Put(
	ctx context.Context,
	bucket, key string,
	data []byte,
	config *s3types.UploadOptionConfig,
	startTime time.Time,
) (*s3types.UploadResult, error) {
	size := int64(len(data))

	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(size),
	}
	if config.ContentType != "" {
		input.ContentType = aws.String(config.ContentType)
	}
	if config.StorageClass != "" {
		input.StorageClass = awstypes.StorageClass(config.StorageClass)
	}
	if len(config.Metadata) > 0 {
		input.Metadata = config.Metadata
	}

	if config.ProgressTracker != nil {
		config.ProgressTracker.Update(0, size)
	}

	output, err := u.s3Client.PutObject(ctx, input)
	if err != nil {
		wrapped := errors.NewObjectError("put", bucket, key, s3api.TranslateError(err)).
			WithKind(errors.KindTransport)
		if config.ProgressTracker != nil {
			config.ProgressTracker.Error(wrapped)
		}
		return nil, wrapped
	}

	if config.ProgressTracker != nil {
		config.ProgressTracker.Update(size, size)
		config.ProgressTracker.Complete()
	}

	return &s3types.UploadResult{
		Key:      key,
		Size:     size,
		ETag:     aws.ToString(output.ETag),
		Duration: time.Since(startTime),
	}, nil
}
