// Package upload provides unit tests for S3 upload operations.
package upload

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s3errors "github.com/lickdlabs/go-aws-s3/errors"
	"github.com/lickdlabs/go-aws-s3/internal/testutil"
	"github.com/lickdlabs/go-aws-s3/s3types"
)

type mockProgressTracker struct {
	updates   [][2]int64
	completed bool
	err       error
}

func (m *mockProgressTracker) Update(transferred, total int64) {
	m.updates = append(m.updates, [2]int64{transferred, total})
}

func (m *mockProgressTracker) Complete() { m.completed = true }

func (m *mockProgressTracker) Error(err error) { m.err = err }

func TestUploader_Put(t *testing.T) {
	t.Run("sends body with options applied", func(t *testing.T) {
		var gotInput *s3.PutObjectInput
		client := &testutil.MockS3Client{
			PutObjectFunc: func(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
				gotInput = input
				return &s3.PutObjectOutput{ETag: aws.String("test-etag")}, nil
			},
		}

		uploader := New(client)
		result, err := uploader.Put(
			context.Background(),
			"test-bucket", "test-key",
			[]byte("hello"),
			&s3types.UploadOptionConfig{
				ContentType:  "text/plain",
				StorageClass: "STANDARD_IA",
				Metadata:     map[string]string{"env": "prod"},
			},
			time.Now(),
		)

		require.NoError(t, err)
		assert.Equal(t, "test-bucket", aws.ToString(gotInput.Bucket))
		assert.Equal(t, "test-key", aws.ToString(gotInput.Key))
		assert.Equal(t, int64(5), aws.ToInt64(gotInput.ContentLength))
		assert.Equal(t, "text/plain", aws.ToString(gotInput.ContentType))
		assert.Equal(t, awstypes.StorageClassStandardIa, gotInput.StorageClass)
		assert.Equal(t, map[string]string{"env": "prod"}, gotInput.Metadata)

		body, readErr := io.ReadAll(gotInput.Body)
		require.NoError(t, readErr)
		assert.Equal(t, []byte("hello"), body)

		assert.Equal(t, "test-key", result.Key)
		assert.Equal(t, int64(5), result.Size)
		assert.Equal(t, "test-etag", result.ETag)
	})

	t.Run("reports progress", func(t *testing.T) {
		client := &testutil.MockS3Client{}
		tracker := &mockProgressTracker{}

		uploader := New(client)
		_, err := uploader.Put(
			context.Background(),
			"test-bucket", "test-key",
			[]byte("hello"),
			&s3types.UploadOptionConfig{ProgressTracker: tracker},
			time.Now(),
		)

		require.NoError(t, err)
		assert.Equal(t, [][2]int64{{0, 5}, {5, 5}}, tracker.updates)
		assert.True(t, tracker.completed)
		assert.NoError(t, tracker.err)
	})

	t.Run("translates service errors", func(t *testing.T) {
		client := &testutil.MockS3Client{
			PutObjectFunc: func(_ context.Context, _ *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
				return nil, &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"}
			},
		}
		tracker := &mockProgressTracker{}

		uploader := New(client)
		_, err := uploader.Put(
			context.Background(),
			"test-bucket", "test-key",
			[]byte("hello"),
			&s3types.UploadOptionConfig{ProgressTracker: tracker},
			time.Now(),
		)

		require.Error(t, err)
		assert.ErrorIs(t, err, s3errors.ErrAccessDenied)
		assert.Equal(t, s3errors.KindTransport, s3errors.KindOf(err))
		assert.Error(t, tracker.err)
		assert.False(t, tracker.completed)
	})
}

func TestUploader_Upload(t *testing.T) {
	t.Run("consumes the reader fully", func(t *testing.T) {
		var gotBody []byte
		client := &testutil.MockS3Client{
			PutObjectFunc: func(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
				body, err := io.ReadAll(input.Body)
				require.NoError(t, err)
				gotBody = body
				return &s3.PutObjectOutput{}, nil
			},
		}

		uploader := New(client)
		result, err := uploader.Upload(
			context.Background(),
			"test-bucket", "test-key",
			strings.NewReader("streamed content"),
			&s3types.UploadOptionConfig{},
			time.Now(),
		)

		require.NoError(t, err)
		assert.Equal(t, []byte("streamed content"), gotBody)
		assert.Equal(t, int64(len("streamed content")), result.Size)
	})

	t.Run("fails when the reader fails", func(t *testing.T) {
		errRead := errors.New("read failed")
		uploader := New(&testutil.MockS3Client{})

		_, err := uploader.Upload(
			context.Background(),
			"test-bucket", "test-key",
			io.MultiReader(strings.NewReader("partial"), &failingReader{err: errRead}),
			&s3types.UploadOptionConfig{},
			time.Now(),
		)

		require.Error(t, err)
		assert.ErrorIs(t, err, errRead)
	})
}

type failingReader struct {
	err error
}

func (r *failingReader) Read([]byte) (int, error) {
	return 0, r.err
}
