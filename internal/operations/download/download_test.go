// Package download provides unit tests for S3 download operations.
package download

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s3errors "github.com/lickdlabs/go-aws-s3/errors"
	"github.com/lickdlabs/go-aws-s3/internal/testutil"
	"github.com/lickdlabs/go-aws-s3/s3types"
)

// testSink records everything written to it plus the terminal call it saw.
type testSink struct {
	buf         bytes.Buffer
	writes      int
	finalized   int
	discarded   int
	writeErr    error
	finalizeErr error
}

func (s *testSink) Write(p []byte) (int, error) {
	if s.writeErr != nil {
		return 0, s.writeErr
	}
	s.writes++
	return s.buf.Write(p)
}

func (s *testSink) Finalize() error {
	s.finalized++
	return s.finalizeErr
}

func (s *testSink) Discard() error {
	s.discarded++
	s.buf.Reset()
	return nil
}

// mockProgressTracker is a test implementation of ProgressTracker
type mockProgressTracker struct {
	updates   []progressUpdate
	completed bool
	err       error
}

type progressUpdate struct {
	bytesTransferred, totalBytes int64
}

func (m *mockProgressTracker) Update(bytesTransferred, totalBytes int64) {
	m.updates = append(m.updates, progressUpdate{bytesTransferred, totalBytes})
}

func (m *mockProgressTracker) Complete() {
	m.completed = true
}

func (m *mockProgressTracker) Error(err error) {
	m.err = err
}

// objectOfSize builds deterministic test content so byte-level comparisons
// catch reordering as well as truncation.
func objectOfSize(n int64) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

func newTestDownloader(client *testutil.MockS3Client) *Downloader {
	return New(client, zerolog.Nop())
}

func TestDownloader_DownloadToSink_CompletionInvariant(t *testing.T) {
	const chunkSize = 64

	tests := []struct {
		name        string
		objectSize  int64
		wantFetches int
	}{
		{name: "single byte", objectSize: 1, wantFetches: 1},
		{name: "one byte under a chunk", objectSize: chunkSize - 1, wantFetches: 1},
		{name: "exactly one chunk", objectSize: chunkSize, wantFetches: 1},
		{name: "one byte over a chunk", objectSize: chunkSize + 1, wantFetches: 2},
		{name: "exact multiple of chunk", objectSize: 3 * chunkSize, wantFetches: 3},
		{name: "many chunks with remainder", objectSize: 3*chunkSize + 7, wantFetches: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := objectOfSize(tt.objectSize)
			store := testutil.NewRangeObjectStore(data)
			sink := &testSink{}

			downloader := newTestDownloader(store.Client())
			result, err := downloader.DownloadToSink(
				context.Background(),
				"test-bucket", "test-key",
				sink,
				&s3types.DownloadOptionConfig{ChunkSize: chunkSize},
				time.Now(),
			)

			require.NoError(t, err)
			assert.Equal(t, tt.wantFetches, len(store.Fetches()))
			assert.Equal(t, tt.wantFetches, result.Chunks)
			assert.Equal(t, tt.objectSize, result.Size)
			assert.Equal(t, data, sink.buf.Bytes())
			assert.Equal(t, 1, sink.finalized)
			assert.Equal(t, 0, sink.discarded)
		})
	}
}

func TestDownloader_DownloadToSink_RequestsSequentialWindows(t *testing.T) {
	const chunkSize = 32
	store := testutil.NewRangeObjectStore(objectOfSize(3*chunkSize + 5))
	sink := &testSink{}

	downloader := newTestDownloader(store.Client())
	_, err := downloader.DownloadToSink(
		context.Background(),
		"test-bucket", "test-key",
		sink,
		&s3types.DownloadOptionConfig{ChunkSize: chunkSize},
		time.Now(),
	)
	require.NoError(t, err)

	want := []string{
		"bytes=0-31",
		"bytes=32-63",
		"bytes=64-95",
		"bytes=96-127",
	}
	assert.Equal(t, want, store.Fetches())
}

func TestDownloader_DownloadToSink_EmptyObject(t *testing.T) {
	store := testutil.NewRangeObjectStore(nil)
	sink := &testSink{}

	downloader := newTestDownloader(store.Client())
	result, err := downloader.DownloadToSink(
		context.Background(),
		"test-bucket", "empty-key",
		sink,
		&s3types.DownloadOptionConfig{},
		time.Now(),
	)

	require.NoError(t, err)
	assert.Equal(t, 1, len(store.Fetches()))
	assert.Equal(t, int64(0), result.Size)
	assert.Equal(t, 1, result.Chunks)
	assert.Equal(t, 0, sink.writes)
	assert.Equal(t, 1, sink.finalized)
	assert.Equal(t, 0, sink.discarded)
}

func TestDownloader_DownloadToSink_MalformedDescriptor(t *testing.T) {
	tests := []struct {
		name         string
		contentRange *string
	}{
		{name: "garbage descriptor", contentRange: aws.String("bytes nonsense")},
		{name: "missing descriptor", contentRange: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			client := &testutil.MockS3Client{
				GetObjectFunc: func(_ context.Context, _ *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
					calls++
					return &s3.GetObjectOutput{
						Body:         io.NopCloser(strings.NewReader("partial")),
						ContentRange: tt.contentRange,
					}, nil
				},
			}
			sink := &testSink{}

			downloader := newTestDownloader(client)
			_, err := downloader.DownloadToSink(
				context.Background(),
				"test-bucket", "test-key",
				sink,
				&s3types.DownloadOptionConfig{},
				time.Now(),
			)

			require.Error(t, err)
			assert.ErrorIs(t, err, s3errors.ErrInvalidContentRange)
			assert.Equal(t, s3errors.KindProtocol, s3errors.KindOf(err))
			assert.Equal(t, 1, calls)
			assert.Equal(t, 1, sink.discarded)
			assert.Equal(t, 0, sink.finalized)
		})
	}
}

func TestDownloader_DownloadToSink_MidStreamTransportFailure(t *testing.T) {
	const chunkSize = 16
	data := objectOfSize(4 * chunkSize)
	errConnReset := errors.New("connection reset by peer")

	calls := 0
	client := &testutil.MockS3Client{
		GetObjectFunc: func(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			calls++
			if calls > 2 {
				return nil, errConnReset
			}
			start := int64(calls-1) * chunkSize
			end := start + chunkSize - 1
			return &s3.GetObjectOutput{
				Body:         io.NopCloser(bytes.NewReader(data[start : end+1])),
				ContentRange: aws.String(fmt.Sprintf("bytes %d-%d/%d", start, end, len(data))),
			}, nil
		},
	}
	sink := &testSink{}
	tracker := &mockProgressTracker{}

	downloader := newTestDownloader(client)
	_, err := downloader.DownloadToSink(
		context.Background(),
		"test-bucket", "test-key",
		sink,
		&s3types.DownloadOptionConfig{ChunkSize: chunkSize, ProgressTracker: tracker},
		time.Now(),
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, errConnReset)
	assert.Equal(t, s3errors.KindTransport, s3errors.KindOf(err))
	assert.Equal(t, 3, calls)
	assert.Equal(t, 1, sink.discarded)
	assert.Equal(t, 0, sink.finalized)
	assert.ErrorIs(t, tracker.err, errConnReset)
}

func TestDownloader_DownloadToSink_ProtocolViolations(t *testing.T) {
	const length = 100

	tests := []struct {
		name         string
		contentRange string
		body         string
	}{
		{
			name:         "descriptor start does not match requested window",
			contentRange: fmt.Sprintf("bytes 10-49/%d", length),
			body:         strings.Repeat("x", 40),
		},
		{
			name:         "body shorter than descriptor span",
			contentRange: fmt.Sprintf("bytes 0-49/%d", length),
			body:         strings.Repeat("x", 30),
		},
		{
			name:         "unsatisfied descriptor for non-empty object",
			contentRange: fmt.Sprintf("bytes */%d", length),
			body:         "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &testutil.MockS3Client{
				GetObjectFunc: func(_ context.Context, _ *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
					return &s3.GetObjectOutput{
						Body:         io.NopCloser(strings.NewReader(tt.body)),
						ContentRange: aws.String(tt.contentRange),
					}, nil
				},
			}
			sink := &testSink{}

			downloader := newTestDownloader(client)
			_, err := downloader.DownloadToSink(
				context.Background(),
				"test-bucket", "test-key",
				sink,
				&s3types.DownloadOptionConfig{},
				time.Now(),
			)

			require.Error(t, err)
			assert.Equal(t, s3errors.KindProtocol, s3errors.KindOf(err))
			assert.Equal(t, 1, sink.discarded)
			assert.Equal(t, 0, sink.finalized)
		})
	}
}

func TestDownloader_DownloadToSink_LengthChangedMidDownload(t *testing.T) {
	const chunkSize = 10

	calls := 0
	client := &testutil.MockS3Client{
		GetObjectFunc: func(_ context.Context, _ *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			calls++
			// Second response reports a different total length than the first.
			length := 30
			if calls > 1 {
				length = 40
			}
			start := (calls - 1) * chunkSize
			end := start + chunkSize - 1
			return &s3.GetObjectOutput{
				Body:         io.NopCloser(strings.NewReader(strings.Repeat("x", chunkSize))),
				ContentRange: aws.String(fmt.Sprintf("bytes %d-%d/%d", start, end, length)),
			}, nil
		},
	}
	sink := &testSink{}

	downloader := newTestDownloader(client)
	_, err := downloader.DownloadToSink(
		context.Background(),
		"test-bucket", "test-key",
		sink,
		&s3types.DownloadOptionConfig{ChunkSize: chunkSize},
		time.Now(),
	)

	require.Error(t, err)
	assert.Equal(t, s3errors.KindProtocol, s3errors.KindOf(err))
	assert.Equal(t, 1, sink.discarded)
}

func TestDownloader_DownloadToSink_SinkWriteFailure(t *testing.T) {
	store := testutil.NewRangeObjectStore(objectOfSize(100))
	errDiskFull := errors.New("no space left on device")
	sink := &testSink{writeErr: errDiskFull}

	downloader := newTestDownloader(store.Client())
	_, err := downloader.DownloadToSink(
		context.Background(),
		"test-bucket", "test-key",
		sink,
		&s3types.DownloadOptionConfig{},
		time.Now(),
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, errDiskFull)
	assert.Equal(t, s3errors.KindSink, s3errors.KindOf(err))
	assert.Equal(t, 1, sink.discarded)
	assert.Equal(t, 0, sink.finalized)
}

func TestDownloader_DownloadToSink_FinalizeFailure(t *testing.T) {
	store := testutil.NewRangeObjectStore(objectOfSize(100))
	errFlush := errors.New("flush failed")
	sink := &testSink{finalizeErr: errFlush}

	downloader := newTestDownloader(store.Client())
	_, err := downloader.DownloadToSink(
		context.Background(),
		"test-bucket", "test-key",
		sink,
		&s3types.DownloadOptionConfig{},
		time.Now(),
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, errFlush)
	assert.Equal(t, s3errors.KindSink, s3errors.KindOf(err))
	// Finalize was the terminal call; no discard on top of it.
	assert.Equal(t, 1, sink.finalized)
	assert.Equal(t, 0, sink.discarded)
}

func TestDownloader_DownloadToSink_ProgressTracking(t *testing.T) {
	const chunkSize = 25
	data := objectOfSize(60)
	store := testutil.NewRangeObjectStore(data)
	sink := &testSink{}
	tracker := &mockProgressTracker{}

	downloader := newTestDownloader(store.Client())
	_, err := downloader.DownloadToSink(
		context.Background(),
		"test-bucket", "test-key",
		sink,
		&s3types.DownloadOptionConfig{ChunkSize: chunkSize, ProgressTracker: tracker},
		time.Now(),
	)
	require.NoError(t, err)

	require.NotEmpty(t, tracker.updates)
	assert.True(t, tracker.completed)
	assert.NoError(t, tracker.err)

	// Transfers only ever grow, and every update after the first response
	// carries the discovered total.
	var prev int64
	for _, u := range tracker.updates {
		assert.GreaterOrEqual(t, u.bytesTransferred, prev)
		assert.Equal(t, int64(len(data)), u.totalBytes)
		prev = u.bytesTransferred
	}
	assert.Equal(t, int64(len(data)), tracker.updates[len(tracker.updates)-1].bytesTransferred)
}

func TestDownloader_DownloadToSink_RepeatedDownloadsMatch(t *testing.T) {
	data := objectOfSize(777)

	run := func() []byte {
		store := testutil.NewRangeObjectStore(data)
		sink := &testSink{}
		downloader := newTestDownloader(store.Client())
		_, err := downloader.DownloadToSink(
			context.Background(),
			"test-bucket", "test-key",
			sink,
			&s3types.DownloadOptionConfig{ChunkSize: 100},
			time.Now(),
		)
		require.NoError(t, err)
		return append([]byte(nil), sink.buf.Bytes()...)
	}

	first := run()
	second := run()
	assert.Equal(t, data, first)
	assert.Equal(t, first, second)
}

func TestDownloader_Get(t *testing.T) {
	t.Run("returns body and metadata", func(t *testing.T) {
		client := &testutil.MockS3Client{
			GetObjectFunc: func(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
				assert.Equal(t, "test-bucket", aws.ToString(input.Bucket))
				assert.Equal(t, "test-key", aws.ToString(input.Key))
				return &s3.GetObjectOutput{
					Body:          io.NopCloser(strings.NewReader("Hello, World!")),
					ContentLength: aws.Int64(13),
					ContentType:   aws.String("text/plain"),
					ETag:          aws.String("test-etag"),
					Metadata:      map[string]string{"env": "prod"},
				}, nil
			},
		}

		downloader := newTestDownloader(client)
		result, err := downloader.Get(context.Background(), "test-bucket", "test-key")

		require.NoError(t, err)
		assert.Equal(t, []byte("Hello, World!"), result.Body)
		assert.Equal(t, int64(13), result.ContentLength)
		assert.Equal(t, "text/plain", result.ContentType)
		assert.Equal(t, "test-etag", result.ETag)
		assert.Equal(t, map[string]string{"env": "prod"}, result.Metadata)
	})

	t.Run("propagates service errors", func(t *testing.T) {
		errBoom := errors.New("service unavailable")
		client := &testutil.MockS3Client{
			GetObjectFunc: func(_ context.Context, _ *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
				return nil, errBoom
			},
		}

		downloader := newTestDownloader(client)
		_, err := downloader.Get(context.Background(), "test-bucket", "test-key")

		require.Error(t, err)
		assert.ErrorIs(t, err, errBoom)
		assert.Equal(t, s3errors.KindTransport, s3errors.KindOf(err))
	})
}
