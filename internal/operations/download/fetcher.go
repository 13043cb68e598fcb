package download

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/lickdlabs/go-aws-s3/internal/pool"
	"github.com/lickdlabs/go-aws-s3/internal/s3api"
)

// RangeChunk is one fetched byte window together with the server's
// content-range descriptor for it.
type RangeChunk struct {
	// Bytes is the chunk data. Ownership passes to the caller, which must
	// hand the backing buffer back to the fetcher when done.
	Bytes []byte

	// ContentRange is the raw descriptor reported by the server.
	ContentRange string
}

// RangeFetcher issues a single ranged read. The requested end offset is an
// optimistic upper bound; the returned descriptor is authoritative for the
// bytes actually delivered and the total object length.
type RangeFetcher interface {
	FetchRange(ctx context.Context, bucket, key string, start, end int64) (*RangeChunk, error)

	// Release returns a chunk's backing buffer for reuse.
	Release(chunk *RangeChunk)
}

// objectFetcher reads byte windows of an S3 object via ranged GetObject calls.
type objectFetcher struct {
	client  s3api.S3API
	buffers *pool.ChunkPool
}

func newObjectFetcher(client s3api.S3API, buffers *pool.ChunkPool) *objectFetcher {
	return &objectFetcher{client: client, buffers: buffers}
}

// FetchRange requests [start, end] of bucket/key. S3 rejects any range on a
// zero-byte object with an InvalidRange error; for the opening window that is
// translated into an unsatisfied "bytes */0" descriptor so the caller can
// terminate cleanly instead of treating an empty object as a failure.
func (f *objectFetcher) FetchRange(ctx context.Context, bucket, key string, start, end int64) (*RangeChunk, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", start, end)),
	}

	output, err := f.client.GetObject(ctx, input)
	if err != nil {
		if start == 0 && s3api.IsInvalidRange(err) {
			return &RangeChunk{ContentRange: "bytes */0"}, nil
		}
		return nil, s3api.TranslateError(err)
	}
	defer output.Body.Close()

	// Read into the pooled buffer's fixed capacity; letting io.Copy grow it
	// would leave the pool with nothing it can take back. A clamped window
	// never exceeds the requested span, so the buffer is always large enough.
	buf := f.buffers.Get()
	buf = buf[:cap(buf)]
	n, err := io.ReadFull(output.Body, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		f.buffers.Put(buf)
		return nil, fmt.Errorf("reading range body: %w", err)
	}

	return &RangeChunk{
		Bytes:        buf[:n],
		ContentRange: aws.ToString(output.ContentRange),
	}, nil
}

// Release returns a chunk's backing buffer to the pool.
func (f *objectFetcher) Release(chunk *RangeChunk) {
	if chunk != nil && chunk.Bytes != nil {
		f.buffers.Put(chunk.Bytes)
	}
}
