// Package download handles S3 object download operations.
//
// It provides the chunked range downloader, which pulls an object of unknown
// total size into a sink via sequential byte-range reads, plus the single-shot
// get used by the in-memory convenience operations. The server's content-range
// descriptor drives loop termination: the object's length is discovered from
// the first response rather than from a prior head call.
package download

import (
	"context"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/lickdlabs/go-aws-s3/errors"
	"github.com/lickdlabs/go-aws-s3/internal/pool"
	"github.com/lickdlabs/go-aws-s3/internal/s3api"
	"github.com/lickdlabs/go-aws-s3/s3types"
)

// DefaultChunkSize is the byte window requested per range fetch when the
// caller does not configure one.
const DefaultChunkSize int64 = 1024 * 1024

// Downloader handles S3 download operations.
type Downloader struct {
	s3Client s3api.S3API
	log      zerolog.Logger
}

// New creates a new Downloader instance.
func New(s3Client s3api.S3API, log zerolog.Logger) *Downloader {
	return &Downloader{
		s3Client: s3Client,
		log:      log,
	}
}

// rangeProgress is the loop state of one chunked download. It is replaced
// wholesale with values parsed from each response's descriptor and never
// shared across calls.
type rangeProgress struct {
	// lastEnd is the offset of the last fetched byte; -1 means nothing fetched.
	lastEnd int64

	// total is the object's total length; -1 means not yet known.
	total int64
}

func (p rangeProgress) done() bool {
	return p.lastEnd == p.total-1
}

// DownloadToSink streams bucket/key into sink via sequential range fetches.
//
// Each iteration requests the next unfetched window [lastEnd+1, lastEnd+chunk];
// the response's content-range descriptor supplies the bytes actually covered
// and the total length, which decides whether another window is needed. The
// requested window may extend past the object's true end; the server clamps it.
// Requests are strictly sequential, so the sink sees chunks in increasing
// offset order with no gaps and at most one chunk is held in memory.
//
// On success the sink is finalized; on any fetch, parse, or write failure the
// sink is discarded before the error propagates, so no partial artifact
// survives as if it were complete.
func (d *Downloader) DownloadToSink(
	ctx context.Context,
	bucket, key string,
	sink s3types.Sink,
	config *s3types.DownloadOptionConfig,
	startTime time.Time,
) (*s3types.DownloadResult, error) {
	chunkSize := config.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	fetcher := newObjectFetcher(d.s3Client, pool.NewChunkPool(chunkSize))

	return d.downloadWith(ctx, fetcher, bucket, key, sink, chunkSize, config.ProgressTracker, startTime)
}

// downloadWith runs the range loop against an arbitrary fetcher.
func (d *Downloader) downloadWith(
	ctx context.Context,
	fetcher RangeFetcher,
	bucket, key string,
	sink s3types.Sink,
	chunkSize int64,
	tracker s3types.ProgressTracker,
	startTime time.Time,
) (*s3types.DownloadResult, error) {
	progress := rangeProgress{lastEnd: -1, total: -1}
	var written int64
	var chunks int

	for !progress.done() {
		start := progress.lastEnd + 1
		end := start + chunkSize - 1

		chunk, err := fetcher.FetchRange(ctx, bucket, key, start, end)
		if err != nil {
			return nil, d.fail(sink, tracker, bucket, key, errors.KindTransport, err)
		}
		chunks++

		cr, err := ParseContentRange(chunk.ContentRange)
		if err != nil {
			fetcher.Release(chunk)
			return nil, d.fail(sink, tracker, bucket, key, errors.KindProtocol, err)
		}

		if cr.Unsatisfied {
			fetcher.Release(chunk)
			// Only a zero-byte object may answer the opening window with an
			// unsatisfied descriptor; anywhere else it contradicts what the
			// server already told us.
			if cr.Length != 0 || progress.lastEnd != -1 {
				err := errors.NewError("parseContentRange", errors.ErrInvalidContentRange).
					WithMessage("unsatisfied range for non-empty object")
				return nil, d.fail(sink, tracker, bucket, key, errors.KindProtocol, err)
			}
			progress = rangeProgress{lastEnd: -1, total: 0}
			continue
		}

		if err := checkWindow(cr, start, progress, len(chunk.Bytes)); err != nil {
			fetcher.Release(chunk)
			return nil, d.fail(sink, tracker, bucket, key, errors.KindProtocol, err)
		}

		if _, err := sink.Write(chunk.Bytes); err != nil {
			fetcher.Release(chunk)
			return nil, d.fail(sink, tracker, bucket, key, errors.KindSink, err)
		}
		written += int64(len(chunk.Bytes))
		fetcher.Release(chunk)

		progress = rangeProgress{lastEnd: cr.End, total: cr.Length}
		if tracker != nil {
			tracker.Update(written, progress.total)
		}
	}

	if err := sink.Finalize(); err != nil {
		// Finalize was this call's one terminal sink call; discarding on top
		// of it would violate the sink contract.
		if tracker != nil {
			tracker.Error(err)
		}
		return nil, errors.NewObjectError("download", bucket, key, err).WithKind(errors.KindSink)
	}

	if tracker != nil {
		tracker.Update(written, written)
		tracker.Complete()
	}

	return &s3types.DownloadResult{
		Key:      key,
		Size:     written,
		Chunks:   chunks,
		Duration: time.Since(startTime),
	}, nil
}

// checkWindow verifies that a descriptor continues the download exactly where
// it left off: no gaps, no overlaps, no mid-stream change of total length, and
// a body matching the span the descriptor claims.
func checkWindow(cr ContentRange, requestedStart int64, progress rangeProgress, bodyLen int) error {
	switch {
	case cr.Start != requestedStart:
		return errors.NewError("parseContentRange", errors.ErrInvalidContentRange).
			WithMessage("descriptor start does not match requested window")
	case progress.total != -1 && cr.Length != progress.total:
		return errors.NewError("parseContentRange", errors.ErrInvalidContentRange).
			WithMessage("object length changed mid-download")
	case int64(bodyLen) != cr.End-cr.Start+1:
		return errors.NewError("parseContentRange", errors.ErrInvalidContentRange).
			WithMessage("body length does not match descriptor span")
	}
	return nil
}

// fail discards the sink's partial artifact and wraps err with the object
// identity and failure kind. Discard failures are logged, not propagated: the
// fetch/parse/write error is the one the caller needs.
func (d *Downloader) fail(
	sink s3types.Sink,
	tracker s3types.ProgressTracker,
	bucket, key string,
	kind errors.Kind,
	err error,
) error {
	if discardErr := sink.Discard(); discardErr != nil {
		d.log.Error().
			Err(discardErr).
			Str("bucket", bucket).
			Str("key", key).
			Msg("failed to discard partial download")
	}
	wrapped := errors.NewObjectError("download", bucket, key, err).WithKind(kind)
	if tracker != nil {
		tracker.Error(wrapped)
	}
	return wrapped
}

// Get downloads an entire object in one request and returns its body and
// metadata. This is the single-shot path used by the in-memory convenience
// operations; large objects belong on the chunked path instead.
func (d *Downloader) Get(
	ctx context.Context,
	bucket, key string,
) (*s3types.GetResult, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	output, err := d.s3Client.GetObject(ctx, input)
	if err != nil {
		return nil, errors.NewObjectError("get", bucket, key, s3api.TranslateError(err)).
			WithKind(errors.KindTransport)
	}

	result := &s3types.GetResult{
		ContentType:   aws.ToString(output.ContentType),
		ContentLength: -1,
		ETag:          aws.ToString(output.ETag),
	}
	if output.ContentLength != nil {
		result.ContentLength = *output.ContentLength
	}
	if len(output.Metadata) > 0 {
		result.Metadata = make(map[string]string, len(output.Metadata))
		for k, v := range output.Metadata {
			result.Metadata[k] = v
		}
	}

	if output.Body != nil {
		defer output.Body.Close()
		body, err := io.ReadAll(output.Body)
		if err != nil {
			return nil, errors.NewObjectError("get", bucket, key, err).WithKind(errors.KindTransport)
		}
		result.Body = body
	}

	return result, nil
}
