package s3

import (
	"context"
	"errors"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	s3errors "github.com/lickdlabs/go-aws-s3/errors"
	"github.com/lickdlabs/go-aws-s3/internal/operations/download"
	"github.com/lickdlabs/go-aws-s3/internal/operations/metadata"
	"github.com/lickdlabs/go-aws-s3/internal/operations/upload"
	"github.com/lickdlabs/go-aws-s3/internal/s3api"
	"github.com/lickdlabs/go-aws-s3/s3types"
)

const (
	// DefaultContentType is the content type used when detection fails.
	DefaultContentType = "application/octet-stream"
)

// Head retrieves an object's metadata without downloading its content.
//
// Returns:
//   - *ObjectMetadata: content type, length, last modified, ETag, storage
//     class, and user metadata
//   - error: ErrObjectNotFound when the object doesn't exist, otherwise the
//     wrapped service error
//
// Example:
//
//	meta, err := client.Head(ctx, "my-bucket", "docs/report.pdf")
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%s (%d bytes)\n", meta.ContentType, meta.ContentLength)
func (c *Client) Head(ctx context.Context, bucket, key string) (*s3types.ObjectMetadata, error) {
	log := c.objectLog(bucket, key)
	log.Info().Msg("fetching object metadata")

	input := &awss3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	output, err := c.s3Client.HeadObject(ctx, input)
	if err != nil {
		wrapped := s3errors.NewObjectError("head", bucket, key, s3api.TranslateError(err)).
			WithKind(s3errors.KindTransport)
		log.Error().Err(wrapped).Msg("failed to fetch object metadata")
		return nil, wrapped
	}

	meta := &s3types.ObjectMetadata{
		ContentType:   aws.ToString(output.ContentType),
		ContentLength: aws.ToInt64(output.ContentLength),
		LastModified:  aws.ToTime(output.LastModified),
		ETag:          aws.ToString(output.ETag),
		StorageClass:  string(output.StorageClass),
	}
	if len(output.Metadata) > 0 {
		meta.Metadata = make(map[string]string, len(output.Metadata))
		for k, v := range output.Metadata {
			meta.Metadata[k] = v
		}
	}

	log.Info().Int64("size", meta.ContentLength).Msg("fetched object metadata")
	return meta, nil
}

// Exists checks whether an object exists without downloading it.
// A missing object is not an error; any other failure is.
func (c *Client) Exists(ctx context.Context, bucket, key string) (bool, error) {
	log := c.objectLog(bucket, key)
	log.Info().Msg("checking object existence")

	input := &awss3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	_, err := c.s3Client.HeadObject(ctx, input)
	if err != nil {
		if s3api.IsNotFound(err) {
			log.Info().Bool("exists", false).Msg("checked object existence")
			return false, nil
		}
		wrapped := s3errors.NewObjectError("exists", bucket, key, s3api.TranslateError(err)).
			WithKind(s3errors.KindTransport)
		log.Error().Err(wrapped).Msg("failed to check object existence")
		return false, wrapped
	}

	log.Info().Bool("exists", true).Msg("checked object existence")
	return true, nil
}

// Get downloads an entire object in a single request and returns its body
// along with response metadata. For large objects prefer DownloadToSink or
// DownloadFile, which fetch in chunks.
//
// Returns:
//   - *GetResult: body bytes, content type, declared content length, ETag,
//     and user metadata
//   - error: ErrObjectNotFound when the object doesn't exist, otherwise the
//     wrapped service error
func (c *Client) Get(ctx context.Context, bucket, key string) (*s3types.GetResult, error) {
	log := c.objectLog(bucket, key)
	log.Info().Msg("fetching object")

	downloader := download.New(c.s3Client, c.log)
	result, err := downloader.Get(ctx, bucket, key)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch object")
		return nil, err
	}

	log.Info().Int("size", len(result.Body)).Msg("fetched object")
	return result, nil
}

// GetString downloads an object and returns its body as a string.
// It fails with ErrEmptyBody when the object has no body or a zero or
// undeclared content length.
func (c *Client) GetString(ctx context.Context, bucket, key string) (string, error) {
	data, err := c.getNonEmpty(ctx, bucket, key, "getString")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// GetBytes downloads an object and returns its body as a byte slice.
// It fails with ErrEmptyBody when the object has no body or a zero or
// undeclared content length.
func (c *Client) GetBytes(ctx context.Context, bucket, key string) ([]byte, error) {
	return c.getNonEmpty(ctx, bucket, key, "getBytes")
}

// getNonEmpty backs the string/bytes getters; both require a non-empty body
// with a declared length.
func (c *Client) getNonEmpty(ctx context.Context, bucket, key, op string) ([]byte, error) {
	result, err := c.Get(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	if len(result.Body) == 0 || result.ContentLength <= 0 {
		wrapped := s3errors.NewObjectError(op, bucket, key, s3errors.ErrEmptyBody)
		log := c.objectLog(bucket, key)
		log.Error().Err(wrapped).Msg("object has no body")
		return nil, wrapped
	}
	return result.Body, nil
}

// Put uploads byte data to S3 in a single request.
//
// The content type is taken from UploadWithContentType when given, otherwise
// detected from the data itself.
//
// Example:
//
//	result, err := client.Put(ctx, "my-bucket", "config.json", data,
//	    s3.UploadWithContentType("application/json"),
//	    s3.UploadWithMetadata(map[string]string{"env": "prod"}),
//	)
func (c *Client) Put(
	ctx context.Context,
	bucket, key string,
	data []byte,
	opts ...s3types.UploadOption,
) (*s3types.UploadResult, error) {
	config := &s3types.UploadOptionConfig{}
	for _, opt := range opts {
		opt(config)
	}
	if config.ContentType == "" {
		config.ContentType = detectContentTypeFromBytes(data, key)
	}

	log := c.objectLog(bucket, key)
	log.Info().Int("size", len(data)).Msg("uploading object")

	startTime := time.Now()
	uploader := upload.New(c.s3Client)
	result, err := uploader.Put(ctx, bucket, key, data, config, startTime)
	if err != nil {
		log.Error().Err(err).Msg("failed to upload object")
		return nil, err
	}

	log.Info().Int64("size", result.Size).Str("etag", result.ETag).Msg("uploaded object")
	return result, nil
}

// Upload reads all data from reader and uploads it to S3 in a single
// request. The reader is consumed entirely before the request is issued.
func (c *Client) Upload(
	ctx context.Context,
	bucket, key string,
	reader io.Reader,
	opts ...s3types.UploadOption,
) (*s3types.UploadResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		wrapped := s3errors.NewObjectError("upload", bucket, key, err)
		log := c.objectLog(bucket, key)
		log.Error().Err(wrapped).Msg("failed to read upload source")
		return nil, wrapped
	}
	return c.Put(ctx, bucket, key, data, opts...)
}

// UploadFile uploads a local file to S3. The content type is detected from
// the file's contents, falling back to its extension.
func (c *Client) UploadFile(
	ctx context.Context,
	bucket, key, path string,
	opts ...s3types.UploadOption,
) (*s3types.UploadResult, error) {
	log := c.objectLog(bucket, key)

	file, err := c.fs.Open(path)
	if err != nil {
		wrapped := s3errors.NewObjectError("uploadFile", bucket, key, err).WithPath(path)
		log.Error().Err(wrapped).Str("path", path).Msg("failed to open source file")
		return nil, wrapped
	}
	defer file.Close()

	if !hasContentType(opts) {
		opts = append(opts, UploadWithContentType(c.detectContentType(path)))
	}
	return c.Upload(ctx, bucket, key, file, opts...)
}

// UpdateMetadata replaces an object's user metadata via a server-side copy
// onto itself. Metadata not present in meta is dropped. The object's content
// is untouched.
//
// Example:
//
//	err := client.UpdateMetadata(ctx, "my-bucket", "docs/report.pdf",
//	    map[string]string{"reviewed": "true"},
//	)
func (c *Client) UpdateMetadata(
	ctx context.Context,
	bucket, key string,
	meta map[string]string,
	opts ...s3types.MetadataOption,
) error {
	config := &s3types.MetadataOptionConfig{}
	for _, opt := range opts {
		opt(config)
	}

	log := c.objectLog(bucket, key)
	log.Info().Msg("updating object metadata")

	updater := metadata.New(c.s3Client)
	if err := updater.Update(ctx, bucket, key, meta, config); err != nil {
		log.Error().Err(err).Msg("failed to update object metadata")
		return err
	}

	log.Info().Msg("updated object metadata")
	return nil
}

// Delete removes an object. Deleting a missing object is not an error;
// the service treats the operation as idempotent.
func (c *Client) Delete(ctx context.Context, bucket, key string) error {
	log := c.objectLog(bucket, key)
	log.Info().Msg("deleting object")

	input := &awss3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	if _, err := c.s3Client.DeleteObject(ctx, input); err != nil {
		wrapped := s3errors.NewObjectError("delete", bucket, key, s3api.TranslateError(err)).
			WithKind(s3errors.KindTransport)
		log.Error().Err(wrapped).Msg("failed to delete object")
		return wrapped
	}

	log.Info().Msg("deleted object")
	return nil
}

// DownloadToSink downloads an object to a sink in sequential byte-range
// chunks. The object's total size need not be known in advance; each
// response's content-range descriptor drives loop termination.
//
// Exactly one of the sink's Finalize or Discard is called: Finalize after
// all bytes are written, Discard on any failure so no partial artifact
// survives as if it were complete.
//
// Example:
//
//	sink, err := s3.NewFileSink(osfs, "/tmp/report.pdf")
//	if err != nil {
//	    return err
//	}
//	result, err := client.DownloadToSink(ctx, "my-bucket", "docs/report.pdf", sink)
func (c *Client) DownloadToSink(
	ctx context.Context,
	bucket, key string,
	sink s3types.Sink,
	opts ...s3types.DownloadOption,
) (*s3types.DownloadResult, error) {
	config := &s3types.DownloadOptionConfig{
		ChunkSize: c.cfg.ChunkSize,
	}
	for _, opt := range opts {
		opt(config)
	}

	log := c.objectLog(bucket, key)
	log.Info().Msg("downloading object")

	startTime := time.Now()
	downloader := download.New(c.s3Client, c.log)
	result, err := downloader.DownloadToSink(ctx, bucket, key, sink, config, startTime)
	if err != nil {
		log.Error().Err(err).Msg("failed to download object")
		return nil, err
	}

	log.Info().
		Int64("size", result.Size).
		Int("chunks", result.Chunks).
		Msg("downloaded object")
	return result, nil
}

// DownloadFile downloads an object to a local file in sequential byte-range
// chunks. On failure the partial file is removed.
//
// Example:
//
//	result, err := client.DownloadFile(ctx, "my-bucket", "docs/report.pdf", "/tmp/report.pdf")
func (c *Client) DownloadFile(
	ctx context.Context,
	bucket, key, path string,
	opts ...s3types.DownloadOption,
) (*s3types.DownloadResult, error) {
	sink, err := NewFileSink(c.fs, path)
	if err != nil {
		wrapped := s3errors.NewObjectError("downloadFile", bucket, key, err).
			WithPath(path).
			WithKind(s3errors.KindSink)
		log := c.objectLog(bucket, key)
		log.Error().Err(wrapped).Str("path", path).Msg("failed to create destination file")
		return nil, wrapped
	}

	result, err := c.DownloadToSink(ctx, bucket, key, sink, opts...)
	if err != nil {
		// Failures out of the range loop carry bucket/key; the file variant
		// also owns a local target, so name it in the error and the log.
		var e *s3errors.Error
		if errors.As(err, &e) {
			err = e.WithPath(path)
		} else {
			err = s3errors.NewObjectError("downloadFile", bucket, key, err).WithPath(path)
		}
		log := c.objectLog(bucket, key)
		log.Error().Err(err).Str("path", path).Msg("failed to download object to file")
		return nil, err
	}
	return result, nil
}

// objectLog returns a logger scoped to a bucket/key pair.
func (c *Client) objectLog(bucket, key string) zerolog.Logger {
	return c.log.With().Str("bucket", bucket).Str("key", key).Logger()
}

// hasContentType reports whether any option sets an explicit content type.
func hasContentType(opts []s3types.UploadOption) bool {
	config := &s3types.UploadOptionConfig{}
	for _, opt := range opts {
		opt(config)
	}
	return config.ContentType != ""
}

// detectContentType determines the content type using mimetype where
// possible, falling back to extension-based lookup when the path is not a
// readable local file.
func (c *Client) detectContentType(path string) string {
	info, err := c.fs.Stat(path)
	if err != nil || info.IsDir() {
		return detectContentTypeFromExtension(path)
	}

	file, err := c.fs.Open(path)
	if err != nil {
		return detectContentTypeFromExtension(path)
	}
	defer file.Close()

	// First 512 bytes are enough for content sniffing.
	buf := make([]byte, 512)
	n, _ := file.Read(buf)
	if n > 0 {
		if mt := mimetype.Detect(buf[:n]); mt != nil {
			return mt.String()
		}
	}
	return detectContentTypeFromExtension(path)
}

// detectContentTypeFromBytes sniffs the content type from data, preferring
// the extension when the sniffer only reaches its generic fallback.
func detectContentTypeFromBytes(data []byte, key string) string {
	if len(data) > 0 {
		if mt := mimetype.Detect(data); mt != nil && mt.String() != DefaultContentType {
			return mt.String()
		}
	}
	return detectContentTypeFromExtension(key)
}

// detectContentTypeFromExtension detects content type from the file
// extension, for S3 keys or unreadable files.
func detectContentTypeFromExtension(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}
	return DefaultContentType
}
