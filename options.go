package s3

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/rs/zerolog"

	"github.com/lickdlabs/go-aws-s3/s3types"
)

// WithRegion sets the AWS region for the client.
func WithRegion(region string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Region = region
	}
}

// WithEndpoint sets a custom endpoint URL, typically for S3-compatible
// services such as MinIO or LocalStack.
func WithEndpoint(endpoint string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithForcePathStyle forces path-style addressing (bucket in the path
// rather than the host). Most S3-compatible services require this.
func WithForcePathStyle(force bool) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.ForcePathStyle = force
	}
}

// WithMaxRetries sets the maximum number of retry attempts for failed
// requests.
func WithMaxRetries(retries int) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.MaxRetries = retries
	}
}

// WithTimeout sets the HTTP timeout for requests.
func WithTimeout(timeout time.Duration) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithChunkSize sets the default range size in bytes used by chunked
// downloads. Operations may override it with DownloadWithChunkSize.
func WithChunkSize(size int64) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.ChunkSize = size
	}
}

// WithAWSConfig supplies a pre-built AWS configuration, bypassing the
// default credential chain.
func WithAWSConfig(cfg aws.Config) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.CustomAWSConfig = &cfg
	}
}

// WithFilesystem sets the filesystem abstraction used by file-based
// operations. Defaults to the OS filesystem.
func WithFilesystem(filesystem fs.Filesystem) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Filesystem = filesystem
	}
}

// WithLogger sets the structured logger used by client operations.
// When unset the client logs nothing.
func WithLogger(logger zerolog.Logger) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Logger = &logger
	}
}

// Upload options.

// UploadWithContentType sets the Content-Type for the uploaded object.
// When unset the content type is detected from the object's bytes.
func UploadWithContentType(contentType string) s3types.UploadOption {
	return func(c *s3types.UploadOptionConfig) {
		c.ContentType = contentType
	}
}

// UploadWithMetadata attaches user-defined metadata to the uploaded object.
func UploadWithMetadata(metadata map[string]string) s3types.UploadOption {
	return func(c *s3types.UploadOptionConfig) {
		c.Metadata = metadata
	}
}

// UploadWithStorageClass sets the storage class for the uploaded object.
func UploadWithStorageClass(storageClass s3types.StorageClass) s3types.UploadOption {
	return func(c *s3types.UploadOptionConfig) {
		c.StorageClass = storageClass
	}
}

// UploadWithProgress attaches a progress tracker to the upload.
func UploadWithProgress(tracker s3types.ProgressTracker) s3types.UploadOption {
	return func(c *s3types.UploadOptionConfig) {
		c.ProgressTracker = tracker
	}
}

// Download options.

// DownloadWithProgress attaches a progress tracker to the download.
func DownloadWithProgress(tracker s3types.ProgressTracker) s3types.DownloadOption {
	return func(c *s3types.DownloadOptionConfig) {
		c.ProgressTracker = tracker
	}
}

// DownloadWithChunkSize overrides the range size in bytes for a single
// chunked download.
func DownloadWithChunkSize(size int64) s3types.DownloadOption {
	return func(c *s3types.DownloadOptionConfig) {
		c.ChunkSize = size
	}
}

// Metadata options.

// MetadataWithStorageClass changes the object's storage class during a
// metadata update.
func MetadataWithStorageClass(storageClass s3types.StorageClass) s3types.MetadataOption {
	return func(c *s3types.MetadataOptionConfig) {
		c.StorageClass = storageClass
	}
}

// MetadataWithContentType changes the object's Content-Type during a
// metadata update.
func MetadataWithContentType(contentType string) s3types.MetadataOption {
	return func(c *s3types.MetadataOptionConfig) {
		c.ContentType = contentType
	}
}
