// Package s3types provides shared type definitions for the S3 wrapper module.
package s3types

import (
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/rs/zerolog"
)

// StorageClass represents the S3 storage class for objects.
type StorageClass string

// Predefined S3 storage classes
const (
	// StorageClassStandard is the default S3 storage class
	StorageClassStandard StorageClass = "STANDARD"

	// StorageClassReducedRedundancy provides reduced redundancy storage
	StorageClassReducedRedundancy StorageClass = "REDUCED_REDUNDANCY"

	// StorageClassStandardIA provides infrequent access storage
	StorageClassStandardIA StorageClass = "STANDARD_IA"

	// StorageClassOneZoneIA provides one zone infrequent access storage
	StorageClassOneZoneIA StorageClass = "ONEZONE_IA"

	// StorageClassIntelligentTiering provides intelligent tiering storage
	StorageClassIntelligentTiering StorageClass = "INTELLIGENT_TIERING"

	// StorageClassGlacier provides Glacier archival storage
	StorageClassGlacier StorageClass = "GLACIER"

	// StorageClassDeepArchive provides Deep Archive storage
	StorageClassDeepArchive StorageClass = "DEEP_ARCHIVE"
)

// ObjectMetadata contains detailed metadata about an S3 object.
type ObjectMetadata struct {
	// ContentType is the MIME type of the object
	ContentType string

	// ContentLength is the size of the object in bytes
	ContentLength int64

	// LastModified is when the object was last modified
	LastModified time.Time

	// ETag is the S3 entity tag for the object
	ETag string

	// StorageClass is the S3 storage class
	StorageClass string

	// Metadata contains user-defined metadata
	Metadata map[string]string
}

// GetResult contains the full response of a single-shot get operation.
type GetResult struct {
	// Body is the object's content. Nil when the service returned no body.
	Body []byte

	// ContentType is the MIME type of the object
	ContentType string

	// ContentLength is the length the service declared for the body.
	// -1 when the service did not declare one.
	ContentLength int64

	// ETag is the S3 entity tag for the object
	ETag string

	// Metadata contains user-defined metadata
	Metadata map[string]string
}

// UploadResult contains the result of an upload operation.
type UploadResult struct {
	// Key is the S3 object key that was uploaded
	Key string

	// Size is the size of the uploaded object in bytes
	Size int64

	// ETag is the S3 entity tag for the uploaded object
	ETag string

	// Duration is how long the upload took
	Duration time.Duration
}

// DownloadResult contains the result of a chunked download operation.
type DownloadResult struct {
	// Key is the S3 object key that was downloaded
	Key string

	// Size is the total bytes written to the sink
	Size int64

	// Chunks is the number of range fetches issued
	Chunks int

	// Duration is how long the download took
	Duration time.Duration
}

// Sink receives the bytes of a download in increasing offset order.
// Exactly one of Finalize or Discard is called, exactly once, on every
// download exit path. Implementations may be file-backed, memory-backed,
// or network-backed.
type Sink interface {
	io.Writer

	// Finalize flushes and closes the sink after a successful download.
	Finalize() error

	// Discard releases the sink and removes any partial artifact after a
	// failed download. Cleanup failures should be reported but callers
	// treat them as non-fatal.
	Discard() error
}

// ProgressTracker defines the interface for tracking transfer progress.
// Implementations can provide real-time progress updates during uploads
// and downloads.
type ProgressTracker interface {
	// Update is called periodically with transfer progress. totalBytes is
	// -1 until the total length is known.
	Update(bytesTransferred, totalBytes int64)

	// Complete is called when the transfer completes successfully
	Complete()

	// Error is called when the transfer fails
	Error(err error)
}

// Configuration types for functional options

// ClientConfig holds configuration for the S3 client.
type ClientConfig struct {
	Region          string
	Endpoint        string
	MaxRetries      int
	Timeout         time.Duration
	ChunkSize       int64
	ForcePathStyle  bool
	CustomAWSConfig *aws.Config
	Filesystem      fs.Filesystem // Filesystem abstraction for file operations
	Logger          *zerolog.Logger
}

// UploadOptionConfig holds configuration for upload operations via functional options.
type UploadOptionConfig struct {
	ContentType     string
	Metadata        map[string]string
	StorageClass    StorageClass
	ProgressTracker ProgressTracker
}

// DownloadOptionConfig holds configuration for download operations via functional options.
type DownloadOptionConfig struct {
	ProgressTracker ProgressTracker
	ChunkSize       int64
}

// MetadataOptionConfig holds configuration for metadata update operations via
// functional options.
type MetadataOptionConfig struct {
	StorageClass StorageClass
	ContentType  string
}

// Option is a functional option for configuring the S3 client.
type (
	Option func(*ClientConfig)
	// UploadOption is a functional option for configuring S3 upload operations.
	UploadOption func(*UploadOptionConfig)
	// DownloadOption is a functional option for configuring S3 download operations.
	DownloadOption func(*DownloadOptionConfig)
	// MetadataOption is a functional option for configuring metadata updates.
	MetadataOption func(*MetadataOptionConfig)
)
