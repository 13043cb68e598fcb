// Package s3 provides a high-level Go module for AWS S3 operations.
// It wraps AWS SDK v2 to provide an intuitive interface for common object
// operations while normalizing errors and logging.
//
// Key features:
//   - Simple, zero-configuration usage with AWS credential chain
//   - Progressive enhancement through functional options
//   - Chunked range downloads to pluggable sinks, with no partial artifact
//     left behind on failure
//   - Content-type detection for uploads
//   - Structured logging via zerolog (silent by default)
//   - Normalized error handling with sentinel errors and failure kinds
//
// Example usage:
//
//	client, err := s3.New(s3.WithRegion("eu-west-1"))
//	if err != nil {
//	    return err
//	}
//
//	// Upload a file
//	result, err := client.UploadFile(ctx, "my-bucket", "path/file.txt", "/local/file.txt")
//	if err != nil {
//	    return err
//	}
//
//	// Download a large object in chunks
//	_, err = client.DownloadFile(ctx, "my-bucket", "path/file.txt", "/local/copy.txt")
package s3
