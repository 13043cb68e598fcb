// Package errors provides error types and handling for S3 wrapper operations.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies the stage of an operation that failed. It is stable across
// wrapping, so callers can branch on it without inspecting messages.
type Kind string

// Failure kinds for wrapper operations.
const (
	// KindTransport marks failures of the remote call itself
	// (network, auth, missing object or bucket).
	KindTransport Kind = "transport"

	// KindProtocol marks responses that came back successfully but violated
	// the expected shape, such as a missing or unparsable content-range.
	KindProtocol Kind = "protocol"

	// KindSink marks failures writing to or finalizing a local sink.
	KindSink Kind = "sink"
)

// Error represents an S3 operation error with context about the operation that
// failed. It wraps the underlying cause with bucket/key identity and, where it
// applies, the failure kind and local target path.
type Error struct {
	// Op is the operation that failed (e.g., "get", "downloadFile")
	Op string

	// Bucket is the S3 bucket name (if applicable)
	Bucket string

	// Key is the S3 object key (if applicable)
	Key string

	// Path is the local sink path for download operations (if applicable)
	Path string

	// Kind classifies the failure stage; empty when not classified
	Kind Kind

	// Err is the underlying error from the AWS SDK or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	switch {
	case e.Bucket != "" && e.Key != "" && e.Path != "":
		return fmt.Sprintf("s3.%s %s/%s -> %s: %v", e.Op, e.Bucket, e.Key, e.Path, e.Err)
	case e.Bucket != "" && e.Key != "":
		return fmt.Sprintf("s3.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	case e.Bucket != "":
		return fmt.Sprintf("s3.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	case e.Key != "":
		return fmt.Sprintf("s3.%s object %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("s3.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithPath adds the local sink path to an existing error.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithKind classifies an existing error. If the wrapped cause is already a
// classified *Error, its kind wins and the argument is ignored.
func (e *Error) WithKind(kind Kind) *Error {
	if e.Kind != "" {
		return e
	}
	var inner *Error
	if errors.As(e.Err, &inner) && inner.Kind != "" {
		e.Kind = inner.Kind
		return e
	}
	e.Kind = kind
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewObjectError creates a new Error with bucket and key context.
func NewObjectError(op, bucket, key string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}
}

// KindOf reports the failure kind of err, walking the wrap chain until it
// finds a classified *Error. Returns the empty Kind when none is found.
func KindOf(err error) Kind {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return ""
		}
		if e.Kind != "" {
			return e.Kind
		}
		err = e.Err
	}
	return ""
}

// Sentinel errors for common S3 operation failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrObjectNotFound indicates that the requested object does not exist
	ErrObjectNotFound = errors.New("s3: object not found")

	// ErrBucketNotFound indicates that the requested bucket does not exist
	ErrBucketNotFound = errors.New("s3: bucket not found")

	// ErrAccessDenied indicates that access to the resource is denied
	ErrAccessDenied = errors.New("s3: access denied")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("s3: invalid input")

	// ErrEmptyBody indicates that a response carried no body or a
	// zero/undefined content length where one was required
	ErrEmptyBody = errors.New("s3: empty response body")

	// ErrInvalidContentRange indicates a missing or malformed content-range
	// descriptor on a ranged fetch response
	ErrInvalidContentRange = errors.New("s3: invalid content-range")

	// ErrInvalidRange indicates that the requested range is invalid
	ErrInvalidRange = errors.New("s3: invalid range")
)

// IsObjectNotFound checks if an error indicates that an object was not found.
func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// IsAccessDenied checks if an error indicates access was denied.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsInvalidInput checks if an error indicates invalid input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
