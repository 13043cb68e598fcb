package s3

import (
	"bytes"
	"fmt"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/lickdlabs/go-aws-s3/s3types"
)

// FileSink writes downloaded chunks to a file on a filesystem. On
// Finalize the file is closed and kept; on Discard it is closed and the
// partial file is removed.
type FileSink struct {
	fs   fs.Filesystem
	path string
	file fs.File
}

// NewFileSink creates the destination file and returns a sink writing
// to it. An existing file at path is truncated.
func NewFileSink(filesystem fs.Filesystem, path string) (*FileSink, error) {
	file, err := filesystem.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	return &FileSink{
		fs:   filesystem,
		path: path,
		file: file,
	}, nil
}

// Write appends p to the destination file.
func (s *FileSink) Write(p []byte) (int, error) {
	return s.file.Write(p)
}

// Finalize closes the destination file, keeping its contents.
func (s *FileSink) Finalize() error {
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("failed to close destination file: %w", err)
	}
	return nil
}

// Discard closes the destination file and removes it. Removal is
// best-effort; a failure to remove is not reported beyond the error.
func (s *FileSink) Discard() error {
	closeErr := s.file.Close()
	removeErr := s.fs.Remove(s.path)
	if closeErr != nil {
		return fmt.Errorf("failed to close partial file: %w", closeErr)
	}
	if removeErr != nil {
		return fmt.Errorf("failed to remove partial file: %w", removeErr)
	}
	return nil
}

// Path returns the destination path the sink writes to.
func (s *FileSink) Path() string {
	return s.path
}

// BufferSink accumulates downloaded chunks in memory.
type BufferSink struct {
	buf       bytes.Buffer
	finalized bool
	discarded bool
}

// NewBufferSink returns an empty in-memory sink.
func NewBufferSink() *BufferSink {
	return &BufferSink{}
}

// Write appends p to the in-memory buffer.
func (s *BufferSink) Write(p []byte) (int, error) {
	return s.buf.Write(p)
}

// Finalize marks the buffered contents as complete.
func (s *BufferSink) Finalize() error {
	s.finalized = true
	return nil
}

// Discard drops any buffered partial contents.
func (s *BufferSink) Discard() error {
	s.discarded = true
	s.buf.Reset()
	return nil
}

// Bytes returns the buffered contents.
func (s *BufferSink) Bytes() []byte {
	return s.buf.Bytes()
}

var (
	_ s3types.Sink = (*FileSink)(nil)
	_ s3types.Sink = (*BufferSink)(nil)
)
