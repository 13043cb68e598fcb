package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// RangeObjectStore backs a MockS3Client with a single in-memory object and
// answers ranged GetObject calls the way S3 does: the requested upper bound
// is clamped to the object's end and the Content-Range header reports the
// bytes actually returned plus the total length. Any range request against
// an empty object fails with an InvalidRange API error, matching S3.
type RangeObjectStore struct {
	mu      sync.Mutex
	data    []byte
	fetches []string
}

// NewRangeObjectStore creates a store holding data as its only object.
func NewRangeObjectStore(data []byte) *RangeObjectStore {
	return &RangeObjectStore{data: data}
}

// Client returns a MockS3Client whose GetObject serves ranges of the
// stored object.
func (s *RangeObjectStore) Client() *MockS3Client {
	return &MockS3Client{
		GetObjectFunc: s.getObject,
	}
}

// Fetches returns the Range headers seen so far, in request order.
func (s *RangeObjectStore) Fetches() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.fetches...)
}

func (s *RangeObjectStore) getObject(
	_ context.Context,
	params *s3.GetObjectInput,
	_ ...func(*s3.Options),
) (*s3.GetObjectOutput, error) {
	rangeHeader := aws.ToString(params.Range)

	s.mu.Lock()
	s.fetches = append(s.fetches, rangeHeader)
	s.mu.Unlock()

	start, end, err := parseRangeHeader(rangeHeader)
	if err != nil {
		return nil, err
	}

	length := int64(len(s.data))
	if length == 0 || start >= length {
		return nil, &smithy.GenericAPIError{
			Code:    "InvalidRange",
			Message: "The requested range is not satisfiable",
		}
	}
	if end >= length {
		end = length - 1
	}

	body := s.data[start : end+1]
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: aws.Int64(int64(len(body))),
		ContentRange:  aws.String(fmt.Sprintf("bytes %d-%d/%d", start, end, length)),
	}, nil
}

// parseRangeHeader parses a "bytes=<start>-<end>" request header.
func parseRangeHeader(header string) (start, end int64, err error) {
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return 0, 0, fmt.Errorf("unexpected range header %q", header)
	}
	first, last, ok := strings.Cut(spec, "-")
	if !ok {
		return 0, 0, fmt.Errorf("unexpected range header %q", header)
	}
	start, err = strconv.ParseInt(first, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("unexpected range header %q", header)
	}
	end, err = strconv.ParseInt(last, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("unexpected range header %q", header)
	}
	return start, end, nil
}
