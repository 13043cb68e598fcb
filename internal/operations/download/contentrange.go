package download

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lickdlabs/go-aws-s3/errors"
)

// ContentRange is the parsed form of a content-range descriptor.
// The descriptor is authoritative for the bytes actually delivered and for
// the total object length.
type ContentRange struct {
	// Start is the first byte offset covered, inclusive. -1 when unsatisfied.
	Start int64

	// End is the last byte offset covered, inclusive. -1 when unsatisfied.
	End int64

	// Length is the total object length in bytes.
	Length int64

	// Unsatisfied reports the "*/<length>" form: the requested range covers
	// no bytes. S3 answers a ranged read of a zero-byte object this way.
	Unsatisfied bool
}

// ParseContentRange parses a content-range descriptor of the form
// "<start>-<end>/<length>", with an optional "bytes " unit prefix, or the
// unsatisfied form "*/<length>". A missing or malformed descriptor is a hard
// failure: the caller must not guess at what the server delivered.
func ParseContentRange(header string) (ContentRange, error) {
	if header == "" {
		return ContentRange{}, errors.ErrInvalidContentRange
	}

	spec := strings.TrimPrefix(header, "bytes ")
	span, lengthPart, ok := strings.Cut(spec, "/")
	if !ok {
		return ContentRange{}, fmt.Errorf("%w: %q", errors.ErrInvalidContentRange, header)
	}

	length, err := strconv.ParseInt(lengthPart, 10, 64)
	if err != nil || length < 0 {
		return ContentRange{}, fmt.Errorf("%w: bad length in %q", errors.ErrInvalidContentRange, header)
	}

	if span == "*" {
		return ContentRange{Start: -1, End: -1, Length: length, Unsatisfied: true}, nil
	}

	startPart, endPart, ok := strings.Cut(span, "-")
	if !ok {
		return ContentRange{}, fmt.Errorf("%w: %q", errors.ErrInvalidContentRange, header)
	}

	start, err := strconv.ParseInt(startPart, 10, 64)
	if err != nil || start < 0 {
		return ContentRange{}, fmt.Errorf("%w: bad start in %q", errors.ErrInvalidContentRange, header)
	}

	end, err := strconv.ParseInt(endPart, 10, 64)
	if err != nil || end < start {
		return ContentRange{}, fmt.Errorf("%w: bad end in %q", errors.ErrInvalidContentRange, header)
	}

	if end >= length {
		return ContentRange{}, fmt.Errorf("%w: end beyond length in %q", errors.ErrInvalidContentRange, header)
	}

	return ContentRange{Start: start, End: end, Length: length}, nil
}
