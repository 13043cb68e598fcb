package s3api

import (
	stderrors "errors"
	"fmt"

	"github.com/aws/smithy-go"

	"github.com/lickdlabs/go-aws-s3/errors"
)

// TranslateError maps recognized service error codes onto the module's
// sentinel errors, keeping the original error in the chain. Unrecognized
// errors pass through unchanged.
func TranslateError(err error) error {
	var apiErr smithy.APIError
	if !stderrors.As(err, &apiErr) {
		return err
	}
	switch apiErr.ErrorCode() {
	case "NoSuchKey", "NotFound":
		return fmt.Errorf("%w: %s", errors.ErrObjectNotFound, apiErr.ErrorMessage())
	case "NoSuchBucket":
		return fmt.Errorf("%w: %s", errors.ErrBucketNotFound, apiErr.ErrorMessage())
	case "AccessDenied":
		return fmt.Errorf("%w: %s", errors.ErrAccessDenied, apiErr.ErrorMessage())
	case "InvalidRange":
		return fmt.Errorf("%w: %s", errors.ErrInvalidRange, apiErr.ErrorMessage())
	}
	return err
}

// IsInvalidRange reports whether err is the service's range-not-satisfiable
// rejection.
func IsInvalidRange(err error) bool {
	var apiErr smithy.APIError
	return stderrors.As(err, &apiErr) && apiErr.ErrorCode() == "InvalidRange"
}

// IsNotFound reports whether err is the service's missing-object rejection.
func IsNotFound(err error) bool {
	var apiErr smithy.APIError
	if !stderrors.As(err, &apiErr) {
		return false
	}
	code := apiErr.ErrorCode()
	return code == "NoSuchKey" || code == "NotFound"
}
