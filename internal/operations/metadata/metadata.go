// Package metadata handles S3 object metadata operations.
//
// Metadata updates use S3's server-side copy onto the same bucket/key with the
// REPLACE metadata directive, so the object body never transits the client.
package metadata

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/lickdlabs/go-aws-s3/errors"
	"github.com/lickdlabs/go-aws-s3/internal/s3api"
	"github.com/lickdlabs/go-aws-s3/s3types"
)

// Updater handles object metadata replacement.
type Updater struct {
	s3Client s3api.S3API
}

// New creates a new Updater instance.
func New(s3Client s3api.S3API) *Updater {
	return &Updater{
		s3Client: s3Client,
	}
}

// Update replaces the user metadata of bucket/key with the given mapping.
// Existing metadata not present in the mapping is dropped, matching the
// REPLACE directive's semantics.
func (m *Updater) Update(
	ctx context.Context,
	bucket, key string,
	meta map[string]string,
	config *s3types.MetadataOptionConfig,
) error {
	input := &s3.CopyObjectInput{
		Bucket:            aws.String(bucket),
		Key:               aws.String(key),
		CopySource:        aws.String(bucket + "/" + key),
		Metadata:          meta,
		MetadataDirective: awstypes.MetadataDirectiveReplace,
	}
	if config.StorageClass != "" {
		input.StorageClass = awstypes.StorageClass(config.StorageClass)
	}
	if config.ContentType != "" {
		input.ContentType = aws.String(config.ContentType)
	}

	if _, err := m.s3Client.CopyObject(ctx, input); err != nil {
		return errors.NewObjectError("updateMetadata", bucket, key, s3api.TranslateError(err)).
			WithKind(errors.KindTransport)
	}
	return nil
}
