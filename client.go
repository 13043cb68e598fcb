// Package s3 provides client initialization and configuration.
//
// The Client wraps the AWS SDK v2 S3 client behind a small set of simplified
// operations (head, get, get-as-string, get-as-bytes, chunked download, put,
// metadata update) with structured logging and normalized error handling.
package s3

import (
	"context"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/rs/zerolog"

	"github.com/lickdlabs/go-aws-s3/errors"
	"github.com/lickdlabs/go-aws-s3/internal/s3api"
	"github.com/lickdlabs/go-aws-s3/s3types"
)

// Client provides simplified access to an S3-compatible object store.
// It is safe for concurrent use; each operation carries its own state.
type Client struct {
	// s3Client is the underlying AWS SDK S3 client
	s3Client s3api.S3API

	// cfg holds the resolved client configuration
	cfg s3types.ClientConfig

	// awsConfig holds the AWS configuration
	awsConfig aws.Config

	// fs is the filesystem abstraction for file operations
	fs fs.Filesystem

	// log is the structured logger for observability; correctness never
	// depends on it
	log zerolog.Logger
}

// New creates a new S3 client with the provided options.
// It loads AWS credentials using the default credential chain
// and applies the specified configuration options.
//
// Example:
//
//	client, err := s3.New(
//	    s3.WithRegion("us-west-2"),
//	    s3.WithMaxRetries(3),
//	)
func New(opts ...s3types.Option) (*Client, error) {
	clientCfg := s3types.ClientConfig{
		MaxRetries: 3,
		ChunkSize:  0, // operation default applies
	}
	for _, opt := range opts {
		opt(&clientCfg)
	}

	var cfg aws.Config
	var err error

	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		cfg, err = config.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, errors.NewError("client initialization", err)
		}
	}

	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	if clientCfg.MaxRetries > 0 {
		cfg.RetryMaxAttempts = clientCfg.MaxRetries
	}

	var s3Opts []func(*s3.Options)
	if clientCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}
	if clientCfg.Endpoint != "" {
		endpoint := clientCfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}
	if clientCfg.Timeout > 0 {
		httpClient := &http.Client{
			Timeout: clientCfg.Timeout,
		}
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	var filesystem fs.Filesystem
	if clientCfg.Filesystem != nil {
		filesystem = clientCfg.Filesystem
	} else {
		filesystem = billy.NewOSFS("/")
	}

	logger := zerolog.Nop()
	if clientCfg.Logger != nil {
		logger = *clientCfg.Logger
	}

	return &Client{
		s3Client:  s3.NewFromConfig(cfg, s3Opts...),
		cfg:       clientCfg,
		awsConfig: cfg,
		fs:        filesystem,
		log:       logger,
	}, nil
}

// NewWithClient creates a new S3 client with a custom S3API implementation.
// This is primarily used for testing with mocked clients.
func NewWithClient(s3Client s3api.S3API, opts ...s3types.Option) *Client {
	clientCfg := s3types.ClientConfig{}
	for _, opt := range opts {
		opt(&clientCfg)
	}

	var filesystem fs.Filesystem
	if clientCfg.Filesystem != nil {
		filesystem = clientCfg.Filesystem
	} else {
		filesystem = billy.NewOSFS("/")
	}

	logger := zerolog.Nop()
	if clientCfg.Logger != nil {
		logger = *clientCfg.Logger
	}

	return &Client{
		s3Client:  s3Client,
		cfg:       clientCfg,
		awsConfig: aws.Config{},
		fs:        filesystem,
		log:       logger,
	}
}
