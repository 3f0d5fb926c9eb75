package fetch

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/N1teshift/replay-meta/types"
)

// fetchS3 downloads an s3://bucket/key replay to a temp file.
// Uses the AWS SDK default credential chain (env vars, shared config, IAM
// role).
func fetchS3(ctx context.Context, input string, opts Options) (string, func(), error) {
	bucket, key, err := parseS3URI(input)
	if err != nil {
		return "", nil, err
	}

	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	awsConfig, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return "", nil, types.NewError(types.CodeIOError, "failed to load AWS config").WithCause(err)
	}

	var s3Opts []func(*s3.Options)
	if opts.Endpoint != "" {
		endpoint := opts.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = &endpoint
		})
	}
	if opts.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}
	client := s3.NewFromConfig(awsConfig, s3Opts...)

	object, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		var noBucket *s3types.NoSuchBucket
		if errors.As(err, &noKey) || errors.As(err, &noBucket) {
			return "", nil, types.NewErrorf(types.CodeStreamNotFound, "replay not found: %s", input).WithCause(err)
		}
		return "", nil, types.NewErrorf(types.CodeIOError, "failed to fetch %s", input).WithCause(err)
	}
	defer object.Body.Close()

	tmp, err := os.CreateTemp("", "replay-meta-*"+filepath.Ext(key))
	if err != nil {
		return "", nil, types.NewError(types.CodeIOError, "failed to create temp file").WithCause(err)
	}

	if _, err := io.Copy(tmp, object.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, types.NewErrorf(types.CodeIOError, "failed to download %s", input).WithCause(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, types.NewErrorf(types.CodeIOError, "failed to write %s", tmp.Name()).WithCause(err)
	}

	path := tmp.Name()
	cleanup := func() { os.Remove(path) }
	return path, cleanup, nil
}
