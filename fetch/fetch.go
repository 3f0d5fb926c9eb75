// Package fetch resolves replay input locations to local files.
//
// Inputs are either local paths (returned as-is) or s3://bucket/key URIs,
// which are downloaded to a temporary file before container parsing. The
// upload pipeline stores replays in object storage, so the CLI accepts both
// forms everywhere a replay path is expected.
package fetch

import (
	"context"
	"strings"

	"github.com/N1teshift/replay-meta/types"
)

// s3Scheme prefixes object-storage replay locations.
const s3Scheme = "s3://"

// Options configure remote retrieval.
type Options struct {
	// Region is the AWS region. Empty uses the default resolution chain.
	Region string
	// Endpoint is a custom S3 endpoint URL for S3-compatible providers
	// (e.g. Cloudflare R2, MinIO). Empty uses the default AWS endpoint.
	Endpoint string
	// UsePathStyle forces path-style addressing (bucket in path, not
	// subdomain). Required by most S3-compatible providers.
	UsePathStyle bool
}

// IsRemote reports whether input names an object-storage location.
func IsRemote(input string) bool {
	return strings.HasPrefix(input, s3Scheme)
}

// Resolve returns a local path for input. Local paths pass through with a
// no-op cleanup; remote inputs are fetched to a temp file that cleanup
// removes.
func Resolve(ctx context.Context, input string, opts Options) (string, func(), error) {
	if !IsRemote(input) {
		return input, func() {}, nil
	}
	return fetchS3(ctx, input, opts)
}

// parseS3URI splits s3://bucket/key into its parts.
func parseS3URI(input string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(input, s3Scheme)
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", types.NewErrorf(types.CodeIOError, "invalid s3 replay location: %s", input).
			WithDetails(map[string]any{"input": input})
	}
	return bucket, key, nil
}
