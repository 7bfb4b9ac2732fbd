package lister

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"pattern-catalog/core/pattern"
	"pattern-catalog/core/storage"

	"github.com/minio/minio-go/v7"
)

// ObjectLister lists keys of one bucket through a storage.Client.
type ObjectLister struct {
	client storage.Client
	bucket string
}

// NewObjectLister creates a lister over bucket.
func NewObjectLister(client storage.Client, bucket string) *ObjectLister {
	return &ObjectLister{client: client, bucket: bucket}
}

// Bucket returns the bucket this lister reads.
func (l *ObjectLister) Bucket() string { return l.bucket }

// Check verifies that the bucket exists and is reachable.
func (l *ObjectLister) Check(ctx context.Context) error {
	exists, err := l.client.BucketExists(ctx, l.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", l.bucket, translate(err))
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", l.bucket)
	}
	return nil
}

// ListPaths lists every key under the glob's literal prefix in a single
// recursive pass and keeps those matching glob. Folder markers are skipped.
func (l *ObjectLister) ListPaths(ctx context.Context, glob string) ([]string, error) {
	re, err := pattern.CompileGlob(glob)
	if err != nil {
		return nil, err
	}

	// Stop the listing goroutine if we return early on an error.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := minio.ListObjectsOptions{
		Prefix:    pattern.GlobPrefix(glob),
		Recursive: true,
	}

	var paths []string
	for obj := range l.client.ListObjects(ctx, l.bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list %s/%s: %w", l.bucket, opts.Prefix, translate(obj.Err))
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		if re.MatchString(obj.Key) {
			paths = append(paths, obj.Key)
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// Exists reports whether key is present in the bucket.
func (l *ObjectLister) Exists(ctx context.Context, key string) (bool, error) {
	_, err := l.client.StatObject(ctx, l.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}

	resp := minio.ToErrorResponse(err)
	if resp.Code == minio.NoSuchKey || resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s/%s: %w", l.bucket, key, translate(err))
}

// translate marks access failures with ErrPermissionDenied, keeping the
// original error in the chain.
func translate(err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == minio.AccessDenied || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}
	return err
}

// ObjectFactory returns a Factory that builds ObjectListers sharing client.
// The bucket is taken from the catalog url.
func ObjectFactory(client storage.Client) Factory {
	return func(ctx context.Context, loc pattern.Location) (Lister, error) {
		if loc.Root == "" {
			return nil, fmt.Errorf("url %q has no bucket", loc.String())
		}
		return NewObjectLister(client, loc.Root), nil
	}
}
