// Package storage provides the object storage client behind "s3://" catalogs.
//
// It wraps the MinIO Go client, which speaks to AWS S3 as well as self-hosted
// MinIO, behind a narrow read-only interface: the catalog only ever lists
// keys and checks whether a single key exists.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (see core/storage/mocks).
//
//   - BucketExists: Verifies access to the target bucket at startup.
//   - ListObjects: Streams keys under a prefix (used for eager listing).
//   - StatObject: Checks a single key (used for on-demand lookups).
//
// # Credentials
//
// A static access key from the configuration wins. Without one, credentials
// are resolved from AWS_* and MINIO_* environment variables, the shared AWS
// credentials file, then the instance IAM role.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	exists, err := client.BucketExists(ctx, "datasets")
package storage
