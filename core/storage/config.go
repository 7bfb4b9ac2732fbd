package storage

// Config holds configuration for the object storage backend used by "s3://" catalogs.
type Config struct {
	// Endpoint is the host (and optional port) of the S3-compatible service.
	Endpoint string `mapstructure:"endpoint" default:"s3.amazonaws.com"`
	// AccessKey is the access key ID. Leave empty to resolve credentials from the environment.
	AccessKey string `mapstructure:"access_key" default:""`
	// SecretKey is the secret access key.
	SecretKey string `mapstructure:"secret_key" default:""`
	// SessionToken is an optional STS session token.
	SessionToken string `mapstructure:"session_token" default:""`
	// UseSSL indicates whether to use SSL/TLS for connections.
	UseSSL bool `mapstructure:"use_ssl" default:"true"`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds bounds connection setup and the wait for response headers.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
