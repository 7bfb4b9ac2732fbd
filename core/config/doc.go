// Package config provides configuration management for the catalog service.
//
// It loads an optional .env file with godotenv and then reads environment
// variables through Viper. Defaults come from the `default` struct tags of
// each section.
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - Server: HTTP port, API key, shutdown timeout
//   - Storage: S3/MinIO endpoint and credentials
//   - Log: level and format
//   - Database: optional snapshot database
//   - Catalog: templated url, TTL, listing mode
//   - Metrics: Prometheus endpoint
//
// Validate collects every problem with go-multierror instead of stopping at
// the first one.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Catalog.URL)
package config
