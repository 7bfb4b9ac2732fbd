package config

import (
	"errors"
	"reflect"
	"strings"

	"pattern-catalog/core/catalog"
	"pattern-catalog/core/database"
	"pattern-catalog/core/logger"
	"pattern-catalog/core/metrics"
	"pattern-catalog/core/server"
	"pattern-catalog/core/storage"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the object storage behind "s3://" urls.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the optional snapshot database.
	Database database.Config `mapstructure:"database"`
	// Catalog describes the served catalog.
	Catalog catalog.Config `mapstructure:"catalog"`
	// Metrics holds configuration for the Prometheus endpoint.
	Metrics metrics.Config `mapstructure:"metrics"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// A missing .env is fine (e.g. production).
	_ = godotenv.Overload(envPath)

	v := viper.New()

	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. CATALOG_TTL_SECONDS -> catalog.ttl_seconds)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if err := c.Catalog.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if c.Server.Port == "" {
		result = multierror.Append(result, errors.New("server port is required"))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		result = multierror.Append(result, errors.New("log format must be json or console"))
	}
	if c.Database.Enabled {
		switch c.Database.Driver {
		case database.DriverMySQL, database.DriverSQLite:
		default:
			result = multierror.Append(result, errors.New("database driver must be mysql or sqlite"))
		}
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		result = multierror.Append(result, errors.New("metrics path must start with /"))
	}

	return result.ErrorOrNil()
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set the default, even if empty, to register the key for AutomaticEnv.
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
