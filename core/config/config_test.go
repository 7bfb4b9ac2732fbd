package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CATALOG_URL", "s3://datasets/{city}/{year}.csv")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "s3.amazonaws.com", cfg.Storage.Endpoint)
	assert.True(t, cfg.Storage.UseSSL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "catalog", cfg.Catalog.Name)
	assert.Equal(t, 60.0, cfg.Catalog.TTLSeconds)
	assert.True(t, cfg.Catalog.Listable)
	assert.False(t, cfg.Catalog.Recursive)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.False(t, cfg.Database.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	env := "CATALOG_URL=file:///srv/data/{id}.parquet\nCATALOG_TTL_SECONDS=-1\nCATALOG_LISTABLE=false\nSERVER_PORT=9090\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644))
	t.Cleanup(func() {
		for _, k := range []string{"CATALOG_URL", "CATALOG_TTL_SECONDS", "CATALOG_LISTABLE", "SERVER_PORT"} {
			os.Unsetenv(k)
		}
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "file:///srv/data/{id}.parquet", cfg.Catalog.URL)
	assert.Equal(t, -1.0, cfg.Catalog.TTLSeconds)
	assert.False(t, cfg.Catalog.Listable)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestLoadConfig_SubSecondTTL(t *testing.T) {
	t.Setenv("CATALOG_TTL_SECONDS", "0.25")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 0.25, cfg.Catalog.TTLSeconds)
	assert.Equal(t, 250*time.Millisecond, cfg.Catalog.TTL())
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	cfg.Catalog.Name = "c"
	cfg.Log.Format = "xml"
	cfg.Database.Enabled = true
	cfg.Database.Driver = "oracle"
	cfg.Metrics.Enabled = true
	cfg.Metrics.Path = "metrics"

	err := cfg.Validate()
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 5)
	assert.Contains(t, err.Error(), "catalog url is required")
	assert.Contains(t, err.Error(), "server port is required")
}
