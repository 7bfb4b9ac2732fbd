package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pattern-catalog/core/entrykey"
	"pattern-catalog/core/lister"
	"pattern-catalog/core/pattern"

	"github.com/hashicorp/go-multierror"
)

// Config describes one catalog.
type Config struct {
	// Name identifies the catalog in logs, metrics and snapshots.
	Name string `mapstructure:"name" default:"catalog"`
	// URL is the templated location, e.g. "s3://bucket/data/{city}/{year}.csv".
	URL string `mapstructure:"url" default:""`
	// TTLSeconds is how long a listing is reused, fractions allowed. Zero or
	// less re-lists on every read.
	TTLSeconds float64 `mapstructure:"ttl_seconds" default:"60"`
	// MinTTLMillis is the threshold under which a TTL counts as zero.
	MinTTLMillis int `mapstructure:"min_ttl_ms" default:"0"`
	// Recursive lets placeholders span directories.
	Recursive bool `mapstructure:"recursive" default:"false"`
	// Listable enables eager enumeration. Disable for stores that are too
	// large or forbid listing.
	Listable bool `mapstructure:"listable" default:"true"`
	// RejectEmpty makes empty field values invalid entry keys.
	RejectEmpty bool `mapstructure:"reject_empty" default:"false"`
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var result *multierror.Error
	if c.Name == "" {
		result = multierror.Append(result, errors.New("catalog name is required"))
	}
	if c.URL == "" {
		result = multierror.Append(result, errors.New("catalog url is required"))
	} else {
		loc := pattern.ParseURL(c.URL)
		if _, err := pattern.Compile(loc.Path, c.Recursive); err != nil {
			result = multierror.Append(result, fmt.Errorf("catalog url %q: %w", c.URL, err))
		}
	}
	if c.MinTTLMillis < 0 {
		result = multierror.Append(result, errors.New("catalog min_ttl_ms must not be negative"))
	}
	return result.ErrorOrNil()
}

// TTL returns TTLSeconds as a duration.
func (c Config) TTL() time.Duration {
	return time.Duration(c.TTLSeconds * float64(time.Second))
}

// Options converts the configuration into Index options.
func (c Config) Options() []Option {
	return []Option{
		WithName(c.Name),
		WithTTL(c.TTL()),
		WithMinTTL(time.Duration(c.MinTTLMillis) * time.Millisecond),
		WithListable(c.Listable),
		WithKeyBuilder(entrykey.Builder{RejectEmpty: c.RejectEmpty}),
	}
}

// Open parses cfg.URL, compiles its template, opens the lister registered
// for its scheme and returns the index. Extra options are applied after
// those derived from cfg.
func Open(ctx context.Context, cfg Config, registry *lister.Registry, opts ...Option) (*Index, pattern.Location, error) {
	loc := pattern.ParseURL(cfg.URL)

	p, err := pattern.Compile(loc.Path, cfg.Recursive)
	if err != nil {
		return nil, loc, fmt.Errorf("failed to compile %q: %w", cfg.URL, err)
	}

	l, err := registry.Open(ctx, loc)
	if err != nil {
		return nil, loc, fmt.Errorf("failed to open lister for %q: %w", cfg.URL, err)
	}

	return New(p, l, append(cfg.Options(), opts...)...), loc, nil
}
