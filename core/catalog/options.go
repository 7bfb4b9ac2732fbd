package catalog

import (
	"context"
	"time"

	"pattern-catalog/core/entrykey"
	"pattern-catalog/core/metrics"

	"go.uber.org/zap"
)

// DefaultTTL is how long a listing is trusted when no TTL is configured.
const DefaultTTL = 60 * time.Second

// WarningFunc receives non-fatal problems found while refreshing, such as
// ErrKeyCollision or entrykey.ErrInvalidKey.
type WarningFunc func(err error)

// RefreshFunc is called with a copy of the table after every full listing.
type RefreshFunc func(ctx context.Context, entries []Entry)

type options struct {
	name      string
	ttl       time.Duration
	minTTL    time.Duration
	listable  bool
	keys      entrykey.Builder
	logger    *zap.Logger
	metrics   *metrics.Metrics
	warn      WarningFunc
	onRefresh RefreshFunc
	now       func() time.Time
}

func defaultOptions() options {
	return options{
		name:     "catalog",
		ttl:      DefaultTTL,
		listable: true,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
}

// Option configures an Index.
type Option func(*options)

// WithName sets the catalog name used in logs and metrics.
func WithName(name string) Option { return func(o *options) { o.name = name } }

// WithTTL sets how long a listing is reused. Zero or negative TTLs re-list
// on every read.
func WithTTL(ttl time.Duration) Option { return func(o *options) { o.ttl = ttl } }

// WithMinTTL sets the threshold under which a TTL is treated as zero.
func WithMinTTL(d time.Duration) Option { return func(o *options) { o.minTTL = d } }

// WithListable selects eager enumeration (true, the default) or on-demand
// resolution of single entries (false).
func WithListable(listable bool) Option { return func(o *options) { o.listable = listable } }

// WithKeyBuilder replaces the default entry key builder.
func WithKeyBuilder(b entrykey.Builder) Option { return func(o *options) { o.keys = b } }

// WithLogger sets the logger. Warnings are logged at warn level.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records refreshes, collisions and lookups.
func WithMetrics(m *metrics.Metrics) Option { return func(o *options) { o.metrics = m } }

// WithWarningHandler receives every non-fatal refresh warning.
func WithWarningHandler(fn WarningFunc) Option { return func(o *options) { o.warn = fn } }

// OnRefresh registers a hook run after every full listing.
func OnRefresh(fn RefreshFunc) Option { return func(o *options) { o.onRefresh = fn } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }
