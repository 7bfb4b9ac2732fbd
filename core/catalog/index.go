package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"pattern-catalog/core/entrykey"
	"pattern-catalog/core/lister"
	"pattern-catalog/core/metrics"
	"pattern-catalog/core/pattern"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrNotFound is returned when no entry exists for the requested values.
	ErrNotFound = errors.New("entry not found")
	// ErrKeyCollision is reported (never returned) when two value sets
	// normalize to the same entry key during a refresh.
	ErrKeyCollision = errors.New("entry key collision")
	// ErrNotListable is returned by Scan on on-demand catalogs.
	ErrNotListable = errors.New("catalog is not listable")
)

// Entry is one addressable catalog entry.
type Entry struct {
	// Key is the canonical identifier derived from Values.
	Key string `json:"key"`
	// Values are the field values in template order.
	Values pattern.Values `json:"values"`
	// Path is the concrete path relative to the lister root.
	Path string `json:"path"`
}

// State is the freshness of the entry table.
type State int

const (
	// StateEmpty means no listing has been performed yet.
	StateEmpty State = iota
	// StateFresh means the table is within its TTL.
	StateFresh
	// StateStale means the TTL elapsed; the next read rebuilds the table.
	StateStale
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateFresh:
		return "fresh"
	case StateStale:
		return "stale"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Index is the cached table of entries for one pattern.
// It is safe for concurrent use; concurrent refreshes are collapsed into one.
type Index struct {
	name      string
	pattern   *pattern.Pattern
	lister    lister.Lister
	ttl       time.Duration
	minTTL    time.Duration
	listable  bool
	keys      entrykey.Builder
	logger    *zap.Logger
	metrics   *metrics.Metrics
	warn      WarningFunc
	onRefresh RefreshFunc
	now       func() time.Time

	mu        sync.RWMutex
	entries   []Entry
	byKey     map[string]int
	built     time.Time
	populated bool

	sf singleflight.Group
}

// New creates an empty index over p, listing through l.
func New(p *pattern.Pattern, l lister.Lister, opts ...Option) *Index {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Index{
		name:      o.name,
		pattern:   p,
		lister:    l,
		ttl:       o.ttl,
		minTTL:    o.minTTL,
		listable:  o.listable,
		keys:      o.keys,
		logger:    o.logger.With(zap.String("catalog", o.name)),
		metrics:   o.metrics,
		warn:      o.warn,
		onRefresh: o.onRefresh,
		now:       o.now,
		byKey:     make(map[string]int),
	}
}

// Name returns the catalog name.
func (i *Index) Name() string { return i.name }

// Pattern returns the compiled template.
func (i *Index) Pattern() *pattern.Pattern { return i.pattern }

// Lister returns the backend the index reads.
func (i *Index) Lister() lister.Lister { return i.lister }

// KeyBuilder returns the builder used to derive entry keys.
func (i *Index) KeyBuilder() entrykey.Builder { return i.keys }

// Listable reports whether the index enumerates all entries.
func (i *Index) Listable() bool { return i.listable }

// TTL returns the configured time-to-live.
func (i *Index) TTL() time.Duration { return i.ttl }

// State reports the freshness of the table.
func (i *Index) State() State {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.stateLocked()
}

// Built returns when the table was last rebuilt by a full listing.
func (i *Index) Built() time.Time {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.built
}

// Len returns the number of entries currently held, without refreshing.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}

func (i *Index) stateLocked() State {
	switch {
	case !i.populated:
		return StateEmpty
	case i.expiredLocked():
		return StateStale
	default:
		return StateFresh
	}
}

func (i *Index) expiredLocked() bool {
	if i.ttl <= 0 || i.ttl < i.minTTL {
		return true
	}
	return i.now().Sub(i.built) >= i.ttl
}

// KwargSets returns the field values of every known entry, in listing order.
// In eager mode the table is rebuilt first when empty or stale. In on-demand
// mode only entries resolved so far are returned.
func (i *Index) KwargSets(ctx context.Context) ([]pattern.Values, error) {
	entries, err := i.Entries(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]pattern.Values, len(entries))
	for n, e := range entries {
		out[n] = e.Values
	}
	return out, nil
}

// Entries returns a copy of every known entry, refreshing first in eager mode.
func (i *Index) Entries(ctx context.Context) ([]Entry, error) {
	if i.listable {
		if err := i.ensureFresh(ctx); err != nil {
			return nil, err
		}
	}

	i.mu.RLock()
	defer i.mu.RUnlock()
	return cloneEntries(i.entries), nil
}

// Names returns the key of every known entry, in listing order.
func (i *Index) Names(ctx context.Context) ([]string, error) {
	entries, err := i.Entries(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for n, e := range entries {
		names[n] = e.Key
	}
	return names, nil
}

// Search returns the entries whose key or path contains any of the
// whitespace-separated words of text, ignoring case.
func (i *Index) Search(ctx context.Context, text string) ([]Entry, error) {
	words := strings.Fields(strings.ToLower(text))
	entries, err := i.Entries(ctx)
	if err != nil {
		return nil, err
	}

	var out []Entry
	for _, e := range entries {
		key := strings.ToLower(e.Key)
		path := strings.ToLower(e.Path)
		for _, w := range words {
			if strings.Contains(key, w) || strings.Contains(path, w) {
				out = append(out, e)
				break
			}
		}
	}
	return out, nil
}

// Entry looks up the entry for values. Values are ordered by the template's
// fields before the key is built; names the template lacks are rejected.
//
// In eager mode the table is refreshed per the TTL and searched. In on-demand
// mode an uncached entry is resolved by formatting its path and asking the
// lister whether that single path exists; a found entry is cached.
func (i *Index) Entry(ctx context.Context, values map[string]string) (Entry, error) {
	ordered, err := i.pattern.Bind(values)
	if err != nil {
		return Entry{}, err
	}
	key, err := i.keys.Build(ordered)
	if err != nil {
		return Entry{}, err
	}

	if i.listable {
		if err := i.ensureFresh(ctx); err != nil {
			return Entry{}, err
		}
		if e, ok := i.cached(key); ok {
			i.metrics.Looked(i.name, "hit")
			return e, nil
		}
		i.metrics.Looked(i.name, "not_found")
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	if e, ok := i.cached(key); ok {
		i.metrics.Looked(i.name, "hit")
		return e, nil
	}

	path, err := i.pattern.Format(ordered)
	if err != nil {
		return Entry{}, err
	}
	// a value holding "/" in a non-recursive template names a path no listing would parse
	if _, ok := i.pattern.MatchOne(path); !ok {
		i.metrics.Looked(i.name, "not_found")
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	exists, err := i.lister.Exists(ctx, path)
	if err != nil {
		i.metrics.Failed(i.name)
		return Entry{}, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if !exists {
		i.metrics.Looked(i.name, "not_found")
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	e := Entry{Key: key, Values: ordered, Path: path}

	i.mu.Lock()
	if n, ok := i.byKey[key]; ok {
		e = i.entries[n]
	} else {
		i.byKey[key] = len(i.entries)
		i.entries = append(i.entries, e)
	}
	i.mu.Unlock()

	i.metrics.Looked(i.name, "resolved")
	i.logger.Debug("Resolved catalog entry", zap.String("key", key), zap.String("path", path))
	return cloneEntry(e), nil
}

// EntryPath substitutes values into the template without any I/O.
func (i *Index) EntryPath(values map[string]string) (string, error) {
	ordered, err := i.pattern.Bind(values)
	if err != nil {
		return "", err
	}
	return i.pattern.Format(ordered)
}

// Reload drops the table and, in eager mode, rebuilds it immediately.
func (i *Index) Reload(ctx context.Context) error {
	i.Invalidate()
	if !i.listable {
		return nil
	}
	return i.ensureFresh(ctx)
}

// Invalidate drops every cached entry, returning the index to StateEmpty.
func (i *Index) Invalidate() {
	i.mu.Lock()
	i.entries = nil
	i.byKey = make(map[string]int)
	i.built = time.Time{}
	i.populated = false
	i.mu.Unlock()
}

func (i *Index) cached(key string) (Entry, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	n, ok := i.byKey[key]
	if !ok {
		return Entry{}, false
	}
	return cloneEntry(i.entries[n]), true
}

// ensureFresh rebuilds the table when it is empty or stale. Concurrent
// callers share a single listing, which is not cancelled when one of them
// gives up.
func (i *Index) ensureFresh(ctx context.Context) error {
	i.mu.RLock()
	fresh := i.stateLocked() == StateFresh
	i.mu.RUnlock()
	if fresh {
		return nil
	}

	ch := i.sf.DoChan("refresh", func() (interface{}, error) {
		return nil, i.refresh(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Scan lists the backing store and returns the entries it holds now. The
// cached table is left as is and no refresh hook runs. On-demand catalogs
// cannot be scanned.
func (i *Index) Scan(ctx context.Context) ([]Entry, error) {
	if !i.listable {
		return nil, ErrNotListable
	}
	entries, _, _, err := i.list(ctx, nil)
	return entries, err
}

// list enumerates the store and derives the entry table. Skipped paths are
// passed to skip when it is set.
func (i *Index) list(ctx context.Context, skip func(err error, collision bool)) ([]Entry, map[string]int, int, error) {
	glob := i.pattern.Glob()
	paths, err := i.lister.ListPaths(ctx, glob)
	if err != nil {
		i.metrics.Failed(i.name)
		return nil, nil, 0, fmt.Errorf("failed to list %s: %w", glob, err)
	}

	entries := make([]Entry, 0, len(paths))
	byKey := make(map[string]int, len(paths))
	for _, path := range paths {
		values, ok := i.pattern.MatchOne(path)
		if !ok {
			continue
		}

		key, err := i.keys.Build(values)
		if err != nil {
			if skip != nil {
				skip(fmt.Errorf("failed to generate an entry for %s: %w", path, err), false)
			}
			continue
		}

		if n, dup := byKey[key]; dup {
			if skip != nil {
				skip(fmt.Errorf("%w: failed to generate an entry for pattern %v because entry named %s already exists for %v "+
					"(non-alphanumeric characters are converted to underscores)", ErrKeyCollision, values.Map(), key, entries[n].Values.Map()), true)
			}
			continue
		}

		byKey[key] = len(entries)
		entries = append(entries, Entry{Key: key, Values: values, Path: path})
	}
	return entries, byKey, len(paths), nil
}

// refresh lists the backing store and replaces the table wholesale.
func (i *Index) refresh(ctx context.Context) error {
	entries, byKey, listed, err := i.list(ctx, func(err error, collision bool) {
		if collision {
			i.metrics.Collided(i.name)
		}
		i.warning(err)
	})
	if err != nil {
		return err
	}

	i.mu.Lock()
	i.entries = entries
	i.byKey = byKey
	i.built = i.now()
	i.populated = true
	i.mu.Unlock()

	i.metrics.Refreshed(i.name, len(entries))
	i.logger.Debug("Catalog refreshed",
		zap.String("glob", i.pattern.Glob()),
		zap.Int("paths", listed),
		zap.Int("entries", len(entries)))

	if i.onRefresh != nil {
		i.onRefresh(ctx, cloneEntries(entries))
	}
	return nil
}

func (i *Index) warning(err error) {
	i.logger.Warn("Catalog entry skipped", zap.Error(err))
	if i.warn != nil {
		i.warn(err)
	}
}

func cloneEntry(e Entry) Entry {
	e.Values = append(pattern.Values(nil), e.Values...)
	return e
}

func cloneEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	for n, e := range entries {
		out[n] = cloneEntry(e)
	}
	return out
}
