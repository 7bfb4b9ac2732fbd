package catalog_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pattern-catalog/core/catalog"
	"pattern-catalog/core/entrykey"
	"pattern-catalog/core/lister"
	"pattern-catalog/core/metrics"
	"pattern-catalog/core/pattern"
	"pattern-catalog/core/storage/mocks"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/minio/minio-go/v7"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func write(t *testing.T, fs billy.Filesystem, files ...string) {
	t.Helper()
	for _, f := range files {
		require.NoError(t, util.WriteFile(fs, f, []byte("a\n1"), 0o644))
	}
}

func nums(t *testing.T, sets []pattern.Values) []string {
	t.Helper()
	out := make([]string, 0, len(sets))
	for _, s := range sets {
		v, ok := s.Get("num")
		require.True(t, ok)
		out = append(out, v)
	}
	return out
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestIndex_ZeroTTLRelistsEveryRead(t *testing.T) {
	fs := memfs.New()
	idx := catalog.New(pattern.MustCompile("{num}.csv", false), lister.NewFSLister(fs), catalog.WithTTL(-1))
	ctx := context.Background()

	sets, err := idx.KwargSets(ctx)
	require.NoError(t, err)
	assert.Empty(t, sets)

	write(t, fs, "1.csv", "2.csv")

	sets, err = idx.KwargSets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, nums(t, sets))
	assert.Equal(t, catalog.StateStale, idx.State())
}

func TestIndex_TTL(t *testing.T) {
	fs := memfs.New()
	c := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	idx := catalog.New(pattern.MustCompile("{num}.csv", false), lister.NewFSLister(fs),
		catalog.WithTTL(100*time.Millisecond), catalog.WithClock(c.Now))
	ctx := context.Background()

	assert.Equal(t, catalog.StateEmpty, idx.State())

	sets, err := idx.KwargSets(ctx)
	require.NoError(t, err)
	assert.Empty(t, sets)
	assert.Equal(t, catalog.StateFresh, idx.State())
	assert.Equal(t, c.Now(), idx.Built())

	write(t, fs, "1.csv", "2.csv")

	sets, err = idx.KwargSets(ctx)
	require.NoError(t, err)
	assert.Empty(t, sets, "listing is reused within the ttl")

	c.Advance(150 * time.Millisecond)
	assert.Equal(t, catalog.StateStale, idx.State())

	sets, err = idx.KwargSets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, nums(t, sets))
}

func TestIndex_MinTTL(t *testing.T) {
	fs := memfs.New()
	idx := catalog.New(pattern.MustCompile("{num}.csv", false), lister.NewFSLister(fs),
		catalog.WithTTL(time.Millisecond), catalog.WithMinTTL(10*time.Millisecond))
	ctx := context.Background()

	_, err := idx.KwargSets(ctx)
	require.NoError(t, err)
	write(t, fs, "7.csv")

	sets, err := idx.KwargSets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, nums(t, sets))
}

func TestIndex_Recursive(t *testing.T) {
	fs := memfs.New()
	write(t, fs, "3.csv", "nested/path/1.csv", "nested/path/2.csv")
	ctx := context.Background()

	t.Run("Flat", func(t *testing.T) {
		idx := catalog.New(pattern.MustCompile("{num}.csv", false), lister.NewFSLister(fs))
		sets, err := idx.KwargSets(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"3"}, nums(t, sets))
	})

	t.Run("Recursive", func(t *testing.T) {
		idx := catalog.New(pattern.MustCompile("{num}.csv", true), lister.NewFSLister(fs))
		sets, err := idx.KwargSets(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"3", "nested/path/1", "nested/path/2"}, nums(t, sets))

		names, err := idx.Names(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"num_3", "num_nested_path_1", "num_nested_path_2"}, names)
	})
}

func TestIndex_Entry(t *testing.T) {
	fs := memfs.New()
	write(t, fs, "zurich/2024.csv", "bern/2024.csv", "bern/2025.csv")
	idx := catalog.New(pattern.MustCompile("{city}/{year}.csv", false), lister.NewFSLister(fs))
	ctx := context.Background()

	e, err := idx.Entry(ctx, map[string]string{"year": "2025", "city": "bern"})
	require.NoError(t, err)
	assert.Equal(t, "city_bern_year_2025", e.Key)
	assert.Equal(t, "bern/2025.csv", e.Path)
	assert.Equal(t, pattern.Values{{Name: "city", Value: "bern"}, {Name: "year", Value: "2025"}}, e.Values)

	_, err = idx.Entry(ctx, map[string]string{"city": "zurich", "year": "2025"})
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = idx.Entry(ctx, map[string]string{"city": "ge neva", "year": "1"})
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	path, err := idx.EntryPath(map[string]string{"year": "1999", "city": "basel"})
	require.NoError(t, err)
	assert.Equal(t, "basel/1999.csv", path)

	_, err = idx.EntryPath(map[string]string{"city": "basel"})
	assert.ErrorIs(t, err, pattern.ErrMissingField)
}

func TestIndex_OnDemand(t *testing.T) {
	fs := memfs.New()
	write(t, fs, "1.csv", "2.csv")
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	idx := catalog.New(pattern.MustCompile("{num}.csv", false), lister.NewFSLister(fs),
		catalog.WithListable(false), catalog.WithName("ondemand"), catalog.WithMetrics(m))
	ctx := context.Background()

	sets, err := idx.KwargSets(ctx)
	require.NoError(t, err)
	assert.Empty(t, sets, "on-demand catalogs do not list")

	e, err := idx.Entry(ctx, map[string]string{"num": "1"})
	require.NoError(t, err)
	assert.Equal(t, "num_1", e.Key)
	assert.Equal(t, "1.csv", e.Path)

	sets, err = idx.KwargSets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, nums(t, sets))
	assert.Equal(t, 1, idx.Len())

	_, err = idx.Entry(ctx, map[string]string{"num": "1"})
	require.NoError(t, err)
	sets, err = idx.KwargSets(ctx)
	require.NoError(t, err)
	assert.Len(t, sets, 1, "a repeated lookup does not duplicate the entry")

	_, err = idx.Entry(ctx, map[string]string{"num": "-1"})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	sets, err = idx.KwargSets(ctx)
	require.NoError(t, err)
	assert.Len(t, sets, 1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Lookups.WithLabelValues("ondemand", "resolved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Lookups.WithLabelValues("ondemand", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Lookups.WithLabelValues("ondemand", "not_found")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Refreshes.WithLabelValues("ondemand")))

	require.NoError(t, idx.Reload(ctx))
	assert.Equal(t, catalog.StateEmpty, idx.State())
	sets, err = idx.KwargSets(ctx)
	require.NoError(t, err)
	assert.Empty(t, sets)
}

func TestIndex_OnDemand_ForeignValues(t *testing.T) {
	fs := memfs.New()
	write(t, fs, "1.csv", "nested/path/2.csv")
	ctx := context.Background()

	idx := catalog.New(pattern.MustCompile("{num}.csv", false), lister.NewFSLister(fs),
		catalog.WithListable(false))

	_, err := idx.Entry(ctx, map[string]string{"num": "1"})
	require.NoError(t, err)

	_, err = idx.Entry(ctx, map[string]string{"num": "1", "extra": "x"})
	assert.ErrorIs(t, err, pattern.ErrUnknownField)
	_, err = idx.EntryPath(map[string]string{"num": "1", "extra": "x"})
	assert.ErrorIs(t, err, pattern.ErrUnknownField)

	_, err = idx.Entry(ctx, map[string]string{"num": "nested/path/2"})
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	assert.Equal(t, 1, idx.Len(), "only the well-formed lookup is cached")

	eager := catalog.New(pattern.MustCompile("{num}.csv", false), lister.NewFSLister(fs))
	_, err = eager.Entry(ctx, map[string]string{"num": "nested/path/2"})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestIndex_InvalidKey(t *testing.T) {
	fs := memfs.New()
	idx := catalog.New(pattern.MustCompile("{num}.csv", false), lister.NewFSLister(fs),
		catalog.WithKeyBuilder(entrykey.Builder{RejectEmpty: true}))

	_, err := idx.Entry(context.Background(), map[string]string{"num": ""})
	assert.ErrorIs(t, err, entrykey.ErrInvalidKey)

	_, err = idx.Entry(context.Background(), map[string]string{})
	assert.ErrorIs(t, err, entrykey.ErrInvalidKey)
}

func TestIndex_Collision(t *testing.T) {
	fs := memfs.New()
	write(t, fs, "🧨.csv", "💣.csv")

	core, logs := observer.New(zapcore.WarnLevel)
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	var warnings []error
	idx := catalog.New(pattern.MustCompile("{num}.csv", false), lister.NewFSLister(fs),
		catalog.WithName("emoji"),
		catalog.WithLogger(zap.New(core)),
		catalog.WithMetrics(m),
		catalog.WithWarningHandler(func(err error) { warnings = append(warnings, err) }))

	entries, err := idx.Entries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "num__", entries[0].Key)
	assert.Equal(t, "💣.csv", entries[0].Path)

	require.Len(t, warnings, 1)
	assert.ErrorIs(t, warnings[0], catalog.ErrKeyCollision)
	assert.Contains(t, warnings[0].Error(), "num__")
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Collisions.WithLabelValues("emoji")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Entries.WithLabelValues("emoji")))
}

func TestIndex_Search(t *testing.T) {
	fs := memfs.New()
	write(t, fs, "zurich/2024.csv", "Bern/2024.csv", "geneva/2023.csv")
	idx := catalog.New(pattern.MustCompile("{city}/{year}.csv", false), lister.NewFSLister(fs))
	ctx := context.Background()

	found, err := idx.Search(ctx, "bern 2023")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Bern/2024.csv", found[0].Path)
	assert.Equal(t, "geneva/2023.csv", found[1].Path)

	found, err = idx.Search(ctx, "lausanne")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestIndex_PermissionDenied(t *testing.T) {
	denied := minio.ErrorResponse{Code: minio.AccessDenied, StatusCode: http.StatusForbidden}
	ctx := context.Background()

	t.Run("Listing", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("ListObjects", mock.Anything, "private", mock.Anything).Return(mocks.Failing(denied))

		idx := catalog.New(pattern.MustCompile("{num}.csv", false), lister.NewObjectLister(mockClient, "private"))
		_, err := idx.KwargSets(ctx)
		assert.ErrorIs(t, err, lister.ErrPermissionDenied)
		assert.Equal(t, catalog.StateEmpty, idx.State())
	})

	t.Run("Resolve", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("StatObject", mock.Anything, "private", "1.csv", mock.Anything).Return(minio.ObjectInfo{}, denied)

		idx := catalog.New(pattern.MustCompile("{num}.csv", false), lister.NewObjectLister(mockClient, "private"),
			catalog.WithListable(false))
		_, err := idx.Entry(ctx, map[string]string{"num": "1"})
		assert.ErrorIs(t, err, lister.ErrPermissionDenied)
		mockClient.AssertExpectations(t)
	})
}

type countingLister struct {
	calls   atomic.Int32
	release chan struct{}
	paths   []string
}

func (l *countingLister) ListPaths(ctx context.Context, _ string) ([]string, error) {
	l.calls.Add(1)
	select {
	case <-l.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return l.paths, nil
}

func (l *countingLister) Exists(context.Context, string) (bool, error) {
	return false, errors.New("not supported")
}

func TestIndex_ConcurrentRefresh(t *testing.T) {
	l := &countingLister{release: make(chan struct{}), paths: []string{"1.csv", "2.csv"}}
	idx := catalog.New(pattern.MustCompile("{num}.csv", false), l, catalog.WithTTL(time.Hour))
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([][]pattern.Values, 8)
	for n := range results {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			sets, err := idx.KwargSets(ctx)
			assert.NoError(t, err)
			results[n] = sets
		}(n)
	}

	require.Eventually(t, func() bool { return l.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	close(l.release)
	wg.Wait()

	assert.Equal(t, int32(1), l.calls.Load())
	for _, sets := range results {
		assert.Equal(t, []string{"1", "2"}, nums(t, sets))
	}
}

func TestIndex_ConcurrentRefresh_CallerCancels(t *testing.T) {
	l := &countingLister{release: make(chan struct{}), paths: []string{"1.csv"}}
	idx := catalog.New(pattern.MustCompile("{num}.csv", false), l, catalog.WithTTL(time.Hour))

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := idx.KwargSets(first)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return l.calls.Load() == 1 }, time.Second, time.Millisecond)

	secondErr := make(chan error, 1)
	go func() {
		_, err := idx.KwargSets(context.Background())
		secondErr <- err
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(l.release)
	require.NoError(t, <-secondErr)
	assert.Equal(t, int32(1), l.calls.Load())
	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, catalog.StateFresh, idx.State())
}

func TestIndex_OnRefresh(t *testing.T) {
	fs := memfs.New()
	write(t, fs, "1.csv")

	var got []catalog.Entry
	idx := catalog.New(pattern.MustCompile("{num}.csv", false), lister.NewFSLister(fs),
		catalog.OnRefresh(func(_ context.Context, entries []catalog.Entry) { got = entries }))

	require.NoError(t, idx.Reload(context.Background()))
	require.Len(t, got, 1)
	assert.Equal(t, "num_1", got[0].Key)
}

func TestIndex_Scan(t *testing.T) {
	fs := memfs.New()
	write(t, fs, "1.csv", "2.csv")
	ctx := context.Background()

	refreshes := 0
	idx := catalog.New(pattern.MustCompile("{num}.csv", false), lister.NewFSLister(fs),
		catalog.WithTTL(time.Hour),
		catalog.OnRefresh(func(context.Context, []catalog.Entry) { refreshes++ }))

	entries, err := idx.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "num_1", entries[0].Key)
	assert.Equal(t, catalog.StateEmpty, idx.State())
	assert.Equal(t, 0, refreshes)

	_, err = idx.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, refreshes)

	write(t, fs, "3.csv")
	entries, err = idx.Scan(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "a scan sees the backend even while the table is fresh")
	assert.Equal(t, 2, idx.Len())

	onDemand := catalog.New(pattern.MustCompile("{num}.csv", false), lister.NewFSLister(fs), catalog.WithListable(false))
	_, err = onDemand.Scan(ctx)
	assert.ErrorIs(t, err, catalog.ErrNotListable)
}
