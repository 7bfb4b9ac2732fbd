package catalog

import (
	"context"
	"time"

	"pattern-catalog/core/catalog"
	"pattern-catalog/core/pattern"
	"pattern-catalog/core/reconcile"

	"go.uber.org/zap"
)

// Info describes the served catalog.
type Info struct {
	Name       string     `json:"name"`
	URL        string     `json:"url"`
	Template   string     `json:"template"`
	Glob       string     `json:"glob"`
	Fields     []string   `json:"fields"`
	Recursive  bool       `json:"recursive"`
	Listable   bool       `json:"listable"`
	TTLSeconds float64    `json:"ttl_seconds"`
	State      string     `json:"state"`
	Entries    int        `json:"entries"`
	Built      *time.Time `json:"built,omitempty"`
}

// ResolvedEntry is an entry together with its full url.
type ResolvedEntry struct {
	catalog.Entry
	URL string `json:"url"`
}

// Service exposes one catalog index to the HTTP layer.
type Service struct {
	index  *catalog.Index
	loc    pattern.Location
	store  *SnapshotStore
	logger *zap.Logger
}

// NewService creates a new catalog service. store may be nil.
func NewService(index *catalog.Index, loc pattern.Location, store *SnapshotStore, logger *zap.Logger) *Service {
	return &Service{
		index:  index,
		loc:    loc,
		store:  store,
		logger: logger,
	}
}

// Info returns the catalog description without refreshing it.
func (s *Service) Info() Info {
	p := s.index.Pattern()
	info := Info{
		Name:       s.index.Name(),
		URL:        s.loc.String(),
		Template:   p.Template(),
		Glob:       p.Glob(),
		Fields:     p.Fields(),
		Recursive:  p.Recursive(),
		Listable:   s.index.Listable(),
		TTLSeconds: s.index.TTL().Seconds(),
		State:      s.index.State().String(),
		Entries:    s.index.Len(),
	}
	if built := s.index.Built(); !built.IsZero() {
		info.Built = &built
	}
	return info
}

// KwargSets returns the field values of every known entry.
func (s *Service) KwargSets(ctx context.Context) ([]pattern.Values, error) {
	return s.index.KwargSets(ctx)
}

// Names returns every known entry key.
func (s *Service) Names(ctx context.Context) ([]string, error) {
	return s.index.Names(ctx)
}

// Entry looks up a single entry.
func (s *Service) Entry(ctx context.Context, values map[string]string) (ResolvedEntry, error) {
	e, err := s.index.Entry(ctx, values)
	if err != nil {
		return ResolvedEntry{}, err
	}
	return s.resolve(e), nil
}

// Path formats the path for values without touching the backend.
func (s *Service) Path(values map[string]string) (path, url string, err error) {
	path, err = s.index.EntryPath(values)
	if err != nil {
		return "", "", err
	}
	return path, s.loc.Join(path), nil
}

// Search returns at most limit entries matching text. A limit of zero or
// less returns every match.
func (s *Service) Search(ctx context.Context, text string, limit int) ([]ResolvedEntry, error) {
	found, err := s.index.Search(ctx, text)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}
	out := make([]ResolvedEntry, len(found))
	for i, e := range found {
		out[i] = s.resolve(e)
	}
	return out, nil
}

// Reload drops the cached table and rebuilds it.
func (s *Service) Reload(ctx context.Context) (int, error) {
	if err := s.index.Reload(ctx); err != nil {
		return 0, err
	}
	return s.index.Len(), nil
}

// Snapshot returns the rows last persisted for this catalog.
func (s *Service) Snapshot(ctx context.Context) ([]SnapshotEntry, error) {
	if s.store == nil {
		return nil, ErrSnapshotDisabled
	}
	return s.store.Load(ctx, s.index.Name())
}

// Drift compares a fresh listing of the backend against the persisted
// snapshot. The rows are read first and the listing bypasses the index, so
// the refresh hook cannot overwrite the snapshot being compared.
func (s *Service) Drift(ctx context.Context) (reconcile.Report, error) {
	if s.store == nil {
		return reconcile.Report{}, ErrSnapshotDisabled
	}

	rows, err := s.store.Load(ctx, s.index.Name())
	if err != nil {
		return reconcile.Report{}, err
	}

	entries, err := s.index.Scan(ctx)
	if err != nil {
		return reconcile.Report{}, err
	}
	live, err := entryItems(entries)
	if err != nil {
		return reconcile.Report{}, err
	}

	return reconcile.Reconcile(reconcile.Index(live), reconcile.Index(rowItems(rows))), nil
}

func (s *Service) resolve(e catalog.Entry) ResolvedEntry {
	return ResolvedEntry{Entry: e, URL: s.loc.Join(e.Path)}
}
