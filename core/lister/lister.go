package lister

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"pattern-catalog/core/pattern"
)

var (
	// ErrPermissionDenied wraps backend errors caused by missing access rights.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUnknownScheme is returned when no backend is registered for a url scheme.
	ErrUnknownScheme = errors.New("no lister registered for scheme")
)

// Lister is the storage capability a catalog depends on.
// Paths are relative to the lister root and use "/" as separator.
type Lister interface {
	// ListPaths returns every path currently matching glob, sorted.
	ListPaths(ctx context.Context, glob string) ([]string, error)
	// Exists reports whether a single path is present.
	Exists(ctx context.Context, path string) (bool, error)
}

// Factory builds a Lister for a parsed catalog location.
type Factory func(ctx context.Context, loc pattern.Location) (Lister, error)

// Registry maps url schemes to lister factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory for one or more schemes. Schemes are case-insensitive
// and may only be registered once.
func (r *Registry) Register(f Factory, schemes ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range schemes {
		s = strings.ToLower(s)
		if _, exists := r.factories[s]; exists {
			return fmt.Errorf("lister for scheme %q already registered", s)
		}
	}
	for _, s := range schemes {
		r.factories[strings.ToLower(s)] = f
	}
	return nil
}

// Open builds the lister registered for loc.Scheme.
func (r *Registry) Open(ctx context.Context, loc pattern.Location) (Lister, error) {
	r.mu.RLock()
	f, ok := r.factories[strings.ToLower(loc.Scheme)]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, loc.Scheme)
	}
	return f(ctx, loc)
}

// Schemes returns the registered schemes, sorted.
func (r *Registry) Schemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.factories))
	for s := range r.factories {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
