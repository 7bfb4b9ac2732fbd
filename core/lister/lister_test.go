package lister_test

import (
	"context"
	"testing"

	"pattern-catalog/core/lister"
	"pattern-catalog/core/pattern"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := lister.NewRegistry()
	require.NoError(t, r.Register(lister.FSFactory(memfs.New()), "memory", "MEM"))
	require.NoError(t, r.Register(lister.LocalFactory, pattern.SchemeFile))

	assert.Equal(t, []string{"file", "mem", "memory"}, r.Schemes())

	t.Run("DuplicateScheme", func(t *testing.T) {
		err := r.Register(lister.LocalFactory, "Memory")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already registered")
	})

	t.Run("Open", func(t *testing.T) {
		l, err := r.Open(context.Background(), pattern.ParseURL("mem://anything/{id}.csv"))
		require.NoError(t, err)
		assert.IsType(t, &lister.FSLister{}, l)
	})

	t.Run("UnknownScheme", func(t *testing.T) {
		_, err := r.Open(context.Background(), pattern.ParseURL("gs://bucket/{id}.csv"))
		assert.ErrorIs(t, err, lister.ErrUnknownScheme)
	})
}
