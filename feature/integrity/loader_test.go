package integrity

import (
	"testing"

	"pattern-catalog/core/entrykey"
	"pattern-catalog/core/pattern"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLoader(t *testing.T) {
	p := pattern.MustCompile("{num}.csv", false)
	// No database: only the schema check is unavailable.
	feature := NewFeature(NewService(p, memLister(t), entrykey.Builder{}, nil, nil, zap.NewNop()))

	assert.Equal(t, "integrity", feature.Name())
	assert.True(t, feature.IsEnabled())

	app := fiber.New()
	assert.NoError(t, feature.Load(app))
}

func TestLoader_Disabled(t *testing.T) {
	assert.False(t, NewFeature(nil).IsEnabled())
}
