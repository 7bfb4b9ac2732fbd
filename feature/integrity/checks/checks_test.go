package checks

import (
	"context"
	"errors"
	"testing"

	"pattern-catalog/core/database"
	"pattern-catalog/core/entrykey"
	"pattern-catalog/core/lister"
	"pattern-catalog/core/pattern"
	"pattern-catalog/core/storage/mocks"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// staticLister returns fixed paths regardless of the glob.
type staticLister []string

func (s staticLister) ListPaths(ctx context.Context, glob string) ([]string, error) {
	return s, nil
}

func (s staticLister) Exists(ctx context.Context, path string) (bool, error) {
	return false, nil
}

type testEntry struct {
	ID    uint   `gorm:"column:id;primaryKey"`
	Name  string `gorm:"column:name;size:64"`
	Body  string `gorm:"column:body;type:text"`
	Extra string `gorm:"-"`
}

func (testEntry) TableName() string { return "test_entries" }

func TestCheckStructure(t *testing.T) {
	p := pattern.MustCompile("{city}/{year}.csv", false)

	t.Run("Matched", func(t *testing.T) {
		fs := memfs.New()
		require.NoError(t, util.WriteFile(fs, "bern/2024.csv", nil, 0o644))
		require.NoError(t, util.WriteFile(fs, "bern/notes.txt", nil, 0o644))

		report, err := CheckStructure(context.Background(), lister.NewFSLister(fs), p)
		require.NoError(t, err)
		assert.Equal(t, "*/*.csv", report.Glob)
		assert.Equal(t, 1, report.Matched)
		assert.Equal(t, "ok", report.Status)
	})

	t.Run("Empty", func(t *testing.T) {
		report, err := CheckStructure(context.Background(), lister.NewFSLister(memfs.New()), p)
		require.NoError(t, err)
		assert.Equal(t, "empty", report.Status)
		assert.Empty(t, report.Unparsed)
	})

	t.Run("Unparsed", func(t *testing.T) {
		report, err := CheckStructure(context.Background(), staticLister{"bern/2024.csv", "stray.csv"}, p)
		require.NoError(t, err)
		assert.Equal(t, 2, report.Listed)
		assert.Equal(t, []string{"stray.csv"}, report.Unparsed)
		assert.Equal(t, "warning", report.Status)
	})

	t.Run("Bucket Missing", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "datasets").Return(false, nil)

		_, err := CheckStructure(context.Background(), lister.NewObjectLister(mockClient, "datasets"), p)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("Listing Error", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "datasets").Return(true, nil)
		mockClient.On("ListObjects", mock.Anything, "datasets", mock.Anything).Return(mocks.Failing(errors.New("boom")))

		_, err := CheckStructure(context.Background(), lister.NewObjectLister(mockClient, "datasets"), p)
		assert.Error(t, err)
	})
}

func TestCheckKeys(t *testing.T) {
	p := pattern.MustCompile("{city}/{year}.csv", false)

	t.Run("Clean", func(t *testing.T) {
		report := CheckKeys([]string{"bern/2024.csv", "zurich/2023.csv"}, p, entrykey.Builder{})
		assert.Equal(t, 2, report.Entries)
		assert.Equal(t, "ok", report.Status)
		assert.Empty(t, report.Collisions)
	})

	t.Run("Collision", func(t *testing.T) {
		paths := []string{"💣/2024.csv", "bern/2024.csv", "🧨/2024.csv"}
		report := CheckKeys(paths, p, entrykey.Builder{})

		assert.Equal(t, "error", report.Status)
		assert.Equal(t, 2, report.Entries)
		require.Len(t, report.Collisions, 1)
		assert.Equal(t, "city___year_2024", report.Collisions[0].Key)
		assert.Equal(t, []string{"💣/2024.csv", "🧨/2024.csv"}, report.Collisions[0].Paths)
	})

	t.Run("Invalid", func(t *testing.T) {
		report := CheckKeys([]string{"/2024.csv", "bern/2024.csv"}, p, entrykey.Builder{RejectEmpty: true})
		assert.Equal(t, "error", report.Status)
		assert.Equal(t, []string{"/2024.csv"}, report.Invalid)
		assert.Equal(t, 1, report.Entries)
	})
}

func TestCheckSchema(t *testing.T) {
	t.Run("Nil DB", func(t *testing.T) {
		_, err := CheckSchema(nil, testEntry{})
		assert.Error(t, err)
	})

	t.Run("Matched", func(t *testing.T) {
		db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
		require.NoError(t, err)
		require.NoError(t, db.AutoMigrate(&testEntry{}))

		report, err := CheckSchema(db, &testEntry{})
		require.NoError(t, err)
		assert.True(t, report.Matched)
		assert.Equal(t, "test_entries", report.Table)
		assert.Empty(t, report.MissingColumns)
	})

	t.Run("Mismatch", func(t *testing.T) {
		db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
		require.NoError(t, err)
		require.NoError(t, db.Exec("CREATE TABLE test_entries (id integer, body integer)").Error)

		report, err := CheckSchema(db, testEntry{})
		require.NoError(t, err)
		assert.False(t, report.Matched)
		assert.Equal(t, []string{"name"}, report.MissingColumns)
		assert.Equal(t, []string{"body: expected text, got integer"}, report.TypeMismatches)
	})

	t.Run("Missing Table", func(t *testing.T) {
		db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
		require.NoError(t, err)

		report, err := CheckSchema(db, testEntry{})
		require.NoError(t, err)
		assert.False(t, report.Matched)
		assert.Contains(t, report.Errors[0], "does not exist")
	})

	t.Run("Not A Struct", func(t *testing.T) {
		db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
		require.NoError(t, err)

		_, err = CheckSchema(db, "catalog_entries")
		assert.Error(t, err)
	})
}
