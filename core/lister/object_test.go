package lister_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"pattern-catalog/core/lister"
	"pattern-catalog/core/pattern"
	"pattern-catalog/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestObjectLister_ListPaths(t *testing.T) {
	t.Run("FiltersByGlob", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("ListObjects", mock.Anything, "datasets", mock.MatchedBy(func(opts minio.ListObjectsOptions) bool {
			return opts.Prefix == "folder/" && opts.Recursive
		})).Return(mocks.Objects(
			"folder/",
			"folder/b/2.csv",
			"folder/a/1.csv",
			"folder/a/deep/3.csv",
			"folder/a/readme.md",
		))

		l := lister.NewObjectLister(mockClient, "datasets")
		got, err := l.ListPaths(context.Background(), "folder/*/*.csv")
		require.NoError(t, err)
		assert.Equal(t, []string{"folder/a/1.csv", "folder/b/2.csv"}, got)
		mockClient.AssertExpectations(t)
	})

	t.Run("RecursiveGlob", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("ListObjects", mock.Anything, "recursive", mock.MatchedBy(func(opts minio.ListObjectsOptions) bool {
			return opts.Prefix == ""
		})).Return(mocks.Objects("nested/path/1.csv", "3.csv", "nested/path/2.csv"))

		l := lister.NewObjectLister(mockClient, "recursive")
		got, err := l.ListPaths(context.Background(), "**.csv")
		require.NoError(t, err)
		assert.Equal(t, []string{"3.csv", "nested/path/1.csv", "nested/path/2.csv"}, got)
	})

	t.Run("AccessDenied", func(t *testing.T) {
		denied := minio.ErrorResponse{Code: minio.AccessDenied, StatusCode: http.StatusForbidden}
		mockClient := new(mocks.Client)
		mockClient.On("ListObjects", mock.Anything, "private", mock.Anything).Return(mocks.Failing(denied))

		l := lister.NewObjectLister(mockClient, "private")
		_, err := l.ListPaths(context.Background(), "*.csv")
		assert.ErrorIs(t, err, lister.ErrPermissionDenied)

		var resp minio.ErrorResponse
		assert.True(t, errors.As(err, &resp))
		assert.Equal(t, minio.AccessDenied, resp.Code)
	})

	t.Run("OtherError", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("ListObjects", mock.Anything, "flaky", mock.Anything).Return(mocks.Failing(errors.New("connection reset")))

		l := lister.NewObjectLister(mockClient, "flaky")
		_, err := l.ListPaths(context.Background(), "*.csv")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, lister.ErrPermissionDenied)
		assert.Contains(t, err.Error(), "connection reset")
	})
}

func TestObjectLister_Exists(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("StatObject", mock.Anything, "datasets", "1.csv", mock.Anything).Return(minio.ObjectInfo{Key: "1.csv"}, nil)
	mockClient.On("StatObject", mock.Anything, "datasets", "9.csv", mock.Anything).
		Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: minio.NoSuchKey, StatusCode: http.StatusNotFound})
	mockClient.On("StatObject", mock.Anything, "datasets", "secret.csv", mock.Anything).
		Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: minio.AccessDenied, StatusCode: http.StatusForbidden})

	l := lister.NewObjectLister(mockClient, "datasets")
	ctx := context.Background()

	ok, err := l.Exists(ctx, "1.csv")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Exists(ctx, "9.csv")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = l.Exists(ctx, "secret.csv")
	assert.ErrorIs(t, err, lister.ErrPermissionDenied)
}

func TestObjectLister_Check(t *testing.T) {
	t.Run("Exists", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "datasets").Return(true, nil)
		assert.NoError(t, lister.NewObjectLister(mockClient, "datasets").Check(context.Background()))
	})

	t.Run("Missing", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "gone").Return(false, nil)
		err := lister.NewObjectLister(mockClient, "gone").Check(context.Background())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})
}

func TestObjectFactory(t *testing.T) {
	mockClient := new(mocks.Client)
	factory := lister.ObjectFactory(mockClient)

	l, err := factory(context.Background(), pattern.ParseURL("s3://datasets/{num}.csv"))
	require.NoError(t, err)
	assert.Equal(t, "datasets", l.(*lister.ObjectLister).Bucket())

	_, err = factory(context.Background(), pattern.Location{Scheme: "s3"})
	assert.Error(t, err)
}
