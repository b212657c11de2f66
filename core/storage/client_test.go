package storage_test

import (
	"context"
	"errors"
	"testing"

	"bulk-manager/core/storage"
	"bulk-manager/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("PlainEndpoint", func(t *testing.T) {
		client, err := storage.NewClient(storage.Config{
			Endpoint:  "localhost:9000",
			AccessKey: "key",
			SecretKey: "secret",
			Bucket:    "bulk-reports",
		})
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithScheme", func(t *testing.T) {
		client, err := storage.NewClient(storage.Config{
			Endpoint:  "https://s3.amazonaws.com",
			AccessKey: "key",
			SecretKey: "secret",
			UseSSL:    true,
			Region:    "us-east-1",
		})
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestEnsureBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("Exists", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "reports").Return(true, nil)

		require.NoError(t, storage.EnsureBucket(ctx, client, "reports", ""))
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Created", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "reports").Return(false, nil)
		client.On("MakeBucket", ctx, "reports", minio.MakeBucketOptions{Region: "eu-west-1"}).Return(nil)

		require.NoError(t, storage.EnsureBucket(ctx, client, "reports", "eu-west-1"))
		client.AssertExpectations(t)
	})

	t.Run("CheckFails", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", ctx, "reports").Return(false, errors.New("denied"))

		assert.Error(t, storage.EnsureBucket(ctx, client, "reports", ""))
	})
}

func TestListKeys(t *testing.T) {
	ctx := context.Background()
	ch := make(chan minio.ObjectInfo, 2)
	ch <- minio.ObjectInfo{Key: "reports/a.csv"}
	ch <- minio.ObjectInfo{Key: "reports/b.csv"}
	close(ch)

	client := new(mocks.Client)
	client.On("ListObjects", ctx, "bucket", minio.ListObjectsOptions{Prefix: "reports", Recursive: true}).
		Return((<-chan minio.ObjectInfo)(ch))

	keys, err := storage.ListKeys(ctx, client, "bucket", "reports")
	require.NoError(t, err)
	assert.Equal(t, []string{"reports/a.csv", "reports/b.csv"}, keys)
}
