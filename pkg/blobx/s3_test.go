package blobx_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/dds2/pkg/blobx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	minioImage = "minio/minio:RELEASE.2025-04-22T22-12-26Z"
	minioUser  = "minioadmin"
	minioPass  = "minioadmin"
)

// setupMinio starts a MinIO container and returns its base endpoint.
func setupMinio(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        minioImage,
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     minioUser,
			"MINIO_ROOT_PASSWORD": minioPass,
		},
		Cmd:        []string{"server", "/data"},
		WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "9000/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, port.Port())
}

func TestS3Store_Minio(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping MinIO container test in short mode")
	}

	endpoint := setupMinio(t)
	s, err := blobx.NewS3Store(context.Background(), blobx.S3Config{
		Bucket:    "dds-test",
		Endpoint:  endpoint,
		AccessKey: minioUser,
		SecretKey: minioPass,
		PathStyle: true,
	})
	require.NoError(t, err)
	require.NoError(t, s.EnsureBucket(context.Background()))
	require.NoError(t, s.EnsureBucket(context.Background()))

	exerciseStore(t, s)
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	_, err := blobx.NewS3Store(context.Background(), blobx.S3Config{})
	require.Error(t, err)
}
