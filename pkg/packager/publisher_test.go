package packager

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipyard-ci/stagebucket/pkg/s3client"
	"github.com/shipyard-ci/stagebucket/pkg/syncer"
)

type recordingClient struct {
	listFunc func(ctx context.Context, req *s3client.ListObjectsRequest) ([]s3client.ObjectMetadata, error)

	putCalls    []*s3client.PutObjectRequest
	deleteCalls []*s3client.DeleteObjectsRequest
}

func (c *recordingClient) ListObjects(ctx context.Context, req *s3client.ListObjectsRequest) ([]s3client.ObjectMetadata, error) {
	if c.listFunc != nil {
		return c.listFunc(ctx, req)
	}
	return nil, nil
}

func (c *recordingClient) PutObject(ctx context.Context, req *s3client.PutObjectRequest) error {
	c.putCalls = append(c.putCalls, req)
	return nil
}

func (c *recordingClient) DeleteObjects(ctx context.Context, req *s3client.DeleteObjectsRequest) error {
	c.deleteCalls = append(c.deleteCalls, req)
	return nil
}

func newTestPublisher(t *testing.T) (*Publisher, *recordingClient) {
	t.Helper()
	client := &recordingClient{}
	bucketSyncer := syncer.NewBucketSyncer(client, filepath.Join(t.TempDir(), "stage"))
	return NewPublisher(client, bucketSyncer), client
}

func TestPublishCopyModeUploadsUnderPrefix(t *testing.T) {
	src := t.TempDir()
	zipPath := filepath.Join(src, "checkout.zip")
	require.NoError(t, os.WriteFile(zipPath, []byte("PK"), 0o644))

	publisher, client := newTestPublisher(t)
	err := publisher.Publish(context.Background(), &Artifact{
		Format:    FormatLambdaZip,
		Files:     []string{zipPath},
		KeyPrefix: "lambda/checkout/abc123",
		Mode:      ModeCopy,
	}, "artifacts", "ci", false)
	require.NoError(t, err)

	require.Len(t, client.putCalls, 1)
	assert.Equal(t, "artifacts", client.putCalls[0].Bucket)
	assert.Equal(t, "ci/lambda/checkout/abc123/checkout.zip", client.putCalls[0].Key)
}

func TestPublishCopyModeDryRunUploadsNothing(t *testing.T) {
	src := t.TempDir()
	tarPath := filepath.Join(src, "api.tar")
	require.NoError(t, os.WriteFile(tarPath, []byte("tar"), 0o644))

	publisher, client := newTestPublisher(t)
	err := publisher.Publish(context.Background(), &Artifact{
		Format:    FormatDockerImage,
		Files:     []string{tarPath},
		KeyPrefix: "images/api/v2",
		Mode:      ModeCopy,
	}, "artifacts", "", true)
	require.NoError(t, err)
	assert.Empty(t, client.putCalls)
}

func TestPublishSyncModeStagesAndUploads(t *testing.T) {
	src := t.TempDir()
	page := filepath.Join(src, "index.html")
	require.NoError(t, os.WriteFile(page, []byte("<html/>"), 0o644))

	publisher, client := newTestPublisher(t)
	err := publisher.Publish(context.Background(), &Artifact{
		Format:    FormatStaticSite,
		Files:     []string{page},
		KeyPrefix: "sites/docs/main",
		Mode:      ModeSync,
	}, "artifacts", "", false)
	require.NoError(t, err)

	require.Len(t, client.putCalls, 1)
	assert.Equal(t, "sites/docs/main/index.html", client.putCalls[0].Key)
}
