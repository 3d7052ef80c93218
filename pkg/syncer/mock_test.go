package syncer

import (
	"context"
	"fmt"

	"github.com/shipyard-ci/stagebucket/pkg/s3client"
)

// mockClient is a func-field mock of s3client.Client that records calls.
type mockClient struct {
	listObjectsFunc   func(ctx context.Context, req *s3client.ListObjectsRequest) ([]s3client.ObjectMetadata, error)
	putObjectFunc     func(ctx context.Context, req *s3client.PutObjectRequest) error
	deleteObjectsFunc func(ctx context.Context, req *s3client.DeleteObjectsRequest) error

	listCalls   []*s3client.ListObjectsRequest
	putCalls    []*s3client.PutObjectRequest
	deleteCalls []*s3client.DeleteObjectsRequest
}

func (m *mockClient) ListObjects(ctx context.Context, req *s3client.ListObjectsRequest) ([]s3client.ObjectMetadata, error) {
	m.listCalls = append(m.listCalls, req)
	if m.listObjectsFunc != nil {
		return m.listObjectsFunc(ctx, req)
	}
	return nil, nil
}

func (m *mockClient) PutObject(ctx context.Context, req *s3client.PutObjectRequest) error {
	m.putCalls = append(m.putCalls, req)
	if m.putObjectFunc != nil {
		return m.putObjectFunc(ctx, req)
	}
	return nil
}

func (m *mockClient) DeleteObjects(ctx context.Context, req *s3client.DeleteObjectsRequest) error {
	m.deleteCalls = append(m.deleteCalls, req)
	if m.deleteObjectsFunc != nil {
		return m.deleteObjectsFunc(ctx, req)
	}
	return nil
}

func failingList(err error) func(context.Context, *s3client.ListObjectsRequest) ([]s3client.ObjectMetadata, error) {
	return func(context.Context, *s3client.ListObjectsRequest) ([]s3client.ObjectMetadata, error) {
		return nil, err
	}
}

func listing(objects ...s3client.ObjectMetadata) func(context.Context, *s3client.ListObjectsRequest) ([]s3client.ObjectMetadata, error) {
	return func(context.Context, *s3client.ListObjectsRequest) ([]s3client.ObjectMetadata, error) {
		return objects, nil
	}
}

var errRemote = fmt.Errorf("remote unavailable")
