package s3client

import (
	"context"
	"io"
	"time"
)

// ObjectMetadata describes one remote object as returned by listing.
type ObjectMetadata struct {
	Key     string
	Size    int64
	ModTime time.Time
}

type ListObjectsRequest struct {
	Bucket string
	Prefix string
}

type PutObjectRequest struct {
	Bucket      string
	Key         string
	Body        io.Reader
	Size        int64
	ContentType string
}

type DeleteObjectsRequest struct {
	Bucket string
	Keys   []string
}

// Client is the minimal object-storage surface the sync and delete
// operations need. The AWS implementation lives in aws_client.go; tests
// substitute func-field mocks.
type Client interface {
	ListObjects(ctx context.Context, req *ListObjectsRequest) ([]ObjectMetadata, error)
	PutObject(ctx context.Context, req *PutObjectRequest) error
	DeleteObjects(ctx context.Context, req *DeleteObjectsRequest) error
}
