// Package errors provides error types for staging and bucket operations.
package errors

import (
	"errors"
	"fmt"
)

// Error wraps a failed operation with the bucket/key it was acting on.
type Error struct {
	// Op is the operation that failed (e.g. "stage", "sync", "delete-tree")
	Op string

	// Bucket is the bucket name, if applicable
	Bucket string

	// Key is the object key or local path involved, if applicable
	Key string

	// Err is the underlying error
	Err error
}

func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}

// NewBucketError creates a new Error with bucket context.
func NewBucketError(op, bucket string, err error) *Error {
	return &Error{Op: op, Bucket: bucket, Err: err}
}

// NewObjectError creates a new Error with bucket and key context.
func NewObjectError(op, bucket, key string, err error) *Error {
	return &Error{Op: op, Bucket: bucket, Key: key, Err: err}
}

// Sentinel errors for the failure kinds callers branch on with errors.Is().
var (
	// ErrStaging indicates a local input could not be staged (missing,
	// unreadable, or a bad archive). Nothing was sent to the remote side.
	ErrStaging = errors.New("stagebucket: staging failed")

	// ErrSync indicates the remote synchronization failed.
	ErrSync = errors.New("stagebucket: sync failed")

	// ErrDelete indicates the remote tree deletion failed.
	ErrDelete = errors.New("stagebucket: delete failed")

	// ErrNotFound indicates an ancestor-directory search reached the
	// filesystem root without a match.
	ErrNotFound = errors.New("stagebucket: not found")
)

// Staging wraps err as a staging failure for path.
func Staging(path string, err error) *Error {
	return &Error{Op: "stage", Key: path, Err: fmt.Errorf("%w: %w", ErrStaging, err)}
}

// Sync wraps err as a sync failure against bucket/prefix.
func Sync(bucket, prefix string, err error) *Error {
	return &Error{Op: "sync", Bucket: bucket, Key: prefix, Err: fmt.Errorf("%w: %w", ErrSync, err)}
}

// Delete wraps err as a tree-deletion failure against bucket/prefix.
func Delete(bucket, prefix string, err error) *Error {
	return &Error{Op: "delete-tree", Bucket: bucket, Key: prefix, Err: fmt.Errorf("%w: %w", ErrDelete, err)}
}
