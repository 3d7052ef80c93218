// Package syncer publishes staged local file trees to an object-storage
// prefix and removes whole remote trees.
package syncer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/shipyard-ci/stagebucket/errors"
	"github.com/shipyard-ci/stagebucket/internal/staging"
	"github.com/shipyard-ci/stagebucket/pkg/s3client"
)

// SyncOptions modify a sync run.
type SyncOptions struct {
	// Delete removes remote objects under the prefix that are absent from
	// the staged tree.
	Delete bool

	// DryRun reports planned actions without touching the remote side.
	DryRun bool
}

// SyncRequest describes one publication of a file set to bucket/prefix.
// Files are staged in order; empty entries are skipped, zip files are
// expanded, everything else is copied flat.
type SyncRequest struct {
	Bucket  string
	Prefix  string
	Files   []string
	Options SyncOptions
}

// BucketSyncer stages input files into a scratch directory and mirrors the
// result to a bucket prefix in one blocking call. The staging directory is
// exclusively owned by the running sync; callers wanting concurrent syncs
// must construct syncers with distinct staging roots.
type BucketSyncer struct {
	client     s3client.Client
	stagingDir string
}

// NewBucketSyncer returns a syncer staging into stagingDir. An empty
// stagingDir selects the well-known default under the working directory.
func NewBucketSyncer(client s3client.Client, stagingDir string) *BucketSyncer {
	if stagingDir == "" {
		stagingDir = staging.DefaultDirName
	}
	return &BucketSyncer{
		client:     client,
		stagingDir: stagingDir,
	}
}

// Sync runs the full staging and synchronization sequence. Any staging
// failure aborts before the first remote call; a remote failure fails the
// whole operation with no partial-success reporting.
func (s *BucketSyncer) Sync(ctx context.Context, req SyncRequest) error {
	area := staging.New(s.stagingDir)
	if err := area.Reset(); err != nil {
		return err
	}

	for _, file := range req.Files {
		if err := area.Add(file); err != nil {
			return err
		}
	}

	local, err := s.gatherLocal(area)
	if err != nil {
		return err
	}

	keyPrefix := NormalizePrefix(req.Prefix)
	remote, err := s.gatherRemote(ctx, req.Bucket, keyPrefix)
	if err != nil {
		return errors.Sync(req.Bucket, req.Prefix, err)
	}

	plan := BuildPlan(local, remote, keyPrefix, req.Options.Delete)

	if req.Options.DryRun {
		reportPlan(req.Bucket, plan)
		return nil
	}

	start := time.Now()
	uploaded, deleted, err := s.execute(ctx, req.Bucket, plan)
	if err != nil {
		return errors.Sync(req.Bucket, req.Prefix, err)
	}

	log.Infof("sync complete for s3://%s/%s: %d uploaded, %d deleted in %s",
		req.Bucket, keyPrefix, uploaded, deleted, time.Since(start).Round(time.Millisecond))
	return nil
}

func (s *BucketSyncer) gatherLocal(area *staging.Area) ([]LocalFile, error) {
	relPaths, err := area.Files()
	if err != nil {
		return nil, err
	}

	files := make([]LocalFile, 0, len(relPaths))
	for _, rel := range relPaths {
		abs := filepath.Join(area.Root(), rel)
		info, err := os.Stat(abs)
		if err != nil {
			return nil, errors.Staging(abs, err)
		}
		files = append(files, LocalFile{
			RelPath: rel,
			AbsPath: abs,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}

func (s *BucketSyncer) gatherRemote(ctx context.Context, bucket, keyPrefix string) ([]RemoteFile, error) {
	objects, err := s.client.ListObjects(ctx, &s3client.ListObjectsRequest{
		Bucket: bucket,
		Prefix: keyPrefix,
	})
	if err != nil {
		return nil, err
	}

	remote := make([]RemoteFile, 0, len(objects))
	for _, obj := range objects {
		remote = append(remote, RemoteFile{
			RelKey:  strings.TrimPrefix(obj.Key, keyPrefix),
			Size:    obj.Size,
			ModTime: obj.ModTime,
		})
	}
	return remote, nil
}

// execute runs the plan sequentially. Uploads happen before deletes so an
// interrupted run never leaves the prefix emptier than it started.
func (s *BucketSyncer) execute(ctx context.Context, bucket string, plan []Item) (uploaded, deleted int, err error) {
	var deleteKeys []string

	for _, item := range plan {
		switch item.Action {
		case ActionUpload:
			if err := s.uploadItem(ctx, bucket, item); err != nil {
				return uploaded, deleted, err
			}
			uploaded++
		case ActionDelete:
			deleteKeys = append(deleteKeys, item.Key)
		case ActionSkip:
			log.Debugf("skip s3://%s/%s: %s", bucket, item.Key, item.Reason)
		}
	}

	if len(deleteKeys) > 0 {
		if err := s.client.DeleteObjects(ctx, &s3client.DeleteObjectsRequest{
			Bucket: bucket,
			Keys:   deleteKeys,
		}); err != nil {
			return uploaded, deleted, err
		}
		for _, key := range deleteKeys {
			log.Infof("delete: s3://%s/%s", bucket, key)
		}
		deleted = len(deleteKeys)
	}

	return uploaded, deleted, nil
}

func (s *BucketSyncer) uploadItem(ctx context.Context, bucket string, item Item) error {
	file, err := os.Open(item.LocalPath)
	if err != nil {
		return fmt.Errorf("open staged file: %w", err)
	}
	defer file.Close()

	log.Infof("upload: %s to s3://%s/%s (%s)", item.LocalPath, bucket, item.Key, item.Reason)
	return s.client.PutObject(ctx, &s3client.PutObjectRequest{
		Bucket:      bucket,
		Key:         item.Key,
		Body:        file,
		Size:        item.Size,
		ContentType: s3client.GuessContentType(item.LocalPath),
	})
}

func reportPlan(bucket string, plan []Item) {
	for _, item := range plan {
		switch item.Action {
		case ActionUpload:
			log.Infof("(dryrun) upload: %s to s3://%s/%s (%s)", item.LocalPath, bucket, item.Key, item.Reason)
		case ActionDelete:
			log.Infof("(dryrun) delete: s3://%s/%s (%s)", bucket, item.Key, item.Reason)
		}
	}
}
