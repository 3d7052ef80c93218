package packager

import (
	"context"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/shipyard-ci/stagebucket/errors"
	"github.com/shipyard-ci/stagebucket/pkg/pathutil"
	"github.com/shipyard-ci/stagebucket/pkg/s3client"
	"github.com/shipyard-ci/stagebucket/pkg/syncer"
)

// Publisher pushes packaged artifacts to a bucket, choosing the transfer
// path from the artifact's mode.
type Publisher struct {
	client s3client.Client
	syncer *syncer.BucketSyncer
}

func NewPublisher(client s3client.Client, bucketSyncer *syncer.BucketSyncer) *Publisher {
	return &Publisher{
		client: client,
		syncer: bucketSyncer,
	}
}

// Publish writes the artifact under bucket and basePrefix. Sync-mode
// artifacts go through the staging sync; copy-mode artifacts are uploaded
// object by object under the artifact's key prefix.
func (p *Publisher) Publish(ctx context.Context, artifact *Artifact, bucket, basePrefix string, dryRun bool) error {
	prefix := joinPrefix(basePrefix, artifact.KeyPrefix)

	switch artifact.Mode {
	case ModeSync:
		return p.syncer.Sync(ctx, syncer.SyncRequest{
			Bucket: bucket,
			Prefix: prefix,
			Files:  artifact.Files,
			Options: syncer.SyncOptions{
				Delete: artifact.DeleteExtraneous,
				DryRun: dryRun,
			},
		})
	case ModeCopy:
		return p.copyFiles(ctx, artifact, bucket, prefix, dryRun)
	default:
		return fmt.Errorf("unknown publish mode: %d", artifact.Mode)
	}
}

func (p *Publisher) copyFiles(ctx context.Context, artifact *Artifact, bucket, prefix string, dryRun bool) error {
	for _, file := range artifact.Files {
		key := syncer.NormalizePrefix(prefix) + pathutil.Name(file)

		if dryRun {
			log.Infof("(dryrun) upload: %s to s3://%s/%s", file, bucket, key)
			continue
		}

		if err := p.copyFile(ctx, bucket, key, file); err != nil {
			return errors.NewObjectError("publish", bucket, key, err)
		}
		log.Infof("upload: %s to s3://%s/%s", file, bucket, key)
	}
	return nil
}

func (p *Publisher) copyFile(ctx context.Context, bucket, key, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	return p.client.PutObject(ctx, &s3client.PutObjectRequest{
		Bucket:      bucket,
		Key:         key,
		Body:        file,
		Size:        info.Size(),
		ContentType: s3client.GuessContentType(path),
	})
}

func joinPrefix(base, rest string) string {
	base = strings.TrimRight(base, "/")
	if base == "" {
		return rest
	}
	return base + "/" + rest
}
