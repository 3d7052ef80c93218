package syncer

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/shipyard-ci/stagebucket/errors"
	"github.com/shipyard-ci/stagebucket/pkg/s3client"
)

// DeleteOptions modify a tree deletion.
type DeleteOptions struct {
	// DryRun reports the objects that would be removed without deleting.
	DryRun bool
}

// DeleteRequest identifies the remote tree to remove.
type DeleteRequest struct {
	Bucket  string
	Prefix  string
	Options DeleteOptions
}

// TreeDeleter removes every object at or below a prefix.
type TreeDeleter struct {
	client s3client.Client
}

func NewTreeDeleter(client s3client.Client) *TreeDeleter {
	return &TreeDeleter{client: client}
}

// DeleteTree lists and deletes all objects under the request's prefix. The
// prefix is slash-terminated before listing so that "builds/123" can never
// match objects under "builds/1234".
func (d *TreeDeleter) DeleteTree(ctx context.Context, req DeleteRequest) error {
	keyPrefix := NormalizePrefix(req.Prefix)

	objects, err := d.client.ListObjects(ctx, &s3client.ListObjectsRequest{
		Bucket: req.Bucket,
		Prefix: keyPrefix,
	})
	if err != nil {
		return errors.Delete(req.Bucket, req.Prefix, err)
	}

	if len(objects) == 0 {
		log.Infof("no objects under s3://%s/%s", req.Bucket, keyPrefix)
		return nil
	}

	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		keys = append(keys, obj.Key)
	}

	if req.Options.DryRun {
		for _, key := range keys {
			log.Infof("(dryrun) delete: s3://%s/%s", req.Bucket, key)
		}
		return nil
	}

	if err := d.client.DeleteObjects(ctx, &s3client.DeleteObjectsRequest{
		Bucket: req.Bucket,
		Keys:   keys,
	}); err != nil {
		return errors.Delete(req.Bucket, req.Prefix, err)
	}

	log.Infof("deleted %d objects under s3://%s/%s", len(keys), req.Bucket, keyPrefix)
	return nil
}
