package storage

import (
	"context"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"

	"JobBridge-backend/internal/database"
	"JobBridge-backend/internal/model"
)

// ListObjects returns the names of every object in the bucket.
func (c *CloudStorageClient) ListObjects(ctx context.Context) ([]string, error) {
	var names []string

	it := c.Client.Bucket(c.BucketName).Objects(ctx, &storage.Query{})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to list bucket objects")
		}
		names = append(names, attrs.Name)
	}

	return names, nil
}

// SweepOrphans deletes blobs that no file record references. A submission
// that fails between upload and record creation leaves such a blob behind;
// the sweep is the compensating cleanup. Returns the number of blobs removed.
func SweepOrphans(ctx context.Context, client StorageClient, db *database.DBinstanceStruct) (int, error) {
	if client == nil {
		return 0, nil
	}

	objects, err := client.ListObjects(ctx)
	if err != nil {
		return 0, err
	}

	var referenced []string
	if err := db.Model(&model.File{}).
		Where("storage_object_name IS NOT NULL").
		Pluck("storage_object_name", &referenced).Error; err != nil {
		return 0, errors.Wrap(err, "failed to load referenced object names")
	}

	orphans, _ := lo.Difference(objects, referenced)

	removed := 0
	for _, name := range orphans {
		if err := client.DeleteFile(ctx, name); err != nil {
			log.WithError(err).WithField("object", name).Warn("failed to delete orphaned blob")
			continue
		}
		removed++
	}

	if removed > 0 {
		log.WithField("count", removed).Info("removed orphaned storage objects")
	}
	return removed, nil
}
