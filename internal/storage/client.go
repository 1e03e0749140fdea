// Package storage implement the document store adapter backed by Google
// Cloud Storage. Uploads and deletes are retried a bounded number of times;
// validation happens before any byte leaves the process.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"JobBridge-backend/internal/utilities"
)

// ErrObjectNotFound is returned when a delete or download references a blob
// that does not exist in the bucket.
var ErrObjectNotFound = errors.New("storage object not found")

// StorageClient is the blob store boundary consumed by controllers and the
// orphan sweeper.
type StorageClient interface {
	UploadFile(ctx context.Context, objectName string, fileData io.Reader, progress chan<- int64) error
	DownloadFile(ctx context.Context, objectName string) (io.ReadCloser, int64, error)
	DeleteFile(ctx context.Context, objectName string) error
	ListObjects(ctx context.Context) ([]string, error)
}

// CloudStorageClient talks to a single GCS bucket.
type CloudStorageClient struct {
	BucketName string
	Client     *storage.Client
}

// NewCloudStorageClient construct a client for the given bucket. Credentials
// come from the environment (application default credentials).
func NewCloudStorageClient(ctx context.Context, bucketName string) (*CloudStorageClient, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cloud storage client")
	}
	return &CloudStorageClient{
		BucketName: bucketName,
		Client:     client,
	}, nil
}

// NewCloudStorageClientFromEnv returns nil when no bucket is configured, which
// switches file persistence to inline database rows.
func NewCloudStorageClientFromEnv(ctx context.Context) (StorageClient, error) {
	bucket := os.Getenv("STORAGE_BUCKET")
	if bucket == "" {
		log.Info("STORAGE_BUCKET not set, storing file content inline")
		return nil, nil
	}
	return NewCloudStorageClient(ctx, bucket)
}

// progressReader reports cumulative bytes read on a channel while copying.
type progressReader struct {
	r        io.Reader
	total    int64
	progress chan<- int64
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.total += int64(n)
		select {
		case p.progress <- p.total:
		default:
			// slow subscriber, skip the sample
		}
	}
	return n, err
}

// UploadFile writes fileData to the bucket under objectName, retrying
// transient failures with exponential backoff. When progress is non-nil it
// receives cumulative byte counts and is closed on return.
func (c *CloudStorageClient) UploadFile(ctx context.Context, objectName string, fileData io.Reader, progress chan<- int64) error {
	if progress != nil {
		defer close(progress)
	}

	// The reader may not be seekable, buffer once so retries can replay it.
	data, err := io.ReadAll(fileData)
	if err != nil {
		return errors.Wrap(err, "failed to read upload data")
	}

	obj := c.Client.Bucket(c.BucketName).Object(objectName)

	return utilities.Retry(ctx, utilities.DefaultRetryAttempts, utilities.DefaultRetryBackoff, func() error {
		// Progress counts bytes handed to the bucket writer, restarting
		// with each attempt.
		var src io.Reader = bytes.NewReader(data)
		if progress != nil {
			src = &progressReader{r: src, progress: progress}
		}

		wc := obj.NewWriter(ctx)
		if _, err := io.Copy(wc, src); err != nil {
			_ = wc.Close()
			return fmt.Errorf("failed to write data to object: %v", err)
		}
		if err := wc.Close(); err != nil {
			return fmt.Errorf("failed to close object writer: %v", err)
		}
		return nil
	})
}

// DownloadFile opens a reader on the stored object and reports its size.
func (c *CloudStorageClient) DownloadFile(ctx context.Context, objectName string) (io.ReadCloser, int64, error) {
	obj := c.Client.Bucket(c.BucketName).Object(objectName)

	reader, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, 0, ErrObjectNotFound
		}
		return nil, 0, errors.Wrapf(err, "failed to open object %s", objectName)
	}

	return reader, reader.Attrs.Size, nil
}

// DeleteFile removes the object, retrying transient failures. Deleting an
// object that is already gone returns ErrObjectNotFound.
func (c *CloudStorageClient) DeleteFile(ctx context.Context, objectName string) error {
	obj := c.Client.Bucket(c.BucketName).Object(objectName)

	err := utilities.Retry(ctx, utilities.DefaultRetryAttempts, utilities.DefaultRetryBackoff, func() error {
		err := obj.Delete(ctx)
		if errors.Is(err, storage.ErrObjectNotExist) {
			// already gone, no retry will change that
			return utilities.Permanent(ErrObjectNotFound)
		}
		return err
	})
	if errors.Is(err, ErrObjectNotFound) {
		return ErrObjectNotFound
	}
	if err != nil {
		return errors.Wrapf(err, "failed to delete object %s", objectName)
	}
	return nil
}
