package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"

	"github.com/raphaelgruber/impression-go/internal/models"
	"github.com/raphaelgruber/impression-go/internal/store"
)

// FileStore moves job files to and from two Cloud Storage buckets.
type FileStore struct {
	client *storage.Client
	input  *storage.BucketHandle
	output *storage.BucketHandle
	names  [2]string
}

// NewFileStore creates a file store on client for the given bucket names.
func NewFileStore(client *storage.Client, inputBucket, outputBucket string) *FileStore {
	return &FileStore{
		client: client,
		input:  client.Bucket(inputBucket),
		output: client.Bucket(outputBucket),
		names:  [2]string{inputBucket, outputBucket},
	}
}

func (f *FileStore) bucket(b store.Bucket) *storage.BucketHandle {
	if b == store.BucketOutput {
		return f.output
	}
	return f.input
}

func (f *FileStore) bucketName(b store.Bucket) string {
	if b == store.BucketOutput {
		return f.names[1]
	}
	return f.names[0]
}

// Upload implements store.FileStore.
func (f *FileStore) Upload(ctx context.Context, bucket store.Bucket, localPath, name string) error {
	src, err := os.Open(localPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: file upload failed: %s not found", models.ErrFileTransfer, localPath)
		}
		return fmt.Errorf("gcp: upload %s: %w", name, err)
	}
	defer src.Close()

	w := f.bucket(bucket).Object(name).NewWriter(ctx)
	if _, err := io.Copy(w, src); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcp: upload %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcp: upload %s: %w", name, err)
	}
	return nil
}

// Download implements store.FileStore. The destination file is only
// created once the object is known to exist.
func (f *FileStore) Download(ctx context.Context, bucket store.Bucket, destPath, name string) error {
	r, err := f.bucket(bucket).Object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("%w: file download failed: %s not found in %s",
				models.ErrFileTransfer, name, f.bucketName(bucket))
		}
		return fmt.Errorf("gcp: download %s: %w", name, err)
	}
	defer r.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("gcp: download %s: %w", name, err)
	}
	dst, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("gcp: download %s: %w", name, err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		return fmt.Errorf("gcp: download %s: %w", name, err)
	}
	return dst.Close()
}

// Delete implements store.FileStore.
func (f *FileStore) Delete(ctx context.Context, bucket store.Bucket, name string) error {
	err := f.bucket(bucket).Object(name).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("gcp: delete %s: %w", name, err)
	}
	return nil
}

// Exists implements store.FileStore.
func (f *FileStore) Exists(ctx context.Context, bucket store.Bucket, name string) (bool, error) {
	_, err := f.bucket(bucket).Object(name).Attrs(ctx)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrObjectNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("gcp: stat %s: %w", name, err)
	}
}

// Close implements store.FileStore.
func (f *FileStore) Close() error {
	return f.client.Close()
}
