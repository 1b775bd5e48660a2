// Package blob implements the two job buckets as directories on the local
// filesystem.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/raphaelgruber/impression-go/internal/models"
	"github.com/raphaelgruber/impression-go/internal/store"
)

// LocalFS stores bucket objects as files under Root/<bucket name>.
type LocalFS struct {
	Root         string
	InputBucket  string
	OutputBucket string
}

// NewLocalFS creates the bucket directories under root.
func NewLocalFS(root, inputBucket, outputBucket string) (*LocalFS, error) {
	l := &LocalFS{Root: root, InputBucket: inputBucket, OutputBucket: outputBucket}
	for _, b := range []store.Bucket{store.BucketInput, store.BucketOutput} {
		if err := os.MkdirAll(l.dir(b), 0o755); err != nil {
			return nil, fmt.Errorf("create %s bucket: %w", b, err)
		}
	}
	return l, nil
}

func (l *LocalFS) dir(b store.Bucket) string {
	if b == store.BucketOutput {
		return filepath.Join(l.Root, l.OutputBucket)
	}
	return filepath.Join(l.Root, l.InputBucket)
}

// objectPath maps an object name into the bucket directory. Names that
// would escape the bucket are rejected.
func (l *LocalFS) objectPath(b store.Bucket, name string) (string, error) {
	clean := filepath.Clean(name)
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object name %q", name)
	}
	return filepath.Join(l.dir(b), clean), nil
}

// Upload implements store.FileStore.
func (l *LocalFS) Upload(_ context.Context, bucket store.Bucket, localPath, name string) error {
	abs, err := l.objectPath(bucket, name)
	if err != nil {
		return err
	}
	src, err := os.Open(localPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: file upload failed: %s not found", models.ErrFileTransfer, localPath)
		}
		return fmt.Errorf("upload %s: %w", name, err)
	}
	defer src.Close()
	return copyTo(abs, src)
}

// Download implements store.FileStore.
func (l *LocalFS) Download(_ context.Context, bucket store.Bucket, destPath, name string) error {
	abs, err := l.objectPath(bucket, name)
	if err != nil {
		return err
	}
	src, err := os.Open(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: file download failed: %s not found in %s", models.ErrFileTransfer, name, l.dir(bucket))
		}
		return fmt.Errorf("download %s: %w", name, err)
	}
	defer src.Close()
	return copyTo(destPath, src)
}

// Delete implements store.FileStore.
func (l *LocalFS) Delete(_ context.Context, bucket store.Bucket, name string) error {
	abs, err := l.objectPath(bucket, name)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

// Exists implements store.FileStore.
func (l *LocalFS) Exists(_ context.Context, bucket store.Bucket, name string) (bool, error) {
	abs, err := l.objectPath(bucket, name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(abs)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// Close implements store.FileStore.
func (l *LocalFS) Close() error { return nil }

// copyTo writes r to path through a temp file so readers never see a
// partial object.
func copyTo(path string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
