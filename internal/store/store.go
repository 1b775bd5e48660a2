// Package store defines the persistence contracts every platform implements:
// a JobStore for job documents and a FileStore for the input/output buckets.
package store

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/raphaelgruber/impression-go/internal/models"
)

// JobStore persists job documents, one document per job keyed by job id.
type JobStore interface {
	// Save writes the job's full document, replacing any previous document
	// at the resolved id (explicitID, else job.ID, else a generated id).
	// It sets job.ID to the resolved id and returns it. Empty jobs fail
	// with models.ErrCreation.
	Save(ctx context.Context, job *models.Job, explicitID string) (string, error)

	// LoadByID fetches a job and checks that requestingUser owns it unless
	// adminOverride is set. Fails with models.ErrNotFound or models.ErrAccess.
	LoadByID(ctx context.Context, id, requestingUser string, adminOverride bool) (*models.Job, error)

	// Delete removes the job's document and reports whether it is now absent.
	// Jobs without an id are a no-op returning false.
	Delete(ctx context.Context, job *models.Job) (bool, error)

	// ListByUser returns every job owned by user, in backend order.
	ListByUser(ctx context.Context, user string) ([]*models.Job, error)

	// ListIDsByUser returns the ids of the jobs ListByUser would return.
	ListIDsByUser(ctx context.Context, user string) ([]string, error)

	Close(ctx context.Context) error
}

// Bucket selects one of the two file buckets.
type Bucket int

const (
	BucketInput Bucket = iota
	BucketOutput
)

func (b Bucket) String() string {
	switch b {
	case BucketInput:
		return "input"
	case BucketOutput:
		return "output"
	}
	return fmt.Sprintf("Bucket(%d)", int(b))
}

// ParseBucket maps "input" or "output" to a Bucket.
func ParseBucket(s string) (Bucket, error) {
	switch s {
	case "input", "in":
		return BucketInput, nil
	case "output", "out":
		return BucketOutput, nil
	}
	return 0, fmt.Errorf("unknown bucket %q (expected input or output)", s)
}

// FileStore moves job files between the local filesystem and the buckets.
// Object names are flat; uploads overwrite.
type FileStore interface {
	// Upload copies localPath to bucket/name. A missing local file fails
	// with models.ErrFileTransfer.
	Upload(ctx context.Context, bucket Bucket, localPath, name string) error

	// Download copies bucket/name to destPath. A missing object fails with
	// models.ErrFileTransfer.
	Download(ctx context.Context, bucket Bucket, destPath, name string) error

	// Delete removes bucket/name. Missing objects are not an error.
	Delete(ctx context.Context, bucket Bucket, name string) error

	Exists(ctx context.Context, bucket Bucket, name string) (bool, error)

	Close() error
}

// ObjectName returns name, or the base name of path when name is empty.
func ObjectName(path, name string) string {
	if name != "" {
		return name
	}
	return filepath.Base(path)
}

// UploadInput uploads localPath to the input bucket. An empty name uses the
// file's base name.
func UploadInput(ctx context.Context, fs FileStore, localPath, name string) error {
	return fs.Upload(ctx, BucketInput, localPath, ObjectName(localPath, name))
}

// DownloadInput downloads an input object to destPath. An empty name uses
// the base name of destPath.
func DownloadInput(ctx context.Context, fs FileStore, destPath, name string) error {
	return fs.Download(ctx, BucketInput, destPath, ObjectName(destPath, name))
}

// UploadOutput uploads localPath to the output bucket.
func UploadOutput(ctx context.Context, fs FileStore, localPath, name string) error {
	return fs.Upload(ctx, BucketOutput, localPath, ObjectName(localPath, name))
}

// DownloadOutput downloads an output object to destPath.
func DownloadOutput(ctx context.Context, fs FileStore, destPath, name string) error {
	return fs.Download(ctx, BucketOutput, destPath, ObjectName(destPath, name))
}

// DeleteInput removes an object from the input bucket.
func DeleteInput(ctx context.Context, fs FileStore, name string) error {
	return fs.Delete(ctx, BucketInput, name)
}

// DeleteOutput removes an object from the output bucket.
func DeleteOutput(ctx context.Context, fs FileStore, name string) error {
	return fs.Delete(ctx, BucketOutput, name)
}

// ResolveID picks the document id Save writes to: the explicit id, else the
// job's current id. An empty result means the backend must generate one.
func ResolveID(job *models.Job, explicitID string) string {
	if explicitID != "" {
		return explicitID
	}
	return job.ID
}

// CheckSavable rejects placeholder jobs before any write.
func CheckSavable(job *models.Job) error {
	if job.IsEmpty() {
		return fmt.Errorf("%w: cannot add empty job to database", models.ErrCreation)
	}
	return nil
}

// CheckOwner enforces the ownership rule shared by every backend's LoadByID.
// The error names the user and id only, never document contents.
func CheckOwner(job *models.Job, id, requestingUser string, adminOverride bool) error {
	if job.User == requestingUser || adminOverride {
		return nil
	}
	return fmt.Errorf("%w: %s does not own %s", models.ErrAccess, requestingUser, id)
}
