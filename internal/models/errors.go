package models

import "errors"

// Sentinel errors surfaced to callers of the job core.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrCreation indicates a malformed file descriptor or an attempt to
	// persist a job without identifying content.
	ErrCreation = errors.New("job creation failed")

	// ErrNotFound indicates no job document exists for the requested id.
	ErrNotFound = errors.New("job not found")

	// ErrAccess indicates the job exists but belongs to another user and no
	// admin override was granted.
	ErrAccess = errors.New("job access denied")

	// ErrFileTransfer indicates an upload of a missing local file or a
	// download of a missing remote object.
	ErrFileTransfer = errors.New("file transfer failed")
)

// IsHidden reports whether err should be shown as "not found" by surfaces
// that must not reveal other users' job ids.
func IsHidden(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrAccess)
}
