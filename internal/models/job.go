// Package models defines the job record persisted by the impression job core.
package models

import (
	"fmt"
	"time"
)

// FileDescriptor names the input file a job runs on.
// InputName is the name the user supplied, UploadName the object name in the
// input bucket.
type FileDescriptor struct {
	InputName  string `json:"input_name" yaml:"input_name"`
	UploadName string `json:"upload_name" yaml:"upload_name"`
}

// Job is one submitted unit of work. Empty strings and nil times mean
// "absent" and are persisted as null.
type Job struct {
	ID   string
	User string

	InputName  string
	UploadName string
	OutputName string

	Model  string
	Status JobStatus

	SubmissionTime *time.Time
	StartTime      *time.Time
	CompletionTime *time.Time

	Info          string
	Err           string
	OutputFileURL string

	platform string
}

// NewJob creates an unsaved job. A nil file is allowed and leaves the file
// names empty, which is how records are built before hydration; a descriptor
// missing either name fails with ErrCreation.
func NewJob(user string, file *FileDescriptor, model string) (*Job, error) {
	j := &Job{User: user, Model: model}
	if file != nil {
		if file.InputName == "" || file.UploadName == "" {
			return nil, fmt.Errorf("%w: invalid file descriptor: input_name and upload_name are required", ErrCreation)
		}
		j.InputName = file.InputName
		j.UploadName = file.UploadName
	}
	return j, nil
}

// NewJobFromMap is NewJob for a loosely typed descriptor such as a decoded
// JSON request body with the keys input_name and upload_name.
func NewJobFromMap(user string, file map[string]any, model string) (*Job, error) {
	if file == nil {
		return NewJob(user, nil, model)
	}
	in, ok1 := file[FieldInputName].(string)
	up, ok2 := file[FieldUploadName].(string)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("%w: invalid file dictionary", ErrCreation)
	}
	return NewJob(user, &FileDescriptor{InputName: in, UploadName: up}, model)
}

// Platform returns the tag of the backend variant that created the job.
func (j *Job) Platform() string {
	return j.platform
}

// WithPlatform tags the job with a platform name and returns it.
func (j *Job) WithPlatform(name string) *Job {
	j.platform = name
	return j
}

// File returns the job's file descriptor, or nil if it has none.
func (j *Job) File() *FileDescriptor {
	if j.InputName == "" && j.UploadName == "" {
		return nil
	}
	return &FileDescriptor{InputName: j.InputName, UploadName: j.UploadName}
}

// IsEmpty reports whether the job has no user, no file and no model.
// Empty jobs are placeholders and are never persisted.
func (j *Job) IsEmpty() bool {
	return j.User == "" && j.File() == nil && j.Model == ""
}

// Advance sets the status and stamps the timestamp that belongs to it, unless
// that timestamp is already set. Transitions are not validated.
func (j *Job) Advance(status JobStatus, now time.Time) {
	j.Status = status
	t := Truncate(now)
	switch status {
	case StatusSubmitted:
		if j.SubmissionTime == nil {
			j.SubmissionTime = &t
		}
	case StatusStarted:
		if j.StartTime == nil {
			j.StartTime = &t
		}
	case StatusFinished, StatusError:
		if j.CompletionTime == nil {
			j.CompletionTime = &t
		}
	}
}

// Duration returns the time between start and completion, or zero when
// either is missing.
func (j *Job) Duration() time.Duration {
	if j.StartTime == nil || j.CompletionTime == nil {
		return 0
	}
	return j.CompletionTime.Sub(*j.StartTime)
}
