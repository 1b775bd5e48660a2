package models

import (
	"fmt"
	"strconv"
	"strings"
)

// JobStatus is the lifecycle state of a job. Values are persisted as integers
// and their order is significant for sorting and monitoring.
type JobStatus int

const (
	StatusNone JobStatus = iota
	StatusSubmitted
	StatusQueued
	StatusStarted
	StatusFinished
	StatusError
)

var statusNames = [...]string{
	StatusNone:      "NONE",
	StatusSubmitted: "SUBMITTED",
	StatusQueued:    "QUEUED",
	StatusStarted:   "STARTED",
	StatusFinished:  "FINISHED",
	StatusError:     "ERROR",
}

// String returns the upper-case status name.
func (s JobStatus) String() string {
	if !s.Valid() {
		return fmt.Sprintf("JobStatus(%d)", int(s))
	}
	return statusNames[s]
}

// Valid reports whether s is one of the defined statuses.
func (s JobStatus) Valid() bool {
	return s >= StatusNone && s <= StatusError
}

// Terminal reports whether no further work is expected for the job.
func (s JobStatus) Terminal() bool {
	return s == StatusFinished || s == StatusError
}

// ParseJobStatus maps a status name (case-insensitive) or its integer value
// to a JobStatus.
func ParseJobStatus(name string) (JobStatus, error) {
	name = strings.TrimSpace(name)
	for i, n := range statusNames {
		if strings.EqualFold(n, name) {
			return JobStatus(i), nil
		}
	}
	if n, err := strconv.Atoi(name); err == nil && JobStatus(n).Valid() {
		return JobStatus(n), nil
	}
	return StatusNone, fmt.Errorf("unknown job status %q", name)
}

// statusFromValue converts a decoded document value into a JobStatus.
// JSON yields float64, CBOR uint64 and Firestore int64, so every integral
// kind is accepted.
func statusFromValue(v any) (JobStatus, bool) {
	var n int64
	switch x := v.(type) {
	case JobStatus:
		n = int64(x)
	case int:
		n = int64(x)
	case int8:
		n = int64(x)
	case int16:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint:
		n = int64(x)
	case uint8:
		n = int64(x)
	case uint16:
		n = int64(x)
	case uint32:
		n = int64(x)
	case uint64:
		if x > uint64(StatusError) {
			return StatusNone, false
		}
		n = int64(x)
	case float32:
		if float32(int64(x)) != x {
			return StatusNone, false
		}
		n = int64(x)
	case float64:
		if float64(int64(x)) != x {
			return StatusNone, false
		}
		n = int64(x)
	default:
		return StatusNone, false
	}
	s := JobStatus(n)
	if !s.Valid() {
		return StatusNone, false
	}
	return s, true
}
