package models

import (
	"sort"
	"strings"
	"time"
)

// Doc is the document-store representation of a job.
type Doc map[string]any

// Document field names.
const (
	FieldJobID          = "job_id"
	FieldUser           = "user"
	FieldStatus         = "status"
	FieldInputName      = "input_name"
	FieldUploadName     = "upload_name"
	FieldOutputName     = "output_name"
	FieldModel          = "model"
	FieldSubmissionTime = "submission_time"
	FieldStartTime      = "start_time"
	FieldCompletionTime = "completion_time"
	FieldInfo           = "info"
	FieldErr            = "err"
	FieldOutputFileURL  = "output_file_url"
)

// DocFields lists every field ToDoc emits, in schema order.
var DocFields = []string{
	FieldJobID, FieldUser, FieldStatus, FieldInputName, FieldUploadName,
	FieldOutputName, FieldModel, FieldSubmissionTime, FieldStartTime,
	FieldCompletionTime, FieldInfo, FieldErr, FieldOutputFileURL,
}

// ToDoc snapshots the job as a document.
func (j *Job) ToDoc() Doc {
	return Doc{
		FieldJobID:          nullable(j.ID),
		FieldUser:           nullable(j.User),
		FieldStatus:         int(j.Status),
		FieldInputName:      nullable(j.InputName),
		FieldUploadName:     nullable(j.UploadName),
		FieldOutputName:     nullable(j.OutputName),
		FieldModel:          nullable(j.Model),
		FieldSubmissionTime: FormatTime(j.SubmissionTime),
		FieldStartTime:      FormatTime(j.StartTime),
		FieldCompletionTime: FormatTime(j.CompletionTime),
		FieldInfo:           j.Info,
		FieldErr:            j.Err,
		FieldOutputFileURL:  nullable(j.OutputFileURL),
	}
}

// FromDoc hydrates a job from a stored document. Unknown keys are ignored
// and invalid statuses or timestamps leave the field at its default.
func FromDoc(doc map[string]any) *Job {
	j, _ := DecodeDoc(doc)
	return j
}

// DecodeDoc is FromDoc that also returns the sorted names of recognised
// fields whose values were rejected.
func DecodeDoc(doc map[string]any) (*Job, []string) {
	j := &Job{}
	var skipped []string

	for k, v := range doc {
		switch {
		case strings.Contains(k, "time"):
			target := j.timeField(k)
			if target == nil {
				continue
			}
			*target = ParseTime(v)
			if v != nil && *target == nil {
				skipped = append(skipped, k)
			}
		case k == FieldStatus:
			s, ok := statusFromValue(v)
			if !ok {
				if v != nil {
					skipped = append(skipped, k)
				}
				continue
			}
			j.Status = s
		default:
			target := j.stringField(k)
			if target == nil {
				continue
			}
			switch s := v.(type) {
			case nil:
				*target = ""
			case string:
				*target = s
			default:
				skipped = append(skipped, k)
			}
		}
	}

	sort.Strings(skipped)
	return j, skipped
}

func (j *Job) timeField(name string) **time.Time {
	switch name {
	case FieldSubmissionTime:
		return &j.SubmissionTime
	case FieldStartTime:
		return &j.StartTime
	case FieldCompletionTime:
		return &j.CompletionTime
	}
	return nil
}

func (j *Job) stringField(name string) *string {
	switch name {
	case FieldJobID:
		return &j.ID
	case FieldUser:
		return &j.User
	case FieldInputName:
		return &j.InputName
	case FieldUploadName:
		return &j.UploadName
	case FieldOutputName:
		return &j.OutputName
	case FieldModel:
		return &j.Model
	case FieldInfo:
		return &j.Info
	case FieldErr:
		return &j.Err
	case FieldOutputFileURL:
		return &j.OutputFileURL
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
