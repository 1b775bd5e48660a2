package models

import (
	"testing"
	"time"
)

func TestJobStatusOrder(t *testing.T) {
	want := []string{"NONE", "SUBMITTED", "QUEUED", "STARTED", "FINISHED", "ERROR"}
	for i, name := range want {
		if got := JobStatus(i).String(); got != name {
			t.Errorf("JobStatus(%d).String() = %q, want %q", i, got, name)
		}
	}
	if JobStatus(6).Valid() {
		t.Error("JobStatus(6) should be invalid")
	}
}

func TestParseJobStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    JobStatus
		wantErr bool
	}{
		{"finished", StatusFinished, false},
		{"ERROR", StatusError, false},
		{" queued ", StatusQueued, false},
		{"3", StatusStarted, false},
		{"9", StatusNone, true},
		{"done", StatusNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseJobStatus(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseJobStatus(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseJobStatus(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTimeFormat(t *testing.T) {
	ts := time.Date(2021, 12, 31, 23, 59, 0, 0, time.UTC)
	s := FormatTime(&ts)
	if s != "21-12-31::23:59" {
		t.Fatalf("FormatTime = %v", s)
	}
	back := ParseTime(s)
	if back == nil || !back.Equal(ts) {
		t.Fatalf("ParseTime(%v) = %v, want %v", s, back, ts)
	}
	if FormatTime(nil) != nil {
		t.Error("FormatTime(nil) should be nil")
	}
	for _, bad := range []any{nil, 12, "2021-12-31", "21-12-31 23:59"} {
		if ParseTime(bad) != nil {
			t.Errorf("ParseTime(%v) should be nil", bad)
		}
	}
}
