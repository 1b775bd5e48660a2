package models

import (
	"testing"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

func TestRecordIDString(t *testing.T) {
	tests := []struct {
		name    string
		id      surrealmodels.RecordID
		want    string
		wantErr bool
	}{
		{"string id", surrealmodels.RecordID{Table: "job", ID: "job-1"}, "job-1", false},
		{"uuid-like id", surrealmodels.RecordID{Table: "job", ID: "3f2b8c1e-0000-4000-8000-000000000000"}, "3f2b8c1e-0000-4000-8000-000000000000", false},
		{"numeric id", surrealmodels.RecordID{Table: "job", ID: 42}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RecordIDString(tt.id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("RecordIDString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("RecordIDString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDocString(t *testing.T) {
	doc := map[string]any{"user": "alice", "status": 1, "info": nil}

	tests := []struct {
		field string
		want  string
	}{
		{"user", "alice"},
		{"status", ""},
		{"info", ""},
		{"missing", ""},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			if got := DocString(doc, tt.field); got != tt.want {
				t.Errorf("DocString(%q) = %q, want %q", tt.field, got, tt.want)
			}
		})
	}
}
