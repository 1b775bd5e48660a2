package memory

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/impression-go/internal/metrics"
	"github.com/raphaelgruber/impression-go/internal/models"
	"github.com/raphaelgruber/impression-go/internal/store/storetest"
)

func TestJobStoreContract(t *testing.T) {
	storetest.RunJobStore(t, NewJobStore(nil, nil))
}

func TestFileStoreContract(t *testing.T) {
	storetest.RunFileStore(t, NewFileStore())
}

func TestListOrderIsFirstSaveOrder(t *testing.T) {
	ctx := context.Background()
	s := NewJobStore(nil, nil)

	for _, id := range []string{"c", "a", "b"} {
		_, err := s.Save(ctx, &models.Job{User: "u", Model: "m"}, id)
		require.NoError(t, err)
	}
	_, err := s.Save(ctx, &models.Job{User: "u", Model: "m2"}, "c")
	require.NoError(t, err)

	ids, err := s.ListIDsByUser(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestCorruptDocumentIsLoggedAndCounted(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	stats := metrics.NewCollector()
	s := NewJobStore(logger, stats)

	s.docs["bad"] = models.Doc{"job_id": "bad", "user": "u", "status": 42, "start_time": "yesterday"}
	s.order = append(s.order, "bad")

	job, err := s.LoadByID(ctx, "bad", "u", false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNone, job.Status)
	assert.Nil(t, job.StartTime)
	assert.Equal(t, int64(2), stats.Counter(metrics.CounterDecodeSkip))
	assert.Contains(t, buf.String(), "ignored invalid job fields")
}

func TestStoredDocumentIsACopy(t *testing.T) {
	ctx := context.Background()
	s := NewJobStore(nil, nil)
	job := &models.Job{User: "u", Model: "m"}
	id, err := s.Save(ctx, job, "")
	require.NoError(t, err)

	job.Model = "changed"
	got, err := s.LoadByID(ctx, id, "u", false)
	require.NoError(t, err)
	assert.Equal(t, "m", got.Model)
}
