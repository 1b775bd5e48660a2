//go:build integration

package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/impression-go/internal/metrics"
	"github.com/raphaelgruber/impression-go/internal/models"
	"github.com/raphaelgruber/impression-go/internal/store/storetest"
)

// testStore returns a store on the shared container client. Close is not
// called on it: the client belongs to TestMain.
func testStore(stats *metrics.Collector) *JobStore {
	return NewJobStore(testDB, nil, stats)
}

func TestJobStoreContract(t *testing.T) {
	storetest.RunJobStore(t, testStore(nil))
}

func TestStoredDocumentShape(t *testing.T) {
	ctx := context.Background()
	s := testStore(nil)

	job, err := models.NewJob("shape-user", &models.FileDescriptor{InputName: "a.sdf", UploadName: "b.sdf"}, "fchl")
	require.NoError(t, err)
	_, err = s.Save(ctx, job, "shape-job")
	require.NoError(t, err)
	defer func() { _, _ = s.Delete(ctx, job) }()

	doc, err := s.getDoc(ctx, "shape-job")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "shape-job", doc["job_id"])
	assert.Equal(t, "shape-user", doc["user"])
	assert.Equal(t, "b.sdf", doc["upload_name"])
	assert.EqualValues(t, 0, doc["status"])
}

func TestCorruptStatusIsCounted(t *testing.T) {
	ctx := context.Background()
	stats := metrics.NewCollector()
	s := testStore(stats)

	_, err := testDB.Query(ctx, `
		UPSERT type::record("job", "corrupt-job") CONTENT {
			job_id: "corrupt-job", user: "corrupt-user", status: 99,
			submission_time: "not a time", info: "", err: ""
		}
	`, nil)
	require.NoError(t, err)
	defer func() { _, _ = s.Delete(ctx, &models.Job{ID: "corrupt-job"}) }()

	job, err := s.LoadByID(ctx, "corrupt-job", "corrupt-user", false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNone, job.Status)
	assert.Nil(t, job.SubmissionTime)
	assert.Equal(t, int64(2), stats.Counter(metrics.CounterDecodeSkip))
}

func TestWipeData(t *testing.T) {
	ctx := context.Background()
	s := testStore(nil)

	_, err := s.Save(ctx, &models.Job{User: "wipe-user", Model: "m"}, "")
	require.NoError(t, err)
	require.NoError(t, testDB.WipeData(ctx))

	ids, err := s.ListIDsByUser(ctx, "wipe-user")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
