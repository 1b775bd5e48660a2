package platform

import (
	"context"
	"errors"
	"time"

	"github.com/raphaelgruber/impression-go/internal/metrics"
	"github.com/raphaelgruber/impression-go/internal/models"
	"github.com/raphaelgruber/impression-go/internal/store"
)

// instrumentedJobStore records timings for every call and tags returned
// jobs with the platform name.
type instrumentedJobStore struct {
	next     store.JobStore
	platform string
	stats    *metrics.Collector
}

func (s *instrumentedJobStore) Save(ctx context.Context, job *models.Job, explicitID string) (string, error) {
	start := time.Now()
	id, err := s.next.Save(ctx, job, explicitID)
	s.stats.RecordTiming(metrics.OpJobSave, time.Since(start), err)
	if err == nil && job.Platform() == "" {
		job.WithPlatform(s.platform)
	}
	return id, err
}

func (s *instrumentedJobStore) LoadByID(ctx context.Context, id, requestingUser string, adminOverride bool) (*models.Job, error) {
	start := time.Now()
	job, err := s.next.LoadByID(ctx, id, requestingUser, adminOverride)
	s.stats.RecordTiming(metrics.OpJobLoad, time.Since(start), err)
	if errors.Is(err, models.ErrAccess) {
		s.stats.Add(metrics.CounterAccessDenied, 1)
	}
	if err != nil {
		return nil, err
	}
	return job.WithPlatform(s.platform), nil
}

func (s *instrumentedJobStore) Delete(ctx context.Context, job *models.Job) (bool, error) {
	start := time.Now()
	ok, err := s.next.Delete(ctx, job)
	s.stats.RecordTiming(metrics.OpJobDelete, time.Since(start), err)
	return ok, err
}

func (s *instrumentedJobStore) ListByUser(ctx context.Context, user string) ([]*models.Job, error) {
	start := time.Now()
	jobs, err := s.next.ListByUser(ctx, user)
	s.stats.RecordTiming(metrics.OpJobList, time.Since(start), err)
	for _, j := range jobs {
		j.WithPlatform(s.platform)
	}
	return jobs, err
}

func (s *instrumentedJobStore) ListIDsByUser(ctx context.Context, user string) ([]string, error) {
	start := time.Now()
	ids, err := s.next.ListIDsByUser(ctx, user)
	s.stats.RecordTiming(metrics.OpJobListIDs, time.Since(start), err)
	return ids, err
}

func (s *instrumentedJobStore) Close(ctx context.Context) error {
	return s.next.Close(ctx)
}

// instrumentedFileStore records timings for every call.
type instrumentedFileStore struct {
	next  store.FileStore
	stats *metrics.Collector
}

func (f *instrumentedFileStore) Upload(ctx context.Context, bucket store.Bucket, localPath, name string) error {
	start := time.Now()
	err := f.next.Upload(ctx, bucket, localPath, name)
	f.stats.RecordTiming(metrics.OpFileUpload, time.Since(start), err)
	return err
}

func (f *instrumentedFileStore) Download(ctx context.Context, bucket store.Bucket, destPath, name string) error {
	start := time.Now()
	err := f.next.Download(ctx, bucket, destPath, name)
	f.stats.RecordTiming(metrics.OpFileDownload, time.Since(start), err)
	return err
}

func (f *instrumentedFileStore) Delete(ctx context.Context, bucket store.Bucket, name string) error {
	start := time.Now()
	err := f.next.Delete(ctx, bucket, name)
	f.stats.RecordTiming(metrics.OpFileDelete, time.Since(start), err)
	return err
}

func (f *instrumentedFileStore) Exists(ctx context.Context, bucket store.Bucket, name string) (bool, error) {
	start := time.Now()
	ok, err := f.next.Exists(ctx, bucket, name)
	f.stats.RecordTiming(metrics.OpFileExists, time.Since(start), err)
	return ok, err
}

func (f *instrumentedFileStore) Close() error {
	return f.next.Close()
}
