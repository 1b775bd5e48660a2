// Package memory provides in-process JobStore and FileStore implementations
// for tests and local development.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/raphaelgruber/impression-go/internal/metrics"
	"github.com/raphaelgruber/impression-go/internal/models"
	"github.com/raphaelgruber/impression-go/internal/store"
)

// JobStore keeps job documents in a map. Documents are copied on write and
// read so callers never share state with the store.
type JobStore struct {
	mu     sync.RWMutex
	docs   map[string]models.Doc
	order  []string
	logger *slog.Logger
	stats  *metrics.Collector
}

// NewJobStore creates an empty store. logger and stats may be nil.
func NewJobStore(logger *slog.Logger, stats *metrics.Collector) *JobStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobStore{
		docs:   make(map[string]models.Doc),
		logger: logger,
		stats:  stats,
	}
}

// Save implements store.JobStore.
func (s *JobStore) Save(_ context.Context, job *models.Job, explicitID string) (string, error) {
	if err := store.CheckSavable(job); err != nil {
		return "", err
	}
	id := store.ResolveID(job, explicitID)
	if id == "" {
		id = uuid.New().String()
	}

	doc := job.ToDoc()
	doc[models.FieldJobID] = id

	s.mu.Lock()
	if _, ok := s.docs[id]; !ok {
		s.order = append(s.order, id)
	}
	s.docs[id] = doc
	s.mu.Unlock()

	job.ID = id
	return id, nil
}

// LoadByID implements store.JobStore.
func (s *JobStore) LoadByID(_ context.Context, id, requestingUser string, adminOverride bool) (*models.Job, error) {
	s.mu.RLock()
	doc, ok := s.docs[id]
	if ok {
		doc = maps.Clone(doc)
	}
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s does not exist", models.ErrNotFound, id)
	}
	job := store.Hydrate(doc, s.logger, s.stats)
	if err := store.CheckOwner(job, id, requestingUser, adminOverride); err != nil {
		return nil, err
	}
	return job, nil
}

// Delete implements store.JobStore.
func (s *JobStore) Delete(_ context.Context, job *models.Job) (bool, error) {
	if job.ID == "" {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[job.ID]; ok {
		delete(s.docs, job.ID)
		s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == job.ID })
	}
	_, exists := s.docs[job.ID]
	return !exists, nil
}

// ListByUser implements store.JobStore. Jobs are returned in first-save order.
func (s *JobStore) ListByUser(_ context.Context, user string) ([]*models.Job, error) {
	docs := s.userDocs(user)
	jobs := make([]*models.Job, 0, len(docs))
	for _, doc := range docs {
		jobs = append(jobs, store.Hydrate(doc, s.logger, s.stats))
	}
	return jobs, nil
}

// ListIDsByUser implements store.JobStore.
func (s *JobStore) ListIDsByUser(_ context.Context, user string) ([]string, error) {
	docs := s.userDocs(user)
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, models.DocString(doc, models.FieldJobID))
	}
	return ids, nil
}

func (s *JobStore) userDocs(user string) []models.Doc {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Doc
	for _, id := range s.order {
		doc := s.docs[id]
		if models.DocString(doc, models.FieldUser) == user {
			out = append(out, maps.Clone(doc))
		}
	}
	return out
}

// Close implements store.JobStore.
func (s *JobStore) Close(context.Context) error { return nil }

// FileStore keeps bucket objects in memory.
type FileStore struct {
	mu      sync.RWMutex
	buckets map[store.Bucket]map[string][]byte
}

// NewFileStore creates a FileStore with empty input and output buckets.
func NewFileStore() *FileStore {
	return &FileStore{buckets: map[store.Bucket]map[string][]byte{
		store.BucketInput:  {},
		store.BucketOutput: {},
	}}
}

// Upload implements store.FileStore.
func (f *FileStore) Upload(_ context.Context, bucket store.Bucket, localPath, name string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("%w: upload %s: %v", models.ErrFileTransfer, name, err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	objects, ok := f.buckets[bucket]
	if !ok {
		return fmt.Errorf("upload %s: unknown %s", name, bucket)
	}
	objects[name] = data
	return nil
}

// Download implements store.FileStore.
func (f *FileStore) Download(_ context.Context, bucket store.Bucket, destPath, name string) error {
	f.mu.RLock()
	data, ok := f.buckets[bucket][name]
	f.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s not found in %s bucket", models.ErrFileTransfer, name, bucket)
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("download %s: %w", name, err)
	}
	return os.WriteFile(destPath, data, 0o644)
}

// Delete implements store.FileStore.
func (f *FileStore) Delete(_ context.Context, bucket store.Bucket, name string) error {
	f.mu.Lock()
	delete(f.buckets[bucket], name)
	f.mu.Unlock()
	return nil
}

// Exists implements store.FileStore.
func (f *FileStore) Exists(_ context.Context, bucket store.Bucket, name string) (bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.buckets[bucket][name]
	return ok, nil
}

// Close implements store.FileStore.
func (f *FileStore) Close() error { return nil }
