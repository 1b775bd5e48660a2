package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/raphaelgruber/impression-go/internal/metrics"
	"github.com/raphaelgruber/impression-go/internal/models"
	"github.com/raphaelgruber/impression-go/internal/store"
)

// JobStore persists jobs as documents in the SurrealDB job table.
type JobStore struct {
	client *Client
	logger *slog.Logger
	stats  *metrics.Collector
}

// NewJobStore creates a job store on an established client. The store takes
// ownership of the client and closes it in Close.
func NewJobStore(client *Client, logger *slog.Logger, stats *metrics.Collector) *JobStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobStore{client: client, logger: logger, stats: stats}
}

// savedRecord is the part of an UPSERT result the store reads back.
type savedRecord struct {
	ID surrealmodels.RecordID `json:"id"`
}

// Save implements store.JobStore. UPSERT ... CONTENT replaces the whole
// document, so concurrent saves to one id are last-writer-wins.
func (s *JobStore) Save(ctx context.Context, job *models.Job, explicitID string) (string, error) {
	if err := store.CheckSavable(job); err != nil {
		return "", err
	}
	id := store.ResolveID(job, explicitID)
	if id == "" {
		id = uuid.New().String()
	}

	doc := job.ToDoc()
	doc[models.FieldJobID] = id

	results, err := surrealdb.Query[[]savedRecord](ctx, s.client.db, `
		UPSERT type::record("job", $id) CONTENT $doc
	`, map[string]any{"id": id, "doc": map[string]any(doc)})
	if err != nil {
		return "", fmt.Errorf("save job %s: %w", id, wrapQueryError(err))
	}

	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		stored, err := models.RecordIDString((*results)[0].Result[0].ID)
		if err != nil {
			return "", fmt.Errorf("save job %s: %w", id, err)
		}
		id = stored
	}

	job.ID = id
	s.logger.Debug("job saved", "job_id", id, "user", job.User, "status", job.Status)
	return id, nil
}

// LoadByID implements store.JobStore.
func (s *JobStore) LoadByID(ctx context.Context, id, requestingUser string, adminOverride bool) (*models.Job, error) {
	doc, err := s.getDoc(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %s does not exist", models.ErrNotFound, id)
	}

	job := store.Hydrate(doc, s.logger, s.stats)
	if err := store.CheckOwner(job, id, requestingUser, adminOverride); err != nil {
		return nil, err
	}
	return job, nil
}

// getDoc returns the stored document for id, or nil if there is none.
func (s *JobStore) getDoc(ctx context.Context, id string) (map[string]any, error) {
	results, err := surrealdb.Query[[]map[string]any](ctx, s.client.db, `
		SELECT * FROM type::record("job", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return (*results)[0].Result[0], nil
}

// Delete implements store.JobStore. The result is the post-condition check,
// so deleting an already deleted job reports true.
func (s *JobStore) Delete(ctx context.Context, job *models.Job) (bool, error) {
	if job.ID == "" {
		return false, nil
	}

	if _, err := surrealdb.Query[any](ctx, s.client.db, `
		DELETE type::record("job", $id)
	`, map[string]any{"id": job.ID}); err != nil {
		return false, fmt.Errorf("delete job %s: %w", job.ID, wrapQueryError(err))
	}

	doc, err := s.getDoc(ctx, job.ID)
	if err != nil {
		return false, err
	}
	return doc == nil, nil
}

// ListByUser implements store.JobStore.
func (s *JobStore) ListByUser(ctx context.Context, user string) ([]*models.Job, error) {
	docs, err := s.userDocs(ctx, user)
	if err != nil {
		return nil, err
	}
	jobs := make([]*models.Job, 0, len(docs))
	for _, doc := range docs {
		jobs = append(jobs, store.Hydrate(doc, s.logger, s.stats))
	}
	return jobs, nil
}

// ListIDsByUser implements store.JobStore.
func (s *JobStore) ListIDsByUser(ctx context.Context, user string) ([]string, error) {
	docs, err := s.userDocs(ctx, user)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, models.DocString(doc, models.FieldJobID))
	}
	return ids, nil
}

func (s *JobStore) userDocs(ctx context.Context, user string) ([]map[string]any, error) {
	results, err := surrealdb.Query[[]map[string]any](ctx, s.client.db, `
		SELECT * FROM job WHERE user = $user
	`, map[string]any{"user": user})
	if err != nil {
		return nil, fmt.Errorf("list jobs for %s: %w", user, wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 {
		return []map[string]any{}, nil
	}
	return (*results)[0].Result, nil
}

// Close implements store.JobStore.
func (s *JobStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}
