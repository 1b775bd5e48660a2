package gcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/raphaelgruber/impression-go/internal/metrics"
	"github.com/raphaelgruber/impression-go/internal/models"
	"github.com/raphaelgruber/impression-go/internal/store"
)

// DefaultCollection is the Firestore collection holding job documents.
const DefaultCollection = "jobs"

// JobStore persists jobs in a Firestore collection, one document per job.
type JobStore struct {
	client     *firestore.Client
	collection string
	logger     *slog.Logger
	stats      *metrics.Collector
}

// NewJobStore creates a job store on client. An empty collection uses
// DefaultCollection.
func NewJobStore(client *firestore.Client, collection string, logger *slog.Logger, stats *metrics.Collector) *JobStore {
	if collection == "" {
		collection = DefaultCollection
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &JobStore{client: client, collection: collection, logger: logger, stats: stats}
}

func (s *JobStore) jobs() *firestore.CollectionRef {
	return s.client.Collection(s.collection)
}

// Save implements store.JobStore. Without an id Firestore allocates one.
func (s *JobStore) Save(ctx context.Context, job *models.Job, explicitID string) (string, error) {
	if err := store.CheckSavable(job); err != nil {
		return "", err
	}

	var ref *firestore.DocumentRef
	if id := store.ResolveID(job, explicitID); id != "" {
		ref = s.jobs().Doc(id)
	} else {
		ref = s.jobs().NewDoc()
	}

	doc := job.ToDoc()
	doc[models.FieldJobID] = ref.ID

	if _, err := ref.Set(ctx, map[string]any(doc)); err != nil {
		return "", fmt.Errorf("gcp: save job %s: %w", ref.ID, err)
	}

	job.ID = ref.ID
	return ref.ID, nil
}

// LoadByID implements store.JobStore.
func (s *JobStore) LoadByID(ctx context.Context, id, requestingUser string, adminOverride bool) (*models.Job, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty job id", models.ErrNotFound)
	}
	snap, err := s.jobs().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s does not exist", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("gcp: get job %s: %w", id, err)
	}
	if !snap.Exists() {
		return nil, fmt.Errorf("%w: %s does not exist", models.ErrNotFound, id)
	}

	job := store.Hydrate(snap.Data(), s.logger, s.stats)
	if err := store.CheckOwner(job, id, requestingUser, adminOverride); err != nil {
		return nil, err
	}
	return job, nil
}

// Delete implements store.JobStore.
func (s *JobStore) Delete(ctx context.Context, job *models.Job) (bool, error) {
	if job.ID == "" {
		return false, nil
	}
	ref := s.jobs().Doc(job.ID)
	if _, err := ref.Delete(ctx); err != nil {
		return false, fmt.Errorf("gcp: delete job %s: %w", job.ID, err)
	}

	snap, err := ref.Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return true, nil
		}
		return false, fmt.Errorf("gcp: check job %s: %w", job.ID, err)
	}
	return !snap.Exists(), nil
}

// ListByUser implements store.JobStore.
func (s *JobStore) ListByUser(ctx context.Context, user string) ([]*models.Job, error) {
	snaps, err := s.userDocs(ctx, user)
	if err != nil {
		return nil, err
	}
	jobs := make([]*models.Job, 0, len(snaps))
	for _, snap := range snaps {
		jobs = append(jobs, store.Hydrate(snap.Data(), s.logger, s.stats))
	}
	return jobs, nil
}

// ListIDsByUser implements store.JobStore.
func (s *JobStore) ListIDsByUser(ctx context.Context, user string) ([]string, error) {
	snaps, err := s.userDocs(ctx, user)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(snaps))
	for _, snap := range snaps {
		ids = append(ids, models.DocString(snap.Data(), models.FieldJobID))
	}
	return ids, nil
}

func (s *JobStore) userDocs(ctx context.Context, user string) ([]*firestore.DocumentSnapshot, error) {
	snaps, err := s.jobs().Where(models.FieldUser, "==", user).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("gcp: list jobs for %s: %w", user, err)
	}
	return snaps, nil
}

// Close implements store.JobStore.
func (s *JobStore) Close(context.Context) error {
	return s.client.Close()
}

func isNotFound(err error) bool {
	if status.Code(err) == codes.NotFound {
		return true
	}
	var st interface{ GRPCStatus() *status.Status }
	return errors.As(err, &st) && st.GRPCStatus().Code() == codes.NotFound
}
