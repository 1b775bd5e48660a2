// Package platform resolves a platform key to the job, job-store and
// file-store implementations that make up one backend, so callers never
// branch on platform identity.
package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/raphaelgruber/impression-go/internal/config"
	"github.com/raphaelgruber/impression-go/internal/metrics"
	"github.com/raphaelgruber/impression-go/internal/models"
	"github.com/raphaelgruber/impression-go/internal/store"
)

// ErrUnimplementedPlatform is returned by Resolve for unknown keys.
var ErrUnimplementedPlatform = errors.New("unimplemented platform")

// Deps are the explicitly constructed collaborators every store factory
// receives.
type Deps struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.Collector
}

// JobStoreFactory builds a JobStore, including the client it owns.
type JobStoreFactory func(ctx context.Context, deps Deps) (store.JobStore, error)

// FileStoreFactory builds a FileStore, including the client it owns.
type FileStoreFactory func(ctx context.Context, deps Deps) (store.FileStore, error)

// Platform is a named bundle of backend implementations.
type Platform struct {
	Name      string
	JobStore  JobStoreFactory
	FileStore FileStoreFactory
}

// NewJob creates a job tagged with the platform name.
func (p Platform) NewJob(user string, file *models.FileDescriptor, model string) (*models.Job, error) {
	job, err := models.NewJob(user, file, model)
	if err != nil {
		return nil, err
	}
	return job.WithPlatform(p.Name), nil
}

// FromDoc hydrates a job from a document and tags it with the platform name.
func (p Platform) FromDoc(doc map[string]any) *models.Job {
	return models.FromDoc(doc).WithPlatform(p.Name)
}

// OpenJobStore builds the platform's JobStore wrapped with timing metrics
// and platform tagging.
func (p Platform) OpenJobStore(ctx context.Context, deps Deps) (store.JobStore, error) {
	s, err := p.JobStore(ctx, deps)
	if err != nil {
		return nil, fmt.Errorf("%s job store: %w", p.Name, err)
	}
	return &instrumentedJobStore{next: s, platform: p.Name, stats: deps.Metrics}, nil
}

// OpenFileStore builds the platform's FileStore wrapped with timing metrics.
func (p Platform) OpenFileStore(ctx context.Context, deps Deps) (store.FileStore, error) {
	fs, err := p.FileStore(ctx, deps)
	if err != nil {
		return nil, fmt.Errorf("%s file store: %w", p.Name, err)
	}
	return &instrumentedFileStore{next: fs, stats: deps.Metrics}, nil
}

// Registry maps platform keys to platforms.
type Registry struct {
	platforms map[string]Platform
}

// NewRegistry creates a registry from the given platforms. Later entries
// replace earlier ones with the same name.
func NewRegistry(platforms ...Platform) *Registry {
	r := &Registry{platforms: make(map[string]Platform, len(platforms))}
	for _, p := range platforms {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a platform.
func (r *Registry) Register(p Platform) {
	r.platforms[strings.ToLower(p.Name)] = p
}

// Resolve returns the platform for key.
func (r *Registry) Resolve(key string) (Platform, error) {
	p, ok := r.platforms[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return Platform{}, fmt.Errorf("%w: %q (available: %s)", ErrUnimplementedPlatform, key, strings.Join(r.Keys(), ", "))
	}
	return p, nil
}

// Keys returns the registered platform keys, sorted.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.platforms))
	for k := range r.platforms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether key is registered.
func (r *Registry) Has(key string) bool {
	return slices.Contains(r.Keys(), strings.ToLower(key))
}
