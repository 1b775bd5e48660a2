package platform

import (
	"context"
	"fmt"
	"path/filepath"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"

	"github.com/raphaelgruber/impression-go/internal/blob"
	"github.com/raphaelgruber/impression-go/internal/db"
	"github.com/raphaelgruber/impression-go/internal/gcp"
	"github.com/raphaelgruber/impression-go/internal/store"
	"github.com/raphaelgruber/impression-go/internal/store/memory"
)

// Platform keys.
const (
	GCP       = "gcp"
	SurrealDB = "surrealdb"
	Memory    = "memory"
)

// Default returns the registry of every built-in platform.
func Default() *Registry {
	return NewRegistry(GCPPlatform(), SurrealDBPlatform(), MemoryPlatform())
}

// GCPPlatform stores jobs in Firestore and files in Cloud Storage.
func GCPPlatform() Platform {
	return Platform{
		Name: GCP,
		JobStore: func(ctx context.Context, deps Deps) (store.JobStore, error) {
			project := deps.Config.GCPProject
			if project == "" {
				project = firestore.DetectProjectID
			}
			client, err := firestore.NewClient(ctx, project)
			if err != nil {
				return nil, fmt.Errorf("firestore client: %w", err)
			}
			return gcp.NewJobStore(client, deps.Config.JobsCollection, deps.Logger, deps.Metrics), nil
		},
		FileStore: func(ctx context.Context, deps Deps) (store.FileStore, error) {
			client, err := storage.NewClient(ctx)
			if err != nil {
				return nil, fmt.Errorf("storage client: %w", err)
			}
			return gcp.NewFileStore(client, deps.Config.InputBucket, deps.Config.OutputBucket), nil
		},
	}
}

// SurrealDBPlatform stores jobs in SurrealDB and files on the local disk.
func SurrealDBPlatform() Platform {
	return Platform{
		Name: SurrealDB,
		JobStore: func(ctx context.Context, deps Deps) (store.JobStore, error) {
			cfg := deps.Config
			client, err := db.NewClient(ctx, db.Config{
				URL:       cfg.SurrealDBURL,
				Namespace: cfg.SurrealDBNamespace,
				Database:  cfg.SurrealDBDatabase,
				Username:  cfg.SurrealDBUser,
				Password:  cfg.SurrealDBPass,
				AuthLevel: cfg.SurrealDBAuthLevel,
			}, deps.Logger)
			if err != nil {
				return nil, fmt.Errorf("connect to database: %w", err)
			}
			if err := client.InitSchema(ctx); err != nil {
				_ = client.Close(ctx)
				return nil, fmt.Errorf("initialize schema: %w", err)
			}
			return db.NewJobStore(client, deps.Logger, deps.Metrics), nil
		},
		FileStore: localFileStore,
	}
}

// MemoryPlatform keeps jobs in process memory and files on the local disk.
// Jobs do not outlive the process.
func MemoryPlatform() Platform {
	return Platform{
		Name: Memory,
		JobStore: func(_ context.Context, deps Deps) (store.JobStore, error) {
			return memory.NewJobStore(deps.Logger, deps.Metrics), nil
		},
		FileStore: localFileStore,
	}
}

func localFileStore(_ context.Context, deps Deps) (store.FileStore, error) {
	cfg := deps.Config
	return blob.NewLocalFS(filepath.Join(cfg.DataDir, "buckets"), cfg.InputBucket, cfg.OutputBucket)
}
