// Package storetest holds behavioural suites that every JobStore and
// FileStore implementation must pass. Backend packages run them against
// their own store in unit or integration tests.
package storetest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/impression-go/internal/models"
	"github.com/raphaelgruber/impression-go/internal/store"
)

// unique returns a run-scoped name so suites can share a live backend.
func unique(prefix string) string {
	return prefix + "-" + uuid.New().String()[:8]
}

func newJob(t *testing.T, user, file, model string) *models.Job {
	t.Helper()
	var fd *models.FileDescriptor
	if file != "" {
		fd = &models.FileDescriptor{InputName: file, UploadName: file}
	}
	job, err := models.NewJob(user, fd, model)
	require.NoError(t, err)
	return job
}

// RunJobStore exercises s against the JobStore contract.
func RunJobStore(t *testing.T, s store.JobStore) {
	ctx := context.Background()

	t.Run("empty job guard", func(t *testing.T) {
		job := newJob(t, "", "", "")
		_, err := s.Save(ctx, job, "")
		assert.ErrorIs(t, err, models.ErrCreation)
		assert.Empty(t, job.ID)
	})

	t.Run("generated id", func(t *testing.T) {
		job := newJob(t, unique("user"), "a.sdf", "m")
		id, err := s.Save(ctx, job, "")
		require.NoError(t, err)
		require.NotEmpty(t, id)
		assert.Equal(t, id, job.ID)
		t.Cleanup(func() { _, _ = s.Delete(ctx, job) })

		again, err := s.Save(ctx, job, "")
		require.NoError(t, err)
		assert.Equal(t, id, again, "second save keeps the assigned id")
	})

	t.Run("explicit id is idempotent", func(t *testing.T) {
		job := newJob(t, unique("user"), "a.sdf", "m")
		want := unique("job")
		first, err := s.Save(ctx, job, want)
		require.NoError(t, err)
		second, err := s.Save(ctx, job, want)
		require.NoError(t, err)
		assert.Equal(t, want, first)
		assert.Equal(t, want, second)
		_, _ = s.Delete(ctx, job)
	})

	t.Run("ownership", func(t *testing.T) {
		alice := unique("alice")
		job := newJob(t, alice, "in.sdf", "fchl")
		id, err := s.Save(ctx, job, unique("job"))
		require.NoError(t, err)
		t.Cleanup(func() { _, _ = s.Delete(ctx, job) })

		_, err = s.LoadByID(ctx, id, "bob", false)
		assert.ErrorIs(t, err, models.ErrAccess)

		got, err := s.LoadByID(ctx, id, "bob", true)
		require.NoError(t, err)
		assert.Equal(t, alice, got.User)

		got, err = s.LoadByID(ctx, id, alice, false)
		require.NoError(t, err)
		assert.Equal(t, job.ToDoc(), got.ToDoc())
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := s.LoadByID(ctx, unique("does-not-exist"), "anyone", false)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("last writer wins", func(t *testing.T) {
		user := unique("user")
		id := unique("job")
		first := newJob(t, user, "a.sdf", "first")
		second := newJob(t, user, "b.sdf", "second")
		_, err := s.Save(ctx, first, id)
		require.NoError(t, err)
		_, err = s.Save(ctx, second, id)
		require.NoError(t, err)
		t.Cleanup(func() { _, _ = s.Delete(ctx, second) })

		got, err := s.LoadByID(ctx, id, user, false)
		require.NoError(t, err)
		assert.Equal(t, "second", got.Model)
		assert.Equal(t, "b.sdf", got.InputName)
	})

	t.Run("delete idempotence", func(t *testing.T) {
		job := newJob(t, unique("user"), "a.sdf", "m")
		ok, err := s.Delete(ctx, job)
		require.NoError(t, err)
		assert.False(t, ok, "unsaved job")

		_, err = s.Save(ctx, job, "")
		require.NoError(t, err)

		ok, err = s.Delete(ctx, job)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NotEmpty(t, job.ID, "id survives delete")

		ok, err = s.Delete(ctx, job)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("list by user", func(t *testing.T) {
		user := unique("lister")
		var saved []*models.Job
		for range 3 {
			job := newJob(t, user, "", "no-model")
			_, err := s.Save(ctx, job, unique("job"))
			require.NoError(t, err)
			saved = append(saved, job)
		}
		other := newJob(t, unique("other"), "", "no-model")
		_, err := s.Save(ctx, other, "")
		require.NoError(t, err)
		t.Cleanup(func() {
			for _, j := range append(saved, other) {
				_, _ = s.Delete(ctx, j)
			}
		})

		jobs, err := s.ListByUser(ctx, user)
		require.NoError(t, err)
		ids, err := s.ListIDsByUser(ctx, user)
		require.NoError(t, err)

		require.Len(t, jobs, len(saved))
		require.Len(t, ids, len(saved))

		want := make([]string, 0, len(saved))
		for _, j := range saved {
			want = append(want, j.ID)
		}
		got := make([]string, 0, len(jobs))
		for _, j := range jobs {
			assert.Equal(t, user, j.User)
			got = append(got, j.ID)
		}
		assert.ElementsMatch(t, want, ids)
		assert.ElementsMatch(t, want, got)
	})

	t.Run("scenario", func(t *testing.T) {
		user := unique("u1")
		id := unique("job-1")
		job, err := models.NewJob(user, &models.FileDescriptor{InputName: "a.sdf", UploadName: "a.sdf"}, "m")
		require.NoError(t, err)

		got, err := s.Save(ctx, job, id)
		require.NoError(t, err)
		assert.Equal(t, id, got)

		ids, err := s.ListIDsByUser(ctx, user)
		require.NoError(t, err)
		assert.Contains(t, ids, id)

		loaded, err := s.LoadByID(ctx, id, user, false)
		require.NoError(t, err)
		assert.Equal(t, "m", loaded.Model)

		ok, err := s.Delete(ctx, job)
		require.NoError(t, err)
		assert.True(t, ok)

		_, err = s.LoadByID(ctx, id, user, false)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

// RunFileStore exercises fs against the FileStore contract using files in a
// temporary directory.
func RunFileStore(t *testing.T, fs store.FileStore) {
	ctx := context.Background()
	dir := t.TempDir()

	writeFile := func(t *testing.T, name, content string) string {
		t.Helper()
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	for _, bucket := range []store.Bucket{store.BucketInput, store.BucketOutput} {
		t.Run(bucket.String(), func(t *testing.T) {
			t.Run("upload missing file", func(t *testing.T) {
				err := fs.Upload(ctx, bucket, filepath.Join(dir, "not-a-file.sdf"), "not-a-file.sdf")
				assert.ErrorIs(t, err, models.ErrFileTransfer)
			})

			t.Run("download missing object", func(t *testing.T) {
				err := fs.Download(ctx, bucket, filepath.Join(dir, "nowhere"), unique("missing"))
				assert.ErrorIs(t, err, models.ErrFileTransfer)
			})

			t.Run("upload exists delete", func(t *testing.T) {
				name := unique("file") + ".sdf"
				path := writeFile(t, name, "payload")

				require.NoError(t, fs.Upload(ctx, bucket, path, store.ObjectName(path, "")))
				ok, err := fs.Exists(ctx, bucket, name)
				require.NoError(t, err)
				assert.True(t, ok)

				require.NoError(t, fs.Delete(ctx, bucket, name))
				ok, err = fs.Exists(ctx, bucket, name)
				require.NoError(t, err)
				assert.False(t, ok)
			})

			t.Run("double upload", func(t *testing.T) {
				name := unique("twice") + ".sdf"
				path := writeFile(t, name, "v1")
				require.NoError(t, fs.Upload(ctx, bucket, path, name))
				require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
				require.NoError(t, fs.Upload(ctx, bucket, path, name))
				t.Cleanup(func() { _ = fs.Delete(ctx, bucket, name) })

				dest := filepath.Join(dir, "out", name)
				require.NoError(t, fs.Download(ctx, bucket, dest, name))
				data, err := os.ReadFile(dest)
				require.NoError(t, err)
				assert.Equal(t, "v2", string(data))
			})
		})
	}

	t.Run("default object names", func(t *testing.T) {
		name := unique("named") + ".sdf"
		path := writeFile(t, name, "input")
		require.NoError(t, store.UploadInput(ctx, fs, path, ""))
		t.Cleanup(func() { _ = store.DeleteInput(ctx, fs, name) })

		dest := filepath.Join(dir, "downloads", name)
		require.NoError(t, store.DownloadInput(ctx, fs, dest, ""))
		_, err := os.Stat(dest)
		assert.NoError(t, err)

		ok, err := fs.Exists(ctx, store.BucketOutput, name)
		require.NoError(t, err)
		assert.False(t, ok, "buckets are separate")
	})
}
