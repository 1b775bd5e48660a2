package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/raphaelgruber/impression-go/internal/config"
	"github.com/raphaelgruber/impression-go/internal/metrics"
	"github.com/raphaelgruber/impression-go/internal/models"
	"github.com/raphaelgruber/impression-go/internal/platform"
	"github.com/raphaelgruber/impression-go/internal/store"
	"github.com/raphaelgruber/impression-go/internal/store/memory"
)

// harness keeps one set of in-memory stores alive across command runs.
type harness struct {
	jobs  store.JobStore
	files store.FileStore
	dir   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("IMPRESSION_PLATFORM", "memory")
	t.Setenv("IMPRESSION_USER", "alice")
	t.Setenv("IMPRESSION_DATA_DIR", dir)
	t.Setenv("IMPRESSION_LOG_FILE", filepath.Join(dir, "impression.log"))
	t.Setenv("IMPRESSION_LOG_LEVEL", "error")

	deps := platform.Deps{Config: config.Config{DataDir: dir}, Metrics: metrics.NewCollector()}
	jobs, err := platform.MemoryPlatform().OpenJobStore(context.Background(), deps)
	require.NoError(t, err)
	return &harness{jobs: jobs, files: memory.NewFileStore(), dir: dir}
}

func (h *harness) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	jobStore, fileStore = h.jobs, h.files

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := Execute()
	return out.String(), err
}

func (h *harness) inputFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(h.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestSubmitShowList(t *testing.T) {
	h := newHarness(t)
	path := h.inputFile(t, "a.sdf", "molecule")

	out, err := h.run(t, "", "submit", path, "--model", "m", "--id", "job-1")
	require.NoError(t, err)
	assert.Equal(t, "job-1\n", out)

	job, err := h.jobs.LoadByID(context.Background(), "job-1", "alice", false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, job.Status)
	assert.Equal(t, "a.sdf", job.InputName)
	assert.NotNil(t, job.SubmissionTime)

	ok, err := h.files.Exists(context.Background(), store.BucketInput, job.UploadName)
	require.NoError(t, err)
	assert.True(t, ok)

	out, err = h.run(t, "", "jobs", "show", "job-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Job: job-1")
	assert.Contains(t, out, "SUBMITTED")
	assert.Contains(t, out, "Model: m")

	out, err = h.run(t, "", "jobs", "show", "job-1", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"job_id": "job-1"`)
	assert.Contains(t, out, `"status": 1`)

	out, err = h.run(t, "", "jobs", "ids")
	require.NoError(t, err)
	assert.Equal(t, "job-1\n", out)

	out, err = h.run(t, "", "jobs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "job-1")
	assert.Contains(t, out, "a.sdf")

	out, err = h.run(t, "", "jobs", "list", "--status", "FINISHED")
	require.NoError(t, err)
	assert.Contains(t, out, "No jobs found.")
}

func TestSubmitRequiresModel(t *testing.T) {
	h := newHarness(t)
	path := h.inputFile(t, "a.sdf", "x")

	_, err := h.run(t, "", "submit", path)
	assert.Error(t, err)
}

func TestSubmitMissingFile(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "", "submit", filepath.Join(h.dir, "nope.sdf"), "--model", "m")
	require.Error(t, err)
	ids, err := h.jobs.ListIDsByUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestShowHidesForeignJobs(t *testing.T) {
	h := newHarness(t)
	path := h.inputFile(t, "a.sdf", "x")
	_, err := h.run(t, "", "submit", path, "--model", "m", "--id", "job-1")
	require.NoError(t, err)

	_, err = h.run(t, "", "jobs", "show", "job-1", "--user", "bob")
	require.ErrorIs(t, err, models.ErrNotFound)
	assert.NotErrorIs(t, err, models.ErrAccess)

	_, err = h.run(t, "", "jobs", "show", "missing", "--user", "bob")
	require.ErrorIs(t, err, models.ErrNotFound)

	out, err := h.run(t, "", "jobs", "show", "job-1", "--user", "bob", "--admin")
	require.NoError(t, err)
	assert.Contains(t, out, "User: alice")
}

func TestStatusUpdate(t *testing.T) {
	h := newHarness(t)
	path := h.inputFile(t, "a.sdf", "x")
	_, err := h.run(t, "", "submit", path, "--model", "m", "--id", "job-1")
	require.NoError(t, err)

	out, err := h.run(t, "", "jobs", "status", "job-1", "started", "--info", "running on gpu")
	require.NoError(t, err)
	assert.Contains(t, out, "job-1: SUBMITTED -> ")
	assert.Contains(t, out, "STARTED")

	_, err = h.run(t, "", "jobs", "status", "job-1", "4", "--output-url", "gs://out/r.csv", "--output-name", "r.csv")
	require.NoError(t, err)

	job, err := h.jobs.LoadByID(context.Background(), "job-1", "alice", false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, job.Status)
	assert.Equal(t, "running on gpu", job.Info)
	assert.Equal(t, "gs://out/r.csv", job.OutputFileURL)
	assert.Equal(t, "r.csv", job.OutputName)
	assert.NotNil(t, job.StartTime)
	assert.NotNil(t, job.CompletionTime)

	_, err = h.run(t, "", "jobs", "status", "job-1", "DONE")
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	h := newHarness(t)
	path := h.inputFile(t, "a.sdf", "x")
	_, err := h.run(t, "", "submit", path, "--model", "m", "--id", "job-1")
	require.NoError(t, err)

	out, err := h.run(t, "n\n", "jobs", "delete", "job-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled.")

	job, err := h.jobs.LoadByID(context.Background(), "job-1", "alice", false)
	require.NoError(t, err)

	out, err = h.run(t, "", "jobs", "delete", "job-1", "--force", "--files")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted: job-1")

	_, err = h.jobs.LoadByID(context.Background(), "job-1", "alice", false)
	require.ErrorIs(t, err, models.ErrNotFound)

	ok, err := h.files.Exists(context.Background(), store.BucketInput, job.UploadName)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExport(t *testing.T) {
	h := newHarness(t)
	path := h.inputFile(t, "a.sdf", "x")
	_, err := h.run(t, "", "submit", path, "--model", "m", "--id", "job-1")
	require.NoError(t, err)
	_, err = h.run(t, "", "submit", path, "--model", "m", "--id", "job-2", "--name", "b.sdf")
	require.NoError(t, err)

	file := filepath.Join(h.dir, "jobs.yaml")
	out, err := h.run(t, "", "jobs", "export", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 jobs")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	var docs []map[string]any
	require.NoError(t, yaml.Unmarshal(data, &docs))
	require.Len(t, docs, 2)

	job := models.FromDoc(docs[1])
	assert.Equal(t, "job-2", job.ID)
	assert.Equal(t, "b.sdf", job.InputName)
	assert.Equal(t, models.StatusSubmitted, job.Status)
}

func TestFilesCommands(t *testing.T) {
	h := newHarness(t)
	path := h.inputFile(t, "r.csv", "a,b\n")

	out, err := h.run(t, "", "files", "upload", "output", path)
	require.NoError(t, err)
	assert.Contains(t, out, "as r.csv")

	out, err = h.run(t, "", "files", "exists", "output", "r.csv")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	dest := filepath.Join(h.dir, "dl", "r.csv")
	_, err = h.run(t, "", "files", "download", "output", "r.csv", "--to", dest)
	require.NoError(t, err)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))

	_, err = h.run(t, "", "files", "rm", "output", "r.csv")
	require.NoError(t, err)

	out, err = h.run(t, "", "files", "exists", "output", "r.csv")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)

	_, err = h.run(t, "", "files", "download", "input", "r.csv", "--to", dest)
	require.ErrorIs(t, err, models.ErrFileTransfer)

	_, err = h.run(t, "", "files", "exists", "scratch", "r.csv")
	assert.Error(t, err)
}

func TestPlatforms(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "", "platforms")
	require.NoError(t, err)
	assert.Equal(t, "  gcp\n* memory\n  surrealdb\n", out)

	_, err = h.run(t, "", "platforms", "--platform", "azure")
	require.ErrorIs(t, err, platform.ErrUnimplementedPlatform)
}

func TestStatsFlag(t *testing.T) {
	h := newHarness(t)
	path := h.inputFile(t, "a.sdf", "x")

	out, err := h.run(t, "", "submit", path, "--model", "m", "--id", "job-1", "--stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Store Statistics")
	assert.Contains(t, out, "Platform: memory")
}

func TestMissingUser(t *testing.T) {
	h := newHarness(t)
	t.Setenv("IMPRESSION_USER", "")
	t.Setenv("USER", "")

	_, err := h.run(t, "", "jobs", "ids")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no user")
}
