package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/raphaelgruber/impression-go/internal/models"
	"github.com/raphaelgruber/impression-go/internal/store"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	jobsAdmin  bool
	showOutput string

	statusInfo      string
	statusErr       string
	statusOutputURL string
	statusOutput    string
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List, inspect and update jobs",
	Long: `List, inspect and update the jobs of the current user.

Examples:
  impression jobs list
  impression jobs show job-1 -o yaml
  impression jobs status job-1 STARTED
  impression jobs watch job-1`,
}

var jobsShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show a job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsShow,
}

var jobsStatusCmd = &cobra.Command{
	Use:   "status <job-id> <status>",
	Short: "Set the status of a job",
	Long: `Set the status of a job and stamp the matching timestamp if it is not
set yet: SUBMITTED stamps the submission time, STARTED the start time, and
FINISHED or ERROR the completion time. Status may be a name or its number.

Examples:
  impression jobs status job-1 STARTED
  impression jobs status job-1 FINISHED --output-url gs://impression-output/r.csv
  impression jobs status job-1 ERROR --err "model crashed"`,
	Args: cobra.ExactArgs(2),
	RunE: runJobsStatus,
}

func init() {
	jobsCmd.PersistentFlags().BoolVar(&jobsAdmin, "admin", false, "bypass the ownership check")

	jobsShowCmd.Flags().StringVarP(&showOutput, "output", "o", "text", "output format: text, yaml or json")

	jobsStatusCmd.Flags().StringVar(&statusInfo, "info", "", "informational message")
	jobsStatusCmd.Flags().StringVar(&statusErr, "err", "", "error message")
	jobsStatusCmd.Flags().StringVar(&statusOutputURL, "output-url", "", "URL of the result file")
	jobsStatusCmd.Flags().StringVar(&statusOutput, "output-name", "", "name of the result object in the output bucket")

	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsIDsCmd)
	jobsCmd.AddCommand(jobsShowCmd)
	jobsCmd.AddCommand(jobsStatusCmd)
	jobsCmd.AddCommand(jobsDeleteCmd)
	jobsCmd.AddCommand(jobsWatchCmd)
	jobsCmd.AddCommand(jobsExportCmd)
}

// loadJob loads a job for the current user. Missing and foreign jobs are
// reported the same way so ids of other users are not revealed.
func loadJob(ctx context.Context, jobs store.JobStore, id string) (*models.Job, error) {
	user, err := currentUser()
	if err != nil {
		return nil, err
	}
	job, err := jobs.LoadByID(ctx, id, user, jobsAdmin)
	if err != nil {
		if models.IsHidden(err) {
			logger.Debug("job hidden", "id", id, "user", user, "error", err)
			return nil, fmt.Errorf("%w: job %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("load job: %w", err)
	}
	return job, nil
}

func runJobsShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	jobs, err := getJobStore(ctx)
	if err != nil {
		return err
	}
	job, err := loadJob(ctx, jobs, args[0])
	if err != nil {
		return err
	}
	return writeJob(cmd.OutOrStdout(), job, showOutput)
}

func writeJob(w io.Writer, job *models.Job, format string) error {
	switch format {
	case "yaml":
		out, err := yaml.Marshal(job.ToDoc())
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		_, err = w.Write(out)
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(job.ToDoc())
	case "text", "":
		printJob(w, job)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func printJob(w io.Writer, job *models.Job) {
	fmt.Fprintf(w, "Job: %s\n", job.ID)
	fmt.Fprintf(w, "  User: %s\n", job.User)
	fmt.Fprintf(w, "  Status: %s\n", defaultTheme.renderStatus(job.Status))
	fmt.Fprintf(w, "  Model: %s\n", job.Model)
	fmt.Fprintf(w, "  Input: %s (%s)\n", job.InputName, job.UploadName)
	if job.OutputName != "" {
		fmt.Fprintf(w, "  Output: %s\n", job.OutputName)
	}
	if job.OutputFileURL != "" {
		fmt.Fprintf(w, "  Output URL: %s\n", job.OutputFileURL)
	}
	printTime(w, "Submitted", job.SubmissionTime)
	printTime(w, "Started", job.StartTime)
	printTime(w, "Completed", job.CompletionTime)
	if d := job.Duration(); d > 0 {
		fmt.Fprintf(w, "  Duration: %s\n", d)
	}
	if job.Info != "" {
		fmt.Fprintf(w, "  Info: %s\n", job.Info)
	}
	if job.Err != "" {
		fmt.Fprintf(w, "  Error: %s\n", defaultTheme.errorStyle().Render(job.Err))
	}
	if verbose && job.Platform() != "" {
		fmt.Fprintf(w, "  Platform: %s\n", job.Platform())
	}
}

func printTime(w io.Writer, label string, t *time.Time) {
	if t == nil {
		return
	}
	fmt.Fprintf(w, "  %s: %s\n", label, t.Format(time.DateTime))
}

func runJobsStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	status, err := models.ParseJobStatus(args[1])
	if err != nil {
		return err
	}

	jobs, err := getJobStore(ctx)
	if err != nil {
		return err
	}
	job, err := loadJob(ctx, jobs, args[0])
	if err != nil {
		return err
	}

	prev := job.Status
	job.Advance(status, time.Now())
	flags := cmd.Flags()
	if flags.Changed("info") {
		job.Info = statusInfo
	}
	if flags.Changed("err") {
		job.Err = statusErr
	}
	if flags.Changed("output-url") {
		job.OutputFileURL = statusOutputURL
	}
	if flags.Changed("output-name") {
		job.OutputName = statusOutput
	}

	if _, err := jobs.Save(ctx, job, job.ID); err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	logger.Info("job status updated", "id", job.ID, "from", prev.String(), "to", status.String())

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", job.ID, prev, defaultTheme.renderStatus(status))
	return nil
}
