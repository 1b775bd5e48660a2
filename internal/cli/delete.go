package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/raphaelgruber/impression-go/internal/store"
	"github.com/spf13/cobra"
)

var (
	deleteForce bool
	deleteFiles bool
)

var jobsDeleteCmd = &cobra.Command{
	Use:   "delete <job-id>",
	Short: "Delete a job",
	Long: `Delete a job record. With --files the job's input object and, if set,
its output object are removed from the buckets as well.
Requires confirmation unless --force is used.

Examples:
  impression jobs delete job-1
  impression jobs delete job-1 --files --force`,
	Args: cobra.ExactArgs(1),
	RunE: runJobsDelete,
}

func init() {
	jobsDeleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "skip confirmation")
	jobsDeleteCmd.Flags().BoolVar(&deleteFiles, "files", false, "also delete the job's bucket objects")
}

func runJobsDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	w := cmd.OutOrStdout()

	jobs, err := getJobStore(ctx)
	if err != nil {
		return err
	}
	job, err := loadJob(ctx, jobs, args[0])
	if err != nil {
		return err
	}

	// Confirm deletion
	if !deleteForce {
		fmt.Fprintf(w, "About to delete: %s (%s, %s)\n", job.ID, job.InputName, job.Status)
		fmt.Fprint(w, "\nContinue? [y/N]: ")

		reader := bufio.NewReader(cmd.InOrStdin())
		response, err := reader.ReadString('\n')
		if err != nil && response == "" {
			return fmt.Errorf("read input: %w", err)
		}
		response = strings.TrimSpace(strings.ToLower(response))

		if response != "y" && response != "yes" {
			fmt.Fprintln(w, "Cancelled.")
			return nil
		}
	}

	if deleteFiles {
		files, err := getFileStore(ctx)
		if err != nil {
			return err
		}
		if err := store.DeleteInput(ctx, files, job.UploadName); err != nil {
			return fmt.Errorf("delete input object: %w", err)
		}
		if job.OutputName != "" {
			if err := store.DeleteOutput(ctx, files, job.OutputName); err != nil {
				return fmt.Errorf("delete output object: %w", err)
			}
		}
	}

	deleted, err := jobs.Delete(ctx, job)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if !deleted {
		return fmt.Errorf("job %s still exists after delete", job.ID)
	}
	logger.Info("job deleted", "id", job.ID, "user", job.User)

	fmt.Fprintf(w, "Deleted: %s\n", job.ID)
	return nil
}
