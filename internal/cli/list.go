package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/raphaelgruber/impression-go/internal/models"
	"github.com/spf13/cobra"
)

var listStatus string

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the jobs of the current user",
	Long: `List the jobs of the current user.

Examples:
  impression jobs list
  impression jobs list --status FINISHED
  impression jobs list --user alice`,
	RunE: runJobsList,
}

var jobsIDsCmd = &cobra.Command{
	Use:   "ids",
	Short: "List the job ids of the current user",
	RunE:  runJobsIDs,
}

func init() {
	jobsListCmd.Flags().StringVarP(&listStatus, "status", "s", "", "only show jobs with this status")
}

func runJobsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	w := cmd.OutOrStdout()

	var filter *models.JobStatus
	if listStatus != "" {
		s, err := models.ParseJobStatus(listStatus)
		if err != nil {
			return err
		}
		filter = &s
	}

	user, err := currentUser()
	if err != nil {
		return err
	}
	jobs, err := getJobStore(ctx)
	if err != nil {
		return err
	}
	list, err := jobs.ListByUser(ctx, user)
	if err != nil {
		return fmt.Errorf("list jobs: %w", err)
	}

	if filter != nil {
		kept := list[:0]
		for _, j := range list {
			if j.Status == *filter {
				kept = append(kept, j)
			}
		}
		list = kept
	}

	if len(list) == 0 {
		fmt.Fprintln(w, "No jobs found.")
		return nil
	}

	printJobTable(w, list)
	return nil
}

func printJobTable(w io.Writer, list []*models.Job) {
	fmt.Fprintf(w, "%-36s %-10s %-16s %-24s %s\n", "ID", "STATUS", "MODEL", "INPUT", "SUBMITTED")
	fmt.Fprintln(w, "------------------------------------------------------------------------------------------------------")
	for _, j := range list {
		submitted := "-"
		if j.SubmissionTime != nil {
			submitted = j.SubmissionTime.Format(time.DateTime)
		}
		status := defaultTheme.statusStyle().Width(10).Render(j.Status.String())
		fmt.Fprintf(w, "%-36s %s %-16s %-24s %s\n", j.ID, status, j.Model, j.InputName, submitted)
	}
}

func runJobsIDs(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	user, err := currentUser()
	if err != nil {
		return err
	}
	jobs, err := getJobStore(ctx)
	if err != nil {
		return err
	}
	ids, err := jobs.ListIDsByUser(ctx, user)
	if err != nil {
		return fmt.Errorf("list job ids: %w", err)
	}
	for _, id := range ids {
		fmt.Fprintln(cmd.OutOrStdout(), id)
	}
	return nil
}
