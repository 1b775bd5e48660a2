package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/raphaelgruber/impression-go/internal/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var exportFile string

var jobsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the current user's jobs as YAML documents",
	Long: `Export the current user's jobs as a YAML list of job documents, in the
same shape they are persisted in.

Examples:
  impression jobs export
  impression jobs export --file jobs.yaml`,
	RunE: runJobsExport,
}

func init() {
	jobsExportCmd.Flags().StringVarP(&exportFile, "file", "f", "", "write to file instead of stdout")
}

func runJobsExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
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

	docs := make([]models.Doc, 0, len(list))
	for _, j := range list {
		docs = append(docs, j.ToDoc())
	}
	out, err := yaml.Marshal(docs)
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	if exportFile == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(exportFile, out, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d jobs to %s\n", len(docs), exportFile)
	return nil
}
