package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/impression-go/internal/models"
	"github.com/raphaelgruber/impression-go/internal/store"
	"github.com/spf13/cobra"
)

var (
	submitModel string
	submitName  string
	submitID    string
	submitWatch bool
)

var submitCmd = &cobra.Command{
	Use:   "submit <file>",
	Short: "Upload an input file and submit a job for it",
	Long: `Upload an input file to the input bucket and submit a prediction job.

The job is saved with status SUBMITTED and the submission time stamped.
The job id is printed on success.

Examples:
  impression submit ./molecule.sdf --model solubility
  impression submit ./a.sdf --model m --id job-1 --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVarP(&submitModel, "model", "m", "", "model to run (required)")
	submitCmd.Flags().StringVarP(&submitName, "name", "n", "", "input name (default: file base name)")
	submitCmd.Flags().StringVar(&submitID, "id", "", "explicit job id (default: generated)")
	submitCmd.Flags().BoolVarP(&submitWatch, "watch", "w", false, "watch the job until it finishes")
	_ = submitCmd.MarkFlagRequired("model")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	path := args[0]

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("input file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("input file: %s is a directory", path)
	}

	user, err := currentUser()
	if err != nil {
		return err
	}
	files, err := getFileStore(ctx)
	if err != nil {
		return err
	}
	jobs, err := getJobStore(ctx)
	if err != nil {
		return err
	}

	name := submitName
	if name == "" {
		name = filepath.Base(path)
	}
	uploadName := uuid.NewString() + filepath.Ext(name)

	job, err := plat.NewJob(user, &models.FileDescriptor{InputName: name, UploadName: uploadName}, submitModel)
	if err != nil {
		return err
	}

	if err := store.UploadInput(ctx, files, path, uploadName); err != nil {
		return err
	}
	logger.Debug("input uploaded", "file", path, "object", uploadName)

	job.Advance(models.StatusSubmitted, time.Now())
	id, err := jobs.Save(ctx, job, submitID)
	if err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	logger.Info("job submitted", "id", id, "user", user, "model", submitModel, "platform", plat.Name)

	fmt.Fprintln(cmd.OutOrStdout(), id)

	if submitWatch {
		return runJobProgress(ctx, cmd, jobs, id, user, false)
	}
	return nil
}
