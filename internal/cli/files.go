package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/raphaelgruber/impression-go/internal/store"
	"github.com/spf13/cobra"
)

var (
	filesName string
	filesDest string
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Transfer objects to and from the input and output buckets",
	Long: `Transfer objects to and from the platform's input and output buckets.
The bucket argument is "input" or "output".

Examples:
  impression files upload input ./a.sdf --name a.sdf
  impression files download output result.csv --to ./result.csv
  impression files exists input a.sdf
  impression files rm input a.sdf`,
}

var filesUploadCmd = &cobra.Command{
	Use:   "upload <bucket> <local-path>",
	Short: "Upload a local file",
	Args:  cobra.ExactArgs(2),
	RunE:  runFilesUpload,
}

var filesDownloadCmd = &cobra.Command{
	Use:   "download <bucket> <name>",
	Short: "Download an object",
	Args:  cobra.ExactArgs(2),
	RunE:  runFilesDownload,
}

var filesRmCmd = &cobra.Command{
	Use:   "rm <bucket> <name>",
	Short: "Delete an object",
	Args:  cobra.ExactArgs(2),
	RunE:  runFilesRm,
}

var filesExistsCmd = &cobra.Command{
	Use:   "exists <bucket> <name>",
	Short: "Report whether an object exists",
	Args:  cobra.ExactArgs(2),
	RunE:  runFilesExists,
}

func init() {
	filesUploadCmd.Flags().StringVarP(&filesName, "name", "n", "", "object name (default: file base name)")
	filesDownloadCmd.Flags().StringVar(&filesDest, "to", "", "destination path (default: object name in the current directory)")

	filesCmd.AddCommand(filesUploadCmd)
	filesCmd.AddCommand(filesDownloadCmd)
	filesCmd.AddCommand(filesRmCmd)
	filesCmd.AddCommand(filesExistsCmd)
}

// bucketAndStore parses the bucket argument and opens the file store.
func bucketAndStore(ctx context.Context, arg string) (store.Bucket, store.FileStore, error) {
	bucket, err := store.ParseBucket(arg)
	if err != nil {
		return 0, nil, err
	}
	files, err := getFileStore(ctx)
	if err != nil {
		return 0, nil, err
	}
	return bucket, files, nil
}

func runFilesUpload(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	bucket, files, err := bucketAndStore(ctx, args[0])
	if err != nil {
		return err
	}
	name := store.ObjectName(args[1], filesName)
	if err := files.Upload(ctx, bucket, args[1], name); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s to %s bucket as %s\n", args[1], bucket, name)
	return nil
}

func runFilesDownload(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	bucket, files, err := bucketAndStore(ctx, args[0])
	if err != nil {
		return err
	}
	dest := filesDest
	if dest == "" {
		dest = filepath.Base(args[1])
	}
	if err := files.Download(ctx, bucket, dest, args[1]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %s from %s bucket to %s\n", args[1], bucket, dest)
	return nil
}

func runFilesRm(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	bucket, files, err := bucketAndStore(ctx, args[0])
	if err != nil {
		return err
	}
	if err := files.Delete(ctx, bucket, args[1]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s from %s bucket\n", args[1], bucket)
	return nil
}

func runFilesExists(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	bucket, files, err := bucketAndStore(ctx, args[0])
	if err != nil {
		return err
	}
	ok, err := files.Exists(ctx, bucket, args[1])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ok)
	return nil
}
