package cli

import (
	"fmt"
	"path"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/slipo/internal/stage"
	"github.com/me/slipo/pkg/slipo"
)

func newFilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Manage the remote user file system",
	}
	cmd.AddCommand(
		newFilesBrowseCmd(),
		newFilesUploadCmd(),
		newFilesDownloadCmd(),
	)
	return cmd
}

func newFilesBrowseCmd() *cobra.Command {
	var (
		sortBy   string
		desc     bool
		relative bool
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "List files in the remote user file system",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := client.FileBrowse(cmd.Context(), slipo.BrowseOptions{
				SortBy:     sortBy,
				Descending: desc,
				FormatSize: true,
			})
			if err != nil {
				return err
			}
			if relative {
				f, _ = f.Apply("modified", func(v any) any {
					switch t := v.(type) {
					case time.Time:
						return humanize.Time(t)
					case *time.Time:
						if t != nil {
							return humanize.Time(*t)
						}
					}
					return v
				})
			}
			fmt.Println(f)
			return nil
		},
	}

	cmd.Flags().StringVar(&sortBy, "sort-by", "modified", "Sort column (name, modified, size, path)")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort in descending order")
	cmd.Flags().BoolVar(&relative, "relative", false, "Show modification times relative to now")
	return cmd
}

func newFilesUploadCmd() *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "upload <source> <remote-path>",
		Short: "Upload a file to the remote user file system",
		Long: "Upload a file to the remote user file system. The source may be a\n" +
			"local path, an http(s) URL or an s3://bucket/key URL; remote sources\n" +
			"are fetched before the upload.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stager, err := stage.NewFileStager("", logger)
			if err != nil {
				return err
			}
			local, err := stager.Fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := client.FileUpload(cmd.Context(), local, args[1], overwrite); err != nil {
				return err
			}
			fmt.Printf("Uploaded %s to %s\n", path.Base(local), args[1])
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace the remote file if it exists")
	return cmd
}

func newFilesDownloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download <remote-path> <target>",
		Short: "Download a file from the remote user file system",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.FileDownload(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Downloaded %s to %s\n", args[0], args[1])
			return nil
		},
	}
}
