package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/slipo/pkg/slipo"
)

func newProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Inspect and control workflow processes",
	}
	cmd.AddCommand(
		newProcessListCmd(),
		newProcessStatusCmd(),
		newProcessStartCmd(),
		newProcessStopCmd(),
		newProcessDownloadCmd(),
		newProcessOutputCmd(),
	)
	return cmd
}

func newProcessListCmd() *cobra.Command {
	var (
		term string
		page int
		size int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List workflow processes and their revisions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := client.ProcessQuery(cmd.Context(), slipo.QueryOptions{
				Term:      term,
				PageIndex: page,
				PageSize:  size,
			})
			if err != nil {
				return err
			}
			fmt.Println(f)
			return nil
		},
	}

	cmd.Flags().StringVar(&term, "term", "", "Filter processes by name")
	cmd.Flags().IntVar(&page, "page", 0, "Result page index")
	cmd.Flags().IntVar(&size, "size", 0, "Result page size")
	return cmd
}

func newProcessStatusCmd() *cobra.Command {
	var showFiles bool

	cmd := &cobra.Command{
		Use:   "status <id> <version>",
		Short: "Show the status of a process execution",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, version, err := parseIDVersion(args)
			if err != nil {
				return err
			}
			p, err := client.ProcessStatus(cmd.Context(), id, version)
			if err != nil {
				return err
			}

			fmt.Println(p)
			if t := p.SubmittedOn(); t != nil {
				fmt.Printf("Submitted %s\n", humanize.Time(*t))
			}
			if t := p.CompletedOn(); t != nil {
				fmt.Printf("Completed %s\n", humanize.Time(*t))
			}

			fmt.Println()
			fmt.Println(p.Steps())

			if showFiles {
				fmt.Println()
				fmt.Println(p.Files(true))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showFiles, "files", false, "Also list the execution's files")
	return cmd
}

func newProcessStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <id> <version>",
		Short: "Start a process execution",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, version, err := parseIDVersion(args)
			if err != nil {
				return err
			}
			if err := client.ProcessStart(cmd.Context(), id, version); err != nil {
				return err
			}
			fmt.Printf("Started process (%d, %d)\n", id, version)
			return nil
		},
	}
}

func newProcessStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop <id> <version>",
		Short: "Stop a running process execution",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, version, err := parseIDVersion(args)
			if err != nil {
				return err
			}
			if err := client.ProcessStop(cmd.Context(), id, version); err != nil {
				return err
			}
			fmt.Printf("Stopped process (%d, %d)\n", id, version)
			return nil
		},
	}
}

func newProcessDownloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download <id> <version> <file-id> <target>",
		Short: "Download a file produced by a process execution",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, version, err := parseIDVersion(args)
			if err != nil {
				return err
			}
			fileID, err := parseID(args[2], "file id")
			if err != nil {
				return err
			}
			if err := client.ProcessFileDownload(cmd.Context(), id, version, fileID, args[3]); err != nil {
				return err
			}
			fmt.Printf("Downloaded file %d to %s\n", fileID, args[3])
			return nil
		},
	}
}

func newProcessOutputCmd() *cobra.Command {
	var partKey string

	cmd := &cobra.Command{
		Use:   "output <id> <version> <target>",
		Short: "Download the terminal output of a process execution",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, version, err := parseIDVersion(args)
			if err != nil {
				return err
			}
			p, err := client.ProcessStatus(cmd.Context(), id, version)
			if err != nil {
				return err
			}
			out, ok := p.Output(partKey)
			if !ok {
				return fmt.Errorf("process (%d, %d) has no single resolvable output", id, version)
			}
			if err := client.DownloadOutput(cmd.Context(), out, args[2]); err != nil {
				return err
			}
			fmt.Printf("Downloaded %s to %s\n", out, args[2])
			return nil
		},
	}

	cmd.Flags().StringVar(&partKey, "part-key", "", "Output part key (default depends on the step's tool)")
	return cmd
}

func parseIDVersion(args []string) (int64, int64, error) {
	id, err := parseID(args[0], "id")
	if err != nil {
		return 0, 0, err
	}
	version, err := parseID(args[1], "version")
	if err != nil {
		return 0, 0, err
	}
	return id, version, nil
}
