package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/me/slipo/pkg/slipo"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Query and download catalog resources",
	}
	cmd.AddCommand(
		newCatalogQueryCmd(),
		newCatalogDownloadCmd(),
	)
	return cmd
}

func newCatalogQueryCmd() *cobra.Command {
	var (
		term string
		page int
		size int
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "List catalog resources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := client.CatalogQuery(cmd.Context(), slipo.QueryOptions{
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

	cmd.Flags().StringVar(&term, "term", "", "Filter resources by name")
	cmd.Flags().IntVar(&page, "page", 0, "Result page index")
	cmd.Flags().IntVar(&size, "size", 0, "Result page size")
	return cmd
}

func newCatalogDownloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download <id> <version> <target>",
		Short: "Download a catalog resource",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "id")
			if err != nil {
				return err
			}
			version, err := parseID(args[1], "version")
			if err != nil {
				return err
			}
			if err := client.CatalogDownload(cmd.Context(), id, version, args[2]); err != nil {
				return err
			}
			fmt.Printf("Downloaded resource (%d, %d) to %s\n", id, version, args[2])
			return nil
		},
	}
}

// parseID parses a numeric command argument.
func parseID(arg, name string) (int64, error) {
	v, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, arg)
	}
	return v, nil
}
