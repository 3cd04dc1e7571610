package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/me/slipo/pkg/slipo"
)

// parseInput turns a command line dataset argument into an Input.
// Recognized forms:
//
//	catalog:<id>:<version>          catalog resource revision
//	output:<id>:<version>:<file>    file of a process execution
//	anything else                   path on the remote user file system
func parseInput(arg string) (slipo.Input, error) {
	switch {
	case strings.HasPrefix(arg, "catalog:"):
		parts := strings.Split(arg, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid input %q, want catalog:<id>:<version>", arg)
		}
		id, err := parseID(parts[1], "resource id")
		if err != nil {
			return nil, err
		}
		version, err := parseID(parts[2], "resource version")
		if err != nil {
			return nil, err
		}
		return slipo.ResourceInput{ID: id, Version: version}, nil

	case strings.HasPrefix(arg, "output:"):
		parts := strings.Split(arg, ":")
		if len(parts) != 4 {
			return nil, fmt.Errorf("invalid input %q, want output:<id>:<version>:<file>", arg)
		}
		id, err := parseID(parts[1], "process id")
		if err != nil {
			return nil, err
		}
		version, err := parseID(parts[2], "process version")
		if err != nil {
			return nil, err
		}
		fileID, err := parseID(parts[3], "file id")
		if err != nil {
			return nil, err
		}
		return slipo.FileInput{ProcessID: id, ProcessVersion: version, FileID: fileID}, nil

	default:
		return slipo.PathInput(arg), nil
	}
}

func reportProcess(p *slipo.Process) {
	fmt.Println(p)
	fmt.Println("Check progress with: slipo process status", p.ID(), p.Version())
}

func newTransformCmd() *cobra.Command {
	var (
		format string
		opts   slipo.TransformOptions
	)

	cmd := &cobra.Command{
		Use:   "transform <remote-path>",
		Short: "Transform a CSV or shapefile dataset into RDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, _ := cmd.Flags().GetString("profile")

			var (
				p   *slipo.Process
				err error
			)
			switch strings.ToUpper(format) {
			case "CSV":
				p, err = client.TransformCSV(cmd.Context(), args[0], profile, &opts)
			case "SHAPEFILE":
				p, err = client.TransformShapefile(cmd.Context(), args[0], profile, &opts)
			default:
				return fmt.Errorf("unsupported format %q, want csv or shapefile", format)
			}
			if err != nil {
				return err
			}
			reportProcess(p)
			return nil
		},
	}

	cmd.Flags().String("profile", "", "TripleGeo transformation profile")
	cmd.Flags().StringVar(&format, "format", "csv", "Input format (csv, shapefile)")
	cmd.Flags().StringVar(&opts.FeatureSource, "feature-source", "", "Data source provider of the input features")
	cmd.Flags().StringVar(&opts.Encoding, "encoding", "", "Character set of the input data")
	cmd.Flags().StringVar(&opts.AttrKey, "attr-key", "", "Field holding the unique identifier")
	cmd.Flags().StringVar(&opts.AttrName, "attr-name", "", "Field holding name literals")
	cmd.Flags().StringVar(&opts.AttrCategory, "attr-category", "", "Field holding category literals")
	cmd.Flags().StringVar(&opts.AttrGeometry, "attr-geometry", "", "Geometry column")
	cmd.Flags().StringVar(&opts.Delimiter, "delimiter", "", "CSV delimiter")
	cmd.Flags().StringVar(&opts.Quote, "quote", "", "CSV quote character")
	cmd.Flags().StringVar(&opts.AttrX, "attr-x", "", "X coordinate column")
	cmd.Flags().StringVar(&opts.AttrY, "attr-y", "", "Y coordinate column")
	cmd.Flags().StringVar(&opts.SourceCRS, "source-crs", "", "Source coordinate reference system")
	cmd.Flags().StringVar(&opts.TargetCRS, "target-crs", "", "Target coordinate reference system")
	cmd.Flags().StringVar(&opts.DefaultLang, "default-lang", "", "Language tag for created labels")
	return cmd
}

func newInterlinkCmd() *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:   "interlink <left> <right>",
		Short: "Discover links between two RDF datasets with LIMES",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			left, err := parseInput(args[0])
			if err != nil {
				return err
			}
			right, err := parseInput(args[1])
			if err != nil {
				return err
			}
			p, err := client.Interlink(cmd.Context(), profile, left, right)
			if err != nil {
				return err
			}
			reportProcess(p)
			return nil
		},
	}

	cmd.Flags().StringVar(&profile, "profile", "", "LIMES interlinking profile")
	return cmd
}

func newFuseCmd() *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:   "fuse <left> <right> <links>",
		Short: "Fuse two linked RDF datasets with FAGI",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			left, err := parseInput(args[0])
			if err != nil {
				return err
			}
			right, err := parseInput(args[1])
			if err != nil {
				return err
			}
			links, err := parseInput(args[2])
			if err != nil {
				return err
			}
			p, err := client.Fuse(cmd.Context(), profile, left, right, links)
			if err != nil {
				return err
			}
			reportProcess(p)
			return nil
		},
	}

	cmd.Flags().StringVar(&profile, "profile", "", "FAGI fusion profile")
	return cmd
}

func newEnrichCmd() *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:   "enrich <source>",
		Short: "Enrich an RDF dataset with DEER",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := parseInput(args[0])
			if err != nil {
				return err
			}
			p, err := client.Enrich(cmd.Context(), profile, source)
			if err != nil {
				return err
			}
			reportProcess(p)
			return nil
		},
	}

	cmd.Flags().StringVar(&profile, "profile", "", "DEER enrichment profile")
	return cmd
}

func newExportCmd() *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:   "export <source>",
		Short: "Export an RDF dataset back to CSV with reverse TripleGeo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := parseInput(args[0])
			if err != nil {
				return err
			}
			p, err := client.Export(cmd.Context(), profile, source)
			if err != nil {
				return err
			}
			reportProcess(p)
			return nil
		},
	}

	cmd.Flags().StringVar(&profile, "profile", "", "Reverse TripleGeo export profile")
	return cmd
}
