package slipo

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/me/slipo/pkg/frame"
)

// browseColumns is the column order of the file-browse table.
var browseColumns = []string{"name", "modified", "size", "path"}

// BrowseOptions control the shape of the FileBrowse table.
type BrowseOptions struct {
	// SortBy is the sorting column name (default "modified"). An unknown
	// name falls back to the default with a logged notice.
	SortBy string

	// Descending reverses the sort order.
	Descending bool

	// FormatSize renders the size column human-readable.
	FormatSize bool
}

// FileBrowse lists all files on the remote user file system as a flat
// table, one row per file at any folder depth.
func (c *Client) FileBrowse(ctx context.Context, opts BrowseOptions) (*frame.Frame, error) {
	const op = "FileBrowse"

	result, err := c.call(ctx, op, http.MethodGet, "api/v1/file-system", nil, nil)
	if err != nil {
		return nil, err
	}

	entries, err := flattenFileSystem(op, result)
	if err != nil {
		return nil, err
	}

	records := make([]frame.Record, len(entries))
	for i, e := range entries {
		records[i] = frame.Record{
			"name":     e.Name,
			"modified": e.Modified,
			"size":     e.Size,
			"path":     e.Path,
		}
	}
	f := frame.New(browseColumns, records)

	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = "modified"
	}
	sorted, ok := f.Sort(!opts.Descending, sortBy)
	if !ok {
		// Unknown column is a recoverable request, not a fault.
		c.logger.Info("sort column not found, sorting by modified", "column", sortBy)
		sorted, _ = f.Sort(!opts.Descending, "modified")
	}

	if opts.FormatSize {
		sorted, _ = sorted.Apply("size", func(v any) any {
			return FormatSize(float64(v.(int64)))
		})
	}
	return sorted, nil
}

// FileDownload copies a file from the remote file system to target.
// Source is a path relative to the user file system root.
func (c *Client) FileDownload(ctx context.Context, source, target string) error {
	query := url.Values{"path": {source}}
	return c.download(ctx, "FileDownload", "api/v1/file-system/download", query, target)
}

// FileUpload uploads a local file to the remote file system. Target is a
// relative path; missing directories are created server-side. The server
// enforces size, quota and directory-nesting limits.
func (c *Client) FileUpload(ctx context.Context, source, target string, overwrite bool) error {
	const op = "FileUpload"

	in, err := os.Open(source)
	if err != nil {
		return WrapError(op, err)
	}
	defer in.Close()

	query := url.Values{
		"path":      {target},
		"overwrite": {strconv.FormatBool(overwrite)},
	}
	return c.upload(ctx, op, "api/v1/file-system/upload", query, in)
}
